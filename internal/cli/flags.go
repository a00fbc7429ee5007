package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	ProjectDir string
	ScenePath  string
	Locale     string

	// scene init
	Force bool

	// Translator flags
	SrcLang      string
	DstLang      string
	Provider     string
	APIKey       string
	Model        string
	Endpoint     string
	SystemPrompt string
	SrcCSV       string
	DstCSV       string
	BatchSize    int
	PreCtx       int
	PosCtx       int
	LLMOptions   string
	TimeoutSecs  int
	ErrorLog     string
	Debug        bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		ProjectDir:  ".",
		Provider:    "openai",
		BatchSize:   6,
		PreCtx:      3,
		PosCtx:      3,
		TimeoutSecs: 120,
		ErrorLog:    "errors.log",
	}
}
