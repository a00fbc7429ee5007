package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/subtitlecsv/internal"
	"codeberg.org/snonux/subtitlecsv/internal/csvio"
	"codeberg.org/snonux/subtitlecsv/internal/models"
	"codeberg.org/snonux/subtitlecsv/internal/operator"
	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scenedb"
	"codeberg.org/snonux/subtitlecsv/internal/translation"
)

// ErrCancelled is returned when an operator did not finish
var ErrCancelled = errors.New("operation cancelled")

// Default models per provider
const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.0-flash"
)

// Breaker settings for translation endpoints
const (
	breakerMaxFailures = 5
	breakerCooldown    = time.Minute
)

// runOperator loads the scene document, runs the operator on path (or its
// default file in the project directory) and saves the scene when the
// operator changed it and finished
func runOperator(out io.Writer, newOp func(operator.Env) operator.Operator, path string) error {
	scenePath := ScenePath()
	m, err := scenedb.Load(scenePath)
	if err != nil {
		if errors.Is(err, scenedb.ErrNoDocument) {
			return fmt.Errorf("%w (create one with 'subtitlecsv scene init')", err)
		}
		return err
	}

	env := operator.Env{
		Host:    m,
		Catalog: report.NewCatalog(viper.GetString("ui.locale")),
		OnReport: func(e report.Entry) {
			fmt.Fprintln(out, e.String())
		},
	}
	op := newOp(env)

	res := op.Execute(internal.ResolvePath(ProjectDir(), path, op.DefaultFileName()))
	if !res.OK() {
		return fmt.Errorf("%s: %w", op.ID(), ErrCancelled)
	}

	if _, readOnly := op.(*operator.ExportText); readOnly {
		return nil
	}
	if err := scenedb.Save(scenePath, m); err != nil {
		return fmt.Errorf("failed to save scene: %w", err)
	}
	fmt.Fprintf(out, "Scene saved to %s\n", scenePath)
	return nil
}

// translateSettings are the translate options after config and flags merged
type translateSettings struct {
	srcLang, dstLang string
	provider, model  string
	endpoint, apiKey string
	systemPromptFile string
	llmOptionsFile   string
	srcCSV, dstCSV   string
	errorLog         string
	config           translation.Config
}

func loadTranslateSettings(flags *Flags) (translateSettings, error) {
	s := translateSettings{
		srcLang:          viper.GetString("translate.src_lang"),
		dstLang:          viper.GetString("translate.dst_lang"),
		provider:         viper.GetString("translate.provider"),
		model:            viper.GetString("translate.model"),
		endpoint:         viper.GetString("translate.endpoint"),
		systemPromptFile: viper.GetString("translate.system_prompt"),
		llmOptionsFile:   viper.GetString("translate.llm_options"),
		errorLog:         viper.GetString("translate.error_log"),
		srcCSV:           internal.ResolvePath(ProjectDir(), flags.SrcCSV, "text_objects.csv"),
		dstCSV:           internal.ResolvePath(ProjectDir(), flags.DstCSV, "translated_text_objects.csv"),
	}
	s.apiKey = GetAPIKey(s.provider, flags.APIKey)

	s.config = translation.DefaultConfig()
	s.config.BatchSize = viper.GetInt("translate.batch_size")
	s.config.PreContext = viper.GetInt("translate.pre_ctx")
	s.config.PostContext = viper.GetInt("translate.pos_ctx")
	s.config.Timeout = time.Duration(viper.GetInt("translate.timeout_secs")) * time.Second
	s.config.Debug = flags.Debug

	if s.config.BatchSize < 1 {
		return s, fmt.Errorf("--batch-size must be at least 1, got %d", s.config.BatchSize)
	}
	if s.config.PreContext < 0 || s.config.PostContext < 0 {
		return s, fmt.Errorf("--pre-ctx and --pos-ctx must not be negative")
	}

	var err error
	if s.dstLang, err = translation.LanguageName(s.dstLang); err != nil {
		return s, fmt.Errorf("--dst-lang: %w", err)
	}
	if s.srcLang != "" {
		if s.srcLang, err = translation.LanguageName(s.srcLang); err != nil {
			return s, fmt.Errorf("--src-lang: %w", err)
		}
	}

	switch s.provider {
	case models.ProviderOpenAI:
		if s.model == "" {
			s.model = defaultOpenAIModel
		}
		if s.apiKey == "" && s.endpoint == "" {
			return s, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY, pass --api-key or use a local --endpoint")
		}
	case models.ProviderGemini:
		if s.model == "" {
			s.model = defaultGeminiModel
		}
		if s.apiKey == "" {
			return s, fmt.Errorf("Gemini API key not found. Set GEMINI_API_KEY or pass --api-key")
		}
	default:
		return s, fmt.Errorf("unknown provider %q", s.provider)
	}

	return s, nil
}

func newCompleter(ctx context.Context, s translateSettings) (translation.Completer, error) {
	opts := translation.LLMOptions{}
	if s.llmOptionsFile != "" {
		var err error
		if opts, err = translation.LoadLLMOptions(s.llmOptionsFile); err != nil {
			return nil, err
		}
	}

	var next translation.Completer
	switch s.provider {
	case models.ProviderGemini:
		gemini, err := translation.NewGeminiCompleter(ctx, s.apiKey, s.model, opts)
		if err != nil {
			return nil, err
		}
		next = gemini
	default:
		next = translation.NewOpenAICompleter(s.apiKey, s.endpoint, s.model, opts)
	}

	return translation.NewBreakerCompleter(s.provider, next, breakerMaxFailures, breakerCooldown), nil
}

// runTranslate translates the source CSV and writes the destination CSV
func runTranslate(ctx context.Context, flags *Flags) error {
	s, err := loadTranslateSettings(flags)
	if err != nil {
		return err
	}

	systemPrompt := translation.DefaultSystemPrompt
	if s.systemPromptFile != "" {
		fmt.Printf("Opening System Prompt %s\n", s.systemPromptFile)
		data, err := os.ReadFile(s.systemPromptFile)
		if err != nil {
			return fmt.Errorf("failed to read system prompt: %w", err)
		}
		systemPrompt = string(data)
	}

	completer, err := newCompleter(ctx, s)
	if err != nil {
		return err
	}

	fmt.Printf("Opening file %s\n", s.srcCSV)
	f, err := os.Open(s.srcCSV)
	if err != nil {
		return fmt.Errorf("failed to open source CSV: %w", err)
	}
	rows, err := csvio.ReadTextRows(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.srcCSV, err)
	}

	errorLog, err := os.Create(s.errorLog)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer errorLog.Close()

	translator := translation.NewTranslator(completer, systemPrompt, s.config, errorLog)
	translated, err := translator.TranslateWithBack(ctx, rows, s.srcLang, s.dstLang)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	fmt.Printf("Writing results to %s\n", s.dstCSV)
	if err := csvio.WriteTextRowsFile(s.dstCSV, translated); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.dstCSV, err)
	}
	return nil
}

func runListModels(ctx context.Context, out io.Writer, flags *Flags) error {
	lister := models.NewLister(flags.Provider, GetAPIKey(flags.Provider, flags.APIKey), flags.Endpoint)
	return lister.ListAvailableModels(ctx, out)
}

func runSceneInit(out io.Writer, force bool) error {
	path := ScenePath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("scene document %s already exists (use --force to replace it)", path)
	}

	if err := os.MkdirAll(ProjectDir(), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := scenedb.Save(path, scenedb.NewStockScene()); err != nil {
		return fmt.Errorf("failed to create scene document: %w", err)
	}

	fmt.Fprintf(out, "Scene document created: %s\n", path)
	return nil
}
