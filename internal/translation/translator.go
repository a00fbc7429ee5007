package translation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/snonux/subtitlecsv/internal/csvio"
)

// GivenUpRemark marks rows whose batch never got a valid reply
const GivenUpRemark = "AI ERROR. GIVEN UP."

// ErrNoLanguage is returned for an empty language argument
var ErrNoLanguage = errors.New("no language given")

// Config controls batching and retries
type Config struct {
	BatchSize   int           // rows translated per prompt
	PreContext  int           // preceding rows sent as context
	PostContext int           // following rows sent as context
	Attempts    int           // prompts per batch before giving up
	Timeout     time.Duration // per prompt; zero means no limit
	Debug       bool          // print prompts and replies
}

// DefaultConfig returns the default batching setup
func DefaultConfig() Config {
	return Config{
		BatchSize:   6,
		PreContext:  3,
		PostContext: 3,
		Attempts:    9,
	}
}

// Translator translates text rows batch by batch
type Translator struct {
	completer    Completer
	systemPrompt string
	config       Config
	errorLog     io.Writer
	cache        *ResponseCache
}

// NewTranslator creates a translator. Invalid replies are written to
// errorLog, which may be nil.
func NewTranslator(completer Completer, systemPrompt string, config Config, errorLog io.Writer) *Translator {
	if config.BatchSize < 1 {
		config.BatchSize = 1
	}
	if config.Attempts < 1 {
		config.Attempts = 1
	}
	if errorLog == nil {
		errorLog = io.Discard
	}

	return &Translator{
		completer:    completer,
		systemPrompt: systemPrompt,
		config:       config,
		errorLog:     errorLog,
		cache:        NewResponseCache(),
	}
}

// Translate translates the Text of every row into dstLang. The result has
// one row per input row with Original holding the input text. A batch that
// never gets a valid reply yields empty texts marked GivenUpRemark.
// An error is returned only when the run cannot continue: the context is
// done or the endpoint's breaker is open.
func (t *Translator) Translate(ctx context.Context, rows []csvio.TextRow, dstLang string) ([]csvio.TextRow, error) {
	size := t.config.BatchSize
	numBatches := (len(rows) + size - 1) / size

	output := make([]csvio.TextRow, 0, len(rows))
	for from := 0; from < len(rows); from += size {
		fmt.Printf("Batch ID %d / %d\n", from/size, numBatches)

		to := min(from+size, len(rows))
		pre := rows[max(0, from-t.config.PreContext):from]
		post := rows[to:min(to+t.config.PostContext, len(rows))]

		batch := rows[from:to]
		prompt := BuildPrompt(pre, batch, post, dstLang)

		translated, err := t.translateBatch(ctx, prompt, batch)
		if err != nil {
			return nil, err
		}
		output = append(output, translated...)
	}

	return output, nil
}

// TranslateWithBack translates rows into dstLang and, when srcLang is set,
// translates the result back into srcLang to fill OriginalBack. A failed
// back translation leaves OriginalBack empty.
func (t *Translator) TranslateWithBack(ctx context.Context, rows []csvio.TextRow, srcLang, dstLang string) ([]csvio.TextRow, error) {
	fmt.Println("Begin Translation")
	translated, err := t.Translate(ctx, rows, dstLang)
	if err != nil {
		return nil, err
	}

	if srcLang == "" {
		return translated, nil
	}

	fmt.Println("Begin Back Translation")
	back, err := t.Translate(ctx, translated, srcLang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Back Translation Error. It won't be available: %v\n", err)
		return translated, nil
	}

	for i := range translated {
		translated[i].OriginalBack = back[i].Text
	}
	return translated, nil
}

func (t *Translator) translateBatch(ctx context.Context, prompt string, batch []csvio.TextRow) ([]csvio.TextRow, error) {
	if cached, ok := t.cache.Get(prompt); ok {
		if translated, err := ParseResponse(cached, batch); err == nil {
			return translated, nil
		}
	}

	for attempt := 1; attempt <= t.config.Attempts; attempt++ {
		response, err := t.complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, gobreaker.ErrOpenState) {
				return nil, err
			}
			fmt.Fprintf(os.Stderr, "Completion failed. Attempt %d: %v\n", attempt, err)
			continue
		}

		translated, err := ParseResponse(response, batch)
		if err == nil {
			t.cache.Add(prompt, response)
			return translated, nil
		}

		t.logInvalid(response, prompt)
		if attempt < t.config.Attempts {
			fmt.Fprintf(os.Stderr, "Invalid Translation Output. Attempt %d. Retrying...\n", attempt)
		} else {
			fmt.Fprintf(os.Stderr, "Invalid Translation Output. Attempt %d. Giving up.\n", attempt)
		}
	}

	givenUp := make([]csvio.TextRow, 0, len(batch))
	for _, entry := range batch {
		givenUp = append(givenUp, csvio.TextRow{
			DatablockName: entry.DatablockName,
			Collection:    entry.Collection,
			Original:      entry.Text,
			Remarks:       GivenUpRemark,
		})
	}
	return givenUp, nil
}

func (t *Translator) complete(ctx context.Context, prompt string) (string, error) {
	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	if t.config.Debug {
		fmt.Printf("Running Prompt:\n%s\n", prompt)
	}

	response, err := t.completer.Complete(ctx, t.systemPrompt, prompt)
	if err != nil {
		return "", err
	}

	if t.config.Debug {
		fmt.Printf("AI Output:\n%s\n", response)
	}
	return response, nil
}

func (t *Translator) logInvalid(response, prompt string) {
	const rule = "=============================="
	fmt.Fprintf(t.errorLog, "# ERROR LOG Invalid response:\n%s\n%s\n%s\n", rule, response, rule)
	fmt.Fprintf(t.errorLog, "# ERROR LOG Original Prompt:\n%s\n%s\n%s\n", rule, prompt, rule)
}

// LanguageName returns the English name for a BCP 47 tag such as "ja" or
// "pt-BR". Anything that is not a known tag, like "Japanese", is returned
// trimmed but otherwise unchanged.
func LanguageName(lang string) (string, error) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "", ErrNoLanguage
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return lang, nil
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name, nil
	}
	return lang, nil
}

// ResponseCache stores valid replies by prompt
type ResponseCache struct {
	mu        sync.RWMutex
	responses map[string]string
}

// NewResponseCache creates a new response cache
func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		responses: make(map[string]string),
	}
}

// Add adds a reply to the cache
func (rc *ResponseCache) Add(prompt, response string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.responses[prompt] = response
}

// Get retrieves a reply from the cache
func (rc *ResponseCache) Get(prompt string) (string, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	response, ok := rc.responses[prompt]
	return response, ok
}

// Len returns the number of cached replies
func (rc *ResponseCache) Len() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.responses)
}
