package translation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"codeberg.org/snonux/subtitlecsv/internal/csvio"
)

// ErrInvalidTranslation is returned when a reply cannot be split into rows
var ErrInvalidTranslation = errors.New("invalid translation")

// Markers understood by the system prompt
const (
	speakerTag = "{SPK}"
	remarkTag  = "{RMK}"
	codeFence  = "```"
)

func speakerMarker(speaker string) string {
	return speakerTag + speaker + speakerTag
}

// BuildPrompt renders the user prompt for one batch. pre and post are sent
// as context only.
func BuildPrompt(pre, batch, post []csvio.TextRow, dstLang string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Translate to %s\n", dstLang)

	b.WriteString("# CONTEXT PREVIOUS BEGIN\n")
	for _, row := range pre {
		fmt.Fprintf(&b, "## %s\n%s\n", row.Collection, row.Text)
	}
	b.WriteString("# CONTEXT PREVIOUS END\n")

	b.WriteString("# TEXT BEGIN\n")
	for _, row := range batch {
		fmt.Fprintf(&b, "%s\n%s\n", speakerMarker(row.Collection), row.Text)
	}
	b.WriteString("# TEXT END\n")

	b.WriteString("# CONTEXT AFTER BEGIN\n")
	for _, row := range post {
		fmt.Fprintf(&b, "## %s\n%s\n", row.Collection, row.Text)
	}
	b.WriteString("# CONTEXT AFTER END\n")

	return b.String()
}

// ParseResponse splits a reply into one translated row per entry. Each
// entry's text follows its speaker marker and runs up to the next marker,
// a code fence or the end of the reply; an optional {RMK} starts the
// translator's remarks. Original is set to the entry's text.
func ParseResponse(response string, entries []csvio.TextRow) ([]csvio.TextRow, error) {
	if response == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidTranslation)
	}

	translated := make([]csvio.TextRow, 0, len(entries))
	pos := 0
	for _, entry := range entries {
		if pos >= len(response) {
			return nil, fmt.Errorf("%w: response ended before %q", ErrInvalidTranslation, entry.Collection)
		}

		marker := speakerMarker(entry.Collection)
		idx := strings.Index(response[pos:], marker)
		if idx < 0 {
			return nil, fmt.Errorf("%w: no marker for %q", ErrInvalidTranslation, entry.Collection)
		}

		start := pos + idx + len(marker)
		// skip the line break after the marker
		if start < len(response) {
			_, size := utf8.DecodeRuneInString(response[start:])
			start += size
		}

		end := len(response)
		if i := strings.Index(response[start:], speakerTag); i >= 0 {
			end = start + i
		} else if i := strings.Index(response[start:], codeFence); i >= 0 {
			end = start + i
		}

		text, remarks, _ := strings.Cut(response[start:end], remarkTag)
		text = strings.TrimSpace(text)
		if text == "" && strings.TrimSpace(entry.Text) != "" {
			return nil, fmt.Errorf("%w: no text for %q", ErrInvalidTranslation, entry.Collection)
		}
		translated = append(translated, csvio.TextRow{
			DatablockName: entry.DatablockName,
			Collection:    entry.Collection,
			Text:          text,
			Original:      entry.Text,
			Remarks:       strings.TrimSpace(remarks),
		})

		pos = end
	}

	return translated, nil
}

// DefaultSystemPrompt explains the prompt layout and the reply format
const DefaultSystemPrompt = `You are a professional subtitle and on-screen text translator.

Each request starts with "Translate to <language>" followed by three sections:
"# CONTEXT PREVIOUS" and "# CONTEXT AFTER" hold surrounding lines for context
only; do not translate them. "# TEXT" holds the lines to translate. Every line
in "# TEXT" is preceded by its speaker between {SPK} markers, e.g. {SPK}Alice{SPK}.

Reply with every line of "# TEXT" in the same order, each preceded by the same
{SPK}speaker{SPK} marker on its own line, followed by the translation. Keep the
speaker names exactly as given. If you need to comment on a line, append {RMK}
and the remark after its translation. Do not add anything else.`
