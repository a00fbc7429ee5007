package csvio

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Subtitle sheet column names
const (
	ColUID     = "UID"
	ColSpeaker = "Speaker"
	ColStyle   = "S"
	ColText    = "Text"
	ColFrom    = "From"
	ColLength  = "Length"
)

// TranslationRow asks for a translated copy of object Name
type TranslationRow struct {
	Line int
	Name string
	Text string
}

// ReadTranslations reads the datablock_name and Text Contents columns;
// other columns are ignored
func ReadTranslations(r io.Reader) ([]TranslationRow, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColDatablockName, ColTextContents)
	if err != nil {
		return nil, err
	}

	var rows []TranslationRow
	err = records(cr, func(line int, rec []string) error {
		rows = append(rows, TranslationRow{
			Line: line,
			Name: h.get(rec, ColDatablockName),
			Text: h.get(rec, ColTextContents),
		})
		return nil
	})
	return rows, err
}

// SubtitleRow is one line of the animated subtitle sheet. Rows with an
// empty Speaker are comments; their From and Length are not parsed.
type SubtitleRow struct {
	Line    int
	UID     string
	Speaker string
	Style   string
	Text    string
	From    int
	Length  int
}

// IsComment reports whether the row carries no subtitle
func (r SubtitleRow) IsComment() bool {
	return r.Speaker == ""
}

// Italic reports whether the style flags ask for italics
func (r SubtitleRow) Italic() bool {
	return strings.Contains(r.Style, "I")
}

// ReadSubtitles reads the UID, Speaker, S, Text, From and Length columns
func ReadSubtitles(r io.Reader) ([]SubtitleRow, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColUID, ColSpeaker, ColStyle, ColText, ColFrom, ColLength)
	if err != nil {
		return nil, err
	}

	var rows []SubtitleRow
	err = records(cr, func(line int, rec []string) error {
		row := SubtitleRow{
			Line:    line,
			UID:     h.get(rec, ColUID),
			Speaker: h.get(rec, ColSpeaker),
			Style:   h.get(rec, ColStyle),
			Text:    h.get(rec, ColText),
		}
		if !row.IsComment() {
			var err error
			if row.From, err = parseFrame(h.get(rec, ColFrom)); err != nil {
				return fmt.Errorf("line %d: %s: %w", line, ColFrom, err)
			}
			if row.Length, err = parseFrame(h.get(rec, ColLength)); err != nil {
				return fmt.Errorf("line %d: %s: %w", line, ColLength, err)
			}
			if row.Length < 1 {
				return fmt.Errorf("line %d: %s: %w, got %d", line, ColLength, ErrBadLength, row.Length)
			}
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func parseFrame(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
