package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Delimiter separates fields in every file handled here
const Delimiter = ';'

// ErrMissingColumn is returned when a required header column is absent
var ErrMissingColumn = errors.New("missing column")

// ErrBadLength is returned for a subtitle shorter than one frame
var ErrBadLength = errors.New("length must be at least 1 frame")

const bom = "\ufeff"

// header maps column names to their index
type header map[string]int

func newReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		br.Discard(len(bom))
	}
	cr := csv.NewReader(br)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func readHeader(cr *csv.Reader, required ...string) (header, error) {
	names, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	h := make(header, len(names))
	for i, name := range names {
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}

	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return h, nil
}

// get returns the named field of rec, or "" when the row is short
func (h header) get(rec []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// records calls fn for every data row with its 1-based line number
func records(cr *csv.Reader, fn func(line int, rec []string) error) error {
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}
