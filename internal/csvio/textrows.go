package csvio

import (
	"encoding/csv"
	"io"
)

// Extra columns of the translator's working file
const (
	ColOriginal     = "Original"
	ColOriginalBack = "Original Back"
	ColRemarks      = "Remarks"
)

// TextRowHeader is the header written by WriteTextRows
var TextRowHeader = []string{
	ColDatablockName, ColCollection, ColTextContents,
	ColOriginal, ColOriginalBack, ColRemarks,
}

// TextRow is a line of an exported file on its way through translation.
// Collection doubles as the speaker name.
type TextRow struct {
	DatablockName string
	Collection    string
	Text          string
	Original      string
	OriginalBack  string
	Remarks       string
}

// ReadTextRows reads an export or translator file. The last three columns
// are optional.
func ReadTextRows(r io.Reader) ([]TextRow, error) {
	cr := newReader(r)
	h, err := readHeader(cr, ColDatablockName, ColCollection, ColTextContents)
	if err != nil {
		return nil, err
	}

	var rows []TextRow
	err = records(cr, func(_ int, rec []string) error {
		rows = append(rows, TextRow{
			DatablockName: h.get(rec, ColDatablockName),
			Collection:    h.get(rec, ColCollection),
			Text:          h.get(rec, ColTextContents),
			Original:      h.get(rec, ColOriginal),
			OriginalBack:  h.get(rec, ColOriginalBack),
			Remarks:       h.get(rec, ColRemarks),
		})
		return nil
	})
	return rows, err
}

// WriteTextRows writes rows with TextRowHeader, quoting only where needed
func WriteTextRows(w io.Writer, rows []TextRow) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	if err := cw.Write(TextRowHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.DatablockName, row.Collection, row.Text,
			row.Original, row.OriginalBack, row.Remarks,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTextRowsFile writes rows to path atomically
func WriteTextRowsFile(path string, rows []TextRow) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteTextRows(w, rows)
	})
}
