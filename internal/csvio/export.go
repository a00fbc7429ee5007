package csvio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Export column names
const (
	ColDatablockName = "datablock_name"
	ColCollection    = "Collection"
	ColTextContents  = "Text Contents"
)

// ExportHeader is the first row of an export file
var ExportHeader = []string{ColDatablockName, ColCollection, ColTextContents}

// ExportRow is one exported text object
type ExportRow struct {
	Name       string
	Collection string
	Text       string
}

// WriteExport writes rows to path with a header, every field quoted.
// The file is replaced atomically: on any error the previous content of
// path (or its absence) is left untouched.
func WriteExport(path string, rows []ExportRow) error {
	return writeAtomic(path, func(w io.Writer) error {
		if err := writeQuoted(w, ExportHeader); err != nil {
			return err
		}
		for _, row := range rows {
			if err := writeQuoted(w, []string{row.Name, row.Collection, row.Text}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeQuoted writes one record with every field quoted
func writeQuoted(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteRune(Delimiter)
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// writeAtomic writes through a temp file in the target directory and
// renames it over path once everything is flushed
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := write(buf); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync CSV: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close CSV: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set CSV permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return nil
}
