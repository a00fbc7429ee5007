package operator

import (
	"os"

	"codeberg.org/snonux/subtitlecsv/internal/csvio"
	"codeberg.org/snonux/subtitlecsv/internal/report"
)

// TranslationOptions names the resources the translation importer uses
type TranslationOptions struct {
	Collection  string // receives the duplicates
	Suffix      string // appended to object and data names
	Font        string // font given to every duplicate
	ResolutionU int
}

// DefaultTranslationOptions returns the Japanese translation setup
func DefaultTranslationOptions() TranslationOptions {
	return TranslationOptions{
		Collection:  "Japanese Text",
		Suffix:      "_jp",
		Font:        "Bfont Regular",
		ResolutionU: 12,
	}
}

// ImportTranslation duplicates the text objects named in a CSV and gives
// the copies the translated text. Running it twice creates a second set
// of copies.
type ImportTranslation struct {
	env  Env
	opts TranslationOptions
}

// NewImportTranslation creates the translation importer
func NewImportTranslation(env Env, opts TranslationOptions) *ImportTranslation {
	return &ImportTranslation{env: env, opts: opts}
}

func (o *ImportTranslation) ID() string              { return "object.import_text_objects_csv" }
func (o *ImportTranslation) Label() string           { return "Import Text Objects from CSV" }
func (o *ImportTranslation) DefaultFileName() string { return "translated_text_objects.csv" }

// Execute imports the translations in path
func (o *ImportTranslation) Execute(path string) Result {
	return run(o.env, func(log *report.Log) (int, error) {
		host := o.env.Host

		rows, err := readFile(log, path, func(f *os.File) ([]csvio.TranslationRow, error) {
			return csvio.ReadTranslations(f)
		})
		if err != nil {
			return 0, err
		}

		font, ok := host.Font(o.opts.Font)
		if !ok {
			log.Error(report.MsgFontMissing, map[string]any{"Name": o.opts.Font})
			return 0, cancel{}
		}

		coll := host.EnsureCollection(o.opts.Collection)

		imported := 0
		for _, row := range rows {
			src, ok := host.Object(row.Name)
			if !ok || !src.IsText() {
				log.Warning(report.MsgObjectNotFoundOrNotText, map[string]any{"Name": row.Name})
				continue
			}

			dup := host.DuplicateObject(src)
			host.RenameObject(dup, row.Name+o.opts.Suffix)
			dup.Text.Name = src.Text.Name + o.opts.Suffix
			dup.Text.ResolutionU = o.opts.ResolutionU
			dup.Text.Font = font
			dup.Text.Body = row.Text

			host.LinkObject(coll, dup)
			imported++
		}

		log.Info(report.MsgImportedTranslations, map[string]any{"Count": imported, "Path": path})
		return imported, nil
	})
}
