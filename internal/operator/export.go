package operator

import (
	"codeberg.org/snonux/subtitlecsv/internal/csvio"
	"codeberg.org/snonux/subtitlecsv/internal/layout"
	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// ExportText writes all visible text objects to CSV in reading order
type ExportText struct {
	env Env
}

// NewExportText creates the exporter
func NewExportText(env Env) *ExportText {
	return &ExportText{env: env}
}

func (o *ExportText) ID() string              { return "object.export_text_objects_csv" }
func (o *ExportText) Label() string           { return "Export Text Objects to CSV" }
func (o *ExportText) DefaultFileName() string { return "text_objects.csv" }

// Execute exports to path. The file is replaced only after a complete write.
func (o *ExportText) Execute(path string) Result {
	return run(o.env, func(log *report.Log) (int, error) {
		objects := layout.SortObjects(visibleTextObjects(o.env.Host))

		rows := make([]csvio.ExportRow, 0, len(objects))
		for _, obj := range objects {
			rows = append(rows, exportRow(obj))
		}

		if err := csvio.WriteExport(path, rows); err != nil {
			log.Error(report.MsgWriteFailed, map[string]any{"Path": path, "Err": err.Error()})
			return 0, cancel{}
		}

		log.Info(report.MsgExportedObjects, map[string]any{"Count": len(rows), "Path": path})
		return len(rows), nil
	})
}

func visibleTextObjects(host scene.Host) []*scene.Object {
	var texts []*scene.Object
	for _, obj := range host.ViewLayerObjects() {
		if obj.IsText() && obj.Visible() {
			texts = append(texts, obj)
		}
	}
	return texts
}

func exportRow(obj *scene.Object) csvio.ExportRow {
	row := csvio.ExportRow{Name: obj.Name, Text: obj.Text.Body}
	if colls := obj.Collections(); len(colls) > 0 {
		row.Collection = colls[0].Name
	}
	return row
}
