package operator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scene"
	"codeberg.org/snonux/subtitlecsv/internal/testutil"
)

func TestExportText(t *testing.T) {
	m := testutil.NewStage()
	testutil.AddText(m, "Signs", "Bottom", "bottom line", 0, -2)
	testutil.AddText(m, "Signs", "TopLeft", "left", -3, 2)
	testutil.AddText(m, "Titles", "TopRight", `the "right"`, 3, 2.02)
	hidden := testutil.AddText(m, "Signs", "Hidden", "nope", 0, 5)
	hidden.Hidden = true
	m.NewTextObject("Unlinked")
	m.LinkObject(m.EnsureCollection("Props"), m.AddObject(&scene.Object{Name: "Cube", Type: scene.TypeMesh}))

	path := filepath.Join(t.TempDir(), "text_objects.csv")
	res := NewExportText(Env{Host: m}).Execute(path)

	require.True(t, res.OK())
	assert.Equal(t, 3, res.Count)
	testutil.AssertFileContent(t, path, []byte(
		`"datablock_name";"Collection";"Text Contents"`+"\n"+
			`"TopRight";"Titles";"the ""right"""`+"\n"+
			`"TopLeft";"Signs";"left"`+"\n"+
			`"Bottom";"Signs";"bottom line"`+"\n"))

	entries := res.Log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, report.Info, entries[0].Level)
	assert.Equal(t, "Exported 3 TEXT objects to "+path, entries[0].Message)
}

func TestExportText_FirstCollectionWins(t *testing.T) {
	m := testutil.NewStage()
	obj := testutil.AddText(m, "First", "Shared", "x", 0, 0)
	m.LinkObject(m.EnsureCollection("Second"), obj)

	path := filepath.Join(t.TempDir(), "out.csv")
	res := NewExportText(Env{Host: m}).Execute(path)

	require.True(t, res.OK())
	testutil.AssertFileContains(t, path, `"Shared";"First";"x"`)
}

func TestExportText_InvalidPath(t *testing.T) {
	m := testutil.NewStage()
	testutil.AddText(m, "Signs", "A", "a", 0, 0)

	path := filepath.Join(t.TempDir(), "no", "such", "dir.csv")
	res := NewExportText(Env{Host: m}).Execute(path)

	assert.Equal(t, Cancelled, res.Status)
	assert.Equal(t, 1, res.Log.Count(report.Error))
	testutil.AssertFileNotExists(t, path)
}

func TestExportText_OnReport(t *testing.T) {
	var seen []report.Entry
	env := Env{Host: testutil.NewStage(), OnReport: func(e report.Entry) { seen = append(seen, e) }}
	path := filepath.Join(t.TempDir(), "x.csv")

	res := NewExportText(env).Execute(path)

	require.Len(t, seen, 1)
	assert.Equal(t, res.Log.Entries(), seen)
	assert.Equal(t, "[INFO] Exported 0 TEXT objects to "+path, seen[0].String())
}

func TestExportText_Localized(t *testing.T) {
	env := Env{Host: testutil.NewStage(), Catalog: report.NewCatalog("ja")}

	res := NewExportText(env).Execute(filepath.Join(t.TempDir(), "x.csv"))

	require.True(t, res.OK())
	assert.NotContains(t, res.Log.Entries()[0].Message, "Exported")
}

// panicHost fails the first scene query
type panicHost struct {
	*scene.Memory
}

func (panicHost) ViewLayerObjects() []*scene.Object {
	panic("view layer unavailable")
}

func TestExportText_PanicIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")

	res := NewExportText(Env{Host: panicHost{testutil.NewStage()}}).Execute(path)

	assert.Equal(t, Cancelled, res.Status)
	require.Len(t, res.Log.Entries(), 1)
	assert.Equal(t, "Internal error: view layer unavailable", res.Log.Entries()[0].Message)
	testutil.AssertFileNotExists(t, path)
}
