package gui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/subtitlecsv/internal/operator"
	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scenedb"
	"codeberg.org/snonux/subtitlecsv/internal/testutil"
)

func newProjectSession(t *testing.T) (*session, string) {
	t.Helper()

	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.db")
	m := testutil.NewStage()
	testutil.AddText(m, "Signs", "Shop", "Bakery", 0, 2)
	require.NoError(t, scenedb.Save(scenePath, m))

	return newSession(dir, scenePath, ""), dir
}

func TestSession_DefaultPath(t *testing.T) {
	s, dir := newProjectSession(t)

	op := s.describe(menuOperators[0])
	assert.Equal(t, filepath.Join(dir, "text_objects.csv"), s.defaultPath(op))

	op = s.describe(menuOperators[2])
	assert.Equal(t, filepath.Join(dir, "animated_subtitle_objects.csv"), s.defaultPath(op))
}

func TestSession_ExportDoesNotSave(t *testing.T) {
	s, dir := newProjectSession(t)
	before, err := os.ReadFile(s.ScenePath())
	require.NoError(t, err)

	var seen []report.Entry
	csvPath := filepath.Join(dir, "out.csv")
	res, err := s.run(menuOperators[0], csvPath, func(e report.Entry) { seen = append(seen, e) })
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, 1, res.Count)
	assert.Len(t, seen, 1)
	testutil.AssertFileContains(t, csvPath, `"Shop"`)

	after, err := os.ReadFile(s.ScenePath())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	testutil.AssertFileNotExists(t, filepath.Join(dir, "archive"))
}

func TestSession_ImportSaves(t *testing.T) {
	s, dir := newProjectSession(t)

	csvPath := testutil.WriteCSV(t, dir, "translated.csv", "datablock_name;Text Contents", "Shop;パン屋")
	res, err := s.run(menuOperators[1], csvPath, nil)
	require.NoError(t, err)
	require.True(t, res.OK())

	m, err := scenedb.Load(s.ScenePath())
	require.NoError(t, err)
	obj, ok := m.Object("Shop_jp")
	require.True(t, ok)
	assert.Equal(t, "パン屋", obj.Text.Body)

	entries, err := os.ReadDir(filepath.Join(dir, "archive"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSession_CancelledReloads(t *testing.T) {
	s, dir := newProjectSession(t)

	res, err := s.run(menuOperators[1], filepath.Join(dir, "missing.csv"), nil)
	require.NoError(t, err)
	assert.Equal(t, operator.Cancelled, res.Status)
	assert.Nil(t, s.scene)
	assert.NotEmpty(t, firstError(res))

	sum := summarize(res)
	assert.Equal(t, operator.Cancelled, sum.status)
	assert.Equal(t, 1, sum.errors)
	assert.Equal(t, 0, sum.warnings)
}

func TestSession_MissingDocument(t *testing.T) {
	dir := t.TempDir()
	s := newSession(dir, filepath.Join(dir, "scene.db"), "")

	_, err := s.run(menuOperators[0], filepath.Join(dir, "out.csv"), nil)
	assert.ErrorIs(t, err, scenedb.ErrNoDocument)
}

func TestSession_Open(t *testing.T) {
	s, _ := newProjectSession(t)

	other := filepath.Join(t.TempDir(), "other.db")
	require.NoError(t, scenedb.Save(other, scenedb.NewStockScene()))

	require.NoError(t, s.open(other))
	assert.Equal(t, other, s.ScenePath())
	assert.Error(t, s.open(filepath.Join(t.TempDir(), "none.db")))
	assert.Equal(t, other, s.ScenePath())
}

func TestFirstError_NoLog(t *testing.T) {
	assert.Empty(t, firstError(operator.Result{}))
	assert.Equal(t, resultSummary{}, summarize(operator.Result{}))
}
