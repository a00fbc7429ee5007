package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_English(t *testing.T) {
	c := NewCatalog("")
	got := c.Message(MsgExportedObjects, map[string]any{"Count": 3, "Path": "/tmp/x.csv"})
	assert.Equal(t, "Exported 3 TEXT objects to /tmp/x.csv", got)
}

func TestCatalog_Japanese(t *testing.T) {
	c := NewCatalog("ja")
	got := c.Message(MsgCameraMissing, nil)
	assert.Equal(t, "カメラが見つかりません", got)
}

func TestCatalog_UnknownLocaleFallsBack(t *testing.T) {
	c := NewCatalog("xx")
	got := c.Message(MsgObjectNotText, map[string]any{"Name": "Sub.A.1"})
	assert.Equal(t, "Object 'Sub.A.1' not TEXT. Ignoring.", got)
}

func TestCatalog_UnknownID(t *testing.T) {
	assert.Equal(t, "NoSuchMessage", NewCatalog("").Message("NoSuchMessage", nil))
}

func TestLog(t *testing.T) {
	var seen []Entry
	l := NewLog(nil)
	l.OnEntry = func(e Entry) { seen = append(seen, e) }

	l.Warning(MsgNodeGroupMissing, map[string]any{"Name": "Italics (Shear)"})
	l.Error(MsgCameraMissing, nil)
	l.Info(MsgImportedSubtitles, map[string]any{"Count": 0, "Path": "subs.csv"})

	require.Len(t, l.Entries(), 3)
	assert.Equal(t, l.Entries(), seen)
	assert.Equal(t, 1, l.Count(Warning))
	assert.Equal(t, 1, l.Count(Error))
	assert.Equal(t, "[WARNING] Geometry Node 'Italics (Shear)' not found, ignoring.", l.Entries()[0].String())
}
