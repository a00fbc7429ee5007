package scene

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_NewTextObjectIsUnlinked(t *testing.T) {
	m := NewMemory()
	obj := m.NewTextObject("Title")

	assert.Equal(t, "Title", obj.Name)
	assert.True(t, obj.IsText())
	assert.Equal(t, "Title", obj.Text.Name)
	assert.Empty(t, m.ViewLayerObjects())

	coll := m.EnsureCollection("Texts")
	m.LinkObject(coll, obj)
	m.LinkObject(coll, obj)

	assert.Equal(t, []*Object{obj}, m.ViewLayerObjects())
	assert.Len(t, coll.Objects, 1)
	assert.Equal(t, []*Collection{coll}, obj.Collections())
}

func TestMemory_RenameObjectSuffixesOnClash(t *testing.T) {
	m := NewMemory()
	a := m.NewTextObject("A")
	b := m.NewTextObject("B")

	got := m.RenameObject(b, "A")
	assert.Equal(t, "A.001", got)

	c := m.NewTextObject("C")
	assert.Equal(t, "A.002", m.RenameObject(c, "A"))

	found, ok := m.Object("A")
	require.True(t, ok)
	assert.Same(t, a, found)

	_, ok = m.Object("B")
	assert.False(t, ok, "old name must be released")
}

func TestMemory_DuplicateObjectCopiesData(t *testing.T) {
	m := NewMemory()
	src := m.NewTextObject("Line")
	src.Text.Body = "hello"
	m.LinkObject(m.EnsureCollection("English"), src)

	dup := m.DuplicateObject(src)

	assert.Equal(t, "Line.001", dup.Name)
	assert.NotSame(t, src.Text, dup.Text)
	assert.Equal(t, "hello", dup.Text.Body)
	assert.Empty(t, dup.Collections())

	dup.Text.Body = "changed"
	assert.Equal(t, "hello", src.Text.Body)
}

func TestMemory_EnsureCollectionReuses(t *testing.T) {
	m := NewMemory()
	first := m.EnsureCollection("Japanese Text")
	second := m.EnsureCollection("Japanese Text")

	assert.Same(t, first, second)
	assert.Len(t, m.Collections(), 1)
	assert.Same(t, m.Root(), first.Parent)
}

func TestMemory_EnsureMaterialUsesRandomColor(t *testing.T) {
	m := NewMemory()
	m.RandomColor = func() [4]float32 { return [4]float32{0.1, 0.2, 0.3, 1} }

	mat := m.EnsureMaterial("Alice Subs")
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, mat.Emission)
	assert.Same(t, mat, m.EnsureMaterial("Alice Subs"))
}

func TestObject_VisibleFollowsParents(t *testing.T) {
	m := NewMemory()
	cam := m.AddObject(&Object{Name: "Camera", Type: TypeCamera, Transform: IdentityTransform()})
	sub := m.NewTextObject("Sub")
	sub.Parent = cam

	assert.True(t, sub.Visible())
	cam.Hidden = true
	assert.False(t, sub.Visible())
}

func TestObject_MatrixWorldComposesParent(t *testing.T) {
	m := NewMemory()
	parent := m.AddObject(&Object{Name: "P", Type: TypeEmpty, Transform: IdentityTransform()})
	parent.Transform.Location = math32.Vec3(1, 2, 3)
	child := m.NewTextObject("C")
	child.Transform.Location = math32.Vec3(1, 0, 0)
	child.Parent = parent

	world := child.MatrixWorld()
	assert.InDelta(t, 2, world[12], 1e-6)
	assert.InDelta(t, 2, world[13], 1e-6)
	assert.InDelta(t, 3, world[14], 1e-6)
}

func TestStrip_FrameEnd(t *testing.T) {
	action := &Action{Name: "SubtitleAnim", FrameStart: 0, FrameEnd: 1}
	track := (&AnimationData{}).NewTrack("SubtitleAnim")
	strip := track.NewStrip("SubtitleAnim", 10, action)
	strip.Scale = 20

	assert.Equal(t, float32(30), strip.FrameEnd())
}
