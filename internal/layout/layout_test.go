package layout

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"

	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

func box(minX, minZ, maxX, maxZ float32) math32.Box3 {
	return math32.B3(minX, 0, minZ, maxX, 0, maxZ)
}

func TestWorldBounds(t *testing.T) {
	tr := scene.IdentityTransform()
	tr.Location = math32.Vec3(10, 0, -2)
	tr.Scale = math32.Vec3(2, 2, 2)
	world := tr.Matrix()

	got := WorldBounds(math32.B3(-1, -1, -1, 1, 1, 1), &world)

	assert.InDelta(t, 8, got.Min.X, 1e-5)
	assert.InDelta(t, 12, got.Max.X, 1e-5)
	assert.InDelta(t, -4, got.Min.Z, 1e-5)
	assert.InDelta(t, 0, got.Max.Z, 1e-5)
}

func TestWorldBounds_RotationTakesExtrema(t *testing.T) {
	tr := scene.IdentityTransform()
	tr.Rotation = math32.NewQuatAxisAngle(math32.Vec3(0, 0, 1), math32.Pi/2)
	world := tr.Matrix()

	got := WorldBounds(math32.B3(0, 0, 0, 2, 1, 1), &world)

	assert.InDelta(t, -1, got.Min.X, 1e-5)
	assert.InDelta(t, 0, got.Max.X, 1e-5)
	assert.InDelta(t, 0, got.Min.Y, 1e-5)
	assert.InDelta(t, 2, got.Max.Y, 1e-5)
}

func TestRoughlySameHeight(t *testing.T) {
	tests := []struct {
		name string
		a, b math32.Box3
		want bool
	}{
		{"identical", box(0, 0, 1, 1), box(0, 0, 1, 1), true},
		{"overlapping", box(0, 0, 1, 1), box(0, 0.5, 1, 1.5), true},
		{"gap within padding", box(0, 0, 1, 1), box(0, 1.15, 1, 2), true},
		{"gap beyond padding", box(0, 0, 1, 1), box(0, 1.3, 1, 2), false},
		{"below", box(0, 5, 1, 6), box(0, 0, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoughlySameHeight(tt.a, tt.b, DefaultTolerance))
			assert.Equal(t, tt.want, RoughlySameHeight(tt.b, tt.a, DefaultTolerance))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b math32.Box3
		want int
	}{
		{"same line, a further right", box(2, 0, 3, 1), box(0, 0, 1, 1), -1},
		{"same line, a further left", box(0, 0, 1, 1), box(2, 0, 3, 1), 1},
		{"same line, equal max x", box(0, 0, 3, 1), box(1, 0.2, 3, 1.2), 0},
		{"a higher", box(0, 5, 1, 6), box(9, 0, 10, 1), -1},
		{"a lower", box(9, 0, 10, 1), box(0, 5, 1, 6), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestNewComparator_Tolerance(t *testing.T) {
	a, b := box(0, 0, 1, 1), box(5, 1.5, 6, 2)

	// apart with the default padding: higher box first
	assert.Equal(t, 1, NewComparator(DefaultTolerance)(a, b))
	// a wide padding merges them into one line: rightmost first
	assert.Equal(t, 1, NewComparator(0.5)(a, b))
	assert.Equal(t, -1, NewComparator(0.5)(b, a))
}

func TestSortStable_KeepsTies(t *testing.T) {
	type item struct {
		name string
		b    math32.Box3
	}
	items := []item{
		{"low-left", box(0, 0, 1, 1)},
		{"top-a", box(0, 10, 2, 11)},
		{"top-b", box(0, 10, 2, 11)},
		{"low-right", box(4, 0, 5, 1)},
		{"top-c", box(-3, 10.05, 2, 11)},
	}

	SortStable(items, func(i item) math32.Box3 { return i.b }, Compare)

	var names []string
	for _, i := range items {
		names = append(names, i.name)
	}
	assert.Equal(t, []string{"top-a", "top-b", "top-c", "low-right", "low-left"}, names)
}

func TestSortObjects(t *testing.T) {
	m := scene.NewMemory()
	place := func(name string, x, z float32) *scene.Object {
		obj := m.NewTextObject(name)
		obj.Bounds = math32.B3(0, 0, 0, 1, 0.2, 0.5)
		obj.Transform.Location = math32.Vec3(x, 0, z)
		return obj
	}
	bottom := place("bottom", 0, -3)
	topLeft := place("top-left", -2, 2)
	topRight := place("top-right", 2, 2.05)
	middle := place("middle", 0, 0)

	got := SortObjects([]*scene.Object{bottom, topLeft, topRight, middle})

	assert.Equal(t, []*scene.Object{topRight, topLeft, middle, bottom}, got)
}
