// Package layout computes world-space bounds of text objects and orders
// them the way a reader scans the screen: top to bottom, and within a line
// from the rightmost object to the leftmost.
package layout

import (
	"cmp"
	"slices"

	"cogentcore.org/core/math32"

	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// DefaultTolerance pads vertical extents before the same-line test
const DefaultTolerance float32 = 0.1

// Comparator is a three-way comparison of two world-space boxes.
// It returns a negative number when a reads before b, 0 when they tie.
type Comparator func(a, b math32.Box3) int

// WorldBounds transforms the 8 corners of a local box by world and returns
// the axis-aligned box spanning them
func WorldBounds(local math32.Box3, world *math32.Matrix4) math32.Box3 {
	return local.MulMatrix4(world)
}

// ObjectBounds returns the world-space bounds of obj
func ObjectBounds(obj *scene.Object) math32.Box3 {
	world := obj.MatrixWorld()
	return WorldBounds(obj.Bounds, &world)
}

// RoughlySameHeight reports whether the Z extents of a and b, each padded
// by eps, overlap
func RoughlySameHeight(a, b math32.Box3, eps float32) bool {
	lowerA, upperA := a.Min.Z-eps, a.Max.Z+eps
	lowerB, upperB := b.Min.Z-eps, b.Max.Z+eps
	return lowerA <= upperB && lowerB <= upperA
}

// NewComparator returns the reading-order comparator for tolerance eps.
// Boxes on the same line order by descending Max.X, otherwise by
// descending Min.Z.
func NewComparator(eps float32) Comparator {
	return func(a, b math32.Box3) int {
		if RoughlySameHeight(a, b, eps) {
			return cmp.Compare(b.Max.X, a.Max.X)
		}
		return cmp.Compare(b.Min.Z, a.Min.Z)
	}
}

// Compare is the comparator with DefaultTolerance
func Compare(a, b math32.Box3) int {
	return NewComparator(DefaultTolerance)(a, b)
}

// SortStable orders items in place with compare applied to their bounds.
// Items that compare equal keep their relative order.
func SortStable[T any](items []T, bounds func(T) math32.Box3, compare Comparator) {
	boxes := make([]math32.Box3, len(items))
	order := make([]int, len(items))
	for i, item := range items {
		boxes[i] = bounds(item)
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compare(boxes[a], boxes[b])
	})
	sorted := make([]T, len(items))
	for i, idx := range order {
		sorted[i] = items[idx]
	}
	copy(items, sorted)
}

// SortObjects returns a reading-order copy of objs
func SortObjects(objs []*scene.Object) []*scene.Object {
	sorted := slices.Clone(objs)
	SortStable(sorted, ObjectBounds, Compare)
	return sorted
}
