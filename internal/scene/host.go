package scene

import "errors"

// ErrNotFound is returned when a named scene resource does not exist
var ErrNotFound = errors.New("not found")

// Host is the part of the host application's scene API the operators use.
// Every shared resource is looked up by name through it.
type Host interface {
	// Object looks up an object by name
	Object(name string) (*Object, bool)
	// ViewLayerObjects returns all objects linked into the scene, in creation order
	ViewLayerObjects() []*Object
	// NewTextObject creates an unlinked text object and a text data block
	// sharing its name
	NewTextObject(name string) *Object
	// DuplicateObject creates an unlinked shallow copy of obj and its text data
	DuplicateObject(obj *Object) *Object
	// RenameObject renames obj, suffixing .001, .002... on a clash, and
	// returns the name it got
	RenameObject(obj *Object, name string) string

	Collection(name string) (*Collection, bool)
	// EnsureCollection returns the named collection, creating it under the
	// scene root on first use
	EnsureCollection(name string) *Collection
	LinkObject(coll *Collection, obj *Object)

	Material(name string) (*Material, bool)
	// EnsureMaterial returns the named material, creating an emission
	// material with a random colour when missing
	EnsureMaterial(name string) *Material
	NodeGroup(name string) (*NodeGroup, bool)
	Action(name string) (*Action, bool)
	Font(name string) (*Font, bool)
}
