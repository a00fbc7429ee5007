package scene

import (
	"fmt"
	"math/rand"
)

// Memory is an in-process scene database implementing Host
type Memory struct {
	root        *Collection
	objects     []*Object
	byName      map[string]*Object
	collections []*Collection
	materials   []*Material
	nodeGroups  []*NodeGroup
	actions     []*Action
	fonts       []*Font

	// RandomColor picks the emission colour of materials created by
	// EnsureMaterial
	RandomColor func() [4]float32
}

// NewMemory creates an empty scene
func NewMemory() *Memory {
	return &Memory{
		root:   &Collection{Name: "Scene Collection"},
		byName: make(map[string]*Object),
		RandomColor: func() [4]float32 {
			return [4]float32{rand.Float32(), rand.Float32(), rand.Float32(), 1}
		},
	}
}

var _ Host = (*Memory)(nil)

// Root returns the scene's master collection
func (m *Memory) Root() *Collection {
	return m.root
}

// Objects returns every object, linked or not, in creation order
func (m *Memory) Objects() []*Object {
	return m.objects
}

// Collections returns all collections below the root, in creation order
func (m *Memory) Collections() []*Collection {
	return m.collections
}

func (m *Memory) Materials() []*Material   { return m.materials }
func (m *Memory) NodeGroups() []*NodeGroup { return m.nodeGroups }
func (m *Memory) Actions() []*Action       { return m.actions }
func (m *Memory) Fonts() []*Font           { return m.fonts }

// AddObject registers obj under a unique name and returns it
func (m *Memory) AddObject(obj *Object) *Object {
	obj.Name = m.uniqueName(obj.Name)
	m.objects = append(m.objects, obj)
	m.byName[obj.Name] = obj
	return obj
}

// AddCollection creates a collection under parent (the root when nil)
func (m *Memory) AddCollection(name string, parent *Collection) *Collection {
	if parent == nil {
		parent = m.root
	}
	coll := &Collection{Name: name, Parent: parent}
	parent.Children = append(parent.Children, coll)
	m.collections = append(m.collections, coll)
	return coll
}

// AddMaterial registers a material, replacing one with the same name
func (m *Memory) AddMaterial(mat *Material) *Material {
	for i, existing := range m.materials {
		if existing.Name == mat.Name {
			m.materials[i] = mat
			return mat
		}
	}
	m.materials = append(m.materials, mat)
	return mat
}

// AddNodeGroup registers a node group
func (m *Memory) AddNodeGroup(name string) *NodeGroup {
	if g, ok := m.NodeGroup(name); ok {
		return g
	}
	g := &NodeGroup{Name: name}
	m.nodeGroups = append(m.nodeGroups, g)
	return g
}

// AddAction registers an action
func (m *Memory) AddAction(action *Action) *Action {
	if a, ok := m.Action(action.Name); ok {
		return a
	}
	m.actions = append(m.actions, action)
	return action
}

// AddFont registers a font
func (m *Memory) AddFont(font *Font) *Font {
	if f, ok := m.Font(font.Name); ok {
		return f
	}
	m.fonts = append(m.fonts, font)
	return font
}

func (m *Memory) Object(name string) (*Object, bool) {
	obj, ok := m.byName[name]
	return obj, ok
}

func (m *Memory) ViewLayerObjects() []*Object {
	var linked []*Object
	for _, obj := range m.objects {
		if len(obj.collections) > 0 {
			linked = append(linked, obj)
		}
	}
	return linked
}

func (m *Memory) NewTextObject(name string) *Object {
	obj := &Object{
		Name:       name,
		Type:       TypeText,
		Transform:  IdentityTransform(),
		Visibility: AllRaysVisible(),
		Text: &TextData{
			Name:        name,
			Body:        "Text",
			Size:        1,
			AlignX:      AlignLeft,
			AlignY:      AlignTop,
			ResolutionU: 12,
		},
	}
	return m.AddObject(obj)
}

func (m *Memory) DuplicateObject(src *Object) *Object {
	dup := *src
	dup.collections = nil
	dup.Modifiers = append([]*Modifier(nil), src.Modifiers...)
	if src.Text != nil {
		dup.Text = src.Text.Copy()
	}
	return m.AddObject(&dup)
}

func (m *Memory) RenameObject(obj *Object, name string) string {
	if obj.Name == name {
		return name
	}
	if m.byName[obj.Name] == obj {
		delete(m.byName, obj.Name)
	}
	obj.Name = m.uniqueName(name)
	m.byName[obj.Name] = obj
	return obj.Name
}

func (m *Memory) Collection(name string) (*Collection, bool) {
	for _, coll := range m.collections {
		if coll.Name == name {
			return coll, true
		}
	}
	return nil, false
}

func (m *Memory) EnsureCollection(name string) *Collection {
	if coll, ok := m.Collection(name); ok {
		return coll
	}
	return m.AddCollection(name, nil)
}

func (m *Memory) LinkObject(coll *Collection, obj *Object) {
	for _, c := range obj.collections {
		if c == coll {
			return
		}
	}
	coll.Objects = append(coll.Objects, obj)
	obj.collections = append(obj.collections, coll)
}

func (m *Memory) Material(name string) (*Material, bool) {
	for _, mat := range m.materials {
		if mat.Name == name {
			return mat, true
		}
	}
	return nil, false
}

func (m *Memory) EnsureMaterial(name string) *Material {
	if mat, ok := m.Material(name); ok {
		return mat
	}
	return m.AddMaterial(&Material{Name: name, Emission: m.RandomColor()})
}

func (m *Memory) NodeGroup(name string) (*NodeGroup, bool) {
	for _, g := range m.nodeGroups {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

func (m *Memory) Action(name string) (*Action, bool) {
	for _, a := range m.actions {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func (m *Memory) Font(name string) (*Font, bool) {
	for _, f := range m.fonts {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// uniqueName returns name, or name.NNN with the lowest free suffix
func (m *Memory) uniqueName(name string) string {
	if _, taken := m.byName[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := m.byName[candidate]; !taken {
			return candidate
		}
	}
}
