package scene

import (
	"cogentcore.org/core/math32"
)

// ObjectType mirrors the host's object type identifiers
type ObjectType string

const (
	TypeText   ObjectType = "FONT"
	TypeMesh   ObjectType = "MESH"
	TypeCamera ObjectType = "CAMERA"
	TypeEmpty  ObjectType = "EMPTY"
)

// Align is a text alignment value
type Align string

const (
	AlignLeft   Align = "LEFT"
	AlignCenter Align = "CENTER"
	AlignRight  Align = "RIGHT"
	AlignTop    Align = "TOP"
	AlignBottom Align = "BOTTOM"
)

// Extrapolation controls what a strip does outside its frame range
type Extrapolation string

const (
	ExtrapolationNothing     Extrapolation = "NOTHING"
	ExtrapolationHold        Extrapolation = "HOLD"
	ExtrapolationHoldForward Extrapolation = "HOLD_FORWARD"
)

// Transform is an object's location, rotation and scale relative to its parent
type Transform struct {
	Location math32.Vector3
	Rotation math32.Quat
	Scale    math32.Vector3
}

// IdentityTransform returns a transform that leaves points unchanged
func IdentityTransform() Transform {
	return Transform{
		Rotation: math32.NewQuat(0, 0, 0, 1),
		Scale:    math32.Vec3(1, 1, 1),
	}
}

// Matrix returns the local transform matrix
func (t Transform) Matrix() math32.Matrix4 {
	var m math32.Matrix4
	m.SetTransform(t.Location, t.Rotation, t.Scale)
	return m
}

// RayVisibility holds the per-ray-type visibility switches of an object
type RayVisibility struct {
	Camera        bool `json:"camera"`
	Diffuse       bool `json:"diffuse"`
	Glossy        bool `json:"glossy"`
	Shadow        bool `json:"shadow"`
	Transmission  bool `json:"transmission"`
	VolumeScatter bool `json:"volume_scatter"`
}

// AllRaysVisible is the host default for new objects
func AllRaysVisible() RayVisibility {
	return RayVisibility{
		Camera:        true,
		Diffuse:       true,
		Glossy:        true,
		Shadow:        true,
		Transmission:  true,
		VolumeScatter: true,
	}
}

// Font is a loaded font resource
type Font struct {
	Name string
	Path string
}

// Material is a shading material. Only the emission colour is tracked.
type Material struct {
	Name     string
	Emission [4]float32
}

// NodeGroup is a reusable procedural effect definition
type NodeGroup struct {
	Name string
}

// Action is a reusable block of keyframes covering FrameStart..FrameEnd
type Action struct {
	Name       string
	FrameStart float32
	FrameEnd   float32
}

// Length returns the number of frames the action spans
func (a *Action) Length() float32 {
	return a.FrameEnd - a.FrameStart
}

// Modifier attaches a node group to an object with per-socket input values.
// Input values are float64 or the name of a material.
type Modifier struct {
	Name      string
	Type      string
	NodeGroup *NodeGroup
	Inputs    map[string]any
}

// Strip places an action on a track
type Strip struct {
	Name          string
	Action        *Action
	FrameStart    float32
	Scale         float32
	Extrapolation Extrapolation
}

// FrameEnd returns the last frame covered by the strip
func (s *Strip) FrameEnd() float32 {
	length := float32(0)
	if s.Action != nil {
		length = s.Action.Length()
	}
	return s.FrameStart + length*s.Scale
}

// Track is a non-linear animation track
type Track struct {
	Name   string
	Strips []*Strip
}

// NewStrip appends a strip for action starting at frame. Scale defaults to 1.
func (t *Track) NewStrip(name string, frame float32, action *Action) *Strip {
	strip := &Strip{
		Name:          name,
		Action:        action,
		FrameStart:    frame,
		Scale:         1,
		Extrapolation: ExtrapolationHold,
	}
	t.Strips = append(t.Strips, strip)
	return strip
}

// AnimationData holds an object's NLA tracks
type AnimationData struct {
	Tracks []*Track
}

// NewTrack appends an empty track
func (a *AnimationData) NewTrack(name string) *Track {
	track := &Track{Name: name}
	a.Tracks = append(a.Tracks, track)
	return track
}

// TextData is the data block behind a text object
type TextData struct {
	Name        string
	Body        string
	Size        float32
	AlignX      Align
	AlignY      Align
	ResolutionU int
	Font        *Font
	Materials   []*Material
}

// Copy returns a shallow copy; the material slice is cloned, the materials are shared
func (d *TextData) Copy() *TextData {
	c := *d
	c.Materials = append([]*Material(nil), d.Materials...)
	return &c
}

// Collection groups objects. Objects are kept in link order.
type Collection struct {
	Name     string
	Parent   *Collection
	Children []*Collection
	Objects  []*Object
}

// Object is a scene entity
type Object struct {
	Name       string
	Type       ObjectType
	Hidden     bool
	Transform  Transform
	Bounds     math32.Box3 // local space
	Parent     *Object
	Visibility RayVisibility
	Modifiers  []*Modifier
	Animation  *AnimationData
	Text       *TextData

	collections []*Collection
}

// Collections returns the collections the object is linked into, in link order
func (o *Object) Collections() []*Collection {
	return o.collections
}

// IsText reports whether the object is a text object with text data
func (o *Object) IsText() bool {
	return o.Type == TypeText && o.Text != nil
}

// Visible reports whether the object is shown in the view layer
func (o *Object) Visible() bool {
	for p := o; p != nil; p = p.Parent {
		if p.Hidden {
			return false
		}
	}
	return true
}

// MatrixWorld returns the object's world transform including all parents
func (o *Object) MatrixWorld() math32.Matrix4 {
	local := o.Transform.Matrix()
	if o.Parent == nil {
		return local
	}
	parent := o.Parent.MatrixWorld()
	var world math32.Matrix4
	world.MulMatrices(&parent, &local)
	return world
}

// NewModifier appends a node-graph modifier and returns it
func (o *Object) NewModifier(name string, group *NodeGroup) *Modifier {
	mod := &Modifier{
		Name:      name,
		Type:      "NODES",
		NodeGroup: group,
		Inputs:    make(map[string]any),
	}
	o.Modifiers = append(o.Modifiers, mod)
	return mod
}

// ClearAnimation drops all animation data
func (o *Object) ClearAnimation() {
	o.Animation = nil
}

// CreateAnimation ensures animation data exists and returns it
func (o *Object) CreateAnimation() *AnimationData {
	if o.Animation == nil {
		o.Animation = &AnimationData{}
	}
	return o.Animation
}
