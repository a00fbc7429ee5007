package testutil

import (
	"context"
	"fmt"
	"sync"

	"cogentcore.org/core/math32"

	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// MockCompleter mocks an LLM chat endpoint. Responses are served in order;
// once exhausted, the last one repeats.
type MockCompleter struct {
	Responses []string
	Errors    []error
	Calls     []string

	mu sync.Mutex
}

// Complete records the prompt and returns the next scripted response
func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Calls)
	m.Calls = append(m.Calls, prompt)

	if call < len(m.Errors) && m.Errors[call] != nil {
		return "", m.Errors[call]
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("no mock response for call %d", call)
	}
	if call >= len(m.Responses) {
		return m.Responses[len(m.Responses)-1], nil
	}
	return m.Responses[call], nil
}

// Stage names used by NewStage
const (
	StageCamera   = "Camera"
	StageAction   = "SubtitleAnim"
	StageOutline  = "Text Outliner S White"
	StageItalics  = "Italics (Shear)"
	StageMaterial = "White No Shadows"
	StageFont     = "Bfont Regular"
)

// NewStage returns a scene with everything the importers look up: a camera,
// the subtitle action, both effect node groups, the base material and the
// translation font
func NewStage() *scene.Memory {
	m := scene.NewMemory()
	m.RandomColor = func() [4]float32 { return [4]float32{0.5, 0.5, 0.5, 1} }

	cam := m.AddObject(&scene.Object{
		Name:       StageCamera,
		Type:       scene.TypeCamera,
		Transform:  scene.IdentityTransform(),
		Visibility: scene.AllRaysVisible(),
	})
	cam.Transform.Location = math32.Vec3(0, -10, 1.5)
	m.LinkObject(m.Root(), cam)

	m.AddAction(&scene.Action{Name: StageAction, FrameStart: 0, FrameEnd: 1})
	m.AddNodeGroup(StageOutline)
	m.AddNodeGroup(StageItalics)
	m.AddMaterial(&scene.Material{Name: StageMaterial, Emission: [4]float32{1, 1, 1, 1}})
	m.AddFont(&scene.Font{Name: StageFont, Path: "<builtin>"})
	return m
}

// AddText adds a linked, visible text object with unit-height bounds
// placed at x, z
func AddText(m *scene.Memory, collection, name, body string, x, z float32) *scene.Object {
	obj := m.NewTextObject(name)
	obj.Text.Body = body
	obj.Bounds = math32.B3(0, 0, 0, 1, 0.1, 0.5)
	obj.Transform.Location = math32.Vec3(x, 0, z)
	m.LinkObject(m.EnsureCollection(collection), obj)
	return obj
}
