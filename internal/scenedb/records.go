package scenedb

import (
	"fmt"

	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// Nested object state is stored as JSON. References to shared resources
// are kept by name and resolved on load.

type textRecord struct {
	Name        string      `json:"name"`
	Body        string      `json:"body"`
	Size        float32     `json:"size"`
	AlignX      scene.Align `json:"align_x"`
	AlignY      scene.Align `json:"align_y"`
	ResolutionU int         `json:"resolution_u"`
	Font        string      `json:"font,omitempty"`
	Materials   []string    `json:"materials,omitempty"`
}

type modifierRecord struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	NodeGroup string         `json:"node_group,omitempty"`
	Inputs    map[string]any `json:"inputs,omitempty"`
}

type stripRecord struct {
	Name          string              `json:"name"`
	Action        string              `json:"action,omitempty"`
	FrameStart    float32             `json:"frame_start"`
	Scale         float32             `json:"scale"`
	Extrapolation scene.Extrapolation `json:"extrapolation"`
}

type trackRecord struct {
	Name   string        `json:"name"`
	Strips []stripRecord `json:"strips"`
}

func newTextRecord(d *scene.TextData) *textRecord {
	if d == nil {
		return nil
	}
	rec := &textRecord{
		Name:        d.Name,
		Body:        d.Body,
		Size:        d.Size,
		AlignX:      d.AlignX,
		AlignY:      d.AlignY,
		ResolutionU: d.ResolutionU,
	}
	if d.Font != nil {
		rec.Font = d.Font.Name
	}
	for _, mat := range d.Materials {
		rec.Materials = append(rec.Materials, mat.Name)
	}
	return rec
}

func (r *textRecord) resolve(m *scene.Memory) (*scene.TextData, error) {
	d := &scene.TextData{
		Name:        r.Name,
		Body:        r.Body,
		Size:        r.Size,
		AlignX:      r.AlignX,
		AlignY:      r.AlignY,
		ResolutionU: r.ResolutionU,
	}
	if r.Font != "" {
		font, ok := m.Font(r.Font)
		if !ok {
			return nil, fmt.Errorf("font %q: %w", r.Font, scene.ErrNotFound)
		}
		d.Font = font
	}
	for _, name := range r.Materials {
		mat, ok := m.Material(name)
		if !ok {
			return nil, fmt.Errorf("material %q: %w", name, scene.ErrNotFound)
		}
		d.Materials = append(d.Materials, mat)
	}
	return d, nil
}

func newModifierRecords(mods []*scene.Modifier) []modifierRecord {
	recs := make([]modifierRecord, 0, len(mods))
	for _, mod := range mods {
		rec := modifierRecord{Name: mod.Name, Type: mod.Type, Inputs: mod.Inputs}
		if mod.NodeGroup != nil {
			rec.NodeGroup = mod.NodeGroup.Name
		}
		recs = append(recs, rec)
	}
	return recs
}

func resolveModifiers(m *scene.Memory, recs []modifierRecord) ([]*scene.Modifier, error) {
	var mods []*scene.Modifier
	for _, rec := range recs {
		mod := &scene.Modifier{Name: rec.Name, Type: rec.Type, Inputs: rec.Inputs}
		if mod.Inputs == nil {
			mod.Inputs = make(map[string]any)
		}
		if rec.NodeGroup != "" {
			group, ok := m.NodeGroup(rec.NodeGroup)
			if !ok {
				return nil, fmt.Errorf("node group %q: %w", rec.NodeGroup, scene.ErrNotFound)
			}
			mod.NodeGroup = group
		}
		mods = append(mods, mod)
	}
	return mods, nil
}

func newTrackRecords(anim *scene.AnimationData) []trackRecord {
	if anim == nil {
		return nil
	}
	recs := make([]trackRecord, 0, len(anim.Tracks))
	for _, track := range anim.Tracks {
		rec := trackRecord{Name: track.Name, Strips: []stripRecord{}}
		for _, strip := range track.Strips {
			s := stripRecord{
				Name:          strip.Name,
				FrameStart:    strip.FrameStart,
				Scale:         strip.Scale,
				Extrapolation: strip.Extrapolation,
			}
			if strip.Action != nil {
				s.Action = strip.Action.Name
			}
			rec.Strips = append(rec.Strips, s)
		}
		recs = append(recs, rec)
	}
	return recs
}

func resolveAnimation(m *scene.Memory, recs []trackRecord) (*scene.AnimationData, error) {
	anim := &scene.AnimationData{}
	for _, rec := range recs {
		track := anim.NewTrack(rec.Name)
		for _, s := range rec.Strips {
			var action *scene.Action
			if s.Action != "" {
				var ok bool
				if action, ok = m.Action(s.Action); !ok {
					return nil, fmt.Errorf("action %q: %w", s.Action, scene.ErrNotFound)
				}
			}
			strip := track.NewStrip(s.Name, s.FrameStart, action)
			strip.Scale = s.Scale
			strip.Extrapolation = s.Extrapolation
		}
	}
	return anim, nil
}
