package operator

import (
	"os"

	"codeberg.org/snonux/subtitlecsv/internal/csvio"
	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// Outline modifier inputs
const (
	outlineThickness = 0.002
	outlineScaleX    = 1.005
	outlineScaleY    = 1.005
	italicsShear     = 0.4
)

// SubtitleOptions names the resources the subtitle importer uses
type SubtitleOptions struct {
	Collection   string
	Camera       string
	Action       string
	OutlineGroup string
	ItalicsGroup string
	BaseMaterial string
	Size         float32
}

// DefaultSubtitleOptions returns the stock subtitle setup
func DefaultSubtitleOptions() SubtitleOptions {
	return SubtitleOptions{
		Collection:   "English",
		Camera:       "Camera",
		Action:       "SubtitleAnim",
		OutlineGroup: "Text Outliner S White",
		ItalicsGroup: "Italics (Shear)",
		BaseMaterial: "White No Shadows",
		Size:         0.056412,
	}
}

// ImportSubtitles creates or updates one camera-parented text object per
// subtitle row and gives it a single strip of the shared action. Rerunning
// with the same file updates the objects in place.
type ImportSubtitles struct {
	env  Env
	opts SubtitleOptions
}

// NewImportSubtitles creates the animated subtitle importer
func NewImportSubtitles(env Env, opts SubtitleOptions) *ImportSubtitles {
	return &ImportSubtitles{env: env, opts: opts}
}

func (o *ImportSubtitles) ID() string              { return "object.import_animated_subs_text_objects_csv" }
func (o *ImportSubtitles) Label() string           { return "Import Animated Subtitles from CSV" }
func (o *ImportSubtitles) DefaultFileName() string { return "animated_subtitle_objects.csv" }

// SubtitleObjectName is the object name used for a speaker's line uid
func SubtitleObjectName(speaker, uid string) string {
	return "Sub." + speaker + "." + uid
}

// effects holds the optional node groups found for this run
type effects struct {
	outline *scene.NodeGroup
	italics *scene.NodeGroup
}

// Execute imports the subtitles in path
func (o *ImportSubtitles) Execute(path string) Result {
	return run(o.env, func(log *report.Log) (int, error) {
		host := o.env.Host

		camera, ok := host.Object(o.opts.Camera)
		if !ok {
			log.Error(report.MsgCameraMissing, nil)
			return 0, cancel{}
		}
		action, ok := host.Action(o.opts.Action)
		if !ok {
			log.Error(report.MsgActionMissing, map[string]any{"Name": o.opts.Action})
			return 0, cancel{}
		}

		var fx effects
		if fx.outline, ok = host.NodeGroup(o.opts.OutlineGroup); !ok {
			log.Warning(report.MsgNodeGroupMissing, map[string]any{"Name": o.opts.OutlineGroup})
		}
		if fx.italics, ok = host.NodeGroup(o.opts.ItalicsGroup); !ok {
			log.Warning(report.MsgNodeGroupMissing, map[string]any{"Name": o.opts.ItalicsGroup})
		}

		rows, err := readFile(log, path, func(f *os.File) ([]csvio.SubtitleRow, error) {
			return csvio.ReadSubtitles(f)
		})
		if err != nil {
			return 0, err
		}

		coll := host.EnsureCollection(o.opts.Collection)

		imported := 0
		for _, row := range rows {
			if row.IsComment() {
				continue
			}

			name := SubtitleObjectName(row.Speaker, row.UID)
			obj, exists := host.Object(name)
			if !exists {
				obj = o.createSubtitle(host, coll, name, row, fx)
			}
			if !obj.IsText() {
				log.Warning(report.MsgObjectNotText, map[string]any{"Name": name})
				continue
			}

			o.updateSubtitle(obj, camera, action, row)
			imported++
		}

		log.Info(report.MsgImportedSubtitles, map[string]any{"Count": imported, "Path": path})
		return imported, nil
	})
}

// createSubtitle makes a new linked text object with materials and effects
func (o *ImportSubtitles) createSubtitle(host scene.Host, coll *scene.Collection, name string, row csvio.SubtitleRow, fx effects) *scene.Object {
	obj := host.NewTextObject(name)
	host.LinkObject(coll, obj)

	if mat, ok := host.Material(o.opts.BaseMaterial); ok {
		obj.Text.Materials = append(obj.Text.Materials, mat)
	}

	if fx.outline != nil {
		bg := host.EnsureMaterial(row.Speaker + " Subs")
		mod := obj.NewModifier("GeometryNodes", fx.outline)
		mod.Inputs["Socket_2"] = outlineThickness
		mod.Inputs["Socket_3"] = outlineScaleX
		mod.Inputs["Socket_4"] = outlineScaleY
		mod.Inputs["Socket_5"] = bg.Name
		obj.Text.Materials = append(obj.Text.Materials, bg)
	}

	if fx.italics != nil && row.Italic() {
		mod := obj.NewModifier("GeometryNodes", fx.italics)
		mod.Inputs["Socket_2"] = italicsShear
	}

	return obj
}

// updateSubtitle applies text, look, placement and timing from row
func (o *ImportSubtitles) updateSubtitle(obj, camera *scene.Object, action *scene.Action, row csvio.SubtitleRow) {
	obj.Text.Body = row.Text
	obj.Text.Size = o.opts.Size
	obj.Text.AlignX = scene.AlignCenter
	obj.Text.AlignY = scene.AlignCenter

	// only the camera sees subtitles directly
	obj.Visibility.Diffuse = false
	obj.Visibility.Glossy = false
	obj.Visibility.Shadow = false
	obj.Visibility.Transmission = false
	obj.Visibility.VolumeScatter = false

	obj.Transform.Location = camera.Transform.Location
	obj.Parent = camera

	obj.ClearAnimation()
	track := obj.CreateAnimation().NewTrack(o.opts.Action)
	strip := track.NewStrip(o.opts.Action, float32(row.From), action)
	strip.Scale = float32(row.Length)
	strip.Extrapolation = scene.ExtrapolationNothing
}
