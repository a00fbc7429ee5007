package scenedb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cogentcore.org/core/math32"
	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// ErrNoDocument is returned by Load when the document file does not exist
var ErrNoDocument = errors.New("scene document does not exist")

// Stock resource names created by NewStockScene
const (
	StockCamera = "Camera"
	StockAction = "SubtitleAnim"
	StockFont   = "Bfont Regular"
)

// NewStockScene returns the scene a fresh document starts with: a camera,
// the shared subtitle action and the default font
func NewStockScene() *scene.Memory {
	m := scene.NewMemory()

	cam := m.AddObject(&scene.Object{
		Name:       StockCamera,
		Type:       scene.TypeCamera,
		Transform:  scene.IdentityTransform(),
		Visibility: scene.AllRaysVisible(),
	})
	cam.Transform.Location = math32.Vec3(0, -10, 0)
	cam.Transform.Rotation = math32.NewQuatAxisAngle(math32.Vec3(1, 0, 0), math32.Pi/2)
	m.LinkObject(m.Root(), cam)

	m.AddAction(&scene.Action{Name: StockAction, FrameStart: 1, FrameEnd: 2})
	m.AddFont(&scene.Font{Name: StockFont, Path: "<builtin>"})
	return m
}

// Load reads the scene document at path
func Load(path string) (*scene.Memory, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoDocument)
		}
		return nil, err
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	m := scene.NewMemory()
	loaders := []struct {
		what string
		load func(*sql.DB, *scene.Memory) error
	}{
		{"materials", loadMaterials},
		{"node groups", loadNodeGroups},
		{"actions", loadActions},
		{"fonts", loadFonts},
		{"collections", loadCollections},
		{"objects", loadObjects},
		{"memberships", loadMemberships},
	}
	for _, l := range loaders {
		if err := l.load(db, m); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.what, err)
		}
	}

	return m, nil
}

// Save writes m to path. An existing document is archived first.
func Save(path string, m *scene.Memory) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary document: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if err := writeDocument(tmpPath, m); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := ArchiveDocument(path); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	committed = true
	return nil
}

func writeDocument(path string, m *scene.Memory) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createTables(tx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	writers := []struct {
		what  string
		write func(*sql.Tx, *scene.Memory) error
	}{
		{"materials", insertMaterials},
		{"node groups", insertNodeGroups},
		{"actions", insertActions},
		{"fonts", insertFonts},
		{"collections", insertCollections},
		{"objects", insertObjects},
	}
	for _, w := range writers {
		if err := w.write(tx, m); err != nil {
			return fmt.Errorf("failed to insert %s: %w", w.what, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

func insertMaterials(tx *sql.Tx, m *scene.Memory) error {
	for _, mat := range m.Materials() {
		c := mat.Emission
		if _, err := tx.Exec(`INSERT INTO materials (name, r, g, b, a) VALUES (?, ?, ?, ?, ?)`,
			mat.Name, c[0], c[1], c[2], c[3]); err != nil {
			return err
		}
	}
	return nil
}

func insertNodeGroups(tx *sql.Tx, m *scene.Memory) error {
	for _, g := range m.NodeGroups() {
		if _, err := tx.Exec(`INSERT INTO node_groups (name) VALUES (?)`, g.Name); err != nil {
			return err
		}
	}
	return nil
}

func insertActions(tx *sql.Tx, m *scene.Memory) error {
	for _, a := range m.Actions() {
		if _, err := tx.Exec(`INSERT INTO actions (name, frame_start, frame_end) VALUES (?, ?, ?)`,
			a.Name, a.FrameStart, a.FrameEnd); err != nil {
			return err
		}
	}
	return nil
}

func insertFonts(tx *sql.Tx, m *scene.Memory) error {
	for _, f := range m.Fonts() {
		if _, err := tx.Exec(`INSERT INTO fonts (name, path) VALUES (?, ?)`, f.Name, f.Path); err != nil {
			return err
		}
	}
	return nil
}

func insertCollections(tx *sql.Tx, m *scene.Memory) error {
	for _, coll := range m.Collections() {
		var parent sql.NullString
		if coll.Parent != nil && coll.Parent != m.Root() {
			parent = sql.NullString{String: coll.Parent.Name, Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO collections (name, parent) VALUES (?, ?)`, coll.Name, parent); err != nil {
			return err
		}
	}
	return nil
}

func insertObjects(tx *sql.Tx, m *scene.Memory) error {
	for _, obj := range m.Objects() {
		var parent sql.NullString
		if obj.Parent != nil {
			parent = sql.NullString{String: obj.Parent.Name, Valid: true}
		}

		transform, err := json.Marshal(obj.Transform)
		if err != nil {
			return err
		}
		bounds, err := json.Marshal(obj.Bounds)
		if err != nil {
			return err
		}
		visibility, err := json.Marshal(obj.Visibility)
		if err != nil {
			return err
		}
		modifiers, err := json.Marshal(newModifierRecords(obj.Modifiers))
		if err != nil {
			return err
		}
		animation, err := nullJSON(obj.Animation != nil, newTrackRecords(obj.Animation))
		if err != nil {
			return err
		}
		text, err := nullJSON(obj.Text != nil, newTextRecord(obj.Text))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`INSERT INTO objects
			(name, type, hidden, parent, transform, bounds, visibility, modifiers, animation, text_data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			obj.Name, string(obj.Type), obj.Hidden, parent,
			string(transform), string(bounds), string(visibility), string(modifiers),
			animation, text); err != nil {
			return fmt.Errorf("object %q: %w", obj.Name, err)
		}

		for _, coll := range obj.Collections() {
			position := slices.Index(coll.Objects, obj)
			if _, err := tx.Exec(`INSERT INTO memberships (object, collection, position) VALUES (?, ?, ?)`,
				obj.Name, coll.Name, position); err != nil {
				return err
			}
		}
	}
	return nil
}

func nullJSON(present bool, v any) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func loadMaterials(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT name, r, g, b, a FROM materials ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		mat := &scene.Material{}
		c := &mat.Emission
		if err := rows.Scan(&mat.Name, &c[0], &c[1], &c[2], &c[3]); err != nil {
			return err
		}
		m.AddMaterial(mat)
	}
	return rows.Err()
}

func loadNodeGroups(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT name FROM node_groups ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		m.AddNodeGroup(name)
	}
	return rows.Err()
}

func loadActions(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT name, frame_start, frame_end FROM actions ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a := &scene.Action{}
		if err := rows.Scan(&a.Name, &a.FrameStart, &a.FrameEnd); err != nil {
			return err
		}
		m.AddAction(a)
	}
	return rows.Err()
}

func loadFonts(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT name, path FROM fonts ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		f := &scene.Font{}
		if err := rows.Scan(&f.Name, &f.Path); err != nil {
			return err
		}
		m.AddFont(f)
	}
	return rows.Err()
}

func loadCollections(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT name, parent FROM collections ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var parentName sql.NullString
		if err := rows.Scan(&name, &parentName); err != nil {
			return err
		}
		var parent *scene.Collection
		if parentName.Valid {
			var ok bool
			if parent, ok = m.Collection(parentName.String); !ok {
				return fmt.Errorf("collection %q: parent %q: %w", name, parentName.String, scene.ErrNotFound)
			}
		}
		m.AddCollection(name, parent)
	}
	return rows.Err()
}

func loadObjects(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT name, type, hidden, parent, transform, bounds, visibility,
		modifiers, animation, text_data FROM objects ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	parents := map[*scene.Object]string{}
	for rows.Next() {
		var (
			obj                                      scene.Object
			objType                                  string
			parent, animation, text                  sql.NullString
			transform, bounds, visibility, modifiers string
		)
		if err := rows.Scan(&obj.Name, &objType, &obj.Hidden, &parent, &transform, &bounds,
			&visibility, &modifiers, &animation, &text); err != nil {
			return err
		}
		obj.Type = scene.ObjectType(objType)

		if err := decodeObject(m, &obj, transform, bounds, visibility, modifiers, animation, text); err != nil {
			return fmt.Errorf("object %q: %w", obj.Name, err)
		}

		added := m.AddObject(&obj)
		if parent.Valid {
			parents[added] = parent.String
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for obj, name := range parents {
		p, ok := m.Object(name)
		if !ok {
			return fmt.Errorf("object %q: parent %q: %w", obj.Name, name, scene.ErrNotFound)
		}
		obj.Parent = p
	}
	return nil
}

func decodeObject(m *scene.Memory, obj *scene.Object, transform, bounds, visibility, modifiers string, animation, text sql.NullString) error {
	if err := json.Unmarshal([]byte(transform), &obj.Transform); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if err := json.Unmarshal([]byte(bounds), &obj.Bounds); err != nil {
		return fmt.Errorf("bounds: %w", err)
	}
	if err := json.Unmarshal([]byte(visibility), &obj.Visibility); err != nil {
		return fmt.Errorf("visibility: %w", err)
	}

	var mods []modifierRecord
	if err := json.Unmarshal([]byte(modifiers), &mods); err != nil {
		return fmt.Errorf("modifiers: %w", err)
	}
	var err error
	if obj.Modifiers, err = resolveModifiers(m, mods); err != nil {
		return err
	}

	if animation.Valid {
		var tracks []trackRecord
		if err := json.Unmarshal([]byte(animation.String), &tracks); err != nil {
			return fmt.Errorf("animation: %w", err)
		}
		if obj.Animation, err = resolveAnimation(m, tracks); err != nil {
			return err
		}
	}

	if text.Valid {
		var rec textRecord
		if err := json.Unmarshal([]byte(text.String), &rec); err != nil {
			return fmt.Errorf("text data: %w", err)
		}
		if obj.Text, err = rec.resolve(m); err != nil {
			return err
		}
	}
	return nil
}

func loadMemberships(db *sql.DB, m *scene.Memory) error {
	rows, err := db.Query(`SELECT object, collection, position FROM memberships ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	positions := map[*scene.Object]map[*scene.Collection]int{}
	touched := map[*scene.Collection]bool{}
	for rows.Next() {
		var objName, collName string
		var position int
		if err := rows.Scan(&objName, &collName, &position); err != nil {
			return err
		}

		obj, ok := m.Object(objName)
		if !ok {
			return fmt.Errorf("membership of %q: %w", objName, scene.ErrNotFound)
		}
		coll := m.Root()
		if collName != coll.Name {
			if coll, ok = m.Collection(collName); !ok {
				return fmt.Errorf("collection %q: %w", collName, scene.ErrNotFound)
			}
		}

		m.LinkObject(coll, obj)
		if positions[obj] == nil {
			positions[obj] = map[*scene.Collection]int{}
		}
		positions[obj][coll] = position
		touched[coll] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// memberships are stored per object; restore each collection's link order
	for coll := range touched {
		slices.SortStableFunc(coll.Objects, func(a, b *scene.Object) int {
			return positions[a][coll] - positions[b][coll]
		})
	}
	return nil
}
