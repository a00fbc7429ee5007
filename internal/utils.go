package internal

import (
	"path/filepath"
)

// Version is the application version
const Version = "0.3.0"

// SceneFileName is the scene document looked up in the project directory
const SceneFileName = "scene.db"

// ResolvePath returns path, or defaultName inside dir when path is empty.
// Relative paths stay relative to the working directory.
func ResolvePath(dir, path, defaultName string) string {
	if path != "" {
		return path
	}
	return filepath.Join(dir, defaultName)
}
