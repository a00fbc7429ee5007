// Package scenedb stores a scene document in a SQLite file so the
// operators can be run from the command line against a saved scene.
//
// Load reads a document into a scene.Memory. Save writes the whole scene to
// a new database beside the target, moves the previous document into the
// archive directory, and renames the new file into place.
package scenedb
