package scenedb

import (
	"database/sql"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version
const schemaVersion = 1

// createTables creates the scene document tables
func createTables(tx *sql.Tx) error {
	queries := []string{
		`CREATE TABLE collections (
			id integer PRIMARY KEY,
			name text NOT NULL UNIQUE,
			parent text
		)`,
		`CREATE TABLE objects (
			id integer PRIMARY KEY,
			name text NOT NULL UNIQUE,
			type text NOT NULL,
			hidden integer NOT NULL,
			parent text,
			transform text NOT NULL,
			bounds text NOT NULL,
			visibility text NOT NULL,
			modifiers text NOT NULL,
			animation text,
			text_data text
		)`,
		`CREATE TABLE memberships (
			id integer PRIMARY KEY,
			object text NOT NULL,
			collection text NOT NULL,
			position integer NOT NULL
		)`,
		`CREATE TABLE materials (
			id integer PRIMARY KEY,
			name text NOT NULL UNIQUE,
			r real NOT NULL,
			g real NOT NULL,
			b real NOT NULL,
			a real NOT NULL
		)`,
		`CREATE TABLE node_groups (
			id integer PRIMARY KEY,
			name text NOT NULL UNIQUE
		)`,
		`CREATE TABLE actions (
			id integer PRIMARY KEY,
			name text NOT NULL UNIQUE,
			frame_start real NOT NULL,
			frame_end real NOT NULL
		)`,
		`CREATE TABLE fonts (
			id integer PRIMARY KEY,
			name text NOT NULL UNIQUE,
			path text NOT NULL
		)`,
		`CREATE INDEX ix_memberships_object ON memberships (object)`,
		fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion),
	}

	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}
