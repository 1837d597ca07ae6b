// Package store provides sqlite-backed persistence for the notes demo
// tool, bootstrapped the way history.initDB sets up the history database:
// ensure the parent directory exists, open the database, and create the
// schema if it is missing.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultNotesDatabasePath is where the notes tool persists its state by
// default when run as a server process.
var DefaultNotesDatabasePath = ".mcpgo/notes.db"

// Note is a single stored note.
type Note struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// NoteStore persists notes in sqlite.
type NoteStore struct {
	db *sql.DB
}

// OpenNoteStore opens (creating if necessary) the notes database at path.
func OpenNoteStore(path string) (*NoteStore, error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create notes table: %w", err)
	}

	return &NoteStore{db: db}, nil
}

// Close closes the underlying database handle.
func (s *NoteStore) Close() error {
	return s.db.Close()
}

// Add inserts a new note and returns its generated id.
func (s *NoteStore) Add(text string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO notes (id, text) VALUES (?, ?)`, id, text)
	if err != nil {
		return "", fmt.Errorf("store: insert note: %w", err)
	}
	return id, nil
}

// List returns all notes, oldest first.
func (s *NoteStore) List() ([]Note, error) {
	rows, err := s.db.Query(`SELECT id, text, created_at FROM notes ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
