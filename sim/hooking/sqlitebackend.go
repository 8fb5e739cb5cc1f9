package hooking

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend is a TracerBackend that persists completed tasks into a
// SQLite database, one row per task, its steps and tags flattened into JSON
// text columns rather than normalized into their own tables, since nothing
// downstream of a trace needs to query a step or tag on its own. Grounded
// on CSVTraceWriter's buffer-then-flush shape, translated from one file
// handle and a fixed CSV line format into one DB connection and a prepared
// INSERT, since neither writer cares about anything but "append a task,
// flush when asked".
type SQLiteBackend struct {
	path string
	db   *sql.DB

	tasks      []task
	bufferSize int
}

// NewSQLiteBackend creates a backend that will write to the SQLite database
// at path. It only records the path; Init opens the database, creating the
// file (and its schema) if it does not already exist.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{
		path:       path,
		bufferSize: 1000,
	}
}

// Init opens the database and creates the tasks table if it is missing.
func (b *SQLiteBackend) Init() {
	db, err := sql.Open("sqlite3", b.path)
	if err != nil {
		panic(fmt.Errorf("opening trace database %s: %w", b.path, err))
	}
	b.db = db

	const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	kind TEXT,
	what TEXT,
	where_ TEXT,
	start_time REAL,
	end_time REAL,
	steps TEXT,
	tags TEXT
)`

	if _, err := b.db.Exec(schema); err != nil {
		panic(fmt.Errorf("creating trace schema in %s: %w", b.path, err))
	}
}

// Write buffers a completed task, flushing once the buffer reaches its
// bound.
func (b *SQLiteBackend) Write(t task) {
	b.tasks = append(b.tasks, t)
	if len(b.tasks) >= b.bufferSize {
		b.Flush()
	}
}

// Flush persists every buffered task to the database in a single
// transaction.
func (b *SQLiteBackend) Flush() {
	if len(b.tasks) == 0 {
		return
	}

	tx, err := b.db.Begin()
	if err != nil {
		panic(fmt.Errorf("beginning trace flush transaction: %w", err))
	}

	stmt, err := tx.Prepare(`
INSERT OR REPLACE INTO tasks
	(id, parent_id, kind, what, where_, start_time, end_time, steps, tags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(fmt.Errorf("preparing trace insert: %w", err))
	}
	defer stmt.Close()

	for _, t := range b.tasks {
		steps, err := json.Marshal(t.Steps)
		if err != nil {
			panic(fmt.Errorf("marshaling task %s steps: %w", t.ID, err))
		}

		tags, err := json.Marshal(t.Tags)
		if err != nil {
			panic(fmt.Errorf("marshaling task %s tags: %w", t.ID, err))
		}

		if _, err := stmt.Exec(
			t.ID, t.ParentID, t.Kind, t.What, t.Where,
			t.StartTime, t.EndTime, string(steps), string(tags),
		); err != nil {
			panic(fmt.Errorf("inserting task %s: %w", t.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		panic(fmt.Errorf("committing trace flush: %w", err))
	}

	b.tasks = nil
}
