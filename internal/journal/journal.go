// Package journal keeps an audit log of accepted predictions in SQLite.
// It is write-mostly; simulation state is never restored from it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kartoza/ecmo-explorer/internal/trajectory"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS predictions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	scenario    TEXT NOT NULL,
	parameter   TEXT NOT NULL,
	sequence_id INTEGER NOT NULL,
	from_value  REAL NOT NULL,
	to_value    REAL NOT NULL,
	points      TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_session ON predictions (session_id, id);`

// Entry is one accepted prediction
type Entry struct {
	ID        int64              `json:"id"`
	SessionID string             `json:"session_id"`
	Scenario  string             `json:"scenario"`
	Parameter string             `json:"parameter"`
	Sequence  uint64             `json:"sequence"`
	From      float64            `json:"from"`
	To        float64            `json:"to"`
	Points    []trajectory.Point `json:"points"`
	CreatedAt time.Time          `json:"created_at"`
}

// Journal is a SQLite-backed prediction log
type Journal struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the journal database at path
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise journal schema: %w", err)
	}
	log.Printf("Opened prediction journal: %s", path)
	return &Journal{db: db, path: path}, nil
}

// Path returns the database file path
func (j *Journal) Path() string {
	return j.path
}

// Record appends an entry. CreatedAt defaults to now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	points, err := json.Marshal(e.Points)
	if err != nil {
		return fmt.Errorf("failed to encode trajectory: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO predictions (session_id, scenario, parameter, sequence_id, from_value, to_value, points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Scenario, e.Parameter, int64(e.Sequence), e.From, e.To, string(points),
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record prediction: %w", err)
	}
	return nil
}

// List returns the entries of a session in insertion order
func (j *Journal) List(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, session_id, scenario, parameter, sequence_id, from_value, to_value, points, created_at
		 FROM predictions WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			seq     int64
			points  string
			created string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Scenario, &e.Parameter, &seq, &e.From, &e.To, &points, &created); err != nil {
			return nil, fmt.Errorf("failed to read journal row: %w", err)
		}
		e.Sequence = uint64(seq)
		if err := json.Unmarshal([]byte(points), &e.Points); err != nil {
			log.Printf("Warning: corrupt trajectory in journal entry %d: %v", e.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}
