// Package storage provides SQLite-based persistence for routed event records.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/inputecho/internal/input"
)

// Store manages the SQLite database connection for event history.
type Store struct {
	db *sql.DB
}

// Session is one run of the tester (a terminal, an SSH connection or a replay).
type Session struct {
	ID        string
	Source    string
	Records   int
	StartedAt time.Time
}

// StoredRecord is a record together with its position in the session.
type StoredRecord struct {
	SessionID string
	Seq       int
	Record    input.Record
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// SSH sessions write concurrently; one connection serializes them
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			device TEXT NOT NULL DEFAULT '',
			at_ns INTEGER NOT NULL DEFAULT 0,
			scancode INTEGER NOT NULL DEFAULT 0,
			key_code TEXT NOT NULL DEFAULT '',
			mods INTEGER NOT NULL DEFAULT 0,
			is_repeat INTEGER NOT NULL DEFAULT 0,
			button INTEGER NOT NULL DEFAULT 0,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			dx REAL NOT NULL DEFAULT 0,
			dy REAL NOT NULL DEFAULT 0,
			ch INTEGER NOT NULL DEFAULT 0,
			pad INTEGER NOT NULL DEFAULT 0,
			pad_button INTEGER NOT NULL DEFAULT 0,
			axis INTEGER NOT NULL DEFAULT 0,
			value REAL NOT NULL DEFAULT 0,
			gained INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_records_session ON records(session_id, seq);
		CREATE INDEX IF NOT EXISTS idx_records_kind ON records(session_id, kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSession registers a new session. Source describes where its events
// come from (e.g. "tty", "ssh:alice", "script:demo").
func (s *Store) CreateSession(id, source string) error {
	_, err := s.db.Exec("INSERT INTO sessions (id, source) VALUES (?, ?)", id, source)
	if err != nil {
		return fmt.Errorf("storage: cannot create session: %w", err)
	}
	return nil
}

// SaveRecord appends a record to a session. Returns the ID of the inserted row.
func (s *Store) SaveRecord(sessionID string, seq int, rec input.Record) (int64, error) {
	var atNs int64
	if !rec.Time.IsZero() {
		atNs = rec.Time.UnixNano()
	}

	result, err := s.db.Exec(
		`INSERT INTO records
		 (session_id, seq, kind, device, at_ns, scancode, key_code, mods, is_repeat,
		  button, x, y, dx, dy, ch, pad, pad_button, axis, value, gained)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, rec.Kind.String(), string(rec.Device), atNs,
		rec.Key.Scancode, string(rec.Key.Code), int(rec.Key.Mods), rec.Repeat,
		int(rec.Button), rec.X, rec.Y, rec.DX, rec.DY,
		int32(rec.Char), int64(rec.Pad), int(rec.PadButton), int(rec.Axis), rec.Value,
		rec.Gained,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// Sessions returns the most recent sessions with their record counts.
func (s *Store) Sessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT s.id, s.source, s.started_at, COUNT(r.id)
		 FROM sessions s
		 LEFT JOIN records r ON r.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.started_at DESC, s.rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedAt any
		if err := rows.Scan(&sess.ID, &sess.Source, &startedAt, &sess.Records); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.StartedAt = parseTime(startedAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// SessionRecords returns the first limit records of a session in order.
// A limit of zero or less returns all of them.
func (s *Store) SessionRecords(sessionID string, limit int) ([]StoredRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.Query(
		`SELECT session_id, seq, kind, device, at_ns, scancode, key_code, mods, is_repeat,
		        button, x, y, dx, dy, ch, pad, pad_button, axis, value, gained
		 FROM records
		 WHERE session_id = ?
		 ORDER BY seq
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query records: %w", err)
	}
	defer rows.Close()

	var records []StoredRecord
	for rows.Next() {
		var (
			sr                         StoredRecord
			kind, device, keyCode      string
			atNs, scancode, pad        int64
			mods, button, padBtn, axis int
			char                       int32
			repeat, gained             bool
			x, y, dx, dy, value        float64
		)
		if err := rows.Scan(&sr.SessionID, &sr.Seq, &kind, &device, &atNs, &scancode, &keyCode,
			&mods, &repeat, &button, &x, &y, &dx, &dy, &char, &pad, &padBtn, &axis, &value, &gained); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		k, ok := input.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("storage: unknown record kind %q", kind)
		}

		rec := input.Record{
			Kind:   k,
			Device: input.DeviceID(device),
			Key: input.KeyInput{
				Scancode: uint32(scancode),
				Code:     input.KeyCode(keyCode),
				Mods:     input.Modifiers(mods),
			},
			Repeat:    repeat,
			Button:    input.MouseButton(button),
			X:         float32(x),
			Y:         float32(y),
			DX:        float32(dx),
			DY:        float32(dy),
			Char:      rune(char),
			Pad:       input.GamepadID(pad),
			PadButton: input.PadButton(padBtn),
			Axis:      input.PadAxis(axis),
			Value:     float32(value),
			Gained:    gained,
		}
		if atNs != 0 {
			rec.Time = time.Unix(0, atNs)
		}
		sr.Record = rec
		records = append(records, sr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// KindCounts returns how many records of each kind a session holds.
func (s *Store) KindCounts(sessionID string) (map[input.Kind]int, error) {
	rows, err := s.db.Query(
		"SELECT kind, COUNT(*) FROM records WHERE session_id = ? GROUP BY kind",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[input.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if k, ok := input.ParseKind(kind); ok {
			counts[k] = n
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return counts, nil
}

// SessionByID looks up a session. Returns nil if it does not exist.
func (s *Store) SessionByID(id string) (*Session, error) {
	var sess Session
	var startedAt any
	err := s.db.QueryRow(
		`SELECT s.id, s.source, s.started_at,
		        (SELECT COUNT(*) FROM records r WHERE r.session_id = s.id)
		 FROM sessions s WHERE s.id = ?`,
		id,
	).Scan(&sess.ID, &sess.Source, &startedAt, &sess.Records)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}

	sess.StartedAt = parseTime(startedAt)
	return &sess, nil
}

// ClearSession deletes a session and its records.
func (s *Store) ClearSession(id string) error {
	if _, err := s.db.Exec("DELETE FROM records WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot clear records: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot clear session: %w", err)
	}
	return nil
}

// ClearAll deletes every session and record.
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec("DELETE FROM records"); err != nil {
		return fmt.Errorf("storage: cannot clear records: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
