package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore wraps the SQLite connection with thread-safe operations
type SQLiteStore struct {
	conn *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

// OpenSQLite opens (or creates) the leaderboard database and initializes the schema
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite only supports one writer
	conn.SetMaxIdleConns(1)

	s := &SQLiteStore{conn: conn, now: time.Now}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leaderboard (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		nickname TEXT NOT NULL,
		score INTEGER NOT NULL,
		length INTEGER NOT NULL,
		created_at INTEGER NOT NULL    -- unix milliseconds
	);

	CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC);
	CREATE INDEX IF NOT EXISTS idx_leaderboard_created_at ON leaderboard(created_at);
	`

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Insert saves a run
func (s *SQLiteStore) Insert(ctx context.Context, e Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	res, err := s.conn.ExecContext(ctx,
		"INSERT INTO leaderboard (nickname, score, length, created_at) VALUES (?, ?, ?, ?)",
		e.Nickname, e.Score, e.Length, e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert score: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, fmt.Errorf("failed to read score id: %w", err)
	}
	e.CreatedAt = time.UnixMilli(e.CreatedAt.UnixMilli())
	return e, nil
}

// Top returns the best runs since the given time. Ties go to the earlier run.
func (s *SQLiteStore) Top(ctx context.Context, limit int, since time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sinceMilli int64
	if !since.IsZero() {
		sinceMilli = since.UnixMilli()
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, nickname, score, length, created_at
		FROM leaderboard
		WHERE created_at >= ?
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT ?`, sinceMilli, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top scores: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.Nickname, &e.Score, &e.Length, &created); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scores: %w", err)
	}
	return entries, nil
}

// CountAbove counts runs with a strictly higher score
func (s *SQLiteStore) CountAbove(ctx context.Context, score int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM leaderboard WHERE score > ?", score).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
