// Package leaderboard persists finished runs and answers ranking queries.
package leaderboard

import (
	"context"
	"time"
)

// Entry is one saved run
type Entry struct {
	ID        int64     `json:"id" msgpack:"id"`
	Nickname  string    `json:"nickname" msgpack:"nickname"`
	Score     int       `json:"score" msgpack:"score"`
	Length    int       `json:"length" msgpack:"length"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	Rank      int       `json:"rank,omitempty" msgpack:"rank,omitempty"` // 1-based, set by ranked queries only
}

// Store is the persistence backend behind Service
type Store interface {
	// Insert saves e and returns it with ID and CreatedAt filled in
	Insert(ctx context.Context, e Entry) (Entry, error)
	// Top returns up to limit entries created at or after since, best score first
	Top(ctx context.Context, limit int, since time.Time) ([]Entry, error)
	// CountAbove counts entries with a strictly higher score
	CountAbove(ctx context.Context, score int) (int, error)
}
