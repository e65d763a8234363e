package leaderboard

import (
	"context"
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultLimit is the size of the boards shown after a run
const DefaultLimit = 10

const maxNicknameLen = 20

// Service fronts a Store for the session host. Every call degrades instead of
// failing: a failed save yields nil, a failed board yields an empty slice, and
// a failed rank yields 0. A nil store disables persistence the same way.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a service over store, which may be nil
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Enabled reports whether a backend is configured
func (s *Service) Enabled() bool {
	return s != nil && s.store != nil
}

// SaveScore records a finished run
func (s *Service) SaveScore(ctx context.Context, nickname string, score, length int) *Entry {
	if !s.Enabled() {
		return nil
	}
	e, err := s.store.Insert(ctx, Entry{
		Nickname:  cleanNickname(nickname),
		Score:     score,
		Length:    length,
		CreatedAt: s.now(),
	})
	if err != nil {
		log.Printf("leaderboard: save %q score=%d failed: %v", nickname, score, err)
		return nil
	}
	log.Printf("leaderboard: saved %q score=%d length=%d id=%d", e.Nickname, e.Score, e.Length, e.ID)
	return &e
}

// TopScores returns the all-time best runs, ranked from 1
func (s *Service) TopScores(ctx context.Context, limit int) []Entry {
	return s.ranked(ctx, limit, time.Time{}, "top")
}

// TodayTopScores returns the best runs since local midnight, ranked from 1
func (s *Service) TodayTopScores(ctx context.Context, limit int) []Entry {
	if !s.Enabled() {
		return []Entry{}
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.ranked(ctx, limit, midnight, "today")
}

// ScoreRank returns the 1-based position a score would take, or 0 on failure
func (s *Service) ScoreRank(ctx context.Context, score int) int {
	if !s.Enabled() {
		return 0
	}
	n, err := s.store.CountAbove(ctx, score)
	if err != nil {
		log.Printf("leaderboard: rank for score=%d failed: %v", score, err)
		return 0
	}
	return n + 1
}

func (s *Service) ranked(ctx context.Context, limit int, since time.Time, board string) []Entry {
	if !s.Enabled() {
		return []Entry{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	entries, err := s.store.Top(ctx, limit, since)
	if err != nil {
		log.Printf("leaderboard: %s scores failed: %v", board, err)
		return []Entry{}
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func cleanNickname(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if utf8.RuneCountInString(name) > maxNicknameLen {
		name = string([]rune(name)[:maxNicknameLen])
	}
	return name
}
