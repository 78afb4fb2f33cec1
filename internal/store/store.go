// Package store keeps the score board and the player statistics history.
package store

import (
	"context"
	"errors"
	"sort"
	"time"
	"unicode/utf8"
)

// Retention and query limits.
const (
	MaxScores       = 100
	MaxPlayerStats  = 100
	TopScoresLimit  = 10
	RecentStatLimit = 10
	MaxNameLength   = 20
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// ScoreRecord is a single entry on the score board.
type ScoreRecord struct {
	ID         string    `json:"id"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	Timestamp  time.Time `json:"timestamp"`
}

// PlayerStatsRecord summarises one finished game.
type PlayerStatsRecord struct {
	ID                 string    `json:"id"`
	PlayerName         string    `json:"playerName"`
	BulletsFired       int       `json:"bulletsFired"`
	AsteroidsDestroyed int       `json:"asteroidsDestroyed"`
	LevelReached       int       `json:"levelReached"`
	TimePlayed         int       `json:"timePlayed"`
	Score              int       `json:"score"`
	Accuracy           *int      `json:"accuracy"`
	Timestamp          time.Time `json:"timestamp"`
}

// Store persists score and statistics records.
type Store interface {
	// AddScore records a score. Only the best MaxScores entries are retained.
	AddScore(ctx context.Context, rec ScoreRecord) error
	// TopScores returns up to limit records, best first.
	TopScores(ctx context.Context, limit int) ([]ScoreRecord, error)
	// ClearScores removes every score record.
	ClearScores(ctx context.Context) error
	// AddPlayerStats records a game summary. Only the newest MaxPlayerStats are retained.
	AddPlayerStats(ctx context.Context, rec PlayerStatsRecord) error
	// RecentPlayerStats returns up to limit records, newest first.
	RecentPlayerStats(ctx context.Context, limit int) ([]PlayerStatsRecord, error)
	Close() error
}

// TruncateName shortens a player name to MaxNameLength characters.
func TruncateName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}

// Accuracy returns the destroyed/fired ratio as a whole percentage, or nil
// when no shots were fired.
func Accuracy(destroyed, fired int) *int {
	if fired <= 0 {
		return nil
	}
	pct := destroyed * 100 / fired
	return &pct
}

// sortScores orders records best first. Equal scores keep insertion order.
func sortScores(recs []ScoreRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
}

// sortStats orders records newest first. Equal timestamps put the later
// insertion first.
func sortStats(recs []PlayerStatsRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Timestamp.After(recs[j].Timestamp)
	})
}

func clampLimit(limit, n int) int {
	if limit < 0 || limit > n {
		return n
	}
	return limit
}
