package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryDSN is an SQLite database that lives only as long as the process.
const MemoryDSN = ":memory:"

// SQLiteStore keeps records in an SQLite database.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	memory := strings.Contains(dsn, MemoryDSN)
	if !memory {
		dsn = withFileOptions(dsn)
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Each connection to :memory: is a separate database, and a file allows
	// one writer at a time, so both use a single pooled connection.
	// busy_timeout covers writers in other processes sharing the file.
	conn.SetMaxOpenConns(1)
	if memory {
		conn.SetConnMaxLifetime(0)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// fileOptions are applied by the driver to every connection it opens.
var fileOptions = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_txlock=immediate",
}

// withFileOptions appends fileOptions to a file DSN's query string.
func withFileOptions(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(fileOptions, "&")
}

// migrate creates tables if they don't exist
func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		player_name TEXT NOT NULL,
		score INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS player_stats (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		player_name TEXT NOT NULL,
		bullets_fired INTEGER NOT NULL,
		asteroids_destroyed INTEGER NOT NULL,
		level_reached INTEGER NOT NULL,
		time_played INTEGER NOT NULL,
		score INTEGER NOT NULL,
		accuracy INTEGER,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC);
	CREATE INDEX IF NOT EXISTS idx_player_stats_created ON player_stats(created_at DESC);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddScore(ctx context.Context, rec ScoreRecord) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO scores (id, player_name, score, created_at) VALUES (?, ?, ?, ?)",
		rec.ID, rec.PlayerName, rec.Score, rec.Timestamp.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM scores WHERE seq NOT IN (
			SELECT seq FROM scores ORDER BY score DESC, seq ASC LIMIT ?
		)`, MaxScores,
	); err != nil {
		return fmt.Errorf("trim scores: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) TopScores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, player_name, score, created_at FROM scores ORDER BY score DESC, seq ASC LIMIT ?",
		sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := []ScoreRecord{}
	for rows.Next() {
		var rec ScoreRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.PlayerName, &rec.Score, &created); err != nil {
			return nil, err
		}
		rec.Timestamp = time.Unix(0, created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ClearScores(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM scores"); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddPlayerStats(ctx context.Context, rec PlayerStatsRecord) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var accuracy sql.NullInt64
	if rec.Accuracy != nil {
		accuracy = sql.NullInt64{Int64: int64(*rec.Accuracy), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO player_stats (id, player_name, bullets_fired, asteroids_destroyed,
			level_reached, time_played, score, accuracy, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PlayerName, rec.BulletsFired, rec.AsteroidsDestroyed,
		rec.LevelReached, rec.TimePlayed, rec.Score, accuracy, rec.Timestamp.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert player stats: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM player_stats WHERE seq NOT IN (
			SELECT seq FROM player_stats ORDER BY seq DESC LIMIT ?
		)`, MaxPlayerStats,
	); err != nil {
		return fmt.Errorf("trim player stats: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecentPlayerStats(ctx context.Context, limit int) ([]PlayerStatsRecord, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, player_name, bullets_fired, asteroids_destroyed, level_reached,
			time_played, score, accuracy, created_at
		FROM player_stats ORDER BY created_at DESC, seq DESC LIMIT ?`,
		sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query player stats: %w", err)
	}
	defer rows.Close()

	out := []PlayerStatsRecord{}
	for rows.Next() {
		var rec PlayerStatsRecord
		var accuracy sql.NullInt64
		var created int64
		if err := rows.Scan(&rec.ID, &rec.PlayerName, &rec.BulletsFired, &rec.AsteroidsDestroyed,
			&rec.LevelReached, &rec.TimePlayed, &rec.Score, &accuracy, &created); err != nil {
			return nil, err
		}
		if accuracy.Valid {
			pct := int(accuracy.Int64)
			rec.Accuracy = &pct
		}
		rec.Timestamp = time.Unix(0, created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// sqlLimit maps a negative limit to SQLite's "no limit".
func sqlLimit(limit int) int {
	if limit < 0 {
		return -1
	}
	return limit
}

var _ Store = (*SQLiteStore)(nil)
