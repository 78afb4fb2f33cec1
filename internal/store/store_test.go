package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(MemoryDSN)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
	t.Run("sqlite-file", func(t *testing.T) {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "scores.db"))
		if err != nil {
			t.Fatalf("open sqlite file: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func score(i, points int) ScoreRecord {
	return ScoreRecord{
		ID:         fmt.Sprintf("s%d", i),
		PlayerName: fmt.Sprintf("player%d", i),
		Score:      points,
		Timestamp:  base.Add(time.Duration(i) * time.Second),
	}
}

func stats(i int) PlayerStatsRecord {
	return PlayerStatsRecord{
		ID:                 fmt.Sprintf("p%d", i),
		PlayerName:         fmt.Sprintf("player%d", i),
		BulletsFired:       10,
		AsteroidsDestroyed: 3,
		LevelReached:       1,
		TimePlayed:         30,
		Score:              i,
		Accuracy:           Accuracy(3, 10),
		Timestamp:          base.Add(time.Duration(i) * time.Second),
	}
}

func TestTopScoresOrdering(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i, pts := range []int{50, 300, 10, 300, 120} {
			if err := s.AddScore(ctx, score(i, pts)); err != nil {
				t.Fatalf("add score: %v", err)
			}
		}

		top, err := s.TopScores(ctx, TopScoresLimit)
		if err != nil {
			t.Fatalf("top scores: %v", err)
		}
		want := []string{"s1", "s3", "s4", "s0", "s2"}
		if len(top) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(top))
		}
		for i, id := range want {
			if top[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, top[i].ID)
			}
		}
		if !top[0].Timestamp.Equal(base.Add(time.Second)) {
			t.Errorf("timestamp not preserved: %v", top[0].Timestamp)
		}

		again, _ := s.TopScores(ctx, TopScoresLimit)
		for i := range top {
			if top[i] != again[i] {
				t.Errorf("repeated read differs at %d", i)
			}
		}
	})
}

func TestTopScoresLimit(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 15; i++ {
			s.AddScore(ctx, score(i, i))
		}
		top, err := s.TopScores(ctx, TopScoresLimit)
		if err != nil {
			t.Fatal(err)
		}
		if len(top) != 10 || top[0].Score != 14 || top[9].Score != 5 {
			t.Errorf("unexpected top 10: first=%d last=%d len=%d", top[0].Score, top[len(top)-1].Score, len(top))
		}
	})
}

func TestScoreRetentionKeepsBest(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < MaxScores+5; i++ {
			if err := s.AddScore(ctx, score(i, 1000+i)); err != nil {
				t.Fatal(err)
			}
		}
		s.AddScore(ctx, score(999, 1)) // too low to survive

		all, err := s.TopScores(ctx, -1)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != MaxScores {
			t.Fatalf("expected %d records, got %d", MaxScores, len(all))
		}
		if low := all[len(all)-1].Score; low != 1005 {
			t.Errorf("expected lowest retained score 1005, got %d", low)
		}
	})
}

func TestClearScores(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		s.AddScore(ctx, score(1, 10))
		s.AddScore(ctx, score(2, 20))

		if err := s.ClearScores(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		top, err := s.TopScores(ctx, TopScoresLimit)
		if err != nil {
			t.Fatal(err)
		}
		if len(top) != 0 {
			t.Errorf("expected empty board after clear, got %d", len(top))
		}
	})
}

func TestRecentPlayerStats(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < 12; i++ {
			if err := s.AddPlayerStats(ctx, stats(i)); err != nil {
				t.Fatal(err)
			}
		}
		noAcc := stats(12)
		noAcc.Accuracy = nil
		s.AddPlayerStats(ctx, noAcc)

		recent, err := s.RecentPlayerStats(ctx, RecentStatLimit)
		if err != nil {
			t.Fatal(err)
		}
		if len(recent) != 10 {
			t.Fatalf("expected 10 records, got %d", len(recent))
		}
		if recent[0].ID != "p12" || recent[9].ID != "p3" {
			t.Errorf("expected newest first, got %s..%s", recent[0].ID, recent[9].ID)
		}
		if recent[0].Accuracy != nil {
			t.Errorf("expected nil accuracy, got %d", *recent[0].Accuracy)
		}
		if recent[1].Accuracy == nil || *recent[1].Accuracy != 30 {
			t.Errorf("expected accuracy 30, got %v", recent[1].Accuracy)
		}
	})
}

func TestPlayerStatsRetention(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i := 0; i < MaxPlayerStats+20; i++ {
			s.AddPlayerStats(ctx, stats(i))
		}
		all, err := s.RecentPlayerStats(ctx, -1)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != MaxPlayerStats {
			t.Fatalf("expected %d records, got %d", MaxPlayerStats, len(all))
		}
		if oldest := all[len(all)-1].ID; oldest != "p20" {
			t.Errorf("expected oldest retained p20, got %s", oldest)
		}
	})
}

func TestClosedMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.Close()
	if err := s.AddScore(context.Background(), score(1, 1)); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestTruncateName(t *testing.T) {
	if got := TruncateName("Al"); got != "Al" {
		t.Errorf("short name changed: %q", got)
	}
	if got := TruncateName("abcdefghijklmnopqrstuvwxyz"); got != "abcdefghijklmnopqrst" {
		t.Errorf("expected 20 chars, got %q", got)
	}
	if got := TruncateName("ääääääääääääääääääääää"); got != "ääääääääääääääääääää" {
		t.Errorf("expected 20 runes, got %q", got)
	}
}

func TestAccuracy(t *testing.T) {
	if Accuracy(5, 0) != nil {
		t.Error("expected nil accuracy with no shots")
	}
	if got := Accuracy(2, 3); got == nil || *got != 66 {
		t.Errorf("expected 66, got %v", got)
	}
	if got := Accuracy(0, 7); got == nil || *got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestSQLiteFileConcurrentWriters(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	const writers = 50
	errs := make(chan error, 2*writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			errs <- s.AddScore(ctx, score(i, i))
		}(i)
		go func(i int) {
			defer wg.Done()
			errs <- s.AddPlayerStats(ctx, stats(i))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent write failed: %v", err)
		}
	}

	scores, err := s.TopScores(ctx, -1)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(scores) != writers {
		t.Errorf("expected %d scores, got %d", writers, len(scores))
	}
	recent, err := s.RecentPlayerStats(ctx, -1)
	if err != nil {
		t.Fatalf("recent stats: %v", err)
	}
	if len(recent) != writers {
		t.Errorf("expected %d stats, got %d", writers, len(recent))
	}
}

func TestWithFileOptions(t *testing.T) {
	if got := withFileOptions("scores.db"); got != "scores.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate" {
		t.Errorf("unexpected dsn %q", got)
	}
	if got := withFileOptions("file:scores.db?cache=shared"); got != "file:scores.db?cache=shared&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate" {
		t.Errorf("unexpected dsn %q", got)
	}
}
