package loop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomz197/bugzapper/internal/api"
	"github.com/tomz197/bugzapper/internal/input"
	"github.com/tomz197/bugzapper/internal/store"
)

// newTestGame wires a game to an API server backed by st.
func newTestGame(t *testing.T, st store.Store) *game {
	t.Helper()
	ts := httptest.NewServer(api.NewServer(st, nil).Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return newGame(ctx, Options{Client: api.NewClient(ts.URL, nil)})
}

// await applies the next backend result, failing after a timeout.
func await(t *testing.T, g *game) any {
	t.Helper()
	select {
	case msg := <-g.backend.results:
		g.apply(msg)
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for backend result")
		return nil
	}
}

func typed(s string) input.Input {
	return input.Input{Typed: []byte(s)}
}

// endGame ends the session and opens name entry past its grace period.
func endGame(g *game) *fakeClock {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	g.now = clock.now
	g.session.gameOver()
	g.handleInput(input.Input{})
	clock.advance(nameEntryGrace)
	return clock
}

func TestMenuStartsGame(t *testing.T) {
	g := newGame(context.Background(), Options{})

	g.handleInput(input.Input{Enter: true})
	if g.session.State != StatePlaying {
		t.Fatalf("expected playing, got %s", g.session.State)
	}

	g.handleInput(input.Input{Left: true, Up: true, Space: true})
	if !g.controls.Left || !g.controls.Thrust || !g.controls.Fire || g.controls.Right {
		t.Errorf("unexpected controls %+v", g.controls)
	}

	g.handleInput(typed("p"))
	if g.session.State != StatePaused || g.controls != (Controls{}) {
		t.Errorf("expected paused with no controls, got %s %+v", g.session.State, g.controls)
	}
	g.handleInput(input.Input{Escape: true})
	if g.session.State != StateMenu {
		t.Errorf("escape from pause should return to menu, got %s", g.session.State)
	}
}

func TestQuit(t *testing.T) {
	g := newGame(context.Background(), Options{})
	g.handleInput(typed("q"))
	if g.running {
		t.Error("q in menu should quit")
	}

	g = newGame(context.Background(), Options{})
	g.session.Start()
	g.handleInput(typed("q"))
	if !g.running {
		t.Error("q while playing must not quit")
	}
	g.handleInput(input.Input{Quit: true})
	if g.running {
		t.Error("ctrl+c should quit anywhere")
	}
}

func TestSubmitScoreReturnsToMenu(t *testing.T) {
	st := store.NewMemoryStore()
	g := newTestGame(t, st)

	g.session.Start()
	g.session.Score = 420
	g.session.ShotsFired = 10
	g.session.AsteroidsDestroyed = 4
	endGame(g)

	g.handleInput(input.Input{Enter: true})
	if g.submitErr == "" || g.submitting {
		t.Fatal("empty name must not be submitted")
	}

	g.handleInput(typed("Al"))
	g.handleInput(typed("x"))
	g.handleInput(input.Input{Backspace: true})
	g.handleInput(input.Input{Enter: true})
	if !g.submitting {
		t.Fatal("expected submission in flight")
	}

	if msg, ok := await(t, g).(gameSubmitted); !ok || msg.err != nil {
		t.Fatalf("unexpected submission result %+v", msg)
	}
	if g.session.State != StateMenu || g.view != viewBoard {
		t.Errorf("expected score board after submission, got %s", g.session.State)
	}
	if g.lastGame == nil || g.lastGame.PlayerName != "Al" || g.lastGame.Stats.Score != 420 {
		t.Errorf("unexpected last game %+v", g.lastGame)
	}

	await(t, g) // board reload
	if len(g.scores) != 1 || g.scores[0].PlayerName != "Al" || g.scores[0].Score != 420 {
		t.Errorf("unexpected board %+v", g.scores)
	}

	stats, _ := st.RecentPlayerStats(context.Background(), 10)
	if len(stats) != 1 || stats[0].Accuracy == nil || *stats[0].Accuracy != 40 {
		t.Errorf("unexpected stored stats %+v", stats)
	}
}

func TestSubmitFailureStaysOnGameOver(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	g := newGame(context.Background(), Options{Client: api.NewClient(ts.URL, nil)})
	g.session.Start()
	endGame(g)

	g.handleInput(typed("Bo"))
	g.handleInput(input.Input{Enter: true})
	msg, _ := await(t, g).(gameSubmitted)

	var se *api.StatusError
	if !errors.As(msg.err, &se) {
		t.Fatalf("expected StatusError, got %v", msg.err)
	}
	if g.session.State != StateGameOver || g.submitErr == "" || g.lastGame != nil {
		t.Errorf("failed submission must keep the game over screen, state=%s", g.session.State)
	}
	if string(g.name) != "Bo" {
		t.Errorf("name should be kept for retry, got %q", string(g.name))
	}
}

func TestNameIsCapped(t *testing.T) {
	g := newGame(context.Background(), Options{})
	g.session.Start()
	endGame(g)

	g.handleInput(typed(strings.Repeat("z", 30)))
	if len(g.name) != store.MaxNameLength {
		t.Errorf("expected %d characters, got %d", store.MaxNameLength, len(g.name))
	}

	g.handleInput(input.Input{Escape: true})
	if g.session.State != StateMenu || len(g.name) != 0 {
		t.Error("escape should drop the name and return to menu")
	}
}

func TestClearScoresNeedsConfirmation(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddScore(context.Background(), store.ScoreRecord{ID: "1", PlayerName: "Al", Score: 10})
	g := newTestGame(t, st)

	g.handleInput(typed("c"))
	if !g.confirmClear {
		t.Fatal("expected confirmation prompt")
	}
	g.handleInput(typed("n"))
	if g.confirmClear {
		t.Fatal("any other key should cancel")
	}
	if top, _ := st.TopScores(context.Background(), 10); len(top) != 1 {
		t.Fatal("cancelled clear must keep scores")
	}

	g.handleInput(typed("c"))
	g.handleInput(input.Input{})
	if !g.confirmClear {
		t.Fatal("an idle frame keeps the prompt open")
	}
	g.handleInput(typed("y"))
	if _, ok := await(t, g).(scoresCleared); !ok {
		t.Fatal("expected clear result")
	}
	if g.notice != api.ClearedMessage {
		t.Errorf("unexpected notice %q", g.notice)
	}
	await(t, g)
	if len(g.scores) != 0 {
		t.Errorf("expected empty board, got %d", len(g.scores))
	}
}

func TestPastStatsView(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddPlayerStats(context.Background(), store.PlayerStatsRecord{ID: "1", PlayerName: "Al", LevelReached: 3, Timestamp: time.Now()})
	g := newTestGame(t, st)

	g.handleInput(typed("h"))
	if g.view != viewPastStats || !g.pastLoading {
		t.Fatal("expected loading past stats view")
	}
	await(t, g)
	if len(g.pastStats) != 1 || g.pastStats[0].LevelReached != 3 {
		t.Errorf("unexpected past stats %+v", g.pastStats)
	}
	if !strings.Contains(g.menuPanel(), "Past 10 Game Statistics") {
		t.Error("menu panel should show past stats")
	}

	g.handleInput(typed("s"))
	if !strings.Contains(g.menuPanel(), "Play a game first") {
		t.Error("last game view should explain there is no game yet")
	}
	g.handleInput(typed("b"))
	if g.view != viewBoard {
		t.Error("b should return to the board")
	}
}

func TestOfflineSubmissionKeepsGameLocally(t *testing.T) {
	g := newGame(context.Background(), Options{})
	g.session.Start()
	endGame(g)

	g.handleInput(typed("Cy"))
	g.handleInput(input.Input{Enter: true})
	await(t, g)

	if g.lastGame == nil || g.session.State != StateMenu {
		t.Fatal("offline submission should record the game and return to menu")
	}
	if _, ok := await(t, g).(scoresLoaded); !ok || g.scoresErr == nil {
		t.Error("offline board load should report an error")
	}
}

func TestRunDrawsMenuAndQuits(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Run(ctx, bufio.NewReader(strings.NewReader("q")), &out, Options{
		TermSizeFunc: func() (int, int, error) { return 100, 40, nil },
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("run did not stop on quit")
	}
	if !strings.Contains(out.String(), "B U G Z A P P E R") {
		t.Error("expected the menu title in the output")
	}
	if !strings.HasSuffix(out.String(), "\033[?25h") {
		t.Error("expected the cursor to be restored")
	}
}

func TestRunFailsWithoutTerminalSize(t *testing.T) {
	err := Run(context.Background(), bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, Options{
		TermSizeFunc: func() (int, int, error) { return 0, 0, errors.New("not a terminal") },
	})
	if err == nil {
		t.Error("expected an error when the terminal size is unknown")
	}
}

func TestHeldKeysDoNotTypeIntoName(t *testing.T) {
	g := newGame(context.Background(), Options{})
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	g.now = clock.now
	g.session.Start()
	g.session.gameOver()

	g.handleInput(typed("   dd"))
	clock.advance(100 * time.Millisecond)
	g.handleInput(typed("www  "))
	if len(g.name) != 0 {
		t.Fatalf("keys held from play leaked into the name: %q", string(g.name))
	}

	clock.advance(nameEntryGrace)
	g.handleInput(typed("Al"))
	if string(g.name) != "Al" {
		t.Errorf("expected typing after the grace period, got %q", string(g.name))
	}
}

func TestRetryOnlyResendsFailedHalf(t *testing.T) {
	st := store.NewMemoryStore()
	handler := api.NewServer(st, nil).Handler()

	var scorePosts atomic.Int32
	var failStats atomic.Bool
	failStats.Store(true)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.URL.Path {
			case "/api/scores":
				scorePosts.Add(1)
			case "/api/playerStats":
				if failStats.Swap(false) {
					http.Error(w, `{"error":"busy"}`, http.StatusServiceUnavailable)
					return
				}
			}
		}
		handler.ServeHTTP(w, r)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := newGame(ctx, Options{Client: api.NewClient(ts.URL, nil)})
	g.session.Start()
	g.session.Score = 300
	endGame(g)

	g.handleInput(typed("Al"))
	g.handleInput(input.Input{Enter: true})
	msg, _ := await(t, g).(gameSubmitted)
	if msg.err == nil {
		t.Fatal("expected the stats half to fail")
	}
	if g.pending == nil || !g.pending.ScoreSaved || g.pending.StatsSaved {
		t.Fatalf("expected a pending game with only the score saved, got %+v", g.pending)
	}

	g.handleInput(typed("x"))
	if string(g.name) != "Al" {
		t.Errorf("name must not change once part of the game is stored, got %q", string(g.name))
	}

	g.handleInput(input.Input{Enter: true})
	if msg, _ := await(t, g).(gameSubmitted); msg.err != nil {
		t.Fatalf("retry failed: %v", msg.err)
	}
	if g.session.State != StateMenu {
		t.Errorf("expected menu after retry, got %s", g.session.State)
	}

	if n := scorePosts.Load(); n != 1 {
		t.Errorf("score posted %d times, want 1", n)
	}
	if top, _ := st.TopScores(context.Background(), -1); len(top) != 1 {
		t.Errorf("expected one board entry, got %d", len(top))
	}
	if recent, _ := st.RecentPlayerStats(context.Background(), -1); len(recent) != 1 {
		t.Errorf("expected one stats entry, got %d", len(recent))
	}
}

func TestAbandonedSubmissionLeavesNewGameAlone(t *testing.T) {
	g := newGame(context.Background(), Options{})
	g.session.Start()
	endGame(g)

	g.handleInput(typed("Al"))
	g.handleInput(input.Input{Enter: true})
	if !g.submitting {
		t.Fatal("expected submission in flight")
	}
	g.handleInput(input.Input{Escape: true})

	g.handleInput(input.Input{Enter: true})
	if g.session.State != StatePlaying {
		t.Fatalf("expected a new game, got %s", g.session.State)
	}
	endGame(g)
	g.handleInput(typed("Bo"))

	if msg, _ := await(t, g).(gameSubmitted); msg.game.PlayerName != "Al" {
		t.Fatalf("expected the abandoned submission, got %+v", msg)
	}
	if g.session.State != StateGameOver || string(g.name) != "Bo" || g.submitting {
		t.Errorf("stale result changed the new name entry: state=%s name=%q", g.session.State, string(g.name))
	}
	if g.lastGame == nil || g.lastGame.PlayerName != "Al" {
		t.Errorf("stored game should still be remembered, got %+v", g.lastGame)
	}
}
