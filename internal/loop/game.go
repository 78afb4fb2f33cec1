package loop

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/bugzapper/internal/api"
	"github.com/tomz197/bugzapper/internal/input"
	"github.com/tomz197/bugzapper/internal/store"
)

// menuView selects the panel shown in the menu.
type menuView int

const (
	viewBoard     menuView = iota // Score board
	viewLastGame                  // Stats of the last submitted game
	viewPastStats                 // Recent games from the server
)

// nameEntryGrace drops typed keys right after game over, while keys held
// during play are still autorepeating.
const nameEntryGrace = 500 * time.Millisecond

// game is the terminal front end around a Session: menus, name entry and
// the asynchronous score server traffic.
type game struct {
	session  *Session
	stream   *input.Stream
	backend  *backend
	styles   styles
	logger   *log.Logger
	now      func() time.Time
	running  bool
	controls Controls

	view         menuView
	confirmClear bool
	notice       string // One-line status shown under the menu panel

	scores        []store.ScoreRecord
	scoresErr     error
	scoresLoading bool

	pastStats   []store.PlayerStatsRecord
	pastErr     error
	pastLoading bool

	lastGame *playedGame

	name       []rune
	nameOpen   bool      // Name entry has seen its first frame
	nameSince  time.Time // When name entry opened
	submitting bool
	submitSeq  int // Tags the current submission; bumped when name entry is abandoned
	submitErr  string
	pending    *playedGame // Partly stored submission awaiting retry
}

func newGame(ctx context.Context, opts Options) *game {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	return &game{
		session:       NewSession(opts.Rand, nil),
		backend:       newBackend(ctx, opts.Client, logger),
		styles:        newStyles(renderer),
		logger:        logger,
		now:           time.Now,
		running:       true,
		scoresLoading: true,
	}
}

// handleInput applies one frame of input to the current screen.
func (g *game) handleInput(in input.Input) {
	g.controls = Controls{}
	if in.Quit {
		g.running = false
		return
	}

	switch g.session.State {
	case StateMenu:
		g.handleMenuInput(in)
	case StatePlaying:
		if in.Tapped('p', 'P') {
			g.session.TogglePause()
			return
		}
		g.controls = Controls{
			Left:   in.Left,
			Right:  in.Right,
			Thrust: in.Up,
			Fire:   in.Space,
		}
	case StatePaused:
		switch {
		case in.Tapped('p', 'P'):
			g.session.TogglePause()
			input.ResetKeyInput(g.stream)
		case in.Escape:
			g.session.ReturnToMenu()
			g.view = viewBoard
		}
	case StateGameOver:
		g.handleNameInput(in)
	}
}

func (g *game) handleMenuInput(in input.Input) {
	if g.confirmClear {
		g.confirmClear = false
		if in.Tapped('y', 'Y') {
			g.notice = "Clearing scores..."
			g.backend.clearScores()
		} else if len(in.Typed) > 0 || in.Escape {
			g.notice = ""
		} else {
			g.confirmClear = true
		}
		return
	}

	switch {
	case in.Enter || in.Tapped(' '):
		g.startGame()
	case in.Tapped('q', 'Q'):
		g.running = false
	case in.Tapped('c', 'C'):
		g.confirmClear = true
		g.notice = "Clear all scores? This cannot be undone. Press Y to confirm."
	case in.Tapped('s', 'S'):
		g.view = viewLastGame
		g.notice = ""
	case in.Tapped('h', 'H'):
		g.view = viewPastStats
		g.pastLoading = true
		g.notice = ""
		g.backend.loadPastStats()
	case in.Tapped('b', 'B') || in.Escape:
		g.view = viewBoard
		g.notice = ""
	}
}

func (g *game) handleNameInput(in input.Input) {
	if in.Escape {
		g.session.ReturnToMenu()
		g.resetNameEntry()
		g.view = viewBoard
		return
	}
	if !g.nameOpen {
		g.nameOpen = true
		g.nameSince = g.now()
		input.ResetKeyInput(g.stream)
		return
	}
	if g.submitting {
		return
	}

	// A partly stored game keeps the name it was stored under.
	if g.pending == nil && g.now().Sub(g.nameSince) >= nameEntryGrace {
		if in.Backspace && len(g.name) > 0 {
			g.name = g.name[:len(g.name)-1]
		}
		for _, r := range in.Text() {
			if len(g.name) < store.MaxNameLength {
				g.name = append(g.name, r)
			}
		}
	}

	if in.Enter {
		name := strings.TrimSpace(string(g.name))
		if name == "" {
			g.submitErr = "Please enter your name"
			return
		}

		played := playedGame{
			PlayerName: name,
			Stats:      g.session.GameStats(),
			At:         g.now(),
		}
		if g.pending != nil {
			played = *g.pending
		}
		g.submitSeq++
		g.submitting = true
		g.submitErr = ""
		g.backend.submit(g.submitSeq, played)
	}
}

func (g *game) startGame() {
	g.session.Start()
	g.resetNameEntry()
	g.confirmClear = false
	g.notice = ""
	input.ResetKeyInput(g.stream)
}

// resetNameEntry clears the name form. Results of a submission still in
// flight no longer apply to it.
func (g *game) resetNameEntry() {
	g.name = g.name[:0]
	g.nameOpen = false
	g.nameSince = time.Time{}
	g.submitting = false
	g.submitSeq++
	g.submitErr = ""
	g.pending = nil
}

// drainResults applies every backend result that has arrived, without blocking.
func (g *game) drainResults() {
	for {
		select {
		case msg := <-g.backend.results:
			g.apply(msg)
		default:
			return
		}
	}
}

func (g *game) apply(msg any) {
	switch m := msg.(type) {
	case scoresLoaded:
		g.scoresLoading = false
		g.scoresErr = m.err
		if m.err == nil {
			g.scores = m.scores
		}

	case pastStatsLoaded:
		g.pastLoading = false
		g.pastErr = m.err
		if m.err == nil {
			g.pastStats = m.stats
		}

	case scoresCleared:
		if m.err != nil {
			g.notice = "Error clearing scores. Please try again."
			return
		}
		g.notice = api.ClearedMessage
		g.backend.loadScores()

	case gameSubmitted:
		if m.seq != g.submitSeq {
			// The player left that name entry; keep what the server stored
			// without touching the current screen.
			if m.err == nil {
				game := m.game
				g.lastGame = &game
				g.backend.loadScores()
			}
			return
		}

		g.submitting = false
		if m.err != nil {
			g.submitErr = "Could not submit score. ENTER to retry, ESC to skip."
			if m.game.ScoreSaved || m.game.StatsSaved {
				pending := m.game
				g.pending = &pending
				g.submitErr = "Saved in part. ENTER to retry the rest, ESC to skip."
			}
			return
		}
		game := m.game
		g.lastGame = &game
		g.backend.loadScores()
		if g.session.State == StateGameOver {
			g.session.ReturnToMenu()
			g.resetNameEntry()
			g.view = viewBoard
		}
	}
}
