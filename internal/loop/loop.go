// Package loop provides the main game loop and state management.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/bugzapper/internal/api"
	"github.com/tomz197/bugzapper/internal/draw"
	"github.com/tomz197/bugzapper/internal/input"
)

const targetFPS = 60
const targetFrameTime = time.Second / targetFPS

// maxFrameDelta caps the step after a stalled frame (slow link, suspended
// terminal) so entities do not jump across the playfield.
const maxFrameDelta = 100 * time.Millisecond

// Options configures Run.
type Options struct {
	TermSizeFunc draw.TermSizeFunc  // Defaults to draw.DefaultTermSizeFunc
	Renderer     *lipgloss.Renderer // Defaults to lipgloss.DefaultRenderer()
	Client       *api.Client        // Score server; nil plays offline
	Logger       *log.Logger        // Defaults to a discarding logger
	Rand         *rand.Rand         // Defaults to a time-seeded source
}

// Run starts the main game loop with the standard Input → Update → Draw cycle.
// It returns when the player quits, the input stream ends, or ctx is done.
func Run(ctx context.Context, r *bufio.Reader, w io.Writer, opts Options) error {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := newGame(ctx, opts)
	g.stream = input.StartStream(r)

	out := draw.NewChunkWriter(w)
	draw.HideCursor(out)
	draw.ClearScreen(out)
	if err := out.Flush(); err != nil {
		return err
	}
	defer func() {
		draw.ClearScreen(w)
		draw.ShowCursor(w)
	}()

	termWidth, termHeight, err := opts.TermSizeFunc()
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}
	canvas := draw.NewScaledCanvas(termWidth, termHeight, PlayfieldWidth, PlayfieldHeight)

	g.backend.loadScores()

	ticker := time.NewTicker(targetFrameTime)
	defer ticker.Stop()

	lastTime := time.Now()
	for g.running {
		frameStart := time.Now()
		delta := frameStart.Sub(lastTime)
		lastTime = frameStart
		if delta > maxFrameDelta {
			delta = maxFrameDelta
		}

		// ===== INPUT PHASE =====
		g.handleInput(input.ReadInput(g.stream))
		g.drainResults()

		// ===== UPDATE PHASE =====
		if err := updateScreen(opts.TermSizeFunc, canvas); err != nil {
			return err
		}
		g.session.Update(delta, g.controls)

		// ===== DRAW PHASE =====
		g.drawFrame(out, canvas)
		if err := out.Flush(); err != nil {
			return err
		}

		// ===== FRAME TIMING =====
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// updateScreen checks for terminal resize and updates canvas scaling.
func updateScreen(termSize draw.TermSizeFunc, canvas *draw.Canvas) error {
	termWidth, termHeight, err := termSize()
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}

	// Resize canvas if terminal changed (updates scaling)
	canvas.Resize(termWidth, termHeight)

	return nil
}
