package loop

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/bugzapper/internal/draw"
	"github.com/tomz197/bugzapper/internal/object"
	"github.com/tomz197/bugzapper/internal/store"
)

// styles holds the lipgloss styles for one renderer. Over SSH every session
// has its own renderer so colour support follows the client's terminal.
type styles struct {
	panel   lipgloss.Style
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	alert   lipgloss.Style
	hud     lipgloss.Style
	rank    lipgloss.Style
	current lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	accent := lipgloss.Color("86")
	return styles{
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 3),
		title:   r.NewStyle().Bold(true).Foreground(accent),
		label:   r.NewStyle().Foreground(lipgloss.Color("245")),
		value:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
		alert:   r.NewStyle().Foreground(lipgloss.Color("203")),
		hud:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		rank:    r.NewStyle().Width(4).Foreground(lipgloss.Color("245")),
		current: r.NewStyle().Foreground(lipgloss.Color("212")),
	}
}

// drawFrame clears the screen, renders the playfield and overlays the
// panel for the current state.
func (g *game) drawFrame(out *draw.ChunkWriter, canvas *draw.Canvas) {
	draw.ClearScreen(out)
	canvas.Clear()

	drawStars(canvas)
	if g.session.State != StateMenu {
		g.drawEntities(canvas)
	}
	canvas.Render(out)

	termWidth := canvas.TerminalWidth()
	termHeight := canvas.TerminalHeight()

	switch g.session.State {
	case StateMenu:
		placeCentered(out, g.menuPanel(), termWidth, termHeight)
	case StatePlaying:
		g.drawHUD(out, termWidth)
	case StatePaused:
		g.drawHUD(out, termWidth)
		placeCentered(out, g.pausePanel(), termWidth, termHeight)
	case StateGameOver:
		g.drawHUD(out, termWidth)
		placeCentered(out, g.gameOverPanel(), termWidth, termHeight)
	}
}

// drawStars paints the fixed background star field.
func drawStars(canvas *draw.Canvas) {
	for i := 0; i < starCount; i++ {
		x := float64((i * starStepX) % PlayfieldWidth)
		y := float64((i * starStepY) % PlayfieldHeight)
		canvas.SetFloat(x, y, draw.InkStar)
	}
}

// drawEntities draws ship, projectiles, asteroids and particles, in that order.
func (g *game) drawEntities(canvas *draw.Canvas) {
	ctx := object.DrawContext{Canvas: canvas}
	s := g.session

	drawOne := func(e object.Entity) {
		if err := e.Draw(ctx); err != nil {
			g.logger.Warn("draw entity", "type", fmt.Sprintf("%T", e), "err", err)
		}
	}

	drawOne(s.Ship)
	for _, p := range s.Projectiles {
		drawOne(p)
	}
	for _, a := range s.Asteroids {
		drawOne(a)
	}
	for _, p := range s.Particles {
		drawOne(p)
	}
}

// drawHUD draws score, lives and level along the top row.
func (g *game) drawHUD(out *draw.ChunkWriter, termWidth int) {
	s := g.session
	left := g.styles.hud.Render(fmt.Sprintf("Score: %d", s.Score))
	out.WriteAt(2, 1, left)

	right := g.styles.hud.Render(fmt.Sprintf("Lives: %d  Level: %d", s.Lives, s.Level))
	out.WriteAt(termWidth-lipgloss.Width(right), 1, right)

	if s.State == StatePlaying {
		hint := g.styles.dim.Render("P pause")
		out.WriteAt((termWidth-lipgloss.Width(hint))/2, 1, hint)
	}
}

// placeCentered writes a multi-line block centred on the terminal.
func placeCentered(out *draw.ChunkWriter, block string, termWidth, termHeight int) {
	lines := strings.Split(block, "\n")
	col := (termWidth-lipgloss.Width(block))/2 + 1
	row := (termHeight-len(lines))/2 + 1
	for i, line := range lines {
		out.WriteAt(col, row+i, line)
	}
}

func (g *game) menuPanel() string {
	st := g.styles
	var body string
	switch g.view {
	case viewLastGame:
		body = g.lastGameView()
	case viewPastStats:
		body = g.pastStatsView()
	default:
		body = g.scoreBoardView()
	}

	keys := st.dim.Render("SPACE start · S last game · H past games · B board · C clear · Q quit")
	parts := []string{st.title.Render("B U G Z A P P E R"), "", body, "", keys}
	if g.notice != "" {
		notice := st.value
		if g.confirmClear {
			notice = st.alert
		}
		parts = append(parts, "", notice.Render(g.notice))
	}
	return st.panel.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func (g *game) scoreBoardView() string {
	st := g.styles
	lines := []string{st.title.Render("Top Scores")}

	switch {
	case g.scoresErr != nil && len(g.scores) == 0:
		lines = append(lines, st.alert.Render("Error loading scores"))
	case g.scoresLoading && len(g.scores) == 0:
		lines = append(lines, st.dim.Render("Loading..."))
	case len(g.scores) == 0:
		lines = append(lines, st.dim.Render("No scores yet. Be the first!"))
	default:
		for i, rec := range g.scores {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
				st.rank.Render(fmt.Sprintf("%d.", i+1)),
				st.label.Width(store.MaxNameLength+2).Render(rec.PlayerName),
				st.value.Width(8).Align(lipgloss.Right).Render(fmt.Sprint(rec.Score)),
			))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (g *game) lastGameView() string {
	st := g.styles
	if g.lastGame == nil {
		return st.dim.Render("No game statistics available yet. Play a game first!")
	}

	lg := g.lastGame
	header := st.title.Render(lg.PlayerName) + "  " + st.dim.Render(lg.At.Format("2006-01-02"))
	return lipgloss.JoinVertical(lipgloss.Left, header, g.statLines(lg.Stats, fmt.Sprintf("%d%%", lg.Stats.Accuracy())))
}

func (g *game) pastStatsView() string {
	st := g.styles
	switch {
	case g.pastLoading:
		return st.dim.Render("Loading past game statistics...")
	case g.pastErr != nil:
		return st.alert.Render("Error loading past game statistics. Please try again.")
	case len(g.pastStats) == 0:
		return st.dim.Render("No past game statistics available yet. Play some games first!")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		st.rank.Render(""),
		st.label.Width(store.MaxNameLength+2).Render("Player"),
		st.label.Width(8).Align(lipgloss.Right).Render("Score"),
		st.label.Width(7).Align(lipgloss.Right).Render("Level"),
		st.label.Width(8).Align(lipgloss.Right).Render("Time"),
		st.label.Width(6).Align(lipgloss.Right).Render("Hits"),
		st.label.Width(6).Align(lipgloss.Right).Render("Shots"),
		st.label.Width(6).Align(lipgloss.Right).Render("Acc"),
	)
	lines := []string{st.title.Render("Past 10 Game Statistics"), header}
	for i, rec := range g.pastStats {
		name := st.value
		if i == 0 {
			name = st.current
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			st.rank.Render(fmt.Sprintf("%d.", i+1)),
			name.Width(store.MaxNameLength+2).Render(rec.PlayerName),
			st.value.Width(8).Align(lipgloss.Right).Render(fmt.Sprint(rec.Score)),
			st.value.Width(7).Align(lipgloss.Right).Render(fmt.Sprint(rec.LevelReached)),
			st.value.Width(8).Align(lipgloss.Right).Render(formatDuration(rec.TimePlayed)),
			st.value.Width(6).Align(lipgloss.Right).Render(fmt.Sprint(rec.AsteroidsDestroyed)),
			st.value.Width(6).Align(lipgloss.Right).Render(fmt.Sprint(rec.BulletsFired)),
			st.value.Width(6).Align(lipgloss.Right).Render(formatAccuracy(rec.Accuracy)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// statLines renders a two-column label/value list for a game's counters.
func (g *game) statLines(s Stats, accuracy string) string {
	st := g.styles
	rows := [][2]string{
		{"Score", fmt.Sprint(s.Score)},
		{"Bullets Fired", fmt.Sprint(s.ShotsFired)},
		{"Asteroids Destroyed", fmt.Sprint(s.AsteroidsDestroyed)},
		{"Level Reached", fmt.Sprint(s.LevelReached)},
		{"Time Played", formatDuration(s.TimePlayed)},
		{"Accuracy", accuracy},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, st.label.Width(22).Render(r[0]+":")+st.value.Render(r[1]))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (g *game) pausePanel() string {
	st := g.styles
	return st.panel.Render(lipgloss.JoinVertical(lipgloss.Center,
		st.title.Render("PAUSED"),
		"",
		st.dim.Render("P resume · ESC menu"),
	))
}

func (g *game) gameOverPanel() string {
	st := g.styles
	s := g.session

	cursor := "_"
	if g.submitting {
		cursor = ""
	}
	name := st.value.Render(string(g.name)) + st.dim.Render(cursor)
	counter := st.dim.Render(fmt.Sprintf("(%d/%d)", len(g.name), store.MaxNameLength))

	parts := []string{
		st.title.Render("GAME OVER"),
		"",
		st.label.Render("Final score: ") + st.value.Render(fmt.Sprint(s.Score)),
		"",
		g.statLines(s.GameStats(), fmt.Sprintf("%d%%", s.GameStats().Accuracy())),
		"",
		st.label.Render("Name: ") + name + " " + counter,
	}
	switch {
	case g.submitting:
		parts = append(parts, st.dim.Render("Submitting..."))
	case g.submitErr != "":
		parts = append(parts, st.alert.Render(g.submitErr))
	}
	parts = append(parts, "", st.dim.Render("ENTER submit · ESC menu"))
	return st.panel.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

// formatDuration renders whole seconds as m:ss.
func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// formatAccuracy renders a stored accuracy, which is absent when no shots were fired.
func formatAccuracy(pct *int) string {
	if pct == nil {
		return "-"
	}
	return fmt.Sprintf("%d%%", *pct)
}
