package loop

import (
	"math/rand"
	"time"

	"github.com/tomz197/bugzapper/internal/object"
)

// State is the current phase of a session.
type State int

const (
	StateMenu     State = iota // Title screen with score board
	StatePlaying               // Active gameplay
	StatePaused                // Gameplay frozen, last frame stays visible
	StateGameOver              // Lives exhausted, awaiting name entry
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// Controls is the player's intent for one frame.
type Controls struct {
	Left   bool
	Right  bool
	Thrust bool
	Fire   bool
}

// Stats summarises a session's counters.
type Stats struct {
	Score              int
	ShotsFired         int
	AsteroidsDestroyed int
	LevelReached       int
	TimePlayed         int // whole seconds
}

// Accuracy returns destroyed/fired as a whole percentage, 0 when no shots
// were fired.
func (s Stats) Accuracy() int {
	if s.ShotsFired == 0 {
		return 0
	}
	return s.AsteroidsDestroyed * 100 / s.ShotsFired
}

// Session holds all state of one single-player game. It is not safe for
// concurrent use; the frame loop is its only writer.
type Session struct {
	State  State
	Screen object.Screen

	Ship        *object.Ship
	Asteroids   []*object.Asteroid
	Projectiles []*object.Projectile
	Particles   []*object.Particle

	Score              int
	Lives              int
	Level              int
	ShotsFired         int
	AsteroidsDestroyed int
	StartedAt          time.Time
	TimePlayed         int // whole seconds, set when the game ends

	rng     *rand.Rand
	now     func() time.Time
	engine  *collisionEngine
	toSpawn []*object.Asteroid // Split fragments joined after the projectile pass
	debrisQ []*object.Particle // Particles joined after collisions
}

// NewSession creates a session in the menu state. A nil rng uses a
// time-seeded source; a nil clock uses time.Now.
func NewSession(rng *rand.Rand, now func() time.Time) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	screen := object.NewScreen(PlayfieldWidth, PlayfieldHeight)
	return &Session{
		State:  StateMenu,
		Screen: screen,
		Ship:   object.NewShip(float64(screen.CenterX), float64(screen.CenterY)),
		Lives:  InitialLives,
		Level:  InitialLevel,
		rng:    rng,
		now:    now,
		engine: newCollisionEngine(screen),
	}
}

// Spawn queues particles and asteroid fragments created during collision
// handling. Implements object.Spawner.
func (s *Session) Spawn(e object.Entity) {
	switch o := e.(type) {
	case *object.Particle:
		s.debrisQ = append(s.debrisQ, o)
	case *object.Asteroid:
		s.toSpawn = append(s.toSpawn, o)
	}
}

// flushAsteroids joins queued split fragments to the asteroid list.
func (s *Session) flushAsteroids() {
	s.Asteroids = append(s.Asteroids, s.toSpawn...)
	clear(s.toSpawn)
	s.toSpawn = s.toSpawn[:0]
}

// flushParticles joins queued explosion particles to the particle list.
func (s *Session) flushParticles() {
	s.Particles = append(s.Particles, s.debrisQ...)
	clear(s.debrisQ)
	s.debrisQ = s.debrisQ[:0]
}

// Start resets every counter and entity collection and begins play at level 1.
// It is a no-op while a game is in progress.
func (s *Session) Start() {
	if s.State == StatePlaying || s.State == StatePaused {
		return
	}

	s.releaseParticles()
	s.Projectiles = s.Projectiles[:0]
	s.toSpawn = s.toSpawn[:0]

	s.Score = 0
	s.Lives = InitialLives
	s.Level = InitialLevel
	s.ShotsFired = 0
	s.AsteroidsDestroyed = 0
	s.TimePlayed = 0
	s.StartedAt = s.now()

	s.Ship = object.NewShip(float64(s.Screen.CenterX), float64(s.Screen.CenterY))
	s.Asteroids = object.SpawnWave(s.Screen, waveBase+s.Level, s.Level, s.Ship.X, s.Ship.Y, s.rng)

	s.State = StatePlaying
}

// TogglePause switches between playing and paused. Other states are unaffected.
func (s *Session) TogglePause() {
	switch s.State {
	case StatePlaying:
		s.State = StatePaused
	case StatePaused:
		s.State = StatePlaying
	}
}

// ReturnToMenu leaves a paused or finished game.
func (s *Session) ReturnToMenu() {
	if s.State == StatePaused || s.State == StateGameOver {
		s.State = StateMenu
	}
}

// GameStats returns the counters of the current or last game.
func (s *Session) GameStats() Stats {
	return Stats{
		Score:              s.Score,
		ShotsFired:         s.ShotsFired,
		AsteroidsDestroyed: s.AsteroidsDestroyed,
		LevelReached:       s.Level,
		TimePlayed:         s.TimePlayed,
	}
}

// gameOver freezes the session and records elapsed play time.
func (s *Session) gameOver() {
	s.TimePlayed = int(s.now().Sub(s.StartedAt) / time.Second)
	s.State = StateGameOver
}

func (s *Session) releaseParticles() {
	for _, p := range s.Particles {
		p.Release()
	}
	clear(s.Particles)
	s.Particles = s.Particles[:0]
	for _, p := range s.debrisQ {
		p.Release()
	}
	clear(s.debrisQ)
	s.debrisQ = s.debrisQ[:0]
}

var _ object.Spawner = (*Session)(nil)
