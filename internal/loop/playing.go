package loop

import (
	"time"

	"github.com/tomz197/bugzapper/internal/object"
)

// Update runs one frame of gameplay: controls, motion, collisions and level
// progression. It does nothing unless the session is playing.
func (s *Session) Update(dt time.Duration, c Controls) {
	if s.State != StatePlaying {
		return
	}
	if dt < 0 {
		dt = 0
	}
	ctx := object.UpdateContext{Delta: dt, Screen: s.Screen}

	s.applyControls(c)

	s.Ship.Advance(ctx)
	s.advanceProjectiles(ctx)
	for _, a := range s.Asteroids {
		a.Advance(ctx)
	}
	s.advanceParticles(ctx)

	s.engine.resolve(s)
	s.flushParticles()

	if s.State == StatePlaying && len(s.Asteroids) == 0 {
		s.nextLevel()
	}
}

// applyControls turns the frame's controls into ship actions.
func (s *Session) applyControls(c Controls) {
	s.Ship.Thrusting = false

	if c.Left {
		s.Ship.Rotate(-1)
	}
	if c.Right {
		s.Ship.Rotate(1)
	}
	if c.Thrust {
		s.Ship.Thrust()
	}
	if c.Fire {
		if p := s.Ship.Fire(s.now()); p != nil {
			s.Projectiles = append(s.Projectiles, p)
			s.ShotsFired++
		}
	}
}

// advanceProjectiles moves projectiles and drops expired ones.
func (s *Session) advanceProjectiles(ctx object.UpdateContext) {
	kept := s.Projectiles[:0] // reuse backing array
	for _, p := range s.Projectiles {
		p.Advance(ctx)
		if p.IsActive() {
			kept = append(kept, p)
		}
	}
	clear(s.Projectiles[len(kept):])
	s.Projectiles = kept
}

// advanceParticles moves particles and returns expired ones to the pool.
func (s *Session) advanceParticles(ctx object.UpdateContext) {
	kept := s.Particles[:0]
	for _, p := range s.Particles {
		p.Advance(ctx)
		if p.IsActive() {
			kept = append(kept, p)
		} else {
			object.ReleaseObject(p)
		}
	}
	clear(s.Particles[len(kept):])
	s.Particles = kept
}

// nextLevel raises the level and spawns a new wave away from the ship.
func (s *Session) nextLevel() {
	s.Level++
	wave := object.SpawnWave(s.Screen, waveBase+s.Level, s.Level, s.Ship.X, s.Ship.Y, s.rng)
	s.Asteroids = append(s.Asteroids, wave...)
}
