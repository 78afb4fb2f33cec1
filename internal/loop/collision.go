package loop

import (
	"github.com/tomz197/bugzapper/internal/object"
	"github.com/tomz197/bugzapper/internal/physics"
)

// collisionEngine resolves projectile and ship hits against asteroids.
// Asteroids are bucketed in a spatial grid so each projectile only tests
// its neighbourhood.
type collisionEngine struct {
	grid *physics.SpatialGrid
}

func newCollisionEngine(screen object.Screen) *collisionEngine {
	return &collisionEngine{
		grid: physics.NewSpatialGrid(float64(screen.Width), float64(screen.Height), gridCellSize),
	}
}

// resolve runs the projectile pass, joins split fragments, then runs the
// ship pass.
func (e *collisionEngine) resolve(s *Session) {
	e.projectilePass(s)
	s.Asteroids = removeDestroyed(s.Asteroids)
	s.Projectiles = removeSpent(s.Projectiles)
	s.flushAsteroids()
	e.shipPass(s)
}

// projectilePass lets each projectile destroy at most one asteroid per
// frame. When several overlap, the closest one is hit.
func (e *collisionEngine) projectilePass(s *Session) {
	e.grid.Clear()
	for i, a := range s.Asteroids {
		e.grid.Insert(a.X, a.Y, i)
	}

	for _, p := range s.Projectiles {
		if !p.IsActive() {
			continue
		}

		best := -1
		bestDist := 0.0
		e.grid.QueryAround(p.X, p.Y, func(i int) bool {
			a := s.Asteroids[i]
			if !a.IsActive() || !physics.Overlap(p, a) {
				return false
			}
			d := physics.DistanceSquared(p.X, p.Y, a.X, a.Y)
			if best < 0 || d < bestDist || (d == bestDist && i < best) {
				best, bestDist = i, d
			}
			return false
		})
		if best < 0 {
			continue
		}

		a := s.Asteroids[best]
		p.MarkDestroyed()
		a.MarkDestroyed()
		s.AsteroidsDestroyed++
		s.Score += asteroidScore(a.Size)
		object.SpawnExplosion(a.X, a.Y, debrisCount(a.Size), s.rng, s)
		for _, frag := range a.Split(s.Level, s.rng) {
			s.Spawn(frag)
		}
	}
}

// shipPass costs the ship one life if any asteroid overlaps it, checking
// asteroids newest first and stopping at the first hit.
func (e *collisionEngine) shipPass(s *Session) {
	for i := len(s.Asteroids) - 1; i >= 0; i-- {
		if !physics.Overlap(s.Ship, s.Asteroids[i]) {
			continue
		}
		s.Lives--
		object.SpawnExplosion(s.Ship.X, s.Ship.Y, DebrisLarge, s.rng, s)
		s.Ship.Respawn(float64(s.Screen.CenterX), float64(s.Screen.CenterY))
		if s.Lives <= 0 {
			s.gameOver()
		}
		return
	}
}

func removeDestroyed(asteroids []*object.Asteroid) []*object.Asteroid {
	kept := asteroids[:0]
	for _, a := range asteroids {
		if a.IsActive() {
			kept = append(kept, a)
		}
	}
	clear(asteroids[len(kept):])
	return kept
}

func removeSpent(projectiles []*object.Projectile) []*object.Projectile {
	kept := projectiles[:0]
	for _, p := range projectiles {
		if p.IsActive() {
			kept = append(kept, p)
		}
	}
	clear(projectiles[len(kept):])
	return kept
}

// asteroidScore returns the score for destroying an asteroid of the given size.
func asteroidScore(size object.AsteroidSize) int {
	switch size {
	case object.AsteroidLarge:
		return ScoreLargeAsteroid
	case object.AsteroidMedium:
		return ScoreMediumAsteroid
	case object.AsteroidSmall:
		return ScoreSmallAsteroid
	default:
		return 0
	}
}

// debrisCount returns the explosion particle count for an asteroid size.
func debrisCount(size object.AsteroidSize) int {
	switch size {
	case object.AsteroidLarge:
		return DebrisLarge
	case object.AsteroidMedium:
		return DebrisMedium
	default:
		return DebrisSmall
	}
}
