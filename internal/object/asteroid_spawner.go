package object

import (
	"math"
	"math/rand"
)

// SafeDistance is the minimum per-axis gap between the ship and a new wave asteroid.
const SafeDistance = 100.0

// maxPlacementAttempts bounds the rejection sampling in SpawnWave. A playfield
// too small to leave a safe zone takes the last sampled position.
const maxPlacementAttempts = 1000

// SpawnWave creates count large asteroids for the given level, each placed at
// least SafeDistance from (avoidX, avoidY) on both axes.
func SpawnWave(screen Screen, count, level int, avoidX, avoidY float64, rng *rand.Rand) []*Asteroid {
	if count <= 0 {
		return nil
	}

	w := float64(screen.Width)
	h := float64(screen.Height)
	wave := make([]*Asteroid, 0, count)

	for i := 0; i < count; i++ {
		var x, y float64
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			x = float64From(rng) * w
			y = float64From(rng) * h
			if math.Abs(x-avoidX) >= SafeDistance && math.Abs(y-avoidY) >= SafeDistance {
				break
			}
		}
		wave = append(wave, NewAsteroid(x, y, AsteroidLarge, level, rng))
	}
	return wave
}
