package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/bugzapper/internal/draw"
)

// AsteroidSize represents the size category of an asteroid.
type AsteroidSize int

const (
	AsteroidSmall  AsteroidSize = 1
	AsteroidMedium AsteroidSize = 2
	AsteroidLarge  AsteroidSize = 3
)

// Size properties for each asteroid size.
var asteroidRadii = map[AsteroidSize]float64{
	AsteroidSmall:  15,
	AsteroidMedium: 25,
	AsteroidLarge:  40,
}

// String returns the size name.
func (s AsteroidSize) String() string {
	switch s {
	case AsteroidLarge:
		return "large"
	case AsteroidMedium:
		return "medium"
	case AsteroidSmall:
		return "small"
	default:
		return "unknown"
	}
}

// Radius returns the collision radius for the size.
func (s AsteroidSize) Radius() float64 {
	return asteroidRadii[s]
}

// Smaller returns the size produced by splitting, or false for small asteroids.
func (s AsteroidSize) Smaller() (AsteroidSize, bool) {
	if s <= AsteroidSmall {
		return 0, false
	}
	return s - 1, true
}

// Speed range before the level multiplier.
const (
	asteroidMinSpeed   = 50.0
	asteroidSpeedRange = 100.0
	asteroidVertices   = 8
)

// SpeedMultiplier is the level scaling applied to new asteroids: +30% per level.
func SpeedMultiplier(level int) float64 {
	return 1 + float64(level-1)*0.3
}

// Asteroid is a drifting, destructible obstacle.
type Asteroid struct {
	X, Y          float64      // Position (center)
	VX, VY        float64      // Velocity
	Angle         float64      // Current rotation angle
	RotationSpeed float64      // Spin in radians/sec
	Size          AsteroidSize // Size category
	Radius        float64      // Collision/draw radius
	Level         int          // Difficulty tier the asteroid was created at
	Vertices      []draw.Point // Irregular outline relative to center
	Destroyed     bool
}

// NewAsteroid creates an asteroid at (x, y) heading in a random direction.
// Its speed is drawn from the base range and scaled for level, and stays
// fixed for the asteroid's lifetime.
func NewAsteroid(x, y float64, size AsteroidSize, level int, rng *rand.Rand) *Asteroid {
	radius := size.Radius()
	angle := float64From(rng) * 2 * math.Pi
	speed := (asteroidMinSpeed + float64From(rng)*asteroidSpeedRange) * SpeedMultiplier(level)

	a := &Asteroid{
		X:             x,
		Y:             y,
		VX:            math.Cos(angle) * speed,
		VY:            math.Sin(angle) * speed,
		Angle:         angle,
		RotationSpeed: (float64From(rng) - 0.5) * 2,
		Size:          size,
		Radius:        radius,
		Level:         level,
		Vertices:      make([]draw.Point, asteroidVertices),
	}

	for i := range a.Vertices {
		vertAngle := float64(i) / asteroidVertices * 2 * math.Pi
		variance := 0.3 + float64From(rng)*0.4
		a.Vertices[i] = draw.Point{
			X: math.Cos(vertAngle) * radius * variance,
			Y: math.Sin(vertAngle) * radius * variance,
		}
	}
	return a
}

// Split returns the fragments left by destroying the asteroid: two of the next
// smaller size at its position, created at the given level, or none for a
// small asteroid. The fragments do not inherit the parent's velocity.
func (a *Asteroid) Split(level int, rng *rand.Rand) []*Asteroid {
	size, ok := a.Size.Smaller()
	if !ok {
		return nil
	}
	return []*Asteroid{
		NewAsteroid(a.X, a.Y, size, level, rng),
		NewAsteroid(a.X, a.Y, size, level, rng),
	}
}

// Speed returns the magnitude of the asteroid's velocity.
func (a *Asteroid) Speed() float64 {
	return math.Hypot(a.VX, a.VY)
}

// Advance moves and spins the asteroid, wrapping once it has fully left the screen.
func (a *Asteroid) Advance(ctx UpdateContext) {
	dt := ctx.Delta.Seconds()

	a.X += a.VX * dt
	a.Y += a.VY * dt
	a.Angle += a.RotationSpeed * dt

	ctx.Screen.Wrap(&a.X, &a.Y, a.Radius)
}

// Draw renders the asteroid as an irregular polygon outline.
func (a *Asteroid) Draw(ctx DrawContext) error {
	points := ctx.Canvas.BorrowPoints(len(a.Vertices))
	sin, cos := math.Sincos(a.Angle)
	for i, v := range a.Vertices {
		points[i] = draw.Point{
			X: a.X + v.X*cos - v.Y*sin,
			Y: a.Y + v.X*sin + v.Y*cos,
		}
	}
	ctx.Canvas.DrawPolygon(points, false, draw.InkAsteroid)
	return nil
}

// MarkDestroyed marks the asteroid for removal.
func (a *Asteroid) MarkDestroyed() {
	a.Destroyed = true
}

// IsActive reports whether the asteroid is still in play.
func (a *Asteroid) IsActive() bool {
	return !a.Destroyed
}

// GetPosition returns the asteroid's center position.
func (a *Asteroid) GetPosition() (float64, float64) {
	return a.X, a.Y
}

// GetRadius returns the asteroid's collision radius.
func (a *Asteroid) GetRadius() float64 {
	return a.Radius
}
