package object

import (
	"math"
	"time"

	"github.com/tomz197/bugzapper/internal/draw"
)

// ThrustQuantum is the fixed time step applied by Thrust and Rotate. Input is
// sampled once per frame, so each call assumes a ~60fps frame instead of the
// true frame delta.
const ThrustQuantum = 0.016

// Ship is the player-controlled spaceship.
type Ship struct {
	X, Y   float64 // Position (center of ship)
	VX, VY float64 // Velocity (momentum)
	Angle  float64 // Facing in radians (0 = pointing right)

	Radius        float64       // Collision radius
	ThrustPower   float64       // Acceleration along the facing direction
	RotationSpeed float64       // Radians per second
	Friction      float64       // Velocity factor applied once per frame
	MaxSpeed      float64       // Maximum velocity magnitude
	Cooldown      time.Duration // Minimum time between shots

	Thrusting bool // Engine glow for the current frame
	lastShot  time.Time
}

// NewShip creates a ship at rest at the given position, facing right.
func NewShip(x, y float64) *Ship {
	return &Ship{
		X:             x,
		Y:             y,
		Radius:        10,
		ThrustPower:   200,
		RotationSpeed: 5,
		Friction:      0.99,
		MaxSpeed:      300,
		Cooldown:      200 * time.Millisecond,
	}
}

// Thrust adds an impulse along the current facing direction.
func (s *Ship) Thrust() {
	s.VX += math.Cos(s.Angle) * s.ThrustPower * ThrustQuantum
	s.VY += math.Sin(s.Angle) * s.ThrustPower * ThrustQuantum
	s.Thrusting = true
}

// Rotate turns the ship; direction is -1 (counter-clockwise on screen) or +1.
func (s *Ship) Rotate(direction float64) {
	s.Angle += direction * s.RotationSpeed * ThrustQuantum
}

// Fire returns a projectile if more than Cooldown has passed since the last
// successful shot, and nil otherwise. A non-nil result records now as the
// last shot time.
func (s *Ship) Fire(now time.Time) *Projectile {
	if !s.lastShot.IsZero() && now.Sub(s.lastShot) <= s.Cooldown {
		return nil
	}
	s.lastShot = now
	return NewProjectile(s.X, s.Y, s.Angle)
}

// Respawn puts the ship back at (x, y), at rest and facing right.
func (s *Ship) Respawn(x, y float64) {
	s.X = x
	s.Y = y
	s.VX = 0
	s.VY = 0
	s.Angle = 0
}

// Advance applies friction and the speed cap, then moves and wraps the ship.
// Friction is a per-frame factor and does not scale with the frame delta.
func (s *Ship) Advance(ctx UpdateContext) {
	s.VX *= s.Friction
	s.VY *= s.Friction

	speed := math.Hypot(s.VX, s.VY)
	if speed > s.MaxSpeed {
		scale := s.MaxSpeed / speed
		s.VX *= scale
		s.VY *= scale
	}

	dt := ctx.Delta.Seconds()
	s.X += s.VX * dt
	s.Y += s.VY * dt

	ctx.Screen.Wrap(&s.X, &s.Y, 0)
}

// Speed returns the magnitude of the ship's velocity.
func (s *Ship) Speed() float64 {
	return math.Hypot(s.VX, s.VY)
}

// IsActive is always true; the ship is respawned, never removed.
func (s *Ship) IsActive() bool {
	return true
}

// GetPosition returns the ship's center position.
func (s *Ship) GetPosition() (float64, float64) {
	return s.X, s.Y
}

// GetRadius returns the ship's collision radius.
func (s *Ship) GetRadius() float64 {
	return s.Radius
}

// Hull outline in ship-local coordinates, nose along +X.
var (
	shipHull = []draw.Point{{X: 15, Y: 0}, {X: -10, Y: -8}, {X: -5, Y: 0}, {X: -10, Y: 8}}
	shipGlow = []draw.Point{{X: -10, Y: -3}, {X: -18, Y: 0}, {X: -10, Y: 3}}
)

// Draw renders the hull, plus the engine glow while thrusting.
func (s *Ship) Draw(ctx DrawContext) error {
	ctx.Canvas.DrawPolygon(s.transform(ctx.Canvas, shipHull), true, draw.InkShip)
	if s.Thrusting {
		ctx.Canvas.DrawPolygon(s.transform(ctx.Canvas, shipGlow), true, draw.InkThrust)
	}
	return nil
}

// transform rotates local points by the ship's angle and moves them to its position.
func (s *Ship) transform(c *draw.Canvas, local []draw.Point) []draw.Point {
	sin, cos := math.Sincos(s.Angle)
	points := c.BorrowPoints(len(local))
	for i, p := range local {
		points[i] = draw.Point{
			X: s.X + p.X*cos - p.Y*sin,
			Y: s.Y + p.X*sin + p.Y*cos,
		}
	}
	return points
}
