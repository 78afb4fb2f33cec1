package object

import (
	"math"

	"github.com/tomz197/bugzapper/internal/draw"
)

// ProjectileSpeed is the speed of projectiles.
const ProjectileSpeed = 400.0

// ProjectileLifetime is how long projectiles last before disappearing, in seconds.
const ProjectileLifetime = 2.0

// ProjectileRadius is the collision radius of a projectile.
const ProjectileRadius = 2.0

// Projectile is a shot fired by the ship.
type Projectile struct {
	X, Y      float64 // Position
	VX, VY    float64 // Velocity
	Angle     float64 // Heading, fixed at creation
	Lifetime  float64 // Seconds remaining before removal
	destroyed bool
}

// NewProjectile creates a projectile at (x, y) traveling in direction angle.
func NewProjectile(x, y, angle float64) *Projectile {
	return &Projectile{
		X:        x,
		Y:        y,
		VX:       math.Cos(angle) * ProjectileSpeed,
		VY:       math.Sin(angle) * ProjectileSpeed,
		Angle:    angle,
		Lifetime: ProjectileLifetime,
	}
}

// Advance moves the projectile in a straight line. It expires when its
// lifetime runs out or it leaves the playfield; projectiles do not wrap.
func (p *Projectile) Advance(ctx UpdateContext) {
	dt := ctx.Delta.Seconds()

	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Lifetime -= dt

	if p.Lifetime <= 0 || !ctx.Screen.Contains(p.X, p.Y) {
		p.destroyed = true
	}
}

// Draw renders the projectile as a small disc.
func (p *Projectile) Draw(ctx DrawContext) error {
	ctx.Canvas.FillCircle(p.X, p.Y, ProjectileRadius, draw.InkBullet)
	return nil
}

// MarkDestroyed marks the projectile for removal.
func (p *Projectile) MarkDestroyed() {
	p.destroyed = true
}

// IsActive reports whether the projectile is still in flight.
func (p *Projectile) IsActive() bool {
	return !p.destroyed && p.Lifetime > 0
}

// GetPosition returns the projectile's position.
func (p *Projectile) GetPosition() (float64, float64) {
	return p.X, p.Y
}

// GetRadius returns the projectile's collision radius.
func (p *Projectile) GetRadius() float64 {
	return ProjectileRadius
}
