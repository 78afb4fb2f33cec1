package object

import (
	"math/rand"
	"sync"

	"github.com/tomz197/bugzapper/internal/draw"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// ParticleDamping is the velocity factor applied to particles once per frame.
const ParticleDamping = 0.98

// fadeCutoff hides particles in the last quarter of their life.
const fadeCutoff = 0.25

// Particle is a short-lived explosion fragment. It is purely visual and never collides.
type Particle struct {
	X, Y        float64 // Position
	VX, VY      float64 // Velocity
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64 // Initial lifetime (for fade calculation)
}

// NewParticle takes a particle from the pool and initialises it.
func NewParticle(x, y, vx, vy, lifetime float64) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnExplosion scatters count particles from (x, y). Each gets a velocity
// with components in [-100, 100) and a lifetime between 0.5 and 1 second.
func SpawnExplosion(x, y float64, count int, rng *rand.Rand, spawner Spawner) {
	if spawner == nil {
		return
	}
	for i := 0; i < count; i++ {
		vx := (float64From(rng) - 0.5) * 200
		vy := (float64From(rng) - 0.5) * 200
		life := 0.5 + float64From(rng)*0.5
		spawner.Spawn(NewParticle(x, y, vx, vy, life))
	}
}

// Advance moves the particle, burns its lifetime and damps its velocity.
// Damping is per frame and does not scale with the frame delta.
func (p *Particle) Advance(ctx UpdateContext) {
	dt := ctx.Delta.Seconds()

	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Lifetime -= dt
	p.VX *= ParticleDamping
	p.VY *= ParticleDamping
}

// Alpha returns the remaining fraction of the particle's life.
func (p *Particle) Alpha() float64 {
	if p.MaxLifetime <= 0 {
		return 0
	}
	return p.Lifetime / p.MaxLifetime
}

// Draw renders the particle as a pixel on the canvas while it is visible.
func (p *Particle) Draw(ctx DrawContext) error {
	if p.Alpha() < fadeCutoff {
		return nil
	}
	ctx.Canvas.SetFloat(p.X, p.Y, draw.InkParticle)
	return nil
}

// IsActive reports whether the particle still has life left.
func (p *Particle) IsActive() bool {
	return p.Lifetime > 0
}
