// Package object holds the playfield entities: the ship, asteroids, projectiles
// and particles, all sharing one kinematic update contract.
package object

import (
	"math/rand"
	"time"

	"github.com/tomz197/bugzapper/internal/draw"
)

// UpdateContext provides all the information an entity needs to advance.
type UpdateContext struct {
	Delta  time.Duration
	Screen Screen
}

// DrawContext provides drawing resources for entities.
type DrawContext struct {
	Canvas *draw.Canvas
}

// Entity is a drawable, movable playfield object. Entities whose IsActive
// returns false are removed at the end of the frame.
type Entity interface {
	// Advance integrates the entity's motion by ctx.Delta.
	Advance(ctx UpdateContext)

	// Draw renders the entity onto the canvas.
	Draw(ctx DrawContext) error

	// IsActive reports whether the entity should stay in play.
	IsActive() bool
}

// Collider is an entity with a circular collision shape.
type Collider interface {
	Entity
	GetPosition() (float64, float64)
	GetRadius() float64
}

// Spawner accepts entities created while another entity is being processed.
type Spawner interface {
	Spawn(e Entity)
}

// Releasable is implemented by pooled entities that can be returned to a pool.
type Releasable interface {
	Release()
}

// ReleaseObject releases an entity back to its pool if it implements Releasable.
func ReleaseObject(e Entity) {
	if r, ok := e.(Releasable); ok {
		r.Release()
	}
}

// Screen is the playfield size in logical units.
type Screen struct {
	Width   int
	Height  int
	CenterX int
	CenterY int
}

// NewScreen returns a playfield of the given size.
func NewScreen(width, height int) Screen {
	return Screen{
		Width:   width,
		Height:  height,
		CenterX: width / 2,
		CenterY: height / 2,
	}
}

// Wrap applies toroidal wrapping. An entity must travel margin units past an
// edge before it reappears margin units outside the opposite edge, so a margin
// equal to the entity's radius lets it leave the screen fully first.
func (s Screen) Wrap(x, y *float64, margin float64) {
	w := float64(s.Width)
	h := float64(s.Height)

	if *x < -margin {
		*x = w + margin
	} else if *x > w+margin {
		*x = -margin
	}
	if *y < -margin {
		*y = h + margin
	} else if *y > h+margin {
		*y = -margin
	}
}

// Contains reports whether a point lies on the playfield, edges included.
func (s Screen) Contains(x, y float64) bool {
	return x >= 0 && x <= float64(s.Width) && y >= 0 && y <= float64(s.Height)
}

// float64From draws from rng, or from the global source when rng is nil.
func float64From(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
