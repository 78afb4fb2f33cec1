package loop

// Game configuration constants.
// All tunable game parameters are centralized here for easy adjustment.

// Scoring
const (
	ScoreLargeAsteroid  = 20
	ScoreMediumAsteroid = 50
	ScoreSmallAsteroid  = 100
)

// Explosion particle counts per destroyed asteroid size.
const (
	DebrisLarge  = 15
	DebrisMedium = 10
	DebrisSmall  = 5
)

// Player
const (
	InitialLives = 1
	InitialLevel = 1
)

// Spawning: a wave holds waveBase + level large asteroids.
const waveBase = 4

// Playfield in logical units. Rendering scales to the terminal size.
const (
	PlayfieldWidth  = 800
	PlayfieldHeight = 600
)

// gridCellSize must cover the widest interaction, a large asteroid (40)
// against a projectile (2) or the ship (10).
const gridCellSize = 50

// Background star field.
const (
	starCount = 100
	starStepX = 37
	starStepY = 73
)
