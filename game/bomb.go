package game

import (
	"math"
	"math/rand"
)

// Bomb removes body segments from the neck when the head touches it
type Bomb struct {
	ID         string
	X          float64
	Y          float64
	Radius     float64
	PulsePhase float64 // visual only, in [0, 2π)
}

// NewBomb creates a bomb at a random position inside the bomb margin
func NewBomb(cfg *Config, rng *rand.Rand, id string) Bomb {
	return Bomb{
		ID:         id,
		X:          RandomRange(rng, cfg.BombMargin, cfg.WorldWidth-cfg.BombMargin),
		Y:          RandomRange(rng, cfg.BombMargin, cfg.WorldHeight-cfg.BombMargin),
		Radius:     cfg.BombRadius,
		PulsePhase: rng.Float64() * 2 * math.Pi,
	}
}

// Pulse advances the pulse phase by step, wrapping at 2π
func (b *Bomb) Pulse(step float64) {
	b.PulsePhase += step
	if b.PulsePhase > 2*math.Pi {
		b.PulsePhase -= 2 * math.Pi
	}
}
