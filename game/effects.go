package game

import (
	"math"
	"math/rand"
	"time"
)

// FloatingText is a short-lived score indicator that rises and fades
type FloatingText struct {
	ID        string
	X         float64
	Y         float64
	Text      string
	Color     string
	Opacity   float64
	CreatedAt time.Time
}

// ExplosionParticle is one fragment of an exploded body segment
type ExplosionParticle struct {
	ID        string
	X         float64
	Y         float64
	VX        float64
	VY        float64
	Radius    float64
	Color     string
	Opacity   float64
	CreatedAt time.Time
}

// burst returns count particles radiating from p in evenly spaced directions
// with a little jitter and random speed and size.
func burst(ids *idGen, rng *rand.Rand, p Point, count int, color string, now time.Time) []ExplosionParticle {
	out := make([]ExplosionParticle, 0, count)
	for i := 0; i < count; i++ {
		angle := 2*math.Pi*float64(i)/float64(count) + RandomRange(rng, -0.3, 0.3)
		speed := RandomRange(rng, 2, 5)
		out = append(out, ExplosionParticle{
			ID:        ids.next("p"),
			X:         p.X,
			Y:         p.Y,
			VX:        math.Cos(angle) * speed,
			VY:        math.Sin(angle) * speed,
			Radius:    RandomRange(rng, 3, 6),
			Color:     color,
			Opacity:   1,
			CreatedAt: now,
		})
	}
	return out
}

// ageTexts drops expired texts and advances the rest in place
func ageTexts(texts []FloatingText, now time.Time, duration time.Duration, rise float64) []FloatingText {
	kept := texts[:0]
	for _, ft := range texts {
		age := now.Sub(ft.CreatedAt)
		if age >= duration {
			continue
		}
		ft.Opacity = 1 - float64(age)/float64(duration)
		ft.Y -= rise
		kept = append(kept, ft)
	}
	return kept
}

// ageParticles drops expired particles, moves the rest and damps their velocity
func ageParticles(particles []ExplosionParticle, now time.Time, duration time.Duration, damping float64) []ExplosionParticle {
	kept := particles[:0]
	for _, p := range particles {
		age := now.Sub(p.CreatedAt)
		if age >= duration {
			continue
		}
		p.X += p.VX
		p.Y += p.VY
		p.VX *= damping
		p.VY *= damping
		p.Opacity = 1 - float64(age)/float64(duration)
		kept = append(kept, p)
	}
	return kept
}
