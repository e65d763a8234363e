package game

import (
	"math"
	"math/rand"
)

// Point is a 2D world coordinate
type Point struct {
	X float64
	Y float64
}

// Distance returns the euclidean distance between two points
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CircleCollision reports whether two circles overlap (touching is not a hit)
func CircleCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx+dy*dy) < r1+r2
}

// NormalizeAngle wraps an angle into (-π, π]
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDiff returns the shortest signed rotation from one angle to another
func AngleDiff(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// Lerp interpolates linearly between start and end
func Lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

// Clamp limits v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// RandomRange returns a uniform float in [min, max)
func RandomRange(rng *rand.Rand, min, max float64) float64 {
	return rng.Float64()*(max-min) + min
}

// RandomInt returns a uniform integer in [min, max]
func RandomInt(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

// RandomChoice picks a random element of a non-empty slice
func RandomChoice[T any](rng *rand.Rand, s []T) T {
	return s[rng.Intn(len(s))]
}
