package game

import (
	"math"
	"math/rand"
)

// Input is one decision of an input source: where to steer and whether to boost
type Input struct {
	TargetX float64
	TargetY float64
	Boost   bool
}

// Autopilot tracks the roaming state of a rule-based driver
type Autopilot struct {
	rng         *rand.Rand
	wanderTicks int     // ticks remaining before picking a new wander direction
	wanderAngle float64 // heading while roaming
	seekTicks   int     // ticks spent chasing the same food, reset on eating
	lastScore   int

	BorderBuffer float64 // steer to the center when this close to a wall
	DangerRadius float64 // bombs closer than this in the forward arc trigger avoidance
	SeekRadius   float64 // food within this range is targeted
	LookAhead    float64 // distance of the target point placed along the chosen heading
}

// NewAutopilot creates a driver with the default radii
func NewAutopilot(rng *rand.Rand) *Autopilot {
	return &Autopilot{
		rng:          rng,
		BorderBuffer: 250,
		DangerRadius: 90,
		SeekRadius:   400,
		LookAhead:    200,
	}
}

// Decide picks the input for the next step from a snapshot, in priority order:
// walls, bombs ahead, nearest food, roaming.
func (a *Autopilot) Decide(st *State) Input {
	snake := st.Snake
	if snake == nil || len(snake.Segments) == 0 {
		return Input{}
	}
	head := snake.Head()
	heading := snake.Angle

	// --- Priority 1: Wall avoidance ---
	if head.X < a.BorderBuffer || head.X > st.WorldWidth-a.BorderBuffer ||
		head.Y < a.BorderBuffer || head.Y > st.WorldHeight-a.BorderBuffer {
		a.wanderTicks = 0
		return Input{TargetX: st.WorldWidth / 2, TargetY: st.WorldHeight / 2}
	}

	// --- Priority 2: Bomb avoidance within ±45° of the heading ---
	for _, b := range st.Bombs {
		dx := b.X - head.X
		dy := b.Y - head.Y
		if math.Sqrt(dx*dx+dy*dy) > a.DangerRadius+b.Radius {
			continue
		}
		diff := AngleDiff(heading, math.Atan2(dy, dx))
		if math.Abs(diff) < math.Pi/4 {
			turn := heading - math.Pi/2
			if diff < 0 {
				turn = heading + math.Pi/2
			}
			a.wanderTicks = 0
			return a.toward(head.Point, turn)
		}
	}

	// --- Priority 3: Seek nearby food ---
	if snake.Score > a.lastScore {
		a.seekTicks = 0
	}
	a.lastScore = snake.Score

	if a.seekTicks < 60 {
		bestDist := math.MaxFloat64
		var best *Food
		for i := range st.Foods {
			f := &st.Foods[i]
			dx := f.X - head.X
			dy := f.Y - head.Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d > a.SeekRadius {
				continue
			}
			// Food behind us is harder to reach
			if math.Abs(AngleDiff(heading, math.Atan2(dy, dx))) > math.Pi/2 {
				d *= 2
			}
			if d < bestDist {
				bestDist = d
				best = f
			}
		}
		if best != nil {
			a.seekTicks++
			return Input{TargetX: best.X, TargetY: best.Y}
		}
	} else {
		// Break out of an orbit around food we cannot turn tightly enough to reach
		a.seekTicks = 0
		a.wanderAngle = heading + math.Pi/2 + a.rng.Float64()*math.Pi
		a.wanderTicks = 30 + a.rng.Intn(40)
		return a.toward(head.Point, a.wanderAngle)
	}

	// --- Priority 4: Roam ---
	if a.wanderTicks <= 0 {
		a.wanderAngle = a.rng.Float64() * 2 * math.Pi
		a.wanderTicks = 60 + a.rng.Intn(61)
	}
	a.wanderTicks--
	return a.toward(head.Point, a.wanderAngle)
}

func (a *Autopilot) toward(from Point, angle float64) Input {
	return Input{
		TargetX: from.X + math.Cos(angle)*a.LookAhead,
		TargetY: from.Y + math.Sin(angle)*a.LookAhead,
	}
}
