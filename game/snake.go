package game

import (
	"errors"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// ErrNoSegments is returned when a body operation runs on a snake without segments
var ErrNoSegments = errors.New("snake has no segments")

// Segment is one circular link of the body
type Segment struct {
	Point
	Radius float64
}

// Snake is the player's serpent
type Snake struct {
	ID           string
	Name         string
	Segments     []Segment // index 0 = head
	Angle        float64   // radians in (-π, π]
	TargetAngle  float64
	Speed        float64
	BaseSpeed    float64
	Boosting     bool
	Color        string
	Score        int
	Alive        bool
	ProfileImage string
}

// NewSnake creates a snake with its head at (x, y) and the body trailing to the left,
// heading along +X.
func NewSnake(cfg *Config, rng *rand.Rand, name string, x, y float64) *Snake {
	segments := make([]Segment, cfg.SnakeInitialLength)
	for i := range segments {
		segments[i] = Segment{
			Point:  Point{X: x - float64(i)*cfg.SnakeSegmentDistance, Y: y},
			Radius: cfg.SnakeSegmentRadius,
		}
	}

	return &Snake{
		ID:        uuid.New().String(),
		Name:      name,
		Segments:  segments,
		Speed:     cfg.SnakeBaseSpeed,
		BaseSpeed: cfg.SnakeBaseSpeed,
		Color:     RandomChoice(rng, SnakeColors),
		Alive:     true,
	}
}

// Head returns the head segment of the snake
func (s *Snake) Head() Segment {
	return s.Segments[0]
}

// Len returns the number of body segments including the head
func (s *Snake) Len() int {
	return len(s.Segments)
}

// SetTarget aims the snake at a world position
func (s *Snake) SetTarget(x, y float64) {
	if len(s.Segments) == 0 {
		return
	}
	head := s.Segments[0]
	s.TargetAngle = math.Atan2(y-head.Y, x-head.X)
}

// Update advances the snake one step: turn, boost cost, move, then chain follow.
// A head that would come within its radius of a world edge kills the snake in place.
func (s *Snake) Update(cfg *Config, rng *rand.Rand) {
	if !s.Alive || len(s.Segments) == 0 {
		return
	}

	s.Angle = NormalizeAngle(s.Angle + AngleDiff(s.Angle, s.TargetAngle)*cfg.SnakeTurnSpeed)

	if s.Boosting && len(s.Segments) > cfg.SnakeInitialLength {
		s.Speed = cfg.SnakeBoostSpeed
		if rng.Float64() < cfg.BoostCost*0.1 {
			// Length is above the floor here, so Shrink cannot fail or no-op
			_, _ = s.Shrink(1, cfg.SnakeInitialLength)
		}
	} else {
		s.Speed = s.BaseSpeed
		s.Boosting = false
	}

	head := s.Segments[0]
	newX := head.X + math.Cos(s.Angle)*s.Speed
	newY := head.Y + math.Sin(s.Angle)*s.Speed

	margin := head.Radius
	if newX < margin || newX > cfg.WorldWidth-margin ||
		newY < margin || newY > cfg.WorldHeight-margin {
		s.Alive = false
		return
	}

	// Tail first, so every segment chases where its predecessor was last step
	for i := len(s.Segments) - 1; i > 0; i-- {
		cur := &s.Segments[i]
		target := s.Segments[i-1]
		dx := target.X - cur.X
		dy := target.Y - cur.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > cfg.SnakeSegmentDistance {
			ratio := cfg.SnakeSegmentDistance / dist
			cur.X = target.X - dx*ratio
			cur.Y = target.Y - dy*ratio
		}
	}

	s.Segments[0] = Segment{Point: Point{X: newX, Y: newY}, Radius: head.Radius}
}

// Grow appends amount segments past the tail along the trailing direction and adds
// the same amount to the score.
func (s *Snake) Grow(amount int, spacing float64) error {
	if len(s.Segments) == 0 {
		return ErrNoSegments
	}
	if amount <= 0 {
		return nil
	}

	tail := s.Segments[len(s.Segments)-1]
	prev := tail
	if len(s.Segments) > 1 {
		prev = s.Segments[len(s.Segments)-2]
	}
	var ux, uy float64
	dx := tail.X - prev.X
	dy := tail.Y - prev.Y
	if dist := math.Sqrt(dx*dx + dy*dy); dist > 0 {
		ux, uy = dx/dist, dy/dist
	}

	for i := 0; i < amount; i++ {
		tail = Segment{
			Point:  Point{X: tail.X + ux*spacing, Y: tail.Y + uy*spacing},
			Radius: tail.Radius,
		}
		s.Segments = append(s.Segments, tail)
	}
	s.Score += amount
	return nil
}

// Shrink drops up to amount tail segments without going below minLength.
// Returns how many were removed.
func (s *Snake) Shrink(amount, minLength int) (int, error) {
	if len(s.Segments) == 0 {
		return 0, ErrNoSegments
	}
	n := min(amount, len(s.Segments)-minLength)
	if n <= 0 {
		return 0, nil
	}
	s.Segments = s.Segments[:len(s.Segments)-n]
	s.decScore(n)
	return n, nil
}

// RemoveAfterHead cuts up to amount segments starting right behind the head,
// never below minLength, and returns the removed segments.
func (s *Snake) RemoveAfterHead(amount, minLength int) ([]Segment, error) {
	if len(s.Segments) == 0 {
		return nil, ErrNoSegments
	}
	n := min(amount, len(s.Segments)-minLength)
	if n <= 0 {
		return nil, nil
	}
	removed := make([]Segment, n)
	copy(removed, s.Segments[1:1+n])
	s.Segments = append(s.Segments[:1], s.Segments[1+n:]...)
	s.decScore(n)
	return removed, nil
}

// SelfCollides reports whether the head overlaps the body past the neck
func (s *Snake) SelfCollides(cfg *Config) bool {
	if len(s.Segments) < cfg.SelfCollisionMinLength {
		return false
	}
	head := s.Segments[0]
	for i := cfg.SelfCollisionSkip; i < len(s.Segments); i++ {
		seg := s.Segments[i]
		if Distance(head.Point, seg.Point) < head.Radius+seg.Radius*cfg.SelfCollisionFactor {
			return true
		}
	}
	return false
}

func (s *Snake) decScore(n int) {
	s.Score -= n
	if s.Score < 0 {
		s.Score = 0
	}
}

// clone returns a deep copy
func (s *Snake) clone() *Snake {
	if s == nil {
		return nil
	}
	out := *s
	out.Segments = make([]Segment, len(s.Segments))
	copy(out.Segments, s.Segments)
	return &out
}
