package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func newTestSnake(t *testing.T, cfg *Config) *Snake {
	t.Helper()
	return NewSnake(cfg, rand.New(rand.NewSource(1)), "Tester", 1500, 1500)
}

func TestNewSnakeLayout(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)

	if s.Len() != cfg.SnakeInitialLength {
		t.Fatalf("expected %d segments, got %d", cfg.SnakeInitialLength, s.Len())
	}
	if s.ID == "" || !s.Alive || s.Score != 0 || s.Angle != 0 {
		t.Errorf("unexpected initial snake: %+v", s)
	}
	for i, seg := range s.Segments {
		want := Point{X: 1500 - float64(i)*cfg.SnakeSegmentDistance, Y: 1500}
		if seg.Point != want || seg.Radius != cfg.SnakeSegmentRadius {
			t.Errorf("segment %d: got %+v, want %+v", i, seg, want)
		}
	}
}

func TestUpdateTurnIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	s.TargetAngle = math.Pi / 2

	s.Update(&cfg, rand.New(rand.NewSource(1)))

	if want := cfg.SnakeTurnSpeed * math.Pi / 2; math.Abs(s.Angle-want) > 1e-12 {
		t.Errorf("expected angle %.5f, got %.5f", want, s.Angle)
	}
}

func TestUpdateTurnsTheShortWayAcrossPi(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	s.Angle = math.Pi - 0.05
	s.TargetAngle = -math.Pi + 0.05

	for i := 0; i < 100; i++ {
		s.Update(&cfg, rand.New(rand.NewSource(1)))
		if s.Angle <= -math.Pi || s.Angle > math.Pi {
			t.Fatalf("angle %.5f left (-π, π]", s.Angle)
		}
		// Keep the head away from the walls while turning
		s.Segments[0].X, s.Segments[0].Y = 1500, 1500
	}
	if math.Abs(AngleDiff(s.Angle, s.TargetAngle)) > 1e-3 {
		t.Errorf("expected convergence to target, angle=%.5f", s.Angle)
	}
}

func TestUpdateWallDeathKeepsHead(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	s.Segments[0].X = 2985
	before := append([]Segment(nil), s.Segments...)

	s.Update(&cfg, rand.New(rand.NewSource(1)))

	if s.Alive {
		t.Fatalf("expected death moving past the right wall")
	}
	for i := range before {
		if s.Segments[i] != before[i] {
			t.Errorf("segment %d moved on death", i)
		}
	}
}

func TestUpdateChainFollowsPreviousPositions(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	// Irregular body: some links stretched, some slack
	s.Segments = []Segment{
		{Point: Point{X: 1500, Y: 1500}, Radius: 12},
		{Point: Point{X: 1490, Y: 1503}, Radius: 12},
		{Point: Point{X: 1486, Y: 1503}, Radius: 12},
		{Point: Point{X: 1470, Y: 1520}, Radius: 12},
		{Point: Point{X: 1469, Y: 1527}, Radius: 12},
		{Point: Point{X: 1440, Y: 1540}, Radius: 12},
	}
	s.TargetAngle = 0.7
	pre := append([]Segment(nil), s.Segments...)

	s.Update(&cfg, rand.New(rand.NewSource(1)))

	for i := 1; i < len(pre); i++ {
		gap := Distance(pre[i].Point, pre[i-1].Point)
		got := Distance(s.Segments[i].Point, pre[i-1].Point)
		if gap > cfg.SnakeSegmentDistance {
			if math.Abs(got-cfg.SnakeSegmentDistance) > 1e-9 {
				t.Errorf("segment %d: expected %.1f from predecessor's old position, got %.6f",
					i, cfg.SnakeSegmentDistance, got)
			}
		} else if s.Segments[i] != pre[i] {
			t.Errorf("segment %d within spacing should not move", i)
		}
	}
}

func TestBoostRequiresLength(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	s.Boosting = true

	s.Update(&cfg, rand.New(rand.NewSource(1)))

	if s.Boosting {
		t.Errorf("boost must switch off at minimum length")
	}
	if s.Speed != s.BaseSpeed {
		t.Errorf("expected base speed, got %.2f", s.Speed)
	}
	if s.Len() != cfg.SnakeInitialLength {
		t.Errorf("boost at minimum length must not shrink")
	}
}

func TestBoostCostShrinksTail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoostCost = 10 // chance 1.0 per step
	s := newTestSnake(t, &cfg)
	if err := s.Grow(5, cfg.SnakeSegmentDistance); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	s.Boosting = true

	s.Update(&cfg, rand.New(rand.NewSource(1)))

	if s.Len() != 14 || s.Score != 4 {
		t.Errorf("expected one segment and point lost, len=%d score=%d", s.Len(), s.Score)
	}
	if !s.Boosting || s.Speed != cfg.SnakeBoostSpeed {
		t.Errorf("expected boosting at boost speed")
	}
}

func TestBoostCostStopsAtMinimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoostCost = 10
	s := newTestSnake(t, &cfg)
	if err := s.Grow(2, cfg.SnakeSegmentDistance); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	s.Boosting = true
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5; i++ {
		s.Update(&cfg, rng)
	}

	if s.Len() != cfg.SnakeInitialLength || s.Score != 0 {
		t.Errorf("expected shrink to the floor, len=%d score=%d", s.Len(), s.Score)
	}
	if s.Boosting {
		t.Errorf("boost must switch off once the floor is reached")
	}
}

func TestGrowExtendsTailOnly(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	pre := append([]Segment(nil), s.Segments...)

	if err := s.Grow(5, cfg.SnakeSegmentDistance); err != nil {
		t.Fatalf("Grow: %v", err)
	}

	if s.Len() != 15 || s.Score != 5 {
		t.Fatalf("expected len 15 score 5, got %d %d", s.Len(), s.Score)
	}
	for i := range pre {
		if s.Segments[i] != pre[i] {
			t.Errorf("existing segment %d moved", i)
		}
	}
	for i := len(pre); i < s.Len(); i++ {
		d := Distance(s.Segments[i].Point, s.Segments[i-1].Point)
		if math.Abs(d-cfg.SnakeSegmentDistance) > 1e-9 {
			t.Errorf("new segment %d spaced %.4f", i, d)
		}
		if s.Segments[i].X >= s.Segments[i-1].X {
			t.Errorf("new segment %d should continue the trailing direction", i)
		}
	}
}

func TestGrowSingleSegmentStacks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnakeInitialLength = 1
	s := newTestSnake(t, &cfg)

	if err := s.Grow(2, cfg.SnakeSegmentDistance); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	for i, seg := range s.Segments {
		if seg.Point != (Point{X: 1500, Y: 1500}) {
			t.Errorf("segment %d: expected zero offset without a trailing direction, got %+v", i, seg.Point)
		}
	}
}

func TestBodyOpsWithoutSegments(t *testing.T) {
	s := &Snake{Alive: true}
	if err := s.Grow(1, 8); !errors.Is(err, ErrNoSegments) {
		t.Errorf("Grow: expected ErrNoSegments, got %v", err)
	}
	if _, err := s.Shrink(1, 0); !errors.Is(err, ErrNoSegments) {
		t.Errorf("Shrink: expected ErrNoSegments, got %v", err)
	}
	if _, err := s.RemoveAfterHead(1, 0); !errors.Is(err, ErrNoSegments) {
		t.Errorf("RemoveAfterHead: expected ErrNoSegments, got %v", err)
	}
}

func TestShrinkRespectsMinimum(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSnake(t, &cfg)
	if err := s.Grow(10, cfg.SnakeSegmentDistance); err != nil {
		t.Fatalf("Grow: %v", err)
	}
	s.Score = 4

	n, err := s.Shrink(15, cfg.SnakeInitialLength)
	if err != nil {
		t.Fatalf("Shrink: %v", err)
	}
	if n != 10 || s.Len() != 10 {
		t.Errorf("expected 10 removed down to 10, got removed=%d len=%d", n, s.Len())
	}
	if s.Score != 0 {
		t.Errorf("score must not go negative, got %d", s.Score)
	}
}

func TestRemoveAfterHead(t *testing.T) {
	tests := []struct {
		name      string
		grow      int
		amount    int
		wantCut   int
		wantLen   int
		wantScore int
	}{
		{"full damage", 20, 15, 15, 15, 5},
		{"limited by minimum", 2, 15, 2, 10, 0},
		{"at minimum", 0, 15, 0, 10, 0},
		{"zero damage", 5, 0, 0, 15, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			s := newTestSnake(t, &cfg)
			if err := s.Grow(tt.grow, cfg.SnakeSegmentDistance); err != nil {
				t.Fatalf("Grow: %v", err)
			}
			pre := append([]Segment(nil), s.Segments...)

			removed, err := s.RemoveAfterHead(tt.amount, cfg.SnakeInitialLength)
			if err != nil {
				t.Fatalf("RemoveAfterHead: %v", err)
			}
			if len(removed) != tt.wantCut || s.Len() != tt.wantLen || s.Score != tt.wantScore {
				t.Fatalf("got cut=%d len=%d score=%d", len(removed), s.Len(), s.Score)
			}
			if s.Segments[0] != pre[0] {
				t.Errorf("head must be kept")
			}
			for i, seg := range removed {
				if seg != pre[i+1] {
					t.Errorf("removed[%d] should be old segment %d", i, i+1)
				}
			}
		})
	}
}

func TestSelfCollides(t *testing.T) {
	cfg := DefaultConfig()
	coiled := func(n int, at int) *Snake {
		s := &Snake{Alive: true, Segments: make([]Segment, n)}
		for i := range s.Segments {
			s.Segments[i] = Segment{Point: Point{X: float64(i) * 100, Y: 0}, Radius: 12}
		}
		if at >= 0 {
			s.Segments[at].Point = Point{X: 5, Y: 0}
		}
		return s
	}

	tests := []struct {
		name string
		s    *Snake
		want bool
	}{
		{"short snake ignores overlap", coiled(19, 16), false},
		{"neck overlap is ignored", coiled(25, 14), false},
		{"first checked index", coiled(25, 15), true},
		{"tail overlap", coiled(25, 24), true},
		{"no overlap", coiled(25, -1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.SelfCollides(&cfg); got != tt.want {
				t.Errorf("SelfCollides = %v, want %v", got, tt.want)
			}
		})
	}
}
