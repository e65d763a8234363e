package game

import (
	"math"
	"math/rand"
	"testing"
)

func TestNewFoodWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 2000; i++ {
		f := NewFood(&cfg, rng, "f", false)
		if f.X < cfg.FoodMargin || f.X > cfg.WorldWidth-cfg.FoodMargin ||
			f.Y < cfg.FoodMargin || f.Y > cfg.WorldHeight-cfg.FoodMargin {
			t.Fatalf("food outside spawn margin: (%.1f, %.1f)", f.X, f.Y)
		}
		if f.Radius < cfg.FoodMinRadius || f.Radius >= cfg.FoodMaxRadius {
			t.Fatalf("radius %.3f out of range", f.Radius)
		}
		if f.Value != int(math.Ceil(f.Radius/2)) || f.Value < 1 {
			t.Fatalf("value %d does not match radius %.3f", f.Value, f.Radius)
		}
		if f.IsTimeItem() {
			t.Fatalf("time item spawned while not allowed")
		}
	}
}

func TestNewFoodTimeItemChance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeItemChance = 1
	f := NewFood(&cfg, rand.New(rand.NewSource(5)), "f", true)
	if !f.IsTimeItem() {
		t.Errorf("expected a time item with chance 1")
	}
}

func TestNewBombWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 2000; i++ {
		b := NewBomb(&cfg, rng, "b")
		if b.X < cfg.BombMargin || b.X > cfg.WorldWidth-cfg.BombMargin ||
			b.Y < cfg.BombMargin || b.Y > cfg.WorldHeight-cfg.BombMargin {
			t.Fatalf("bomb outside spawn margin: (%.1f, %.1f)", b.X, b.Y)
		}
		if b.Radius != cfg.BombRadius {
			t.Fatalf("unexpected radius %.1f", b.Radius)
		}
	}
}

func TestBombPulseWraps(t *testing.T) {
	b := Bomb{PulsePhase: 2*math.Pi - 0.05}
	b.Pulse(0.1)
	if math.Abs(b.PulsePhase-0.05) > 1e-9 {
		t.Errorf("expected wrap to 0.05, got %.4f", b.PulsePhase)
	}
}

func TestBurstSpreadsEvenly(t *testing.T) {
	var ids idGen
	rng := rand.New(rand.NewSource(9))
	parts := burst(&ids, rng, Point{X: 50, Y: 60}, 8, "#fff", testEpoch)

	if len(parts) != 8 {
		t.Fatalf("expected 8 particles, got %d", len(parts))
	}
	seen := map[string]bool{}
	for i, p := range parts {
		if seen[p.ID] {
			t.Errorf("duplicate particle id %s", p.ID)
		}
		seen[p.ID] = true

		speed := math.Hypot(p.VX, p.VY)
		if speed < 2 || speed >= 5 {
			t.Errorf("particle %d speed %.3f out of [2,5)", i, speed)
		}
		if p.Radius < 3 || p.Radius >= 6 {
			t.Errorf("particle %d radius %.3f out of [3,6)", i, p.Radius)
		}
		base := 2 * math.Pi * float64(i) / 8
		if d := math.Abs(AngleDiff(base, math.Atan2(p.VY, p.VX))); d > 0.3+1e-9 {
			t.Errorf("particle %d direction off by %.3f", i, d)
		}
		if p.X != 50 || p.Y != 60 || p.Opacity != 1 {
			t.Errorf("particle %d should start at the burst origin", i)
		}
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	cfg := DefaultConfig()
	st := &State{
		Snake: newTestSnake(t, &cfg),
		Foods: []Food{NewFoodAt("f1", 1, 2, 4, "#fff")},
		Bombs: []Bomb{{ID: "b1"}},
	}
	cp := st.Clone()
	cp.Snake.Segments[0].X = -5
	cp.Foods[0].X = -5
	cp.Bombs[0].ID = "changed"

	if st.Snake.Segments[0].X == -5 || st.Foods[0].X == -5 || st.Bombs[0].ID == "changed" {
		t.Errorf("clone shares memory with the original")
	}
	if cp.FloatingTexts != nil {
		t.Errorf("nil slices should stay nil")
	}
}

func TestStatePhase(t *testing.T) {
	tests := []struct {
		st   State
		want Phase
	}{
		{State{}, PhaseNotStarted},
		{State{Started: true}, PhaseRunning},
		{State{Started: true, Paused: true}, PhasePaused},
		{State{Started: true, GameOver: true}, PhaseGameOver},
	}
	for _, tt := range tests {
		if got := tt.st.Phase(); got != tt.want {
			t.Errorf("Phase(%+v) = %s, want %s", tt.st, got, tt.want)
		}
	}
}
