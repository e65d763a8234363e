package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrInvalidConfig is returned (wrapped) when a Config fails validation
var ErrInvalidConfig = errors.New("invalid game config")

// Config holds every tuning constant of the simulation.
// Durations are wall-clock; distances are world units; speeds are units per step.
type Config struct {
	// World
	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	// Snake
	SnakeInitialLength int     `json:"snake_initial_length"` // also the shrink floor
	SnakeSegmentRadius float64 `json:"snake_segment_radius"`
	SnakeBaseSpeed     float64 `json:"snake_base_speed"`
	// SnakeBoostSpeed equals SnakeBaseSpeed in the shipped tuning, so boosting
	// only costs length. Pending product review; do not change silently.
	SnakeBoostSpeed      float64 `json:"snake_boost_speed"`
	SnakeTurnSpeed       float64 `json:"snake_turn_speed"` // fraction of the angle gap closed per step
	SnakeSegmentDistance float64 `json:"snake_segment_distance"`
	BoostCost            float64 `json:"boost_cost"` // per-step shrink chance is BoostCost*0.1

	// Self collision
	SelfCollisionMinLength int     `json:"self_collision_min_length"`
	SelfCollisionSkip      int     `json:"self_collision_skip"`
	SelfCollisionFactor    float64 `json:"self_collision_factor"`

	// Food
	FoodCount     int     `json:"food_count"`
	FoodMinRadius float64 `json:"food_min_radius"`
	FoodMaxRadius float64 `json:"food_max_radius"`
	FoodMargin    float64 `json:"food_margin"`

	// Bombs
	BombCount     int     `json:"bomb_count"`
	BombRadius    float64 `json:"bomb_radius"`
	BombDamage    int     `json:"bomb_damage"`
	BombMargin    float64 `json:"bomb_margin"`
	BombPulseStep float64 `json:"bomb_pulse_step"`

	// Time limit
	InitialTime       time.Duration `json:"initial_time"` // <= 0 disables the limit
	TimeItemIncrement time.Duration `json:"time_item_increment"`
	TimeItemChance    float64       `json:"time_item_chance"`
	MaxTimeItems      int           `json:"max_time_items"`

	// Effects
	FloatingTextDuration time.Duration `json:"floating_text_duration"`
	FloatingTextRise     float64       `json:"floating_text_rise"`
	ParticleDuration     time.Duration `json:"particle_duration"`
	ParticleDamping      float64       `json:"particle_damping"`
	ParticlesPerSegment  int           `json:"particles_per_segment"`
	ExplosionInterval    int           `json:"explosion_interval"` // steps between queued explosions

	// Loop
	StepInterval  time.Duration `json:"step_interval"`
	MaxPauseCount int           `json:"max_pause_count"` // 0 means unlimited
	GridCellSize  float64       `json:"grid_cell_size"`
}

// DefaultConfig returns the shipped tuning
func DefaultConfig() Config {
	return Config{
		WorldWidth:  3000,
		WorldHeight: 3000,

		SnakeInitialLength:   10,
		SnakeSegmentRadius:   12,
		SnakeBaseSpeed:       10,
		SnakeBoostSpeed:      10,
		SnakeTurnSpeed:       0.08,
		SnakeSegmentDistance: 8,
		BoostCost:            0.5,

		SelfCollisionMinLength: 20,
		SelfCollisionSkip:      15,
		SelfCollisionFactor:    0.8,

		FoodCount:     500,
		FoodMinRadius: 4,
		FoodMaxRadius: 8,
		FoodMargin:    50,

		BombCount:     40,
		BombRadius:    12,
		BombDamage:    15,
		BombMargin:    100,
		BombPulseStep: 0.1,

		InitialTime:       15 * time.Second,
		TimeItemIncrement: 3 * time.Second,
		TimeItemChance:    0.05,
		MaxTimeItems:      10,

		FloatingTextDuration: 1500 * time.Millisecond,
		FloatingTextRise:     0.5,
		ParticleDuration:     500 * time.Millisecond,
		ParticleDamping:      0.95,
		ParticlesPerSegment:  8,
		ExplosionInterval:    5,

		StepInterval:  16 * time.Millisecond,
		MaxPauseCount: 0,
		GridCellSize:  200,
	}
}

// Validate reports the first field that would break the simulation
func (c Config) Validate() error {
	switch {
	case c.WorldWidth <= 0 || c.WorldHeight <= 0:
		return fmt.Errorf("%w: world size %.0fx%.0f", ErrInvalidConfig, c.WorldWidth, c.WorldHeight)
	case c.SnakeInitialLength < 1:
		return fmt.Errorf("%w: snake_initial_length %d", ErrInvalidConfig, c.SnakeInitialLength)
	case c.SnakeSegmentRadius <= 0:
		return fmt.Errorf("%w: snake_segment_radius %.2f", ErrInvalidConfig, c.SnakeSegmentRadius)
	case c.SnakeSegmentDistance <= 0:
		return fmt.Errorf("%w: snake_segment_distance %.2f", ErrInvalidConfig, c.SnakeSegmentDistance)
	case c.FoodCount < 0 || c.BombCount < 0:
		return fmt.Errorf("%w: negative population (food=%d bombs=%d)", ErrInvalidConfig, c.FoodCount, c.BombCount)
	case c.FoodMinRadius <= 0 || c.FoodMaxRadius < c.FoodMinRadius:
		return fmt.Errorf("%w: food radius range [%.2f, %.2f]", ErrInvalidConfig, c.FoodMinRadius, c.FoodMaxRadius)
	case c.WorldWidth <= 2*c.FoodMargin || c.WorldHeight <= 2*c.FoodMargin:
		return fmt.Errorf("%w: food_margin %.0f leaves no spawn area", ErrInvalidConfig, c.FoodMargin)
	case c.WorldWidth <= 2*c.BombMargin || c.WorldHeight <= 2*c.BombMargin:
		return fmt.Errorf("%w: bomb_margin %.0f leaves no spawn area", ErrInvalidConfig, c.BombMargin)
	case c.SnakeBaseSpeed < 0 || c.SnakeBoostSpeed < 0:
		return fmt.Errorf("%w: negative speed (base=%.2f boost=%.2f)", ErrInvalidConfig, c.SnakeBaseSpeed, c.SnakeBoostSpeed)
	case c.BombRadius <= 0:
		return fmt.Errorf("%w: bomb_radius %.2f", ErrInvalidConfig, c.BombRadius)
	case c.BombDamage < 0:
		return fmt.Errorf("%w: bomb_damage %d", ErrInvalidConfig, c.BombDamage)
	case c.MaxTimeItems < 0:
		return fmt.Errorf("%w: max_time_items %d", ErrInvalidConfig, c.MaxTimeItems)
	case c.ParticlesPerSegment < 0:
		return fmt.Errorf("%w: particles_per_segment %d", ErrInvalidConfig, c.ParticlesPerSegment)
	case c.FloatingTextDuration <= 0 || c.ParticleDuration <= 0:
		return fmt.Errorf("%w: effect durations text=%s particle=%s", ErrInvalidConfig, c.FloatingTextDuration, c.ParticleDuration)
	case c.SelfCollisionSkip < 1:
		return fmt.Errorf("%w: self_collision_skip %d must skip the head", ErrInvalidConfig, c.SelfCollisionSkip)
	case c.StepInterval < 0:
		return fmt.Errorf("%w: step_interval %s", ErrInvalidConfig, c.StepInterval)
	case c.ExplosionInterval < 1:
		return fmt.Errorf("%w: explosion_interval %d", ErrInvalidConfig, c.ExplosionInterval)
	case c.GridCellSize <= 0:
		return fmt.Errorf("%w: grid_cell_size %.2f", ErrInvalidConfig, c.GridCellSize)
	}
	return nil
}

// LoadConfig reads a JSON file whose fields override DefaultConfig.
// Durations are duration strings such as "15s" or "16ms".
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read game config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse game config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration is a time.Duration that decodes from a string like "1.5s"
type Duration time.Duration

// UnmarshalText parses the value with time.ParseDuration
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the value the way time.Duration prints
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalJSON decodes the duration fields as strings and everything else as usual
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		InitialTime          *Duration `json:"initial_time"`
		TimeItemIncrement    *Duration `json:"time_item_increment"`
		FloatingTextDuration *Duration `json:"floating_text_duration"`
		ParticleDuration     *Duration `json:"particle_duration"`
		StepInterval         *Duration `json:"step_interval"`
	}{
		plain:                (*plain)(c),
		InitialTime:          (*Duration)(&c.InitialTime),
		TimeItemIncrement:    (*Duration)(&c.TimeItemIncrement),
		FloatingTextDuration: (*Duration)(&c.FloatingTextDuration),
		ParticleDuration:     (*Duration)(&c.ParticleDuration),
		StepInterval:         (*Duration)(&c.StepInterval),
	}
	return json.Unmarshal(data, &aux)
}

// Snake colors palette
var SnakeColors = []string{
	"#00d4ff", "#00ff88", "#ff6b9d", "#c084fc", "#fbbf24",
	"#f472b6", "#34d399", "#60a5fa", "#fb923c", "#a78bfa",
}

// Food colors palette
var FoodColors = []string{
	"#00d4ff", "#00ff88", "#ff6b9d", "#c084fc", "#fbbf24", "#f472b6",
	"#34d399", "#60a5fa", "#fb923c", "#a78bfa", "#22d3ee", "#4ade80",
}

// Floating text colors
const (
	ColorGain     = "#4ade80"
	ColorLoss     = "#ff4444"
	ColorTimeGain = "#22d3ee"
)
