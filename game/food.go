package game

import (
	"math"
	"math/rand"
)

// FoodType distinguishes plain food from time-bonus items
type FoodType string

const (
	FoodNormal FoodType = "normal"
	FoodTime   FoodType = "time"
)

// Food is a collectible item. It never changes after creation.
type Food struct {
	ID     string
	X      float64
	Y      float64
	Radius float64
	Color  string
	Value  int // growth on consumption, ceil(radius/2)
	Type   FoodType
}

// NewFood creates a food item at a random position inside the spawn margin.
// When allowTimeItem is set the item becomes a time item with cfg.TimeItemChance.
func NewFood(cfg *Config, rng *rand.Rand, id string, allowTimeItem bool) Food {
	radius := RandomRange(rng, cfg.FoodMinRadius, cfg.FoodMaxRadius)
	f := Food{
		ID:     id,
		X:      RandomRange(rng, cfg.FoodMargin, cfg.WorldWidth-cfg.FoodMargin),
		Y:      RandomRange(rng, cfg.FoodMargin, cfg.WorldHeight-cfg.FoodMargin),
		Radius: radius,
		Color:  RandomChoice(rng, FoodColors),
		Value:  foodValueForRadius(radius),
		Type:   FoodNormal,
	}
	if allowTimeItem && rng.Float64() < cfg.TimeItemChance {
		f.Type = FoodTime
	}
	return f
}

// NewFoodAt creates a plain food item at a fixed position
func NewFoodAt(id string, x, y, radius float64, color string) Food {
	return Food{
		ID:     id,
		X:      x,
		Y:      y,
		Radius: radius,
		Color:  color,
		Value:  foodValueForRadius(radius),
		Type:   FoodNormal,
	}
}

// IsTimeItem reports whether eating the food extends the clock
func (f Food) IsTimeItem() bool {
	return f.Type == FoodTime
}

func foodValueForRadius(radius float64) int {
	v := int(math.Ceil(radius / 2))
	if v < 1 {
		v = 1
	}
	return v
}
