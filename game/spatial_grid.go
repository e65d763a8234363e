package game

import "math"

// cellKey uniquely identifies a grid cell
type cellKey struct {
	cx, cy int
}

// gridEntry points at a food or bomb by its index in the state slices
type gridEntry struct {
	kind  entryKind
	index int
	x, y  float64
}

type entryKind uint8

const (
	kindFood entryKind = iota
	kindBomb
)

// SpatialGrid is a hash grid for proximity queries against food and bombs
type SpatialGrid struct {
	cells    map[cellKey][]gridEntry
	cellSize float64
}

// NewSpatialGrid creates an empty spatial grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cells:    make(map[cellKey][]gridEntry),
		cellSize: cellSize,
	}
}

// Clear resets all cells
func (g *SpatialGrid) Clear() {
	clear(g.cells)
}

func (g *SpatialGrid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cy: int(math.Floor(y / g.cellSize)),
	}
}

func (g *SpatialGrid) insert(e gridEntry) {
	k := g.keyFor(e.x, e.y)
	g.cells[k] = append(g.cells[k], e)
}

// Rebuild indexes the given food and bombs, replacing previous contents
func (g *SpatialGrid) Rebuild(foods []Food, bombs []Bomb) {
	g.Clear()
	for i, f := range foods {
		g.insert(gridEntry{kind: kindFood, index: i, x: f.X, y: f.Y})
	}
	for i, b := range bombs {
		g.insert(gridEntry{kind: kindBomb, index: i, x: b.X, y: b.Y})
	}
}

// NearbyFood returns indices of food whose center is within radius of (x,y)
func (g *SpatialGrid) NearbyFood(x, y, radius float64) []int {
	return g.nearby(kindFood, x, y, radius)
}

// NearbyBombs returns indices of bombs whose center is within radius of (x,y)
func (g *SpatialGrid) NearbyBombs(x, y, radius float64) []int {
	return g.nearby(kindBomb, x, y, radius)
}

func (g *SpatialGrid) nearby(kind entryKind, x, y, radius float64) []int {
	results := []int{}
	minCX := int(math.Floor((x - radius) / g.cellSize))
	maxCX := int(math.Floor((x + radius) / g.cellSize))
	minCY := int(math.Floor((y - radius) / g.cellSize))
	maxCY := int(math.Floor((y + radius) / g.cellSize))

	r2 := radius * radius
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e.kind != kind {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				if dx*dx+dy*dy <= r2 {
					results = append(results, e.index)
				}
			}
		}
	}
	return results
}
