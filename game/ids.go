package game

import "strconv"

// idGen hands out short unique IDs for transient entities of one game
type idGen struct {
	counter uint64
}

func (g *idGen) next(prefix string) string {
	g.counter++
	return prefix + strconv.FormatUint(g.counter, 10)
}
