package game

import (
	"fmt"
	"log"
	"math/rand"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Option customizes a Game at construction
type Option func(*Game)

// WithRand sets the random source used for spawning and boost cost
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithClock sets the time reference for step gating and effect lifetimes
func WithClock(c Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithTickSource sets the scheduler that drives Frame
func WithTickSource(t TickSource) Option {
	return func(g *Game) { g.ticks = t }
}

// Game owns the world of one single-player session and advances it on each tick
type Game struct {
	mu sync.Mutex

	cfg    Config
	rng    *rand.Rand
	clock  Clock
	ticks  TickSource
	cancel func()
	ids    idGen
	grid   *SpatialGrid

	state          State
	explosionQueue []Segment // removed segments waiting to burst
	explosionTimer int
	lastStep       time.Time
	onUpdate       func(*State)

	playerName   string
	profileImage string
}

// New creates a game in the not-started phase
func New(cfg Config, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:      SystemClock{},
		ticks:      NewTicker(60),
		grid:       NewSpatialGrid(cfg.GridCellSize),
		playerName: "Player",
	}
	for _, opt := range opts {
		opt(g)
	}
	g.state = g.initialState()
	return g, nil
}

func (g *Game) initialState() State {
	st := State{
		Snake:         NewSnake(&g.cfg, g.rng, "Player", g.cfg.WorldWidth/2, g.cfg.WorldHeight/2),
		Foods:         make([]Food, 0, g.cfg.FoodCount),
		Bombs:         make([]Bomb, 0, g.cfg.BombCount),
		FloatingTexts: []FloatingText{},
		MaxPauseCount: g.cfg.MaxPauseCount,
		WorldWidth:    g.cfg.WorldWidth,
		WorldHeight:   g.cfg.WorldHeight,

		ExplosionParticles: []ExplosionParticle{},
	}
	if g.cfg.InitialTime > 0 {
		st.TimeLeft = g.cfg.InitialTime.Seconds()
	}
	st.Foods = g.fillFood(st.Foods)
	st.Bombs = g.fillBombs(st.Bombs)
	return st
}

// Start resets the world and begins a session for the named player
func (g *Game) Start(name, profileImage string) {
	g.mu.Lock()
	g.stopLocked()
	g.ids = idGen{}
	g.playerName = name
	g.profileImage = profileImage
	g.state = g.initialState()
	g.state.Snake.Name = name
	g.state.Snake.ProfileImage = profileImage
	g.state.Started = true
	g.explosionQueue = nil
	g.explosionTimer = 0
	g.lastStep = g.clock.Now()
	g.cancel = g.ticks.Subscribe(g.Frame)
	g.mu.Unlock()

	log.Printf("game started: player=%q world=%.0fx%.0f food=%d bombs=%d",
		name, g.cfg.WorldWidth, g.cfg.WorldHeight, g.cfg.FoodCount, g.cfg.BombCount)
	g.Frame()
}

// Restart starts a fresh session with the previous name and profile image
func (g *Game) Restart() {
	g.mu.Lock()
	name, image := g.playerName, g.profileImage
	g.mu.Unlock()
	g.Start(name, image)
}

// Stop halts the tick subscription without touching state. Safe to call repeatedly.
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *Game) stopLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// TogglePause flips the pause flag of a running session.
// Pausing is refused once MaxPauseCount pauses were used; resuming is always allowed.
func (g *Game) TogglePause() {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := &g.state
	if !st.Started || st.GameOver {
		return
	}
	if st.Paused {
		st.Paused = false
		// Re-anchor so the pause does not count as elapsed step time
		g.lastStep = g.clock.Now()
		return
	}
	if g.cfg.MaxPauseCount > 0 && st.PauseCount >= g.cfg.MaxPauseCount {
		return
	}
	st.Paused = true
	st.PauseCount++
}

// IsPaused reports whether the session is paused
func (g *Game) IsPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Paused
}

// Phase returns the current lifecycle phase
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Phase()
}

// Config returns the tuning this game runs with
func (g *Game) Config() Config {
	return g.cfg
}

// SetUpdateCallback registers the consumer that receives a snapshot on every wake-up
func (g *Game) SetUpdateCallback(fn func(*State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onUpdate = fn
}

// State returns a deep copy of the current world
func (g *Game) State() *State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

func (g *Game) acceptsInput() bool {
	return g.state.Started && !g.state.GameOver && !g.state.Paused
}

// SetTargetDirection steers the snake toward a world position
func (g *Game) SetTargetDirection(worldX, worldY float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.acceptsInput() {
		return
	}
	g.state.Snake.SetTarget(worldX, worldY)
}

// SetMousePosition steers toward a point given in view coordinates of a camera
// centered on the head.
func (g *Game) SetMousePosition(screenX, screenY, viewWidth, viewHeight float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.acceptsInput() {
		return
	}
	head := g.state.Snake.Head()
	g.state.Snake.SetTarget(head.X+screenX-viewWidth/2, head.Y+screenY-viewHeight/2)
}

// SetBoost sets the boost request
func (g *Game) SetBoost(boosting bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.acceptsInput() {
		return
	}
	g.state.Snake.Boosting = boosting
}

// Frame handles one scheduler wake-up: at most one simulation step when enough time
// has passed, then a snapshot to the update callback. While paused the snapshot is
// delivered unchanged.
func (g *Game) Frame() {
	g.mu.Lock()
	if !g.state.Started {
		g.mu.Unlock()
		return
	}
	if !g.state.Paused && !g.state.GameOver {
		now := g.clock.Now()
		elapsed := now.Sub(g.lastStep)
		if elapsed >= g.cfg.StepInterval {
			g.update(now, elapsed)
			g.lastStep = now
		}
	}
	snap := g.state.Clone()
	cb := g.onUpdate
	if g.state.GameOver {
		g.stopLocked()
	}
	g.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// update runs one simulation step. Caller must hold g.mu.
func (g *Game) update(now time.Time, elapsed time.Duration) {
	st := &g.state
	if !st.Started || st.GameOver || st.Paused {
		return
	}
	st.Tick++
	snake := st.Snake

	// 1. Kinematics
	snake.Update(&g.cfg, g.rng)
	if !snake.Alive {
		g.end(EndWall)
		return
	}
	if snake.SelfCollides(&g.cfg) {
		snake.Alive = false
		g.end(EndSelf)
		return
	}

	// 2. Bomb pulse
	for i := range st.Bombs {
		st.Bombs[i].Pulse(g.cfg.BombPulseStep)
	}

	// 3. Queued explosions
	g.processExplosionQueue(now)

	// 4-5. Collisions
	g.grid.Rebuild(st.Foods, st.Bombs)
	if err := g.checkFoodCollisions(now); err != nil {
		g.fail(err)
		return
	}
	if err := g.checkBombCollisions(now); err != nil {
		g.fail(err)
		return
	}

	// 6. Transient effects
	st.FloatingTexts = ageTexts(st.FloatingTexts, now, g.cfg.FloatingTextDuration, g.cfg.FloatingTextRise)
	st.ExplosionParticles = ageParticles(st.ExplosionParticles, now, g.cfg.ParticleDuration, g.cfg.ParticleDamping)

	// 7. Populations
	st.Foods = g.fillFood(st.Foods)
	st.Bombs = g.fillBombs(st.Bombs)

	// 8. Time limit
	if g.cfg.InitialTime > 0 {
		st.TimeLeft -= elapsed.Seconds()
		if st.TimeLeft <= 0 {
			st.TimeLeft = 0
			g.end(EndTime)
		}
	}
}

// end moves the session to game over. Caller must hold g.mu.
func (g *Game) end(reason EndReason) {
	st := &g.state
	st.GameOver = true
	st.EndReason = reason
	log.Printf("game over: player=%q reason=%s score=%d length=%d ticks=%d",
		st.Snake.Name, reason, st.Snake.Score, st.Snake.Len(), st.Tick)
}

func (g *Game) fail(err error) {
	log.Printf("engine invariant violated: %v", err)
	g.end(EndFault)
}

// processExplosionQueue bursts one queued segment every ExplosionInterval steps
func (g *Game) processExplosionQueue(now time.Time) {
	if len(g.explosionQueue) == 0 {
		return
	}
	g.explosionTimer++
	if g.explosionTimer < g.cfg.ExplosionInterval {
		return
	}
	g.explosionTimer = 0
	seg := g.explosionQueue[0]
	g.explosionQueue = g.explosionQueue[1:]
	g.state.ExplosionParticles = append(g.state.ExplosionParticles,
		burst(&g.ids, g.rng, seg.Point, g.cfg.ParticlesPerSegment, g.state.Snake.Color, now)...)
}

// checkFoodCollisions consumes every food item under the head in one batch
func (g *Game) checkFoodCollisions(now time.Time) error {
	st := &g.state
	head := st.Snake.Head()
	candidates := g.grid.NearbyFood(head.X, head.Y, head.Radius+g.cfg.FoodMaxRadius)
	slices.Sort(candidates)

	eaten := make(map[int]bool)
	for _, i := range candidates {
		food := st.Foods[i]
		if !CircleCollision(head.X, head.Y, head.Radius, food.X, food.Y, food.Radius) {
			continue
		}
		eaten[i] = true
		if err := st.Snake.Grow(food.Value, g.cfg.SnakeSegmentDistance); err != nil {
			return fmt.Errorf("grow on food %s: %w", food.ID, err)
		}
		g.addFloatingText(food.X, food.Y, "+"+strconv.Itoa(food.Value), ColorGain, now)
		if food.IsTimeItem() && g.cfg.InitialTime > 0 {
			st.TimeLeft += g.cfg.TimeItemIncrement.Seconds()
			g.addFloatingText(food.X, food.Y-food.Radius*2,
				fmt.Sprintf("+%ds", int(g.cfg.TimeItemIncrement.Seconds())), ColorTimeGain, now)
		}
	}

	if len(eaten) > 0 {
		kept := st.Foods[:0]
		for i, f := range st.Foods {
			if !eaten[i] {
				kept = append(kept, f)
			}
		}
		st.Foods = kept
	}
	return nil
}

// checkBombCollisions applies neck damage for every bomb under the head
func (g *Game) checkBombCollisions(now time.Time) error {
	st := &g.state
	head := st.Snake.Head()
	candidates := g.grid.NearbyBombs(head.X, head.Y, head.Radius+g.cfg.BombRadius)
	slices.Sort(candidates)

	hit := make(map[int]bool)
	for _, i := range candidates {
		bomb := st.Bombs[i]
		if !CircleCollision(head.X, head.Y, head.Radius, bomb.X, bomb.Y, bomb.Radius) {
			continue
		}
		hit[i] = true
		removed, err := st.Snake.RemoveAfterHead(g.cfg.BombDamage, g.cfg.SnakeInitialLength)
		if err != nil {
			return fmt.Errorf("bomb %s damage: %w", bomb.ID, err)
		}
		if len(removed) > 0 {
			g.explosionQueue = append(g.explosionQueue, removed...)
			g.addFloatingText(bomb.X, bomb.Y, "-"+strconv.Itoa(len(removed)), ColorLoss, now)
		}
	}

	if len(hit) > 0 {
		kept := st.Bombs[:0]
		for i, b := range st.Bombs {
			if !hit[i] {
				kept = append(kept, b)
			}
		}
		st.Bombs = kept
	}
	return nil
}

func (g *Game) addFloatingText(x, y float64, text, color string, now time.Time) {
	g.state.FloatingTexts = append(g.state.FloatingTexts, FloatingText{
		ID:        g.ids.next("t"),
		X:         x,
		Y:         y,
		Text:      text,
		Color:     color,
		Opacity:   1,
		CreatedAt: now,
	})
}

// fillFood spawns food up to FoodCount. Time items are capped at MaxTimeItems.
func (g *Game) fillFood(foods []Food) []Food {
	deficit := g.cfg.FoodCount - len(foods)
	if deficit <= 0 {
		return foods
	}
	timeItems := 0
	for _, f := range foods {
		if f.IsTimeItem() {
			timeItems++
		}
	}
	for i := 0; i < deficit; i++ {
		allowTime := g.cfg.InitialTime > 0 && timeItems < g.cfg.MaxTimeItems
		f := NewFood(&g.cfg, g.rng, g.ids.next("f"), allowTime)
		if f.IsTimeItem() {
			timeItems++
		}
		foods = append(foods, f)
	}
	return foods
}

// fillBombs spawns bombs up to BombCount
func (g *Game) fillBombs(bombs []Bomb) []Bomb {
	for len(bombs) < g.cfg.BombCount {
		bombs = append(bombs, NewBomb(&g.cfg, g.rng, g.ids.next("b")))
	}
	return bombs
}
