package game

// Phase is the lifecycle state of a game session
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRunning    Phase = "running"
	PhasePaused     Phase = "paused"
	PhaseGameOver   Phase = "game_over"
)

// EndReason records why a session ended
type EndReason string

const (
	EndNone EndReason = ""
	EndWall EndReason = "wall"
	EndSelf EndReason = "self"
	EndTime EndReason = "time"

	// EndFault marks a session stopped by a broken engine invariant
	EndFault EndReason = "fault"
)

// State is the full world of one session. Listeners receive deep copies.
type State struct {
	Snake              *Snake
	Foods              []Food
	Bombs              []Bomb
	FloatingTexts      []FloatingText
	ExplosionParticles []ExplosionParticle

	GameOver      bool
	Started       bool
	Paused        bool
	PauseCount    int
	MaxPauseCount int

	WorldWidth  float64
	WorldHeight float64
	TimeLeft    float64 // seconds

	Tick      uint64 // simulation steps since start
	EndReason EndReason
}

// Phase derives the lifecycle state from the flags
func (s *State) Phase() Phase {
	switch {
	case s.GameOver:
		return PhaseGameOver
	case !s.Started:
		return PhaseNotStarted
	case s.Paused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

// Clone performs a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	out := *s
	out.Snake = s.Snake.clone()
	out.Foods = cloneSlice(s.Foods)
	out.Bombs = cloneSlice(s.Bombs)
	out.FloatingTexts = cloneSlice(s.FloatingTexts)
	out.ExplosionParticles = cloneSlice(s.ExplosionParticles)
	return &out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
