package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"zigzag-server/game"
	"zigzag-server/leaderboard"
	"zigzag-server/replay"
)

// sender delivers protocol messages to one client
type sender interface {
	Send(msg any) error
}

// sessionDeps are the collaborators shared by every session of the process
type sessionDeps struct {
	Config    game.Config
	Ticks     game.TickSource // nil uses the game's default ticker
	Board     *leaderboard.Service
	ReplayDir string // empty disables recording

	GameOptions []game.Option
}

// Session binds one connection to its own game. Each connection owns an
// independent simulation; nothing is shared between sessions.
type Session struct {
	id        string
	out       sender
	game      *game.Game
	board     *leaderboard.Service
	replayDir string

	mu        sync.Mutex
	rec       *replay.Recorder // nil when recording is off
	pilot     *game.Autopilot  // nil for human players
	view      viewport
	overSent  bool // game-over handling already started for the current run
	closed    bool
	finishing sync.WaitGroup

	// pilotMu serialises Decide, which keeps roaming state and can be reached
	// from both the read goroutine (Start's first frame) and the ticker.
	pilotMu sync.Mutex
}

func newSession(id string, out sender, deps sessionDeps) (*Session, error) {
	var opts []game.Option
	if deps.Ticks != nil {
		opts = append(opts, game.WithTickSource(deps.Ticks))
	}
	opts = append(opts, deps.GameOptions...)

	g, err := game.New(deps.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	s := &Session{
		id:        id,
		out:       out,
		game:      g,
		board:     deps.Board,
		replayDir: deps.ReplayDir,
	}
	g.SetUpdateCallback(s.onUpdate)
	return s, nil
}

// welcome describes the world this session's game runs in
func (s *Session) welcome() WelcomeMsg {
	cfg := s.game.Config()
	return WelcomeMsg{
		Type:   MsgWelcome,
		ID:     s.id,
		Width:  cfg.WorldWidth,
		Height: cfg.WorldHeight,
	}
}

// handleMessage applies one client message. Runs on the connection's read goroutine.
func (s *Session) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MsgJoin:
		name := strings.TrimSpace(msg.Name)
		if name == "" {
			name = "Player"
		}
		s.prepareRun(name, msg.Autopilot == 1)
		s.game.Start(name, msg.ProfileImage)
		log.Printf("session %s: %q joined (autopilot=%v)", s.id, name, msg.Autopilot == 1)

	case MsgRestart:
		s.mu.Lock()
		autopilot := s.pilot != nil
		s.mu.Unlock()
		s.prepareRun(s.game.State().Snake.Name, autopilot)
		s.game.Restart()

	case MsgInput:
		if s.autopilot() {
			return
		}
		s.game.SetTargetDirection(msg.X, msg.Y)
		s.game.SetBoost(msg.Boost == 1)

	case MsgMouse:
		s.mu.Lock()
		s.view = viewport{W: msg.W, H: msg.H}
		s.mu.Unlock()
		if s.autopilot() {
			return
		}
		s.game.SetMousePosition(msg.X, msg.Y, msg.W, msg.H)

	case MsgPause:
		s.game.TogglePause()

	default:
		log.Printf("session %s: unknown message type %q", s.id, msg.Type)
	}
}

func (s *Session) autopilot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pilot != nil
}

// prepareRun resets per-run bookkeeping. Must be called before Start, which
// delivers the first snapshot synchronously.
func (s *Session) prepareRun(name string, autopilot bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overSent = false
	s.rec = nil
	if s.replayDir != "" {
		s.rec = replay.NewRecorder(s.id, name)
	}
	s.pilot = nil
	if autopilot {
		s.pilot = game.NewAutopilot(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
}

// onUpdate receives every snapshot of the game
func (s *Session) onUpdate(st *game.State) {
	s.mu.Lock()
	rec, pilot, view := s.rec, s.pilot, s.view
	finish := st.GameOver && !s.overSent && !s.closed
	if finish {
		s.overSent = true
		s.finishing.Add(1)
	}
	s.mu.Unlock()

	if rec != nil {
		rec.Observe(st)
	}
	if err := s.out.Send(newStateMsg(st, view)); err != nil {
		log.Printf("send error to %s: %v", s.id, err)
	}

	if pilot != nil && st.Phase() == game.PhaseRunning {
		s.steer(pilot, st)
	}

	if finish {
		go s.finish(st, rec, pilot != nil)
	}
}

func (s *Session) steer(pilot *game.Autopilot, st *game.State) {
	s.pilotMu.Lock()
	defer s.pilotMu.Unlock()
	in := pilot.Decide(st)
	s.game.SetTargetDirection(in.TargetX, in.TargetY)
	s.game.SetBoost(in.Boost)
}

// finish saves the run, reports it to the client and archives the replay.
// Autopilot runs are not saved to the leaderboard.
func (s *Session) finish(st *game.State, rec *replay.Recorder, autopilot bool) {
	defer s.finishing.Done()

	ctx, cancel := context.WithTimeout(context.Background(), SaveTimeout)
	defer cancel()

	score, length := st.Snake.Score, st.Snake.Len()
	over := OverMsg{
		Type:   MsgOver,
		Score:  score,
		Length: length,
		Reason: string(st.EndReason),
	}
	if !autopilot {
		s.board.SaveScore(ctx, st.Snake.Name, score, length)
		over.Rank = s.board.ScoreRank(ctx, score)
	}
	over.Top = scoreDTOs(s.board.TopScores(ctx, BoardSize))
	over.Today = scoreDTOs(s.board.TodayTopScores(ctx, BoardSize))

	if err := s.out.Send(over); err != nil {
		log.Printf("send error to %s: %v", s.id, err)
	}

	if rec != nil {
		path, err := rec.Flush(s.replayDir)
		if err != nil {
			log.Printf("session %s: replay write failed: %v", s.id, err)
			return
		}
		log.Printf("session %s: replay saved to %s (%d frames)", s.id, path, rec.Len())
	}
}

// Close stops the game and waits for pending game-over work
func (s *Session) Close() {
	s.game.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.finishing.Wait()
}
