package main

import (
	"math"

	"zigzag-server/game"
	"zigzag-server/leaderboard"
)

// Protocol uses single-character keys to minimize wire size.
// All x,y coordinates are rounded to 1 decimal place.
// The same structs encode as JSON text frames or, with ?codec=msgpack, as
// msgpack binary frames.
//
// Message type constants (value of "t" field):
//   Client → Server:
//     "j" = join    {"t":"j","n":"PlayerName","p":"data:image/...","a":0}  (a=1 for autopilot)
//     "i" = input   {"t":"i","x":1510,"y":1480,"b":1}  (world target, b=boost 0/1)
//     "m" = mouse   {"t":"m","x":400,"y":300,"w":800,"h":600}  (view coords + view size)
//     "p" = pause   {"t":"p"}
//     "r" = restart {"t":"r"}
//   Server → Client:
//     "w" = welcome {"t":"w","i":"id","W":3000,"H":3000}
//     "s" = state   see StateMsg
//     "o" = over    {"t":"o","p":score,"l":length,"k":rank,"r":"wall","top":[...],"day":[...]}
//     "e" = error   {"t":"e","m":"message"}

// Message type identifiers
const (
	MsgJoin    = "j"
	MsgInput   = "i"
	MsgMouse   = "m"
	MsgPause   = "p"
	MsgRestart = "r"
	MsgWelcome = "w"
	MsgState   = "s"
	MsgOver    = "o"
	MsgError   = "e"
)

// ClientMessage is the union of all incoming messages
type ClientMessage struct {
	Type         string  `json:"t" msgpack:"t"`
	Name         string  `json:"n,omitempty" msgpack:"n,omitempty"`
	ProfileImage string  `json:"p,omitempty" msgpack:"p,omitempty"`
	Autopilot    int     `json:"a,omitempty" msgpack:"a,omitempty"` // 0 or 1
	X            float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y            float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	W            float64 `json:"w,omitempty" msgpack:"w,omitempty"`
	H            float64 `json:"h,omitempty" msgpack:"h,omitempty"`
	Boost        int     `json:"b,omitempty" msgpack:"b,omitempty"` // 0 or 1 (client sends int, not bool)
}

// WelcomeMsg is sent immediately on WebSocket connect
type WelcomeMsg struct {
	Type   string  `json:"t" msgpack:"t"`
	ID     string  `json:"i" msgpack:"i"`
	Width  float64 `json:"W" msgpack:"W"`
	Height float64 `json:"H" msgpack:"H"`
}

// SnakeDTO is the compact snake, segments as flat [x,y] pairs head first
type SnakeDTO struct {
	ID       string       `json:"i" msgpack:"i"`
	Name     string       `json:"n" msgpack:"n"`
	Segments [][2]float64 `json:"s" msgpack:"s"`
	Color    string       `json:"c" msgpack:"c"`
	Score    int          `json:"p" msgpack:"p"`
	Angle    float64      `json:"a" msgpack:"a"`
	Radius   float64      `json:"r" msgpack:"r"`
	Boosting int          `json:"b,omitempty" msgpack:"b,omitempty"` // 1 if boosting, omitted if not
}

// FoodDTO is the compact food item. k = 1 for time items.
type FoodDTO struct {
	ID     string  `json:"i" msgpack:"i"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"r" msgpack:"r"`
	Value  int     `json:"v" msgpack:"v"`
	Color  string  `json:"c" msgpack:"c"`
	Time   int     `json:"k,omitempty" msgpack:"k,omitempty"`
}

// BombDTO is the compact bomb with its pulse phase
type BombDTO struct {
	ID     string  `json:"i" msgpack:"i"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius float64 `json:"r" msgpack:"r"`
	Pulse  float64 `json:"u" msgpack:"u"`
}

// TextDTO is a floating score indicator
type TextDTO struct {
	ID      string  `json:"i" msgpack:"i"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Text    string  `json:"s" msgpack:"s"`
	Color   string  `json:"c" msgpack:"c"`
	Opacity float64 `json:"o" msgpack:"o"`
}

// ParticleDTO is one explosion fragment
type ParticleDTO struct {
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	Radius  float64 `json:"r" msgpack:"r"`
	Color   string  `json:"c" msgpack:"c"`
	Opacity float64 `json:"o" msgpack:"o"`
}

// StateMsg is the per-frame snapshot sent to the client.
// Food and bombs are culled to the client's viewport once its size is known.
type StateMsg struct {
	Type       string        `json:"t" msgpack:"t"`
	Tick       uint64        `json:"k" msgpack:"k"`
	Snake      SnakeDTO      `json:"s" msgpack:"s"`
	Food       []FoodDTO     `json:"f" msgpack:"f"`
	Bombs      []BombDTO     `json:"b" msgpack:"b"`
	Texts      []TextDTO     `json:"x" msgpack:"x"`
	Particles  []ParticleDTO `json:"e" msgpack:"e"`
	TimeLeft   float64       `json:"l" msgpack:"l"`
	Paused     int           `json:"p,omitempty" msgpack:"p,omitempty"`
	PauseCount int           `json:"c" msgpack:"c"`
	MaxPause   int           `json:"m" msgpack:"m"`
	Over       int           `json:"o,omitempty" msgpack:"o,omitempty"`
}

// ScoreDTO is one leaderboard row
type ScoreDTO struct {
	Rank   int    `json:"k" msgpack:"k"`
	Name   string `json:"n" msgpack:"n"`
	Score  int    `json:"p" msgpack:"p"`
	Length int    `json:"l" msgpack:"l"`
}

// OverMsg is sent once per run when the game ends.
// k = rank of the score among saved runs, 0 when the leaderboard is unavailable.
type OverMsg struct {
	Type   string     `json:"t" msgpack:"t"`
	Score  int        `json:"p" msgpack:"p"`
	Length int        `json:"l" msgpack:"l"`
	Rank   int        `json:"k" msgpack:"k"`
	Reason string     `json:"r" msgpack:"r"`
	Top    []ScoreDTO `json:"top" msgpack:"top"`
	Today  []ScoreDTO `json:"day" msgpack:"day"`
}

// ErrorMsg reports a refused connection or a bad request
type ErrorMsg struct {
	Type    string `json:"t" msgpack:"t"`
	Message string `json:"m" msgpack:"m"`
}

// viewport is the client's visible area, centred on the head
type viewport struct {
	W, H float64
}

func (v viewport) known() bool {
	return v.W > 0 && v.H > 0
}

// contains reports whether (x,y) is inside the view around (cx,cy) plus buffer
func (v viewport) contains(cx, cy, x, y float64) bool {
	if !v.known() {
		return true
	}
	halfW := v.W/2 + ViewportBuffer
	halfH := v.H/2 + ViewportBuffer
	return x >= cx-halfW && x <= cx+halfW && y >= cy-halfH && y <= cy+halfH
}

// newStateMsg converts an engine snapshot to its wire form
func newStateMsg(st *game.State, view viewport) StateMsg {
	msg := StateMsg{
		Type:       MsgState,
		Tick:       st.Tick,
		Food:       []FoodDTO{},
		Bombs:      []BombDTO{},
		Texts:      make([]TextDTO, 0, len(st.FloatingTexts)),
		Particles:  make([]ParticleDTO, 0, len(st.ExplosionParticles)),
		TimeLeft:   math.Round(st.TimeLeft*10) / 10,
		PauseCount: st.PauseCount,
		MaxPause:   st.MaxPauseCount,
	}
	if st.Paused {
		msg.Paused = 1
	}
	if st.GameOver {
		msg.Over = 1
	}

	var cx, cy float64
	if s := st.Snake; s != nil && s.Len() > 0 {
		head := s.Head()
		cx, cy = head.X, head.Y
		msg.Snake = snakeDTO(s)
	}

	for _, f := range st.Foods {
		if !view.contains(cx, cy, f.X, f.Y) {
			continue
		}
		dto := FoodDTO{
			ID:     f.ID,
			X:      roundTo1(f.X),
			Y:      roundTo1(f.Y),
			Radius: roundTo1(f.Radius),
			Value:  f.Value,
			Color:  f.Color,
		}
		if f.IsTimeItem() {
			dto.Time = 1
		}
		msg.Food = append(msg.Food, dto)
	}
	for _, b := range st.Bombs {
		if !view.contains(cx, cy, b.X, b.Y) {
			continue
		}
		msg.Bombs = append(msg.Bombs, BombDTO{
			ID:     b.ID,
			X:      roundTo1(b.X),
			Y:      roundTo1(b.Y),
			Radius: b.Radius,
			Pulse:  math.Round(b.PulsePhase*100) / 100,
		})
	}
	for _, t := range st.FloatingTexts {
		msg.Texts = append(msg.Texts, TextDTO{
			ID:      t.ID,
			X:       roundTo1(t.X),
			Y:       roundTo1(t.Y),
			Text:    t.Text,
			Color:   t.Color,
			Opacity: math.Round(t.Opacity*100) / 100,
		})
	}
	for _, p := range st.ExplosionParticles {
		msg.Particles = append(msg.Particles, ParticleDTO{
			X:       roundTo1(p.X),
			Y:       roundTo1(p.Y),
			Radius:  roundTo1(p.Radius),
			Color:   p.Color,
			Opacity: math.Round(p.Opacity*100) / 100,
		})
	}
	return msg
}

func snakeDTO(s *game.Snake) SnakeDTO {
	pairs := make([][2]float64, len(s.Segments))
	for i, p := range s.Segments {
		pairs[i] = [2]float64{roundTo1(p.X), roundTo1(p.Y)}
	}
	boostInt := 0
	if s.Boosting {
		boostInt = 1
	}
	return SnakeDTO{
		ID:       s.ID,
		Name:     s.Name,
		Segments: pairs,
		Color:    s.Color,
		Score:    s.Score,
		Angle:    math.Round(s.Angle*1000) / 1000,
		Radius:   s.Head().Radius,
		Boosting: boostInt,
	}
}

func scoreDTOs(entries []leaderboard.Entry) []ScoreDTO {
	out := make([]ScoreDTO, len(entries))
	for i, e := range entries {
		out[i] = ScoreDTO{Rank: e.Rank, Name: e.Nickname, Score: e.Score, Length: e.Length}
	}
	return out
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
