// Package replay archives the per-step frames of a session to Parquet.
package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"zigzag-server/game"
)

// SchemaVersion is stored in the file metadata under "schema"
const SchemaVersion = "zigzag_frame_v1"

// DefaultMaxRows bounds a single recording, about 17 minutes at 60 steps per second
const DefaultMaxRows = 1 << 16

// FrameRow is the state of one simulation step.
// Body coordinates are stored head first.
type FrameRow struct {
	Session string `parquet:"session,dict"`
	Tick    int64  `parquet:"tick"`

	HeadX    float32 `parquet:"head_x"`
	HeadY    float32 `parquet:"head_y"`
	Angle    float32 `parquet:"angle"`
	Boosting bool    `parquet:"boosting"`
	Length   int32   `parquet:"length"`
	Score    int32   `parquet:"score"`
	TimeLeft float32 `parquet:"time_left"`

	BodyX []float32 `parquet:"body_x"`
	BodyY []float32 `parquet:"body_y"`

	Foods     int32 `parquet:"foods"`
	Bombs     int32 `parquet:"bombs"`
	Particles int32 `parquet:"particles"`

	GameOver  bool   `parquet:"game_over"`
	EndReason string `parquet:"end_reason,dict"`
}

// Recorder collects one row per simulation step from the snapshot stream.
// Snapshots that repeat a step (paused wake-ups) are skipped.
type Recorder struct {
	mu        sync.Mutex
	session   string
	player    string
	startedAt time.Time
	rows      []FrameRow
	lastTick  uint64
	seen      bool
	truncated bool

	MaxRows int
}

// NewRecorder creates a recorder for one run of a session
func NewRecorder(session, player string) *Recorder {
	return &Recorder{
		session:   session,
		player:    player,
		startedAt: time.Now(),
		MaxRows:   DefaultMaxRows,
	}
}

// Observe records st if it carries a step not seen yet
func (r *Recorder) Observe(st *game.State) {
	if st == nil || st.Snake == nil || !st.Started {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen && st.Tick == r.lastTick {
		return
	}
	r.seen = true
	r.lastTick = st.Tick

	if r.MaxRows > 0 && len(r.rows) >= r.MaxRows {
		r.truncated = true
		return
	}
	r.rows = append(r.rows, frameRow(r.session, st))
}

func frameRow(session string, st *game.State) FrameRow {
	s := st.Snake
	row := FrameRow{
		Session:   session,
		Tick:      int64(st.Tick),
		Angle:     float32(s.Angle),
		Boosting:  s.Boosting,
		Length:    int32(s.Len()),
		Score:     int32(s.Score),
		TimeLeft:  float32(st.TimeLeft),
		BodyX:     make([]float32, s.Len()),
		BodyY:     make([]float32, s.Len()),
		Foods:     int32(len(st.Foods)),
		Bombs:     int32(len(st.Bombs)),
		Particles: int32(len(st.ExplosionParticles)),
		GameOver:  st.GameOver,
		EndReason: string(st.EndReason),
	}
	for i, seg := range s.Segments {
		row.BodyX[i] = float32(seg.X)
		row.BodyY[i] = float32(seg.Y)
	}
	if s.Len() > 0 {
		row.HeadX, row.HeadY = row.BodyX[0], row.BodyY[0]
	}
	return row
}

// Len returns the number of recorded rows
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// Truncated reports whether steps were dropped after MaxRows
func (r *Recorder) Truncated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.truncated
}

// Rows returns a copy of the recorded rows
func (r *Recorder) Rows() []FrameRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FrameRow, len(r.rows))
	copy(out, r.rows)
	return out
}

// FileName is the name used by Flush inside its directory
func (r *Recorder) FileName() string {
	return fmt.Sprintf("%s-%d.parquet", r.session, r.startedAt.UnixMilli())
}

// Flush writes the recording into dir and returns the file path
func (r *Recorder) Flush(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create replay dir: %w", err)
	}
	path := filepath.Join(dir, r.FileName())
	if err := r.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes the recording to path atomically
func (r *Recorder) WriteFile(path string) error {
	rows := r.Rows()
	r.mu.Lock()
	truncated := r.truncated
	r.mu.Unlock()

	// Write to a temp file and rename atomically.
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", SchemaVersion),
		parquet.KeyValueMetadata("player", r.player),
		parquet.KeyValueMetadata("truncated", strconv.FormatBool(truncated)),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadFile loads the rows of a recording
func ReadFile(path string) ([]FrameRow, error) {
	rows, err := parquet.ReadFile[FrameRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}
