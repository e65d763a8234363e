package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"zigzag-server/game"
)

// Server configuration constants
const (
	DefaultAddr      = ":8080"
	DefaultStaticDir = "../client"
	DefaultDBPath    = "zigzag.db"
	WebSocketPath    = "/ws"
	LeaderboardPath  = "/api/leaderboard"

	DefaultFPS    = 60 // scheduler wake-ups per second per session
	MaxSessions   = 200
	IPCooldownSec = 2 // minimum seconds between connections from one IP

	// Viewport culling. Food and bombs outside the client's view plus this
	// buffer are left out of state messages.
	ViewportBuffer = 200.0

	// Leaderboard
	BoardSize   = 10
	SaveTimeout = 5 * time.Second
)

// Settings are the process-level options, from flags with environment fallbacks
type Settings struct {
	Addr       string
	StaticDir  string
	DBPath     string // empty disables the leaderboard
	ReplayDir  string // empty disables replay recording
	FPS        int
	GameConfig string // optional JSON override of game.DefaultConfig
}

// parseSettings reads flags from args, defaulting to ZIGZAG_* environment variables
func parseSettings(args []string) (Settings, error) {
	fs := flag.NewFlagSet("zigzag-server", flag.ContinueOnError)
	var s Settings
	fs.StringVar(&s.Addr, "addr", getEnvOrDefault("ZIGZAG_ADDR", DefaultAddr), "HTTP listen address")
	fs.StringVar(&s.StaticDir, "static-dir", getEnvOrDefault("ZIGZAG_STATIC_DIR", DefaultStaticDir), "Directory of the browser client")
	fs.StringVar(&s.DBPath, "db", getEnvOrDefault("ZIGZAG_DB", DefaultDBPath), "SQLite leaderboard path (empty disables)")
	fs.StringVar(&s.ReplayDir, "replay-dir", getEnvOrDefault("ZIGZAG_REPLAY_DIR", ""), "Directory for parquet replays (empty disables)")
	fs.IntVar(&s.FPS, "fps", getEnvIntOrDefault("ZIGZAG_FPS", DefaultFPS), "Scheduler wake-ups per second")
	fs.StringVar(&s.GameConfig, "game-config", getEnvOrDefault("ZIGZAG_GAME_CONFIG", ""), "JSON file overriding game tuning")
	if err := fs.Parse(args); err != nil {
		return s, err
	}
	if s.FPS <= 0 {
		return s, fmt.Errorf("fps must be positive, got %d", s.FPS)
	}
	return s, nil
}

// gameConfig resolves the tuning for new sessions
func (s Settings) gameConfig() (game.Config, error) {
	if s.GameConfig == "" {
		return game.DefaultConfig(), nil
	}
	return game.LoadConfig(s.GameConfig)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
