package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"zigzag-server/game"
	"zigzag-server/leaderboard"
)

// ipRateLimiter tracks last connection time per IP to prevent abuse
type ipRateLimiter struct {
	mu       sync.Mutex
	times    map[string]time.Time
	cooldown time.Duration
}

func newIPRateLimiter(cooldown time.Duration) *ipRateLimiter {
	rl := &ipRateLimiter{times: make(map[string]time.Time), cooldown: cooldown}
	// Cleanup stale entries every 60s
	go func() {
		for range time.Tick(60 * time.Second) {
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.cooldown)
			for ip, t := range rl.times {
				if t.Before(cutoff) {
					delete(rl.times, ip)
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

// allow returns true if this IP can connect, and records the attempt
func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if last, ok := rl.times[ip]; ok {
		if time.Since(last) < rl.cooldown {
			return false
		}
	}
	rl.times[ip] = time.Now()
	return true
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; tighten in production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Enable per-message deflate compression (RFC 7692)
	EnableCompression: true,
}

// server holds the process-wide collaborators of the HTTP handlers
type server struct {
	settings Settings
	cfg      game.Config
	board    *leaderboard.Service
	conns    *ConnManager
	limiter  *ipRateLimiter
}

func newServer(settings Settings, cfg game.Config, board *leaderboard.Service) *server {
	return &server{
		settings: settings,
		cfg:      cfg,
		board:    board,
		conns:    NewConnManager(),
		limiter:  newIPRateLimiter(IPCooldownSec * time.Second),
	}
}

func (srv *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, srv.handleWS)
	mux.HandleFunc(LeaderboardPath, srv.handleLeaderboard)
	mux.Handle("/", http.FileServer(http.Dir(srv.settings.StaticDir)))
	return mux
}

func (srv *server) handleWS(w http.ResponseWriter, r *http.Request) {
	// Extract client IP (handle X-Forwarded-For for reverse proxies)
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip, _, _ = net.SplitHostPort(r.RemoteAddr)
	}

	codec, err := codecFor(r.URL.Query().Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	// Check limits after upgrade so client can receive error messages
	if srv.conns.Count() >= MaxSessions {
		sendErrorAndClose(ws, codec, "Server full. Please try again later.")
		return
	}
	if !srv.limiter.allow(ip) {
		sendErrorAndClose(ws, codec, "Too many connections. Please wait a moment.")
		return
	}

	// Enable per-message write compression at best-speed level
	ws.EnableWriteCompression(true)

	conn := NewConn(ws, codec)
	sess, err := newSession(conn.ID, conn, sessionDeps{
		Config:    srv.cfg,
		Ticks:     game.NewTicker(srv.settings.FPS),
		Board:     srv.board,
		ReplayDir: srv.settings.ReplayDir,
	})
	if err != nil {
		log.Printf("session setup failed for %s: %v", conn.ID, err)
		sendErrorAndClose(ws, codec, "Could not start a game.")
		return
	}
	srv.conns.Add(conn)
	log.Printf("player connected: %s (codec=%s)", conn.ID, codec.Name())

	// Send welcome immediately so client knows its ID and world dimensions
	_ = conn.Send(sess.welcome())

	// Blocking read loop, runs until client disconnects
	conn.ReadLoop(sess.handleMessage, func(c *Conn) {
		srv.conns.Remove(c.ID)
		sess.Close()
		log.Printf("player disconnected: %s", c.ID)
	})
}

// leaderboardResponse is the body of GET /api/leaderboard
type leaderboardResponse struct {
	Top   []ScoreDTO `json:"top"`
	Today []ScoreDTO `json:"today"`
}

func (srv *server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := BoardSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			http.Error(w, "limit must be between 1 and 100", http.StatusBadRequest)
			return
		}
		limit = n
	}

	resp := leaderboardResponse{
		Top:   scoreDTOs(srv.board.TopScores(r.Context(), limit)),
		Today: scoreDTOs(srv.board.TodayTopScores(r.Context(), limit)),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("leaderboard response error: %v", err)
	}
}

func main() {
	settings, err := parseSettings(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("invalid settings: %v", err)
	}
	cfg, err := settings.gameConfig()
	if err != nil {
		log.Fatalf("game config: %v", err)
	}

	var store leaderboard.Store
	if settings.DBPath != "" {
		db, err := leaderboard.OpenSQLite(settings.DBPath)
		if err != nil {
			log.Fatalf("leaderboard: %v", err)
		}
		defer db.Close()
		store = db
		log.Printf("leaderboard at %s", settings.DBPath)
	} else {
		log.Printf("leaderboard disabled")
	}
	if settings.ReplayDir != "" {
		log.Printf("recording replays to %s", settings.ReplayDir)
	}

	srv := newServer(settings, cfg, leaderboard.NewService(store))
	httpSrv := &http.Server{
		Addr:              settings.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Printf("shutting down")
		srv.conns.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("server listening on %s (world %.0fx%.0f, %d fps)", settings.Addr, cfg.WorldWidth, cfg.WorldHeight, settings.FPS)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
