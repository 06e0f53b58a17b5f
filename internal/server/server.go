// Package server exposes tables over WebSocket.
package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/pokertable/internal/runner"
)

// Option configures a Server.
type Option func(*Server)

// WithActionTimeout is reported to clients in action_required. The runner
// enforces it.
func WithActionTimeout(d time.Duration) Option {
	return func(s *Server) { s.actionTimeout = d }
}

// WithDefaultBuyIn is used when a join request has no buy-in.
func WithDefaultBuyIn(chips int) Option {
	return func(s *Server) { s.defaultBuyIn = chips }
}

// Server accepts WebSocket clients and seats them at runner-managed tables.
type Server struct {
	logger        *log.Logger
	upgrader      websocket.Upgrader
	actionTimeout time.Duration
	defaultBuyIn  int

	mu          sync.RWMutex
	connections map[*Connection]bool
	players     map[string]*Connection
	tables      map[string]*runner.Runner
}

func New(logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		defaultBuyIn: 1000,
		connections:  make(map[*Connection]bool),
		players:      make(map[string]*Connection),
		tables:       make(map[string]*runner.Runner),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTable publishes a table and forwards its events to seated clients.
func (s *Server) AddTable(r *runner.Runner) {
	s.mu.Lock()
	s.tables[r.Name()] = r
	s.mu.Unlock()
	r.Subscribe(s.onEvent)
}

func (s *Server) Table(name string) *runner.Runner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[name]
}

// ListTables describes every table, sorted by name.
func (s *Server) ListTables() []TableInfo {
	s.mu.RLock()
	runners := make([]*runner.Runner, 0, len(s.tables))
	for _, r := range s.tables {
		runners = append(runners, r)
	}
	s.mu.RUnlock()

	infos := make([]TableInfo, 0, len(runners))
	for _, r := range runners {
		view := r.Snapshot("")
		infos = append(infos, TableInfo{
			ID:         r.Name(),
			Structure:  view.Structure,
			Stakes:     fmt.Sprintf("%d/%d", view.SmallBlind, view.BigBlind),
			Players:    len(view.Players),
			HandNumber: view.HandNumber,
		})
	}
	slices.SortFunc(infos, func(a, b TableInfo) int { return cmp.Compare(a.ID, b.ID) })
	return infos
}

// Handler serves /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then closes every client.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) closeAll() {
	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	c := newConnection(ws, s)
	s.mu.Lock()
	s.connections[c] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client connected", "conn", c.id, "total", total)

	c.start()
	go func() {
		<-c.ctx.Done()
		s.unregister(c)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

func (s *Server) claimPlayer(name string, c *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.players[name]; taken {
		return false
	}
	s.players[name] = c
	return true
}

func (s *Server) unregister(c *Connection) {
	if err := c.leave(); err != nil {
		s.logger.Warn("leave on disconnect", "player", c.player(), "error", err)
	}

	s.mu.Lock()
	delete(s.connections, c)
	if id := c.player(); id != "" && s.players[id] == c {
		delete(s.players, id)
	}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "conn", c.id, "total", total)
}

func (s *Server) timeoutSeconds() int {
	return int(s.actionTimeout / time.Second)
}

// tableConnections returns the clients seated at table.
func (s *Server) tableConnections(table string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var conns []*Connection
	for c := range s.connections {
		if c.table() == table {
			conns = append(conns, c)
		}
	}
	return conns
}

func (s *Server) onEvent(e runner.Event) {
	conns := s.tableConnections(e.Table)
	if len(conns) == 0 {
		return
	}

	var (
		typ  MessageType
		data any
	)
	switch e.Type {
	case runner.EventHandStart:
		typ, data = MessageTypeHandStart, HandStartData{TableID: e.Table, HandID: e.HandID}
	case runner.EventAction:
		typ, data = MessageTypePlayerAction, PlayerActionData{
			TableID:  e.Table,
			HandID:   e.HandID,
			PlayerID: e.PlayerID,
			Action:   e.Action,
			Total:    e.Amount,
			Forced:   e.Forced,
		}
	case runner.EventTimeout:
		typ, data = MessageTypePlayerTimeout, PlayerTimeoutData{TableID: e.Table, PlayerID: e.PlayerID}
	case runner.EventHandComplete:
		if e.Result != nil {
			typ, data = MessageTypeHandEnd, HandEndFromResult(e.Table, e.Result)
		}
	}

	var msg *Message
	if typ != "" {
		m, err := NewMessage(typ, data)
		if err != nil {
			s.logger.Error("encode event", "type", typ, "error", err)
			return
		}
		msg = m
	}

	r := s.Table(e.Table)
	for _, c := range conns {
		if msg != nil {
			_ = c.SendMessage(msg)
		}
		if r != nil && e.Type != runner.EventTimeout {
			c.reply(MessageTypeTableState, TableStateData{TableID: e.Table, State: r.Snapshot(c.player())})
		}
	}
	s.logger.Debug("broadcast event", "table", e.Table, "type", e.Type, "recipients", len(conns))
}
