package handhistory

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// ManagerConfig configures recorders for every table on a server.
type ManagerConfig struct {
	BaseDir          string
	FlushInterval    time.Duration
	FlushHands       int
	IncludeHoleCards bool
	Clock            quartz.Clock
}

// Manager owns one recorder per table and flushes them on a ticker or when
// a recorder's buffer fills.
type Manager struct {
	cfg    ManagerConfig
	logger *log.Logger
	ticker *quartz.Ticker

	mu        sync.RWMutex
	recorders map[string]*Recorder
	flushReq  chan struct{}
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewManager creates and starts a manager.
func NewManager(logger *log.Logger, cfg ManagerConfig) *Manager {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "hands"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.FlushHands <= 0 {
		cfg.FlushHands = 100
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Manager{
		cfg:       cfg,
		logger:    logger,
		ticker:    cfg.Clock.NewTicker(cfg.FlushInterval, "handhistory", "flush"),
		recorders: make(map[string]*Recorder),
		flushReq:  make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

// Shutdown stops the flush loop and flushes every recorder.
func (m *Manager) Shutdown() {
	close(m.stop)
	m.wg.Wait()
	m.flushAll()

	m.mu.Lock()
	recorders := m.recorders
	m.recorders = make(map[string]*Recorder)
	m.mu.Unlock()

	for table, r := range recorders {
		if err := r.Close(); err != nil {
			m.logger.Error("hand history flush on shutdown failed", "table", table, "error", err)
		}
	}
}

// CreateRecorder registers a recorder writing to <BaseDir>/table-<name>.
func (m *Manager) CreateRecorder(table string) (*Recorder, error) {
	m.mu.RLock()
	_, exists := m.recorders[table]
	m.mu.RUnlock()
	if exists {
		return nil, fmt.Errorf("handhistory: recorder for %s already exists", table)
	}

	r, err := NewRecorder(Config{
		Table:            table,
		OutputDir:        filepath.Join(m.cfg.BaseDir, "table-"+table),
		FlushHands:       m.cfg.FlushHands,
		IncludeHoleCards: m.cfg.IncludeHoleCards,
		Clock:            m.cfg.Clock,
	}, m.logger.With("table", table))
	if err != nil {
		return nil, err
	}
	r.SetFlushNotifier(m.requestFlush)

	m.mu.Lock()
	m.recorders[table] = r
	m.mu.Unlock()
	return r, nil
}

// RemoveRecorder flushes and unregisters a table's recorder.
func (m *Manager) RemoveRecorder(table string) {
	m.mu.Lock()
	r, ok := m.recorders[table]
	delete(m.recorders, table)
	m.mu.Unlock()

	if ok {
		if err := r.Close(); err != nil {
			m.logger.Error("hand history flush on remove failed", "table", table, "error", err)
		}
	}
}

func (m *Manager) run() {
	defer m.wg.Done()
	defer m.ticker.Stop()

	for {
		select {
		case <-m.ticker.C:
			m.flushAll()
		case <-m.flushReq:
			m.flushAll()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) requestFlush() {
	select {
	case m.flushReq <- struct{}{}:
	default:
	}
}

func (m *Manager) flushAll() {
	m.mu.RLock()
	snapshot := maps.Clone(m.recorders)
	m.mu.RUnlock()

	for table, r := range snapshot {
		err := r.Flush()
		if err != nil {
			m.logger.Error("hand history flush failed", "table", table, "error", err)
		}
		if disabled, dropped := r.HandleFlushResult(err); disabled {
			m.logger.Error("hand history recording disabled after repeated failures",
				"table", table, "dropped_hands", dropped)
			m.mu.Lock()
			delete(m.recorders, table)
			m.mu.Unlock()
		}
	}
}
