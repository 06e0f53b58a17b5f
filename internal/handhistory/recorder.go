// Package handhistory writes completed hands to PHH session files.
package handhistory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/phh"
	"github.com/lox/pokertable/poker"
)

const (
	defaultFilename  = "session.phhs"
	maxFlushFailures = 3
)

// Config configures a per-table recorder.
type Config struct {
	Table            string
	OutputDir        string
	Filename         string
	FlushHands       int // buffered hands that trigger a flush; 0 flushes only on demand
	IncludeHoleCards bool
	Clock            quartz.Clock
}

// Recorder implements game.HandHistoryRecorder, buffering hands in memory
// and appending them as numbered sections to a .phhs file.
type Recorder struct {
	cfg     Config
	logger  *log.Logger
	clock   quartz.Clock
	outPath string

	mu                  sync.Mutex
	flushMu             sync.Mutex
	buffer              []*phh.HandHistory
	current             *handState
	flushNotifier       func()
	consecutiveFailures int
	disabled            bool
	sectionCounter      int
}

type handState struct {
	id        string
	history   *phh.HandHistory
	index     map[string]int // player ID to PHH player index
	streetBet int
}

var _ game.HandHistoryRecorder = (*Recorder)(nil)

// NewRecorder constructs a recorder for one table.
func NewRecorder(cfg Config, logger *log.Logger) (*Recorder, error) {
	if cfg.Table == "" {
		return nil, errors.New("handhistory: Table is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("handhistory: OutputDir is required")
	}
	if cfg.Filename == "" {
		cfg.Filename = defaultFilename
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("handhistory: create dir: %w", err)
	}

	outPath := filepath.Join(cfg.OutputDir, cfg.Filename)
	counter, err := readLastSectionCounter(outPath)
	if err != nil {
		return nil, fmt.Errorf("handhistory: read sections: %w", err)
	}

	return &Recorder{
		cfg:            cfg,
		logger:         logger.WithPrefix("handhistory"),
		clock:          cfg.Clock,
		outPath:        outPath,
		buffer:         make([]*phh.HandHistory, 0, max(1, cfg.FlushHands)),
		sectionCounter: counter,
	}, nil
}

// Path is the session file hands are appended to.
func (r *Recorder) Path() string { return r.outPath }

// SetFlushNotifier registers a callback invoked when the buffer is full.
// Without one the recorder flushes inline.
func (r *Recorder) SetFlushNotifier(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushNotifier = fn
}

// StartHand begins a new hand. Players are indexed from the small blind
// round to the button.
func (r *Recorder) StartHand(start game.HandStart) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disabled {
		return start.HandID, nil
	}

	seats := positionOrder(start.Seats, start.Button)
	n := len(seats)
	history := &phh.HandHistory{
		Variant:           variant(start.Structure),
		Table:             r.cfg.Table,
		SeatCount:         n,
		Seats:             make([]int, n),
		Antes:             make([]int, n),
		BlindsOrStraddles: make([]int, n),
		MinBet:            start.BigBlind,
		StartingStacks:    make([]int, n),
		FinishingStacks:   make([]int, n),
		Winnings:          make([]int, n),
		Actions:           make([]string, 0, n+16),
		Players:           make([]string, n),
		HandID:            start.HandID,
	}
	history.SetTime(r.clock.Now())

	state := &handState{id: start.HandID, history: history, index: make(map[string]int, n)}
	for i, s := range seats {
		state.index[s.PlayerID] = i
		history.Seats[i] = s.Seat + 1
		history.Antes[i] = start.Antes[s.PlayerID]
		history.BlindsOrStraddles[i] = start.Blinds[s.PlayerID]
		history.StartingStacks[i] = s.Chips
		history.FinishingStacks[i] = s.Chips
		history.Players[i] = s.Name
		state.streetBet = max(state.streetBet, start.Blinds[s.PlayerID])
	}
	for i, s := range seats {
		var hole []poker.Card
		if r.cfg.IncludeHoleCards {
			hole = s.HoleCards
		}
		history.Actions = append(history.Actions, phh.DealHole(i, hole))
	}

	r.current = state
	return start.HandID, nil
}

// RecordAction appends a player action.
func (r *Recorder) RecordAction(handID string, action game.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.hand(handID)
	if state == nil {
		return nil
	}

	idx, ok := state.index[action.PlayerID]
	if !ok {
		return fmt.Errorf("handhistory: player %s not dealt into hand %s", action.PlayerID, handID)
	}
	raised := action.Total > state.streetBet
	if raised {
		state.streetBet = action.Total
	}
	if line, ok := phh.FormatAction(idx, action.Action.String(), action.Total, raised); ok {
		state.history.Actions = append(state.history.Actions, line)
	}
	return nil
}

// RecordCommunityCards appends the cards that are new since the last street.
func (r *Recorder) RecordCommunityCards(handID string, street game.Street, cards []poker.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.hand(handID)
	if state == nil {
		return nil
	}

	prev := min(len(state.history.Board), len(cards))
	if fresh := cards[prev:]; len(fresh) > 0 {
		state.history.Actions = append(state.history.Actions, phh.DealBoard(fresh))
	}
	state.history.Board = state.history.Board[:0]
	for _, c := range cards {
		state.history.Board = append(state.history.Board, c.String())
	}
	state.streetBet = 0
	return nil
}

// RecordPotResults adds showdown reveals, winnings and rake.
func (r *Recorder) RecordPotResults(handID string, result *game.HandResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.hand(handID)
	if state == nil || result == nil {
		return nil
	}

	hist := state.history
	shown := slices.Collect(maps.Keys(result.Shown))
	slices.SortFunc(shown, func(a, b string) int { return state.index[a] - state.index[b] })
	for _, id := range shown {
		if idx, ok := state.index[id]; ok {
			hist.Actions = append(hist.Actions, phh.ShowCards(idx, result.Shown[id]))
		}
	}
	for id, won := range result.Winnings {
		if idx, ok := state.index[id]; ok {
			hist.Winnings[idx] = won
		}
	}
	hist.Rake = result.Rake
	return nil
}

// EndHand records finishing stacks and buffers the hand.
func (r *Recorder) EndHand(handID string, finalStacks map[string]int) error {
	r.mu.Lock()
	state := r.hand(handID)
	if state == nil {
		r.mu.Unlock()
		return nil
	}
	for id, chips := range finalStacks {
		if idx, ok := state.index[id]; ok {
			state.history.FinishingStacks[idx] = chips
		}
	}
	r.buffer = append(r.buffer, state.history)
	r.current = nil
	full := r.cfg.FlushHands > 0 && len(r.buffer) >= r.cfg.FlushHands
	notify := r.flushNotifier
	r.mu.Unlock()

	if !full {
		return nil
	}
	if notify != nil {
		notify()
		return nil
	}
	err := r.Flush()
	if disabled, dropped := r.HandleFlushResult(err); disabled {
		r.logger.Error("hand history disabled after repeated failures", "table", r.cfg.Table, "dropped_hands", dropped)
	}
	return err
}

// hand returns the in-progress hand if it matches handID.
func (r *Recorder) hand(handID string) *handState {
	if r.disabled || r.current == nil || r.current.id != handID {
		return nil
	}
	return r.current
}

// Buffered reports the number of hands waiting to be flushed.
func (r *Recorder) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Flush appends buffered hands to the session file.
func (r *Recorder) Flush() error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	if r.disabled || len(r.buffer) == 0 {
		r.mu.Unlock()
		return nil
	}
	hands := slices.Clone(r.buffer)
	lastSection := r.sectionCounter
	r.mu.Unlock()

	file, err := os.OpenFile(r.outPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("handhistory: open %s: %w", r.outPath, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, hand := range hands {
		if err := phh.WriteSection(w, lastSection+1, hand); err != nil {
			return fmt.Errorf("handhistory: write hand %s: %w", hand.HandID, err)
		}
		lastSection++
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("handhistory: write %s: %w", r.outPath, err)
	}

	r.mu.Lock()
	r.buffer = r.buffer[len(hands):]
	r.sectionCounter = lastSection
	r.mu.Unlock()

	r.logger.Debug("flushed hands", "table", r.cfg.Table, "hands", len(hands), "last_section", lastSection)
	return nil
}

// Close flushes remaining hands.
func (r *Recorder) Close() error {
	return r.Flush()
}

// HandleFlushResult tracks consecutive failures. After three in a row the
// buffer is dropped and the recorder stops recording.
func (r *Recorder) HandleFlushResult(err error) (disabled bool, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		r.consecutiveFailures = 0
		return false, 0
	}
	r.consecutiveFailures++
	if r.consecutiveFailures < maxFlushFailures {
		return false, 0
	}
	dropped = len(r.buffer)
	r.buffer = nil
	r.current = nil
	r.disabled = true
	return true, dropped
}

// IsDisabled reports whether recording stopped after repeated failures.
func (r *Recorder) IsDisabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

func variant(s game.Structure) string {
	switch s {
	case game.PotLimit:
		return phh.PotLimitTexasHoldem
	case game.FixedLimit:
		return phh.FixedLimitTexasHoldem
	default:
		return phh.NoLimitTexasHoldem
	}
}

// positionOrder sorts dealt-in seats starting with the small blind. Heads-up
// the button posts the small blind.
func positionOrder(seats []game.SeatInfo, button int) []game.SeatInfo {
	order := slices.Clone(seats)
	slices.SortFunc(order, func(a, b game.SeatInfo) int { return a.Seat - b.Seat })

	start := 0
	for i, s := range order {
		if s.Seat > button {
			start = i
			break
		}
	}
	if len(order) == 2 {
		for i, s := range order {
			if s.Seat == button {
				start = i
			}
		}
	}
	return slices.Concat(order[start:], order[:start])
}

func readLastSectionCounter(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	last := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) >= 3 && line[0] == '[' && line[len(line)-1] == ']' {
			if n, err := strconv.Atoi(line[1 : len(line)-1]); err == nil && n > last {
				last = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return last, nil
}
