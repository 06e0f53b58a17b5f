// Package runner drives one table: it serialises engine access, asks agents
// for decisions outside the lock and enforces the action timeout.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokertable/internal/bot"
	"github.com/lox/pokertable/internal/game"
)

// EventType identifies what happened at a table.
type EventType string

const (
	EventHandStart    EventType = "hand_start"
	EventAction       EventType = "player_action"
	EventTimeout      EventType = "player_timeout"
	EventHandComplete EventType = "hand_end"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
)

// Event is published to subscribers after the table lock is released.
type Event struct {
	Type     EventType
	Table    string
	HandID   string
	PlayerID string
	Action   game.Action
	Amount   int // street total after the action
	Forced   bool
	Result   *game.HandResult
}

// Option configures a Runner.
type Option func(*Runner)

func WithClock(clock quartz.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithActionTimeout folds players who take longer than d to decide. Zero
// disables the timeout.
func WithActionTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithHandDelay pauses between hands.
func WithHandDelay(d time.Duration) Option {
	return func(r *Runner) { r.handDelay = d }
}

// WithWaitForPlayers makes Run wait for new players instead of returning
// game.ErrNotEnoughPlayers.
func WithWaitForPlayers() Option {
	return func(r *Runner) { r.wait = true }
}

// Runner owns a table. All engine calls go through its mutex.
type Runner struct {
	name      string
	clock     quartz.Clock
	logger    *log.Logger
	timeout   time.Duration
	handDelay time.Duration
	wait      bool

	mu      sync.Mutex
	table   *game.Table
	agents  map[string]bot.Agent
	leaving map[string]bool

	subMu       sync.RWMutex
	subscribers []func(Event)

	joined chan struct{}
}

// New wraps table. The runner must be the only caller of the table's
// mutating methods from then on.
func New(name string, table *game.Table, opts ...Option) *Runner {
	r := &Runner{
		name:    name,
		clock:   quartz.NewReal(),
		table:   table,
		agents:  make(map[string]bot.Agent),
		leaving: make(map[string]bool),
		joined:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	r.logger = r.logger.WithPrefix("runner").With("table", name)
	return r
}

func (r *Runner) Name() string { return r.name }

// Subscribe registers fn for every event. Callbacks run on the runner's
// goroutine and must not block.
func (r *Runner) Subscribe(fn func(Event)) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subscribers = append(r.subscribers, fn)
}

func (r *Runner) emit(e Event) {
	e.Table = r.name
	r.subMu.RLock()
	subs := r.subscribers
	r.subMu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}

// Seat adds a player controlled by agent. seat < 0 picks the lowest free seat.
func (r *Runner) Seat(id, name string, chips, seat int, agent bot.Agent) (*game.Player, error) {
	if agent == nil {
		return nil, fmt.Errorf("runner: player %s has no agent", id)
	}

	r.mu.Lock()
	var (
		p   *game.Player
		err error
	)
	if seat < 0 {
		p, err = r.table.AddPlayer(id, name, chips)
	} else {
		p, err = r.table.AddPlayerAt(id, name, chips, seat)
	}
	if err == nil {
		r.agents[id] = agent
	}
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case r.joined <- struct{}{}:
	default:
	}
	r.logger.Info("player seated", "player", id, "seat", p.Seat, "chips", chips)
	r.emit(Event{Type: EventPlayerJoined, PlayerID: id})
	return p, nil
}

// Leave removes a player. During a hand the player folds at their next
// turn and is removed once the hand completes.
func (r *Runner) Leave(id string) error {
	r.mu.Lock()
	if _, ok := r.agents[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", game.ErrUnknownPlayer, id)
	}
	if r.table.InHand() {
		r.leaving[id] = true
		r.agents[id] = bot.NewFoldBot(nil)
		r.mu.Unlock()
		r.logger.Info("player leaving after hand", "player", id)
		return nil
	}
	err := r.table.RemovePlayer(id)
	delete(r.agents, id)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.emit(Event{Type: EventPlayerLeft, PlayerID: id})
	return nil
}

// Snapshot returns the table as seen by viewer.
func (r *Runner) Snapshot(viewer string) game.TableView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table.Snapshot(viewer)
}

// Do runs fn with the table lock held.
func (r *Runner) Do(fn func(*game.Table) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.table)
}

// PlayHand starts a hand, unless one is already in progress, and drives
// it to completion.
func (r *Runner) PlayHand(ctx context.Context) (*game.HandResult, error) {
	r.mu.Lock()
	if !r.table.InHand() {
		if err := r.table.StartHand(); err != nil {
			r.mu.Unlock()
			return nil, err
		}
		handID := r.table.HandID()
		r.mu.Unlock()
		r.emit(Event{Type: EventHandStart, HandID: handID})
	} else {
		r.mu.Unlock()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.mu.Lock()
		if !r.table.InHand() {
			result := r.table.LastResult()
			left := r.removeLeavers()
			r.mu.Unlock()

			r.emit(Event{Type: EventHandComplete, HandID: result.HandID, Result: result})
			for _, id := range left {
				r.emit(Event{Type: EventPlayerLeft, PlayerID: id})
			}
			return result, nil
		}
		cur := r.table.CurrentPlayer()
		if cur == nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("table %s: hand %d in progress with nobody to act", r.name, r.table.HandNumber())
		}
		id := cur.ID
		view := r.table.Snapshot(id)
		agent := r.agents[id]
		r.mu.Unlock()

		if agent == nil {
			agent = bot.NewFoldBot(nil)
		}
		d, err := r.decide(ctx, agent, view)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := r.apply(view.HandID, id, d, err); err != nil {
			return nil, err
		}
	}
}

var errTimeout = errors.New("decision timed out")

// decide asks agent for a decision without holding the table lock.
func (r *Runner) decide(ctx context.Context, agent bot.Agent, view game.TableView) (bot.Decision, error) {
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var timer *quartz.Timer
	if r.timeout > 0 {
		timer = r.clock.AfterFunc(r.timeout, cancel, "runner", "decide")
	}
	d, err := agent.Decide(dctx, view)
	if timer != nil && !timer.Stop() {
		return bot.Decision{}, errTimeout
	}
	return d, err
}

// apply submits a decision. Timeouts, agent errors and rejected actions
// all end in a fold.
func (r *Runner) apply(handID, id string, d bot.Decision, decideErr error) error {
	r.mu.Lock()
	cur := r.table.CurrentPlayer()
	if !r.table.InHand() || r.table.HandID() != handID || cur == nil || cur.ID != id {
		r.mu.Unlock()
		r.logger.Debug("stale decision dropped", "player", id, "hand", handID)
		return nil
	}

	forced := decideErr != nil
	if decideErr != nil {
		r.logger.Warn("no decision, folding", "player", id, "error", decideErr)
	} else if err := r.table.ProcessAction(id, d.Action, d.Amount); err != nil {
		r.logger.Warn("action rejected, folding", "player", id, "action", d.Action, "amount", d.Amount, "error", err)
		forced = true
	}
	if forced {
		d = bot.Decision{Action: game.Fold}
		if err := r.table.ProcessAction(id, game.Fold, 0); err != nil {
			r.mu.Unlock()
			return fmt.Errorf("runner: force fold %s: %w", id, err)
		}
	}
	total := 0
	if p := r.table.Player(id); p != nil {
		total = p.CurrentBet
	}
	r.mu.Unlock()

	if errors.Is(decideErr, errTimeout) {
		r.emit(Event{Type: EventTimeout, HandID: handID, PlayerID: id})
	}
	r.emit(Event{Type: EventAction, HandID: handID, PlayerID: id, Action: d.Action, Amount: total, Forced: forced})
	return nil
}

// removeLeavers drops players who left mid-hand. Callers hold r.mu.
func (r *Runner) removeLeavers() []string {
	var left []string
	for id := range r.leaving {
		if err := r.table.RemovePlayer(id); err != nil {
			r.logger.Error("remove player", "player", id, "error", err)
			continue
		}
		delete(r.agents, id)
		delete(r.leaving, id)
		left = append(left, id)
	}
	return left
}

// Run plays hands until ctx is cancelled or maxHands complete (0 means no
// limit).
func (r *Runner) Run(ctx context.Context, maxHands int) error {
	for played := 0; maxHands <= 0 || played < maxHands; {
		_, err := r.PlayHand(ctx)
		switch {
		case errors.Is(err, game.ErrNotEnoughPlayers) && r.wait:
			r.logger.Debug("waiting for players")
			select {
			case <-r.joined:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		case err != nil:
			return err
		}
		played++

		if r.handDelay > 0 {
			t := r.clock.NewTimer(r.handDelay, "runner", "delay")
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
	}
	return nil
}
