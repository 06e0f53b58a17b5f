package server

import (
	"context"
	"errors"
	"sync"

	"github.com/lox/pokertable/internal/bot"
	"github.com/lox/pokertable/internal/game"
)

var (
	errNoDecisionPending = errors.New("no decision pending")
	errAlreadyDecided    = errors.New("decision already submitted")
	errSeatAbandoned     = errors.New("player left the table")
)

// RemoteAgent is a bot.Agent whose decisions arrive over a connection.
type RemoteAgent struct {
	conn           *Connection
	tableID        string
	timeoutSeconds int

	mu      sync.Mutex
	pending chan bot.Decision
	gone    chan struct{}
}

var _ bot.Agent = (*RemoteAgent)(nil)

func newRemoteAgent(conn *Connection, tableID string, timeoutSeconds int) *RemoteAgent {
	return &RemoteAgent{conn: conn, tableID: tableID, timeoutSeconds: timeoutSeconds, gone: make(chan struct{})}
}

// Decide sends action_required and waits for the client's answer.
func (a *RemoteAgent) Decide(ctx context.Context, view game.TableView) (bot.Decision, error) {
	ch := make(chan bot.Decision, 1)
	a.mu.Lock()
	a.pending = ch
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.pending = nil
		a.mu.Unlock()
	}()

	msg, err := NewMessage(MessageTypeActionRequired, ActionRequiredData{
		TableID:        a.tableID,
		State:          view,
		TimeoutSeconds: a.timeoutSeconds,
	})
	if err != nil {
		return bot.Decision{}, err
	}
	if err := a.conn.SendMessage(msg); err != nil {
		return bot.Decision{}, err
	}

	select {
	case d := <-ch:
		return d, nil
	case <-ctx.Done():
		return bot.Decision{}, ctx.Err()
	case <-a.conn.ctx.Done():
		return bot.Decision{}, ErrConnectionClosed
	case <-a.gone:
		return bot.Decision{}, errSeatAbandoned
	}
}

// Submit delivers the client's decision to a waiting Decide.
func (a *RemoteAgent) Submit(d bot.Decision) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return errNoDecisionPending
	}
	select {
	case a.pending <- d:
		return nil
	default:
		return errAlreadyDecided
	}
}

func (a *RemoteAgent) abandon() {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.gone:
	default:
		close(a.gone)
	}
}
