package game

import (
	"fmt"
)

func (t *Table) limits() limits {
	return limits{
		structure: t.cfg.Structure,
		bigBlind:  t.cfg.BigBlind,
		street:    t.street,
		potTotal:  t.Pot(),
	}
}

// GetValidActions returns the actions the player may legally take right
// now, ignoring whose turn it is. It returns nil for players who cannot act.
func (t *Table) GetValidActions(playerID string) []ValidAction {
	if !t.inHand {
		return nil
	}
	return t.limits().validActions(&t.round, t.Player(playerID))
}

// ProcessAction applies a player's action. For Bet and Raise, amount is
// the street total to bet or raise to; it is ignored for other actions.
// A rejected action returns an *ActionError and leaves the table unchanged.
func (t *Table) ProcessAction(playerID string, action Action, amount int) error {
	if !t.inHand {
		return rejectAction(playerID, action, amount, ErrNoHandInProgress)
	}
	p := t.Player(playerID)
	if p == nil {
		return rejectAction(playerID, action, amount, ErrUnknownPlayer)
	}
	if aw, ok := t.phase.(AwaitingAction); !ok || aw.PlayerID != playerID {
		return rejectAction(playerID, action, amount, ErrNotYourTurn)
	}
	if !t.round.toAct[playerID] {
		return rejectAction(playerID, action, amount, ErrNotInToAct)
	}
	if p.Status != Active {
		return rejectAction(playerID, action, amount, ErrPlayerNotActive)
	}

	valid := t.limits().validActions(&t.round, p)
	if action == Bet || action == Raise {
		if amount <= 0 {
			return rejectAction(playerID, action, amount, ErrInvalidAmount)
		}
		// Betting the whole stack is an all-in, even below the minimum.
		if _, ok := findAction(valid, AllIn); ok && amount == p.CurrentBet+p.Chips && amount > t.round.currentBet {
			action = AllIn
		}
	}

	va, ok := findAction(valid, action)
	if !ok {
		return rejectAction(playerID, action, amount, fmt.Errorf("%w: %s not available", ErrInvalidAction, action))
	}
	if action == Bet || action == Raise {
		if amount < va.MinAmount {
			return rejectAction(playerID, action, amount, fmt.Errorf("%w: minimum is %d", ErrBetTooSmall, va.MinAmount))
		}
		if amount > va.MaxAmount {
			return rejectAction(playerID, action, amount, fmt.Errorf("%w: maximum is %d", ErrBetTooLarge, va.MaxAmount))
		}
	}

	moved := 0
	switch action {
	case Fold:
		p.Fold()
		delete(t.round.toAct, playerID)
	case Check:
		delete(t.round.toAct, playerID)
	case Call:
		moved = p.Bet(va.MinAmount)
		delete(t.round.toAct, playerID)
	case Bet, Raise:
		moved = p.Bet(amount - p.CurrentBet)
		t.raise(p)
	case AllIn:
		moved = p.Bet(p.Chips)
		if p.CurrentBet > t.round.currentBet {
			t.raise(p)
		} else {
			delete(t.round.toAct, playerID)
		}
	}
	t.recomputePots()

	t.logger.Debug("action",
		"hand", t.handID,
		"street", t.street,
		"player", playerID,
		"action", action,
		"amount", moved,
		"total", p.CurrentBet,
		"pot", t.Pot())

	record := ActionRecord{
		PlayerID: playerID,
		Seat:     p.Seat,
		Street:   t.street,
		Action:   action,
		Amount:   moved,
		Total:    p.CurrentBet,
	}
	t.record("action", func(r HandHistoryRecorder) error {
		return r.RecordAction(t.handID, record)
	})

	return t.advance(p.Seat + 1)
}

// raise applies a bet or raise by p to the street. Only a full raise moves
// the minimum raise; any raise reopens the action.
func (t *Table) raise(p *Player) {
	size := p.CurrentBet - t.round.currentBet
	if size >= t.round.minRaise {
		t.round.minRaise = size
		t.round.bets++
	}
	t.round.currentBet = p.CurrentBet
	t.round.reopen(p, t.players)
}
