package game

import (
	"github.com/lox/pokertable/poker"
)

// Status is the player's standing in the current hand.
type Status int

const (
	// Active players can still act.
	Active Status = iota
	// Folded players have surrendered their claim to every pot.
	Folded
	// StatusAllIn players have no chips behind and act no further.
	StatusAllIn
	// Out players were not dealt into the hand.
	Out
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Folded:
		return "folded"
	case StatusAllIn:
		return "all-in"
	case Out:
		return "out"
	}
	return "unknown"
}

// inHand reports whether the player still holds a claim to the pot.
func (s Status) inHand() bool {
	return s == Active || s == StatusAllIn
}

// Player represents a seated player
type Player struct {
	ID         string
	Name       string
	Seat       int
	Chips      int
	Status     Status
	CurrentBet int // chips committed on the current street
	TotalBet   int // chips committed this hand
	HoleCards  []poker.Card

	IsSmallBlind bool
	IsBigBlind   bool

	seated bool // seat chosen by the caller, exempt from random seating
}

// Bet moves up to amount chips from the stack into the player's bet and
// returns the chips actually moved. A bet that empties the stack puts the
// player all-in.
func (p *Player) Bet(amount int) int {
	if amount <= 0 {
		return 0
	}
	amount = min(amount, p.Chips)
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	if p.Chips == 0 && p.Status == Active {
		p.Status = StatusAllIn
	}
	return amount
}

// postAnte moves an ante into the pot. Antes never count towards the
// street bet.
func (p *Player) postAnte(amount int) int {
	amount = min(amount, p.Chips)
	if amount <= 0 {
		return 0
	}
	p.Chips -= amount
	p.TotalBet += amount
	if p.Chips == 0 && p.Status == Active {
		p.Status = StatusAllIn
	}
	return amount
}

// Fold gives up the hand.
func (p *Player) Fold() {
	p.Status = Folded
}

// ResetForNewHand clears per-hand state. A player without chips sits out.
func (p *Player) ResetForNewHand() {
	p.CurrentBet = 0
	p.TotalBet = 0
	p.HoleCards = nil
	p.IsSmallBlind = false
	p.IsBigBlind = false
	if p.Chips > 0 {
		p.Status = Active
	} else {
		p.Status = Out
	}
}

func (p *Player) resetForStreet() {
	p.CurrentBet = 0
}
