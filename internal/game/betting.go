package game

import (
	"fmt"
	"strings"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	if s < Preflop || s > Showdown {
		return "unknown"
	}
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// boardSize is the number of community cards visible on the street.
func (s Street) boardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River, Showdown:
		return 5
	}
	return 0
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a Action) String() string {
	if a < Fold || a > AllIn {
		return "unknown"
	}
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction converts the wire vocabulary back into an Action.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet":
		return Bet, nil
	case "raise":
		return Raise, nil
	case "allin", "all-in", "all_in":
		return AllIn, nil
	}
	return Fold, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Structure is the betting structure that bounds bet and raise sizes.
type Structure int

const (
	NoLimit Structure = iota
	PotLimit
	FixedLimit
)

func (s Structure) String() string {
	switch s {
	case NoLimit:
		return "no-limit"
	case PotLimit:
		return "pot-limit"
	case FixedLimit:
		return "fixed-limit"
	}
	return "unknown"
}

// ParseStructure accepts the names produced by String.
func ParseStructure(s string) (Structure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "no-limit", "nl", "nolimit":
		return NoLimit, nil
	case "pot-limit", "pl", "potlimit":
		return PotLimit, nil
	case "fixed-limit", "limit", "fl", "fixedlimit":
		return FixedLimit, nil
	}
	return NoLimit, fmt.Errorf("unknown betting structure %q", s)
}

// fixedLimitCap is the number of bets and raises allowed per street in fixed-limit.
const fixedLimitCap = 4

// ValidAction represents an action that a player can legally take.
// For Bet and Raise the amounts are street totals ("raise to"); for Call
// and AllIn they are the chips the action moves.
type ValidAction struct {
	Action    Action `json:"action"`
	MinAmount int    `json:"min_amount"`
	MaxAmount int    `json:"max_amount"`
}

// bettingRound holds the per-street betting state.
type bettingRound struct {
	currentBet    int             // highest per-street contribution
	minRaise      int             // size of the last full bet or raise
	bets          int             // full bets and raises this street (fixed-limit cap)
	toAct         map[string]bool // players who have not closed action
	lastAggressor string
}

func newBettingRound(bigBlind int) bettingRound {
	return bettingRound{
		minRaise: bigBlind,
		toAct:    make(map[string]bool),
	}
}

// reopen resets to_act to every other Active player after a bet or raise.
func (br *bettingRound) reopen(aggressor *Player, players []*Player) {
	clear(br.toAct)
	for _, p := range players {
		if p != aggressor && p.Status == Active {
			br.toAct[p.ID] = true
		}
	}
	br.lastAggressor = aggressor.ID
}

// limits describes the legal sizes for one player under a structure.
type limits struct {
	structure Structure
	bigBlind  int
	street    Street
	potTotal  int // every chip committed this hand, including this street
}

// increment is the fixed-limit bet size for the street.
func (l limits) increment() int {
	if l.street >= Turn {
		return 2 * l.bigBlind
	}
	return l.bigBlind
}

// maxRaiseTo returns the largest street total the player may bet or raise to.
func (l limits) maxRaiseTo(br *bettingRound, p *Player) int {
	stack := p.CurrentBet + p.Chips
	switch l.structure {
	case PotLimit:
		toCall := br.currentBet - p.CurrentBet
		return min(stack, br.currentBet+l.potTotal+toCall)
	case FixedLimit:
		if br.bets >= fixedLimitCap {
			return min(stack, br.currentBet)
		}
		return min(stack, br.currentBet+l.increment())
	}
	return stack
}

// validActions computes the legal actions for p. It has no side effects.
func (l limits) validActions(br *bettingRound, p *Player) []ValidAction {
	if p == nil || p.Status != Active {
		return nil
	}

	actions := []ValidAction{{Action: Fold}}
	toCall := br.currentBet - p.CurrentBet
	stack := p.CurrentBet + p.Chips
	maxTo := l.maxRaiseTo(br, p)

	if toCall <= 0 {
		actions = append(actions, ValidAction{Action: Check})
	} else {
		call := min(toCall, p.Chips)
		actions = append(actions, ValidAction{Action: Call, MinAmount: call, MaxAmount: call})
	}

	switch {
	case br.currentBet == 0 && p.Chips > 0:
		minBet := l.bigBlind
		if l.structure == FixedLimit {
			minBet = l.increment()
		}
		if minBet <= maxTo {
			actions = append(actions, ValidAction{Action: Bet, MinAmount: minBet, MaxAmount: fixedOr(l, minBet, maxTo)})
		}
	case br.currentBet > 0 && p.Chips > toCall:
		minTo := br.currentBet + br.minRaise
		if minTo <= maxTo {
			actions = append(actions, ValidAction{Action: Raise, MinAmount: minTo, MaxAmount: fixedOr(l, minTo, maxTo)})
		}
	}

	// Limit structures only allow an all-in that fits under the cap.
	if p.Chips > 0 && (l.structure == NoLimit || stack <= maxTo) {
		actions = append(actions, ValidAction{Action: AllIn, MinAmount: p.Chips, MaxAmount: p.Chips})
	}

	return actions
}

func fixedOr(l limits, minTo, maxTo int) int {
	if l.structure == FixedLimit {
		return minTo
	}
	return maxTo
}

func findAction(actions []ValidAction, action Action) (ValidAction, bool) {
	for _, va := range actions {
		if va.Action == action {
			return va, true
		}
	}
	return ValidAction{}, false
}
