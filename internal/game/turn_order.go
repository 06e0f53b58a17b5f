package game

// Turn order is derived from seats and statuses alone. The engine never
// stores a "current player" index; it stores the phase below and recomputes
// the next actor by walking clockwise.

// Phase is the table's turn state.
type Phase interface {
	phase()
}

// WaitingForHand means no hand is in progress.
type WaitingForHand struct{}

// AwaitingAction means the hand is waiting on PlayerID.
type AwaitingAction struct {
	PlayerID string
}

// HandComplete means the last hand finished with Result.
type HandComplete struct {
	Result *HandResult
}

func (WaitingForHand) phase() {}
func (AwaitingAction) phase() {}
func (HandComplete) phase()   {}

// clockwiseFrom returns players ordered by seat starting at the first seat
// at or after start, wrapping around the table. players must be sorted by seat.
func clockwiseFrom(players []*Player, start int) []*Player {
	if len(players) == 0 {
		return nil
	}
	idx := 0
	for idx < len(players) && players[idx].Seat < start {
		idx++
	}
	ordered := make([]*Player, 0, len(players))
	for i := range players {
		ordered = append(ordered, players[(idx+i)%len(players)])
	}
	return ordered
}

// clockwiseAfter is clockwiseFrom starting one seat past seat.
func clockwiseAfter(players []*Player, seat int) []*Player {
	return clockwiseFrom(players, seat+1)
}

// nextDealtIn returns the first dealt-in player strictly clockwise of seat.
func nextDealtIn(players []*Player, seat int) *Player {
	for _, p := range clockwiseAfter(players, seat) {
		if p.Status != Out {
			return p
		}
	}
	return nil
}

// nextToAct walks clockwise from start (inclusive) and returns the first
// Active player still in toAct.
func nextToAct(players []*Player, start int, toAct map[string]bool) *Player {
	for _, p := range clockwiseFrom(players, start) {
		if p.Status == Active && toAct[p.ID] {
			return p
		}
	}
	return nil
}

// actionAnchor returns the seat the first-to-act search starts from.
//
// Preflop heads-up the button (small blind) acts first. Preflop with three
// or more the player after the big blind acts first. Postflop the first
// seat after the button acts first.
func actionAnchor(street Street, button, bigBlindSeat int, headsUp bool) int {
	switch {
	case street == Preflop && headsUp:
		return button
	case street == Preflop:
		return bigBlindSeat + 1
	default:
		return button + 1
	}
}
