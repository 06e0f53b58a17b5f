package game

import (
	"fmt"

	"github.com/lox/pokertable/poker"
)

// StartHand deals a new hand. It fails without touching table state if
// fewer than two players have chips or the deck cannot cover the hand.
func (t *Table) StartHand() error {
	if t.inHand {
		return ErrHandInProgress
	}
	if err := t.cfg.Validate(); err != nil {
		return err
	}

	withChips := 0
	for _, p := range t.players {
		if p.Chips > 0 {
			withChips++
		}
	}
	if withChips < 2 {
		return fmt.Errorf("%w: %d of %d seated players have chips", ErrNotEnoughPlayers, withChips, len(t.players))
	}

	// Draw every card the hand can use before changing anything.
	t.deck.Shuffle()
	cards := make([]poker.Card, 0, 2*withChips+River.boardSize()+burnCount)
	for len(cards) < cap(cards) {
		card, ok := t.deck.Draw()
		if !ok {
			return fmt.Errorf("%w: %d players need %d cards, got %d", ErrDeckExhausted, withChips, cap(cards), len(cards))
		}
		cards = append(cards, card)
	}

	if !t.seatingDone {
		if t.cfg.RandomSeating {
			t.randomizeSeats()
		}
		t.seatingDone = true
	}

	for _, p := range t.players {
		p.ResetForNewHand()
	}

	t.handNumber++
	t.handID = t.newHandID()
	t.headsUp = withChips == 2
	t.street = Preflop
	t.board = t.board[:0]
	t.round = newBettingRound(t.cfg.BigBlind)
	t.pots = []Pot{{Name: potName(0)}}
	t.last = nil
	t.moveButton()

	logger := t.logger.With("hand", t.handID)
	logger.Debug("starting hand", "number", t.handNumber, "button", t.button, "players", withChips)

	t.dealHoleCards(cards[:2*withChips])
	t.stub = cards[2*withChips:]

	// Stacks before any forced bets, for the hand history.
	seats := make([]SeatInfo, 0, withChips)
	for _, p := range t.players {
		if p.Status != Out {
			seats = append(seats, SeatInfo{PlayerID: p.ID, Name: p.Name, Seat: p.Seat, Chips: p.Chips, HoleCards: append([]poker.Card(nil), p.HoleCards...)})
		}
	}

	antes := t.postAntes()
	blinds := t.postBlinds()
	t.inHand = true

	for _, p := range t.players {
		if p.Status == Active {
			t.round.toAct[p.ID] = true
		}
	}
	t.recomputePots()

	t.record("start hand", func(r HandHistoryRecorder) error {
		id, err := r.StartHand(HandStart{
			HandID:     t.handID,
			HandNumber: t.handNumber,
			Structure:  t.cfg.Structure,
			Button:     t.button,
			SmallBlind: t.cfg.SmallBlind,
			BigBlind:   t.cfg.BigBlind,
			Ante:       t.cfg.Ante,
			Seats:      seats,
			Blinds:     blinds,
			Antes:      antes,
		})
		if err == nil && id != "" {
			t.handID = id
		}
		return err
	})

	return t.advance(actionAnchor(Preflop, t.button, t.bigBlindSeat, t.headsUp))
}

// moveButton places the button for the hand about to start.
func (t *Table) moveButton() {
	if t.button < 0 {
		if t.firstButton >= 0 {
			if p := t.playerAt(t.firstButton); p != nil && p.Status != Out {
				t.button = p.Seat
				return
			}
			t.button = nextDealtIn(t.players, t.firstButton).Seat
			return
		}
		var dealt []*Player
		for _, p := range t.players {
			if p.Status != Out {
				dealt = append(dealt, p)
			}
		}
		t.button = dealt[t.rng.IntN(len(dealt))].Seat
		return
	}
	t.button = nextDealtIn(t.players, t.button).Seat
}

// dealHoleCards deals two rounds of one card, starting left of the button.
func (t *Table) dealHoleCards(cards []poker.Card) {
	order := clockwiseAfter(t.players, t.button)
	for range 2 {
		for _, p := range order {
			if p.Status == Out {
				continue
			}
			p.HoleCards = append(p.HoleCards, cards[0])
			cards = cards[1:]
		}
	}
}

func (t *Table) postAntes() map[string]int {
	if t.cfg.Ante == 0 {
		return nil
	}
	antes := make(map[string]int)
	for _, p := range t.players {
		if p.Status != Out {
			antes[p.ID] = p.postAnte(t.cfg.Ante)
		}
	}
	return antes
}

// postBlinds posts the blinds. Heads-up the button posts the small blind.
func (t *Table) postBlinds() map[string]int {
	sb := nextDealtIn(t.players, t.button)
	if t.headsUp {
		sb = t.playerAt(t.button)
	}
	bb := nextDealtIn(t.players, sb.Seat)

	t.smallBlindSeat, t.bigBlindSeat = sb.Seat, bb.Seat
	sb.IsSmallBlind, bb.IsBigBlind = true, true

	blinds := map[string]int{
		sb.ID: sb.Bet(t.cfg.SmallBlind),
		bb.ID: bb.Bet(t.cfg.BigBlind),
	}
	t.round.currentBet = max(sb.CurrentBet, bb.CurrentBet)
	if t.cfg.Structure == FixedLimit {
		t.round.bets = 1
	}
	return blinds
}

// advance moves the hand forward after the state changed. from is the seat
// the search for the next actor starts at.
func (t *Table) advance(from int) error {
	if t.countStatus(Active, StatusAllIn) == 1 {
		return t.finishHand()
	}

	active := t.activePlayers()
	bettingOver := len(active) == 0 ||
		(len(active) == 1 && active[0].CurrentBet >= t.round.currentBet)

	if !bettingOver {
		if next := nextToAct(t.players, from, t.round.toAct); next != nil {
			t.phase = AwaitingAction{PlayerID: next.ID}
			return nil
		}
	}

	if bettingOver {
		// Nobody left to bet against: run the board out.
		for t.street < River {
			t.nextStreet()
		}
		return t.finishHand()
	}

	if t.street == River {
		return t.finishHand()
	}
	t.nextStreet()
	return t.advance(actionAnchor(t.street, t.button, t.bigBlindSeat, t.headsUp))
}

// nextStreet burns a card, deals the next street and opens its betting.
func (t *Table) nextStreet() {
	t.street++
	t.stub = t.stub[1:]
	for len(t.board) < t.street.boardSize() {
		t.board = append(t.board, t.stub[0])
		t.stub = t.stub[1:]
	}

	for _, p := range t.players {
		p.resetForStreet()
	}
	t.round = newBettingRound(t.cfg.BigBlind)
	for _, p := range t.players {
		if p.Status == Active {
			t.round.toAct[p.ID] = true
		}
	}

	t.logger.Debug("dealt street", "hand", t.handID, "street", t.street, "board", poker.NewHand(t.board...))
	board := append([]poker.Card(nil), t.board...)
	t.record("community cards", func(r HandHistoryRecorder) error {
		return r.RecordCommunityCards(t.handID, t.street, board)
	})
}

// recomputePots rebuilds the pots from every dealt-in contribution.
func (t *Table) recomputePots() {
	var contributions []Contribution
	for _, p := range t.players {
		if p.Status == Out || p.TotalBet == 0 {
			continue
		}
		contributions = append(contributions, Contribution{
			PlayerID: p.ID,
			Amount:   p.TotalBet,
			Folded:   p.Status == Folded,
			AllIn:    p.Status == StatusAllIn,
		})
	}
	t.pots = BuildSidePots(contributions)
}

// record calls the recorder, logging failures and recovering panics so
// history problems never affect play.
func (t *Table) record(op string, fn func(HandHistoryRecorder) error) {
	if t.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("hand history recorder panicked", "op", op, "hand", t.handID, "panic", r)
		}
	}()
	if err := fn(t.recorder); err != nil {
		t.logger.Warn("hand history recorder failed", "op", op, "hand", t.handID, "error", err)
	}
}

// EvaluateHands ranks the hand of every player still holding a claim to
// the pot.
func (t *Table) EvaluateHands() map[string]poker.Evaluation {
	evals := make(map[string]poker.Evaluation)
	for _, p := range t.players {
		if p.Status.inHand() && len(p.HoleCards) > 0 {
			evals[p.ID] = t.evaluator.Evaluate(append(append([]poker.Card(nil), p.HoleCards...), t.board...))
		}
	}
	return evals
}

func finalStacks(players []*Player) map[string]int {
	stacks := make(map[string]int, len(players))
	for _, p := range players {
		stacks[p.ID] = p.Chips
	}
	return stacks
}
