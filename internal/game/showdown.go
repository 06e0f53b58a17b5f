package game

import (
	"slices"

	"github.com/lox/pokertable/poker"
)

// PotResult is how one pot was awarded.
type PotResult struct {
	Pot         Pot
	Winners     []string       // clockwise from the button
	Shares      map[string]int // chips won from this pot
	OddChipTo   string         // winner who received the remainder of an uneven split
	Uncontested bool           // a single claimant took the pot without a showdown
	Rank        poker.HandRank // winning hand category when contested
}

// HandResult is the outcome of a completed hand.
type HandResult struct {
	HandID          string
	HandNumber      int
	Street          Street // street the hand ended on
	Board           []poker.Card
	Pots            []PotResult
	ShowdownReached bool
	Rake            int
	Evaluations     map[string]poker.Evaluation // players whose hands were compared
	Shown           map[string][]poker.Card     // hole cards revealed at showdown
	Winnings        map[string]int              // chips awarded, keyed by player ID
	Net             map[string]int              // winnings minus chips committed
}

// Winners returns every player who won chips, in seat order.
func (r *HandResult) Winners(players []*Player) []string {
	var ids []string
	for _, p := range players {
		if r.Winnings[p.ID] > 0 {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// finishHand resolves every pot, pays the winners and ends the hand.
func (t *Table) finishHand() error {
	result := &HandResult{
		HandID:      t.handID,
		HandNumber:  t.handNumber,
		Street:      t.street,
		Board:       slices.Clone(t.board),
		Evaluations: make(map[string]poker.Evaluation),
		Shown:       make(map[string][]poker.Card),
		Winnings:    make(map[string]int),
		Net:         make(map[string]int),
	}

	// Clockwise from the seat after the button, the odd chip order.
	order := clockwiseAfter(t.players, t.button)
	pots := t.Pots()
	contenders := make([][]*Player, len(pots))
	for i, pot := range pots {
		contenders[i] = potContenders(pot, order)
	}
	result.Rake = t.takeRake(pots, contenders)
	t.rake += result.Rake

	evaluate := func(p *Player) poker.Evaluation {
		if ev, ok := result.Evaluations[p.ID]; ok {
			return ev
		}
		ev := t.evaluator.Evaluate(append(slices.Clone(p.HoleCards), t.board...))
		result.Evaluations[p.ID] = ev
		result.Shown[p.ID] = slices.Clone(p.HoleCards)
		return ev
	}

	for i, pot := range pots {
		pr := PotResult{Pot: pot, Shares: make(map[string]int)}

		switch players := contenders[i]; {
		case len(players) == 0:
			continue
		case len(players) == 1:
			pr.Uncontested = true
			pr.Winners = []string{players[0].ID}
		default:
			result.ShowdownReached = true
			var best poker.Evaluation
			for j, p := range players {
				ev := evaluate(p)
				switch c := ev.Compare(best); {
				case j == 0 || c > 0:
					best = ev
					pr.Winners = []string{p.ID}
				case c == 0:
					pr.Winners = append(pr.Winners, p.ID)
				}
			}
			pr.Rank = best.Rank
		}

		share := pot.Amount / len(pr.Winners)
		for _, id := range pr.Winners {
			pr.Shares[id] = share
		}
		if rem := pot.Amount % len(pr.Winners); rem > 0 {
			pr.OddChipTo = pr.Winners[0]
			pr.Shares[pr.OddChipTo] += rem
		}
		for id, won := range pr.Shares {
			result.Winnings[id] += won
		}
		result.Pots = append(result.Pots, pr)
	}

	for _, p := range t.players {
		p.Chips += result.Winnings[p.ID]
		if p.Status != Out {
			result.Net[p.ID] = result.Winnings[p.ID] - p.TotalBet
		}
		p.HoleCards = nil
	}

	t.pots = []Pot{{Name: potName(0)}}
	t.inHand = false
	t.last = result
	t.phase = HandComplete{Result: result}

	t.logger.Info("hand complete",
		"hand", t.handID,
		"number", t.handNumber,
		"street", t.street,
		"showdown", result.ShowdownReached,
		"winners", result.Winners(t.players),
		"rake", result.Rake)

	t.record("pot results", func(r HandHistoryRecorder) error {
		return r.RecordPotResults(t.handID, result)
	})
	stacks := finalStacks(t.players)
	t.record("end hand", func(r HandHistoryRecorder) error {
		return r.EndHand(t.handID, stacks)
	})
	return nil
}

// potContenders lists the players, in odd chip order, with a claim on pot.
func potContenders(pot Pot, order []*Player) []*Player {
	var players []*Player
	for _, p := range order {
		if p.Status.inHand() && pot.IsEligible(p.ID) {
			players = append(players, p)
		}
	}
	if len(players) == 0 {
		// Nobody with a claim contributed to this pot; the nearest
		// player still in the hand takes it.
		for _, p := range order {
			if p.Status.inHand() {
				return []*Player{p}
			}
		}
	}
	return players
}

// takeRake removes the rake from contested pots, main pot first. A pot
// with a single contender, such as an uncalled bet or a hand won without
// showdown, is never raked. No flop, no drop.
func (t *Table) takeRake(pots []Pot, contenders [][]*Player) int {
	if t.cfg.RakePercent == 0 || len(t.board) < 3 {
		return 0
	}
	contested := 0
	for i := range pots {
		if len(contenders[i]) > 1 {
			contested += pots[i].Amount
		}
	}
	rake := contested * t.cfg.RakePercent / 100
	if t.cfg.RakeCap > 0 {
		rake = min(rake, t.cfg.RakeCap)
	}
	left := rake
	for i := range pots {
		if len(contenders[i]) < 2 {
			continue
		}
		take := min(left, pots[i].Amount)
		pots[i].Amount -= take
		left -= take
	}
	return rake
}
