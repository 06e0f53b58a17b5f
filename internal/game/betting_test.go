package game

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestPlayerBetClampsToStack(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "a", Chips: 50, Status: Active}
	if got := p.Bet(30); got != 30 {
		t.Errorf("Expected bet of 30, got %d", got)
	}
	if p.Status != Active {
		t.Errorf("Expected player to stay active, got %s", p.Status)
	}

	if got := p.Bet(100); got != 20 {
		t.Errorf("Bet should be clamped to the remaining 20 chips, got %d", got)
	}
	if p.Chips != 0 || p.CurrentBet != 50 || p.TotalBet != 50 {
		t.Errorf("Expected 0 chips with 50 in, got chips=%d current=%d total=%d", p.Chips, p.CurrentBet, p.TotalBet)
	}
	if p.Status != StatusAllIn {
		t.Errorf("Expected all-in, got %s", p.Status)
	}

	if got := p.Bet(10); got != 0 {
		t.Errorf("An all-in player cannot bet, got %d", got)
	}
}

func TestPlayerResetForNewHand(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "a", Chips: 0, Status: StatusAllIn, CurrentBet: 40, TotalBet: 90, IsBigBlind: true}
	p.ResetForNewHand()
	if p.Status != Out {
		t.Errorf("Busted players should sit out, got %s", p.Status)
	}
	if p.TotalBet != 0 || p.IsBigBlind {
		t.Errorf("Expected hand state cleared, got total=%d bigBlind=%v", p.TotalBet, p.IsBigBlind)
	}

	p.Chips = 10
	p.ResetForNewHand()
	if p.Status != Active {
		t.Errorf("Expected active after topping up, got %s", p.Status)
	}
}

func assertActions(t *testing.T, got, want []ValidAction) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Valid actions:\n got  %+v\n want %+v", got, want)
	}
}

func TestValidActionsNoLimit(t *testing.T) {
	t.Parallel()

	l := limits{structure: NoLimit, bigBlind: 20, street: Preflop, potTotal: 30}

	t.Run("facing the big blind", func(t *testing.T) {
		br := &bettingRound{currentBet: 20, minRaise: 20}
		p := &Player{Chips: 1000, Status: Active}
		assertActions(t, l.validActions(br, p), []ValidAction{
			{Action: Fold},
			{Action: Call, MinAmount: 20, MaxAmount: 20},
			{Action: Raise, MinAmount: 40, MaxAmount: 1000},
			{Action: AllIn, MinAmount: 1000, MaxAmount: 1000},
		})
	})

	t.Run("big blind option", func(t *testing.T) {
		br := &bettingRound{currentBet: 20, minRaise: 20}
		p := &Player{Chips: 980, CurrentBet: 20, Status: Active}
		assertActions(t, l.validActions(br, p), []ValidAction{
			{Action: Fold},
			{Action: Check},
			{Action: Raise, MinAmount: 40, MaxAmount: 1000},
			{Action: AllIn, MinAmount: 980, MaxAmount: 980},
		})
	})

	t.Run("unopened street", func(t *testing.T) {
		br := &bettingRound{minRaise: 20}
		p := &Player{Chips: 500, Status: Active}
		actions := l.validActions(br, p)
		bet, ok := findAction(actions, Bet)
		if !ok {
			t.Fatalf("Expected a bet option, got %+v", actions)
		}
		if bet.MinAmount != 20 || bet.MaxAmount != 500 {
			t.Errorf("Expected bet range 20-500, got %d-%d", bet.MinAmount, bet.MaxAmount)
		}
		if _, ok := findAction(actions, Raise); ok {
			t.Error("Nothing to raise on an unopened street")
		}
	})

	t.Run("short stack cannot raise", func(t *testing.T) {
		br := &bettingRound{currentBet: 100, minRaise: 80}
		p := &Player{Chips: 60, Status: Active}
		assertActions(t, l.validActions(br, p), []ValidAction{
			{Action: Fold},
			{Action: Call, MinAmount: 60, MaxAmount: 60},
			{Action: AllIn, MinAmount: 60, MaxAmount: 60},
		})
	})

	t.Run("raise range below minimum is omitted", func(t *testing.T) {
		br := &bettingRound{currentBet: 100, minRaise: 80}
		p := &Player{Chips: 150, Status: Active}
		actions := l.validActions(br, p)
		if _, ok := findAction(actions, Raise); ok {
			t.Error("Min raise to 180 exceeds the 150 stack")
		}
		if _, ok := findAction(actions, AllIn); !ok {
			t.Error("Expected all-in to be offered")
		}
	})

	t.Run("inactive players get nothing", func(t *testing.T) {
		br := &bettingRound{currentBet: 20, minRaise: 20}
		if got := l.validActions(br, &Player{Chips: 100, Status: Folded}); got != nil {
			t.Errorf("Expected no actions for a folded player, got %+v", got)
		}
		if got := l.validActions(br, nil); got != nil {
			t.Errorf("Expected no actions without a player, got %+v", got)
		}
	})
}

func TestValidActionsPotLimit(t *testing.T) {
	t.Parallel()

	l := limits{structure: PotLimit, bigBlind: 20, street: Preflop, potTotal: 30}
	br := &bettingRound{currentBet: 20, minRaise: 20}
	p := &Player{Chips: 1000, Status: Active}

	actions := l.validActions(br, p)
	raise, ok := findAction(actions, Raise)
	if !ok {
		t.Fatalf("Expected a raise option, got %+v", actions)
	}
	if raise.MinAmount != 40 {
		t.Errorf("Expected min raise to 40, got %d", raise.MinAmount)
	}
	if raise.MaxAmount != 70 {
		t.Errorf("Call 20 into 50 then raise the pot: expected 70, got %d", raise.MaxAmount)
	}

	if _, ok := findAction(actions, AllIn); ok {
		t.Error("A stack above the pot limit cannot shove")
	}

	short := &Player{Chips: 60, Status: Active}
	if _, ok := findAction(l.validActions(br, short), AllIn); !ok {
		t.Error("A stack under the pot limit can shove")
	}

	postflop := limits{structure: PotLimit, bigBlind: 20, street: Flop, potTotal: 100}
	bet, ok := findAction(postflop.validActions(&bettingRound{minRaise: 20}, p), Bet)
	if !ok {
		t.Fatal("Expected a bet option on the flop")
	}
	if bet.MaxAmount != 100 {
		t.Errorf("Expected pot-sized bet of 100, got %d", bet.MaxAmount)
	}
}

func TestValidActionsFixedLimit(t *testing.T) {
	t.Parallel()

	p := &Player{Chips: 1000, Status: Active}

	flop := limits{structure: FixedLimit, bigBlind: 20, street: Flop}
	bet, ok := findAction(flop.validActions(&bettingRound{minRaise: 20}, p), Bet)
	if !ok {
		t.Fatal("Expected a bet option on the flop")
	}
	if want := (ValidAction{Action: Bet, MinAmount: 20, MaxAmount: 20}); bet != want {
		t.Errorf("Expected %+v, got %+v", want, bet)
	}

	turn := limits{structure: FixedLimit, bigBlind: 20, street: Turn}
	bet, ok = findAction(turn.validActions(&bettingRound{minRaise: 20}, p), Bet)
	if !ok {
		t.Fatal("Expected a bet option on the turn")
	}
	if bet.MinAmount != 40 {
		t.Errorf("Expected the big bet of 40 on the turn, got %d", bet.MinAmount)
	}

	raise, ok := findAction(turn.validActions(&bettingRound{currentBet: 40, minRaise: 40, bets: 1}, p), Raise)
	if !ok {
		t.Fatal("Expected a raise option facing one bet")
	}
	if want := (ValidAction{Action: Raise, MinAmount: 80, MaxAmount: 80}); raise != want {
		t.Errorf("Expected %+v, got %+v", want, raise)
	}

	capped := turn.validActions(&bettingRound{currentBet: 160, minRaise: 40, bets: fixedLimitCap}, p)
	if _, ok := findAction(capped, Raise); ok {
		t.Error("No raises once the street is capped")
	}
	if _, ok := findAction(capped, AllIn); ok {
		t.Error("No all-in once the street is capped")
	}
	if _, ok := findAction(capped, Call); !ok {
		t.Error("Calling a capped street should still be allowed")
	}
}

func TestParseActionAndStructure(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{Fold, Check, Call, Bet, Raise, AllIn} {
		parsed, err := ParseAction(a.String())
		if err != nil || parsed != a {
			t.Errorf("ParseAction(%q) = %s, %v", a.String(), parsed, err)
		}
	}
	if _, err := ParseAction("muck"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Expected ErrInvalidAction, got %v", err)
	}

	for _, s := range []Structure{NoLimit, PotLimit, FixedLimit} {
		parsed, err := ParseStructure(s.String())
		if err != nil || parsed != s {
			t.Errorf("ParseStructure(%q) = %s, %v", s.String(), parsed, err)
		}
	}
	if _, err := ParseStructure("spread-limit"); err == nil {
		t.Error("Expected an error for an unknown structure")
	}
}

func TestValidActionJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(ValidAction{Action: Raise, MinAmount: 40, MaxAmount: 100})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"action":"raise","min_amount":40,"max_amount":100}`; string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}

	var va ValidAction
	if err := json.Unmarshal(b, &va); err != nil {
		t.Fatal(err)
	}
	if va.Action != Raise {
		t.Errorf("Expected raise, got %s", va.Action)
	}
}
