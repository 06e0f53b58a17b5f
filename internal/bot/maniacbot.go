package bot

import (
	"context"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/game"
)

// ManiacBot bets and shoves far too often.
type ManiacBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

func NewManiacBot(rng *rand.Rand, logger *log.Logger) *ManiacBot {
	return &ManiacBot{rng: rng, logger: orDiscard(logger)}
}

func (m *ManiacBot) Decide(_ context.Context, view game.TableView) (Decision, error) {
	valid := view.ValidActions
	me, _ := view.Me(view.ToAct)
	_, canCheck := findAction(valid, game.Check)
	_, canShove := findAction(valid, game.AllIn)
	raise, canRaise := aggression(valid)

	if canCheck {
		if m.rng.Float64() < 0.85 {
			short := me.Chips <= 20*view.BigBlind
			switch {
			case (short || m.rng.Float64() < 0.3) && canShove:
				return Decision{Action: game.AllIn, Reasoning: "maniac shove"}, nil
			case canRaise:
				size := raise.MinAmount + (raise.MaxAmount-raise.MinAmount)*3/4
				return Decision{Action: raise.Action, Amount: size, Reasoning: "maniac big bet"}, nil
			}
		}
		return Decision{Action: game.Check, Reasoning: "maniac checking"}, nil
	}

	// Facing a bet: shove 40%, call 40%, fold the rest.
	roll := m.rng.Float64()
	m.logger.Debug("maniac facing bet", "player", me.ID, "to_call", view.CurrentBet-me.CurrentBet, "roll", roll)
	if roll < 0.4 {
		if canShove {
			return Decision{Action: game.AllIn, Reasoning: "maniac shove over bet"}, nil
		}
		if canRaise {
			return Decision{Action: raise.Action, Amount: raise.MaxAmount, Reasoning: "maniac max raise over bet"}, nil
		}
	}
	if roll < 0.8 {
		if _, ok := findAction(valid, game.Call); ok {
			return choose(valid, "maniac call", game.Call), nil
		}
	}
	return choose(valid, "maniac fold", game.Fold), nil
}
