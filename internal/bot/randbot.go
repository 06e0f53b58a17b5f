package bot

import (
	"context"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/game"
)

// RandBot picks uniformly among the valid actions, with a uniform amount
// for bets and raises.
type RandBot struct {
	rng    *rand.Rand
	logger *log.Logger
}

func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: orDiscard(logger)}
}

func (r *RandBot) Decide(_ context.Context, view game.TableView) (Decision, error) {
	valid := view.ValidActions
	if len(valid) == 0 {
		return Decision{Action: game.Fold, Reasoning: "rand-bot no valid actions"}, nil
	}

	va := valid[r.rng.IntN(len(valid))]
	amount := va.MinAmount
	if (va.Action == game.Bet || va.Action == game.Raise) && va.MaxAmount > va.MinAmount {
		amount += r.rng.IntN(va.MaxAmount - va.MinAmount + 1)
	}
	r.logger.Debug("random action", "player", view.ToAct, "action", va.Action, "amount", amount)
	return Decision{Action: va.Action, Amount: amount, Reasoning: "rand-bot random action"}, nil
}
