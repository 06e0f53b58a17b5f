// Package bot provides simple agents that choose from the valid actions in
// a table view. They exist to drive simulations and tests, not to play well.
package bot

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/game"
)

// Decision is an agent's chosen action. Amount is the street total for
// Bet and Raise and ignored otherwise.
type Decision struct {
	Action    game.Action
	Amount    int
	Reasoning string
}

// Agent decides what a seated player does. Decide may be slow; callers
// must not hold a table lock while it runs.
type Agent interface {
	Decide(ctx context.Context, view game.TableView) (Decision, error)
}

// Kinds lists the agent names accepted by New.
var Kinds = []string{"call", "fold", "random", "maniac"}

// New builds an agent by name.
func New(kind string, rng *rand.Rand, logger *log.Logger) (Agent, error) {
	switch kind {
	case "call", "calling-station":
		return NewCallBot(logger), nil
	case "fold":
		return NewFoldBot(logger), nil
	case "random", "rand":
		return NewRandBot(rng, logger), nil
	case "maniac":
		return NewManiacBot(rng, logger), nil
	}
	return nil, fmt.Errorf("bot: unknown kind %q", kind)
}

func findAction(valid []game.ValidAction, action game.Action) (game.ValidAction, bool) {
	for _, va := range valid {
		if va.Action == action {
			return va, true
		}
	}
	return game.ValidAction{}, false
}

// choose returns the first of preferred that is valid, at its minimum
// amount, falling back to the first valid action.
func choose(valid []game.ValidAction, reasoning string, preferred ...game.Action) Decision {
	for _, action := range preferred {
		if va, ok := findAction(valid, action); ok {
			return Decision{Action: action, Amount: va.MinAmount, Reasoning: reasoning}
		}
	}
	if len(valid) > 0 {
		return Decision{Action: valid[0].Action, Amount: valid[0].MinAmount, Reasoning: "fallback: " + reasoning}
	}
	return Decision{Action: game.Fold, Reasoning: "no valid actions"}
}

// aggression returns the bet or raise on offer, if any.
func aggression(valid []game.ValidAction) (game.ValidAction, bool) {
	if va, ok := findAction(valid, game.Raise); ok {
		return va, true
	}
	return findAction(valid, game.Bet)
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger.WithPrefix("bot")
}
