package bot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/game"
)

// CallBot is a calling station: it checks or calls every street and only
// shoves when short-stacked in an unraised pot.
type CallBot struct {
	logger *log.Logger
}

func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: orDiscard(logger)}
}

func (c *CallBot) Decide(_ context.Context, view game.TableView) (Decision, error) {
	valid := view.ValidActions
	me, _ := view.Me(view.ToAct)

	// Under ten big blinds with nothing to call yet.
	if view.BigBlind > 0 && me.Chips < 10*view.BigBlind && view.CurrentBet <= view.BigBlind {
		if _, ok := findAction(valid, game.AllIn); ok {
			c.logger.Debug("short stack shove", "player", me.ID, "chips", me.Chips)
			return choose(valid, "shoving with short stack", game.AllIn), nil
		}
	}
	return choose(valid, "call-bot", game.Check, game.Call, game.Fold), nil
}
