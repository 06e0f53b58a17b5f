package bot

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/game"
)

// FoldBot checks when it can and folds otherwise.
type FoldBot struct {
	logger *log.Logger
}

func NewFoldBot(logger *log.Logger) *FoldBot {
	return &FoldBot{logger: orDiscard(logger)}
}

func (f *FoldBot) Decide(_ context.Context, view game.TableView) (Decision, error) {
	d := choose(view.ValidActions, "fold-bot", game.Check, game.Fold)
	f.logger.Debug("fold-bot", "player", view.ToAct, "action", d.Action)
	return d, nil
}
