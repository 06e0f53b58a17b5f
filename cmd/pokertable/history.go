package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/pokertable/internal/phh"
)

// HistoryCmd summarises a PHH session file.
type HistoryCmd struct {
	File  string `arg:"" name:"file" help:"Path to a session.phhs file"`
	Hands bool   `help:"List every hand as well as the totals"`
}

func (cmd HistoryCmd) Run() error {
	hands, err := loadHistory(cmd.File)
	if err != nil {
		return err
	}
	return renderHistory(os.Stdout, hands, cmd.Hands)
}

func loadHistory(path string) ([]*phh.HandHistory, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hands, err := phh.DecodeSections(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(hands) == 0 {
		return nil, fmt.Errorf("no hands found in %s", path)
	}
	return hands, nil
}

type playerTotals struct {
	hands int
	net   int
	won   int
}

func renderHistory(w io.Writer, hands []*phh.HandHistory, listHands bool) error {
	if len(hands) == 0 {
		return errors.New("no hands to render")
	}

	totals := make(map[string]*playerTotals)
	rake := 0
	list := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Hand", "Variant", "Players", "Actions", "Winners", "Rake").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, h := range hands {
		rake += h.Rake
		var winners []string
		for i, name := range h.Players {
			t := totals[name]
			if t == nil {
				t = &playerTotals{}
				totals[name] = t
			}
			t.hands++
			if i < len(h.StartingStacks) && i < len(h.FinishingStacks) {
				t.net += h.FinishingStacks[i] - h.StartingStacks[i]
			}
			if i < len(h.Winnings) && h.Winnings[i] > 0 {
				t.won++
				winners = append(winners, name)
			}
		}
		list.Row(
			h.HandID,
			h.Variant,
			fmt.Sprint(len(h.Players)),
			fmt.Sprint(len(h.Actions)),
			fmt.Sprint(winners),
			fmt.Sprint(h.Rake),
		)
	}

	fmt.Fprintln(w, titleStyle.Render("Hand history"))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("%d hands, %d rake", len(hands), rake)))
	fmt.Fprintln(w)
	if listHands {
		fmt.Fprintln(w, list.Render())
		fmt.Fprintln(w)
	}

	names := slices.Sorted(maps.Keys(totals))
	players := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Player", "Hands", "Won", "Net").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 && row < len(names) && totals[names[row]].net < 0:
				return lossStyle
			case col == 3:
				return winStyle
			}
			return cellStyle
		})
	for _, name := range names {
		t := totals[name]
		players.Row(name, fmt.Sprint(t.hands), fmt.Sprint(t.won), fmt.Sprintf("%+d", t.net))
	}
	fmt.Fprintln(w, players.Render())
	return nil
}
