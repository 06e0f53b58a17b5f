package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/poker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Padding(0, 1)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

func renderSummary(w io.Writer, sim *simulation, elapsed time.Duration) {
	sum := sim.Summary

	fmt.Fprintln(w, titleStyle.Render("Simulation results"))
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf(
		"%d hands in %s, seed %d, %d showdowns, %d rebuys, %d rake",
		sum.Hands, elapsed.Round(time.Millisecond), sim.Seed, sum.Showdowns, sim.Rebuys, sum.Rake)))
	fmt.Fprintln(w)

	ids := sum.PlayerIDs()
	netCol := 3
	players := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Player", "Bot", "Hands", "BB/100", "95% CI", "Showdown BB", "Fold equity BB", "Actions").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == netCol && row < len(ids):
				if s := sum.Players[ids[row]]; s.Mean() < 0 {
					return lossStyle
				}
				return winStyle
			}
			return cellStyle
		})

	var problems []string
	for _, id := range ids {
		s := sum.Players[id]
		lo, hi := s.ConfidenceInterval95()
		players.Row(
			id,
			sim.Kinds[id],
			fmt.Sprint(s.Hands),
			fmt.Sprintf("%+.2f", s.Mean()*100),
			fmt.Sprintf("[%+.1f, %+.1f]", lo*100, hi*100),
			fmt.Sprintf("%+.1f", s.ShowdownBB),
			fmt.Sprintf("%+.1f", s.NonShowdownBB),
			formatActions(sum.Actions[id]),
		)
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", id, err))
		}
	}
	fmt.Fprintln(w, players.Render())
	fmt.Fprintln(w)

	categories := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Starting hand", "Hands", "Win %", "BB/hand").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, cat := range slices.Concat(poker.Categories, []poker.HoleCategory{poker.CategoryUnknown}) {
		cs, ok := sum.Categories[cat]
		if !ok || cs.Hands == 0 {
			continue
		}
		categories.Row(
			string(cat),
			fmt.Sprint(cs.Hands),
			fmt.Sprintf("%.1f", 100*float64(cs.Wins)/float64(cs.Hands)),
			fmt.Sprintf("%+.3f", cs.NetBB/float64(cs.Hands)),
		)
	}
	fmt.Fprintln(w, categories.Render())

	for _, p := range problems {
		fmt.Fprintln(w, errorStyle.Render("statistics check failed: "+p))
	}
}

func formatActions(counts map[game.Action]int) string {
	var parts []string
	for _, a := range []game.Action{game.Fold, game.Check, game.Call, game.Bet, game.Raise, game.AllIn} {
		if n := counts[a]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", a, n))
		}
	}
	return strings.Join(parts, ", ")
}
