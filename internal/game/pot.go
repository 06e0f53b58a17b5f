package game

import (
	"fmt"
	"slices"
)

// Pot represents a pot (main or side)
type Pot struct {
	Name     string
	Amount   int
	Eligible []string // IDs of the players who can win this pot
}

// Add puts chips into the pot and makes the contributor eligible for it.
func (p *Pot) Add(amount int, playerID string) {
	p.Amount += amount
	if !p.IsEligible(playerID) {
		p.Eligible = append(p.Eligible, playerID)
	}
}

// RemovePlayer revokes a player's claim to the pot. The chips stay in.
func (p *Pot) RemovePlayer(playerID string) {
	p.Eligible = slices.DeleteFunc(p.Eligible, func(id string) bool { return id == playerID })
}

// IsEligible reports whether playerID can win this pot.
func (p *Pot) IsEligible(playerID string) bool {
	return slices.Contains(p.Eligible, playerID)
}

// Contribution is one player's total commitment to the hand.
type Contribution struct {
	PlayerID string
	Amount   int
	Folded   bool
	AllIn    bool
}

// TotalPot sums every pot.
func TotalPot(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}

// potName returns "Main Pot" for the first pot and "Side Pot N" after it.
func potName(i int) string {
	if i == 0 {
		return "Main Pot"
	}
	return fmt.Sprintf("Side Pot %d", i)
}

// BuildSidePots partitions contributions into a main pot and side pots.
//
// Each distinct contribution level closes a layer holding, from every
// contributor, the chips between the previous level and this one. A player
// is eligible for a layer if they have not folded and either reached the
// level or are still live with chips behind. Adjacent layers with the same
// eligible players are merged, and a layer nobody can win is folded into
// its neighbour, so the pot amounts always sum to the contributions.
func BuildSidePots(contributions []Contribution) []Pot {
	var levels []int
	for _, c := range contributions {
		if c.Amount > 0 {
			levels = append(levels, c.Amount)
		}
	}
	slices.Sort(levels)
	levels = slices.Compact(levels)
	if len(levels) == 0 {
		return []Pot{{Name: potName(0)}}
	}

	layers := make([]Pot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		layer := Pot{}
		for _, c := range contributions {
			layer.Amount += min(c.Amount, level) - min(c.Amount, prev)
			if c.Folded {
				continue
			}
			if c.Amount >= level || !c.AllIn {
				layer.Eligible = append(layer.Eligible, c.PlayerID)
			}
		}
		prev = level

		if n := len(layers); n > 0 && slices.Equal(layers[n-1].Eligible, layer.Eligible) {
			layers[n-1].Amount += layer.Amount
			continue
		}
		layers = append(layers, layer)
	}

	pots := make([]Pot, 0, len(layers))
	var orphaned int
	for _, layer := range layers {
		if len(layer.Eligible) == 0 {
			if n := len(pots); n > 0 {
				pots[n-1].Amount += layer.Amount
			} else {
				orphaned += layer.Amount
			}
			continue
		}
		layer.Amount += orphaned
		orphaned = 0
		pots = append(pots, layer)
	}
	if len(pots) == 0 {
		// Every contributor folded; keep the chips in a pot nobody is eligible for.
		return []Pot{{Name: potName(0), Amount: orphaned}}
	}

	for i := range pots {
		pots[i].Name = potName(i)
	}
	return pots
}
