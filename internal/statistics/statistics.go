// Package statistics accumulates per-player results from completed hands.
package statistics

import (
	"fmt"
	"math"
	"slices"
)

// BigPotBB is the pot size, in big blinds, counted as a big pot.
const BigPotBB = 50

// Sample is one player's outcome of one hand.
type Sample struct {
	NetBB          float64 // net result in big blinds
	Position       int     // seats clockwise from the button among dealt-in players; 0 is the button
	WentToShowdown bool
	PotBB          float64 // final pot in big blinds, rake included
	Street         string  // street the hand ended on
}

// PositionStats tracks results from one position.
type PositionStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Mean is the average result from the position.
func (p PositionStats) Mean() float64 {
	if p.Hands == 0 {
		return 0
	}
	return p.SumBB / float64(p.Hands)
}

// Statistics summarises a stream of samples for one player.
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
	Values []float64

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64 // wins and losses in hands that reached showdown
	NonShowdownBB   float64
	AllBB           float64

	Positions map[int]PositionStats
	Streets   map[string]int

	MaxPotBB  float64
	BigPots   int
	BigPotsBB float64
}

// Add incorporates one sample.
func (s *Statistics) Add(sample Sample) {
	net := sample.NetBB
	s.Hands++
	s.SumBB += net
	s.SumBB2 += net * net
	s.Values = append(s.Values, net)
	s.AllBB += net

	if sample.WentToShowdown {
		s.ShowdownBB += net
		if net > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += net
		if net > 0 {
			s.NonShowdownWins++
		}
	}

	if s.Positions == nil {
		s.Positions = make(map[int]PositionStats)
	}
	ps := s.Positions[sample.Position]
	ps.Hands++
	ps.SumBB += net
	ps.SumBB2 += net * net
	s.Positions[sample.Position] = ps

	if sample.Street != "" {
		if s.Streets == nil {
			s.Streets = make(map[string]int)
		}
		s.Streets[sample.Street]++
	}

	s.MaxPotBB = max(s.MaxPotBB, sample.PotBB)
	if sample.PotBB >= BigPotBB {
		s.BigPots++
		s.BigPotsBB += net
	}
}

// Mean returns big blinds won per hand.
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance.
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile interpolates the value at p, from 0.0 to 1.0.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(s.Values))

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced reports whether showdown and non-showdown results add up
// to the total.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate checks the accumulated data is internally consistent.
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: all=%.6f showdown=%.6f non-showdown=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values length (%d) does not match hands (%d)", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds hands (%d)", wins, s.Hands)
	}
	positionHands := 0
	for _, ps := range s.Positions {
		positionHands += ps.Hands
	}
	if positionHands != s.Hands {
		return fmt.Errorf("position hands (%d) do not match hands (%d)", positionHands, s.Hands)
	}
	return nil
}
