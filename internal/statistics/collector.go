package statistics

import (
	"maps"
	"slices"
	"sync"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/poker"
)

// CategoryStats tracks results by starting hand category.
type CategoryStats struct {
	Hands int
	Wins  int
	NetBB float64
}

// Collector is a game.HandHistoryRecorder that feeds every completed hand
// into per-player Statistics. Safe for concurrent use across tables.
type Collector struct {
	mu         sync.Mutex
	hands      map[string]*handState
	players    map[string]*Statistics
	actions    map[string]map[game.Action]int
	categories map[poker.HoleCategory]*CategoryStats
	completed  int
	showdowns  int
	rake       int
}

type handState struct {
	bigBlind   int
	positions  map[string]int
	categories map[string]poker.HoleCategory
}

var _ game.HandHistoryRecorder = (*Collector)(nil)

func NewCollector() *Collector {
	return &Collector{
		hands:      make(map[string]*handState),
		players:    make(map[string]*Statistics),
		actions:    make(map[string]map[game.Action]int),
		categories: make(map[poker.HoleCategory]*CategoryStats),
	}
}

func (c *Collector) StartHand(start game.HandStart) (string, error) {
	seats := slices.Clone(start.Seats)
	slices.SortFunc(seats, func(a, b game.SeatInfo) int { return a.Seat - b.Seat })
	button := slices.IndexFunc(seats, func(s game.SeatInfo) bool { return s.Seat == start.Button })
	button = max(button, 0)

	state := &handState{
		bigBlind:   start.BigBlind,
		positions:  make(map[string]int, len(seats)),
		categories: make(map[string]poker.HoleCategory, len(seats)),
	}
	for i, s := range seats {
		state.positions[s.PlayerID] = (i - button + len(seats)) % len(seats)
		state.categories[s.PlayerID] = poker.CategorizeHole(poker.NewHand(s.HoleCards...))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hands[start.HandID] = state
	return start.HandID, nil
}

func (c *Collector) RecordAction(handID string, action game.ActionRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := c.actions[action.PlayerID]
	if counts == nil {
		counts = make(map[game.Action]int)
		c.actions[action.PlayerID] = counts
	}
	counts[action.Action]++
	return nil
}

func (c *Collector) RecordCommunityCards(string, game.Street, []poker.Card) error {
	return nil
}

// RecordPotResults adds one sample per dealt-in player.
func (c *Collector) RecordPotResults(handID string, result *game.HandResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.hands[handID]
	if !ok || result == nil {
		return nil
	}
	bb := float64(max(state.bigBlind, 1))
	pot := result.Rake
	for _, pr := range result.Pots {
		pot += pr.Pot.Amount
	}

	c.completed++
	c.rake += result.Rake
	if result.ShowdownReached {
		c.showdowns++
	}

	for id, position := range state.positions {
		net := float64(result.Net[id]) / bb
		_, shown := result.Shown[id]

		stats := c.players[id]
		if stats == nil {
			stats = &Statistics{}
			c.players[id] = stats
		}
		stats.Add(Sample{
			NetBB:          net,
			Position:       position,
			WentToShowdown: shown,
			PotBB:          float64(pot) / bb,
			Street:         result.Street.String(),
		})

		category := state.categories[id]
		cs := c.categories[category]
		if cs == nil {
			cs = &CategoryStats{}
			c.categories[category] = cs
		}
		cs.Hands++
		cs.NetBB += net
		if result.Winnings[id] > 0 {
			cs.Wins++
		}
	}
	return nil
}

func (c *Collector) EndHand(handID string, _ map[string]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hands, handID)
	return nil
}

// Summary is a point-in-time copy of everything collected.
type Summary struct {
	Hands      int
	Showdowns  int
	Rake       int
	Players    map[string]Statistics
	Actions    map[string]map[game.Action]int
	Categories map[poker.HoleCategory]CategoryStats
}

// PlayerIDs returns the players in the summary, sorted.
func (s Summary) PlayerIDs() []string {
	return slices.Sorted(maps.Keys(s.Players))
}

func (c *Collector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := Summary{
		Hands:      c.completed,
		Showdowns:  c.showdowns,
		Rake:       c.rake,
		Players:    make(map[string]Statistics, len(c.players)),
		Actions:    make(map[string]map[game.Action]int, len(c.actions)),
		Categories: make(map[poker.HoleCategory]CategoryStats, len(c.categories)),
	}
	for id, s := range c.players {
		cp := *s
		cp.Values = slices.Clone(s.Values)
		cp.Positions = maps.Clone(s.Positions)
		cp.Streets = maps.Clone(s.Streets)
		sum.Players[id] = cp
	}
	for id, counts := range c.actions {
		sum.Actions[id] = maps.Clone(counts)
	}
	for cat, cs := range c.categories {
		sum.Categories[cat] = *cs
	}
	return sum
}
