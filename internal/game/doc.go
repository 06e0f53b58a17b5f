// Package game implements the rules of Texas Hold'em for a single table.
//
// The main type is Table, which seats players, moves the button, posts
// blinds and antes, validates and applies actions, deals the streets and
// resolves the main pot and any side pots at showdown.
//
// # Basic Usage
//
//	t, err := game.NewTable(game.Config{SmallBlind: 5, BigBlind: 10})
//	t.AddPlayer("alice", "Alice", 1000)
//	t.AddPlayer("bob", "Bob", 1000)
//	if err := t.StartHand(); err != nil {
//	    return err
//	}
//	for t.InHand() {
//	    p := t.CurrentPlayer()
//	    actions := t.GetValidActions(p.ID)
//	    // pick one...
//	    err := t.ProcessAction(p.ID, game.Call, 0)
//	}
//	result := t.LastResult()
//
// # Deterministic Testing
//
// Every source of randomness can be injected:
//
//	t, _ := game.NewTable(cfg,
//	    game.WithSeed(42),
//	    game.WithButton(0),
//	    game.WithDeck(poker.NewStackedDeck(cards...)))
//
// # Architecture
//
// Table delegates to small pure helpers:
//   - bettingRound and limits: per-street betting state and legal actions
//     under no-limit, pot-limit and fixed-limit
//   - BuildSidePots: partitions contributions into main and side pots
//   - turn order: walks seats clockwise to find who acts next
//   - HandHistoryRecorder: optional observer for hand histories and stats
//
// Tables are not safe for concurrent use. The runner package serializes
// access and drives agents.
package game
