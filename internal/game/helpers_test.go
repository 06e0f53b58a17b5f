package game

import (
	"fmt"
	"testing"

	"github.com/lox/pokertable/poker"
)

// burnCards never appear in test hands or boards.
const burnCards = "2c 2d 2h"

type testTableBuilder struct {
	cfg    Config
	stacks []int
	opts   []Option
}

type testTableOption func(*testTableBuilder)

func withStacks(stacks ...int) testTableOption {
	return func(b *testTableBuilder) { b.stacks = stacks }
}

func withBlinds(small, big int) testTableOption {
	return func(b *testTableBuilder) {
		b.cfg.SmallBlind = small
		b.cfg.BigBlind = big
	}
}

func withConfig(fn func(*Config)) testTableOption {
	return func(b *testTableBuilder) { fn(&b.cfg) }
}

func withOptions(opts ...Option) testTableOption {
	return func(b *testTableBuilder) { b.opts = append(b.opts, opts...) }
}

// withCards stacks the deck. holes are listed in deal order, starting with
// the first seat left of the button.
func withCards(board string, holes ...string) testTableOption {
	return withOptions(WithDeck(stackedDeck(board, holes...)))
}

// newTestTable seats p0..pN in seats 0..N with the button on seat 0.
func newTestTable(t *testing.T, opts ...testTableOption) *Table {
	t.Helper()
	b := &testTableBuilder{
		cfg:    Config{SmallBlind: 10, BigBlind: 20, MaxSeats: 9},
		stacks: []int{1000, 1000, 1000},
		opts:   []Option{WithSeed(42), WithButton(0)},
	}
	for _, opt := range opts {
		opt(b)
	}

	table, err := NewTable(b.cfg, b.opts...)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	for i, chips := range b.stacks {
		if _, err := table.AddPlayerAt(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i), chips, i); err != nil {
			t.Fatalf("seating p%d: %v", i, err)
		}
	}
	return table
}

func stackedDeck(board string, holes ...string) *poker.Deck {
	cards := make([][]poker.Card, len(holes))
	for i, h := range holes {
		cards[i] = poker.MustParseCards(h)
	}
	var top []poker.Card
	for round := range 2 {
		for _, h := range cards {
			top = append(top, h[round])
		}
	}
	b := poker.MustParseCards(board)
	burns := poker.MustParseCards(burnCards)
	top = append(top, burns[0], b[0], b[1], b[2], burns[1], b[3], burns[2], b[4])
	return poker.NewStackedDeck(top...)
}

// act applies an action for whoever is to act and checks it was them.
func act(t *testing.T, table *Table, playerID string, action Action, amount int) {
	t.Helper()
	cur := table.CurrentPlayer()
	if cur == nil {
		t.Fatalf("%s %s: no player to act", playerID, action)
	}
	if cur.ID != playerID {
		t.Fatalf("%s %s: %s is to act", playerID, action, cur.ID)
	}
	if err := table.ProcessAction(playerID, action, amount); err != nil {
		t.Fatalf("%s %s %d: %v", playerID, action, amount, err)
	}
}

// mustStart starts a hand or fails the test.
func mustStart(t *testing.T, table *Table) {
	t.Helper()
	if err := table.StartHand(); err != nil {
		t.Fatalf("StartHand: %v", err)
	}
}

// foldToBigBlind folds everyone until the hand ends.
func foldToBigBlind(t *testing.T, table *Table) {
	t.Helper()
	for table.InHand() {
		cur := table.CurrentPlayer()
		if cur == nil {
			t.Fatal("hand in progress with no player to act")
		}
		if err := table.ProcessAction(cur.ID, Fold, 0); err != nil {
			t.Fatalf("%s fold: %v", cur.ID, err)
		}
	}
}

func chips(table *Table) map[string]int {
	out := make(map[string]int)
	for _, p := range table.Players() {
		out[p.ID] = p.Chips
	}
	return out
}

type recordedCall struct {
	op     string
	handID string
	action ActionRecord
	street Street
	cards  []poker.Card
}

// fakeRecorder keeps every call for inspection.
type fakeRecorder struct {
	start   HandStart
	calls   []recordedCall
	result  *HandResult
	stacks  map[string]int
	failAll error
	panics  bool
}

func (f *fakeRecorder) StartHand(start HandStart) (string, error) {
	if f.panics {
		panic("recorder exploded")
	}
	f.start = start
	f.calls = append(f.calls, recordedCall{op: "start", handID: start.HandID})
	return start.HandID, f.failAll
}

func (f *fakeRecorder) RecordAction(handID string, a ActionRecord) error {
	if f.panics {
		panic("recorder exploded")
	}
	f.calls = append(f.calls, recordedCall{op: "action", handID: handID, action: a})
	return f.failAll
}

func (f *fakeRecorder) RecordCommunityCards(handID string, street Street, cards []poker.Card) error {
	if f.panics {
		panic("recorder exploded")
	}
	f.calls = append(f.calls, recordedCall{op: "board", handID: handID, street: street, cards: cards})
	return f.failAll
}

func (f *fakeRecorder) RecordPotResults(handID string, result *HandResult) error {
	if f.panics {
		panic("recorder exploded")
	}
	f.result = result
	f.calls = append(f.calls, recordedCall{op: "pots", handID: handID})
	return f.failAll
}

func (f *fakeRecorder) EndHand(handID string, stacks map[string]int) error {
	if f.panics {
		panic("recorder exploded")
	}
	f.stacks = stacks
	f.calls = append(f.calls, recordedCall{op: "end", handID: handID})
	return f.failAll
}

func (f *fakeRecorder) ops() []string {
	var ops []string
	for _, c := range f.calls {
		ops = append(ops, c.op)
	}
	return ops
}
