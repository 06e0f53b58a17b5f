package poker

import (
	"math/bits"
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCreation(t *testing.T) {
	t.Parallel()
	aceSpades := NewCard(Ace, Spades)
	assert.Equal(t, Ace, aceSpades.Rank())
	assert.Equal(t, Spades, aceSpades.Suit())
	assert.Equal(t, "As", aceSpades.String())
	assert.Equal(t, "2c", NewCard(Two, Clubs).String())
	assert.Equal(t, "??", Card(0).String())
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "lowercase ten", input: "tc", wantCard: NewCard(Ten, Clubs)},
		{name: "uppercase suit", input: "KD", wantCard: NewCard(King, Diamonds)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too long", input: "Asd", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card, err := ParseCard(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCard, card)
		})
	}
}

func TestAll52CardsRoundTrip(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < 13; rank++ {
			card := NewCard(rank, suit)
			str := card.String()
			require.False(t, seen[str], "duplicate card %s", str)
			seen[str] = true

			parsed, err := ParseCard(str)
			require.NoError(t, err)
			assert.Equal(t, card, parsed)
		}
	}
	assert.Len(t, seen, 52)
}

func TestParseCards(t *testing.T) {
	t.Parallel()
	cards, err := ParseCards("As Kd Qh")
	require.NoError(t, err)
	assert.Equal(t, []Card{NewCard(Ace, Spades), NewCard(King, Diamonds), NewCard(Queen, Hearts)}, cards)

	_, err = ParseCards("AsK")
	require.Error(t, err)
	_, err = ParseCards("AsKx")
	require.Error(t, err)
}

func TestCardTextMarshalling(t *testing.T) {
	t.Parallel()
	card := NewCard(Ten, Hearts)
	text, err := card.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Th", string(text))

	var decoded Card
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, card, decoded)
	require.Error(t, decoded.UnmarshalText([]byte("zz")))
}

func TestHandOperations(t *testing.T) {
	t.Parallel()
	aceSpades, _ := ParseCard("As")
	kingHearts, _ := ParseCard("Kh")
	queenDiamonds, _ := ParseCard("Qd")

	hand := NewHand(aceSpades, kingHearts)
	assert.True(t, hand.HasCard(aceSpades))
	assert.True(t, hand.HasCard(kingHearts))
	assert.False(t, hand.HasCard(queenDiamonds))
	assert.Equal(t, 2, hand.CountCards())

	hand.AddCard(queenDiamonds)
	assert.True(t, hand.HasCard(queenDiamonds))
	assert.Equal(t, 3, hand.CountCards())
	assert.ElementsMatch(t, []Card{aceSpades, kingHearts, queenDiamonds}, hand.Cards())
}

func TestHandBitset(t *testing.T) {
	t.Parallel()
	aceSpades, _ := ParseCard("As")
	aceHearts, _ := ParseCard("Ah")
	twoClubs, _ := ParseCard("2c")

	if bits.OnesCount64(uint64(aceSpades)) != 1 {
		t.Error("Card should be a single bit")
	}
	if aceSpades&aceHearts != 0 || aceSpades&twoClubs != 0 || aceHearts&twoClubs != 0 {
		t.Error("Different cards should not share bits")
	}

	combined := Hand(aceSpades) | Hand(aceHearts) | Hand(twoClubs)
	if combined.CountCards() != 3 {
		t.Errorf("Combined hand should have 3 cards, got %d", combined.CountCards())
	}
}

func TestGetSuitMask(t *testing.T) {
	t.Parallel()
	var hand Hand
	for rank := uint8(0); rank < 13; rank++ {
		hand.AddCard(NewCard(rank, Spades))
	}

	if mask := hand.GetSuitMask(Spades); mask != 0x1FFF {
		t.Errorf("Expected all spades, got mask %016b", mask)
	}
	if hand.GetSuitMask(Hearts) != 0 {
		t.Error("Hearts should be empty")
	}
}

func TestDeck(t *testing.T) {
	t.Parallel()
	deck := NewDeck(rand.New(rand.NewPCG(42, 42)))

	cards1 := deck.Deal(2)
	cards2 := deck.Deal(3)
	require.Len(t, cards1, 2)
	require.Len(t, cards2, 3)
	for _, c1 := range cards1 {
		assert.NotContains(t, cards2, c1, "dealt same card twice")
	}

	remaining := deck.Deal(47)
	require.Len(t, remaining, 47)
	assert.Nil(t, deck.Deal(1), "should not deal from an empty deck")

	_, ok := deck.Draw()
	assert.False(t, ok)

	deck.Shuffle()
	assert.Equal(t, 52, deck.CardsRemaining())
	_, ok = deck.Draw()
	assert.True(t, ok)
}

func TestDeckDealsEveryCardOnce(t *testing.T) {
	t.Parallel()
	deck := NewDeck(rand.New(rand.NewPCG(7, 9)))
	var all Hand
	for {
		card, ok := deck.Draw()
		if !ok {
			break
		}
		require.False(t, all.HasCard(card), "card %s dealt twice", card)
		all.AddCard(card)
	}
	assert.Equal(t, 52, all.CountCards())
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()
	top := MustParseCards("AsKsQs")
	deck := NewStackedDeck(top...)

	for round := 0; round < 2; round++ {
		for _, want := range top {
			got, ok := deck.Draw()
			require.True(t, ok)
			assert.Equal(t, want, got)
		}
		assert.Equal(t, 49, deck.CardsRemaining())

		var rest Hand
		for _, c := range deck.Deal(49) {
			rest.AddCard(c)
		}
		assert.Equal(t, 49, rest.CountCards())
		assert.Zero(t, rest&NewHand(top...), "stacked cards must not repeat")
		deck.Shuffle()
	}
}

func BenchmarkParseCard(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ParseCard("As")
	}
}
