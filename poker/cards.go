package poker

import (
	"fmt"
	"math/bits"
	"strings"
)

// Card is a single card encoded as one bit of a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs]
type Card uint64

// Hand is a set of cards, one bit per card.
type Hand uint64

// Suits
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Ranks (0-12 for deuce through ace)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// NewCard creates a card from rank and suit.
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// index returns the bit position of the card (0-51), or 255 for the zero card.
func (c Card) index() uint8 {
	if c == 0 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c)))
}

// Rank returns the rank of the card (0-12).
func (c Card) Rank() uint8 {
	pos := c.index()
	if pos == 255 {
		return 255
	}
	return pos % 13
}

// Suit returns the suit of the card (0-3).
func (c Card) Suit() uint8 {
	pos := c.index()
	if pos == 255 {
		return 255
	}
	return pos / 13
}

// String returns the two character form, e.g. "As".
func (c Card) String() string {
	rank, suit := c.Rank(), c.Suit()
	if rank > 12 || suit > 3 {
		return "??"
	}
	return string(rankChars[rank]) + string(suitChars[suit])
}

// MarshalText encodes the card in its two character form.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the two character form.
func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a string like "As" into a Card.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	rank := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if rank < 0 {
		return 0, fmt.Errorf("invalid rank: %c", s[0])
	}
	suit := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if suit < 0 {
		return 0, fmt.Errorf("invalid suit: %c", s[1])
	}

	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseCards parses a run of cards such as "AsKd" or "As Kd Qh".
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("card at position %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards %q: %v", s, err))
	}
	return cards
}

// NewHand creates a hand from multiple cards
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard checks if the hand contains a specific card
func (h Hand) HasCard(c Card) bool {
	return (h & Hand(c)) != 0
}

// CountCards returns the number of cards in the hand
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// Cards returns the cards in the hand, lowest bit first.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for rest := uint64(h); rest != 0; rest &= rest - 1 {
		cards = append(cards, Card(rest&-rest))
	}
	return cards
}

// GetSuitMask returns the ranks held in one suit as a 13-bit mask.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16((h >> (suit * 13)) & 0x1FFF)
}

// String lists the cards in the hand.
func (h Hand) String() string {
	var sb strings.Builder
	for _, c := range h.Cards() {
		sb.WriteString(c.String())
	}
	return sb.String()
}
