package poker

import (
	rand "math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards   [52]Card
	next    int
	rng     *rand.Rand // Random source for deterministic shuffling
	stacked []Card     // Fixed order used instead of shuffling, for tests
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck that deals the given cards first, in order,
// followed by the rest of the deck in a fixed order. Shuffle restores the
// same order so every hand dealt from it is identical.
func NewStackedDeck(top ...Card) *Deck {
	d := &Deck{stacked: append([]Card(nil), top...)}
	d.Shuffle()
	return d
}

func (d *Deck) fill() {
	i := 0
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}
}

// Shuffle resets the deck and shuffles it using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	if d.stacked != nil {
		d.stack()
		return
	}

	d.fill()
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

func (d *Deck) stack() {
	used := NewHand(d.stacked...)
	i := copy(d.cards[:], d.stacked)
	for suit := range uint8(4) {
		for rank := range uint8(13) {
			c := NewCard(rank, suit)
			if used.HasCard(c) || i >= len(d.cards) {
				continue
			}
			d.cards[i] = c
			i++
		}
	}
}

// Draw deals the next card. ok is false once the deck is exhausted.
func (d *Deck) Draw() (card Card, ok bool) {
	if d.next >= len(d.cards) {
		return 0, false
	}
	card = d.cards[d.next]
	d.next++
	return card, true
}

// Deal deals n cards from the deck
func (d *Deck) Deal(n int) []Card {
	if d.next+n > len(d.cards) {
		return nil
	}
	cards := append([]Card(nil), d.cards[d.next:d.next+n]...)
	d.next += n
	return cards
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
