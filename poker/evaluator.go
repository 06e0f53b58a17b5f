package poker

import (
	"math/bits"
)

// HandRank is the category of a poker hand, ordered from weakest to strongest.
type HandRank uint8

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable hand description.
func (hr HandRank) String() string {
	switch hr {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Evaluation is the value of the best five-card hand: its category plus the
// rank values (2-14, ace high) that break ties within the category, most
// significant first.
type Evaluation struct {
	Rank    HandRank
	Kickers []int
}

// Compare returns 1 if e beats other, -1 if other wins, 0 for a tie.
// Category is compared first, then kickers lexicographically.
func (e Evaluation) Compare(other Evaluation) int {
	if e.Rank != other.Rank {
		if e.Rank > other.Rank {
			return 1
		}
		return -1
	}
	for i := 0; i < len(e.Kickers) && i < len(other.Kickers); i++ {
		if e.Kickers[i] != other.Kickers[i] {
			if e.Kickers[i] > other.Kickers[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(e.Kickers) > len(other.Kickers):
		return 1
	case len(e.Kickers) < len(other.Kickers):
		return -1
	}
	return 0
}

// String describes the hand, e.g. "Two Pair [13 9 4]".
func (e Evaluation) String() string {
	s := e.Rank.String() + " ["
	for i, k := range e.Kickers {
		if i > 0 {
			s += " "
		}
		s += string(rankChars[k-2])
	}
	return s + "]"
}

// Evaluator ranks hands of five to seven cards.
type Evaluator struct{}

// Evaluate returns the best five-card hand that can be made from cards.
func (Evaluator) Evaluate(cards []Card) Evaluation {
	return EvaluateHand(NewHand(cards...))
}

// EvaluateHand evaluates the best five-card hand contained in hand.
func EvaluateHand(hand Hand) Evaluation {
	var suitMasks [4]uint16
	var rankMask uint16
	for suit := uint8(0); suit < 4; suit++ {
		mask := hand.GetSuitMask(suit)
		suitMasks[suit] = mask
		rankMask |= mask
	}
	return evaluateMasks(suitMasks, rankMask)
}

func evaluateMasks(suitMasks [4]uint16, rankMask uint16) Evaluation {
	// Flushes first; a straight flush in any suit wins outright.
	var best *Evaluation
	for _, suitMask := range suitMasks {
		if bits.OnesCount16(suitMask) < 5 {
			continue
		}
		if high := straightHighMask(suitMask); high > 0 {
			return Evaluation{Rank: StraightFlush, Kickers: values(high)}
		}
		flush := Evaluation{Rank: Flush, Kickers: values(findOrderedKickers(suitMask, nil, 5)...)}
		if best == nil || flush.Compare(*best) > 0 {
			best = &flush
		}
	}

	s0, s1, s2, s3 := suitMasks[0], suitMasks[1], suitMasks[2], suitMasks[3]

	quadsMask := s0 & s1 & s2 & s3
	tripCandidates := (s0 & s1 & s2) | (s0 & s1 & s3) | (s0 & s2 & s3) | (s1 & s2 & s3)
	tripsMask := tripCandidates &^ quadsMask
	pairsMask := ((s0 & s1) | (s0 & s2) | (s0 & s3) | (s1 & s2) | (s1 & s3) | (s2 & s3)) &^ tripCandidates

	if quad := highestRank(quadsMask); quad >= 0 {
		q := uint8(quad)
		return Evaluation{Rank: FourOfAKind, Kickers: values(append([]uint8{q}, findOrderedKickers(rankMask, []uint8{q}, 1)...)...)}
	}

	if tripRank := highestRank(tripsMask); tripRank >= 0 {
		trip := uint8(tripRank)
		pairCandidates := pairsMask | (tripsMask &^ (1 << tripRank))
		if pairRank := highestRank(pairCandidates); pairRank >= 0 {
			return Evaluation{Rank: FullHouse, Kickers: values(trip, uint8(pairRank))}
		}
	}

	if best != nil {
		return *best
	}

	if high := straightHighMask(rankMask); high > 0 {
		return Evaluation{Rank: Straight, Kickers: values(high)}
	}

	if tripRank := highestRank(tripsMask); tripRank >= 0 {
		trip := uint8(tripRank)
		return Evaluation{Rank: ThreeOfAKind, Kickers: values(append([]uint8{trip}, findOrderedKickers(rankMask, []uint8{trip}, 2)...)...)}
	}

	if pair1 := highestRank(pairsMask); pair1 >= 0 {
		high := uint8(pair1)
		if pair2 := highestRank(pairsMask &^ (1 << pair1)); pair2 >= 0 {
			low := uint8(pair2)
			kicker := findOrderedKickers(rankMask, []uint8{high, low}, 1)
			return Evaluation{Rank: TwoPair, Kickers: values(append([]uint8{high, low}, kicker...)...)}
		}
		return Evaluation{Rank: Pair, Kickers: values(append([]uint8{high}, findOrderedKickers(rankMask, []uint8{high}, 3)...)...)}
	}

	return Evaluation{Rank: HighCard, Kickers: values(findOrderedKickers(rankMask, nil, 5)...)}
}

// values converts internal ranks (0-12) to face values (2-14).
func values(ranks ...uint8) []int {
	out := make([]int, len(ranks))
	for i, r := range ranks {
		out[i] = int(r) + 2
	}
	return out
}

// highestRank returns the highest rank present in the bitmask (or -1 when empty).
func highestRank(mask uint16) int {
	if mask == 0 {
		return -1
	}
	return bits.Len16(mask) - 1
}

// findOrderedKickers finds up to n kickers in descending order, excluding used ranks
func findOrderedKickers(mask uint16, used []uint8, n int) []uint8 {
	available := mask &^ ranksMask(used)
	kickers := make([]uint8, 0, n)
	for len(kickers) < n && available != 0 {
		top := uint8(bits.Len16(available) - 1)
		kickers = append(kickers, top)
		available &^= 1 << top
	}
	return kickers
}

func ranksMask(ranks []uint8) uint16 {
	var mask uint16
	for _, r := range ranks {
		mask |= 1 << r
	}
	return mask
}

// straightHighMask returns the high-card rank of the best straight present in the mask (0 if none).
// The wheel (A-2-3-4-5) reports the five as its high card.
func straightHighMask(mask uint16) uint8 {
	const wheelMask = 0x100F // Ace + 2-3-4-5
	mask &= 0x1FFF

	// Bitwise cascade identifies consecutive sequences in one pass.
	if seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4); seq != 0 {
		return uint8(bits.Len16(seq)-1) + 4
	}
	if mask&wheelMask == wheelMask {
		return Five
	}
	return 0
}
