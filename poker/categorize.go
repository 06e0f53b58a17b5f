package poker

// HoleCategory buckets a two-card starting hand by rough preflop strength.
type HoleCategory string

const (
	CategoryPremium HoleCategory = "Premium"
	CategoryStrong  HoleCategory = "Strong"
	CategoryMedium  HoleCategory = "Medium"
	CategoryWeak    HoleCategory = "Weak"
	CategoryTrash   HoleCategory = "Trash"
	CategoryUnknown HoleCategory = "Unknown"
)

// Categories lists every category from strongest to weakest.
var Categories = []HoleCategory{CategoryPremium, CategoryStrong, CategoryMedium, CategoryWeak, CategoryTrash}

// CategorizeHole buckets a starting hand:
// Premium (JJ+, AK), Strong (TT, AQ, AJ), Medium (77-99, suited broadway),
// Weak (22-66, suited connectors and one-gappers), Trash (everything else).
// Anything that is not exactly two cards is Unknown.
func CategorizeHole(hole Hand) HoleCategory {
	cards := hole.Cards()
	if len(cards) != 2 {
		return CategoryUnknown
	}

	low, high := int(cards[0].Rank())+2, int(cards[1].Rank())+2
	if low > high {
		low, high = high, low
	}
	suited := cards[0].Suit() == cards[1].Suit()
	pair := low == high

	switch {
	case pair && low >= 11, low == 13 && high == 14:
		return CategoryPremium
	case pair && low == 10, high == 14 && (low == 12 || low == 11):
		return CategoryStrong
	case pair && low >= 7, suited && low >= 10:
		return CategoryMedium
	case pair, suited && high-low <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}
