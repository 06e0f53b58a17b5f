package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func eval(s string) Evaluation {
	return Evaluator{}.Evaluate(MustParseCards(s))
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cards   string
		rank    HandRank
		kickers []int
	}{
		{"royal flush", "AsKsQsJsTs2c3d", StraightFlush, []int{14}},
		{"steel wheel", "As2s3s4s5sKdKh", StraightFlush, []int{5}},
		{"quads with best kicker", "9c9d9h9sKd2c3c", FourOfAKind, []int{9, 13}},
		{"full house from two trips", "7c7d7hKcKdKs2c", FullHouse, []int{13, 7}},
		{"full house trips plus pair", "QcQdQh5c5d9s2c", FullHouse, []int{12, 5}},
		{"flush takes top five", "Ah9h7h4h3h2hKd", Flush, []int{14, 9, 7, 4, 3}},
		{"broadway straight", "AcKdQhJsTc3d2h", Straight, []int{14}},
		{"wheel", "Ac2d3h4s5c9dJh", Straight, []int{5}},
		{"six high beats wheel", "Ac2d3h4s5c6dJh", Straight, []int{6}},
		{"trips", "8c8d8hAsKc3d2h", ThreeOfAKind, []int{8, 14, 13}},
		{"two pair from three pairs", "AcAdKcKd2c2dJh", TwoPair, []int{14, 13, 11}},
		{"pair", "JcJd9h7s4c3d2h", Pair, []int{11, 9, 7, 4}},
		{"high card", "AcJd9h7s4c3d2h", HighCard, []int{14, 11, 9, 7, 4}},
		{"five cards", "AcKcQcJcTc", StraightFlush, []int{14}},
		{"six cards", "2c2d5h5s9c9d", TwoPair, []int{9, 5, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := eval(tt.cards)
			assert.Equal(t, tt.rank, got.Rank, got.String())
			assert.Equal(t, tt.kickers, got.Kickers)
		})
	}
}

func TestEvaluationCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, eval("AcAd5h7s9cJdQh").Compare(eval("KcKd5h7s9cJdQh")), "higher pair wins")
	assert.Equal(t, -1, eval("AcAd5h7s9cJd2h").Compare(eval("AhAs5d7c9dJcQh")), "kicker decides")
	assert.Equal(t, 0, eval("AcKd5h7s9cJdQh").Compare(eval("AhKs5d7c9dJcQs")), "same five cards split")
	assert.Equal(t, 1, eval("2c3c4c5c7c").Compare(eval("AcKdQhJsTc")), "flush beats straight")
	assert.Equal(t, 1, eval("2c2d2h3c3d").Compare(eval("AcKcQcJc9c")), "full house beats flush")
}

func TestHandRankString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Full House", FullHouse.String())
	assert.Equal(t, "Unknown", HandRank(99).String())
	assert.Equal(t, "Pair [J 9 7 4]", eval("JcJd9h7s4c3d2h").String())
}

func BenchmarkEvaluate7(b *testing.B) {
	hand := NewHand(MustParseCards("AcJd9h7s4c3d2h")...)
	for i := 0; i < b.N; i++ {
		_ = EvaluateHand(hand)
	}
}
