package phh

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lox/pokertable/poker"
)

// Variant codes used in the variant field.
const (
	NoLimitTexasHoldem    = "NT"
	PotLimitTexasHoldem   = "PT"
	FixedLimitTexasHoldem = "FT"
)

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeToBytes encodes and returns the result as bytes.
func EncodeToBytes(hand *HandHistory) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a single hand.
func Decode(r io.Reader) (*HandHistory, error) {
	var hand HandHistory
	if _, err := toml.NewDecoder(r).Decode(&hand); err != nil {
		return nil, fmt.Errorf("phh: decode: %w", err)
	}
	return &hand, nil
}

// WriteSection writes hand as a numbered section of a .phhs file.
func WriteSection(w io.Writer, section int, hand *HandHistory) error {
	if _, err := fmt.Fprintf(w, "[%d]\n", section); err != nil {
		return err
	}
	if err := Encode(w, hand); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// DecodeSections reads every hand of a .phhs file, ordered by section number.
func DecodeSections(r io.Reader) ([]*HandHistory, error) {
	var sections map[string]*HandHistory
	if _, err := toml.NewDecoder(r).Decode(&sections); err != nil {
		return nil, fmt.Errorf("phh: decode sections: %w", err)
	}

	keys := slices.Collect(maps.Keys(sections))
	numbers := make(map[string]int, len(keys))
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("phh: section %q is not numbered", k)
		}
		numbers[k] = n
	}
	slices.SortFunc(keys, func(a, b string) int { return numbers[a] - numbers[b] })

	hands := make([]*HandHistory, 0, len(keys))
	for _, k := range keys {
		hands = append(hands, sections[k])
	}
	return hands, nil
}

// FormatAction converts the engine's action vocabulary to PHH action
// strings. player is the zero-based PHH player index. raised reports
// whether the action raised the street's bet, which turns an all-in into a
// completion, bet or raise instead of a call. It returns false for actions
// that have no PHH form.
func FormatAction(player int, action string, total int, raised bool) (string, bool) {
	p := fmt.Sprintf("p%d", player+1)
	switch action {
	case "fold", "timeout_fold":
		return p + " f", true
	case "check", "call":
		return p + " cc", true
	case "allin":
		if !raised {
			return p + " cc", true
		}
		fallthrough
	case "raise", "bet":
		if total <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %d", p, total), true
	case "post_small_blind", "post_big_blind", "ante":
		return "", false
	default:
		return fmt.Sprintf("# %s %s %d", p, action, total), true
	}
}

// FormatCards joins cards the way PHH writes them, e.g. "AhKd".
func FormatCards(cards []poker.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}

// DealHole is the dealer action giving a player their hole cards. Unknown
// cards are masked.
func DealHole(player int, cards []poker.Card) string {
	shown := "????"
	if len(cards) >= 2 {
		shown = FormatCards(cards)
	}
	return fmt.Sprintf("d dh p%d %s", player+1, shown)
}

// DealBoard is the dealer action for new community cards.
func DealBoard(cards []poker.Card) string {
	return "d db " + FormatCards(cards)
}

// ShowCards is a player showing their hole cards at showdown.
func ShowCards(player int, cards []poker.Card) string {
	return fmt.Sprintf("p%d sm %s", player+1, FormatCards(cards))
}
