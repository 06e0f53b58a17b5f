package game

import (
	"errors"

	"github.com/lox/pokertable/poker"
)

// Deck supplies cards for a hand. *poker.Deck implements it.
type Deck interface {
	Shuffle()
	Draw() (poker.Card, bool)
}

// HandEvaluator ranks the best five-card hand from five to seven cards.
// poker.Evaluator implements it.
type HandEvaluator interface {
	Evaluate(cards []poker.Card) poker.Evaluation
}

// SeatInfo describes one dealt-in player at the start of a hand.
type SeatInfo struct {
	PlayerID  string
	Name      string
	Seat      int
	Chips     int // stack before blinds and antes
	HoleCards []poker.Card
}

// HandStart is handed to the recorder once blinds and hole cards are dealt.
type HandStart struct {
	HandID     string
	HandNumber int
	Structure  Structure
	Button     int
	SmallBlind int
	BigBlind   int
	Ante       int
	Seats      []SeatInfo
	Blinds     map[string]int // chips posted as blinds, keyed by player ID
	Antes      map[string]int
}

// ActionRecord is one accepted action.
type ActionRecord struct {
	PlayerID string
	Seat     int
	Street   Street
	Action   Action
	Amount   int // chips moved by the action
	Total    int // player's street total afterwards
}

// HandHistoryRecorder observes a hand. Recorder errors are logged and
// never change the outcome of the hand.
type HandHistoryRecorder interface {
	StartHand(start HandStart) (handID string, err error)
	RecordAction(handID string, action ActionRecord) error
	RecordCommunityCards(handID string, street Street, cards []poker.Card) error
	RecordPotResults(handID string, result *HandResult) error
	EndHand(handID string, finalStacks map[string]int) error
}

// Recorders fans every call out to each recorder in order.
func Recorders(recorders ...HandHistoryRecorder) HandHistoryRecorder {
	return multiRecorder(recorders)
}

type multiRecorder []HandHistoryRecorder

func (m multiRecorder) StartHand(start HandStart) (string, error) {
	var errs []error
	for _, r := range m {
		if _, err := r.StartHand(start); err != nil {
			errs = append(errs, err)
		}
	}
	return start.HandID, errors.Join(errs...)
}

func (m multiRecorder) RecordAction(handID string, action ActionRecord) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordAction(handID, action))
	}
	return errors.Join(errs...)
}

func (m multiRecorder) RecordCommunityCards(handID string, street Street, cards []poker.Card) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordCommunityCards(handID, street, cards))
	}
	return errors.Join(errs...)
}

func (m multiRecorder) RecordPotResults(handID string, result *HandResult) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordPotResults(handID, result))
	}
	return errors.Join(errs...)
}

func (m multiRecorder) EndHand(handID string, finalStacks map[string]int) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.EndHand(handID, finalStacks))
	}
	return errors.Join(errs...)
}
