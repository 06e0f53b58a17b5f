package game

import (
	"slices"

	"github.com/lox/pokertable/poker"
)

// PlayerView is what one player can see of another.
type PlayerView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Seat         int          `json:"seat"`
	Chips        int          `json:"chips"`
	Status       string       `json:"status"`
	CurrentBet   int          `json:"current_bet"`
	TotalBet     int          `json:"total_bet"`
	IsSmallBlind bool         `json:"is_small_blind,omitempty"`
	IsBigBlind   bool         `json:"is_big_blind,omitempty"`
	IsButton     bool         `json:"is_button,omitempty"`
	HoleCards    []poker.Card `json:"hole_cards,omitempty"`
}

// PotView is a pot as shown to players.
type PotView struct {
	Name     string   `json:"name"`
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// TableView is a point-in-time view of the table for one viewer.
type TableView struct {
	HandID         string        `json:"hand_id"`
	HandNumber     int           `json:"hand_number"`
	InHand         bool          `json:"in_hand"`
	Street         string        `json:"street"`
	Structure      string        `json:"structure"`
	Button         int           `json:"button"`
	SmallBlind     int           `json:"small_blind"`
	BigBlind       int           `json:"big_blind"`
	Ante           int           `json:"ante,omitempty"`
	CurrentBet     int           `json:"current_bet"`
	MinRaise       int           `json:"min_raise"`
	Pot            int           `json:"pot"`
	Pots           []PotView     `json:"pots"`
	CommunityCards []poker.Card  `json:"community_cards"`
	Players        []PlayerView  `json:"players"`
	ToAct          string        `json:"to_act,omitempty"`
	ValidActions   []ValidAction `json:"valid_actions,omitempty"`
}

// Snapshot returns the table as seen by viewerID. Only the viewer's own
// hole cards are included; pass "" for a spectator view.
func (t *Table) Snapshot(viewerID string) TableView {
	view := TableView{
		HandID:         t.handID,
		HandNumber:     t.handNumber,
		InHand:         t.inHand,
		Street:         t.street.String(),
		Structure:      t.cfg.Structure.String(),
		Button:         t.button,
		SmallBlind:     t.cfg.SmallBlind,
		BigBlind:       t.cfg.BigBlind,
		Ante:           t.cfg.Ante,
		CurrentBet:     t.round.currentBet,
		MinRaise:       t.round.minRaise,
		Pot:            t.Pot(),
		CommunityCards: slices.Clone(t.board),
	}
	for _, pot := range t.pots {
		view.Pots = append(view.Pots, PotView{Name: pot.Name, Amount: pot.Amount, Eligible: slices.Clone(pot.Eligible)})
	}
	for _, p := range t.players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Seat:         p.Seat,
			Chips:        p.Chips,
			Status:       p.Status.String(),
			CurrentBet:   p.CurrentBet,
			TotalBet:     p.TotalBet,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
			IsButton:     t.inHand && p.Seat == t.button,
		}
		if p.ID == viewerID {
			pv.HoleCards = slices.Clone(p.HoleCards)
		}
		view.Players = append(view.Players, pv)
	}
	if cur := t.CurrentPlayer(); cur != nil && t.inHand {
		view.ToAct = cur.ID
		if cur.ID == viewerID {
			view.ValidActions = t.GetValidActions(viewerID)
		}
	}
	return view
}

// Me returns the viewer's own entry.
func (v TableView) Me(id string) (PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}
