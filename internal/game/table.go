package game

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/poker"
)

// maxPlayers bounds seating so a full deck always covers a hand:
// two hole cards each plus five board cards and three burns.
const (
	maxPlayers = 22
	burnCount  = 3
)

// Table runs hands of Texas Hold'em for the players seated at it.
//
// A Table is not safe for concurrent use; callers serialize access.
type Table struct {
	cfg       Config
	rng       *rand.Rand
	deck      Deck
	evaluator HandEvaluator
	recorder  HandHistoryRecorder
	logger    *log.Logger
	newHandID func() string

	players        []*Player // sorted by seat
	button         int
	firstButton    int
	smallBlindSeat int
	bigBlindSeat   int
	seatingDone    bool

	handNumber int
	handID     string
	inHand     bool
	headsUp    bool
	street     Street
	board      []poker.Card
	stub       []poker.Card // burns and board cards still to come
	round      bettingRound
	pots       []Pot
	phase      Phase
	last       *HandResult
	rake       int // rake collected across hands
}

// NewTable creates a table with the given stakes.
func NewTable(cfg Config, opts ...Option) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Table{
		cfg:         cfg,
		rng:         o.rng,
		deck:        o.deck,
		evaluator:   o.evaluator,
		recorder:    o.recorder,
		logger:      o.logger,
		newHandID:   o.newHandID,
		button:      -1,
		firstButton: o.button,
		pots:        []Pot{{Name: potName(0)}},
		phase:       WaitingForHand{},
		round:       newBettingRound(cfg.BigBlind),
	}, nil
}

// Config returns the table's stakes and rules.
func (t *Table) Config() Config {
	return t.cfg
}

// AddPlayer seats a player in the lowest free seat. Players added while a
// hand is running sit out until the next hand.
func (t *Table) AddPlayer(id, name string, chips int) (*Player, error) {
	for seat := 0; seat < t.cfg.seats(); seat++ {
		if t.playerAt(seat) == nil {
			return t.seat(id, name, chips, seat, false)
		}
	}
	return nil, fmt.Errorf("%w: %d seats", ErrTableFull, t.cfg.seats())
}

// AddPlayerAt seats a player in a specific seat. The seat is kept when the
// table randomizes seating.
func (t *Table) AddPlayerAt(id, name string, chips, seat int) (*Player, error) {
	if seat < 0 || seat >= t.cfg.seats() {
		return nil, fmt.Errorf("%w: seat %d outside 0-%d", ErrInvalidConfig, seat, t.cfg.seats()-1)
	}
	return t.seat(id, name, chips, seat, true)
}

func (t *Table) seat(id, name string, chips, seat int, chosen bool) (*Player, error) {
	switch {
	case id == "":
		return nil, fmt.Errorf("%w: empty player ID", ErrUnknownPlayer)
	case chips < 0:
		return nil, fmt.Errorf("%w: negative stack %d", ErrInvalidAmount, chips)
	case t.Player(id) != nil:
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	case t.playerAt(seat) != nil:
		return nil, fmt.Errorf("%w: seat %d", ErrSeatTaken, seat)
	}

	p := &Player{ID: id, Name: name, Seat: seat, Chips: chips, seated: chosen}
	p.ResetForNewHand()
	if t.inHand {
		p.Status = Out
	}
	t.players = append(t.players, p)
	t.sortSeats()

	t.logger.Debug("player seated", "player", id, "seat", seat, "chips", chips)
	return p, nil
}

// RemovePlayer unseats a player between hands.
func (t *Table) RemovePlayer(id string) error {
	if t.inHand {
		return ErrHandInProgress
	}
	idx := slices.IndexFunc(t.players, func(p *Player) bool { return p.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	t.players = slices.Delete(t.players, idx, idx+1)
	t.logger.Debug("player left", "player", id)
	return nil
}

func (t *Table) sortSeats() {
	slices.SortFunc(t.players, func(a, b *Player) int { return a.Seat - b.Seat })
}

// randomizeSeats shuffles the players who did not pick a seat among the
// seats they occupy.
func (t *Table) randomizeSeats() {
	var movable []*Player
	var seats []int
	for _, p := range t.players {
		if !p.seated {
			movable = append(movable, p)
			seats = append(seats, p.Seat)
		}
	}
	t.rng.Shuffle(len(seats), func(i, j int) { seats[i], seats[j] = seats[j], seats[i] })
	for i, p := range movable {
		p.Seat = seats[i]
	}
	t.sortSeats()
}

// Player returns the player with the given ID, or nil.
func (t *Table) Player(id string) *Player {
	for _, p := range t.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (t *Table) playerAt(seat int) *Player {
	for _, p := range t.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// Players returns the seated players in seat order.
func (t *Table) Players() []*Player {
	return slices.Clone(t.players)
}

// Button returns the button seat, or -1 before the first hand.
func (t *Table) Button() int { return t.button }

// HandNumber counts hands started at this table.
func (t *Table) HandNumber() int { return t.handNumber }

// HandID identifies the current or most recent hand.
func (t *Table) HandID() string { return t.handID }

// InHand reports whether a hand is running.
func (t *Table) InHand() bool { return t.inHand }

// CurrentRound returns the street being played.
func (t *Table) CurrentRound() Street { return t.street }

// CurrentBet is the highest street contribution.
func (t *Table) CurrentBet() int { return t.round.currentBet }

// MinRaise is the smallest legal raise increment.
func (t *Table) MinRaise() int { return t.round.minRaise }

// LastAggressor returns the ID of the last player to bet or raise this street.
func (t *Table) LastAggressor() string { return t.round.lastAggressor }

// Phase returns the turn state.
func (t *Table) Phase() Phase { return t.phase }

// CurrentPlayer returns the player the table is waiting on, or nil.
func (t *Table) CurrentPlayer() *Player {
	if aw, ok := t.phase.(AwaitingAction); ok {
		return t.Player(aw.PlayerID)
	}
	return nil
}

// ToAct returns the IDs of players who still have to act this street, in
// seat order.
func (t *Table) ToAct() []string {
	var ids []string
	for _, p := range t.players {
		if t.round.toAct[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// CommunityCards returns the board.
func (t *Table) CommunityCards() []poker.Card {
	return slices.Clone(t.board)
}

// Pot returns the chips in every pot.
func (t *Table) Pot() int {
	return TotalPot(t.pots)
}

// Pots returns the main pot followed by any side pots.
func (t *Table) Pots() []Pot {
	pots := make([]Pot, len(t.pots))
	for i, p := range t.pots {
		pots[i] = Pot{Name: p.Name, Amount: p.Amount, Eligible: slices.Clone(p.Eligible)}
	}
	return pots
}

// LastResult returns the outcome of the most recent completed hand.
func (t *Table) LastResult() *HandResult {
	return t.last
}

// TotalChips returns every chip on the table: stacks plus pots. Rake taken
// is excluded, see RakeCollected.
func (t *Table) TotalChips() int {
	total := t.Pot()
	for _, p := range t.players {
		total += p.Chips
	}
	return total
}

// RakeCollected returns the rake taken since the table was created.
func (t *Table) RakeCollected() int { return t.rake }

func (t *Table) countStatus(statuses ...Status) int {
	n := 0
	for _, p := range t.players {
		if slices.Contains(statuses, p.Status) {
			n++
		}
	}
	return n
}

func (t *Table) activePlayers() []*Player {
	var active []*Player
	for _, p := range t.players {
		if p.Status == Active {
			active = append(active, p)
		}
	}
	return active
}
