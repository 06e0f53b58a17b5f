package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/pokertable/internal/handid"
	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/poker"
)

// DefaultMaxSeats is used when Config.MaxSeats is zero.
const DefaultMaxSeats = 10

// Config holds the table's stakes and rules.
type Config struct {
	SmallBlind    int
	BigBlind      int
	Ante          int
	Structure     Structure
	MaxSeats      int
	RakePercent   int // percent of contested pots taken once the flop is dealt
	RakeCap       int // zero means uncapped
	RandomSeating bool
}

// Validate checks the stakes. It is called by NewTable and StartHand.
func (c Config) Validate() error {
	if c.SmallBlind < 0 || c.BigBlind <= 0 || c.SmallBlind > c.BigBlind {
		return fmt.Errorf("%w: small blind %d, big blind %d", ErrInvalidBlinds, c.SmallBlind, c.BigBlind)
	}
	if c.Ante < 0 {
		return fmt.Errorf("%w: negative ante %d", ErrInvalidConfig, c.Ante)
	}
	if c.MaxSeats < 0 || c.MaxSeats == 1 {
		return fmt.Errorf("%w: max seats %d", ErrInvalidConfig, c.MaxSeats)
	}
	if c.seats() > maxPlayers {
		return fmt.Errorf("%w: max seats %d exceeds %d", ErrInvalidConfig, c.seats(), maxPlayers)
	}
	if c.RakePercent < 0 || c.RakePercent > 100 || c.RakeCap < 0 {
		return fmt.Errorf("%w: rake %d%% cap %d", ErrInvalidConfig, c.RakePercent, c.RakeCap)
	}
	switch c.Structure {
	case NoLimit, PotLimit, FixedLimit:
	default:
		return fmt.Errorf("%w: structure %d", ErrInvalidConfig, c.Structure)
	}
	return nil
}

func (c Config) seats() int {
	if c.MaxSeats == 0 {
		return DefaultMaxSeats
	}
	return c.MaxSeats
}

// Option configures a Table during creation.
type Option func(*tableOptions)

type tableOptions struct {
	rng       *rand.Rand
	deck      Deck
	evaluator HandEvaluator
	recorder  HandHistoryRecorder
	logger    *log.Logger
	button    int
	newHandID func() string
}

// WithRNG sets the source for the button draw, random seating and the
// default deck.
func WithRNG(rng *rand.Rand) Option {
	return func(o *tableOptions) {
		o.rng = rng
	}
}

// WithSeed is WithRNG with a deterministic source.
func WithSeed(seed int64) Option {
	return WithRNG(randutil.New(seed))
}

// WithDeck replaces the shuffled deck, e.g. with poker.NewStackedDeck.
func WithDeck(deck Deck) Option {
	return func(o *tableOptions) {
		o.deck = deck
	}
}

// WithEvaluator replaces the showdown evaluator.
func WithEvaluator(e HandEvaluator) Option {
	return func(o *tableOptions) {
		o.evaluator = e
	}
}

// WithRecorder attaches a hand history recorder.
func WithRecorder(r HandHistoryRecorder) Option {
	return func(o *tableOptions) {
		o.recorder = r
	}
}

// WithLogger sets the logger. Tables log nothing by default.
func WithLogger(logger *log.Logger) Option {
	return func(o *tableOptions) {
		o.logger = logger
	}
}

// WithButton places the button for the first hand instead of drawing it.
func WithButton(seat int) Option {
	return func(o *tableOptions) {
		o.button = seat
	}
}

// WithHandIDs overrides hand ID generation.
func WithHandIDs(next func() string) Option {
	return func(o *tableOptions) {
		o.newHandID = next
	}
}

func buildOptions(opts []Option) tableOptions {
	o := tableOptions{button: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = randutil.New(randutil.Seed())
	}
	if o.deck == nil {
		o.deck = poker.NewDeck(o.rng)
	}
	if o.evaluator == nil {
		o.evaluator = poker.Evaluator{}
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.newHandID == nil {
		o.newHandID = handid.Generate
	}
	return o
}
