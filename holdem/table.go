package holdem

import (
	"fmt"

	"pokerhall/card"
)

// Pot is one side pot. Wager is the per-player contribution ceiling that
// bounds this pot; Total is the chip sum assigned to it. Pots are kept
// ascending by Wager and pairwise disjoint.
type Pot struct {
	Wager int64
	Total int64
}

// Winner is produced at showdown only and never persisted by this package.
type Winner struct {
	PlayerID uint64
	Winnings int64
	Type     string
	Cards    card.CardList
}

// HandSummary is the client-facing digest of how the hand ended.
type HandSummary struct {
	Seat     int
	Type     string
	Cards    card.CardList
	Winnings int64
}

// Table is the aggregate per-game record. It is constructed once per game
// with a fixed seating order and lives until the game ends; per-hand fields
// are reset by SetupNewHand. The table is exclusively owned by one
// orchestrator: every mutation happens through the betting functions called
// from that single actor.
type Table struct {
	Players []*Player // fixed seating order

	Dealer          int
	ActingPlayer    int
	PlayerThatActed int
	LastToAct       int

	Blind    int64
	MinRaise int64
	Round    int
	Betting  bool
	Phase    Phase

	CommunityCards card.CardList
	Pots           []Pot

	// EventTracker increments on every state-affecting action. Timer
	// callbacks compare it against the value they observed when armed to
	// detect "did anything happen while I was asleep".
	EventTracker uint64

	Winners []Winner
	Summary *HandSummary

	deck *Deck
}

// NewTable seats a fixed roster. Blind is the big blind; the small blind is
// half of it. A zero seed gives a time-based deck shuffle.
func NewTable(players []*Player, blind int64, seed int64) (*Table, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(players))
	}
	if blind < 2 {
		return nil, fmt.Errorf("blind must be >= 2, got %d", blind)
	}
	seen := make(map[uint64]bool, len(players))
	for _, p := range players {
		if p == nil {
			return nil, fmt.Errorf("nil player in roster")
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate player id %d", p.ID)
		}
		seen[p.ID] = true
		if p.Controls.BankRoll <= 0 {
			return nil, fmt.Errorf("player %d has no bankroll", p.ID)
		}
	}
	return &Table{
		Players:         players,
		Dealer:          len(players) - 1, // first SetupNewHand advances to seat 0
		ActingPlayer:    InvalidSeat,
		PlayerThatActed: InvalidSeat,
		LastToAct:       InvalidSeat,
		Blind:           blind,
		Phase:           PhaseHandSetup,
		deck:            NewDeck(seed),
	}, nil
}

// Seat returns the seat index for a player id, or InvalidSeat.
func (t *Table) Seat(playerID uint64) int {
	for i, p := range t.Players {
		if p.ID == playerID {
			return i
		}
	}
	return InvalidSeat
}

// NextActivePlayer walks clockwise from the seat after from and returns the
// first seat still in the hand. It never selects a folded or eliminated seat
// and returns from itself when no other seat qualifies.
func (t *Table) NextActivePlayer(from int) int {
	n := len(t.Players)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if t.Players[seat].InHand() {
			return seat
		}
	}
	return from
}

// PrevActivePlayer walks counter-clockwise from the seat before from.
func (t *Table) PrevActivePlayer(from int) int {
	n := len(t.Players)
	for i := 1; i <= n; i++ {
		seat := ((from-i)%n + n) % n
		if t.Players[seat].InHand() {
			return seat
		}
	}
	return from
}

// UnfoldedCount is the number of seats still contesting the hand.
func (t *Table) UnfoldedCount() int {
	n := 0
	for _, p := range t.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}

// BettableCount is the number of seats that can still put chips in.
func (t *Table) BettableCount() int {
	n := 0
	for _, p := range t.Players {
		if p.InHand() && !p.AllIn {
			n++
		}
	}
	return n
}

// FundedCount is the number of players still holding chips; the game is over
// when it drops to one.
func (t *Table) FundedCount() int {
	n := 0
	for _, p := range t.Players {
		if p.Controls.BankRoll > 0 {
			n++
		}
	}
	return n
}

// PotTotal sums every side pot.
func (t *Table) PotTotal() int64 {
	var total int64
	for _, pot := range t.Pots {
		total += pot.Total
	}
	return total
}
