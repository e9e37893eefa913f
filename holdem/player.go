package holdem

import "pokerhall/card"

// TableControls are the per-hand monetary fields of one player. BankRoll plus
// CurrentBet is conserved by every betting mutation within a hand; only the
// pot transfers at showdown move chips between players.
type TableControls struct {
	BankRoll   int64
	CurrentBet int64
	ToCall     int64
}

// Player is the flat per-seat record. Out is permanent for the game (busted
// in a prior hand); Folded and AllIn reset every hand; Away toggles when a
// player stops responding and sticks until they return.
type Player struct {
	ID   uint64
	Name string

	Cards card.CardList

	Away   bool
	Out    bool
	Folded bool
	AllIn  bool

	// Revealed is set at a contested showdown: the hand was compared against
	// others and the cards are public from then on.
	Revealed bool

	Controls TableControls
}

// InHand reports whether the seat participates in turn rotation this hand.
// All-in players stay in rotation; the orchestrator auto-checks for them.
func (p *Player) InHand() bool {
	return !p.Out && !p.Folded
}

func (p *Player) resetForHand() {
	p.Cards = make(card.CardList, 0, 2)
	p.Folded = false
	p.AllIn = false
	p.Revealed = false
	p.Out = p.Controls.BankRoll <= 0
	p.Controls.CurrentBet = 0
	p.Controls.ToCall = 0
}
