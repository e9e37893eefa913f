package holdem

import "pokerhall/card"

type PlayerSnapshot struct {
	ID         uint64
	Name       string
	Seat       int
	BankRoll   int64
	CurrentBet int64
	ToCall     int64
	Away       bool
	Out        bool
	Folded     bool
	AllIn      bool
	Revealed   bool
	Cards      []card.Card
}

type PotSnapshot struct {
	Wager int64
	Total int64
}

// Snapshot is a deep copy of the table taken inside the actor loop, safe to
// hand to codecs and stores after the actor has moved on.
type Snapshot struct {
	Round        int
	Phase        Phase
	Betting      bool
	Blind        int64
	MinRaise     int64
	Dealer       int
	ActingPlayer int
	LastToAct    int
	EventTracker uint64

	CommunityCards []card.Card
	Pots           []PotSnapshot
	Players        []PlayerSnapshot

	Winners []Winner
	Summary *HandSummary
}

func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		Round:          t.Round,
		Phase:          t.Phase,
		Betting:        t.Betting,
		Blind:          t.Blind,
		MinRaise:       t.MinRaise,
		Dealer:         t.Dealer,
		ActingPlayer:   t.ActingPlayer,
		LastToAct:      t.LastToAct,
		EventTracker:   t.EventTracker,
		CommunityCards: append([]card.Card{}, t.CommunityCards...),
	}
	for _, pot := range t.Pots {
		s.Pots = append(s.Pots, PotSnapshot{Wager: pot.Wager, Total: pot.Total})
	}
	for seat, p := range t.Players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       seat,
			BankRoll:   p.Controls.BankRoll,
			CurrentBet: p.Controls.CurrentBet,
			ToCall:     p.Controls.ToCall,
			Away:       p.Away,
			Out:        p.Out,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
			Revealed:   p.Revealed,
			Cards:      append([]card.Card{}, p.Cards...),
		})
	}
	if len(t.Winners) > 0 {
		s.Winners = append([]Winner{}, t.Winners...)
	}
	if t.Summary != nil {
		sum := *t.Summary
		s.Summary = &sum
	}
	return s
}
