package holdem

import "fmt"

// The betting engine is a set of stateless transition functions over a Table.
// Nothing here retains state between calls and nothing here blocks; the
// orchestrator serializes all calls for one table through its actor loop.

// SetupNewHand resets the table for the next hand: per-hand flags and
// controls, dealer rotation, a fresh shuffled deck, hole cards and blinds.
func SetupNewHand(t *Table) error {
	funded := 0
	for _, p := range t.Players {
		if p.Controls.BankRoll > 0 {
			funded++
		}
	}
	if funded < 2 {
		return ErrInvalidState("need at least 2 funded players")
	}

	t.Round++
	for _, p := range t.Players {
		p.resetForHand()
	}
	t.Dealer = t.NextActivePlayer(t.Dealer)
	t.CommunityCards = nil
	t.Pots = nil
	t.Winners = nil
	t.Summary = nil

	// Blind pressure: double every 10 rounds.
	if t.Round > 1 && t.Round%10 == 1 {
		t.Blind *= 2
	}

	t.deck.RestoreAndShuffle()
	dealHoleCards(t)
	PerformBlindBets(t)

	t.MinRaise = t.Blind
	t.Betting = true
	t.Phase = PhasePreflop
	t.PlayerThatActed = InvalidSeat
	t.EventTracker++
	return nil
}

// dealHoleCards hands out two cards per active player, one at a time,
// starting left of the dealer and ending with the dealer.
func dealHoleCards(t *Table) {
	for i := 0; i < 2; i++ {
		seat := t.NextActivePlayer(t.Dealer)
		for {
			t.Players[seat].Cards.Add(t.deck.Draw())
			if seat == t.Dealer {
				break
			}
			seat = t.NextActivePlayer(seat)
		}
	}
}

// PerformBlindBets posts the small and big blinds (capped at each poster's
// bankroll), recomputes the side pots and every player's to-call, and arms
// the pre-flop turn order: first to act is left of the big blind, last to
// act is the big blind itself.
func PerformBlindBets(t *Table) {
	small := t.NextActivePlayer(t.Dealer)
	big := t.NextActivePlayer(small)
	postBlind(t.Players[small], t.Blind/2)
	postBlind(t.Players[big], t.Blind)
	GenerateSidePots(t)

	for _, p := range t.Players {
		if !p.InHand() {
			continue
		}
		due := t.Blind - p.Controls.CurrentBet
		if due < 0 {
			due = 0
		}
		if due > p.Controls.BankRoll {
			due = p.Controls.BankRoll
		}
		p.Controls.ToCall = due
	}

	t.ActingPlayer = t.NextActivePlayer(big)
	t.LastToAct = big
}

func postBlind(p *Player, amount int64) {
	if amount > p.Controls.BankRoll {
		amount = p.Controls.BankRoll
	}
	p.Controls.BankRoll -= amount
	p.Controls.CurrentBet += amount
	if p.Controls.BankRoll == 0 {
		p.AllIn = true
	}
}

// SanitizeRaise clamps a raise that would exceed the actor's bankroll down
// to a legal all-in raise. Required behavior before HandlePlayerAction so
// the engine never has to reject an over-bankroll raise.
func SanitizeRaise(t *Table, playerID uint64, raise int64) int64 {
	seat := t.Seat(playerID)
	if seat == InvalidSeat {
		return raise
	}
	p := t.Players[seat]
	if max := p.Controls.BankRoll - p.Controls.ToCall; raise > max {
		return max
	}
	return raise
}

// HandlePlayerAction validates and applies one betting action for the acting
// player. Precondition violations leave the table untouched and come back as
// errors for the caller to log; they are protocol mistakes, not game flow.
func HandlePlayerAction(t *Table, playerID uint64, action ActionType, raise int64) error {
	if !t.Betting {
		return ErrNotBetting
	}
	seat := t.Seat(playerID)
	if seat == InvalidSeat || seat != t.ActingPlayer {
		return ErrOutOfTurn
	}
	if raise < 0 {
		return fmt.Errorf("%w: negative raise %d", ErrInvalidAction, raise)
	}
	p := t.Players[seat]

	switch action {
	case ActionFold:
		if t.UnfoldedCount() < 2 {
			return ErrInvalidState("fold with fewer than 2 players contesting")
		}
		p.Folded = true
		p.Controls.ToCall = 0

	case ActionCheck:
		if p.Controls.ToCall != 0 {
			return ErrCheckDenied
		}

	case ActionCall:
		due := p.Controls.ToCall
		if due > p.Controls.BankRoll {
			return ErrShortStack
		}
		p.Controls.BankRoll -= due
		p.Controls.CurrentBet += due
		p.Controls.ToCall = 0
		if p.Controls.BankRoll == 0 {
			p.AllIn = true
		}

	case ActionRaise:
		total := p.Controls.ToCall + raise
		if total > p.Controls.BankRoll {
			return ErrShortStack
		}
		allInRaise := total == p.Controls.BankRoll
		if raise < t.MinRaise && !allInRaise {
			return ErrRaiseTooSmall
		}
		p.Controls.BankRoll -= total
		p.Controls.CurrentBet += total
		p.Controls.ToCall = 0
		if p.Controls.BankRoll == 0 {
			p.AllIn = true
		}
		t.MinRaise = p.Controls.CurrentBet
		for _, q := range t.Players {
			if q == p || !q.InHand() {
				continue
			}
			due := p.Controls.CurrentBet - q.Controls.CurrentBet
			if due < 0 {
				due = 0
			}
			if due > q.Controls.BankRoll {
				due = q.Controls.BankRoll
			}
			q.Controls.ToCall = due
		}
		// The round now runs until action returns to just before the raiser.
		t.LastToAct = t.PrevActivePlayer(seat)

	case ActionAllInCheck:
		if !p.AllIn {
			return fmt.Errorf("%w: all-in check from a live stack", ErrInvalidAction)
		}

	default:
		return fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}

	GenerateSidePots(t)
	t.PlayerThatActed = seat
	t.ActingPlayer = t.NextActivePlayer(seat)
	t.EventTracker++
	return nil
}

// RoundComplete reports whether the current betting round has gone
// full-circle: the last mover is the armed last-to-act seat and no raise
// re-opened the action in between (a raise moves LastToAct).
func RoundComplete(t *Table) bool {
	if t.UnfoldedCount() < 2 {
		return true
	}
	return t.PlayerThatActed != InvalidSeat && t.PlayerThatActed == t.LastToAct
}

// BeginNextStreet burns and deals the next street, clears per-street betting
// fields and arms post-flop turn order (first active seat left of the
// dealer opens, the seat before it closes).
func BeginNextStreet(t *Table) error {
	switch t.Phase {
	case PhasePreflop:
		t.deck.Burn()
		t.CommunityCards.Add(t.deck.Draw(), t.deck.Draw(), t.deck.Draw())
		t.Phase = PhaseFlop
	case PhaseFlop:
		t.deck.Burn()
		t.CommunityCards.Add(t.deck.Draw())
		t.Phase = PhaseTurn
	case PhaseTurn:
		t.deck.Burn()
		t.CommunityCards.Add(t.deck.Draw())
		t.Phase = PhaseRiver
	default:
		return ErrInvalidState(fmt.Sprintf("no next street after %s", t.Phase))
	}

	for _, p := range t.Players {
		p.Controls.ToCall = 0
	}
	t.MinRaise = t.Blind
	t.PlayerThatActed = InvalidSeat
	t.ActingPlayer = t.NextActivePlayer(t.Dealer)
	t.LastToAct = t.PrevActivePlayer(t.ActingPlayer)
	return nil
}

// RunOutBoard deals the remaining streets without betting. Used when all but
// at most one contesting player is all-in.
func RunOutBoard(t *Table) {
	for t.Phase != PhaseRiver {
		if err := BeginNextStreet(t); err != nil {
			return
		}
	}
}
