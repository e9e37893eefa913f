package holdem

import (
	"sort"

	"pokerhall/card"
)

// WinTypeUncontested marks a hand won because everyone else folded; no cards
// were compared and none are revealed.
const WinTypeUncontested = "uncontested"

// DetermineWinners resolves the showdown: it ranks every contesting hand,
// awards each pot to the strongest contenders whose own contribution reaches
// that pot's wager ceiling, credits the winnings to bankrolls and zeroes the
// pots. Ties chop; the odd chip goes to the earliest qualifying seat. A
// short-stacked winner only claims pots up to their own ceiling; surplus
// chips in higher pots roll to the next-best hand among the contributors.
func DetermineWinners(t *Table) ([]Winner, error) {
	t.Betting = false
	t.Phase = PhaseShowdown

	contenders := make([]int, 0, len(t.Players))
	for seat, p := range t.Players {
		if p.InHand() && len(p.Cards) == 2 {
			contenders = append(contenders, seat)
		}
	}
	if len(contenders) == 0 {
		return nil, ErrInvalidState("no contenders at showdown")
	}

	// Fold-down: the last player standing takes everything unseen.
	if len(contenders) == 1 {
		seat := contenders[0]
		p := t.Players[seat]
		total := t.PotTotal()
		p.Controls.BankRoll += total
		for i := range t.Pots {
			t.Pots[i].Total = 0
		}
		w := Winner{PlayerID: p.ID, Winnings: total, Type: WinTypeUncontested}
		t.Winners = []Winner{w}
		t.Summary = &HandSummary{Seat: seat, Type: WinTypeUncontested, Winnings: total}
		t.Phase = PhaseHandDone
		return t.Winners, nil
	}

	if len(t.CommunityCards) != 5 {
		return nil, ErrInvalidState("showdown before the board is complete")
	}

	// Hands are about to be compared, so every contender shows their cards.
	for _, seat := range contenders {
		t.Players[seat].Revealed = true
	}

	type scored struct {
		seat int
		hr   HandRank
	}
	ranked := make([]scored, 0, len(contenders))
	for _, seat := range contenders {
		p := t.Players[seat]
		seven := make(card.CardList, 0, 7)
		seven = append(seven, p.Cards...)
		seven = append(seven, t.CommunityCards...)
		hr, err := RankHand(seven)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{seat: seat, hr: hr})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].hr.Rank > ranked[j].hr.Rank })

	winnings := make(map[int]int64, len(ranked))
	types := make(map[int]HandRank, len(ranked))
	for _, sc := range ranked {
		types[sc.seat] = sc.hr
	}

	// Strongest group first: hand them every pot they qualify for, then drop
	// them from contention and move down.
	for len(ranked) > 0 && t.PotTotal() > 0 {
		group := []scored{ranked[0]}
		rest := ranked[1:]
		for len(rest) > 0 && rest[0].hr.Rank == group[0].hr.Rank {
			group = append(group, rest[0])
			rest = rest[1:]
		}
		ranked = rest

		for i := range t.Pots {
			pot := &t.Pots[i]
			if pot.Total == 0 {
				continue
			}
			qualified := make([]int, 0, len(group))
			for _, sc := range group {
				if t.Players[sc.seat].Controls.CurrentBet >= pot.Wager {
					qualified = append(qualified, sc.seat)
				}
			}
			if len(qualified) == 0 {
				continue
			}
			sort.Ints(qualified)
			share := pot.Total / int64(len(qualified))
			odd := pot.Total % int64(len(qualified))
			for k, seat := range qualified {
				amount := share
				if k == 0 {
					amount += odd
				}
				winnings[seat] += amount
				t.Players[seat].Controls.BankRoll += amount
			}
			pot.Total = 0
		}
	}

	winners := make([]Winner, 0, len(winnings))
	seats := make([]int, 0, len(winnings))
	for seat := range winnings {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	for _, seat := range seats {
		hr := types[seat]
		winners = append(winners, Winner{
			PlayerID: t.Players[seat].ID,
			Winnings: winnings[seat],
			Type:     hr.Type.String(),
			Cards:    hr.Hand,
		})
	}
	t.Winners = winners

	if len(seats) > 0 {
		best := seats[0]
		for _, seat := range seats {
			if types[seat].Rank > types[best].Rank {
				best = seat
			}
		}
		t.Summary = &HandSummary{
			Seat:     best,
			Type:     types[best].Type.String(),
			Cards:    types[best].Hand,
			Winnings: winnings[best],
		}
	}
	t.Phase = PhaseHandDone
	return winners, nil
}
