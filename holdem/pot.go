package holdem

import "sort"

// GenerateSidePots rebuilds the side pots from scratch out of every player's
// hand contribution so far. The distinct all-in ceilings plus the table-wide
// maximum bet define the pot boundaries; each pot first collects
// min(ceiling, bet) from every player, then consecutive totals are delta'd
// so the pots are disjoint and ordered low to high.
//
// Idempotent and cheap: it runs after every single action because pot
// displays update live, not just at hand end.
func GenerateSidePots(t *Table) {
	var maxBet int64
	ceilingSet := make(map[int64]bool)
	for _, p := range t.Players {
		bet := p.Controls.CurrentBet
		if bet > maxBet {
			maxBet = bet
		}
		if p.AllIn && bet > 0 {
			ceilingSet[bet] = true
		}
	}
	ceilingSet[maxBet] = true

	ceilings := make([]int64, 0, len(ceilingSet))
	for c := range ceilingSet {
		ceilings = append(ceilings, c)
	}
	sort.Slice(ceilings, func(i, j int) bool { return ceilings[i] < ceilings[j] })

	pots := make([]Pot, 0, len(ceilings))
	for _, ceiling := range ceilings {
		var total int64
		for _, p := range t.Players {
			bet := p.Controls.CurrentBet
			if bet > ceiling {
				bet = ceiling
			}
			total += bet
		}
		pots = append(pots, Pot{Wager: ceiling, Total: total})
	}
	for i := len(pots) - 1; i > 0; i-- {
		pots[i].Total -= pots[i-1].Total
	}
	t.Pots = pots
}
