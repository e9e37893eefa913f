package holdem

import (
	"math/rand"
	"testing"
)

func testTable(t *testing.T, bankrolls ...int64) *Table {
	t.Helper()
	players := make([]*Player, 0, len(bankrolls))
	for i, br := range bankrolls {
		players = append(players, &Player{
			ID:       uint64(1000 + i),
			Name:     "p",
			Controls: TableControls{BankRoll: br},
		})
	}
	tbl, err := NewTable(players, 20, 1)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func potTotals(tbl *Table) (sum int64) {
	for _, p := range tbl.Pots {
		sum += p.Total
	}
	return
}

func betTotals(tbl *Table) (sum int64) {
	for _, p := range tbl.Players {
		sum += p.Controls.CurrentBet
	}
	return
}

func TestGenerateSidePots_NoAllInMakesOnePot(t *testing.T) {
	tbl := testTable(t, 1000, 1000, 1000)
	for _, p := range tbl.Players {
		p.Controls.CurrentBet = 40
	}
	GenerateSidePots(tbl)
	if len(tbl.Pots) != 1 {
		t.Fatalf("expected exactly one pot, got %d", len(tbl.Pots))
	}
	if tbl.Pots[0].Total != 120 || tbl.Pots[0].Wager != 40 {
		t.Fatalf("unexpected pot %+v", tbl.Pots[0])
	}
}

// Two all-ins at 200 and 500 with a 500 caller: pot one takes 200 from all
// three, pot two takes the 200-500 band from the two big stacks only.
func TestGenerateSidePots_UnequalAllIns(t *testing.T) {
	tbl := testTable(t, 0, 0, 500)
	tbl.Players[0].Controls.CurrentBet = 200
	tbl.Players[0].AllIn = true
	tbl.Players[1].Controls.CurrentBet = 500
	tbl.Players[1].AllIn = true
	tbl.Players[2].Controls.CurrentBet = 500

	GenerateSidePots(tbl)
	if len(tbl.Pots) != 2 {
		t.Fatalf("expected 2 pots, got %d: %+v", len(tbl.Pots), tbl.Pots)
	}
	if tbl.Pots[0].Wager != 200 || tbl.Pots[0].Total != 600 {
		t.Fatalf("low pot wrong: %+v", tbl.Pots[0])
	}
	if tbl.Pots[1].Wager != 500 || tbl.Pots[1].Total != 600 {
		t.Fatalf("high pot wrong: %+v", tbl.Pots[1])
	}
}

// Property: for any bet distribution the pot totals sum to the bet sum,
// pots stay ascending by wager, and regeneration is idempotent.
func TestGenerateSidePots_SumAndOrderProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(8)
		bankrolls := make([]int64, n)
		for i := range bankrolls {
			bankrolls[i] = 1000
		}
		tbl := testTable(t, bankrolls...)
		for _, p := range tbl.Players {
			p.Controls.CurrentBet = int64(rng.Intn(40)) * 5
			if p.Controls.CurrentBet > 0 && rng.Intn(3) == 0 {
				p.AllIn = true
			}
		}

		GenerateSidePots(tbl)
		if got, want := potTotals(tbl), betTotals(tbl); got != want {
			t.Fatalf("trial %d: pot sum %d != bet sum %d (%+v)", trial, got, want, tbl.Pots)
		}
		for i := 1; i < len(tbl.Pots); i++ {
			if tbl.Pots[i].Wager <= tbl.Pots[i-1].Wager {
				t.Fatalf("trial %d: pots not ascending: %+v", trial, tbl.Pots)
			}
		}

		before := append([]Pot{}, tbl.Pots...)
		GenerateSidePots(tbl)
		if len(before) != len(tbl.Pots) {
			t.Fatalf("trial %d: regeneration changed pot count", trial)
		}
		for i := range before {
			if before[i] != tbl.Pots[i] {
				t.Fatalf("trial %d: regeneration changed pot %d: %+v -> %+v", trial, i, before[i], tbl.Pots[i])
			}
		}
	}
}
