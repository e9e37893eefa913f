package holdem

import (
	"testing"
)

func giveCards(t *testing.T, tbl *Table, seat int, strs ...string) {
	t.Helper()
	tbl.Players[seat].Cards = mustHand(t, strs...)
}

func TestDetermineWinners_FoldDownAwardsUnseen(t *testing.T) {
	tbl := testTable(t, 1000, 1000, 1000)
	mustSetup(t, tbl)

	// dealer=0 folds, sb=1 folds, bb=2 takes the blinds
	mustAct(t, tbl, ActionFold, 0)
	mustAct(t, tbl, ActionFold, 0)

	winners, err := DetermineWinners(tbl)
	if err != nil {
		t.Fatalf("DetermineWinners: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("want a single winner, got %d", len(winners))
	}
	w := winners[0]
	if w.PlayerID != tbl.Players[2].ID || w.Winnings != 30 {
		t.Fatalf("big blind should take the 30-chip pot unseen, got %+v", w)
	}
	if w.Type != WinTypeUncontested || len(w.Cards) != 0 {
		t.Fatalf("fold-down must not reveal or rank cards, got %+v", w)
	}
	if got := tbl.Players[2].Controls.BankRoll; got != 1010 {
		t.Fatalf("winner bankroll %d, want 1010", got)
	}
	if tbl.PotTotal() != 0 || tbl.Phase != PhaseHandDone {
		t.Fatalf("hand not settled: pot=%d phase=%s", tbl.PotTotal(), tbl.Phase)
	}
}

func TestDetermineWinners_BestHandTakesOnePot(t *testing.T) {
	tbl := testTable(t, 900, 900, 980)
	giveCards(t, tbl, 0, "As", "Ah")
	giveCards(t, tbl, 1, "Ks", "Kh")
	tbl.Players[2].Folded = true
	tbl.CommunityCards = mustHand(t, "Ac", "7d", "2c", "9h", "4s")

	tbl.Players[0].Controls.CurrentBet = 100
	tbl.Players[1].Controls.CurrentBet = 100
	tbl.Players[2].Controls.CurrentBet = 20 // folded blind stays in
	GenerateSidePots(tbl)

	winners, err := DetermineWinners(tbl)
	if err != nil {
		t.Fatalf("DetermineWinners: %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("want one winner, got %+v", winners)
	}
	if winners[0].PlayerID != tbl.Players[0].ID || winners[0].Winnings != 220 {
		t.Fatalf("trip aces should take the full 220 pot, got %+v", winners[0])
	}
	if winners[0].Type != HandSet.String() {
		t.Fatalf("winner type %q, want %q", winners[0].Type, HandSet.String())
	}
	if tbl.Summary == nil || tbl.Summary.Seat != 0 {
		t.Fatalf("summary should name seat 0, got %+v", tbl.Summary)
	}
}

// A short stack with the best hand only claims the pot it covered; the
// surplus side pot goes to the best hand among its contributors.
func TestDetermineWinners_ShortStackCeiling(t *testing.T) {
	tbl := testTable(t, 100, 500, 500)
	giveCards(t, tbl, 0, "As", "Ah")
	giveCards(t, tbl, 1, "Ks", "Kh")
	giveCards(t, tbl, 2, "Qs", "Qh")
	tbl.CommunityCards = mustHand(t, "Ac", "7d", "2c", "9h", "4s")

	tbl.Players[0].Controls.BankRoll = 0
	tbl.Players[0].Controls.CurrentBet = 100
	tbl.Players[0].AllIn = true
	tbl.Players[1].Controls.BankRoll = 200
	tbl.Players[1].Controls.CurrentBet = 300
	tbl.Players[2].Controls.BankRoll = 200
	tbl.Players[2].Controls.CurrentBet = 300
	GenerateSidePots(tbl)

	before := int64(0)
	for _, p := range tbl.Players {
		before += p.Controls.BankRoll + p.Controls.CurrentBet
	}

	winners, err := DetermineWinners(tbl)
	if err != nil {
		t.Fatalf("DetermineWinners: %v", err)
	}
	paid := map[uint64]int64{}
	for _, w := range winners {
		paid[w.PlayerID] = w.Winnings
	}
	if paid[tbl.Players[0].ID] != 300 {
		t.Fatalf("all-in aces should win only the 300 main pot, got %d", paid[tbl.Players[0].ID])
	}
	if paid[tbl.Players[1].ID] != 400 {
		t.Fatalf("kings should sweep the 400 side pot, got %d", paid[tbl.Players[1].ID])
	}
	if _, ok := paid[tbl.Players[2].ID]; ok {
		t.Fatal("queens should win nothing")
	}

	after := int64(0)
	for _, p := range tbl.Players {
		after += p.Controls.BankRoll
	}
	if after != before {
		t.Fatalf("chips not conserved through showdown: %d != %d", after, before)
	}
	// all-in winner rolls its stack into the next hand
	if got := tbl.Players[0].Controls.BankRoll; got != 300 {
		t.Fatalf("short stack bankroll %d, want 300", got)
	}
}

func TestDetermineWinners_ChopWithOddChip(t *testing.T) {
	tbl := testTable(t, 900, 900, 975)
	// the board plays for both live hands
	giveCards(t, tbl, 0, "2h", "3d")
	giveCards(t, tbl, 1, "2d", "3h")
	tbl.Players[2].Folded = true
	tbl.CommunityCards = mustHand(t, "As", "Ks", "Qs", "Js", "10s")

	tbl.Players[0].Controls.CurrentBet = 100
	tbl.Players[1].Controls.CurrentBet = 100
	tbl.Players[2].Controls.CurrentBet = 25
	GenerateSidePots(tbl)

	winners, err := DetermineWinners(tbl)
	if err != nil {
		t.Fatalf("DetermineWinners: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("want a two-way chop, got %+v", winners)
	}
	// 225 splits 112/112 with the odd chip to the earliest seat
	if winners[0].PlayerID != tbl.Players[0].ID || winners[0].Winnings != 113 {
		t.Fatalf("earliest seat should get the odd chip: %+v", winners[0])
	}
	if winners[1].PlayerID != tbl.Players[1].ID || winners[1].Winnings != 112 {
		t.Fatalf("second seat share wrong: %+v", winners[1])
	}
}

func TestDetermineWinners_IncompleteBoardRejected(t *testing.T) {
	tbl := testTable(t, 1000, 1000)
	giveCards(t, tbl, 0, "As", "Ah")
	giveCards(t, tbl, 1, "Ks", "Kh")
	tbl.CommunityCards = mustHand(t, "Ac", "7d", "2c")

	if _, err := DetermineWinners(tbl); err == nil {
		t.Fatal("showdown on a 3-card board must fail")
	}
}

func TestDetermineWinners_RevealsOnlyComparedHands(t *testing.T) {
	tbl := testTable(t, 900, 900, 980)
	giveCards(t, tbl, 0, "As", "Ah")
	giveCards(t, tbl, 1, "Ks", "Kh")
	tbl.Players[2].Folded = true
	tbl.CommunityCards = mustHand(t, "Ac", "7d", "2c", "9h", "4s")

	tbl.Players[0].Controls.CurrentBet = 100
	tbl.Players[1].Controls.CurrentBet = 100
	tbl.Players[2].Controls.CurrentBet = 20
	GenerateSidePots(tbl)

	if _, err := DetermineWinners(tbl); err != nil {
		t.Fatalf("DetermineWinners: %v", err)
	}
	if !tbl.Players[0].Revealed || !tbl.Players[1].Revealed {
		t.Fatal("hands that went to showdown should be revealed")
	}
	if tbl.Players[2].Revealed {
		t.Fatal("a folded hand must stay hidden")
	}

	// the reveal lasts until the next deal
	if err := SetupNewHand(tbl); err != nil {
		t.Fatalf("SetupNewHand: %v", err)
	}
	for seat, p := range tbl.Players {
		if p.Revealed {
			t.Fatalf("seat %d still revealed after the new deal", seat)
		}
	}
}

func TestDetermineWinners_FoldDownRevealsNothing(t *testing.T) {
	tbl := testTable(t, 1000, 1000, 1000)
	mustSetup(t, tbl)

	mustAct(t, tbl, ActionFold, 0)
	mustAct(t, tbl, ActionFold, 0)

	if _, err := DetermineWinners(tbl); err != nil {
		t.Fatalf("DetermineWinners: %v", err)
	}
	for seat, p := range tbl.Players {
		if p.Revealed {
			t.Fatalf("seat %d revealed on an uncontested win", seat)
		}
	}
}
