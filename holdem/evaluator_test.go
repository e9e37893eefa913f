package holdem

import (
	"math/rand"
	"testing"

	poker "github.com/paulhankin/poker"

	"pokerhall/card"
)

func mustHand(t *testing.T, strs ...string) card.CardList {
	t.Helper()
	cl, err := card.ParseList(strs...)
	if err != nil {
		t.Fatalf("bad test cards %v: %v", strs, err)
	}
	return cl
}

func rankOf(t *testing.T, strs ...string) HandRank {
	t.Helper()
	hr, err := RankHand(mustHand(t, strs...))
	if err != nil {
		t.Fatalf("RankHand(%v): %v", strs, err)
	}
	return hr
}

func TestRankHand_TypeOrdering(t *testing.T) {
	// One hand per type, weakest to strongest; each must outrank the previous.
	hands := []struct {
		typ  HandType
		hand []string
	}{
		{HandHighCard, []string{"2s", "5h", "7c", "9d", "Jc", "Ks", "3h"}},
		{HandPair, []string{"2s", "2h", "7c", "9d", "Jc", "Ks", "3h"}},
		{HandTwoPair, []string{"2s", "2h", "7c", "7d", "Jc", "Ks", "3h"}},
		{HandSet, []string{"2s", "2h", "2c", "9d", "Jc", "Ks", "3h"}},
		{HandStraight, []string{"4s", "5h", "6c", "7d", "8c", "Ks", "2h"}},
		{HandFlush, []string{"2s", "5s", "7s", "9s", "Js", "Kh", "3d"}},
		{HandFullHouse, []string{"2s", "2h", "2c", "9d", "9c", "Ks", "3h"}},
		{HandFourOfAKind, []string{"2s", "2h", "2c", "2d", "Jc", "Ks", "3h"}},
		{HandStraightFlush, []string{"4s", "5s", "6s", "7s", "8s", "Kh", "2d"}},
	}

	prev := 0
	for _, tc := range hands {
		hr := rankOf(t, tc.hand...)
		if hr.Type != tc.typ {
			t.Fatalf("%v: expected type %s, got %s", tc.hand, tc.typ, hr.Type)
		}
		if hr.Rank <= prev {
			t.Fatalf("%s rank %d does not outrank previous %d", tc.typ, hr.Rank, prev)
		}
		prev = hr.Rank
	}
}

func TestRankHand_WheelIsLowestStraight(t *testing.T) {
	wheel := rankOf(t, "As", "2h", "3c", "4d", "5s", "9h", "Jc")
	if wheel.Type != HandStraight {
		t.Fatalf("expected straight for wheel, got %s", wheel.Type)
	}
	sixHigh := rankOf(t, "2s", "3h", "4c", "5d", "6s", "9h", "Jc")
	if sixHigh.Type != HandStraight {
		t.Fatalf("expected straight for 6-high, got %s", sixHigh.Type)
	}
	if wheel.Rank >= sixHigh.Rank {
		t.Fatalf("wheel must rank below 6-high straight: %d >= %d", wheel.Rank, sixHigh.Rank)
	}
}

func TestRankHand_BroadwayBeatsKingHigh(t *testing.T) {
	broadway := rankOf(t, "Ts", "Jh", "Qc", "Kd", "As", "2h", "3c")
	kingHigh := rankOf(t, "9s", "Th", "Jc", "Qd", "Ks", "2h", "3c")
	if broadway.Rank <= kingHigh.Rank {
		t.Fatalf("broadway must beat king-high straight: %d <= %d", broadway.Rank, kingHigh.Rank)
	}
}

func TestRankHand_HighestRunWins(t *testing.T) {
	// Both a 5-high and a 9-high run are present; the 9-high must win.
	both := rankOf(t, "2s", "3h", "4c", "5d", "6s", "7h", "8c")
	if both.Type != HandStraight {
		t.Fatalf("expected straight, got %s", both.Type)
	}
	wheelOnly := rankOf(t, "As", "2h", "3c", "4d", "5s", "Th", "Jc")
	if both.Rank <= wheelOnly.Rank {
		t.Fatalf("did not pick the highest run: %d <= %d", both.Rank, wheelOnly.Rank)
	}
	if best := both.Hand[4].Value(); best != 8 {
		t.Fatalf("expected 8-high run, got top card value %d", best)
	}
}

func TestRankHand_QuadsBeforeFullHouse(t *testing.T) {
	// Quads plus a pair in the leftovers must never be read as a full house.
	hr := rankOf(t, "9s", "9h", "9c", "9d", "Ks", "Kh", "2c")
	if hr.Type != HandFourOfAKind {
		t.Fatalf("expected four of a kind, got %s", hr.Type)
	}
}

func TestRankHand_KickerBreaksPairTie(t *testing.T) {
	high := rankOf(t, "9s", "9h", "Ac", "7d", "5s", "3h", "2c")
	low := rankOf(t, "9c", "9d", "Kc", "7h", "5c", "3d", "2h")
	if high.Rank <= low.Rank {
		t.Fatalf("ace kicker must beat king kicker: %d <= %d", high.Rank, low.Rank)
	}
}

func TestRankHand_EqualHandsChop(t *testing.T) {
	// Same board plays for both; hole cards don't improve either hand.
	a := rankOf(t, "2s", "3h", "Ac", "Kc", "Qc", "Jc", "Tc")
	b := rankOf(t, "4d", "5d", "Ac", "Kc", "Qc", "Jc", "Tc")
	if a.Rank != b.Rank {
		t.Fatalf("identical best-fives must rank equal: %d != %d", a.Rank, b.Rank)
	}
}

func TestRankHand_ShuffleInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := mustHand(t, "As", "Ah", "Kc", "Kd", "Qs", "7h", "2c")
	want := rankOf(t, base.Strings()...)
	for i := 0; i < 50; i++ {
		shuffled := make(card.CardList, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		hr, err := RankHand(shuffled)
		if err != nil {
			t.Fatalf("RankHand: %v", err)
		}
		if hr.Rank != want.Rank {
			t.Fatalf("rank depends on input order: %d != %d", hr.Rank, want.Rank)
		}
	}
}

func TestRankHand_RejectsBadInput(t *testing.T) {
	if _, err := RankHand(mustHand(t, "As", "Ah", "Kc")); err == nil {
		t.Fatal("expected error for 3 cards")
	}
	dup := mustHand(t, "As", "As", "Kc", "Kd", "Qs", "7h", "2c")
	if _, err := RankHand(dup); err == nil {
		t.Fatal("expected error for duplicate card")
	}
	masked := mustHand(t, "As", "Ah", "Kc", "Kd", "Qs", "7h")
	masked = append(masked, card.CardFaceDown)
	if _, err := RankHand(masked); err == nil {
		t.Fatal("expected error for face-down card")
	}
}

// --- cross-check against the paulhankin evaluator ---

func toOracle(t *testing.T, c card.Card) poker.Card {
	t.Helper()
	var s poker.Suit
	switch c.Suit() {
	case card.Spade:
		s = poker.Spade
	case card.Heart:
		s = poker.Heart
	case card.Club:
		s = poker.Club
	case card.Diamond:
		s = poker.Diamond
	}
	r := poker.Rank(c.Rank())
	pc, err := poker.MakeCard(s, r)
	if err != nil {
		t.Fatalf("oracle card %s: %v", c, err)
	}
	return pc
}

func oracleScore(t *testing.T, cl card.CardList) int16 {
	t.Helper()
	var a7 [7]poker.Card
	for i, c := range cl {
		a7[i] = toOracle(t, c)
	}
	return poker.Eval7(&a7)
}

// Random 7-card deals: our total order must agree with the reference
// evaluator on every pairwise comparison, including exact ties.
func TestRankHand_AgreesWithOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	deck := make(card.CardList, len(FullDeck))

	deal := func() card.CardList {
		copy(deck, FullDeck)
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		out := make(card.CardList, 7)
		copy(out, deck[:7])
		return out
	}

	iterations := 2000
	if testing.Short() {
		iterations = 200
	}
	for i := 0; i < iterations; i++ {
		a, b := deal(), deal()
		ra, err := RankHand(a)
		if err != nil {
			t.Fatalf("RankHand(%v): %v", a.Strings(), err)
		}
		rb, err := RankHand(b)
		if err != nil {
			t.Fatalf("RankHand(%v): %v", b.Strings(), err)
		}
		oa, ob := oracleScore(t, a), oracleScore(t, b)

		switch {
		case oa > ob && ra.Rank <= rb.Rank:
			t.Fatalf("disagree: oracle says %v > %v, ours %d <= %d", a.Strings(), b.Strings(), ra.Rank, rb.Rank)
		case oa < ob && ra.Rank >= rb.Rank:
			t.Fatalf("disagree: oracle says %v < %v, ours %d >= %d", a.Strings(), b.Strings(), ra.Rank, rb.Rank)
		case oa == ob && ra.Rank != rb.Rank:
			t.Fatalf("disagree: oracle ties %v and %v, ours %d != %d", a.Strings(), b.Strings(), ra.Rank, rb.Rank)
		}
	}
}
