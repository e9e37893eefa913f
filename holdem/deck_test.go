package holdem

import (
	"testing"

	"pokerhall/card"
)

// Draws and burns must keep cards + used pile equal to one full 52-card set.
func TestDeck_PilesAlwaysCoverFullSet(t *testing.T) {
	d := NewDeck(42)

	check := func() {
		t.Helper()
		if got := d.Remaining() + d.UsedCount(); got != 52 {
			t.Fatalf("piles cover %d cards, want 52", got)
		}
		seen := make(map[card.Card]bool, 52)
		for _, c := range d.cards {
			seen[c] = true
		}
		for _, c := range d.used {
			if seen[c] {
				t.Fatalf("card %s in both piles", c)
			}
			seen[c] = true
		}
		if len(seen) != 52 {
			t.Fatalf("%d unique cards across piles, want 52", len(seen))
		}
	}

	check()
	for i := 0; i < 20; i++ {
		if i%5 == 0 {
			d.Burn()
		} else {
			d.Draw()
		}
		check()
	}
	if d.Remaining() != 32 {
		t.Fatalf("expected 32 remaining, got %d", d.Remaining())
	}

	d.RestoreAndShuffle()
	check()
	if d.Remaining() != 52 || d.UsedCount() != 0 {
		t.Fatalf("restore did not reset piles: %d live, %d used", d.Remaining(), d.UsedCount())
	}
}

func TestDeck_SeededShuffleIsDeterministic(t *testing.T) {
	a, b := NewDeck(7), NewDeck(7)
	for i := 0; i < 52; i++ {
		ca, cb := a.Draw(), b.Draw()
		if ca != cb {
			t.Fatalf("same seed diverged at card %d: %s vs %s", i, ca, cb)
		}
	}
}
