package history

import (
	"context"
	"testing"
	"time"
)

func record(handID, gameID string, round int, endedAt time.Time) HandRecord {
	return HandRecord{
		HandID:  handID,
		GameID:  gameID,
		Round:   round,
		Board:   []string{"As", "Kd", "7h", "7c", "2s"},
		Actions: []ActionRecord{{Seq: 1, Street: "preflop", Seat: 0, PlayerID: 11, Action: "call"}},
		Winners: []WinnerRecord{{PlayerID: 11, Winnings: 40, Type: "Pair"}},
		EndedAt: endedAt,
	}
}

func TestMemoryStore_ListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	for i := 1; i <= 3; i++ {
		rec := record("h"+string(rune('0'+i)), "gameA", i, base.Add(time.Duration(i)*time.Minute))
		if err := s.SaveHand(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SaveHand(ctx, record("hx", "gameB", 1, base)); err != nil {
		t.Fatal(err)
	}

	hands, err := s.ListRecent(ctx, "gameA", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hands) != 3 {
		t.Fatalf("want 3 hands, got %d", len(hands))
	}
	if hands[0].Round != 3 || hands[2].Round != 1 {
		t.Errorf("hands not newest-first: rounds %d, %d, %d", hands[0].Round, hands[1].Round, hands[2].Round)
	}

	hands, err = s.ListRecent(ctx, "gameA", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hands) != 2 || hands[0].Round != 3 {
		t.Errorf("limit not applied: %d hands", len(hands))
	}

	hands, err = s.ListRecent(ctx, "nope", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hands) != 0 {
		t.Errorf("unknown game should list nothing, got %d", len(hands))
	}
}

func TestMemoryStore_RejectsEmptyHandID(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SaveHand(context.Background(), HandRecord{GameID: "g"}); err == nil {
		t.Fatal("empty hand id should be rejected")
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	want := record("hand-1", "gameA", 7, time.Now().Truncate(time.Millisecond))
	if err := s.SaveHand(ctx, want); err != nil {
		t.Fatal(err)
	}

	hands, err := s.ListRecent(ctx, "gameA", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hands) != 1 {
		t.Fatalf("want 1 hand, got %d", len(hands))
	}
	got := hands[0]
	if got.HandID != want.HandID || got.Round != want.Round {
		t.Errorf("record mismatch: %+v", got)
	}
	if len(got.Board) != 5 || got.Board[0] != "As" {
		t.Errorf("board mismatch: %v", got.Board)
	}
	if len(got.Actions) != 1 || got.Actions[0].PlayerID != 11 {
		t.Errorf("actions mismatch: %+v", got.Actions)
	}
	if len(got.Winners) != 1 || got.Winners[0].Winnings != 40 {
		t.Errorf("winners mismatch: %+v", got.Winners)
	}
}
