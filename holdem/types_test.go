package holdem

import "testing"

func TestParseAction_IgnoresCase(t *testing.T) {
	cases := map[string]ActionType{
		"raise":       ActionRaise,
		"RAISE":       ActionRaise,
		"Call":        ActionCall,
		"check":       ActionCheck,
		"fold":        ActionFold,
		"allin_check": ActionAllInCheck,
	}
	for in, want := range cases {
		got, ok := ParseAction(in)
		if !ok || got != want {
			t.Errorf("ParseAction(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseAction("teleport"); ok {
		t.Error("unknown action name should not parse")
	}
	if _, ok := ParseAction("NONE"); ok {
		t.Error("the zero action is not a playable wire value")
	}
}
