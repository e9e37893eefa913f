package holdem

import (
	"strings"

	"pokerhall/card"
)

// InvalidSeat marks "no seat" for dealer/acting/last-to-act indices.
const InvalidSeat = -1

// Phase 手牌阶段
type Phase byte

const (
	PhaseHandSetup Phase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseHandDone
)

var phaseNames = map[Phase]string{
	PhaseHandSetup: "setup",
	PhasePreflop:   "preflop",
	PhaseFlop:      "flop",
	PhaseTurn:      "turn",
	PhaseRiver:     "river",
	PhaseShowdown:  "showdown",
	PhaseHandDone:  "done",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// ActionType 玩家动作
type ActionType byte

const (
	ActionNone ActionType = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionFold
	// ActionAllInCheck is the forced no-op for players who are already
	// all-in: it advances the turn and nothing else.
	ActionAllInCheck
)

var actionNames = map[ActionType]string{
	ActionNone:       "NONE",
	ActionCheck:      "CHECK",
	ActionCall:       "CALL",
	ActionRaise:      "RAISE",
	ActionFold:       "FOLD",
	ActionAllInCheck: "ALLIN_CHECK",
}

func (a ActionType) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseAction maps a wire action name back to its ActionType. Clients send
// lower-case names; matching ignores case.
func ParseAction(s string) (ActionType, bool) {
	s = strings.ToUpper(s)
	for a, name := range actionNames {
		if name == s && a != ActionNone {
			return a, true
		}
	}
	return ActionNone, false
}

// HandType values double as the most significant digit of the numeric hand
// rank, so a higher type always outranks any lower type regardless of kickers.
type HandType byte

const (
	HandHighCard HandType = iota + 1
	HandPair
	HandTwoPair
	HandSet
	HandStraight
	HandFlush
	HandFullHouse
	HandFourOfAKind
	HandStraightFlush
)

var handTypeNames = map[HandType]string{
	HandHighCard:      "high card",
	HandPair:          "pair",
	HandTwoPair:       "two pair",
	HandSet:           "three of a kind",
	HandStraight:      "straight",
	HandFlush:         "flush",
	HandFullHouse:     "full house",
	HandFourOfAKind:   "four of a kind",
	HandStraightFlush: "straight flush",
}

func (h HandType) String() string {
	if s, ok := handTypeNames[h]; ok {
		return s
	}
	return "unknown"
}

var FullDeck = []card.Card{
	card.CardSpadeA, card.CardSpade2, card.CardSpade3, card.CardSpade4, card.CardSpade5, card.CardSpade6,
	card.CardSpade7, card.CardSpade8, card.CardSpade9, card.CardSpadeT, card.CardSpadeJ, card.CardSpadeQ, card.CardSpadeK,
	card.CardHeartA, card.CardHeart2, card.CardHeart3, card.CardHeart4, card.CardHeart5, card.CardHeart6,
	card.CardHeart7, card.CardHeart8, card.CardHeart9, card.CardHeartT, card.CardHeartJ, card.CardHeartQ, card.CardHeartK,
	card.CardClubA, card.CardClub2, card.CardClub3, card.CardClub4, card.CardClub5, card.CardClub6,
	card.CardClub7, card.CardClub8, card.CardClub9, card.CardClubT, card.CardClubJ, card.CardClubQ, card.CardClubK,
	card.CardDiamondA, card.CardDiamond2, card.CardDiamond3, card.CardDiamond4, card.CardDiamond5, card.CardDiamond6,
	card.CardDiamond7, card.CardDiamond8, card.CardDiamond9, card.CardDiamondT, card.CardDiamondJ, card.CardDiamondQ, card.CardDiamondK,
}
