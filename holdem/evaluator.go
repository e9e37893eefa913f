package holdem

import (
	"fmt"
	"sort"

	"pokerhall/card"
)

// HandRank is a totally ordered hand strength. Rank packs the hand type into
// the most significant base-15 digit and the five final card values into the
// digits below it, so integer comparison of two ranks equals poker
// comparison. Equal ranks are legitimate (chopped pots) and are never broken
// here; the showdown logic splits pots between them.
type HandRank struct {
	Rank int
	Hand card.CardList
	Type HandType
}

const rankDigits = 5

// detector returns the best five cards for its hand type, in packing order
// (ascending significance: index 0 is the least significant digit), or nil
// when the cards do not make that type.
type detector func(sevenCards) card.CardList

// RankHand evaluates the best 5-of-7 hand. The detectors run in strict
// descending strength order and the first hit wins: four-of-a-kind must be
// tried before full house, because the three cards left beside quads can
// look like pair material, and so on down the chain.
func RankHand(cards card.CardList) (HandRank, error) {
	if len(cards) != 7 {
		return HandRank{}, fmt.Errorf("rank hand needs 7 cards, got %d", len(cards))
	}
	seen := make(map[card.Card]bool, 7)
	for _, c := range cards {
		if c == card.CardInvalid || c == card.CardFaceDown {
			return HandRank{}, fmt.Errorf("cannot rank card %s", c)
		}
		if seen[c] {
			return HandRank{}, fmt.Errorf("duplicate card %s", c)
		}
		seen[c] = true
	}

	seven := newSevenCards(cards)
	chain := []struct {
		typ HandType
		fn  detector
	}{
		{HandStraightFlush, findStraightFlush},
		{HandFourOfAKind, findFourOfAKind},
		{HandFullHouse, findFullHouse},
		{HandFlush, findFlush},
		{HandStraight, findStraight},
		{HandSet, findSet},
		{HandTwoPair, findTwoPair},
		{HandPair, findPair},
		{HandHighCard, findHighCard},
	}
	for _, link := range chain {
		if hand := link.fn(seven); len(hand) == rankDigits {
			return HandRank{
				Rank: packRank(link.typ, hand),
				Hand: hand,
				Type: link.typ,
			}, nil
		}
	}
	// findHighCard always matches; unreachable.
	return HandRank{}, ErrInvalidState("no detector matched")
}

// packRank computes typeValue*15^5 + sum(value_i * 15^i). Card values are
// 2..14 so base 15 keeps each digit separate.
func packRank(typ HandType, hand card.CardList) int {
	rank := int(typ)
	for i := rankDigits - 1; i >= 0; i-- {
		rank = rank*15 + hand[i].Value()
	}
	return rank
}

// sevenCards pre-sorts the input descending by value so the detectors can
// take "highest first" slices without re-sorting.
type sevenCards struct {
	desc   card.CardList               // all 7, descending by value
	bySuit map[card.Suit]card.CardList // each suit group, descending by value
	count  map[int]int                 // value -> occurrences
}

func newSevenCards(cards card.CardList) sevenCards {
	desc := make(card.CardList, len(cards))
	copy(desc, cards)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i].Value() > desc[j].Value() })

	s := sevenCards{
		desc:   desc,
		bySuit: make(map[card.Suit]card.CardList, 4),
		count:  make(map[int]int, 7),
	}
	for _, c := range desc {
		s.bySuit[c.Suit()] = append(s.bySuit[c.Suit()], c)
		s.count[c.Value()]++
	}
	return s
}

// cardsOfValue returns up to want cards of one value, highest suits first.
func (s sevenCards) cardsOfValue(v, want int) card.CardList {
	out := make(card.CardList, 0, want)
	for _, c := range s.desc {
		if c.Value() == v {
			out = append(out, c)
			if len(out) == want {
				break
			}
		}
	}
	return out
}

// kickers returns up to want highest cards whose values are not excluded,
// ordered ascending so they pack straight into the least significant digits.
func (s sevenCards) kickers(want int, excluded ...int) card.CardList {
	skip := make(map[int]bool, len(excluded))
	for _, v := range excluded {
		skip[v] = true
	}
	picked := make(card.CardList, 0, want)
	for _, c := range s.desc {
		if skip[c.Value()] {
			continue
		}
		picked = append(picked, c)
		if len(picked) == want {
			break
		}
	}
	if len(picked) != want {
		return nil
	}
	// highest kicker must land in the most significant kicker digit
	reverse(picked)
	return picked
}

func reverse(cl card.CardList) {
	for i, j := 0, len(cl)-1; i < j; i, j = i+1, j-1 {
		cl[i], cl[j] = cl[j], cl[i]
	}
}

// checkForFiveConsecutiveCards finds the highest five-card run in the given
// cards (descending by value). The wheel (A-2-3-4-5) is special-cased: the
// ace packs into the least significant digit so the wheel ranks below the
// six-high straight.
func checkForFiveConsecutiveCards(cards card.CardList) card.CardList {
	byValue := make(map[int]card.Card, len(cards))
	for _, c := range cards {
		if _, ok := byValue[c.Value()]; !ok {
			byValue[c.Value()] = c
		}
	}

	for high := 14; high >= 6; high-- {
		run := make(card.CardList, 0, 5)
		for v := high - 4; v <= high; v++ {
			c, ok := byValue[v]
			if !ok {
				break
			}
			run = append(run, c)
		}
		if len(run) == 5 {
			return run
		}
	}

	// Wheel: ace plays low.
	if ace, ok := byValue[14]; ok {
		run := card.CardList{ace}
		for v := 2; v <= 5; v++ {
			c, ok := byValue[v]
			if !ok {
				return nil
			}
			run = append(run, c)
		}
		return run
	}
	return nil
}

func findStraightFlush(s sevenCards) card.CardList {
	for _, suited := range s.bySuit {
		if len(suited) < 5 {
			continue
		}
		if run := checkForFiveConsecutiveCards(suited); run != nil {
			return run
		}
	}
	return nil
}

func findFourOfAKind(s sevenCards) card.CardList {
	for v, n := range s.count {
		if n != 4 {
			continue
		}
		kickers := s.kickers(1, v)
		// quads occupy the most significant digits, kicker the least
		return append(kickers, s.cardsOfValue(v, 4)...)
	}
	return nil
}

func findFullHouse(s sevenCards) card.CardList {
	trips := bestOfCount(s, 3, 0)
	if trips == 0 {
		return nil
	}
	pair := bestOfCount(s, 2, trips)
	if pair == 0 {
		return nil
	}
	hand := s.cardsOfValue(pair, 2)
	return append(hand, s.cardsOfValue(trips, 3)...)
}

func findFlush(s sevenCards) card.CardList {
	for _, suited := range s.bySuit {
		if len(suited) < 5 {
			continue
		}
		hand := make(card.CardList, 5)
		copy(hand, suited[:5])
		reverse(hand) // ascending, so the top card is most significant
		return hand
	}
	return nil
}

func findStraight(s sevenCards) card.CardList {
	return checkForFiveConsecutiveCards(s.desc)
}

func findSet(s sevenCards) card.CardList {
	trips := bestOfCount(s, 3, 0)
	if trips == 0 {
		return nil
	}
	hand := s.kickers(2, trips)
	return append(hand, s.cardsOfValue(trips, 3)...)
}

func findTwoPair(s sevenCards) card.CardList {
	high := bestOfCount(s, 2, 0)
	if high == 0 {
		return nil
	}
	low := bestOfCount(s, 2, high)
	if low == 0 {
		return nil
	}
	hand := s.kickers(1, high, low)
	hand = append(hand, s.cardsOfValue(low, 2)...)
	return append(hand, s.cardsOfValue(high, 2)...)
}

func findPair(s sevenCards) card.CardList {
	pair := bestOfCount(s, 2, 0)
	if pair == 0 {
		return nil
	}
	hand := s.kickers(3, pair)
	return append(hand, s.cardsOfValue(pair, 2)...)
}

func findHighCard(s sevenCards) card.CardList {
	hand := make(card.CardList, 5)
	copy(hand, s.desc[:5])
	reverse(hand)
	return hand
}

// bestOfCount returns the highest value held at least n times, skipping the
// excluded value. Zero means no such value.
func bestOfCount(s sevenCards, n int, excluded int) int {
	best := 0
	for v, c := range s.count {
		if v == excluded || c < n {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}
