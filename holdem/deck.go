package holdem

import (
	"math/rand"
	"time"

	"pokerhall/card"
)

// Deck holds the live cards plus a used pile. The two piles together are
// always exactly one full 52-card set.
type Deck struct {
	cards card.CardList
	used  card.CardList
	rng   *rand.Rand
}

// NewDeck builds a shuffled deck. A zero seed selects a time-based one.
func NewDeck(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Deck{rng: rand.New(rand.NewSource(seed))}
	d.RestoreAndShuffle()
	return d
}

// RestoreAndShuffle returns every card to the live pile and randomizes the
// order. Called before every hand.
func (d *Deck) RestoreAndShuffle() {
	cards := make([]card.Card, len(FullDeck))
	copy(cards, FullDeck)
	d.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	d.cards.Init(cards)
	d.used = d.used[:0]
}

// Draw moves the top card to the used pile and returns it.
func (d *Deck) Draw() card.Card {
	c := d.cards.Pop()
	if c == card.CardInvalid {
		panic("deck underflow")
	}
	d.used.Add(c)
	return c
}

// Burn discards the top card without dealing it.
func (d *Deck) Burn() {
	_ = d.Draw()
}

func (d *Deck) Remaining() int {
	return d.cards.Count()
}

func (d *Deck) UsedCount() int {
	return d.used.Count()
}
