package card

type CardList []Card

func (cl *CardList) Init(cards []Card) {
	*cl = make([]Card, len(cards))
	copy(*cl, cards)
}

func (cl CardList) Count() int {
	return len(cl)
}

func (cl *CardList) Add(cards ...Card) {
	*cl = append(*cl, cards...)
}

// Pop removes and returns the top card, or CardInvalid when empty.
func (cl *CardList) Pop() Card {
	n := len(*cl)
	if n == 0 {
		return CardInvalid
	}
	c := (*cl)[n-1]
	*cl = (*cl)[:n-1]
	return c
}

// Strings renders the list as short card strings ("As", "Td", ...).
func (cl CardList) Strings() []string {
	out := make([]string, 0, len(cl))
	for _, c := range cl {
		out = append(out, c.String())
	}
	return out
}

// ParseList converts short card strings back into a CardList.
func ParseList(strs ...string) (CardList, error) {
	out := make(CardList, 0, len(strs))
	for _, s := range strs {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
