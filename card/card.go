package card

import (
	"fmt"
	"strings"
)

// Card is a single playing card packed into one byte:
// high nibble is the suit (0 spade, 1 heart, 2 club, 3 diamond),
// low nibble is the rank (1 ace, 2..9, 10 ten, 11 jack, 12 queen, 13 king).
type Card byte

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	if c == CardFaceDown {
		return "XX"
	}

	rankStr := ""
	switch c.Rank() {
	case 1:
		rankStr = "A"
	case 10:
		rankStr = "T"
	case 11:
		rankStr = "J"
	case 12:
		rankStr = "Q"
	case 13:
		rankStr = "K"
	default:
		rankStr = fmt.Sprintf("%d", c.Rank())
	}
	return rankStr + c.Suit().String()
}

// Rank is the raw encoded rank 1-13 (A=1, K=13).
func (c Card) Rank() byte {
	if c == CardInvalid || c == CardFaceDown {
		return 0
	}
	return byte(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) IsAce() bool {
	return c.Rank() == 1
}

// Value is the gameplay comparison value 2..14: aces are high.
// Face-down and invalid cards carry no value and return 0.
func (c Card) Value() int {
	r := int(c.Rank())
	if r == 0 {
		return 0
	}
	if r == 1 {
		return 14
	}
	return r
}

// Parse converts strings like "As", "Td" or "10h" into a Card.
func Parse(s string) (Card, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid card string: %q", s)
	}

	var suitBase Card
	switch s[len(s)-1] {
	case 's', 'S':
		suitBase = 0x00
	case 'h', 'H':
		suitBase = 0x10
	case 'c', 'C':
		suitBase = 0x20
	case 'd', 'D':
		suitBase = 0x30
	default:
		return 0, fmt.Errorf("invalid suit: %c", s[len(s)-1])
	}

	var rankVal Card
	switch strings.ToUpper(s[:len(s)-1]) {
	case "A":
		rankVal = 0x01
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rankVal = Card(s[0] - '0')
	case "T", "10":
		rankVal = 0x0A
	case "J":
		rankVal = 0x0B
	case "Q":
		rankVal = 0x0C
	case "K":
		rankVal = 0x0D
	default:
		return 0, fmt.Errorf("invalid rank: %s", s[:len(s)-1])
	}

	return suitBase + rankVal, nil
}
