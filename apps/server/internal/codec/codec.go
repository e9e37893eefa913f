// Package codec defines the JSON wire envelopes exchanged between the server
// and its websocket clients. Cards travel as their short text form ("As",
// "10h"); a card the viewer is not allowed to see travels as "XX".
package codec

import (
	"encoding/json"
	"fmt"

	"pokerhall/card"
	"pokerhall/holdem"
)

const Masked = "XX"

// Server message type tags.
const (
	MsgTableView    = "tableView"
	MsgHoleCards    = "holeCards"
	MsgHandStart    = "handStart"
	MsgActionPrompt = "actionPrompt"
	MsgActionResult = "actionResult"
	MsgStreetDeal   = "streetDeal"
	MsgPotUpdate    = "potUpdate"
	MsgHandEnd      = "handEnd"
	MsgGameOver     = "gameOver"
	MsgError        = "error"
)

// Client message type tags.
const (
	ClientJoin   = "join"
	ClientSit    = "sit"
	ClientLeave  = "leave"
	ClientAction = "action"
	ClientBack   = "back"
	ClientPing   = "ping"
)

// ServerEnvelope carries exactly one payload, selected by Type. Empty payload
// pointers are omitted from the encoding.
type ServerEnvelope struct {
	GameID string `json:"gameId"`
	Seq    uint64 `json:"seq"`
	TsMs   int64  `json:"tsMs"`
	Type   string `json:"type"`

	TableView    *TableView    `json:"tableView,omitempty"`
	HoleCards    *HoleCards    `json:"holeCards,omitempty"`
	HandStart    *HandStart    `json:"handStart,omitempty"`
	ActionPrompt *ActionPrompt `json:"actionPrompt,omitempty"`
	ActionResult *ActionResult `json:"actionResult,omitempty"`
	StreetDeal   *StreetDeal   `json:"streetDeal,omitempty"`
	PotUpdate    *PotUpdate    `json:"potUpdate,omitempty"`
	HandEnd      *HandEnd      `json:"handEnd,omitempty"`
	GameOver     *GameOver     `json:"gameOver,omitempty"`
	Error        *ErrorNote    `json:"error,omitempty"`
}

// ClientEnvelope is what players send upstream. Raise is the amount on top of
// the call; the server clamps it before the engine sees it.
type ClientEnvelope struct {
	Type   string `json:"type"`
	GameID string `json:"gameId,omitempty"`
	Name   string `json:"name,omitempty"`
	Action string `json:"action,omitempty"`
	Raise  int64  `json:"raise,omitempty"`
}

type SeatView struct {
	Seat     int      `json:"seat"`
	PlayerID uint64   `json:"playerId"`
	Name     string   `json:"name"`
	BankRoll int64    `json:"bankRoll"`
	Bet      int64    `json:"bet"`
	ToCall   int64    `json:"toCall"`
	Away     bool     `json:"away,omitempty"`
	Out      bool     `json:"out,omitempty"`
	Folded   bool     `json:"folded,omitempty"`
	AllIn    bool     `json:"allIn,omitempty"`
	Cards    []string `json:"cards,omitempty"`
}

type PotView struct {
	Wager int64 `json:"wager"`
	Total int64 `json:"total"`
}

type TableView struct {
	Round      int        `json:"round"`
	Phase      string     `json:"phase"`
	Betting    bool       `json:"betting"`
	Blind      int64      `json:"blind"`
	MinRaise   int64      `json:"minRaise"`
	Dealer     int        `json:"dealer"`
	ActingSeat int        `json:"actingSeat"`
	Community  []string   `json:"community"`
	Pots       []PotView  `json:"pots"`
	Seats      []SeatView `json:"seats"`
}

type HoleCards struct {
	Cards []string `json:"cards"`
}

type HandStart struct {
	Round          int   `json:"round"`
	Dealer         int   `json:"dealer"`
	SmallBlindSeat int   `json:"smallBlindSeat"`
	BigBlindSeat   int   `json:"bigBlindSeat"`
	Blind          int64 `json:"blind"`
}

type ActionPrompt struct {
	Seat       int   `json:"seat"`
	ToCall     int64 `json:"toCall"`
	MinRaise   int64 `json:"minRaise"`
	DeadlineMs int64 `json:"deadlineMs"`
}

type ActionResult struct {
	Seat     int    `json:"seat"`
	Action   string `json:"action"`
	Bet      int64  `json:"bet"`
	BankRoll int64  `json:"bankRoll"`
	PotTotal int64  `json:"potTotal"`
}

type StreetDeal struct {
	Phase string   `json:"phase"`
	Cards []string `json:"cards"`
}

type PotUpdate struct {
	Pots []PotView `json:"pots"`
}

type WinnerView struct {
	PlayerID uint64   `json:"playerId"`
	Winnings int64    `json:"winnings"`
	Type     string   `json:"type"`
	Cards    []string `json:"cards,omitempty"`
}

type HandEnd struct {
	Round   int          `json:"round"`
	Winners []WinnerView `json:"winners"`
}

type GameOver struct {
	WinnerID uint64 `json:"winnerId"`
	Name     string `json:"name"`
	BankRoll int64  `json:"bankRoll"`
}

type ErrorNote struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Marshal encodes a server envelope. Failures here are programming errors;
// the caller logs and drops the message.
func Marshal(env *ServerEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

// ParseClient decodes one client envelope and checks its type tag.
func ParseClient(data []byte) (ClientEnvelope, error) {
	var env ClientEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, err
	}
	switch env.Type {
	case ClientJoin, ClientSit, ClientLeave, ClientAction, ClientBack, ClientPing:
		return env, nil
	default:
		return env, fmt.Errorf("unknown client message type %q", env.Type)
	}
}

// BuildTableView renders a snapshot for one viewer. Everyone's chips and
// flags are public; hole cards are masked except the viewer's own and hands
// shown at a contested showdown.
func BuildTableView(snap holdem.Snapshot, viewerID uint64) *TableView {
	tv := &TableView{
		Round:      snap.Round,
		Phase:      snap.Phase.String(),
		Betting:    snap.Betting,
		Blind:      snap.Blind,
		MinRaise:   snap.MinRaise,
		Dealer:     snap.Dealer,
		ActingSeat: snap.ActingPlayer,
		Community:  CardStrings(snap.CommunityCards),
		Pots:       PotViews(snap.Pots),
	}
	for _, ps := range snap.Players {
		sv := SeatView{
			Seat:     ps.Seat,
			PlayerID: ps.ID,
			Name:     ps.Name,
			BankRoll: ps.BankRoll,
			Bet:      ps.CurrentBet,
			ToCall:   ps.ToCall,
			Away:     ps.Away,
			Out:      ps.Out,
			Folded:   ps.Folded,
			AllIn:    ps.AllIn,
		}
		if len(ps.Cards) > 0 {
			if ps.ID == viewerID || ps.Revealed {
				sv.Cards = CardStrings(ps.Cards)
			} else {
				sv.Cards = maskedCards(len(ps.Cards))
			}
		}
		tv.Seats = append(tv.Seats, sv)
	}
	return tv
}

func CardStrings(cards []card.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.String())
	}
	return out
}

func PotViews(pots []holdem.PotSnapshot) []PotView {
	out := make([]PotView, 0, len(pots))
	for _, p := range pots {
		out = append(out, PotView{Wager: p.Wager, Total: p.Total})
	}
	return out
}

func maskedCards(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Masked
	}
	return out
}
