// Package table runs one game per actor goroutine. The actor exclusively owns
// a holdem.Table; everything reaches it as an Event through a buffered
// channel, including the engine-driven timers. A timer never gets cancelled:
// it carries the EventTracker value observed when it was armed, and a fired
// timer whose tracker no longer matches the table is a no-op.
package table

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pokerhall/apps/server/internal/codec"
	"pokerhall/apps/server/internal/history"
	"pokerhall/holdem"
)

var (
	ErrTableClosed = errors.New("table closed")
	ErrTableFull   = errors.New("table full")
	ErrGameRunning = errors.New("game already running")
	ErrNotStarted  = errors.New("game not started")
	ErrNotSeated   = errors.New("player not seated")
)

// Config holds table settings. Zero values fall back to the defaults below.
type Config struct {
	MinPlayers   int
	MaxPlayers   int
	Blind        int64
	BuyIn        int64
	ActionTime   time.Duration
	DealDelay    time.Duration
	ShowdownWait time.Duration
	Seed         int64
}

func (c *Config) applyDefaults() {
	if c.MinPlayers < 2 {
		c.MinPlayers = 2
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 9
	}
	if c.Blind <= 0 {
		c.Blind = 20
	}
	if c.BuyIn <= 0 {
		c.BuyIn = 100 * c.Blind
	}
	if c.ActionTime <= 0 {
		c.ActionTime = 30 * time.Second
	}
	if c.DealDelay <= 0 {
		c.DealDelay = 3 * time.Second
	}
	if c.ShowdownWait <= 0 {
		c.ShowdownWait = 8 * time.Second
	}
}

// PlayerConn tracks one connected player's presence at the table.
type PlayerConn struct {
	UserID   uint64
	Name     string
	Online   bool
	LastSeen time.Time
}

type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventBack
	EventAction
	EventClose

	// Internal events posted by timers.
	evStartHand
	evTimeout
	evNextHand
)

// Event is one message to the table actor. Tracker is only meaningful on
// timer events.
type Event struct {
	Type     EventType
	UserID   uint64
	Name     string
	Action   holdem.ActionType
	Raise    int64
	Tracker  uint64
	Response chan error
}

// Table is the per-game actor.
type Table struct {
	ID     string
	Config Config

	mu       sync.RWMutex
	game     *holdem.Table // nil until enough players joined
	roster   []*holdem.Player
	conns    map[uint64]*PlayerConn
	closed   bool
	stopOnce sync.Once

	events chan Event
	done   chan struct{}

	serverSeq  uint64
	startArmed bool
	lastActive time.Time

	broadcastFn func(userID uint64, data []byte)
	store       history.Store
	handID      string
	tape        []history.ActionRecord
}

// New creates a table actor and starts its goroutine. The broadcast callback
// must not block; the gateway hands it a buffered per-connection queue.
func New(id string, cfg Config, broadcastFn func(userID uint64, data []byte), store history.Store) *Table {
	cfg.applyDefaults()
	t := &Table{
		ID:          id,
		Config:      cfg,
		conns:       make(map[uint64]*PlayerConn),
		events:      make(chan Event, 256),
		done:        make(chan struct{}),
		lastActive:  time.Now(),
		broadcastFn: broadcastFn,
		store:       store,
	}
	go t.run()
	log.Printf("[Table %s] Created (max=%d, blind=%d, buyIn=%d)", id, cfg.MaxPlayers, cfg.Blind, cfg.BuyIn)
	return t
}

func (t *Table) run() {
	for {
		select {
		case e := <-t.events:
			err := t.handleEvent(e)
			if e.Response != nil {
				e.Response <- err
			}
		case <-t.done:
			log.Printf("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

// SubmitEvent sends an external event to the actor and waits for its result.
func (t *Table) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}
	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

// post is the timer-side submit: fire-and-forget, never blocks shutdown.
func (t *Table) post(e Event) {
	select {
	case t.events <- e:
	case <-t.done:
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}
	switch e.Type {
	case EventJoin:
		t.lastActive = time.Now()
		return t.handleJoin(e.UserID, e.Name)
	case EventLeave:
		t.lastActive = time.Now()
		return t.handleLeave(e.UserID)
	case EventBack:
		t.lastActive = time.Now()
		return t.handleBack(e.UserID)
	case EventAction:
		t.lastActive = time.Now()
		return t.handleAction(e.UserID, e.Action, e.Raise, false)
	case EventClose:
		t.stopLocked()
		return nil
	case evStartHand:
		return t.handleStartHand()
	case evTimeout:
		return t.handleTimeout(e.Tracker)
	case evNextHand:
		return t.handleNextHand(e.Tracker)
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (t *Table) handleJoin(userID uint64, name string) error {
	now := time.Now()
	if conn, ok := t.conns[userID]; ok {
		// Reconnect: refresh presence and re-sync the client.
		conn.Online = true
		conn.LastSeen = now
		if seat := t.seatOf(userID); seat != holdem.InvalidSeat {
			t.game.Players[seat].Away = false
		}
		t.sendView(userID)
		log.Printf("[Table %s] Player %d rejoined", t.ID, userID)
		return nil
	}

	if t.game != nil {
		return ErrGameRunning
	}
	if len(t.roster) >= t.Config.MaxPlayers {
		return ErrTableFull
	}

	t.conns[userID] = &PlayerConn{UserID: userID, Name: name, Online: true, LastSeen: now}
	t.roster = append(t.roster, &holdem.Player{
		ID:       userID,
		Name:     name,
		Controls: holdem.TableControls{BankRoll: t.Config.BuyIn},
	})
	log.Printf("[Table %s] Player %d (%s) joined, seats=%d", t.ID, userID, name, len(t.roster))

	if len(t.roster) >= t.Config.MinPlayers && !t.startArmed {
		t.startArmed = true
		time.AfterFunc(t.Config.DealDelay, func() {
			t.post(Event{Type: evStartHand})
		})
	}
	t.sendView(userID)
	return nil
}

func (t *Table) handleLeave(userID uint64) error {
	conn := t.conns[userID]
	if conn == nil {
		return nil
	}
	conn.Online = false
	conn.LastSeen = time.Now()

	if t.game == nil {
		// Before the game starts seats are still fluid.
		delete(t.conns, userID)
		for i, p := range t.roster {
			if p.ID == userID {
				t.roster = append(t.roster[:i], t.roster[i+1:]...)
				break
			}
		}
		if len(t.roster) < t.Config.MinPlayers {
			t.startArmed = false
		}
		log.Printf("[Table %s] Player %d left before start, seats=%d", t.ID, userID, len(t.roster))
		return nil
	}

	// Seating is fixed for the whole game: a leaver goes away, their stack
	// stays in play and the default action plays for them.
	seat := t.seatOf(userID)
	if seat == holdem.InvalidSeat {
		return nil
	}
	t.game.Players[seat].Away = true
	log.Printf("[Table %s] Player %d went away (seat %d)", t.ID, userID, seat)
	if t.game.Betting && t.game.ActingPlayer == seat {
		t.driveBetting()
	}
	return nil
}

func (t *Table) handleBack(userID uint64) error {
	conn := t.conns[userID]
	if conn == nil {
		return ErrNotSeated
	}
	conn.Online = true
	conn.LastSeen = time.Now()
	seat := t.seatOf(userID)
	if seat == holdem.InvalidSeat {
		return nil
	}
	// Coming back only affects future turns; the tracker is untouched, so a
	// pending timeout for the current turn still stands.
	t.game.Players[seat].Away = false
	t.sendView(userID)
	log.Printf("[Table %s] Player %d is back (seat %d)", t.ID, userID, seat)
	return nil
}

func (t *Table) handleStartHand() error {
	t.startArmed = false
	if t.game == nil {
		if len(t.roster) < t.Config.MinPlayers {
			return nil
		}
		game, err := holdem.NewTable(t.roster, t.Config.Blind, t.Config.Seed)
		if err != nil {
			log.Printf("[Table %s] Failed to create game: %v", t.ID, err)
			return err
		}
		t.game = game
	}
	return t.startHand()
}

func (t *Table) startHand() error {
	if err := holdem.SetupNewHand(t.game); err != nil {
		log.Printf("[Table %s] SetupNewHand failed: %v", t.ID, err)
		return err
	}
	t.handID = uuid.NewString()
	t.tape = t.tape[:0]

	snap := t.game.Snapshot()
	small := t.game.NextActivePlayer(t.game.Dealer)
	big := t.game.NextActivePlayer(small)
	log.Printf("[Table %s] Hand %d started. Dealer=%d SB=%d BB=%d Action=%d",
		t.ID, snap.Round, snap.Dealer, small, big, snap.ActingPlayer)

	env := t.newEnvelope(codec.MsgHandStart)
	env.HandStart = &codec.HandStart{
		Round:          snap.Round,
		Dealer:         snap.Dealer,
		SmallBlindSeat: small,
		BigBlindSeat:   big,
		Blind:          snap.Blind,
	}
	t.broadcastToAll(env)
	t.sendHoleCards(snap)
	t.broadcastViews()
	t.driveBetting()
	return nil
}

func (t *Table) sendHoleCards(snap holdem.Snapshot) {
	for _, ps := range snap.Players {
		if len(ps.Cards) != 2 || ps.Out {
			continue
		}
		env := t.newEnvelope(codec.MsgHoleCards)
		env.HoleCards = &codec.HoleCards{Cards: codec.CardStrings(ps.Cards)}
		t.sendToUser(ps.ID, env)
	}
}

// driveBetting advances the table until a live player has to decide: all-in
// seats auto-check, away seats play their default, everyone else gets a
// prompt plus an armed timeout. The auto branches return immediately: each
// auto-action runs through handleAction and advance, which itself drives the
// table to its resting point, so continuing here would prompt twice.
func (t *Table) driveBetting() {
	if t.game == nil || !t.game.Betting {
		return
	}
	seat := t.game.ActingPlayer
	p := t.game.Players[seat]
	switch {
	case p.AllIn:
		if err := t.handleAction(p.ID, holdem.ActionAllInCheck, 0, true); err != nil {
			log.Printf("[Table %s] auto all-in check failed seat=%d: %v", t.ID, seat, err)
		}
	case p.Away:
		if err := t.applyDefaultAction(p); err != nil {
			log.Printf("[Table %s] default action failed seat=%d: %v", t.ID, seat, err)
		}
	default:
		t.promptPlayer(seat)
	}
}

func (t *Table) promptPlayer(seat int) {
	p := t.game.Players[seat]
	deadline := time.Now().Add(t.Config.ActionTime)

	env := t.newEnvelope(codec.MsgActionPrompt)
	env.ActionPrompt = &codec.ActionPrompt{
		Seat:       seat,
		ToCall:     p.Controls.ToCall,
		MinRaise:   t.game.MinRaise,
		DeadlineMs: deadline.UnixMilli(),
	}
	t.broadcastToAll(env)

	tracker := t.game.EventTracker
	time.AfterFunc(t.Config.ActionTime, func() {
		t.post(Event{Type: evTimeout, Tracker: tracker})
	})
}

// handleTimeout fires for every prompt ever armed. Anything moved the table
// since (an action or a new hand), the tracker differs and the event is dead.
func (t *Table) handleTimeout(tracker uint64) error {
	if t.game == nil || !t.game.Betting || t.game.EventTracker != tracker {
		return nil
	}
	seat := t.game.ActingPlayer
	p := t.game.Players[seat]
	p.Away = true
	if conn := t.conns[p.ID]; conn != nil {
		conn.Online = false
	}
	log.Printf("[Table %s] Action timeout seat=%d user=%d, marked away", t.ID, seat, p.ID)
	// applyDefaultAction drives the table on through advance; calling
	// driveBetting again here would re-prompt the next seat.
	return t.applyDefaultAction(p)
}

// applyDefaultAction plays the forced move for an absent player: check when
// free, fold when facing a bet.
func (t *Table) applyDefaultAction(p *holdem.Player) error {
	action := holdem.ActionCheck
	if p.Controls.ToCall > 0 {
		action = holdem.ActionFold
	}
	return t.handleAction(p.ID, action, 0, true)
}

func (t *Table) handleAction(userID uint64, action holdem.ActionType, raise int64, auto bool) error {
	if t.game == nil {
		return ErrNotStarted
	}
	if action == holdem.ActionRaise {
		raise = holdem.SanitizeRaise(t.game, userID, raise)
	}
	if err := holdem.HandlePlayerAction(t.game, userID, action, raise); err != nil {
		if !auto {
			t.sendError(userID, err)
		}
		return err
	}

	seat := t.game.PlayerThatActed
	p := t.game.Players[seat]
	t.tape = append(t.tape, history.ActionRecord{
		Seq:      len(t.tape) + 1,
		Street:   t.game.Phase.String(),
		Seat:     seat,
		PlayerID: userID,
		Action:   action.String(),
		Raise:    raise,
		Auto:     auto,
	})
	log.Printf("[Table %s] Seat %d action: %s raise=%d auto=%v", t.ID, seat, action, raise, auto)

	env := t.newEnvelope(codec.MsgActionResult)
	env.ActionResult = &codec.ActionResult{
		Seat:     seat,
		Action:   action.String(),
		Bet:      p.Controls.CurrentBet,
		BankRoll: p.Controls.BankRoll,
		PotTotal: t.game.PotTotal(),
	}
	t.broadcastToAll(env)

	t.advance()
	return nil
}

// advance decides what follows a completed action: the hand ends, a street
// deals, the board runs out, or the next seat is up.
func (t *Table) advance() {
	g := t.game
	if g.UnfoldedCount() < 2 {
		t.finishHand()
		return
	}
	if !holdem.RoundComplete(g) {
		t.driveBetting()
		return
	}
	if g.Phase == holdem.PhaseRiver {
		t.finishHand()
		return
	}
	if g.BettableCount() <= 1 {
		// Nobody left who can bet: run the board out to the river.
		before := len(g.CommunityCards)
		holdem.RunOutBoard(g)
		t.broadcastBoardFrom(before)
		t.finishHand()
		return
	}

	before := len(g.CommunityCards)
	if err := holdem.BeginNextStreet(g); err != nil {
		log.Printf("[Table %s] BeginNextStreet failed: %v", t.ID, err)
		t.finishHand()
		return
	}
	t.broadcastBoardFrom(before)
	t.broadcastViews()
	t.driveBetting()
}

// broadcastBoardFrom announces every community card dealt past the given
// count, one street per message.
func (t *Table) broadcastBoardFrom(before int) {
	board := t.game.CommunityCards
	for _, cut := range []int{3, 4, 5} {
		if before >= cut || len(board) < cut {
			continue
		}
		from := cut - 1
		if cut == 3 {
			from = 0
		}
		env := t.newEnvelope(codec.MsgStreetDeal)
		env.StreetDeal = &codec.StreetDeal{
			Phase: phaseForBoard(cut),
			Cards: codec.CardStrings(board[from:cut]),
		}
		t.broadcastToAll(env)
	}

	env := t.newEnvelope(codec.MsgPotUpdate)
	env.PotUpdate = &codec.PotUpdate{Pots: codec.PotViews(t.game.Snapshot().Pots)}
	t.broadcastToAll(env)
}

func phaseForBoard(n int) string {
	switch n {
	case 3:
		return holdem.PhaseFlop.String()
	case 4:
		return holdem.PhaseTurn.String()
	default:
		return holdem.PhaseRiver.String()
	}
}

func (t *Table) finishHand() {
	g := t.game
	winners, err := holdem.DetermineWinners(g)
	if err != nil {
		log.Printf("[Table %s] DetermineWinners failed: %v", t.ID, err)
		return
	}

	env := t.newEnvelope(codec.MsgHandEnd)
	he := &codec.HandEnd{Round: g.Round}
	for _, w := range winners {
		he.Winners = append(he.Winners, codec.WinnerView{
			PlayerID: w.PlayerID,
			Winnings: w.Winnings,
			Type:     w.Type,
			Cards:    codec.CardStrings(w.Cards),
		})
	}
	env.HandEnd = he
	t.broadcastToAll(env)
	t.broadcastViews()

	t.persistHand(winners)

	if g.FundedCount() > 1 {
		tracker := g.EventTracker
		time.AfterFunc(t.Config.ShowdownWait, func() {
			t.post(Event{Type: evNextHand, Tracker: tracker})
		})
		return
	}
	t.announceGameOver()
}

func (t *Table) handleNextHand(tracker uint64) error {
	if t.game == nil || t.game.EventTracker != tracker {
		return nil
	}
	return t.startHand()
}

func (t *Table) persistHand(winners []holdem.Winner) {
	if t.store == nil || t.handID == "" {
		return
	}
	rec := history.HandRecord{
		HandID:  t.handID,
		GameID:  t.ID,
		Round:   t.game.Round,
		Board:   codec.CardStrings(t.game.CommunityCards),
		Actions: append([]history.ActionRecord(nil), t.tape...),
		EndedAt: time.Now().UTC(),
	}
	for _, w := range winners {
		rec.Winners = append(rec.Winners, history.WinnerRecord{
			PlayerID: w.PlayerID,
			Winnings: w.Winnings,
			Type:     w.Type,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := t.store.SaveHand(ctx, rec); err != nil {
			log.Printf("[Table %s] SaveHand failed hand=%s: %v", t.ID, rec.HandID, err)
		}
	}()
}

func (t *Table) announceGameOver() {
	var champ *holdem.Player
	for _, p := range t.game.Players {
		if p.Controls.BankRoll > 0 {
			champ = p
			break
		}
	}
	env := t.newEnvelope(codec.MsgGameOver)
	if champ != nil {
		env.GameOver = &codec.GameOver{
			WinnerID: champ.ID,
			Name:     champ.Name,
			BankRoll: champ.Controls.BankRoll,
		}
		log.Printf("[Table %s] Game over, winner=%d (%s) stack=%d", t.ID, champ.ID, champ.Name, champ.Controls.BankRoll)
	} else {
		env.GameOver = &codec.GameOver{}
		log.Printf("[Table %s] Game over with no funded player", t.ID)
	}
	t.broadcastToAll(env)
	t.stopLocked()
}

// --- presence and lifecycle queries ---

func (t *Table) seatOf(userID uint64) int {
	if t.game == nil {
		return holdem.InvalidSeat
	}
	return t.game.Seat(userID)
}

// Started reports whether the game has dealt its first hand.
func (t *Table) Started() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.game != nil
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// IsIdleFor reports whether nothing has touched the table for ttl. The lobby
// reaps idle tables.
func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return true
	}
	for _, conn := range t.conns {
		if conn.Online {
			return false
		}
	}
	return time.Since(t.lastActive) >= ttl
}

// Seats returns how many players hold a seat (or a pre-game roster spot).
func (t *Table) Seats() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.roster)
}

// Snapshot returns the engine state, or a zero snapshot before the game
// starts.
func (t *Table) Snapshot() holdem.Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.game == nil {
		return holdem.Snapshot{ActingPlayer: holdem.InvalidSeat, Dealer: holdem.InvalidSeat}
	}
	return t.game.Snapshot()
}

func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Table) stopLocked() {
	t.closed = true
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

// --- wire helpers ---

func (t *Table) newEnvelope(typ string) *codec.ServerEnvelope {
	t.serverSeq++
	return &codec.ServerEnvelope{
		GameID: t.ID,
		Seq:    t.serverSeq,
		TsMs:   time.Now().UnixMilli(),
		Type:   typ,
	}
}

func (t *Table) sendToUser(userID uint64, env *codec.ServerEnvelope) {
	data, err := codec.Marshal(env)
	if err != nil {
		log.Printf("[Table %s] Failed to marshal %s: %v", t.ID, env.Type, err)
		return
	}
	t.broadcastFn(userID, data)
}

func (t *Table) broadcastToAll(env *codec.ServerEnvelope) {
	data, err := codec.Marshal(env)
	if err != nil {
		log.Printf("[Table %s] Failed to marshal %s: %v", t.ID, env.Type, err)
		return
	}
	for userID := range t.conns {
		t.broadcastFn(userID, data)
	}
}

// sendView sends one viewer their personalized table view (own cards open,
// everyone else's masked).
func (t *Table) sendView(userID uint64) {
	env := t.newEnvelope(codec.MsgTableView)
	if t.game != nil {
		env.TableView = codec.BuildTableView(t.game.Snapshot(), userID)
	} else {
		env.TableView = t.preGameView()
	}
	t.sendToUser(userID, env)
}

func (t *Table) broadcastViews() {
	snap := t.game.Snapshot()
	for userID := range t.conns {
		env := t.newEnvelope(codec.MsgTableView)
		env.TableView = codec.BuildTableView(snap, userID)
		t.sendToUser(userID, env)
	}
}

// preGameView renders the roster before any hand is dealt.
func (t *Table) preGameView() *codec.TableView {
	tv := &codec.TableView{
		Phase:      holdem.PhaseHandSetup.String(),
		Blind:      t.Config.Blind,
		Dealer:     holdem.InvalidSeat,
		ActingSeat: holdem.InvalidSeat,
	}
	for seat, p := range t.roster {
		tv.Seats = append(tv.Seats, codec.SeatView{
			Seat:     seat,
			PlayerID: p.ID,
			Name:     p.Name,
			BankRoll: p.Controls.BankRoll,
		})
	}
	return tv
}

func (t *Table) sendError(userID uint64, cause error) {
	env := t.newEnvelope(codec.MsgError)
	code := 1
	switch {
	case errors.Is(cause, holdem.ErrOutOfTurn):
		code = 2
	case errors.Is(cause, holdem.ErrInvalidAction),
		errors.Is(cause, holdem.ErrCheckDenied),
		errors.Is(cause, holdem.ErrRaiseTooSmall),
		errors.Is(cause, holdem.ErrShortStack):
		code = 3
	case errors.Is(cause, holdem.ErrNotBetting):
		code = 4
	}
	env.Error = &codec.ErrorNote{Code: code, Message: cause.Error()}
	t.sendToUser(userID, env)
}
