package holdem

import "errors"

var (
	ErrOutOfTurn     = errors.New("action out of turn")
	ErrInvalidAction = errors.New("invalid action")
	ErrCheckDenied   = errors.New("cannot check while facing a bet")
	ErrRaiseTooSmall = errors.New("raise below minimum")
	ErrShortStack    = errors.New("insufficient bankroll")
	ErrNotBetting    = errors.New("no betting round in progress")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
