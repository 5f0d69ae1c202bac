package domain

import "errors"

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindCapacity
	KindAuthorization
	KindPhase
	KindPrecondition
	KindInvalid
)

// GameError is a rejected room operation. Rejections never mutate state.
type GameError struct {
	Kind   ErrorKind
	Reason string
}

func (e *GameError) Error() string { return e.Reason }

var (
	ErrRoomNotFound       = &GameError{KindNotFound, "room not found"}
	ErrNotMember          = &GameError{KindAuthorization, "not a member of this room"}
	ErrRoomFull           = &GameError{KindCapacity, "room is full"}
	ErrCodeSpaceExhausted = &GameError{KindCapacity, "no free room code"}

	ErrCreationDenied    = &GameError{KindAuthorization, "only mobile devices can create rooms"}
	ErrNotDrawerCapable  = &GameError{KindAuthorization, "only mobile devices can start the game"}
	ErrNotDrawer         = &GameError{KindAuthorization, "only the drawer can do this"}
	ErrNotHost           = &GameError{KindAuthorization, "only the host can do this"}
	ErrDrawerCannotGuess = &GameError{KindAuthorization, "the drawer cannot guess"}

	ErrTooFewPlayers = &GameError{KindPrecondition, "at least 2 players are needed"}
	ErrNoDrawer      = &GameError{KindPrecondition, "room has no drawing device"}

	ErrPhaseMismatch = &GameError{KindPhase, "not allowed in the current phase"}
	ErrRoundLocked   = &GameError{KindPhase, "round already won"}

	ErrEmptyWord  = &GameError{KindInvalid, "word is empty"}
	ErrEmptyGuess = &GameError{KindInvalid, "guess is empty"}
)

// KindOf classifies err; errors that are not GameErrors are KindUnknown.
func KindOf(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}
