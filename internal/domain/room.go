package domain

import "strings"

type RoomCode string

// NormalizeRoomCode makes every entry point case-insensitive.
func NormalizeRoomCode(s string) RoomCode {
	return RoomCode(strings.ToLower(strings.TrimSpace(s)))
}

// Phase is the room's current stage in the round state machine.
type Phase string

const (
	PhaseWaiting       Phase = "waiting"
	PhaseWordSelection Phase = "word-selection"
	PhaseDrawing       Phase = "drawing"
	PhaseFinished      Phase = "finished"
	PhaseGameOver      Phase = "game-over"
)

const (
	DrawerPoints  = 10
	GuesserPoints = 15
)
