package domain

import "encoding/json"

// EventType names an outbound protocol event.
type EventType string

const (
	EventWelcome                 EventType = "welcome"
	EventPong                    EventType = "pong"
	EventError                   EventType = "error"
	EventRoomCreated             EventType = "room-created"
	EventRoomJoined              EventType = "room-joined"
	EventRoomNotFound            EventType = "room-not-found"
	EventRoomFull                EventType = "room-full"
	EventRoomCreationDenied      EventType = "room-creation-denied"
	EventRoomJoinDenied          EventType = "room-join-denied"
	EventPlayerJoined            EventType = "player-joined"
	EventPlayerLeft              EventType = "player-left"
	EventLeftRoom                EventType = "left-room"
	EventGameStarted             EventType = "game-started"
	EventWordSelected            EventType = "word-selected"
	EventDrawingUpdate           EventType = "drawing-update"
	EventGuessSubmitted          EventType = "guess-submitted"
	EventGuessClose              EventType = "guess-close"
	EventCorrectGuess            EventType = "correct-guess"
	EventTimerUpdate             EventType = "timer-update"
	EventRoundFinished           EventType = "round-finished"
	EventRoundEnded              EventType = "round-ended"
	EventContinueToWordSelection EventType = "continue-to-word-selection"
	EventGameOver                EventType = "game-over"
	EventGameCancelled           EventType = "game-cancelled"
	EventGameStartDenied         EventType = "game-start-denied"
	EventWordSelectionDenied     EventType = "word-selection-denied"
	EventDrawingDenied           EventType = "drawing-denied"
	EventGuessDenied             EventType = "guess-denied"
	EventContinueDenied          EventType = "continue-denied"
	EventCancelDenied            EventType = "cancel-denied"
)

// Snapshot is the client-visible state of a room.
type Snapshot struct {
	ID            RoomCode        `json:"id"`
	Players       []Player        `json:"players"`
	HostID        ConnID          `json:"hostId"`
	CurrentDrawer ConnID          `json:"currentDrawer"`
	Phase         Phase           `json:"gameState"`
	CurrentWord   string          `json:"currentWord"`
	DrawingData   json.RawMessage `json:"drawingData"`
	Guesses       []Guess         `json:"guesses"`
	TimeLeft      int             `json:"timeLeft"`
	Round         int             `json:"rounds"`
	MaxRounds     int             `json:"maxRounds"`
	Scores        map[ConnID]int  `json:"scores"`
}

// Message is the outbound wire envelope. Unused fields are omitted.
type Message struct {
	Type     EventType       `json:"type"`
	ID       ConnID          `json:"id,omitempty"`
	Room     RoomCode        `json:"room,omitempty"`
	State    *Snapshot       `json:"state,omitempty"`
	Guess    *Guess          `json:"guess,omitempty"`
	TimeLeft *int            `json:"timeLeft,omitempty"`
	Drawing  json.RawMessage `json:"drawing,omitempty"`
	Answer   string          `json:"answer,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Distance int             `json:"distance,omitempty"`
}
