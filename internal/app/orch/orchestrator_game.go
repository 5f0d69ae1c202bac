package orch

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/domain"
)

// Every game event names its room; the room itself checks that sid
// belongs to it and holds the right role.

func (o *Orchestrator) StartGame(sid domain.ConnID, code string) error {
	room, err := o.lookup(code)
	if err != nil {
		return err
	}
	return room.StartRound(sid)
}

func (o *Orchestrator) SelectWord(sid domain.ConnID, code, word string) error {
	room, err := o.lookup(code)
	if err != nil {
		return err
	}
	return room.SelectWord(sid, word)
}

func (o *Orchestrator) DrawingData(sid domain.ConnID, code string, drawing json.RawMessage) error {
	room, err := o.lookup(code)
	if err != nil {
		return err
	}
	return room.UpdateDrawing(sid, drawing)
}

func (o *Orchestrator) SubmitGuess(sid domain.ConnID, code, guess string) error {
	room, err := o.lookup(code)
	if err != nil {
		return err
	}
	return room.SubmitGuess(sid, guess)
}

func (o *Orchestrator) ContinueNextRound(sid domain.ConnID, code string) error {
	room, err := o.lookup(code)
	if err != nil {
		return err
	}
	return room.ContinueToNextRound(sid)
}
