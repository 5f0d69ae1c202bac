package signal

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/domain"
)

type selectWordPayload struct {
	Room string `json:"room" validate:"required,max=64"`
	Word string `json:"word" validate:"max=64"`
}

type drawingPayload struct {
	Room    string          `json:"room" validate:"required,max=64"`
	Drawing json.RawMessage `json:"drawing" validate:"required"`
}

type guessPayload struct {
	Room  string `json:"room" validate:"required,max=64"`
	Guess string `json:"guess" validate:"max=128"`
}

func (ctl *SignalWSController) handleStartGame(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p roomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	if err := ctl.Orch.StartGame(sid, p.Room); err != nil {
		ctl.reject(sid, c, domain.EventGameStartDenied, p.Room, err)
	}
}

func (ctl *SignalWSController) handleSelectWord(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p selectWordPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	if err := ctl.Orch.SelectWord(sid, p.Room, p.Word); err != nil {
		ctl.reject(sid, c, domain.EventWordSelectionDenied, p.Room, err)
	}
}

func (ctl *SignalWSController) handleDrawingData(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p drawingPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	if err := ctl.Orch.DrawingData(sid, p.Room, p.Drawing); err != nil {
		ctl.reject(sid, c, domain.EventDrawingDenied, p.Room, err)
	}
}

func (ctl *SignalWSController) handleSubmitGuess(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p guessPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	if err := ctl.Orch.SubmitGuess(sid, p.Room, p.Guess); err != nil {
		ctl.reject(sid, c, domain.EventGuessDenied, p.Room, err)
	}
}

func (ctl *SignalWSController) handleContinue(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var p roomPayload
	if !ctl.decode(c, data, &p) {
		return
	}
	if err := ctl.Orch.ContinueNextRound(sid, p.Room); err != nil {
		ctl.reject(sid, c, domain.EventContinueDenied, p.Room, err)
	}
}
