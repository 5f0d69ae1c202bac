package core

import (
	"encoding/json"

	"github.com/dkeye/Sketch/internal/domain"
)

// Encode renders an outbound message as a text frame.
func Encode(msg domain.Message) (Frame, error) {
	return json.Marshal(msg)
}
