package domain

import "fmt"

// Capability is the device class of a connection.
type Capability int

const (
	CapabilityUnknown Capability = iota
	// DrawerCapable devices may create rooms and hold the drawer role.
	DrawerCapable
	// ViewerOnly devices can join, watch and guess.
	ViewerOnly
)

func ParseCapability(s string) (Capability, error) {
	switch s {
	case "mobile", "drawer":
		return DrawerCapable, nil
	case "web", "viewer":
		return ViewerOnly, nil
	}
	return CapabilityUnknown, fmt.Errorf("unknown capability %q", s)
}

func (c Capability) String() string {
	switch c {
	case DrawerCapable:
		return "mobile"
	case ViewerOnly:
		return "web"
	}
	return "unknown"
}

func (c Capability) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Capability) UnmarshalText(b []byte) error {
	v, err := ParseCapability(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Player represents a connection's participation in a room.
// No transport or lifecycle logic here.
type Player struct {
	ID         ConnID     `json:"id"`
	Name       string     `json:"name"`
	Capability Capability `json:"capability"`
	IsDrawing  bool       `json:"isDrawing"`
	Score      int        `json:"score"`
}

// NewPlayer avoids raw literals in adapters and keeps construction obvious.
func NewPlayer(id ConnID, name string, capability Capability) *Player {
	return &Player{ID: id, Name: name, Capability: capability}
}

// Guess is one submitted answer. Immutable once recorded.
type Guess struct {
	PlayerID   ConnID `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"guess"`
	Timestamp  int64  `json:"timestamp"`
}
