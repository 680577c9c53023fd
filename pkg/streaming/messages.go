package streaming

import (
	"encoding/json"

	"github.com/SFSPlayer-sys/gosfs/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartFlight = "start_flight"
	TypeEndFlight   = "end_flight"
	TypeSample      = "sample"
	TypeImpact      = "impact"
	TypeAck         = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartFlightPayload announces a new flight.
type StartFlightPayload struct {
	Flight *core.Flight `json:"flight"`
}

// EndFlightPayload closes a flight.
type EndFlightPayload struct {
	FlightID uint  `json:"flightId"`
	Samples  uint  `json:"samples"`
	EndUnix  int64 `json:"endUnix"`
}

// NewEnvelope marshals payload into an Envelope of the given type.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: data}, nil
}
