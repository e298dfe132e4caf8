package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Server -> Client
	TypeStatsUpdate = "stats_update"
	TypeError       = "error"

	// Both directions
	TypePing = "ping"
	TypePong = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: msgType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// StatsUpdatePayload is pushed after every recorded answer.
type StatsUpdatePayload struct {
	Email         string `json:"email"`
	TotalAnswered int64  `json:"totalAnswered"`
	Correct       int64  `json:"correct"`
	Incorrect     int64  `json:"incorrect"`
}

// ErrCodeUnsupportedMessage answers a client frame whose type the server does not handle.
const ErrCodeUnsupportedMessage = "unsupported_message"

// ErrorPayload rides in TypeError messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
