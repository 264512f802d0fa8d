package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages exchanged over a game socket
type MessageType string

const (
	// client -> server
	MessageTypeMove          MessageType = "move"
	MessageTypePossibleMoves MessageType = "possibleMoves"

	// server -> client
	MessageTypeGameState   MessageType = "gameState"
	MessageTypeInvalidMove MessageType = "invalidMove"
	MessageTypeError       MessageType = "error"
)

// Message is the envelope for every WebSocket message
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage marshals payload into a Message of the given type
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}
