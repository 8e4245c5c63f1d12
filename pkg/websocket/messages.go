package websocket

import (
	"encoding/json"
	"time"
)

// MessageType is the event routing key, or one of the control types below.
type MessageType string

const (
	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message is the envelope for everything sent to a client.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

type ErrorPayload struct {
	Message string `json:"message"`
}
