package models

import (
	"encoding/json"
	"fmt"
)

// Socket event names. The inbound names are the contract with the backend;
// the relay rewrites answerCall, endCall and sendMessage into their inbound
// counterparts before delivery.
const (
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventTyping         = "typing"
	EventStopTyping     = "stopTyping"
	EventCallUser       = "callUser"
	EventAnswerCall     = "answerCall"
	EventCallAccepted   = "callAccepted"
	EventEndCall        = "endCall"
	EventCallEnded      = "callEnded"
	EventError          = "error"
)

// Event is the JSON envelope carried by the socket connection.
type Event struct {
	Name   string          `json:"event"`
	RoomID string          `json:"roomId,omitempty"`
	From   string          `json:"from,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an envelope.
func NewEvent(name, roomID string, payload any) (Event, error) {
	ev := Event{Name: name, RoomID: roomID}
	if payload == nil {
		return ev, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	ev.Data = data
	return ev, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s: empty payload", e.Name)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Name, err)
	}
	return nil
}

// RoomPayload is the body of joinRoom and leaveRoom.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}

// TypingPayload is the body of typing and stopTyping.
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	SenderID string `json:"senderId"`
}

// SendMessagePayload is the body of sendMessage; receiveMessage carries the
// message alone.
type SendMessagePayload struct {
	RoomID  string  `json:"roomId"`
	Message Message `json:"message"`
}

// Signal is the connection negotiation data exchanged between two peers.
type Signal struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// CallOffer is the body of callUser.
type CallOffer struct {
	UserToCall string  `json:"userToCall"`
	Signal     *Signal `json:"signal"`
	From       string  `json:"from"`
	Name       string  `json:"name"`
	RoomID     string  `json:"roomId"`
}

// CallAnswer is the body of answerCall and callAccepted.
type CallAnswer struct {
	Signal *Signal `json:"signal"`
	To     string  `json:"to"`
	RoomID string  `json:"roomId"`
}

// CallEnd is the body of endCall and callEnded.
type CallEnd struct {
	To     string `json:"to"`
	RoomID string `json:"roomId"`
	Reason string `json:"reason,omitempty"`
}

// ErrorPayload is sent by the relay when it rejects an event.
type ErrorPayload struct {
	Message string `json:"message"`
}
