package models

import (
	"errors"
	"strings"
	"time"
)

// Role is the canonical participant role. It is resolved once when the
// session is established and never re-derived downstream.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// ErrUnknownRole is returned by ParseRole for anything outside the two roles.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a raw role name onto a Role. "student" is the legacy name
// for a candidate.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "candidate", "student":
		return RoleCandidate, nil
	case "recruiter":
		return RoleRecruiter, nil
	}
	return "", ErrUnknownRole
}

// Participant is one side of a conversation.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role Role   `json:"role"`
}

// Kind classifies a message for search filters.
type Kind string

const (
	KindText  Kind = "text"
	KindFile  Kind = "file"
	KindImage Kind = "image"
)

// Message is one chat message in its canonical shape.
type Message struct {
	ID         string      `json:"id,omitempty"`
	RoomID     string      `json:"roomId,omitempty"`
	SenderID   string      `json:"senderId"`
	SenderRole Role        `json:"senderRole"`
	Text       string      `json:"text,omitempty"`
	FileURL    string      `json:"fileUrl,omitempty"`
	FileType   string      `json:"fileType,omitempty"`
	FileName   string      `json:"fileName,omitempty"`
	GIF        string      `json:"gif,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Reactions  ReactionSet `json:"reactions,omitempty"`
}

// Kind reports image for GIFs and image attachments, file for any other
// attachment and text otherwise.
func (m Message) Kind() Kind {
	if m.GIF != "" {
		return KindImage
	}
	if m.FileURL != "" {
		if strings.HasPrefix(m.FileType, "image/") {
			return KindImage
		}
		return KindFile
	}
	return KindText
}

// HasContent reports whether the message carries text, a file or a GIF.
func (m Message) HasContent() bool {
	return strings.TrimSpace(m.Text) != "" || m.FileURL != "" || m.GIF != ""
}

// Clone returns a copy that shares no reaction state with m.
func (m Message) Clone() Message {
	m.Reactions = m.Reactions.Clone()
	return m
}

// Attachment is the durable reference returned by the upload endpoint.
type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// WireMessage is a message as the backend emits it. Field names drifted over
// time (message/text, _id/id, createdAt/timestamp); Canonical folds them.
type WireMessage struct {
	ID         string              `json:"id,omitempty"`
	ObjectID   string              `json:"_id,omitempty"`
	RoomID     string              `json:"roomId,omitempty"`
	SenderID   string              `json:"senderId"`
	SenderRole string              `json:"senderRole"`
	Message    string              `json:"message,omitempty"`
	Text       string              `json:"text,omitempty"`
	FileURL    string              `json:"fileUrl,omitempty"`
	FileType   string              `json:"fileType,omitempty"`
	FileName   string              `json:"fileName,omitempty"`
	GIF        string              `json:"gif,omitempty"`
	Timestamp  *time.Time          `json:"timestamp,omitempty"`
	CreatedAt  *time.Time          `json:"createdAt,omitempty"`
	Reactions  map[string][]string `json:"reactions,omitempty"`
}

// Canonical converts the wire shape into a Message.
func (w WireMessage) Canonical() Message {
	m := Message{
		ID:       w.ID,
		RoomID:   w.RoomID,
		SenderID: w.SenderID,
		Text:     w.Text,
		FileURL:  w.FileURL,
		FileType: w.FileType,
		FileName: w.FileName,
		GIF:      w.GIF,
	}
	if m.ID == "" {
		m.ID = w.ObjectID
	}
	if m.Text == "" {
		m.Text = w.Message
	}
	if role, err := ParseRole(w.SenderRole); err == nil {
		m.SenderRole = role
	}
	switch {
	case w.Timestamp != nil:
		m.Timestamp = *w.Timestamp
	case w.CreatedAt != nil:
		m.Timestamp = *w.CreatedAt
	}
	if len(w.Reactions) > 0 {
		m.Reactions = reactionsFromWire(w.Reactions)
	}
	return m
}

// OutgoingMessage is the POST /chat/{roomId} body.
type OutgoingMessage struct {
	Message    string `json:"message"`
	SenderID   string `json:"senderId"`
	SenderRole Role   `json:"senderRole"`
	FileURL    string `json:"fileUrl"`
	FileType   string `json:"fileType"`
	FileName   string `json:"fileName"`
	GIF        string `json:"gif"`
}

// Canonical builds the message the outgoing body describes.
func (o OutgoingMessage) Canonical(roomID string) Message {
	return Message{
		RoomID:     roomID,
		SenderID:   o.SenderID,
		SenderRole: o.SenderRole,
		Text:       o.Message,
		FileURL:    o.FileURL,
		FileType:   o.FileType,
		FileName:   o.FileName,
		GIF:        o.GIF,
	}
}
