package models

import (
	"strconv"

	"gorm.io/gorm"
)

// ChatHistory is a persisted chat message. The embedded gorm.Model provides
// the message ID and its creation time.
type ChatHistory struct {
	gorm.Model

	// RoomID is the deterministic room key of the two participants.
	RoomID string `gorm:"type:text;not null;index:idx_room_msg"`
	// SenderID is the participant who sent the message.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// SenderRole is candidate or recruiter.
	SenderRole string `gorm:"type:text;not null"`
	// Content is the plain-text body, possibly empty.
	Content string `gorm:"type:text"`
	// FileURL, FileType and FileName reference an uploaded attachment.
	FileURL  string `gorm:"type:text"`
	FileType string `gorm:"type:text"`
	FileName string `gorm:"type:text"`
	// GIF is the URL of a curated animated image.
	GIF string `gorm:"type:text"`
}

// NewChatHistory builds the record for an outgoing message.
func NewChatHistory(roomID string, out OutgoingMessage) *ChatHistory {
	return &ChatHistory{
		RoomID:     roomID,
		SenderID:   out.SenderID,
		SenderRole: string(out.SenderRole),
		Content:    out.Message,
		FileURL:    out.FileURL,
		FileType:   out.FileType,
		FileName:   out.FileName,
		GIF:        out.GIF,
	}
}

// Wire returns the record in the backend wire shape.
func (h ChatHistory) Wire() WireMessage {
	created := h.CreatedAt
	return WireMessage{
		ID:         strconv.FormatUint(uint64(h.ID), 10),
		RoomID:     h.RoomID,
		SenderID:   h.SenderID,
		SenderRole: h.SenderRole,
		Message:    h.Content,
		FileURL:    h.FileURL,
		FileType:   h.FileType,
		FileName:   h.FileName,
		GIF:        h.GIF,
		CreatedAt:  &created,
	}
}
