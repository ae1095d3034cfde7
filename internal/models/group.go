package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ChatGroup is a named multi-member conversation.
type ChatGroup struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:text;not null" json:"groupName"`
	MemberIDs pq.StringArray `gorm:"type:text[]" json:"memberIds"`
	CreatedBy string         `gorm:"type:text" json:"createdBy,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// BeforeCreate assigns a UUID when the group has none.
func (g *ChatGroup) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

// CreateGroupRequest is the POST /chat/group/create body.
type CreateGroupRequest struct {
	GroupName string   `json:"groupName"`
	MemberIDs []string `json:"memberIds"`
}

// Members returns the non-empty, de-duplicated member ids in input order.
func (r CreateGroupRequest) Members() []string {
	seen := make(map[string]struct{}, len(r.MemberIDs))
	out := make([]string, 0, len(r.MemberIDs))
	for _, id := range r.MemberIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
