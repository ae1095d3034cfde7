package models

import "time"

// Conversation is one row of the recruiter inbox.
type Conversation struct {
	RoomID          string    `json:"roomId"`
	CandidateID     string    `json:"candidateId"`
	CandidateName   string    `json:"candidateName"`
	CandidateAvatar string    `json:"candidateAvatar,omitempty"`
	LastMessage     string    `json:"lastMessage,omitempty"`
	LastTimestamp   time.Time `json:"lastTimestamp,omitzero"`
	Unread          int       `json:"unreadRecruiter,omitempty"`
}

// Applicant is an applicant entry of /chat/applicants-for-recruiter.
type Applicant struct {
	ID           string `json:"_id"`
	FullName     string `json:"fullname,omitempty"`
	Name         string `json:"name,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
	Profile      struct {
		ProfilePhoto string `json:"profilePhoto,omitempty"`
	} `json:"profile,omitzero"`
}

// DisplayName prefers the full name, then the short name.
func (a Applicant) DisplayName() string {
	switch {
	case a.FullName != "":
		return a.FullName
	case a.Name != "":
		return a.Name
	}
	return "Unknown"
}

// Avatar prefers the profile photo.
func (a Applicant) Avatar() string {
	if a.Profile.ProfilePhoto != "" {
		return a.Profile.ProfilePhoto
	}
	return a.ProfilePhoto
}
