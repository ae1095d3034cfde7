package models

import (
	"errors"
	"time"
)

// MaxRating is the top of the candidate rating scale.
const MaxRating = 5

// ErrInvalidRating is returned for ratings outside 0..MaxRating.
var ErrInvalidRating = errors.New("rating out of range")

// InterviewRecord holds a recruiter's notes and rating for a call.
type InterviewRecord struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	RoomID          string    `gorm:"type:text;index" json:"roomId"`
	CandidateID     string    `gorm:"type:text;index" json:"candidateId"`
	RecruiterID     string    `gorm:"type:text;index" json:"recruiterId"`
	Notes           string    `gorm:"type:text" json:"notes"`
	Rating          int       `json:"rating"`
	DurationSeconds int       `json:"duration"`
	Timestamp       time.Time `json:"timestamp"`
}

// Validate checks the rating bounds.
func (r InterviewRecord) Validate() error {
	if r.Rating < 0 || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}
