package models

import "time"

// Profile is a participant known to the development relay. Profiles are
// recorded when the relay issues a token.
type Profile struct {
	ID        string `gorm:"primaryKey;type:text"`
	Name      string `gorm:"type:text"`
	Role      string `gorm:"type:text;index"`
	Photo     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// Applicant returns the profile in the applicants list shape.
func (p Profile) Applicant() Applicant {
	a := Applicant{ID: p.ID, FullName: p.Name}
	a.Profile.ProfilePhoto = p.Photo
	return a
}
