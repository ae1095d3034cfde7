package models_test

import (
	"testing"

	"nexthire/chat/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestChatGroupBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestChatGroupBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	group := &models.ChatGroup{Name: "Backend hiring", MemberIDs: pq.StringArray{"rec1", "cand1"}}
	assert.Empty(t, group.ID, "Group ID should be empty before BeforeCreate")

	// Act
	err := group.BeforeCreate(nil) // nil *gorm.DB is acceptable for this hook

	// Assert
	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(group.ID)
	assert.NoError(t, parseErr, "Group ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestChatGroupBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestChatGroupBeforeCreate_PreservesExistingID(t *testing.T) {
	existing := uuid.New().String()
	group := &models.ChatGroup{ID: existing}

	assert.NoError(t, group.BeforeCreate(nil))
	assert.Equal(t, existing, group.ID)
}

func TestCreateGroupRequestMembers(t *testing.T) {
	req := models.CreateGroupRequest{GroupName: "g", MemberIDs: []string{"a", "", "b", "a"}}
	assert.Equal(t, []string{"a", "b"}, req.Members())
}

func TestInterviewRecordValidate(t *testing.T) {
	assert.NoError(t, models.InterviewRecord{Rating: 0}.Validate())
	assert.NoError(t, models.InterviewRecord{Rating: models.MaxRating}.Validate())
	assert.ErrorIs(t, models.InterviewRecord{Rating: 6}.Validate(), models.ErrInvalidRating)
	assert.ErrorIs(t, models.InterviewRecord{Rating: -1}.Validate(), models.ErrInvalidRating)
}

func TestApplicantDisplay(t *testing.T) {
	a := models.Applicant{ID: "c1", Name: "Ann", ProfilePhoto: "p1"}
	a.Profile.ProfilePhoto = "p2"

	assert.Equal(t, "Ann", a.DisplayName())
	assert.Equal(t, "p2", a.Avatar())
	assert.Equal(t, "Unknown", models.Applicant{}.DisplayName())
}
