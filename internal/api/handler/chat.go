package handler

import (
	"net/http"
	"strings"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/room"

	"github.com/gin-gonic/gin"
)

// member reports whether the authenticated participant belongs to the
// room named in the path, writing a 403 when it does not.
func member(c *gin.Context, roomID string) bool {
	if _, err := room.Peer(roomID, participant(c).ID); err != nil {
		errorJSON(c, http.StatusForbidden, "Not a member of this room")
		return false
	}
	return true
}

// History handles GET /api/v1/chat/:roomId.
func (h *Handler) History(c *gin.Context) {
	roomID := c.Param("roomId")
	if !member(c, roomID) {
		return
	}
	rows, err := h.Store.GetChatHistory(c.Request.Context(), roomID)
	if err != nil {
		h.Log.Errorw("failed to load history", "room", roomID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to load history")
		return
	}
	messages := make([]models.WireMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.Wire())
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// PostMessage handles POST /api/v1/chat/:roomId. The sender is always the
// token holder, whatever the body claims.
func (h *Handler) PostMessage(c *gin.Context) {
	roomID := c.Param("roomId")
	if !member(c, roomID) {
		return
	}
	var out models.OutgoingMessage
	if err := c.ShouldBindJSON(&out); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid message body")
		return
	}
	p := participant(c)
	out.SenderID = p.ID
	out.SenderRole = p.Role
	out.Message = strings.TrimSpace(out.Message)
	if !out.Canonical(roomID).HasContent() {
		errorJSON(c, http.StatusBadRequest, "Message is empty")
		return
	}
	if out.GIF != "" && !models.IsCuratedGIF(out.GIF) {
		errorJSON(c, http.StatusBadRequest, "Unknown GIF")
		return
	}

	saved, err := h.Store.SaveMessage(c.Request.Context(), roomID, out)
	if err != nil {
		h.Log.Errorw("failed to save message", "room", roomID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to save message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": saved.Wire()})
}

// Applicants handles GET /api/v1/chat/applicants-for-recruiter/:recruiterId.
func (h *Handler) Applicants(c *gin.Context) {
	p := participant(c)
	recruiterID := c.Param("recruiterId")
	if p.Role != models.RoleRecruiter || p.ID != recruiterID {
		errorJSON(c, http.StatusForbidden, "Recruiters only")
		return
	}
	applicants, err := h.Store.GetApplicants(c.Request.Context(), recruiterID)
	if err != nil {
		h.Log.Errorw("failed to list applicants", "recruiter", recruiterID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to list applicants")
		return
	}
	if applicants == nil {
		applicants = []models.Applicant{}
	}
	c.JSON(http.StatusOK, gin.H{"applicants": applicants})
}

// CreateGroup handles POST /api/v1/chat/group/create. The creator is always
// a member.
func (h *Handler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid group body")
		return
	}
	p := participant(c)
	req.GroupName = strings.TrimSpace(req.GroupName)
	req.MemberIDs = append([]string{p.ID}, req.MemberIDs...)
	members := req.Members()
	if req.GroupName == "" || len(members) < 2 {
		errorJSON(c, http.StatusBadRequest, "A group needs a name and at least one other member")
		return
	}

	g := &models.ChatGroup{Name: req.GroupName, MemberIDs: members, CreatedBy: p.ID}
	if err := h.Store.SaveGroup(c.Request.Context(), g); err != nil {
		h.Log.Errorw("failed to save group", "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to create group")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": g})
}

// SaveInterview handles POST /api/v1/interviews/save.
func (h *Handler) SaveInterview(c *gin.Context) {
	var rec models.InterviewRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid interview body")
		return
	}
	p := participant(c)
	if p.Role != models.RoleRecruiter {
		errorJSON(c, http.StatusForbidden, "Recruiters only")
		return
	}
	rec.RecruiterID = p.ID
	if err := rec.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = h.Now().UTC()
	}
	if err := h.Store.SaveInterview(c.Request.Context(), &rec); err != nil {
		h.Log.Errorw("failed to save interview", "room", rec.RoomID, "error", err)
		errorJSON(c, http.StatusInternalServerError, "Failed to save interview")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"interview": rec})
}
