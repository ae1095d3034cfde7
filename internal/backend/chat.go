package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/room"
)

type historyResponse struct {
	Messages []models.WireMessage `json:"messages"`
}

type messageResponse struct {
	Message models.WireMessage `json:"message"`
}

type applicantsResponse struct {
	Applicants []models.Applicant `json:"applicants"`
}

type groupResponse struct {
	Group models.ChatGroup `json:"group"`
}

// History returns the messages of a room in server order.
func (c *Client) History(ctx context.Context, roomID string) ([]models.Message, error) {
	var resp historyResponse
	if err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(roomID), "", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(resp.Messages))
	for _, w := range resp.Messages {
		m := w.Canonical()
		if m.RoomID == "" {
			m.RoomID = roomID
		}
		out = append(out, m)
	}
	return out, nil
}

// SendMessage persists a message and returns it as stored by the backend.
func (c *Client) SendMessage(ctx context.Context, roomID string, msg models.OutgoingMessage) (models.Message, error) {
	body, err := encodeJSON(msg)
	if err != nil {
		return models.Message{}, err
	}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/chat/"+url.PathEscape(roomID), "application/json", body, &resp); err != nil {
		return models.Message{}, err
	}
	m := resp.Message.Canonical()
	if m.RoomID == "" {
		m.RoomID = roomID
	}
	return m, nil
}

// Upload sends a file as the multipart field "file" and returns its durable reference.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (models.Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("read %s: %w", name, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(name))))
	h.Set("Content-Type", ContentType(name, data))
	part, err := mw.CreatePart(h)
	if err != nil {
		return models.Attachment{}, err
	}
	if _, err := part.Write(data); err != nil {
		return models.Attachment{}, err
	}
	if err := mw.Close(); err != nil {
		return models.Attachment{}, err
	}

	var att models.Attachment
	if err := c.do(ctx, http.MethodPost, "/chat/upload", mw.FormDataContentType(), buf.Bytes(), &att); err != nil {
		return models.Attachment{}, err
	}
	if att.Name == "" {
		att.Name = filepath.Base(name)
	}
	return att, nil
}

// Applicants lists the applicants to the recruiter's jobs.
func (c *Client) Applicants(ctx context.Context, recruiterID string) ([]models.Applicant, error) {
	var resp applicantsResponse
	if err := c.do(ctx, http.MethodGet, "/chat/applicants-for-recruiter/"+url.PathEscape(recruiterID), "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Applicants, nil
}

// Conversations builds the recruiter inbox, one row per distinct applicant.
func (c *Client) Conversations(ctx context.Context, recruiterID string) ([]models.Conversation, error) {
	applicants, err := c.Applicants(ctx, recruiterID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(applicants))
	out := make([]models.Conversation, 0, len(applicants))
	for _, a := range applicants {
		if a.ID == "" {
			continue
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, models.Conversation{
			RoomID:          room.ID(a.ID, recruiterID),
			CandidateID:     a.ID,
			CandidateName:   a.DisplayName(),
			CandidateAvatar: a.Avatar(),
		})
	}
	return out, nil
}

// CreateGroup creates a named group chat.
func (c *Client) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (models.ChatGroup, error) {
	body, err := encodeJSON(models.CreateGroupRequest{GroupName: req.GroupName, MemberIDs: req.Members()})
	if err != nil {
		return models.ChatGroup{}, err
	}
	var resp groupResponse
	if err := c.do(ctx, http.MethodPost, "/chat/group/create", "application/json", body, &resp); err != nil {
		return models.ChatGroup{}, err
	}
	return resp.Group, nil
}

// SaveInterview stores the recruiter's notes for a finished call.
func (c *Client) SaveInterview(ctx context.Context, rec models.InterviewRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	body, err := encodeJSON(rec)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/interviews/save", "application/json", body, nil)
}

// ContentType guesses the MIME type of a file from its name, then its content.
func ContentType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return http.DetectContentType(data)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
