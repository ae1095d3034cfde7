package chat_test

import (
	"testing"
	"time"

	"nexthire/chat/internal/chat"
	"nexthire/chat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func fixture(now time.Time) []models.Message {
	return []models.Message{
		{ID: "text-me", SenderID: "me", Text: "Hello there", Timestamp: now.Add(-time.Hour)},
		{ID: "pdf-other", SenderID: "other", FileURL: "u", FileType: "application/pdf", FileName: "Resume.pdf", Timestamp: now.Add(-3 * 24 * time.Hour)},
		{ID: "img-other", SenderID: "other", FileURL: "u", FileType: "image/png", FileName: "shot.png", Timestamp: now.Add(-20 * 24 * time.Hour)},
		{ID: "gif-me", SenderID: "me", GIF: models.CuratedGIFs[0], Timestamp: now.Add(-40 * 24 * time.Hour)},
	}
}

func TestSearch_DefaultsReturnEverything(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	msgs := fixture(now)

	assert.Equal(t, ids(msgs), ids(chat.Search(msgs, chat.Query{Text: "   "}, now, "me")))
}

func TestSearch(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	msgs := fixture(now)

	tests := []struct {
		name  string
		query chat.Query
		want  []string
	}{
		{"text is case-insensitive", chat.Query{Text: "HELLO"}, []string{"text-me"}},
		{"text matches file names", chat.Query{Text: "resume"}, []string{"pdf-other"}},
		{"today", chat.Query{Date: chat.Today}, []string{"text-me"}},
		{"past week", chat.Query{Date: chat.PastWeek}, []string{"text-me", "pdf-other"}},
		{"past month", chat.Query{Date: chat.PastMonth}, []string{"text-me", "pdf-other", "img-other"}},
		{"text only", chat.Query{Kind: chat.TextOnly}, []string{"text-me"}},
		{"files exclude images", chat.Query{Kind: chat.FilesOnly}, []string{"pdf-other"}},
		{"images include gifs", chat.Query{Kind: chat.ImagesOnly}, []string{"img-other", "gif-me"}},
		{"from me", chat.Query{Sender: chat.FromMe}, []string{"text-me", "gif-me"}},
		{"from other", chat.Query{Sender: chat.FromOther}, []string{"pdf-other", "img-other"}},
		{"combined", chat.Query{Date: chat.PastMonth, Sender: chat.FromOther, Kind: chat.ImagesOnly}, []string{"img-other"}},
		{"no match", chat.Query{Text: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(chat.Search(msgs, tt.query, now, "me")))
		})
	}
}

func TestSearch_IsPure(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	msgs := fixture(now)
	q := chat.Query{Text: "hello", Kind: chat.TextOnly}

	first := chat.Search(msgs, q, now, "me")
	second := chat.Search(msgs, q, now, "me")

	assert.Equal(t, first, second)
	assert.Len(t, msgs, 4)
}

func TestParseFilters(t *testing.T) {
	r, err := chat.ParseDateRange("Week")
	require.NoError(t, err)
	assert.Equal(t, chat.PastWeek, r)

	k, err := chat.ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, chat.AnyKind, k)

	s, err := chat.ParseSender("other")
	require.NoError(t, err)
	assert.Equal(t, chat.FromOther, s)

	_, err = chat.ParseKind("videos")
	assert.Error(t, err)
	_, err = chat.ParseDateRange("year")
	assert.Error(t, err)
	_, err = chat.ParseSender("them")
	assert.Error(t, err)
}
