package chat

import (
	"fmt"
	"strings"
	"time"

	"nexthire/chat/internal/models"
)

type DateRange string

const (
	AnyDate   DateRange = "all"
	Today     DateRange = "today"
	PastWeek  DateRange = "week"
	PastMonth DateRange = "month"
)

type KindFilter string

const (
	AnyKind    KindFilter = "all"
	TextOnly   KindFilter = "text"
	FilesOnly  KindFilter = "files"
	ImagesOnly KindFilter = "images"
)

type SenderFilter string

const (
	AnySender SenderFilter = "all"
	FromMe    SenderFilter = "me"
	FromOther SenderFilter = "other"
)

// Query is a search over the message list. The zero value matches everything.
type Query struct {
	Text   string
	Date   DateRange
	Kind   KindFilter
	Sender SenderFilter
}

func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(strings.ToLower(s)); r {
	case "", AnyDate:
		return AnyDate, nil
	case Today, PastWeek, PastMonth:
		return r, nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

func ParseKind(s string) (KindFilter, error) {
	switch k := KindFilter(strings.ToLower(s)); k {
	case "", AnyKind:
		return AnyKind, nil
	case TextOnly, FilesOnly, ImagesOnly:
		return k, nil
	}
	return "", fmt.Errorf("unknown message kind %q", s)
}

func ParseSender(s string) (SenderFilter, error) {
	switch f := SenderFilter(strings.ToLower(s)); f {
	case "", AnySender:
		return AnySender, nil
	case FromMe, FromOther:
		return f, nil
	}
	return "", fmt.Errorf("unknown sender filter %q", s)
}

// Search returns the messages of msgs that match every part of q, in order.
func Search(msgs []models.Message, q Query, now time.Time, selfID string) []models.Message {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if text != "" && !matchesText(m, text) {
			continue
		}
		if !inRange(m.Timestamp, q.Date, now) {
			continue
		}
		if !ofKind(m, q.Kind) {
			continue
		}
		if !fromSender(m, q.Sender, selfID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func matchesText(m models.Message, text string) bool {
	return strings.Contains(strings.ToLower(m.Text), text) ||
		strings.Contains(strings.ToLower(m.FileName), text)
}

func inRange(ts time.Time, r DateRange, now time.Time) bool {
	switch r {
	case Today:
		y1, m1, d1 := ts.In(now.Location()).Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case PastWeek:
		return !ts.Before(now.Add(-7 * 24 * time.Hour))
	case PastMonth:
		return !ts.Before(now.Add(-30 * 24 * time.Hour))
	}
	return true
}

func ofKind(m models.Message, k KindFilter) bool {
	switch k {
	case TextOnly:
		return m.Kind() == models.KindText
	case FilesOnly:
		return m.Kind() == models.KindFile
	case ImagesOnly:
		return m.Kind() == models.KindImage
	}
	return true
}

func fromSender(m models.Message, f SenderFilter, selfID string) bool {
	switch f {
	case FromMe:
		return m.SenderID == selfID
	case FromOther:
		return m.SenderID != selfID
	}
	return true
}
