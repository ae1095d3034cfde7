package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"nexthire/chat/internal/call"
	"nexthire/chat/internal/models"
)

// formatMessage renders one message line. selfID's messages are shown as
// "you".
func formatMessage(m models.Message, selfID string) string {
	var b strings.Builder
	who := m.SenderID
	if m.SenderID == selfID {
		who = "you"
	}
	if !m.Timestamp.IsZero() {
		fmt.Fprintf(&b, "[%s] ", m.Timestamp.Local().Format("Jan 02 15:04"))
	}
	b.WriteString(who + ":")
	if m.Text != "" {
		b.WriteString(" " + m.Text)
	}
	if m.FileURL != "" {
		name := m.FileName
		if name == "" {
			name = "attachment"
		}
		fmt.Fprintf(&b, " [%s %s]", name, m.FileURL)
	}
	if m.GIF != "" {
		fmt.Fprintf(&b, " [gif %s]", m.GIF)
	}
	if top := m.Reactions.Top(3); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, r := range top {
			parts = append(parts, fmt.Sprintf("%s%d", r.Emoji, r.Count))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, " "))
	}
	if m.ID != "" {
		fmt.Fprintf(&b, "  #%s", m.ID)
	}
	return b.String()
}

func printMessages(w io.Writer, msgs []models.Message, selfID string) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "no messages")
		return
	}
	for _, m := range msgs {
		fmt.Fprintln(w, formatMessage(m, selfID))
	}
}

func formatCallEvent(ev call.Event) string {
	who := ev.RemoteName
	if who == "" {
		who = ev.RemoteID
	}
	switch ev.State {
	case call.IncomingRinging:
		return fmt.Sprintf("* %s is calling, /answer or /decline", who)
	case call.OutgoingRinging:
		return fmt.Sprintf("* calling %s...", who)
	case call.Connected:
		return fmt.Sprintf("* connected with %s", who)
	case call.Ended:
		s := fmt.Sprintf("* call ended (%s)", ev.Reason)
		if ev.Duration > 0 {
			s += fmt.Sprintf(" after %s", ev.Duration.Round(time.Second))
		}
		if ev.Artifact != nil {
			s += ", recording " + ev.Artifact.Name
		}
		return s
	case call.Failed:
		if ev.Err != nil {
			return fmt.Sprintf("* call failed: %v", ev.Err)
		}
		return "* call failed"
	}
	return "* call " + ev.State.String()
}

func formatConversations(w io.Writer, convs []models.Conversation) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "no conversations")
		return
	}
	sorted := append([]models.Conversation(nil), convs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastTimestamp.After(sorted[j].LastTimestamp)
	})
	for _, c := range sorted {
		line := fmt.Sprintf("%-24s %s", c.CandidateName, c.CandidateID)
		if c.Unread > 0 {
			line += fmt.Sprintf("  (%d unread)", c.Unread)
		}
		if c.LastMessage != "" {
			line += "  " + c.LastMessage
		}
		fmt.Fprintln(w, line)
	}
}
