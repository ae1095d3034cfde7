package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"nexthire/chat/internal/call"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/surface"

	"github.com/spf13/cobra"
)

const openHelp = `Type a line to send it. Commands:
  /gif [n]              list the curated GIFs or send number n
  /attach <path>        stage a file for the next message
  /detach               drop the staged file
  /react <id> <emoji>   toggle a reaction
  /search <text>        search this conversation
  /call /answer /decline /hangup
  /mute /video /share /record
  /notes <rating> <text>  save interview notes (recruiters)
  /quit`

func newOpenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <peer-id>",
		Short: "Open an interactive conversation with a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, sess, err := a.openSurface(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			t := &terminal{s: s, self: sess.UserID, out: a.out}
			return t.run(ctx, cmd.InOrStdin())
		},
	}
}

// terminal drives an open surface from line input.
type terminal struct {
	s    *surface.Surface
	self string

	mu      sync.Mutex
	out     io.Writer
	printed int
}

func (t *terminal) println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

// flush prints the messages that arrived since the last call.
func (t *terminal) flush() {
	msgs := t.s.Messages()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.printed > len(msgs) {
		t.printed = 0
	}
	for _, m := range msgs[t.printed:] {
		fmt.Fprintln(t.out, formatMessage(m, t.self))
	}
	t.printed = len(msgs)
}

func (t *terminal) run(ctx context.Context, in io.Reader) error {
	if !t.s.Online() {
		t.println("* offline: messages are saved but the other side sees them on refresh")
	}
	t.flush()
	t.s.OnChange(t.flush)
	if err := t.s.OnTyping(func(on bool) {
		if on {
			t.println("* " + t.s.RemoteID() + " is typing...")
		}
	}); err != nil {
		return err
	}
	if err := t.s.OnCallEvent(func(ev call.Event) { t.println(formatCallEvent(ev)) }); err != nil {
		return err
	}
	t.println(openHelp)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := t.handle(ctx, line)
			if err != nil {
				t.println("error:", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// parseLine splits an input line into a slash command and its argument.
// Plain text has an empty command.
func parseLine(line string) (string, string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (t *terminal) handle(ctx context.Context, line string) (bool, error) {
	name, arg := parseLine(line)
	switch name {
	case "":
		if arg == "" {
			if _, staged := t.s.Staged(); !staged {
				return false, nil
			}
		}
		t.s.InputChanged(arg)
		_, err := t.s.Send(ctx, arg)
		return false, err
	case "quit", "q":
		return true, nil
	case "help":
		t.println(openHelp)
	case "gif":
		if arg == "" {
			for i, g := range models.CuratedGIFs {
				t.println(fmt.Sprintf("%2d %s", i+1, g))
			}
			return false, nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(models.CuratedGIFs) {
			return false, fmt.Errorf("pick a GIF between 1 and %d", len(models.CuratedGIFs))
		}
		_, err = t.s.SendGIF(ctx, models.CuratedGIFs[n-1])
		return false, err
	case "attach":
		if arg == "" {
			return false, errors.New("usage: /attach <path>")
		}
		if err := attachFile(ctx, t.s, arg); err != nil {
			return false, err
		}
		att, _ := t.s.Staged()
		t.println("* staged " + att.Name + ", your next line sends it")
	case "detach":
		t.s.RemoveAttachment()
	case "react":
		id, emoji, ok := strings.Cut(arg, " ")
		if !ok {
			return false, errors.New("usage: /react <message-id> <emoji>")
		}
		_, err := t.s.React(id, strings.TrimSpace(emoji))
		return false, err
	case "search":
		q, err := parseQuery([]string{arg}, "", "", "")
		if err != nil {
			return false, err
		}
		t.mu.Lock()
		printMessages(t.out, t.s.Search(q), t.self)
		t.mu.Unlock()
	case "call":
		return false, t.s.StartCall(ctx)
	case "answer":
		return false, t.s.Answer(ctx)
	case "decline":
		return false, t.s.Decline()
	case "hangup":
		return false, t.s.HangUp()
	case "mute":
		on, err := t.s.ToggleAudio()
		if err == nil {
			t.println("* microphone " + onOff(on))
		}
		return false, err
	case "video":
		on, err := t.s.ToggleVideo()
		if err == nil {
			t.println("* camera " + onOff(on))
		}
		return false, err
	case "share":
		on, err := t.s.ToggleScreenShare(ctx)
		if err == nil {
			t.println("* screen share " + onOff(on))
		}
		return false, err
	case "record":
		on, art, err := t.s.ToggleRecording(ctx)
		if err == nil && on {
			t.println("* recording")
		} else if err == nil && art != nil {
			t.println("* recording saved to " + art.Path)
		}
		return false, err
	case "notes":
		rating, notes, _ := strings.Cut(arg, " ")
		n, err := strconv.Atoi(rating)
		if err != nil {
			return false, errors.New("usage: /notes <rating 0-5> <notes>")
		}
		_, err = t.s.SaveInterview(ctx, surface.InterviewNotes{Notes: strings.TrimSpace(notes), Rating: n})
		return false, err
	default:
		return false, fmt.Errorf("unknown command /%s, try /help", name)
	}
	return false, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
