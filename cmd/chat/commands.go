package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nexthire/chat/internal/auth"
	"nexthire/chat/internal/chat"
	"nexthire/chat/internal/models"
	"nexthire/chat/internal/room"
	"nexthire/chat/internal/surface"

	"github.com/spf13/cobra"
)

func newLoginCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "login <token>",
		Short:   "Store the session token issued by NextHire",
		Args:    cobra.ExactArgs(1),
		Example: "  chat login eyJhbGciOiJIUzI1NiIs...",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			sess, err := auth.ParseSession(token, time.Now())
			if err != nil {
				return err
			}
			if err := a.creds.Save(token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", sess.DisplayName(), sess.Role)
			return nil
		},
	}
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.creds.Clear()
		},
	}
}

func newHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <peer-id>",
		Short: "Print the conversation with a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			msgs, err := a.backend().History(cmd.Context(), room.ID(sess.UserID, args[0]))
			if err != nil {
				return err
			}
			printMessages(a.out, msgs, sess.UserID)
			return nil
		},
	}
}

func newSendCommand(a *app) *cobra.Command {
	var file, gif string

	cmd := &cobra.Command{
		Use:   "send <peer-id> [text]",
		Short: "Send one message, optionally with an attachment or a GIF",
		Args:  cobra.RangeArgs(1, 2),
		Example: `  chat send rec42 "Thanks for the call"
  chat send rec42 "My resume" --file ./resume.pdf
  chat send rec42 --gif https://media.giphy.com/media/JIX9t2j0ZTN9S/giphy.gif`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			if gif != "" && (text != "" || file != "") {
				return errors.New("--gif is sent on its own")
			}

			ctx := cmd.Context()
			s, sess, err := a.openSurface(ctx, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			var msg models.Message
			if gif != "" {
				msg, err = s.SendGIF(ctx, gif)
			} else {
				if file != "" {
					if err := attachFile(ctx, s, file); err != nil {
						return err
					}
				}
				msg, err = s.Send(ctx, text)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatMessage(msg, sess.UserID))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "attach a file")
	cmd.Flags().StringVar(&gif, "gif", "", "send one of the curated GIFs")
	return cmd
}

func attachFile(ctx context.Context, s *surface.Surface, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.Attach(ctx, filepath.Base(path), f)
	return err
}

func newSearchCommand(a *app) *cobra.Command {
	var dateRange, kind, sender string

	cmd := &cobra.Command{
		Use:   "search <peer-id> [text]",
		Short: "Search the conversation with a participant",
		Args:  cobra.RangeArgs(1, 2),
		Example: `  chat search rec42 interview --range week
  chat search rec42 --kind images --sender other`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(args[1:], dateRange, kind, sender)
			if err != nil {
				return err
			}
			sess, err := a.session()
			if err != nil {
				return err
			}
			msgs, err := a.backend().History(cmd.Context(), room.ID(sess.UserID, args[0]))
			if err != nil {
				return err
			}
			printMessages(a.out, chat.Search(msgs, q, time.Now(), sess.UserID), sess.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&dateRange, "range", "", "today, week or month")
	cmd.Flags().StringVar(&kind, "kind", "", "text, files or images")
	cmd.Flags().StringVar(&sender, "sender", "", "me or other")
	return cmd
}

func parseQuery(text []string, dateRange, kind, sender string) (chat.Query, error) {
	var (
		q   chat.Query
		err error
	)
	q.Text = strings.Join(text, " ")
	if q.Date, err = chat.ParseDateRange(dateRange); err != nil {
		return q, err
	}
	if q.Kind, err = chat.ParseKind(kind); err != nil {
		return q, err
	}
	if q.Sender, err = chat.ParseSender(sender); err != nil {
		return q, err
	}
	return q, nil
}

func newInboxCommand(a *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List the candidates a recruiter is talking to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			state := surface.NewState(sess.Current())
			cfg, err := a.surfaceConfig(sess, state)
			if err != nil {
				return err
			}
			inbox := surface.NewInbox(cfg, a.backend(), state)
			defer inbox.Close()
			if err := inbox.Refresh(cmd.Context()); err != nil {
				return err
			}
			formatConversations(a.out, inbox.Filter(filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only candidates whose name contains this text")
	return cmd
}

func newGroupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage group conversations",
	}
	createCmd := &cobra.Command{
		Use:     "create <name> <member-id>...",
		Short:   "Create a group conversation",
		Args:    cobra.MinimumNArgs(2),
		Example: "  chat group create \"Panel interview\" cand7 rec42 rec43",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			req := models.CreateGroupRequest{
				GroupName: args[0],
				MemberIDs: append([]string{sess.UserID}, args[1:]...),
			}
			req.MemberIDs = req.Members()
			g, err := a.backend().CreateGroup(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created group %q (%s) with %d members\n", g.Name, g.ID, len(g.MemberIDs))
			return nil
		},
	}
	cmd.AddCommand(createCmd)
	return cmd
}
