package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"nexthire/chat/internal/auth"
	"nexthire/chat/internal/backend"
	"nexthire/chat/internal/config"
	"nexthire/chat/internal/localization"
	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/media"
	"nexthire/chat/internal/peer"
	"nexthire/chat/internal/surface"
	"nexthire/chat/internal/transport"

	"go.uber.org/zap"
)

var errNotSignedIn = errors.New("not signed in, run `chat login <token>` first")

// app holds what every command needs once the configuration is loaded.
type app struct {
	configPath string

	cfg   *config.Config
	log   *zap.SugaredLogger
	creds *auth.FileStore
	out   io.Writer
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	// The terminal is for the conversation; logs stay quiet unless asked for.
	level := cfg.LogLevel
	if !cfg.Dev && level == "info" {
		level = "warn"
	}
	log, err := logging.New(cfg.Dev, level)
	if err != nil {
		return err
	}
	creds, err := auth.NewFileStore(cfg.Client.CredentialPath)
	if err != nil {
		return err
	}
	a.cfg, a.log, a.creds = cfg, log, creds
	if a.out == nil {
		a.out = os.Stdout
	}
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) session() (*auth.Session, error) {
	token := a.creds.Token()
	if token == "" {
		return nil, errNotSignedIn
	}
	return auth.ParseSession(token, time.Now())
}

func (a *app) backend() *backend.Client {
	return backend.New(a.cfg.Client.APIBaseURL, a.creds,
		backend.WithTimeout(a.cfg.RequestTimeout),
		backend.WithBreaker(config.BreakerMaxFailures, config.BreakerOpenTimeout),
		backend.WithLogger(a.log.Named("backend")),
		backend.WithUnauthorizedHook(func() {
			fmt.Fprintln(os.Stderr, "session expired, run `chat login <token>` again")
		}),
	)
}

// surfaceConfig wires a surface for the signed-in user. Calls use the
// headless device, so they carry signaling and silent tracks only.
func (a *app) surfaceConfig(sess *auth.Session, state *surface.State) (surface.Config, error) {
	quality, err := media.ParseQuality(a.cfg.Client.DefaultQuality)
	if err != nil {
		return surface.Config{}, err
	}
	socketURL, token := a.cfg.Client.SocketURL, sess.Token
	log := a.log.Named("chat")
	return surface.Config{
		User:    state,
		Room:    state,
		Backend: a.backend(),
		Dial: func(ctx context.Context) (transport.Conn, error) {
			c, err := transport.Dial(ctx, socketURL, token, transport.WithLogger(log.Named("socket")))
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		Device:        media.HeadlessDevice{},
		Peers:         peer.NewPionFactory(nil, log.Named("peer")),
		Alerts:        terminalAlerts{w: os.Stderr},
		Localizer:     localization.Default(),
		Language:      a.cfg.Client.Language,
		Quality:       quality,
		TypingTimeout: a.cfg.TypingTimeout,
		RingTimeout:   a.cfg.RingTimeout,
		Log:           log,
	}, nil
}

// openSurface opens the conversation with peerID.
func (a *app) openSurface(ctx context.Context, peerID string) (*surface.Surface, *auth.Session, error) {
	sess, err := a.session()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := a.surfaceConfig(sess, surface.NewState(sess.Current()))
	if err != nil {
		return nil, nil, err
	}
	s, err := surface.New(cfg, peerID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Open(ctx); err != nil {
		return nil, nil, err
	}
	return s, sess, nil
}

type terminalAlerts struct {
	w io.Writer
}

func (t terminalAlerts) Toast(text string) { fmt.Fprintf(t.w, "! %s\n", text) }

func (t terminalAlerts) Modal(text string) { fmt.Fprintf(t.w, "!! %s\n", text) }
