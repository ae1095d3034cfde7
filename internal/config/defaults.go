package config

import "time"

const (
	// Client
	DefaultAPIBaseURL     = "http://localhost:8080/api/v1"
	DefaultSocketURL      = "ws://localhost:8080/ws"
	DefaultRequestTimeout = 10 * time.Second
	DefaultTypingTimeout  = 5 * time.Second
	DefaultRingTimeout    = 45 * time.Second
	DefaultQuality        = "medium"
	DefaultLanguage       = "en"
	DefaultCredentialFile = ".nexthire/credentials.json"

	// Backend circuit breaker
	BreakerMaxFailures = 5
	BreakerOpenTimeout = 30 * time.Second

	// Relay
	DefaultListenAddr   = ":8080"
	DefaultUploadDir    = "uploads"
	DefaultTokenTTL     = 72 * time.Hour
	DefaultEventsPerSec = 20
	DefaultEventBurst   = 40
	MaxUploadBytes      = 25 << 20
	ThumbnailWidth      = 320
)
