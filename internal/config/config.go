// Package config loads the settings of the chat client and the development
// relay. Values come from an optional YAML file, a .env file and NEXTHIRE_*
// environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "NEXTHIRE"

type ClientConfig struct {
	APIBaseURL            string `mapstructure:"api_base_url"`
	SocketURL             string `mapstructure:"socket_url"`
	CredentialPath        string `mapstructure:"credential_path"`
	Language              string `mapstructure:"language"`
	DefaultQuality        string `mapstructure:"default_quality"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
	TypingTimeoutSeconds  int    `mapstructure:"typing_timeout_seconds"`
	RingTimeoutSeconds    int    `mapstructure:"ring_timeout_seconds"`
}

// AIConfig is read for parity with the web client. The chat core does not
// call the AI backend.
type AIConfig struct {
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`
}

type RelayConfig struct {
	ListenAddr      string  `mapstructure:"listen_addr"`
	PublicURL       string  `mapstructure:"public_url"`
	PostgresDSN     string  `mapstructure:"postgres_dsn"`
	RedisAddr       string  `mapstructure:"redis_addr"`
	RedisPassword   string  `mapstructure:"redis_password"`
	JWTSecret       string  `mapstructure:"jwt_secret"`
	UploadDir       string  `mapstructure:"upload_dir"`
	TokenTTLHours   int     `mapstructure:"token_ttl_hours"`
	EventsPerSecond float64 `mapstructure:"events_per_second"`
	EventBurst      int     `mapstructure:"event_burst"`
}

type Config struct {
	Dev      bool         `mapstructure:"dev"`
	LogLevel string       `mapstructure:"log_level"`
	Client   ClientConfig `mapstructure:"client"`
	AI       AIConfig     `mapstructure:"ai"`
	Relay    RelayConfig  `mapstructure:"relay"`

	// derived
	RequestTimeout time.Duration `mapstructure:"-"`
	TypingTimeout  time.Duration `mapstructure:"-"`
	RingTimeout    time.Duration `mapstructure:"-"`
	TokenTTL       time.Duration `mapstructure:"-"`
}

// Load reads the configuration. path may be empty, in which case only the
// environment and defaults are used.
func Load(path string) (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.derive()
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dev", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("client.api_base_url", DefaultAPIBaseURL)
	v.SetDefault("client.socket_url", DefaultSocketURL)
	v.SetDefault("client.credential_path", defaultCredentialPath())
	v.SetDefault("client.language", DefaultLanguage)
	v.SetDefault("client.default_quality", DefaultQuality)
	v.SetDefault("client.request_timeout_seconds", int(DefaultRequestTimeout/time.Second))
	v.SetDefault("client.typing_timeout_seconds", int(DefaultTypingTimeout/time.Second))
	v.SetDefault("client.ring_timeout_seconds", int(DefaultRingTimeout/time.Second))

	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")

	v.SetDefault("relay.listen_addr", DefaultListenAddr)
	v.SetDefault("relay.public_url", "http://localhost:8080")
	v.SetDefault("relay.postgres_dsn", "")
	v.SetDefault("relay.redis_addr", "")
	v.SetDefault("relay.redis_password", "")
	v.SetDefault("relay.jwt_secret", "")
	v.SetDefault("relay.upload_dir", DefaultUploadDir)
	v.SetDefault("relay.token_ttl_hours", int(DefaultTokenTTL/time.Hour))
	v.SetDefault("relay.events_per_second", DefaultEventsPerSec)
	v.SetDefault("relay.event_burst", DefaultEventBurst)
}

func (c *Config) derive() {
	if c.Client.RequestTimeoutSeconds <= 0 {
		c.Client.RequestTimeoutSeconds = int(DefaultRequestTimeout / time.Second)
	}
	if c.Client.TypingTimeoutSeconds <= 0 {
		c.Client.TypingTimeoutSeconds = int(DefaultTypingTimeout / time.Second)
	}
	if c.Client.RingTimeoutSeconds <= 0 {
		c.Client.RingTimeoutSeconds = int(DefaultRingTimeout / time.Second)
	}
	if c.Relay.TokenTTLHours <= 0 {
		c.Relay.TokenTTLHours = int(DefaultTokenTTL / time.Hour)
	}
	if c.Relay.EventsPerSecond <= 0 {
		c.Relay.EventsPerSecond = DefaultEventsPerSec
	}
	if c.Relay.EventBurst <= 0 {
		c.Relay.EventBurst = DefaultEventBurst
	}
	c.Client.APIBaseURL = strings.TrimRight(c.Client.APIBaseURL, "/")

	c.RequestTimeout = time.Duration(c.Client.RequestTimeoutSeconds) * time.Second
	c.TypingTimeout = time.Duration(c.Client.TypingTimeoutSeconds) * time.Second
	c.RingTimeout = time.Duration(c.Client.RingTimeoutSeconds) * time.Second
	c.TokenTTL = time.Duration(c.Relay.TokenTTLHours) * time.Hour
}

func defaultCredentialPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultCredentialFile
	}
	return filepath.Join(home, DefaultCredentialFile)
}
