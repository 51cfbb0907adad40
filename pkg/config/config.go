package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Backend  BackendConfig  `json:"backend"`
	Typing   TypingConfig   `json:"typing"`
	Voice    VoiceConfig    `json:"voice"`
	Channels ChannelsConfig `json:"channels"`
	Server   ServerConfig   `json:"server"`
	Data     DataConfig     `json:"data"`
	mu       sync.RWMutex
}

type BackendConfig struct {
	URL string `json:"url" env:"VIOLET_BACKEND_URL"`
	// TimeoutSeconds of 0 means no client-imposed timeout: a hung chat
	// call keeps the typing indicator up until the transport gives up.
	TimeoutSeconds int `json:"timeout_seconds" env:"VIOLET_BACKEND_TIMEOUT_SECONDS"`
}

type TypingConfig struct {
	MinDelayMS int `json:"min_delay_ms" env:"VIOLET_TYPING_MIN_DELAY_MS"`
	MaxDelayMS int `json:"max_delay_ms" env:"VIOLET_TYPING_MAX_DELAY_MS"`
}

type VoiceConfig struct {
	Enabled  bool    `json:"enabled" env:"VIOLET_VOICE_ENABLED"`
	AutoPlay bool    `json:"auto_play" env:"VIOLET_VOICE_AUTO_PLAY"`
	Engine   string  `json:"engine,omitempty" env:"VIOLET_VOICE_ENGINE"`
	Rate     float64 `json:"rate" env:"VIOLET_VOICE_RATE"`
	Pitch    float64 `json:"pitch" env:"VIOLET_VOICE_PITCH"`
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Token     string              `json:"token" env:"VIOLET_CHANNELS_DISCORD_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"VIOLET_CHANNELS_DISCORD_ALLOW_FROM"`
}

type ServerConfig struct {
	Host   string `json:"host" env:"VIOLET_SERVER_HOST"`
	Port   int    `json:"port" env:"VIOLET_SERVER_PORT"`
	DBPath string `json:"db_path" env:"VIOLET_SERVER_DB_PATH"`
}

type DataConfig struct {
	Dir string `json:"dir" env:"VIOLET_DATA_DIR"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "https://violet-rhodes-backend.onrender.com",
			TimeoutSeconds: 0,
		},
		Typing: TypingConfig{
			MinDelayMS: 15,
			MaxDelayMS: 40,
		},
		Voice: VoiceConfig{
			Enabled:  true,
			AutoPlay: false,
			Engine:   "",
			Rate:     1.0,
			Pitch:    1.1,
		},
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Server: ServerConfig{
			Host:   "0.0.0.0",
			Port:   8791,
			DBPath: "~/.violet/server.db",
		},
		Data: DataConfig{
			Dir: "~/.violet",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if envErr := env.Parse(cfg); envErr != nil {
				return nil, envErr
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) DataDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Data.Dir)
}

// IdentityDBPath is the durable key/value store holding the user id.
func (c *Config) IdentityDBPath() string {
	return filepath.Join(c.DataDir(), "identity.db")
}

func (c *Config) ServerDBPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Server.DBPath)
}

func (c *Config) BackendURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Backend.URL
}

func (c *Config) BackendTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Backend.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// TypingDelayBounds clamps the configured bounds so a bad config cannot
// stall or spin the reveal loop.
func (c *Config) TypingDelayBounds() (min, max time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lo, hi := c.Typing.MinDelayMS, c.Typing.MaxDelayMS
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	return time.Duration(lo) * time.Millisecond, time.Duration(hi) * time.Millisecond
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
