// Package config loads and watches the bot configuration file.
//
// The file may be JSON or YAML; YAML is coerced to JSON bytes so both
// formats go through the same strict decoder (unknown fields rejected).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

type Config struct {
	Telegram    TelegramConfig     `json:"telegram"`
	Storage     StorageConfig      `json:"storage"`
	Notifier    *NotifierConfig    `json:"notifier,omitempty"`
	Logging     *LoggingConfig     `json:"logging,omitempty"`
	Maintenance *MaintenanceConfig `json:"maintenance,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// OwnerChatID receives every alert and every forwarded media copy.
	OwnerChatID int64 `json:"owner_chat_id"`

	// PollTimeout is a Go duration string (e.g. "10s"). Empty means 10s.
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

type NotifierConfig struct {
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console bool       `json:"console,omitempty"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// MaintenanceConfig controls the nightly store housekeeping job.
type MaintenanceConfig struct {
	// Schedule is a cron spec (robfig/cron, 5 fields). Empty means 04:00 daily.
	Schedule string `json:"schedule,omitempty"`
}

const (
	DefaultStoragePath = "./peekbot.db"
	DefaultSchedule    = "0 4 * * *"
)

// Validate checks the fields the process cannot run without and fills
// defaults for the rest.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if c.Telegram.OwnerChatID == 0 {
		return errors.New("telegram.owner_chat_id is required")
	}
	if _, err := ParseDurationField("telegram.poll_timeout", c.Telegram.PollTimeout); err != nil {
		return err
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		c.Storage.Path = DefaultStoragePath
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	if c.Notifier != nil && c.Notifier.RatePerSec < 0 {
		return fmt.Errorf("notifier.rate_per_sec must be >= 0, got %d", c.Notifier.RatePerSec)
	}
	if c.Maintenance != nil && strings.TrimSpace(c.Maintenance.Schedule) != "" {
		if _, err := cron.ParseStandard(c.Maintenance.Schedule); err != nil {
			return fmt.Errorf("maintenance.schedule: %w", err)
		}
	}
	return nil
}

// LogLevel returns the configured level ("" when the section is absent).
func (c *Config) LogLevel() string {
	if c == nil || c.Logging == nil {
		return ""
	}
	return c.Logging.Level
}
