package backend

import (
	"strings"
	"time"

	"cropwise/internal/errors"
)

// DefaultTimeout bounds every backend call so a hung request becomes a
// recoverable failure instead of a stuck workflow
const DefaultTimeout = 30 * time.Second

// Config holds connection settings for the farm-management backend
type Config struct {
	BaseURL string
	Token   string // opaque bearer credential scoping requests to a user
	Timeout time.Duration
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		return errors.ConfigInvalid("backend base URL is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}
