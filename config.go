package jwtcodec

import (
	"fmt"

	"github.com/cybergodev/jwtcodec/internal/signing"
)

const (
	// DefaultIndent is the number of spaces per level in decoded text.
	DefaultIndent = 2

	// MaxIndent bounds Config.Indent.
	MaxIndent = 8

	// DefaultMaxTokenSize bounds tokens and editor text, in bytes.
	DefaultMaxTokenSize = 1 << 20
)

// Config represents codec configuration
type Config struct {
	// Algorithm used to sign encoded tokens. Empty means HS256.
	Algorithm Algorithm `yaml:"algorithm" json:"algorithm"`

	// Key is the HMAC key. The empty key is the "no real secret" mode and is
	// accepted as is.
	Key string `yaml:"key" json:"key"`

	// Indent is the number of spaces per level used by DecodeText and Format.
	// Zero means DefaultIndent.
	Indent int `yaml:"indent" json:"indent"`

	// MaxTokenSize limits the length of tokens and editor text. Zero disables
	// the limit.
	MaxTokenSize int `yaml:"max_token_size" json:"max_token_size"`
}

// DefaultConfig returns the configuration used by New when none is given:
// HS256 with an empty key, two-space indentation and a 1 MiB input limit.
func DefaultConfig() Config {
	return Config{
		Algorithm:    AlgorithmHS256,
		Key:          "",
		Indent:       DefaultIndent,
		MaxTokenSize: DefaultMaxTokenSize,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}

	if c.Algorithm != "" {
		if _, err := signing.GetMethod(string(c.Algorithm)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	if c.Indent < 0 || c.Indent > MaxIndent {
		return &ValidationError{
			Field:   "indent",
			Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxIndent, c.Indent),
			Err:     ErrInvalidConfig,
		}
	}

	if c.MaxTokenSize < 0 {
		return &ValidationError{
			Field:   "max_token_size",
			Message: fmt.Sprintf("must not be negative, got %d", c.MaxTokenSize),
			Err:     ErrInvalidConfig,
		}
	}

	return nil
}
