// Package cliconfig loads configuration of the apicall command.
//
// Precedence, from the lowest: defaults, TOML file, APICALL_* environment variables, explicitly set flags.
package cliconfig

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is the default total timeout of one API call.
const DefaultTimeout = 30 * time.Second

// Config holds CLI configuration for apicall.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	HTTP2     bool

	CaptchaURL   string
	CaptchaToken string
	Cookies      string

	LogLevel string
	Verbose  bool
	Dump     bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Timeout:  DefaultTimeout,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if err := validateAbsoluteURL("base-url", c.BaseURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("captcha-url", c.CaptchaURL); err != nil {
		return err
	}
	if c.CaptchaURL != "" && c.CaptchaToken != "" {
		return fmt.Errorf("captcha-url and captcha-token cannot be used together")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	return nil
}

// Level returns the parsed log level, Validate must be called first.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	if c.Verbose && level > zerolog.DebugLevel {
		// Request traces are logged on the debug level
		return zerolog.DebugLevel
	}
	return level
}

func validateAbsoluteURL(flag, value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", flag, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf(`%s "%s" must be an absolute URL`, flag, value)
	}
	return nil
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
