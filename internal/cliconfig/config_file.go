package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	BaseURL      string `toml:"base_url"`
	UserAgent    string `toml:"user_agent"`
	Timeout      string `toml:"timeout"`
	HTTP2        *bool  `toml:"http2"`
	CaptchaURL   string `toml:"captcha_url"`
	CaptchaToken string `toml:"captcha_token"`
	Cookies      string `toml:"cookies"`
	LogLevel     string `toml:"log_level"`
	Verbose      *bool  `toml:"verbose"`
	Dump         *bool  `toml:"dump"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.apicall/config.toml, or an empty string if the home directory is not accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".apicall", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("user-agent", fc.UserAgent, &cfg.UserAgent)
	s.setString("captcha-url", fc.CaptchaURL, &cfg.CaptchaURL)
	s.setString("captcha-token", fc.CaptchaToken, &cfg.CaptchaToken)
	s.setString("cookies", fc.Cookies, &cfg.Cookies)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}

	s.setBool("http2", fc.HTTP2, &cfg.HTTP2)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)
	s.setBool("dump", fc.Dump, &cfg.Dump)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
