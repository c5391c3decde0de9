package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (APICALL_*).
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", os.Getenv("APICALL_BASE_URL"), &cfg.BaseURL)
	s.setString("user-agent", os.Getenv("APICALL_USER_AGENT"), &cfg.UserAgent)
	s.setString("captcha-url", os.Getenv("APICALL_CAPTCHA_URL"), &cfg.CaptchaURL)
	s.setString("captcha-token", os.Getenv("APICALL_CAPTCHA_TOKEN"), &cfg.CaptchaToken)
	s.setString("cookies", os.Getenv("APICALL_COOKIES"), &cfg.Cookies)
	s.setString("log-level", os.Getenv("APICALL_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("APICALL_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}

	s.setBoolFromString("http2", os.Getenv("APICALL_HTTP2"), &cfg.HTTP2)
	s.setBoolFromString("verbose", os.Getenv("APICALL_VERBOSE"), &cfg.Verbose)
	s.setBoolFromString("dump", os.Getenv("APICALL_DUMP"), &cfg.Dump)

	return nil
}
