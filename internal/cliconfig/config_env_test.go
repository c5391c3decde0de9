package cliconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"APICALL_BASE_URL":      "https://env.example.com",
				"APICALL_USER_AGENT":    "env-agent",
				"APICALL_TIMEOUT":       "2s",
				"APICALL_HTTP2":         "1",
				"APICALL_CAPTCHA_URL":   "https://captcha.example.com",
				"APICALL_COOKIES":       "a=b",
				"APICALL_LOG_LEVEL":     "error",
				"APICALL_VERBOSE":       "true",
				"APICALL_DUMP":          "false",
				"APICALL_CAPTCHA_TOKEN": "",
			},
			changed: map[string]bool{},
			initial: Config{Dump: true},
			expected: Config{
				BaseURL:    "https://env.example.com",
				UserAgent:  "env-agent",
				Timeout:    2 * time.Second,
				HTTP2:      true,
				CaptchaURL: "https://captcha.example.com",
				Cookies:    "a=b",
				LogLevel:   "error",
				Verbose:    true,
				Dump:       false,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"APICALL_BASE_URL": "https://env.example.com",
				"APICALL_VERBOSE":  "true",
			},
			changed:  map[string]bool{"base-url": true, "verbose": true},
			initial:  Config{BaseURL: "https://flag.example.com"},
			expected: Config{BaseURL: "https://flag.example.com"},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"APICALL_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}
