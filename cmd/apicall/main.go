package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/tossapp/apiclient/internal/cliconfig"
	"github.com/tossapp/apiclient/pkg/apicall"
)

const (
	exitClientError    = 1
	exitTransportError = 2
)

var exampleUsage = strings.TrimSpace(`
  apicall GET https://app.example.com/api/items
  apicall POST /api/users --base-url https://app.example.com --data '{"name":"a"}' --on-success-message "User has been created."
  apicall POST /api/login --config ./apicall.toml --cookies "CSRF-TOKEN=abc" --captcha --data-file login.json
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCommand(os.Stdout, os.Stderr, nil)
	if err := root.ExecuteContext(ctx); err != nil {
		cancel()
		logger := cliconfig.Logger(os.Stderr, zerolog.InfoLevel)
		logger.Error().Err(err).Msg("apicall failed")
		os.Exit(exitCode(err))
	}
}

// newRootCommand creates the command, a nil transport means the default HTTP transport.
func newRootCommand(stdout, stderr io.Writer, transport http.RoundTripper) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	opts := requestOptions{}
	var cfgPath string

	root := &cobra.Command{
		Use:           "apicall [flags] <method> <url>",
		Short:         "Send one API call and dispatch the response by its status",
		Long:          "Send one API call with the CSRF token and the captcha token attached, and dispatch the response by its status.",
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Load config file, the default path is used only if the file exists
			cfgFile := cfgPath
			if cfgFile == "" {
				if p := cliconfig.DefaultConfigPath(); p != "" && cliconfig.FileExists(p) {
					cfgFile = p
				}
			}
			if cfgFile != "" {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (APICALL_*), they are overridden by flags
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cliconfig.Logger(stderr, cfg.Level())
			logger.Debug().Interface("config", maskConfig(cfg)).Msg("configuration")

			ctx := cmd.Context()
			env, err := newEnv(cfg, opts, args[1], transport, logger, stderr)
			if err != nil {
				return err
			}
			payload, err := opts.payload()
			if err != nil {
				return err
			}

			b := apicall.New(env, args[1]).
				OnSuccess(apicall.Chain(
					writeBody(stdout),
					apicall.Notify(env.Messages, env.Navigator, opts.successMessage, opts.navigate),
				)).
				OnClientError(apicall.Chain(
					writeBody(stderr),
					func(context.Context, apicall.Response) error { return errClientError },
				))
			for _, h := range opts.headers {
				key, value, _ := strings.Cut(h, "=")
				b = b.AndHeader(strings.TrimSpace(key), strings.TrimSpace(value))
			}
			return b.Send(ctx, args[0], payload)
		},
	}

	// Configuration flags, they can be set also by the config file and APICALL_* env
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.apicall/config.toml)")
	root.Flags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL for relative targets")
	root.Flags().StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent header")
	root.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "total timeout of the call")
	root.Flags().BoolVar(&cfg.HTTP2, "http2", cfg.HTTP2, "force HTTP2 protocol")
	root.Flags().StringVar(&cfg.CaptchaURL, "captcha-url", cfg.CaptchaURL, "captcha token endpoint")
	root.Flags().StringVar(&cfg.CaptchaToken, "captcha-token", cfg.CaptchaToken, "static captcha token")
	root.Flags().StringVar(&cfg.Cookies, "cookies", cfg.Cookies, `cookies in the "a=b; c=d" format`)
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, error")
	root.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log each request stage")
	root.Flags().BoolVar(&cfg.Dump, "dump", cfg.Dump, "dump requests and responses to stderr (debug)")

	// Request flags
	root.Flags().StringVar(&opts.data, "data", "", "JSON payload")
	root.Flags().StringVar(&opts.dataFile, "data-file", "", "file with JSON payload")
	root.Flags().StringArrayVar(&opts.form, "form", nil, "form field key=value, can be repeated")
	root.Flags().StringArrayVar(&opts.headers, "header", nil, "request header key=value, can be repeated")
	root.Flags().StringArrayVar(&opts.cookies, "cookie", nil, "cookie name=value, can be repeated")
	root.Flags().BoolVar(&opts.captcha, "captcha", false, `attach captcha token to the JSON payload as the "token" key`)
	root.Flags().StringVar(&opts.successMessage, "on-success-message", "", "message shown on success")
	root.Flags().StringVar(&opts.navigate, "navigate", "", "path to navigate to on success")
	root.MarkFlagsMutuallyExclusive("data", "data-file", "form")

	return root
}

var errClientError = errors.New("client error")

func exitCode(err error) int {
	var transportErr *apicall.TransportError
	if errors.As(err, &transportErr) {
		return exitTransportError
	}
	return exitClientError
}

func writeBody(w io.Writer) apicall.Handler {
	return func(_ context.Context, response apicall.Response) error {
		if len(response.Body()) == 0 {
			return nil
		}
		if _, err := w.Write(response.Body()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
}

func maskConfig(cfg cliconfig.Config) cliconfig.Config {
	if cfg.CaptchaToken != "" {
		cfg.CaptchaToken = "*****"
	}
	if cfg.Cookies != "" {
		cfg.Cookies = "*****"
	}
	return cfg
}
