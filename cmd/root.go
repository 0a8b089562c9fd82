package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"insyn-search/config"
	"insyn-search/proxies"
	"insyn-search/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile   string
	proxyFile string
	timeout   time.Duration
	logLevel  string
	logDir    string

	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "insyn",
	Short: "Insynsregistret records and issuer search as JSON",
	Long: `insyn fetches insider trading disclosures from Finansinspektionen's
Insynsregistret and re-exposes them as JSON.

  insyn           Run the HTTP server (same as "insyn serve")
  insyn records   Print the disclosures of one issuer
  insyn search    Print the issuer autocomplete result for a keyword`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runServe,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnv(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		s, err := config.LoadSettings()
		if err != nil {
			return err
		}

		// Priority: command line flag > environment variable > default
		flags := cmd.Flags()
		if flags.Changed("proxy-file") {
			s.ProxyFile = proxyFile
			s.ProxyFileSet = true
		}
		if flags.Changed("timeout") {
			if timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			s.Timeout = timeout
		}
		if flags.Changed("log-level") {
			s.LogLevel = logLevel
		}
		if flags.Changed("log-dir") {
			s.LogDir = logDir
		}
		settings = s
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Optional dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&proxyFile, "proxy-file", config.DefaultProxyFile,
		"JSON file with \"http\"/\"https\" proxy URLs (env: PROXY_FILE)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultTimeout,
		"Upstream request timeout (env: UPSTREAM_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn, error (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", config.DefaultLogDir,
		"Directory for rotated log files, empty to disable (env: LOG_DIR)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// proxyProvider picks where proxies come from. An explicitly configured file
// must exist; the default file is optional and, when absent, proxies are
// taken from HTTP_PROXY/HTTPS_PROXY instead.
func proxyProvider(s config.Settings) proxies.Provider {
	if s.ProxyFileSet {
		return proxies.NewFileProvider(s.ProxyFile, true)
	}
	if _, err := os.Stat(s.ProxyFile); err == nil {
		return proxies.NewFileProvider(s.ProxyFile, false)
	}
	return proxies.NewEnvProvider()
}

// serverLogger writes to the rotated log directory and to stderr.
func serverLogger(s config.Settings) (*zap.Logger, error) {
	return config.NewLogger(s.LogDir, s.LogLevel, true)
}

// cliLogger only writes to stderr, so one-shot commands leave no log files
// behind. Info is raised to warn to keep stderr quiet next to the JSON output.
func cliLogger(s config.Settings) (*zap.Logger, error) {
	return config.NewLogger("", cliLogLevel(s.LogLevel), true)
}

func cliLogLevel(level string) string {
	if strings.EqualFold(strings.TrimSpace(level), "info") {
		return "warn"
	}
	return level
}

// newClient builds the single registry client for this process.
func newClient(s config.Settings, logger *zap.Logger) (*registry.Client, error) {
	provider := proxyProvider(s)
	proxyCfg, err := provider.Proxies()
	if err != nil {
		return nil, err
	}
	if len(proxyCfg) == 0 {
		logger.Info("no proxy configured, connecting directly", zap.String("proxy_file", s.ProxyFile))
	} else {
		logger.Info("using proxies", zap.Strings("schemes", schemes(proxyCfg)))
	}

	return registry.NewClient(proxyCfg,
		registry.WithTimeout(s.Timeout),
		registry.WithLogger(logger),
	)
}

func schemes(cfg map[string]string) []string {
	out := make([]string, 0, len(cfg))
	for scheme := range cfg {
		out = append(out, scheme)
	}
	return out
}
