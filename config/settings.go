package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort      = "8080"
	DefaultProxyFile = "proxies.txt"
	DefaultLogDir    = "logs"
	DefaultLogLevel  = "info"
	DefaultFilter    = "bleve"
	DefaultTimeout   = 30 * time.Second
)

// Settings is everything the process reads from its environment.
type Settings struct {
	Port         string
	ProxyFile    string
	ProxyFileSet bool // PROXY_FILE was given explicitly
	Timeout      time.Duration
	LogDir       string
	LogLevel     string
	CORSOrigins  string
	RecordFilter string
}

// LoadEnv loads path into the environment if it exists. Variables already set
// in the environment win over the file.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// GetEnv returns the trimmed value of key.
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvDefault(key, fallback string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return fallback
}

// LoadSettings reads Settings from the environment, applying defaults.
func LoadSettings() (Settings, error) {
	s := Settings{
		Port:         getEnvDefault("PORT", DefaultPort),
		ProxyFile:    getEnvDefault("PROXY_FILE", DefaultProxyFile),
		ProxyFileSet: GetEnv("PROXY_FILE") != "",
		Timeout:      DefaultTimeout,
		LogDir:       getEnvDefault("LOG_DIR", DefaultLogDir),
		LogLevel:     getEnvDefault("LOG_LEVEL", DefaultLogLevel),
		CORSOrigins:  getEnvDefault("CORS_ORIGINS", "*"),
		RecordFilter: getEnvDefault("RECORD_FILTER", DefaultFilter),
	}

	if raw := GetEnv("UPSTREAM_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Settings{}, errors.New("UPSTREAM_TIMEOUT must be a duration such as 30s")
		}
		if d <= 0 {
			return Settings{}, errors.New("UPSTREAM_TIMEOUT must be positive")
		}
		s.Timeout = d
	}

	return s, nil
}
