package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/idilsaglam/fintrack/internal/api"
)

// Config aggregates all runtime settings of the fintrack front end.
type Config struct {
	API    APIConfig
	UI     UIConfig
	Stub   StubConfig
	Logger LoggerConfig
	// Home is the per-user state directory (credentials, default log file).
	Home string
}

type APIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	AuthEnabled bool
}

type UIConfig struct {
	Theme string
	// DeleteErrors is "ignore" or "report".
	DeleteErrors string
}

type StubConfig struct {
	Addr     string
	DataPath string
}

type LoggerConfig struct {
	Level    string
	Encoding string
	Output   string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the client can start against a local backend.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	home := getString("FINTRACK_HOME", "")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(userHome, ".fintrack")
	}

	cfg := &Config{
		Home: home,
		API: APIConfig{
			BaseURL:     strings.TrimRight(getString("FINTRACK_API_URL", "http://localhost:5000/api"), "/"),
			Timeout:     getDuration("FINTRACK_API_TIMEOUT", api.DefaultTimeout),
			AuthEnabled: getBool("FINTRACK_AUTH_ENABLED", false),
		},
		UI: UIConfig{
			Theme:        getString("FINTRACK_THEME", "classic"),
			DeleteErrors: getString("FINTRACK_DELETE_ERRORS", "report"),
		},
		Stub: StubConfig{
			Addr:     getString("FINTRACK_STUB_ADDR", "127.0.0.1:5000"),
			DataPath: os.Getenv("FINTRACK_STUB_DATA"),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
			Output:   getString("LOG_OUTPUT", filepath.Join(home, "fintrack.log")),
		},
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
