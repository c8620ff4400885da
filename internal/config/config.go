package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config holds client settings
type Config struct {
	ServerURL string `yaml:"server_url" json:"server_url"` // REST backend base URL (incl. /api/v1)
	PostsURL  string `yaml:"posts_url" json:"posts_url"`   // Standalone posts endpoint, optional
	ClientID  string `yaml:"client_id" json:"client_id"`   // Install identifier, minted on first run

	// Network
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`
	LogFile    string `yaml:"log_file" json:"log_file"`
	LogConsole bool   `yaml:"log_console" json:"log_console"`
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".campusforum", "logs", "forum.log")
	}

	return &Config{
		ServerURL:      getEnv("CAMPUSFORUM_SERVER_URL", "http://localhost:8000/api/v1"),
		PostsURL:       getEnv("CAMPUSFORUM_POSTS_URL", ""),
		RequestTimeout: 10 * time.Second,
		LogLevel:       getEnv("CAMPUSFORUM_LOG_LEVEL", "INFO"),
		LogFile:        getEnv("CAMPUSFORUM_LOG_FILE", logPath),
		LogConsole:     getEnv("CAMPUSFORUM_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Dir returns the config directory (~/.campusforum)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".campusforum"), nil
}

// Load loads config from ~/.campusforum/config.yaml. A missing file
// yields defaults. The install client ID is minted and persisted on
// first load.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFrom(filepath.Join(dir, "config.yaml"))
}

func loadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: keep defaults, fall through to mint the client ID
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.New().String()
		if err := cfg.saveTo(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save saves config to ~/.campusforum/config.yaml
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return c.saveTo(filepath.Join(dir, "config.yaml"))
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
