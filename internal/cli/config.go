package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/auth"
	"github.com/evcraddock/rentbook/internal/db"
	"github.com/evcraddock/rentbook/internal/email"
)

const defaultServerURL = "http://localhost:8080"

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL   string `yaml:"server_url,omitempty"`
	APIKey      string `yaml:"api_key,omitempty"`
	Owner       string `yaml:"owner,omitempty"`
	Currency    string `yaml:"currency,omitempty"`
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rb", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("RB_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// getAPIKey returns the API key from env var or config.
func getAPIKey() string {
	if v := os.Getenv("RB_API_KEY"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.APIKey
	}
	return ""
}

// getCurrency returns the display currency from env var, config, or default.
func getCurrency() string {
	if v := os.Getenv("RB_CURRENCY"); v != "" {
		return strings.ToUpper(v)
	}
	cfg, err := loadConfig()
	if err == nil && cfg.Currency != "" {
		return strings.ToUpper(cfg.Currency)
	}
	return amount.DefaultCurrency
}

// databaseTarget resolves the database path or URL.
func databaseTarget() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if v := os.Getenv("RB_DATABASE_URL"); v != "" {
		return v, nil
	}
	cfg, err := loadConfig()
	if err == nil && cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	return db.DefaultPath()
}

// corsOrigins returns the origins allowed by the API server.
func corsOrigins() []string {
	v := os.Getenv("RB_CORS_ORIGINS")
	if v == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// newProvider returns the session provider backed by the config file.
func newProvider() (*auth.Provider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var initial *auth.Session
	if cfg.APIKey != "" {
		initial = &auth.Session{ServerURL: cfg.ServerURL, APIKey: cfg.APIKey, Owner: cfg.Owner}
	}

	save := func(s *auth.Session) error {
		current, err := loadConfig()
		if err != nil {
			return err
		}
		if s == nil {
			current.APIKey = ""
			current.Owner = ""
		} else {
			current.ServerURL = s.ServerURL
			current.APIKey = s.APIKey
			current.Owner = s.Owner
		}
		return saveConfig(current)
	}

	return auth.NewProvider(initial, save), nil
}

// smtpConfig reads outgoing mail settings from RB_SMTP_* env vars.
func smtpConfig() email.SMTPConfig {
	port := os.Getenv("RB_SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return email.SMTPConfig{
		Host: os.Getenv("RB_SMTP_HOST"),
		Port: port,
		User: os.Getenv("RB_SMTP_USER"),
		Pass: os.Getenv("RB_SMTP_PASS"),
		From: os.Getenv("RB_SMTP_FROM"),
	}
}
