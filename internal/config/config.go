package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Server   ServerConfig  `yaml:"server"`
	Google   GoogleConfig  `yaml:"google"`
	Drive    DriveConfig   `yaml:"drive"`
	Index    IndexConfig   `yaml:"index"`
	Session  SessionConfig `yaml:"session"`
}

// ServerConfig defines the HTTP listener settings
type ServerConfig struct {
	Port        int      `yaml:"port"`
	BaseURL     string   `yaml:"base_url"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// GoogleConfig defines the OAuth client used for sign-in
type GoogleConfig struct {
	ClientID      string   `yaml:"client_id"`
	ClientSecret  string   `yaml:"client_secret"`
	RedirectURL   string   `yaml:"redirect_url"`
	IssuerURL     string   `yaml:"issuer_url"`
	AllowedEmails []string `yaml:"allowed_emails"`
}

// DriveConfig defines the storage and activity API settings
type DriveConfig struct {
	RootFolderID      string  `yaml:"root_folder_id"`
	PageSize          int64   `yaml:"page_size"`
	MaxDepth          int     `yaml:"max_depth"`
	ActivityPageSize  int64   `yaml:"activity_page_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Endpoint overrides, empty means the public Google endpoints.
	Endpoint         string `yaml:"endpoint"`
	ActivityEndpoint string `yaml:"activity_endpoint"`
}

// IndexConfig defines how the descendant index is refreshed
type IndexConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RefreshTimeout  time.Duration `yaml:"refresh_timeout"`
	TTL             time.Duration `yaml:"ttl"`
}

// SessionConfig defines the sign-in session cookie
type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookie_name"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Google: GoogleConfig{
			IssuerURL:     "https://accounts.google.com",
			AllowedEmails: []string{},
		},
		Drive: DriveConfig{
			PageSize:          100,
			MaxDepth:          10,
			ActivityPageSize:  50,
			RequestsPerSecond: 10,
		},
		Index: IndexConfig{
			RefreshInterval: 1 * time.Hour,
			RefreshTimeout:  30 * time.Minute,
		},
		Session: SessionConfig{
			TTL:        24 * time.Hour,
			CookieName: "drive_session",
		},
	}

	// Load from file if it exists
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file exists, loading from: %s\n", path)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		fmt.Printf("Config file does not exist at: %s (using defaults and environment)\n", path)
	}

	// Override with environment variables
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.Server.BaseURL = getEnv("BASE_URL", cfg.Server.BaseURL)
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	cfg.Google.ClientID = getEnv("GOOGLE_CLIENT_ID", cfg.Google.ClientID)
	cfg.Google.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.Google.ClientSecret)
	cfg.Google.RedirectURL = getEnv("GOOGLE_REDIRECT_URL", cfg.Google.RedirectURL)
	if emails := os.Getenv("ALLOWED_EMAILS"); emails != "" {
		cfg.Google.AllowedEmails = splitList(emails)
	}
	cfg.Google.AllowedEmails = normalizeEmails(cfg.Google.AllowedEmails)
	cfg.Drive.RootFolderID = getEnv("ROOT_FOLDER_ID", cfg.Drive.RootFolderID)
	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)

	fmt.Printf("Root folder: %s, Google client secret: %s\n", cfg.Drive.RootFolderID, mask(cfg.Google.ClientSecret))

	return cfg, nil
}

// Validate checks that the settings required to serve requests are present
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Google,
		validation.Field(&c.Google.ClientID, validation.Required),
		validation.Field(&c.Google.ClientSecret, validation.Required),
		validation.Field(&c.Google.IssuerURL, validation.Required, is.URL),
		validation.Field(&c.Google.RedirectURL, is.URL),
	); err != nil {
		return fmt.Errorf("google: %w", err)
	}

	if err := validation.ValidateStruct(&c.Drive,
		validation.Field(&c.Drive.RootFolderID, validation.Required),
		validation.Field(&c.Drive.PageSize, validation.Required, validation.Min(int64(1)), validation.Max(int64(1000))),
		validation.Field(&c.Drive.MaxDepth, validation.Min(0)),
		validation.Field(&c.Drive.ActivityPageSize, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.Drive.RequestsPerSecond, validation.Min(0.0)),
	); err != nil {
		return fmt.Errorf("drive: %w", err)
	}

	if err := validation.ValidateStruct(&c.Session,
		validation.Field(&c.Session.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.Session.TTL, validation.Required),
		validation.Field(&c.Session.CookieName, validation.Required),
	); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	return validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Server.BaseURL, validation.Required, is.URL),
	)
}

// RedirectURL returns the OAuth callback URL
func (c *Config) RedirectURL() string {
	if c.Google.RedirectURL != "" {
		return c.Google.RedirectURL
	}
	return strings.TrimRight(c.Server.BaseURL, "/") + "/auth/callback"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func mask(secret string) string {
	if len(secret) <= 4 {
		if secret == "" {
			return "NOT SET"
		}
		return "***"
	}
	return "***" + secret[len(secret)-4:] // Show last 4 chars
}
