// Package config loads server configuration with viper.
//
// Sources, highest priority first: command-line flags bound by the CLI,
// environment variables (PORT, DB_PATH, JWT_SECRET, ...), an optional YAML
// config file, and the defaults below. Keys are snake_case so each one maps
// onto its environment variable by upper-casing.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Viper keys. The CLI binds its flags to these.
const (
	KeyPort               = "port"
	KeyStore              = "store"
	KeyDBPath             = "db_path"
	KeyJWTSecret          = "jwt_secret"
	KeyGitHubClientID     = "github_client_id"
	KeyGitHubClientSecret = "github_client_secret"
	KeyGitHubCallbackURL  = "github_callback_url"
	KeyTemplateDir        = "template_dir"
	KeyStaticDir          = "static_dir"
	KeySeed               = "seed"
	KeyLogLevel           = "log_level"
	KeySecureCookies      = "secure_cookies"
)

// minSecretLen matches what auth.NewTokenService accepts.
const minSecretLen = 16

type Config struct {
	Port     int
	Store    string
	DBPath   string
	LogLevel slog.Level

	JWTSecret string
	// GeneratedSecret is true when JWTSecret was made up at startup
	// (memory store only). Sessions then do not survive a restart.
	GeneratedSecret bool
	SecureCookies   bool

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	TemplateDir string
	StaticDir   string

	// Seed loads the sample problems into an empty memory store at startup.
	Seed bool
}

// GitHubEnabled reports whether GitHub login should be offered.
func (c Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// New returns a viper instance with defaults set and environment lookup on.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeyStore, StoreSQLite)
	v.SetDefault(KeyDBPath, "data/problemspark.db")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyGitHubClientID, "")
	v.SetDefault(KeyGitHubClientSecret, "")
	v.SetDefault(KeyGitHubCallbackURL, "")
	v.SetDefault(KeyTemplateDir, "web/templates")
	v.SetDefault(KeyStaticDir, "web/static")
	v.SetDefault(KeySeed, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeySecureCookies, false)

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	return nil
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:               v.GetInt(KeyPort),
		Store:              strings.ToLower(strings.TrimSpace(v.GetString(KeyStore))),
		DBPath:             v.GetString(KeyDBPath),
		JWTSecret:          v.GetString(KeyJWTSecret),
		SecureCookies:      v.GetBool(KeySecureCookies),
		GitHubClientID:     v.GetString(KeyGitHubClientID),
		GitHubClientSecret: v.GetString(KeyGitHubClientSecret),
		GitHubCallbackURL:  v.GetString(KeyGitHubCallbackURL),
		TemplateDir:        v.GetString(KeyTemplateDir),
		StaticDir:          v.GetString(KeyStaticDir),
		Seed:               v.GetBool(KeySeed),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return Config{}, fmt.Errorf("config: invalid log_level %q", v.GetString(KeyLogLevel))
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: port %d out of range", cfg.Port)
	}

	switch cfg.Store {
	case StoreSQLite:
		if cfg.DBPath == "" {
			return Config{}, fmt.Errorf("config: db_path is required for the sqlite store")
		}
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("config: jwt_secret is required for the sqlite store (try: JWT_SECRET=$(openssl rand -hex 32))")
		}
	case StoreMemory:
		if cfg.JWTSecret == "" {
			secret, err := randomSecret()
			if err != nil {
				return Config{}, err
			}
			cfg.JWTSecret = secret
			cfg.GeneratedSecret = true
		}
	default:
		return Config{}, fmt.Errorf("config: unknown store %q (want %q or %q)", cfg.Store, StoreSQLite, StoreMemory)
	}

	if len(cfg.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("config: jwt_secret must be at least %d characters", minSecretLen)
	}

	if (cfg.GitHubClientID == "") != (cfg.GitHubClientSecret == "") {
		return Config{}, fmt.Errorf("config: github_client_id and github_client_secret must be set together")
	}
	if cfg.GitHubEnabled() && cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generating jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
