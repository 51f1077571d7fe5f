package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the full ghreport configuration
type Config struct {
	Repository string       `mapstructure:"repository"`
	GitHub     GitHubConfig `mapstructure:"github"`
	Report     ReportConfig `mapstructure:"report"`
	Log        LogConfig    `mapstructure:"log"`
	GCP        GCPConfig    `mapstructure:"gcp"`
}

// GitHubConfig contains API endpoint and credential settings.
// Exactly one credential source is used; see Config.AuthMode.
type GitHubConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	Token            string `mapstructure:"token"`
	TokenSecret      string `mapstructure:"token_secret"`
	AppID            int64  `mapstructure:"app_id"`
	InstallationID   int64  `mapstructure:"installation_id"`
	PrivateKeyPath   string `mapstructure:"private_key_path"`
	PrivateKeySecret string `mapstructure:"private_key_secret"`
}

// ReportConfig contains report rendering settings
type ReportConfig struct {
	DateFormat string `mapstructure:"date_format"`
	OutputDir  string `mapstructure:"output_dir"`
	PDF        bool   `mapstructure:"pdf"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Format string `mapstructure:"format"` // text or json
}

// GCPConfig contains Google Cloud settings used when credentials live in Secret Manager.
type GCPConfig struct {
	Project string `mapstructure:"project"` // empty resolves from env or metadata server
}

// AuthMode identifies where the GitHub credential comes from.
type AuthMode string

const (
	AuthToken       AuthMode = "token"
	AuthTokenSecret AuthMode = "token_secret"
	AuthApp         AuthMode = "app"
	AuthAnonymous   AuthMode = "anonymous"
)

// Keys lists every configuration key so environment variables can be bound
// before unmarshalling.
var Keys = []string{
	"repository",
	"github.base_url",
	"github.token",
	"github.token_secret",
	"github.app_id",
	"github.installation_id",
	"github.private_key_path",
	"github.private_key_secret",
	"report.date_format",
	"report.output_dir",
	"report.pdf",
	"log.format",
	"gcp.project",
}

// EnvPrefix prefixes environment overrides, e.g. GHREPORT_GITHUB_TOKEN for github.token.
const EnvPrefix = "GHREPORT"

// BindEnv makes every key in Keys overridable from the environment.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range Keys {
		_ = viper.BindEnv(key)
	}
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = "https://api.github.com/"
	}

	// GITHUB_TOKEN is what CI runners and the gh CLI export.
	if cfg.GitHub.Token == "" && cfg.GitHub.TokenSecret == "" && cfg.GitHub.AppID == 0 {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}

	if cfg.Report.DateFormat == "" {
		cfg.Report.DateFormat = "1/2/2006"
	}

	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "."
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Repository == "" {
		return fmt.Errorf("repository is required")
	}

	if _, _, err := ParseRepository(c.Repository); err != nil {
		return err
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Log.Format)
	}

	if c.AuthMode() == AuthApp {
		if c.GitHub.InstallationID == 0 {
			return fmt.Errorf("GitHub App Installation ID is required")
		}
		if c.GitHub.PrivateKeyPath == "" && c.GitHub.PrivateKeySecret == "" {
			return fmt.Errorf("GitHub App private key path or secret is required")
		}
	}

	if c.GitHub.PrivateKeyPath != "" && c.GitHub.PrivateKeySecret != "" {
		return fmt.Errorf("set only one of private_key_path and private_key_secret")
	}

	if c.GitHub.AppID == 0 && c.GitHub.InstallationID != 0 {
		return fmt.Errorf("GitHub App ID is required when installation_id is set")
	}

	return nil
}

// AuthMode returns the credential source in precedence order: token, token secret,
// GitHub App, then anonymous.
func (c *Config) AuthMode() AuthMode {
	switch {
	case c.GitHub.Token != "":
		return AuthToken
	case c.GitHub.TokenSecret != "":
		return AuthTokenSecret
	case c.GitHub.AppID != 0:
		return AuthApp
	default:
		return AuthAnonymous
	}
}

// UsesSecretManager reports whether any credential must be read from Secret Manager.
func (c *Config) UsesSecretManager() bool {
	switch c.AuthMode() {
	case AuthTokenSecret:
		return true
	case AuthApp:
		return c.GitHub.PrivateKeySecret != ""
	default:
		return false
	}
}

// Owner returns the owner part of the configured repository.
func (c *Config) Owner() string {
	owner, _, _ := ParseRepository(c.Repository)
	return owner
}

// Name returns the name part of the configured repository.
func (c *Config) Name() string {
	_, name, _ := ParseRepository(c.Repository)
	return name
}

// ParseRepository splits "owner/name", "github.com/owner/name" or a full https URL into
// owner and name.
func ParseRepository(repo string) (owner, name string, err error) {
	trimmed := strings.TrimSpace(repo)
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimPrefix(trimmed, "github.com/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	trimmed = strings.Trim(trimmed, "/")

	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q (expected owner/name)", repo)
	}

	return parts[0], parts[1], nil
}
