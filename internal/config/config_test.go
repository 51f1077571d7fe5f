package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Repository: "octo/hello",
				Log:        LogConfig{Format: "text"},
			},
			wantErr: false,
		},
		{
			name: "missing repository",
			config: Config{
				Log: LogConfig{Format: "text"},
			},
			wantErr: true,
			errMsg:  "repository is required",
		},
		{
			name: "invalid repository",
			config: Config{
				Repository: "just-a-name",
				Log:        LogConfig{Format: "text"},
			},
			wantErr: true,
			errMsg:  "invalid repository",
		},
		{
			name: "invalid log format",
			config: Config{
				Repository: "octo/hello",
				Log:        LogConfig{Format: "xml"},
			},
			wantErr: true,
			errMsg:  "invalid log format",
		},
		{
			name: "app without installation ID",
			config: Config{
				Repository: "octo/hello",
				GitHub:     GitHubConfig{AppID: 1, PrivateKeyPath: "key.pem"},
				Log:        LogConfig{Format: "json"},
			},
			wantErr: true,
			errMsg:  "Installation ID is required",
		},
		{
			name: "app without private key",
			config: Config{
				Repository: "octo/hello",
				GitHub:     GitHubConfig{AppID: 1, InstallationID: 2},
				Log:        LogConfig{Format: "json"},
			},
			wantErr: true,
			errMsg:  "private key path or secret is required",
		},
		{
			name: "installation without app ID",
			config: Config{
				Repository: "octo/hello",
				GitHub:     GitHubConfig{InstallationID: 2},
				Log:        LogConfig{Format: "text"},
			},
			wantErr: true,
			errMsg:  "GitHub App ID is required",
		},
		{
			name: "both private key sources",
			config: Config{
				Repository: "octo/hello",
				GitHub:     GitHubConfig{AppID: 1, InstallationID: 2, PrivateKeyPath: "key.pem", PrivateKeySecret: "gh-key"},
				Log:        LogConfig{Format: "text"},
			},
			wantErr: true,
			errMsg:  "only one of private_key_path and private_key_secret",
		},
		{
			name: "complete app credentials",
			config: Config{
				Repository: "github.com/octo/hello",
				GitHub:     GitHubConfig{AppID: 1, InstallationID: 2, PrivateKeySecret: "gh-key"},
				Log:        LogConfig{Format: "text"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want containing %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_AuthMode(t *testing.T) {
	tests := []struct {
		name   string
		github GitHubConfig
		want   AuthMode
	}{
		{name: "token wins", github: GitHubConfig{Token: "t", TokenSecret: "s", AppID: 1}, want: AuthToken},
		{name: "token secret", github: GitHubConfig{TokenSecret: "s", AppID: 1}, want: AuthTokenSecret},
		{name: "app", github: GitHubConfig{AppID: 1}, want: AuthApp},
		{name: "anonymous", github: GitHubConfig{}, want: AuthAnonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{GitHub: tt.github}
			if got := cfg.AuthMode(); got != tt.want {
				t.Errorf("AuthMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_UsesSecretManager(t *testing.T) {
	tests := []struct {
		name   string
		github GitHubConfig
		want   bool
	}{
		{name: "plain token", github: GitHubConfig{Token: "t"}, want: false},
		{name: "token secret", github: GitHubConfig{TokenSecret: "gh-token"}, want: true},
		{name: "app key file", github: GitHubConfig{AppID: 1, PrivateKeyPath: "key.pem"}, want: false},
		{name: "app key secret", github: GitHubConfig{AppID: 1, PrivateKeySecret: "gh-key"}, want: true},
		{name: "anonymous", github: GitHubConfig{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{GitHub: tt.github}
			if got := cfg.UsesSecretManager(); got != tt.want {
				t.Errorf("UsesSecretManager() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantName  string
		wantErr   bool
	}{
		{input: "octo/hello", wantOwner: "octo", wantName: "hello"},
		{input: "github.com/octo/hello", wantOwner: "octo", wantName: "hello"},
		{input: "https://github.com/octo/hello.git", wantOwner: "octo", wantName: "hello"},
		{input: " octo/hello/ ", wantOwner: "octo", wantName: "hello"},
		{input: "hello", wantErr: true},
		{input: "octo/", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			owner, name, err := ParseRepository(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRepository(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRepository(%q) unexpected error: %v", tt.input, err)
			}
			if owner != tt.wantOwner || name != tt.wantName {
				t.Errorf("ParseRepository(%q) = %q, %q; want %q, %q", tt.input, owner, name, tt.wantOwner, tt.wantName)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.GitHub.BaseURL != "https://api.github.com/" {
		t.Errorf("BaseURL = %q", cfg.GitHub.BaseURL)
	}
	if cfg.Report.DateFormat != "1/2/2006" {
		t.Errorf("DateFormat = %q", cfg.Report.DateFormat)
	}
	if cfg.Report.OutputDir != "." {
		t.Errorf("OutputDir = %q", cfg.Report.OutputDir)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestApplyDefaults_GitHubTokenEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_from_env")

	cfg := &Config{}
	applyDefaults(cfg)
	if cfg.GitHub.Token != "ghp_from_env" {
		t.Errorf("expected token from GITHUB_TOKEN, got %q", cfg.GitHub.Token)
	}

	appCfg := &Config{GitHub: GitHubConfig{AppID: 1}}
	applyDefaults(appCfg)
	if appCfg.GitHub.Token != "" {
		t.Errorf("GITHUB_TOKEN should not override App credentials, got %q", appCfg.GitHub.Token)
	}
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), ".ghreport.yaml")
	content := `repository: octo/hello
github:
  app_id: 42
  installation_id: 7
  private_key_path: /tmp/key.pem
report:
  date_format: "2006-01-02"
  pdf: true
gcp:
  project: my-project
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("failed to read config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Owner() != "octo" || cfg.Name() != "hello" {
		t.Errorf("unexpected repository split: %q / %q", cfg.Owner(), cfg.Name())
	}
	if cfg.GitHub.AppID != 42 || cfg.GitHub.InstallationID != 7 {
		t.Errorf("unexpected App credentials: %+v", cfg.GitHub)
	}
	if cfg.Report.DateFormat != "2006-01-02" || !cfg.Report.PDF {
		t.Errorf("unexpected report config: %+v", cfg.Report)
	}
	if cfg.GCP.Project != "my-project" {
		t.Errorf("GCP.Project = %q, want my-project", cfg.GCP.Project)
	}
	if cfg.AuthMode() != AuthApp {
		t.Errorf("AuthMode() = %q, want app", cfg.AuthMode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("GHREPORT_REPOSITORY", "octo/from-env")
	t.Setenv("GHREPORT_GITHUB_TOKEN_SECRET", "gh-token")
	t.Setenv("GHREPORT_REPORT_DATE_FORMAT", "02 Jan 2006")
	BindEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Repository != "octo/from-env" {
		t.Errorf("Repository = %q, want octo/from-env", cfg.Repository)
	}
	if cfg.AuthMode() != AuthTokenSecret {
		t.Errorf("AuthMode() = %q, want token_secret", cfg.AuthMode())
	}
	if cfg.Report.DateFormat != "02 Jan 2006" {
		t.Errorf("DateFormat = %q, want 02 Jan 2006", cfg.Report.DateFormat)
	}
}
