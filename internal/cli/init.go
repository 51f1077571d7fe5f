package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andywolf/ghreport/internal/cli/wizard"
	"github.com/andywolf/ghreport/internal/config"
	"github.com/andywolf/ghreport/internal/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = ".ghreport.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize project configuration",
	Long: `Create a .ghreport.yaml file with sensible defaults that you can customize.

Example:
  ghreport init --repo octo/hello
  ghreport init --interactive`,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("repo", "", "GitHub repository")
	initCmd.Flags().String("token-secret", "", "Secret Manager name of a GitHub token")
	initCmd.Flags().Int64("app-id", 0, "GitHub App ID")
	initCmd.Flags().Int64("installation-id", 0, "GitHub App Installation ID")
	initCmd.Flags().String("private-key-path", "", "GitHub App private key file")
	initCmd.Flags().String("private-key-secret", "", "Secret Manager name of the GitHub App private key")
	initCmd.Flags().Bool("pdf", false, "render PDF reports by default")
	initCmd.Flags().Bool("interactive", false, "prompt for every setting")
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

// projectConfig is the on-disk shape of .ghreport.yaml.
type projectConfig struct {
	Repository string `yaml:"repository"`
	GitHub     struct {
		BaseURL          string `yaml:"base_url"`
		TokenSecret      string `yaml:"token_secret,omitempty"`
		AppID            int64  `yaml:"app_id,omitempty"`
		InstallationID   int64  `yaml:"installation_id,omitempty"`
		PrivateKeyPath   string `yaml:"private_key_path,omitempty"`
		PrivateKeySecret string `yaml:"private_key_secret,omitempty"`
	} `yaml:"github"`
	Report struct {
		DateFormat string `yaml:"date_format"`
		OutputDir  string `yaml:"output_dir"`
		PDF        bool   `yaml:"pdf"`
	} `yaml:"report"`
	Log struct {
		Format string `yaml:"format"`
	} `yaml:"log"`
}

const configHeader = `# ghreport configuration
# Every key can be overridden with a GHREPORT_ environment variable,
# e.g. GHREPORT_GITHUB_TOKEN for github.token. GITHUB_TOKEN is used when
# no credentials are configured here.

`

func initProject(cmd *cobra.Command, args []string) error {
	configPath := filepath.Join(".", configFileName)

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	answers := answersFromFlags(cmd)

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		prompted, err := wizard.PromptConfig(answers)
		if err != nil {
			return err
		}
		answers = *prompted
	}

	data, err := renderConfig(answers)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	if answers.Repository == "" {
		fmt.Fprintln(out, "  1. Set the repository")
	} else {
		fmt.Fprintln(out, "  1. Check the repository")
	}
	fmt.Fprintln(out, "  2. Provide GitHub credentials (GITHUB_TOKEN, a token secret, or App credentials)")
	fmt.Fprintln(out, "  3. Run 'ghreport issues' or 'ghreport milestones'")

	return nil
}

func answersFromFlags(cmd *cobra.Command) wizard.Answers {
	var a wizard.Answers
	a.Repository, _ = cmd.Flags().GetString("repo")
	a.TokenSecret, _ = cmd.Flags().GetString("token-secret")
	a.AppID, _ = cmd.Flags().GetInt64("app-id")
	a.InstallationID, _ = cmd.Flags().GetInt64("installation-id")
	a.PrivateKeyPath, _ = cmd.Flags().GetString("private-key-path")
	a.PrivateKeySecret, _ = cmd.Flags().GetString("private-key-secret")
	a.PDF, _ = cmd.Flags().GetBool("pdf")

	switch {
	case a.TokenSecret != "":
		a.AuthMode = config.AuthTokenSecret
	case a.AppID != 0:
		a.AuthMode = config.AuthApp
	default:
		a.AuthMode = config.AuthAnonymous
	}
	return a
}

// renderConfig marshals answers with defaults into the commented YAML file body.
func renderConfig(a wizard.Answers) ([]byte, error) {
	var cfg projectConfig
	cfg.Repository = a.Repository
	cfg.GitHub.BaseURL = "https://api.github.com/"
	cfg.GitHub.TokenSecret = a.TokenSecret
	cfg.GitHub.AppID = a.AppID
	cfg.GitHub.InstallationID = a.InstallationID
	cfg.GitHub.PrivateKeyPath = a.PrivateKeyPath
	cfg.GitHub.PrivateKeySecret = a.PrivateKeySecret
	cfg.Report.DateFormat = report.DefaultDateFormat
	cfg.Report.OutputDir = "."
	cfg.Report.PDF = a.PDF
	cfg.Log.Format = "text"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append([]byte(configHeader), data...), nil
}
