// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andywolf/ghreport/internal/config"
	"github.com/charmbracelet/huh"
)

// Answers are the values collected by PromptConfig.
type Answers struct {
	Repository       string
	AuthMode         config.AuthMode
	TokenSecret      string
	AppID            int64
	InstallationID   int64
	PrivateKeyPath   string
	PrivateKeySecret string
	PDF              bool
}

// PromptConfig asks for the settings written by "ghreport init". Fields already set
// in defaults are offered as initial values.
func PromptConfig(defaults Answers) (*Answers, error) {
	a := defaults
	if a.AuthMode == "" {
		a.AuthMode = config.AuthAnonymous
	}

	appID := formatID(a.AppID)
	installationID := formatID(a.InstallationID)
	keySource := "path"
	if a.PrivateKeySecret != "" {
		keySource = "secret"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub repository (owner/name)").
				Value(&a.Repository).
				Validate(validateRepository),

			huh.NewSelect[config.AuthMode]().
				Title("GitHub credentials").
				Options(
					huh.NewOption("GITHUB_TOKEN environment variable / none", config.AuthAnonymous),
					huh.NewOption("Token in GCP Secret Manager", config.AuthTokenSecret),
					huh.NewOption("GitHub App installation", config.AuthApp),
				).
				Value(&a.AuthMode),

			huh.NewConfirm().
				Title("Render PDF reports by default?").
				Value(&a.PDF),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Secret name holding the token").
				Value(&a.TokenSecret).
				Validate(required("secret name")),
		).WithHideFunc(func() bool { return a.AuthMode != config.AuthTokenSecret }),
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub App ID").
				Value(&appID).
				Validate(validateID),

			huh.NewInput().
				Title("Installation ID").
				Value(&installationID).
				Validate(validateID),

			huh.NewSelect[string]().
				Title("Private key source").
				Options(
					huh.NewOption("PEM file", "path"),
					huh.NewOption("GCP Secret Manager", "secret"),
				).
				Value(&keySource),
		).WithHideFunc(func() bool { return a.AuthMode != config.AuthApp }),
		huh.NewGroup(
			huh.NewInput().
				Title("Private key file").
				Value(&a.PrivateKeyPath).
				Validate(required("private key file")),
		).WithHideFunc(func() bool { return a.AuthMode != config.AuthApp || keySource != "path" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Secret name holding the private key").
				Value(&a.PrivateKeySecret).
				Validate(required("secret name")),
		).WithHideFunc(func() bool { return a.AuthMode != config.AuthApp || keySource != "secret" }),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt cancelled: %w", err)
	}

	return normalize(a, appID, installationID, keySource), nil
}

// normalize drops answers that do not belong to the chosen credential source.
func normalize(a Answers, appID, installationID, keySource string) *Answers {
	a.Repository = strings.TrimSpace(a.Repository)

	switch a.AuthMode {
	case config.AuthTokenSecret:
		a.AppID, a.InstallationID = 0, 0
		a.PrivateKeyPath, a.PrivateKeySecret = "", ""
	case config.AuthApp:
		a.TokenSecret = ""
		a.AppID, _ = parseID(appID)
		a.InstallationID, _ = parseID(installationID)
		if keySource == "secret" {
			a.PrivateKeyPath = ""
		} else {
			a.PrivateKeySecret = ""
		}
	default:
		a.TokenSecret = ""
		a.AppID, a.InstallationID = 0, 0
		a.PrivateKeyPath, a.PrivateKeySecret = "", ""
	}

	return &a
}

func validateRepository(s string) error {
	_, _, err := config.ParseRepository(s)
	return err
}

func validateID(s string) error {
	_, err := parseID(s)
	return err
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("must be a positive number")
	}
	return id, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
