package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/andywolf/ghreport/internal/cloud/gcp"
	"github.com/andywolf/ghreport/internal/config"
	"github.com/andywolf/ghreport/internal/github"
	"github.com/andywolf/ghreport/internal/pdf"
	"github.com/andywolf/ghreport/internal/report"
	"github.com/andywolf/ghreport/internal/security"
	"github.com/andywolf/ghreport/internal/version"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stdoutPath as --out writes the markdown to stdout.
const stdoutPath = "-"

// newSecretFetcher opens Secret Manager. Tests replace it with a fake.
var newSecretFetcher = func(ctx context.Context, project string) (gcp.SecretFetcher, error) {
	return gcp.NewSecretManagerClient(ctx, project)
}

// session holds everything one report command needs.
type session struct {
	cfg         *config.Config
	runID       string
	logger      *log.Logger
	cloudLogger *gcp.CloudLogger
	redactor    *security.Redactor
	reporter    *report.Reporter
}

// addReportFlags registers the flags shared by the report commands.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("repo", "", "GitHub repository (e.g., octo/hello or github.com/octo/hello)")
	cmd.Flags().String("out", "", "markdown output file, or - for stdout (default <repo>-<kind>.md)")
	cmd.Flags().Bool("pdf", false, "also render the report as PDF")
	cmd.Flags().String("date-format", "", "Go time layout for due dates (default 1/2/2006)")
}

// loadConfig loads configuration and applies the command's flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
		cfg.Repository = repo
	}
	if cmd.Flags().Changed("pdf") {
		cfg.Report.PDF, _ = cmd.Flags().GetBool("pdf")
	}
	if layout, _ := cmd.Flags().GetString("date-format"); layout != "" {
		cfg.Report.DateFormat = layout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newSession loads configuration, sets up logging and builds an authenticated reporter.
func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		runID:    uuid.New().String()[:8],
		redactor: newRedactorFor(cfg),
	}
	s.setupLogging(cmd.ErrOrStderr(), viper.GetBool("verbose"))

	opts, err := s.clientOptions(ctx)
	if err != nil {
		return nil, err
	}

	client, err := github.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	reporterOpts := []report.Option{
		report.WithLogger(s.logger),
		report.WithDateFormat(cfg.Report.DateFormat),
	}
	if s.cloudLogger != nil {
		reporterOpts = append(reporterOpts, report.WithCloudLogger(s.cloudLogger))
	}
	s.reporter = report.New(client, reporterOpts...)

	return s, nil
}

// newRedactorFor returns a redactor that also masks the configured token.
func newRedactorFor(cfg *config.Config) *security.Redactor {
	r := security.NewRedactor()
	r.AddLiteral(cfg.GitHub.Token)
	return r
}

// setupLogging routes progress to a plain logger in text mode, or to structured JSON
// lines in json mode. Both modes pass messages through the session's redactor.
func (s *session) setupLogging(w io.Writer, verbose bool) {
	if s.cfg.Log.Format == "json" {
		s.logger = log.New(io.Discard, "", 0)
		s.cloudLogger = gcp.NewCloudLogger(s.runID,
			gcp.WithWriter(w),
			gcp.WithRedactor(s.redactor),
			gcp.WithLabels(map[string]string{"repository": s.cfg.Repository}),
		)
		return
	}

	flags := 0
	if verbose {
		flags = log.LstdFlags
	}
	s.logger = log.New(s.redactor.Writer(w), "", flags)
	if verbose {
		s.logger.Printf("Run ID: %s", s.runID)
		s.logger.Printf("Repository: %s", s.cfg.Repository)
		s.logger.Printf("Auth mode: %s", s.cfg.AuthMode())
	}
}

// clientOptions resolves GitHub credentials into client options.
func (s *session) clientOptions(ctx context.Context) ([]github.ClientOption, error) {
	cfg := s.cfg
	opts := []github.ClientOption{
		github.WithAPIBaseURL(cfg.GitHub.BaseURL),
		github.WithUserAgent(version.UserAgent()),
	}

	var secrets gcp.SecretFetcher
	if cfg.UsesSecretManager() {
		var err error
		secrets, err = newSecretFetcher(ctx, cfg.GCP.Project)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret fetcher: %w", err)
		}
		defer func() { _ = secrets.Close() }()
	}

	switch cfg.AuthMode() {
	case config.AuthToken:
		opts = append(opts, github.WithToken(cfg.GitHub.Token))

	case config.AuthTokenSecret:
		token, err := secrets.FetchSecret(ctx, cfg.GitHub.TokenSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch GitHub token: %w", err)
		}
		s.redactor.AddLiteral(token)
		opts = append(opts, github.WithToken(token))

	case config.AuthApp:
		key, err := s.privateKey(ctx, secrets)
		if err != nil {
			return nil, err
		}
		tokens, err := github.NewInstallationTokens(cfg.GitHub.AppID, cfg.GitHub.InstallationID, key,
			github.WithExchangeBaseURL(cfg.GitHub.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to set up GitHub App authentication: %w", err)
		}
		opts = append(opts, github.WithClientHTTPClient(&http.Client{
			Transport: &github.TokenTransport{Tokens: tokens},
			Timeout:   30 * time.Second,
		}))

	default:
		s.logWarning("no GitHub credentials configured; only public repositories are readable")
	}

	return opts, nil
}

func (s *session) privateKey(ctx context.Context, secrets gcp.SecretFetcher) ([]byte, error) {
	if path := s.cfg.GitHub.PrivateKeyPath; path != "" {
		key, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
		}
		return key, nil
	}

	key, err := secrets.FetchSecret(ctx, s.cfg.GitHub.PrivateKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub App private key: %w", err)
	}
	return []byte(key), nil
}

func (s *session) logInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("%s", msg)
	if s.cloudLogger != nil {
		s.cloudLogger.LogInfo(msg)
	}
}

func (s *session) logWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.logger.Printf("Warning: %s", msg)
	if s.cloudLogger != nil {
		s.cloudLogger.LogWarning(msg)
	}
}

// logError records a failed command as an ERROR entry in json mode. Text mode leaves
// the error to main, which prints it once.
func (s *session) logError(err error) {
	if s.cloudLogger != nil {
		s.cloudLogger.LogError(err.Error())
	}
}

// close releases the structured logger.
func (s *session) close() {
	if s.cloudLogger != nil {
		_ = s.cloudLogger.Close()
	}
}

// outputPath returns where the markdown report goes: the --out flag, or
// <output_dir>/<repo>-<kind>.md.
func (s *session) outputPath(cmd *cobra.Command, kind string) string {
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return out
	}
	return filepath.Join(s.cfg.Report.OutputDir, fmt.Sprintf("%s-%s.md", s.cfg.Name(), kind))
}

// writeReport writes the finished markdown and, when enabled, a PDF beside it. The
// PDF is rendered in memory before either file is written, and the markdown is removed
// again if the PDF cannot be saved, so a failed run leaves no half-finished report.
func (s *session) writeReport(cmd *cobra.Command, path, markdown string) error {
	if path == stdoutPath {
		if _, err := io.WriteString(cmd.OutOrStdout(), markdown); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if s.cfg.Report.PDF {
			s.logWarning("--pdf ignored when writing markdown to stdout")
		}
		return nil
	}

	var pdfData bytes.Buffer
	pages := 0
	if s.cfg.Report.PDF {
		doc, err := pdf.Render(markdown)
		if err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		if err := doc.Write(&pdfData); err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		pages = doc.PageCount()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if s.cfg.Report.PDF {
		pdfPath := pdfPathFor(path)
		if err := os.WriteFile(pdfPath, pdfData.Bytes(), 0o644); err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("failed to write PDF %s: %w", pdfPath, err)
		}
		s.logInfo("Wrote %s", path)
		s.logInfo("Wrote %s (%d pages)", pdfPath, pages)
		return nil
	}

	s.logInfo("Wrote %s", path)
	return nil
}

// pdfPathFor swaps the markdown extension for .pdf.
func pdfPathFor(markdownPath string) string {
	ext := filepath.Ext(markdownPath)
	return markdownPath[:len(markdownPath)-len(ext)] + ".pdf"
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
