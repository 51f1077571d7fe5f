package cli

import (
	"context"

	"github.com/andywolf/ghreport/internal/report"
	"github.com/spf13/cobra"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "Report the open issues of a repository",
	Long: `Write a markdown report of every open issue in a repository, with milestone,
labels, assignees, and the body and comments flattened to single lines.

Pull requests are excluded. With --milestone only issues in that open milestone
are reported.

Example:
  ghreport issues --repo octo/hello
  ghreport issues --repo octo/hello --milestone v1.0 --pdf`,
	RunE: runIssues,
}

func init() {
	rootCmd.AddCommand(issuesCmd)

	addReportFlags(issuesCmd)
	issuesCmd.Flags().String("milestone", "", "only report issues in the open milestone with this title")
}

func runIssues(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := reportIssues(ctx, cmd, s); err != nil {
		s.logError(err)
		return err
	}
	return nil
}

func reportIssues(ctx context.Context, cmd *cobra.Command, s *session) error {
	owner, repo := s.cfg.Owner(), s.cfg.Name()

	var milestone *report.Milestone
	if title, _ := cmd.Flags().GetString("milestone"); title != "" {
		var err error
		milestone, err = s.reporter.FindMilestone(ctx, owner, repo, title)
		if err != nil {
			return err
		}
	}

	issues, err := s.reporter.FetchIssues(ctx, owner, repo, milestone)
	if err != nil {
		return err
	}

	markdown, err := s.reporter.IssuesToMarkdown(ctx, owner, repo, issues)
	if err != nil {
		return err
	}

	return s.writeReport(cmd, s.outputPath(cmd, "issues"), markdown)
}
