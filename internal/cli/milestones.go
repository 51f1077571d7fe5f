package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "Report the open milestones of a repository",
	Long: `Write a markdown report of every open milestone in a repository with its due
date, description, and the open issues it contains.

Example:
  ghreport milestones --repo octo/hello
  ghreport milestones --repo octo/hello --out - | less`,
	RunE: runMilestones,
}

func init() {
	rootCmd.AddCommand(milestonesCmd)

	addReportFlags(milestonesCmd)
}

func runMilestones(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if err := reportMilestones(ctx, cmd, s); err != nil {
		s.logError(err)
		return err
	}
	return nil
}

func reportMilestones(ctx context.Context, cmd *cobra.Command, s *session) error {
	owner, repo := s.cfg.Owner(), s.cfg.Name()

	milestones, err := s.reporter.FetchMilestones(ctx, owner, repo)
	if err != nil {
		return err
	}

	markdown, err := s.reporter.MilestonesToMarkdown(ctx, owner, repo, milestones)
	if err != nil {
		return err
	}

	return s.writeReport(cmd, s.outputPath(cmd, "milestones"), markdown)
}
