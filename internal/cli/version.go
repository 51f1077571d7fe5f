package cli

import (
	"fmt"

	"github.com/andywolf/ghreport/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the ghreport build",
	Long: `Show which ghreport build is running. The global --verbose flag adds the full
commit, platform and Go toolchain; --user-agent prints the User-Agent header
ghreport sends to the GitHub API, for matching requests in audit logs.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().Bool("user-agent", false, "print the GitHub API User-Agent instead")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := version.Info()
	if ua, _ := cmd.Flags().GetBool("user-agent"); ua {
		out = version.UserAgent()
	} else if viper.GetBool("verbose") {
		out = version.Full()
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
