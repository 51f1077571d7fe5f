package cli

import (
	"fmt"
	"os"

	"github.com/andywolf/ghreport/internal/config"
	"github.com/andywolf/ghreport/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ghreport",
	Short: "ghreport - Markdown and PDF reports of GitHub issues and milestones",
	Long: `ghreport reads the open issues or milestones of a GitHub repository and writes
them as a markdown report, optionally rendered to PDF.

Issue bodies and comments are reduced to plain single-line text. Credentials come
from a token, a token stored in GCP Secret Manager, or a GitHub App installation.

Example:
  ghreport issues --repo octo/hello --pdf
  ghreport milestones --repo github.com/octo/hello --out -`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .ghreport.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ghreport")
	}

	config.BindEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}
