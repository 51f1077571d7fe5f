package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestRunVersion(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		userAgent bool
		want      string
	}{
		{name: "one line", want: "ghreport dev (commit: "},
		{name: "verbose", verbose: true, want: "OS/Arch:"},
		{name: "user agent", verbose: true, userAgent: true, want: "ghreport/dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			viper.Set("verbose", tt.verbose)

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.Flags().Bool("user-agent", tt.userAgent, "")
			cmd.SetOut(&out)

			if err := runVersion(cmd, nil); err != nil {
				t.Fatalf("runVersion() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output %q missing %q", out.String(), tt.want)
			}
		})
	}
}
