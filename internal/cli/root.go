package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "joingate",
	Short: "Group admission gate for chat platforms",
	Long:  "Screens group join requests against per-group rules: blacklists,\nkeyword filters, level thresholds, and attempt caps. Connects to a\nOneBot v11 gateway and resolves requests automatically.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
