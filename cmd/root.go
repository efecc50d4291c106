package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/jyotish_backend/cmd/http"
	jobscmd "github.com/Alijeyrad/jyotish_backend/cmd/jobs"
	systemcmd "github.com/Alijeyrad/jyotish_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "jyotish",
	Short: "Jyotish appointment booking backend.",
	Long: `Jyotish books one-to-one astrology consultations. Clients reserve
fifteen-minute slots on an admin-managed calendar, at most once a week.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(jobscmd.NewJobsCommand())
}
