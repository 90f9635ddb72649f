package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thanhdat24/code-learning/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "codemaster",
	Short:         "Practice coding problems with an AI judge",
	Long:          "CodeMaster: solve coding problems, get them judged by an LLM, and keep your progress in sync with the CodeMaster relay.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CODEMASTER_DB env var)")
	rootCmd.PersistentFlags().String("api", "", "Relay base URL (overrides CODEMASTER_API_URL env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides CODEMASTER_LOG_LEVEL)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(problemsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CODEMASTER_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
