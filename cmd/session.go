package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thanhdat24/code-learning/internal/session"
	"github.com/thanhdat24/code-learning/internal/ui/theme"
	"github.com/thanhdat24/code-learning/internal/viewmodel"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in, creating your progress record on first use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		e, err := rt.engine(ctx, nil)
		if err != nil {
			return err
		}
		defer e.Close(ctx)

		if err := e.Login(ctx, args[0]); err != nil {
			if errors.Is(err, session.ErrAuthFailure) {
				return fmt.Errorf("%w\nIs the relay running at %s?", err, rt.cfg.APIURL)
			}
			return err
		}
		rec, _ := e.Record()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", theme.Pass.Render("Signed in as"), theme.Title.Render(rec.Username))
		fmt.Fprintf(out, "%d points, %d solved, %d submissions\n", rec.Points, len(rec.SolvedProblemIDs), len(rec.Submissions))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the remembered user",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		e, err := rt.engine(ctx, nil)
		if err != nil {
			return err
		}
		defer e.Close(ctx)

		rec, ok := e.Record()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(cmd, fmt.Sprintf("Sign out %s? Your progress stays on the server. [y/N] ", rec.Username)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
		if err := e.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s.\n", rec.Username)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and their progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		e, err := rt.engine(ctx, nil)
		if err != nil {
			return err
		}
		defer e.Close(ctx)

		rec, ok := e.Record()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in. Run: codemaster login <username>")
			return nil
		}
		renderStats(cmd.OutOrStdout(), rec.Username, rec.Points, e.View(viewmodel.Filter{}))
		return nil
	},
}

// confirm reads a yes/no answer from the command's input.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	logoutCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
