package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thanhdat24/code-learning/internal/catalog"
	"github.com/thanhdat24/code-learning/internal/judge"
	"github.com/thanhdat24/code-learning/internal/ui/theme"
)

var submitCmd = &cobra.Command{
	Use:   "submit <problem-id>",
	Short: "Submit a solution to the AI judge",
	Long:  "Submit a solution file (or stdin with --file -) for judging. Progress is synced to the relay before the command exits.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		code, err := readSource(cmd, path)
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		j, ok, err := rt.judge(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNoJudge
		}

		e, err := rt.engine(ctx, j)
		if err != nil {
			return err
		}

		p, err := e.Problem(args[0])
		if err != nil {
			_ = e.Close(ctx)
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Judging %s...\n", theme.Title.Render(p.Title))
		before, _ := e.Record()

		sub, err := e.Submit(ctx, p.ID, code)
		if err != nil {
			_ = e.Close(ctx)
			return err
		}
		after, _ := e.Record()
		renderVerdict(out, p, sub.Result, after.Points-before.Points)

		flushCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Close(flushCtx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), theme.Fail.Render("Progress not synced:"), err)
			return fmt.Errorf("sync progress: %w", err)
		}
		return nil
	},
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--file is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("source is empty")
	}
	return string(data), nil
}

func renderVerdict(out io.Writer, p *catalog.Problem, v judge.Verdict, gained int) {
	fmt.Fprintf(out, "\n%s  score %d/100\n", verdictBadge(v), v.Score)
	if v.JudgeUnavailable {
		fmt.Fprintln(out, theme.Hint.Render("The judge could not be reached; this attempt was recorded without credit."))
	}
	if gained > 0 {
		fmt.Fprintln(out, theme.Pass.Render(fmt.Sprintf("+%d points, first solve!", gained)))
	}
	if v.Feedback != "" {
		fmt.Fprintf(out, "\n%s\n", v.Feedback)
	}

	if len(v.TestResults) > 0 {
		fmt.Fprintf(out, "\n%s %d/%d passed\n", theme.Heading.Render("Tests"), v.Passed(), len(v.TestResults))
		for _, r := range v.TestResults {
			mark := theme.Pass.Render("✓")
			if r.Status != judge.TestPassed {
				mark = theme.Fail.Render("✗")
			}
			line := fmt.Sprintf("  %s %-22s %6.1fms", mark, r.TestCaseID, r.ExecutionTimeMs)
			if tc, ok := p.TestCase(r.TestCaseID); ok && tc.IsHidden() {
				line += "  " + theme.Hint.Render("hidden")
			} else if r.ActualOutput != "" {
				line += "  → " + r.ActualOutput
			}
			fmt.Fprintln(out, line)
			if r.Message != "" {
				fmt.Fprintf(out, "      %s\n", theme.Hint.Render(r.Message))
			}
		}
	}

	if len(v.Suggestions) > 0 {
		fmt.Fprintf(out, "\n%s\n", theme.Heading.Render("Suggestions"))
		for _, s := range v.Suggestions {
			fmt.Fprintf(out, "  • %s\n", s)
		}
	}
	if strings.TrimSpace(v.OptimizedCode) != "" {
		fmt.Fprintf(out, "\n%s\n%s\n", theme.Heading.Render("Optimized solution"), theme.Code.Render(strings.TrimRight(v.OptimizedCode, "\n")))
	}
}

func init() {
	submitCmd.Flags().StringP("file", "f", "", "Source file to submit (- for stdin)")
}
