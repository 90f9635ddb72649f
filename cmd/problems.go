package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thanhdat24/code-learning/internal/catalog"
	"github.com/thanhdat24/code-learning/internal/judge"
	"github.com/thanhdat24/code-learning/internal/progress"
	"github.com/thanhdat24/code-learning/internal/ui/theme"
	"github.com/thanhdat24/code-learning/internal/viewmodel"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "List problems with your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		statusFlag, _ := cmd.Flags().GetString("status")
		diffFlag, _ := cmd.Flags().GetString("difficulty")

		status, err := viewmodel.ParseStatus(statusFlag)
		if err != nil {
			return err
		}
		difficulty, err := viewmodel.ParseDifficulty(diffFlag)
		if err != nil {
			return err
		}

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

		v := e.View(viewmodel.Filter{Search: search, Status: status, Difficulty: difficulty})
		out := cmd.OutOrStdout()
		if rec, ok := e.Record(); ok {
			renderStats(out, rec.Username, rec.Points, v)
			fmt.Fprintln(out)
		}

		if len(v.Items) == 0 {
			fmt.Fprintln(out, "No problems match.")
			return nil
		}
		fmt.Fprintf(out, "    %-22s  %-28s  %-8s  %s\n", "ID", "Title", "Level", "Category")
		fmt.Fprintln(out, strings.Repeat("─", 76))
		for _, it := range v.Items {
			mark := "   "
			if it.Solved {
				mark = theme.Pass.Render(" ✓ ")
			}
			fmt.Fprintf(out, "%s %-22s  %-28s  %s  %s\n",
				mark,
				truncate(it.ID, 22),
				truncate(it.Title, 28),
				theme.Difficulty(string(it.Difficulty)).Render(fmt.Sprintf("%-8s", it.Difficulty)),
				it.Category)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <problem-id>",
	Short: "Show a problem statement, its public tests and your history",
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

		p, err := e.Problem(args[0])
		if err != nil {
			return err
		}
		rec, _ := e.Record()
		renderProblem(cmd.OutOrStdout(), p, rec.IsSolved(p.ID), e.History(p.ID))
		return nil
	},
}

func renderStats(out io.Writer, username string, points int, v viewmodel.View) {
	fmt.Fprintf(out, "%s  %s points  %d/%d solved\n",
		theme.Title.Render(username),
		theme.Body.Bold(true).Render(fmt.Sprint(points)),
		v.Solved, v.Total)
	for _, d := range catalog.Difficulties() {
		t := v.ByDifficulty[d]
		fmt.Fprintf(out, "  %s %s %d/%d\n",
			theme.Difficulty(string(d)).Render(fmt.Sprintf("%-6s", d)),
			theme.Bar(t.Solved, t.Total, 20),
			t.Solved, t.Total)
	}
}

func renderProblem(out io.Writer, p *catalog.Problem, solved bool, history []progress.Submission) {
	title := theme.Title.Render(p.Title)
	if solved {
		title += "  " + theme.Pass.Render("✓ solved")
	}
	fmt.Fprintln(out, title)
	fmt.Fprintf(out, "%s · %s · %s\n\n",
		theme.Difficulty(string(p.Difficulty)).Render(string(p.Difficulty)),
		p.Category,
		theme.Hint.Render(p.ID))
	fmt.Fprintln(out, strings.TrimSpace(p.Description))

	for i, ex := range p.Examples {
		fmt.Fprintf(out, "\n%s\n", theme.Heading.Render(fmt.Sprintf("Example %d", i+1)))
		fmt.Fprintf(out, "Input:  %s\nOutput: %s\n", ex.Input, ex.Output)
		if ex.Explanation != "" {
			fmt.Fprintf(out, "%s\n", theme.Hint.Render(ex.Explanation))
		}
	}

	if len(p.Constraints) > 0 {
		fmt.Fprintf(out, "\n%s\n", theme.Heading.Render("Constraints"))
		for _, c := range p.Constraints {
			fmt.Fprintf(out, "  • %s\n", c)
		}
	}

	public := p.PublicTestCases()
	hidden := len(p.TestCases) - len(public)
	fmt.Fprintf(out, "\n%s\n", theme.Heading.Render("Test cases"))
	for _, tc := range public {
		fmt.Fprintf(out, "  %-22s %s → %s\n", tc.ID, tc.Input, tc.ExpectedOutput)
	}
	if hidden > 0 {
		fmt.Fprintf(out, "  %s\n", theme.Hint.Render(fmt.Sprintf("+ %d hidden", hidden)))
	}

	if strings.TrimSpace(p.StarterCode) != "" {
		fmt.Fprintf(out, "\n%s\n%s\n", theme.Heading.Render("Starter code"), theme.Code.Render(strings.TrimRight(p.StarterCode, "\n")))
	}

	if len(history) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", theme.Heading.Render("Your submissions"))
	for _, s := range history {
		fmt.Fprintf(out, "  %s  %s  %3d  %s\n",
			s.Time().Local().Format(time.DateTime),
			verdictBadge(s.Result),
			s.Result.Score,
			theme.Hint.Render(s.ID[:min(8, len(s.ID))]))
	}
}

func verdictBadge(v judge.Verdict) string {
	label := fmt.Sprintf("%-19s", v.Status)
	if v.Accepted() {
		return theme.Pass.Render(label)
	}
	return theme.Fail.Render(label)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	problemsCmd.Flags().StringP("search", "s", "", "Filter by title substring")
	problemsCmd.Flags().String("status", "all", "Filter by status: all, solved, unsolved")
	problemsCmd.Flags().StringP("difficulty", "d", "all", "Filter by difficulty: all, Easy, Medium, Hard")
}
