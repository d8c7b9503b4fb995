package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pavelanni/dreamroute/internal/analytics"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/store"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the response log",
		RunE:  runStats,
	}
	f := cmd.Flags()
	f.String("responses", "responses.csv", "Response log CSV path")
	f.StringSlice("node", nil, "Also show the answer distribution of these flow nodes (repeatable)")
	f.String("db", "", "SQLite database path; when set, quiz session counts are shown")
	addLogFlags(cmd)
	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	path := v.GetString("responses")

	an, err := analytics.Open()
	if err != nil {
		return fmt.Errorf("open analytics: %w", err)
	}
	defer an.Close()

	sum, err := an.Summarize(ctx, path)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", path, err)
	}
	printTitle(out, fmt.Sprintf("Responses: %d", sum.Total))
	if sum.Total > 0 {
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("From %s to %s", sum.First, sum.Last)))
	}
	printCounts(out, "Predicted field", sum.ByField)

	for _, node := range v.GetStringSlice("node") {
		counts, err := an.AnswerDistribution(ctx, path, node)
		if errors.Is(err, analytics.ErrUnknownColumn) {
			return fmt.Errorf("node %q has no column in %s", node, path)
		}
		if err != nil {
			return fmt.Errorf("answer distribution for %s: %w", node, err)
		}
		fmt.Fprintln(out)
		printTitle(out, node)
		printCounts(out, "Answer", counts)
	}

	if dbPath := v.GetString("db"); dbPath != "" {
		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		byStatus, err := db.CountQuizSessions()
		if err != nil {
			return fmt.Errorf("count quiz sessions: %w", err)
		}
		fmt.Fprintln(out)
		printTitle(out, "Quiz sessions")
		printTable(out, []string{"Status", "Count"}, [][]string{
			{string(model.QuizInProgress), strconv.Itoa(byStatus[model.QuizInProgress])},
			{string(model.QuizCompleted), strconv.Itoa(byStatus[model.QuizCompleted])},
		})
	}
	return nil
}

func printCounts(w io.Writer, label string, counts []analytics.Count) {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Value, strconv.FormatInt(c.N, 10)})
	}
	printTable(w, []string{label, "Count"}, rows)
}
