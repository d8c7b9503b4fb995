package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pavelanni/dreamroute/internal/responselog"
	"github.com/pavelanni/dreamroute/internal/tui"
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take the career quiz in the terminal",
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.String("flow", "", "Question flow YAML/JSON file (empty = built-in career flow)")
	f.String("responses", "responses.csv", "CSV file the finished quiz is appended to")
	f.Bool("no-save", false, "Do not record the result")
	f.Bool("no-color", false, "Disable colors")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func runPlay(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	def, err := loadFlow(v.GetString("flow"))
	if err != nil {
		return err
	}

	var save tui.SaveFunc
	if !v.GetBool("no-save") {
		log, err := responselog.Open(v.GetString("responses"))
		if err != nil {
			return fmt.Errorf("open response log: %w", err)
		}
		save = log.Append
	}

	_, noColorEnv := os.LookupEnv("NO_COLOR")
	m := tui.New(def, save, tui.Options{NoColor: v.GetBool("no-color") || noColorEnv})
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("run quiz: %w", err)
	}
	result, ok := final.(tui.Model)
	if !ok {
		return nil
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	if result.Completed() {
		slog.Info("quiz completed", "field", result.Field(), "answers", len(result.State().Steps))
	}
	return nil
}
