package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func flowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Inspect question flow files",
	}

	validate := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a flow file and print its shape",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFlowValidate,
	}
	addLogFlags(validate)

	paths := &cobra.Command{
		Use:   "paths",
		Short: "List every path through the flow with its predicted field",
		RunE:  runFlowPaths,
	}
	paths.Flags().String("flow", "", "Question flow YAML/JSON file (empty = built-in career flow)")
	addLogFlags(paths)

	cmd.AddCommand(validate, paths)
	return cmd
}

func runFlowValidate(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	def, err := loadFlow(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printTitle(out, "Flow OK")
	printTable(out, []string{"Property", "Value"}, [][]string{
		{"root", string(def.Table.Root())},
		{"nodes", strconv.Itoa(def.Table.Len())},
		{"max depth", strconv.Itoa(def.Table.MaxDepth())},
		{"paths", strconv.Itoa(len(def.Table.Paths()))},
		{"rules", strconv.Itoa(len(def.Classifier.Rules))},
		{"hash", def.Hash},
	})
	return nil
}

func runFlowPaths(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	def, err := loadFlow(v.GetString("flow"))
	if err != nil {
		return err
	}

	var rows [][]string
	for i, p := range def.Table.Paths() {
		parts := make([]string, len(p))
		answers := make([]string, len(p))
		for j, s := range p {
			parts[j] = fmt.Sprintf("%s=%s", s.Node, s.Answer)
			answers[j] = s.Answer
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strings.Join(parts, " → "),
			def.Classifier.Classify(answers),
		})
	}
	printTable(cmd.OutOrStdout(), []string{"#", "Answers", "Field"}, rows)
	return nil
}
