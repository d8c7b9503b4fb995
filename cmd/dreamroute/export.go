package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/dreamroute/internal/responselog"
	"github.com/pavelanni/dreamroute/internal/store"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completed quiz responses as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("responses", "responses.csv", "Response log CSV path")
	f.String("db", "", "SQLite database path; when set, the recorded flow hash is included")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	log, err := responselog.Open(v.GetString("responses"))
	if err != nil {
		return fmt.Errorf("open response log: %w", err)
	}
	tbl, err := log.ReadAll()
	if err != nil {
		return fmt.Errorf("read response log: %w", err)
	}

	var flowHash string
	if dbPath := v.GetString("db"); dbPath != "" {
		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if flowHash, err = db.GetMetadata(store.MetaFlowHash); err != nil {
			return fmt.Errorf("read flow hash: %w", err)
		}
	}

	export := tbl.Export(log.Path(), flowHash, time.Now().UTC())

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	return writeFile(v.GetString("output"), func(w io.Writer) error {
		if _, err := w.Write(data); err != nil {
			return err
		}
		// Ensure trailing newline.
		_, err := fmt.Fprintln(w)
		return err
	})
}
