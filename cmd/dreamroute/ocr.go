package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/dreamroute/internal/llm"
	"github.com/pavelanni/dreamroute/internal/llm/prompts"
	"github.com/pavelanni/dreamroute/internal/marks"
	"github.com/pavelanni/dreamroute/internal/ocr"
	"github.com/pavelanni/dreamroute/internal/ocr/tesseract"
	"github.com/pavelanni/dreamroute/internal/ocr/vision"
)

func ocrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr <image>",
		Short: "Extract subject marks from a scanned marksheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runOCR,
	}
	f := cmd.Flags()
	f.String("engine", "tesseract", "OCR engine (tesseract, vision)")
	f.StringSlice("lang", []string{"eng"}, "Recognition languages (repeatable)")
	f.Int("threshold", ocr.DefaultThreshold, "Binarization threshold (0-255)")
	f.Bool("invert", false, "Invert black and white after thresholding")
	f.Float64("scale", 1, "Upscale factor applied before thresholding")
	f.Bool("no-preprocess", false, "Send the image to the engine unchanged")
	f.String("granularity", string(ocr.GranularityWord), "Token granularity (word, line)")
	f.String("psm", "", "Tesseract page segmentation mode")
	f.String("parser", string(marks.ParserStride), "Marks parser (stride, following)")
	f.Int("default-max", marks.DefaultMax, "Maximum score assumed by the following parser")
	f.StringP("output", "o", "marks_output.csv", "Output path (.csv or .json, - for a terminal table)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL (vision engine)")
	f.String("llm-key", "ollama", "API key for the vision model")
	f.String("llm-model", "llama3.2-vision", "Vision model name")
	f.String("llm-variant", string(prompts.VariantCells), "Transcription prompt variant (cells, words)")
	f.String("hint", "", "Extra instruction passed to the vision model")
	addLogFlags(cmd)
	return cmd
}

func runOCR(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	parser, err := marks.ParseParser(v.GetString("parser"))
	if err != nil {
		return err
	}

	opts := ocr.DefaultOptions()
	opts.Parser = parser
	opts.DefaultMax = v.GetInt("default-max")
	opts.Languages = v.GetStringSlice("lang")
	opts.Preprocess, err = preprocessOptions(v)
	if err != nil {
		return err
	}
	switch g := ocr.Granularity(strings.ToLower(v.GetString("granularity"))); g {
	case ocr.GranularityWord, ocr.GranularityLine:
		opts.Granularity = g
	default:
		return fmt.Errorf("unknown granularity %q (want word or line)", g)
	}

	engine, err := newEngine(ctx, v.GetString("engine"), engineConfig{
		llmURL:     v.GetString("llm-url"),
		llmKey:     v.GetString("llm-key"),
		llmModel:   v.GetString("llm-model"),
		llmVariant: v.GetString("llm-variant"),
	})
	if err != nil {
		return err
	}

	// Metadata is engine specific: Tesseract treats every key as a variable.
	opts.Metadata = map[string]string{}
	switch engine.Name() {
	case "tesseract":
		if psm := v.GetString("psm"); psm != "" {
			opts.Metadata["tessedit_pageseg_mode"] = psm
		}
	case "vision":
		if hint := v.GetString("hint"); hint != "" {
			opts.Metadata["hint"] = hint
		}
	}

	report, err := ocr.ExtractMarksFile(ctx, engine, args[0], opts)
	if err != nil {
		return err
	}
	if len(report.Records) == 0 {
		slog.Warn("no marks found", "source", report.Source, "tokens", len(report.Tokens))
	}

	out := v.GetString("output")
	switch {
	case out == "-":
		printMarks(cmd.OutOrStdout(), report)
		return nil
	case strings.EqualFold(filepath.Ext(out), ".json"):
		return writeFile(out, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		})
	default:
		if err := writeFile(out, func(w io.Writer) error { return marks.WriteCSV(w, report.Records) }); err != nil {
			return err
		}
		slog.Info("marks written", "path", out, "records", len(report.Records), "engine", report.Engine)
		return nil
	}
}

// preprocessOptions reads the image preprocessing settings. Values from a
// config file or the environment bypass flag parsing, so the threshold is
// range checked here.
func preprocessOptions(v *viper.Viper) (ocr.PreprocessOptions, error) {
	threshold := v.GetInt("threshold")
	if threshold < 0 || threshold > math.MaxUint8 {
		return ocr.PreprocessOptions{}, fmt.Errorf("threshold %d out of range (0-255)", threshold)
	}
	return ocr.PreprocessOptions{
		Threshold: uint8(threshold),
		Invert:    v.GetBool("invert"),
		Scale:     v.GetFloat64("scale"),
		Skip:      v.GetBool("no-preprocess"),
	}, nil
}

type engineConfig struct {
	llmURL, llmKey, llmModel, llmVariant string
}

func newEngine(ctx context.Context, name string, cfg engineConfig) (ocr.Engine, error) {
	switch strings.ToLower(name) {
	case "", "tesseract":
		return tesseract.New(), nil
	case "vision":
		client, err := llm.New(cfg.llmURL, cfg.llmKey, cfg.llmModel, cfg.llmVariant)
		if err != nil {
			return nil, fmt.Errorf("create LLM client: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			return nil, fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", cfg.llmURL, "model", client.Model())
		return vision.New(client), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q (want tesseract or vision)", name)
	}
}

func printMarks(w io.Writer, report ocr.Report) {
	printTitle(w, fmt.Sprintf("%s (%s)", report.Source, report.Engine))
	rows := make([][]string, 0, len(report.Records))
	for _, r := range report.Records {
		rows = append(rows, []string{r.Subject, strconv.Itoa(r.Obtained), strconv.Itoa(r.Max)})
	}
	printTable(w, []string{"Subject", "Obtained", "Maximum"}, rows)
	maxTotal, obtained := marks.Totals(report.Records)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Total: %d / %d", obtained, maxTotal)))
}

// writeFile writes to path, or to stdout when path is "-" or empty.
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "" || path == "-" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	return f.Close()
}
