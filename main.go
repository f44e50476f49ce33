package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/api"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const version = "1.0.0"

var formatNames = map[string]models.FormatID{
	"anz":              models.FormatANZ,
	"anz-business":     models.FormatANZBusiness,
	"commbank":         models.FormatCommBank,
	"commbank-credit":  models.FormatCommBankCredit,
	"nab-credit":       models.FormatNABCredit,
	"westpac-business": models.FormatWestpacBusiness,
	"westpac-credit":   models.FormatWestpacCredit,
	"bendigo":          models.FormatBendigo,
	"suncorp":          models.FormatSuncorp,
	"generic":          models.FormatGeneric,
}

func main() {
	formatFlag := flag.String("format", "", "Statement format (auto-detected if omitted)")
	outputFlag := flag.String("output", "", "Output file path (defaults to input filename with new extension)")
	xlsxFlag := flag.Bool("xlsx", false, "Write XLSX instead of CSV")
	metadataFlag := flag.Bool("metadata", true, "Include format and period metadata rows in CSV")
	serveFlag := flag.String("serve", "", "Run as HTTP service on this address (e.g. :8080) instead of converting files")
	verboseFlag := flag.Bool("verbose", false, "Enable debug logging")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Statement Extractor
by Insight Delivered (QEA AutoLens)

Converts layout-backend statement documents (JSON with per-page text,
word boxes and table grids) into reconciled transaction tables.

Usage:
  statement-extractor [flags] <document.json> [document2.json ...]
  statement-extractor -serve :8080

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Supported formats:
  %s
`, strings.Join(formatNameList(), ", "))
	}

	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}

	if *serveFlag != "" {
		app := api.NewApp()
		slog.Info("listening", "addr", *serveFlag)
		if err := app.Listen(*serveFlag); err != nil {
			fatalf("server failed: %v\n", err)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	var format models.FormatID
	if *formatFlag != "" {
		f, ok := formatNames[strings.ToLower(*formatFlag)]
		if !ok {
			fatalf("Unknown format %q. Supported: %s\n", *formatFlag, strings.Join(formatNameList(), ", "))
		}
		format = f
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(inputPath, format, *outputFlag, *xlsxFlag, *metadataFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(inputPath string, format models.FormatID, outputPath string, asXLSX, metadata bool) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding layout document: %w", err)
	}

	fmt.Printf("Processing: %s (%d page(s))\n", inputPath, len(doc.Pages))

	stmt, err := pipeline.Extract(context.Background(), &doc, format)
	if err != nil {
		return err
	}

	fmt.Printf("  Format: %s\n", stmt.Format)
	fmt.Printf("  Found %d transaction(s)\n", len(stmt.Transactions))

	flagged := 0
	for _, t := range stmt.Transactions {
		if t.Inconsistent {
			flagged++
		}
	}
	if flagged > 0 {
		fmt.Printf("  Warning: %d row(s) failed the balance check and were flagged.\n", flagged)
	}

	ext := ".csv"
	if asXLSX {
		ext = ".xlsx"
	}
	outPath := outputPath
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ext
	}

	if asXLSX {
		w := &writer.XLSXWriter{}
		if err := w.WriteToFile(outPath, stmt); err != nil {
			return fmt.Errorf("XLSX write failed: %w", err)
		}
	} else {
		w := &writer.CSVWriter{IncludeMetadata: metadata}
		if err := w.WriteToFile(outPath, stmt); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
	}

	fmt.Printf("  Output: %s\n", outPath)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func formatNameList() []string {
	names := make([]string, 0, len(formatNames))
	for name := range formatNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
