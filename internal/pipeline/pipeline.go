// Package pipeline wires detection, parsing and reconciliation into the one
// call the CLI and the HTTP handler both sit on.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/layout"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/parser"
	"github.com/insightdelivered/statement-extractor/internal/reconcile"
)

// Extract runs the full pipeline over a layout-backend document: classify
// the format, parse raw records, then resolve amounts against running
// balances. Format may be forced by passing a non-empty hint, which skips
// detection entirely.
func Extract(ctx context.Context, doc *models.Document, hint models.FormatID) (*models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil || len(doc.Pages) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	format := hint
	if format == "" {
		format = parser.Detect(detectionTexts(doc))
		slog.Info("format detected", "format", format, "pages", len(doc.Pages))
	} else {
		slog.Info("format forced", "format", format)
	}
	if format == models.FormatUnknown {
		return nil, fmt.Errorf("unrecognized statement format")
	}

	p, err := parser.New(format)
	if err != nil {
		return nil, err
	}

	result, err := p.Parse(doc)
	if err != nil {
		// A specific parser that misfires on a tabular document still has the
		// generic strategy behind it.
		if format != models.FormatGeneric {
			slog.Warn("parser failed, falling back to generic", "format", format, "error", err)
			if generic, gerr := (&parser.GenericParser{}).Parse(doc); gerr == nil {
				result, err = generic, nil
				format = models.FormatGeneric
			}
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s statement: %w", p.FormatName(), err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Info("parse complete", "format", format, "records", len(result.Records))

	transactions := reconcile.Resolve(result.Records, result.Period)

	inconsistent := 0
	for _, t := range transactions {
		if t.Inconsistent {
			inconsistent++
		}
	}
	if inconsistent > 0 {
		slog.Warn("balance check flagged rows", "format", format, "flagged", inconsistent)
	}

	return &models.Statement{
		Format:       format,
		Period:       result.Period,
		Transactions: transactions,
	}, nil
}

// detectionTexts returns per-page text for format classification. A page the
// backend delivered geometry-only is reassembled from its word tokens so
// detection sees the same lines the generic parser would.
func detectionTexts(doc *models.Document) []string {
	texts := make([]string, len(doc.Pages))
	for i, p := range doc.Pages {
		if p.Text != "" {
			texts[i] = p.Text
			continue
		}
		var b strings.Builder
		for _, line := range layout.Lines(p.Words) {
			b.WriteString(line.Text())
			b.WriteByte('\n')
		}
		texts[i] = b.String()
	}
	return texts
}
