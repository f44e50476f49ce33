// Package api exposes the extraction pipeline over HTTP. The service sits
// behind the layout backend: clients POST the per-page text, word boxes and
// table grids that backend produced, and get resolved transactions back.
package api

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const version = "1.0.0"

// ExtractRequest is the JSON body of POST /api/extract.
type ExtractRequest struct {
	// Format forces a specific statement format, skipping detection.
	Format string `json:"format,omitempty"`
	Pages  []Page `json:"pages"`
}

// Page mirrors one page of layout-backend output.
type Page struct {
	Text   string       `json:"text"`
	Words  []Word       `json:"words,omitempty"`
	Tables [][][]string `json:"tables,omitempty"`
}

// Word is one positioned token on a page.
type Word struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Transaction is the wire form of one resolved row.
type Transaction struct {
	Date         string `json:"date,omitempty"`
	Description  string `json:"description"`
	Debit        string `json:"debit,omitempty"`
	Credit       string `json:"credit,omitempty"`
	Balance      string `json:"balance,omitempty"`
	Inconsistent bool   `json:"inconsistent,omitempty"`
}

// ExtractResponse is the JSON response from POST /api/extract.
type ExtractResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Format       string        `json:"format,omitempty"`
	Period       string        `json:"period,omitempty"`
	Transactions []Transaction `json:"transactions"`
	Count        int           `json:"count"`
	Flagged      int           `json:"flagged"`
	TotalDebit   string        `json:"totalDebit"`
	TotalCredit  string        `json:"totalCredit"`
	CSV          string        `json:"csv,omitempty"`
	Version      string        `json:"version,omitempty"`
}

// NewApp builds the fiber application with all routes registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "statement-extractor",
		BodyLimit: 32 << 20,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/api/health", HandleHealth)
	app.Post("/api/extract", HandleExtract)
	return app
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleExtract runs the full pipeline over a posted layout document.
func HandleExtract(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Pages) == 0 {
		return writeError(c, fiber.StatusBadRequest, "no pages in request")
	}

	doc := toDocument(&req)

	stmt, err := pipeline.Extract(c.UserContext(), doc, models.FormatID(req.Format))
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{}
	if err := csvWriter.Write(&csvBuf, stmt); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("csv generation failed: %v", err))
	}

	txns := make([]Transaction, 0, len(stmt.Transactions))
	flagged := 0
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, t := range stmt.Transactions {
		if t.Inconsistent {
			flagged++
		}
		if t.Debit != nil {
			totalDebit = totalDebit.Add(*t.Debit)
		}
		if t.Credit != nil {
			totalCredit = totalCredit.Add(*t.Credit)
		}
		txns = append(txns, toWire(t))
	}

	resp := ExtractResponse{
		Success:      true,
		Format:       string(stmt.Format),
		Transactions: txns,
		Count:        len(txns),
		Flagged:      flagged,
		TotalDebit:   totalDebit.StringFixed(2),
		TotalCredit:  totalCredit.StringFixed(2),
		CSV:          csvBuf.String(),
		Version:      version,
	}
	if !stmt.Period.IsZero() {
		resp.Period = stmt.Period.Start.Format(models.DateLayout) + " to " +
			stmt.Period.End.Format(models.DateLayout)
	}
	return c.JSON(resp)
}

func toDocument(req *ExtractRequest) *models.Document {
	doc := &models.Document{Pages: make([]models.Page, 0, len(req.Pages))}
	for _, p := range req.Pages {
		page := models.Page{Text: p.Text, Tables: p.Tables}
		for _, w := range p.Words {
			if strings.TrimSpace(w.Text) == "" {
				continue
			}
			page.Words = append(page.Words, models.WordToken{
				Text:   w.Text,
				Left:   w.Left,
				Right:  w.Right,
				Top:    w.Top,
				Bottom: w.Bottom,
			})
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func toWire(t models.Transaction) Transaction {
	wire := Transaction{
		Date:         t.DateString(),
		Description:  t.Description,
		Inconsistent: t.Inconsistent,
	}
	if t.Debit != nil {
		wire.Debit = t.Debit.StringFixed(2)
	}
	if t.Credit != nil {
		wire.Credit = t.Credit.StringFixed(2)
	}
	if t.Balance != nil {
		wire.Balance = t.Balance.StringFixed(2)
	}
	return wire
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ExtractResponse{
		Success: false,
		Error:   msg,
	})
}
