package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"salesboard/internal/core"
	"salesboard/internal/seed"
)

// Columns read from the catalog sheet.
const readRange = "A:H"

var _ seed.Source = (*Client)(nil)

// Config selects the spreadsheet and the service account used to read it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Client reads the transaction catalog from a Google Sheet whose first row
// holds the column names of the JSON feed.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New creates a read-only Sheets client authenticated as a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsReadonlyScope)}
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		opts = append(opts, goption.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		slog.InfoContext(ctx, "Using service account credentials file", "path", cfg.ServiceAccountFile)
		opts = append(opts, goption.WithCredentialsFile(cfg.ServiceAccountFile))
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (c *Client) Name() string {
	return "sheets:" + c.spreadsheetID + "/" + c.sheetName
}

// Fetch implements seed.Source.
func (c *Client) Fetch(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, fmt.Errorf("%w: sheets service not initialized", core.ErrUpstreamSeed)
	}

	start := time.Now()
	rng := fmt.Sprintf("%s!%s", c.sheetName, readRange)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrUpstreamSeed, rng, err)
	}

	txs, err := parseRows(resp.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrUpstreamSeed, err)
	}

	slog.InfoContext(ctx, "Fetched catalog sheet",
		"sheet", c.sheetName,
		"rows", len(resp.Values),
		"records", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
	return txs, nil
}
