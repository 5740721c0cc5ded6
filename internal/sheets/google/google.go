// Package google exports the transaction ledger to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
	ports "budgetwise/internal/sheets"
)

const (
	// idColumn holds the transaction ID; it is the last ledger column.
	idColumn           = "G"
	defaultSheetName   = "Ledger"
	defaultRowCacheTTL = 5 * time.Minute
)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	// Row cache: the next free row and the IDs already exported. Refreshed
	// from the ID column when it expires or after a failed write.
	mu                 sync.Mutex
	nextRow            int
	knownRows          map[string]int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// Ensure interface conformance
var _ ports.LedgerWriter = (*Client)(nil)

// New creates a ledger client authenticated with service account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Discard()
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *log.Logger) *Client {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = defaultSheetName
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      strings.TrimSpace(spreadsheetID),
		sheetName:          strings.TrimSpace(sheetName),
		logger:             logger.WithComponent(log.ComponentSheets),
		cacheValidDuration: defaultRowCacheTTL,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over a credentials file.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendTransaction writes t to the next free row. A transaction whose ID is
// already in the sheet is not written twice.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID <= 0 {
		return "", fmt.Errorf("%w: transaction without id", core.ErrInvalidInput)
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refreshRowCacheLocked(ctx); err != nil {
		return "", err
	}

	id := ports.RowID(t.ID)
	if row, ok := c.knownRows[id]; ok {
		c.logger.DebugContext(ctx, "Transaction already exported",
			log.FieldTransactionID, t.ID, "row", row)
		return c.rowRef(row), nil
	}

	row := c.nextRow
	if err := c.writeRowLocked(ctx, row, ports.Row(t)); err != nil {
		c.cacheExpiresAt = time.Time{}
		return "", err
	}
	c.knownRows[id] = row
	c.nextRow++

	ref := c.rowRef(row)
	c.logger.InfoContext(ctx, "Transaction exported",
		log.FieldOperation, log.OpExport,
		log.FieldTransactionID, t.ID,
		log.FieldUserID, t.UserID,
		"row_ref", ref)
	return ref, nil
}

// InvalidateRowCache forces the next append to re-read the ID column.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheExpiresAt = time.Time{}
}

// refreshRowCacheLocked re-reads the ID column when the cache expired. An
// empty sheet gets the header row first. Callers hold mu.
func (c *Client) refreshRowCacheLocked(ctx context.Context) error {
	if time.Now().Before(c.cacheExpiresAt) {
		return nil
	}

	rng := fmt.Sprintf("%s!%s:%s", c.sheetName, idColumn, idColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	known := make(map[string]int, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" {
			continue
		}
		known[v] = i + 1
	}

	next := len(resp.Values) + 1
	if len(resp.Values) == 0 {
		if err := c.writeRowLocked(ctx, 1, ports.Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		next = 2
	}

	c.knownRows = known
	c.nextRow = next
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	return nil
}

func (c *Client) writeRowLocked(ctx context.Context, row int, values []any) error {
	rng := c.rowRef(row)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) rowRef(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, idColumn, row)
}
