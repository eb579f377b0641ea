// Package google exports budget snapshots to a Google spreadsheet using a
// service account. Each budget occupies one summary row in the budgets sheet
// and a block of rows in the transactions sheet keyed by budget id.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"budgeteer/internal/core"
	ports "budgeteer/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	budgetsSheet      string
	transactionsSheet string
}

// Ensure interface conformance
var (
	_ ports.BudgetExporter = (*Client)(nil)
	_ ports.ExportDeleter  = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_BUDGETS_SHEET_NAME (default "Budgets"),
// GOOGLE_TRANSACTIONS_SHEET_NAME (default "Transactions").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	budgetsSheet := strings.TrimSpace(os.Getenv("GOOGLE_BUDGETS_SHEET_NAME"))
	if budgetsSheet == "" {
		budgetsSheet = "Budgets"
	}
	transactionsSheet := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if transactionsSheet == "" {
		transactionsSheet = "Transactions"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		budgetsSheet:      budgetsSheet,
		transactionsSheet: transactionsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	// Also check the standard Google Cloud environment variable
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ExportBudget writes the snapshot's summary row and transaction rows. An
// already exported budget gets its summary row updated in place; its old
// transaction rows are cleared before the new block is appended.
func (c *Client) ExportBudget(ctx context.Context, snap ports.Snapshot) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if err := snap.Budget.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	row, err := c.findBudgetRow(ctx, snap.Budget.ID)
	if err != nil {
		return "", err
	}
	if row == 0 {
		// New budget: append after the last occupied row.
		last, err := c.lastRow(ctx, c.budgetsSheet)
		if err != nil {
			return "", err
		}
		row = last + 1
	}

	rng := fmt.Sprintf("%s!A%d:H%d", c.budgetsSheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{summaryRow(snap)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update summary row in %s: %w", c.budgetsSheet, err)
	}

	if err := c.clearTransactionRows(ctx, snap.Budget.ID); err != nil {
		return "", err
	}
	if len(snap.Transactions) > 0 {
		last, err := c.lastRow(ctx, c.transactionsSheet)
		if err != nil {
			return "", err
		}
		rows := make([][]any, 0, len(snap.Transactions))
		for _, t := range snap.Transactions {
			rows = append(rows, transactionRow(snap.Budget.ID, t))
		}
		txRange := fmt.Sprintf("%s!A%d:G%d", c.transactionsSheet, last+1, last+len(rows))
		vr := &gsheet.ValueRange{Values: rows}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, txRange, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("write transaction rows in %s: %w", c.transactionsSheet, err)
		}
	}

	ref := fmt.Sprintf("%s!A%d:H%d", c.budgetsSheet, row, row)
	slog.InfoContext(ctx, "Budget exported to Google Sheets",
		"budget_id", snap.Budget.ID, "ref", ref, "transactions", len(snap.Transactions))
	return ref, nil
}

// DeleteExport clears the budget's summary row and its transaction rows.
func (c *Client) DeleteExport(ctx context.Context, budgetID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findBudgetRow(ctx, budgetID)
	if err != nil {
		return err
	}
	if row != 0 {
		rng := fmt.Sprintf("%s!A%d:H%d", c.budgetsSheet, row, row)
		_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("clear summary row in %s: %w", c.budgetsSheet, err)
		}
	}

	if err := c.clearTransactionRows(ctx, budgetID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Budget export removed from Google Sheets", "budget_id", budgetID)
	return nil
}

// findBudgetRow returns the 1-based row holding the budget id in the budgets
// sheet, or 0 when the budget was never exported.
func (c *Client) findBudgetRow(ctx context.Context, budgetID string) (int, error) {
	ids, err := c.readCol(ctx, c.budgetsSheet, "A:A")
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if id == budgetID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// clearTransactionRows clears every transactions-sheet row whose first column
// matches the budget id. Rows are cleared, not deleted, so other budgets'
// row numbers stay stable.
func (c *Client) clearTransactionRows(ctx context.Context, budgetID string) error {
	ids, err := c.readCol(ctx, c.transactionsSheet, "A:A")
	if err != nil {
		return err
	}
	for i, id := range ids {
		if id != budgetID {
			continue
		}
		rng := fmt.Sprintf("%s!A%d:G%d", c.transactionsSheet, i+1, i+1)
		_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("clear transaction row %d in %s: %w", i+1, c.transactionsSheet, err)
		}
	}
	return nil
}

// lastRow returns the index of the last occupied row in column A.
func (c *Client) lastRow(ctx context.Context, sheetName string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return len(resp.Values), nil
}

func (c *Client) readCol(ctx context.Context, sheetName, col string) ([]string, error) {
	rng := fmt.Sprintf("%s!%s", sheetName, col)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
	}
	return out, nil
}

// summaryRow lays out one budget per row:
// ID, Name, Categories, Transactions, Income, Expense, Net, ExportedAt.
func summaryRow(snap ports.Snapshot) []any {
	return []any{
		snap.Budget.ID,
		snap.Budget.Name,
		len(snap.Categories),
		len(snap.Transactions),
		centsToDecimal(snap.TotalIncome.Cents),
		centsToDecimal(snap.TotalExpense.Cents),
		centsToDecimal(snap.Net),
		snap.ExportedAt.UTC().Format(time.RFC3339),
	}
}

// transactionRow lays out one transaction per row:
// BudgetID, TransactionID, Date, Description, Amount, Posted, Recurring.
func transactionRow(budgetID string, t core.Transaction) []any {
	return []any{
		budgetID,
		t.ID,
		core.Day(t.Date).Format("2006-01-02"),
		t.Description,
		centsToDecimal(t.Amount.Cents),
		t.IsPosted,
		t.IsRecurring,
	}
}

func centsToDecimal(cents int64) float64 {
	return float64(cents) / 100.0
}
