package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"budgeteer/internal/core"
	applog "budgeteer/internal/log"
	"budgeteer/internal/query"
	"budgeteer/internal/services"
	"budgeteer/internal/storage"
	"budgeteer/internal/template"
)

// Wire representations. Amounts travel as integer cents so clients never
// see floating point; dates are calendar days in 2006-01-02 form.
type (
	budgetJSON struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Color       string `json:"color,omitempty"`
		IsArchived  bool   `json:"isArchived"`
		CreatedAt   string `json:"createdAt"`
	}

	categoryJSON struct {
		ID           string `json:"id"`
		BudgetID     string `json:"budgetId"`
		Name         string `json:"name"`
		Type         string `json:"type"`
		PlannedCents int64  `json:"plannedCents"`
		Color        string `json:"color,omitempty"`
		IsActive     bool   `json:"isActive"`
	}

	transactionJSON struct {
		ID          string `json:"id"`
		BudgetID    string `json:"budgetId"`
		CategoryID  string `json:"categoryId"`
		Description string `json:"description"`
		AmountCents int64  `json:"amountCents"`
		Date        string `json:"date"`
		IsPosted    bool   `json:"isPosted"`
		IsRecurring bool   `json:"isRecurring"`
		Frequency   string `json:"frequency,omitempty"`
		DayOfMonth  int    `json:"dayOfMonth,omitempty"`
	}

	bucketJSON struct {
		Date         string            `json:"date"`
		Transactions []transactionJSON `json:"transactions"`
	}

	queryResultJSON struct {
		Income            []bucketJSON `json:"income"`
		Expense           []bucketJSON `json:"expense"`
		TotalIncomeCents  int64        `json:"totalIncomeCents"`
		TotalExpenseCents int64        `json:"totalExpenseCents"`
		NetCents          int64        `json:"netCents"`
	}

	summaryJSON struct {
		IncomeCategoryCount    int   `json:"incomeCategoryCount"`
		ExpenseCategoryCount   int   `json:"expenseCategoryCount"`
		PlannedIncomeCents     int64 `json:"plannedIncomeCents"`
		PlannedExpenseCents    int64 `json:"plannedExpenseCents"`
		NetPlannedCents        int64 `json:"netPlannedCents"`
		SampleTransactionCount int   `json:"sampleTransactionCount"`
	}

	errorJSON struct {
		Error string `json:"error"`
	}
)

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Color:       b.Color,
		IsArchived:  b.IsArchived,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:           c.ID,
		BudgetID:     c.BudgetID,
		Name:         c.Name,
		Type:         string(c.Type),
		PlannedCents: c.Planned.Cents,
		Color:        c.Color,
		IsActive:     c.IsActive,
	}
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		BudgetID:    t.BudgetID,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.Format(dayFormat),
		IsPosted:    t.IsPosted,
		IsRecurring: t.IsRecurring,
		Frequency:   string(t.Frequency),
		DayOfMonth:  t.DayOfMonth,
	}
}

func toBucketsJSON(buckets []query.Bucket) []bucketJSON {
	out := make([]bucketJSON, 0, len(buckets))
	for _, b := range buckets {
		txs := make([]transactionJSON, 0, len(b.Transactions))
		for _, t := range b.Transactions {
			txs = append(txs, toTransactionJSON(t))
		}
		out = append(out, bucketJSON{Date: b.Date.Format(dayFormat), Transactions: txs})
	}
	return out
}

func toQueryResultJSON(res query.Result) queryResultJSON {
	return queryResultJSON{
		Income:            toBucketsJSON(res.Income),
		Expense:           toBucketsJSON(res.Expense),
		TotalIncomeCents:  res.TotalIncome.Cents,
		TotalExpenseCents: res.TotalExpense.Cents,
		NetCents:          res.Net,
	}
}

func toSummaryJSON(s template.Summary) summaryJSON {
	return summaryJSON{
		IncomeCategoryCount:    s.IncomeCategoryCount,
		ExpenseCategoryCount:   s.ExpenseCategoryCount,
		PlannedIncomeCents:     s.TotalPlannedIncome.Cents,
		PlannedExpenseCents:    s.TotalPlannedExpense.Cents,
		NetPlannedCents:        s.NetPlanned,
		SampleTransactionCount: s.SampleTransactionCount,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

// validationErrs are domain rejections the client can correct, reported
// as 422 rather than 500.
var validationErrs = []error{
	core.ErrInvalidAmount,
	core.ErrNegativeAmount,
	core.ErrEmptyName,
	core.ErrEmptyDescription,
	core.ErrEmptyBudgetID,
	core.ErrEmptyCategoryID,
	core.ErrInvalidType,
	core.ErrInvalidFrequency,
	core.ErrZeroDate,
	core.ErrInvalidDayOfMonth,
}

// respondError maps a service or storage error to a status code and logs
// the ones that indicate a real fault.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, services.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.structured.LogError(r.Context(), "request failed", err, applog.ComponentHTTP, op, applog.NewFields())
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
