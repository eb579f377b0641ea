package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"budgeteer/internal/core"
	"budgeteer/internal/query"
)

type timelineJSON struct {
	Buckets []bucketJSON `json:"buckets"`
}

// handleListTransactions runs the filtered, partitioned view: income and
// expense day buckets plus the aggregates over the filtered set.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, categories, err := s.loadBudgetData(r, chi.URLParam(r, "budgetID"))
	if err != nil {
		s.respondError(w, r, "list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, toQueryResultJSON(query.Run(transactions, categories, f)))
}

// handleTimeline is the chronological mode: one unified bucket list, no
// income/expense partition.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, categories, err := s.loadBudgetData(r, chi.URLParam(r, "budgetID"))
	if err != nil {
		s.respondError(w, r, "timeline", err)
		return
	}

	writeJSON(w, http.StatusOK, timelineJSON{
		Buckets: toBucketsJSON(query.Timeline(transactions, categories, f)),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")

	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	date, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The category must belong to this budget; relying on the foreign key
	// alone would surface a 500 for what is a client mistake.
	categories, err := s.listCategories(r, budgetID)
	if err != nil {
		s.respondError(w, r, "create transaction", err)
		return
	}
	if !categoryInBudget(categories, req.CategoryID) {
		writeError(w, http.StatusUnprocessableEntity, "category does not belong to budget")
		return
	}

	tx := core.Transaction{
		BudgetID:    budgetID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Date:        core.Day(date),
		IsPosted:    req.IsPosted,
		IsRecurring: req.IsRecurring,
		Frequency:   core.Frequency(req.Frequency),
		DayOfMonth:  req.DayOfMonth,
	}
	created, err := s.svc.CreateTransaction(r.Context(), tx)
	if err != nil {
		s.respondError(w, r, "create transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")
	transactionID := chi.URLParam(r, "transactionID")

	// Scope the delete to the budget in the URL so a valid transaction id
	// under the wrong budget is a 404, not a cross-budget delete.
	tx, err := s.store.GetTransaction(r.Context(), transactionID)
	if err != nil || tx.BudgetID != budgetID {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	if err := s.svc.DeleteTransaction(r.Context(), transactionID); err != nil {
		s.respondError(w, r, "delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadBudgetData fetches the inputs for the query engine, confirming the
// budget exists first so an unknown id is a 404 rather than an empty view.
func (s *Server) loadBudgetData(r *http.Request, budgetID string) ([]core.Transaction, []core.Category, error) {
	if _, err := s.store.GetBudget(r.Context(), budgetID); err != nil {
		return nil, nil, err
	}
	categories, err := s.listCategories(r, budgetID)
	if err != nil {
		return nil, nil, err
	}
	transactions, err := s.store.ListTransactions(r.Context(), budgetID)
	if err != nil {
		return nil, nil, err
	}
	return transactions, categories, nil
}

func categoryInBudget(categories []core.Category, id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
