package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"budgeteer/internal/core"
)

type budgetDetailJSON struct {
	Budget     budgetJSON     `json:"budget"`
	Categories []categoryJSON `json:"categories"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("includeArchived"))

	key := "active"
	if includeArchived {
		key = "all"
	}

	budgets, ok := s.budgetsCache.Get(key)
	if !ok {
		var err error
		budgets, err = s.store.ListBudgets(r.Context(), includeArchived)
		if err != nil {
			s.respondError(w, r, "list budgets", err)
			return
		}
		s.budgetsCache.Set(key, budgets)
	}

	items := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		items = append(items, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.svc.CreateBudget(r.Context(), req.Name, req.Description, req.Color)
	if err != nil {
		s.respondError(w, r, "create budget", err)
		return
	}

	s.invalidateBudget(b.ID)
	writeJSON(w, http.StatusCreated, toBudgetJSON(b))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")

	b, err := s.store.GetBudget(r.Context(), budgetID)
	if err != nil {
		s.respondError(w, r, "get budget", err)
		return
	}
	categories, err := s.listCategories(r, budgetID)
	if err != nil {
		s.respondError(w, r, "get budget", err)
		return
	}

	detail := budgetDetailJSON{
		Budget:     toBudgetJSON(b),
		Categories: make([]categoryJSON, 0, len(categories)),
	}
	for _, c := range categories {
		detail.Categories = append(detail.Categories, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleArchiveBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")

	if err := s.svc.ArchiveBudget(r.Context(), budgetID); err != nil {
		s.respondError(w, r, "archive budget", err)
		return
	}

	s.invalidateBudget(budgetID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")

	if err := s.svc.DeleteBudget(r.Context(), budgetID); err != nil {
		s.respondError(w, r, "delete budget", err)
		return
	}

	s.invalidateBudget(budgetID)
	w.WriteHeader(http.StatusNoContent)
}

// listCategories reads through the category cache.
func (s *Server) listCategories(r *http.Request, budgetID string) ([]core.Category, error) {
	if categories, ok := s.categoriesCache.Get(budgetID); ok {
		return categories, nil
	}
	categories, err := s.store.ListCategories(r.Context(), budgetID)
	if err != nil {
		return nil, err
	}
	s.categoriesCache.Set(budgetID, categories)
	return categories, nil
}
