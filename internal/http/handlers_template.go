package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"budgeteer/internal/core"
	"budgeteer/internal/template"
)

type (
	templateListItemJSON struct {
		ID                     string `json:"id"`
		Name                   string `json:"name"`
		Description            string `json:"description"`
		Icon                   string `json:"icon,omitempty"`
		Color                  string `json:"color,omitempty"`
		CategoryCount          int    `json:"categoryCount"`
		SampleTransactionCount int    `json:"sampleTransactionCount"`
	}

	templateCategoryJSON struct {
		Name         string `json:"name"`
		Type         string `json:"type"`
		PlannedCents int64  `json:"plannedCents"`
		Color        string `json:"color,omitempty"`
	}

	templateTransactionJSON struct {
		CategoryName      string `json:"categoryName"`
		Description       string `json:"description"`
		AmountCents       int64  `json:"amountCents"`
		RelativeDayOffset int    `json:"relativeDayOffset"`
		IsPosted          bool   `json:"isPosted"`
	}

	templateDetailJSON struct {
		ID           string                    `json:"id"`
		Name         string                    `json:"name"`
		Description  string                    `json:"description"`
		Icon         string                    `json:"icon,omitempty"`
		Color        string                    `json:"color,omitempty"`
		Categories   []templateCategoryJSON    `json:"categories"`
		Transactions []templateTransactionJSON `json:"transactions"`
	}

	materializeResponseJSON struct {
		Budget           budgetJSON `json:"budget"`
		CategoryCount    int        `json:"categoryCount"`
		TransactionCount int        `json:"transactionCount"`
	}
)

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	catalog := template.Catalog()
	items := make([]templateListItemJSON, 0, len(catalog))
	for _, tpl := range catalog {
		items = append(items, templateListItemJSON{
			ID:                     tpl.ID,
			Name:                   tpl.Name,
			Description:            tpl.Description,
			Icon:                   tpl.Icon,
			Color:                  tpl.Color,
			CategoryCount:          len(tpl.Categories),
			SampleTransactionCount: len(tpl.Transactions),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := template.ByID(chi.URLParam(r, "templateID"))
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	detail := templateDetailJSON{
		ID:          tpl.ID,
		Name:        tpl.Name,
		Description: tpl.Description,
		Icon:        tpl.Icon,
		Color:       tpl.Color,
	}
	for _, c := range tpl.Categories {
		detail.Categories = append(detail.Categories, templateCategoryJSON{
			Name:         c.Name,
			Type:         string(c.Type),
			PlannedCents: c.Planned.Cents,
			Color:        c.Color,
		})
	}
	for _, t := range tpl.Transactions {
		detail.Transactions = append(detail.Transactions, templateTransactionJSON{
			CategoryName:      t.CategoryName,
			Description:       t.Description,
			AmountCents:       t.AmountCents,
			RelativeDayOffset: t.RelativeDayOffset,
			IsPosted:          t.IsPosted,
		})
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleTemplateSummary(w http.ResponseWriter, r *http.Request) {
	tpl, ok := template.ByID(chi.URLParam(r, "templateID"))
	if !ok {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(template.Summarize(tpl)))
}

func (s *Server) handleMaterializeTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")

	var req materializeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	anchor := core.Day(time.Now())
	if req.AnchorDate != "" {
		var err error
		if anchor, err = parseDay(req.AnchorDate); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	meta := template.BudgetMeta{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	mb, err := s.svc.MaterializeTemplate(r.Context(), templateID, meta, anchor)
	if err != nil {
		s.respondError(w, r, "materialize", err)
		return
	}

	s.invalidateBudget(mb.Budget.ID)
	s.structured.LogBudgetMaterialized(r.Context(), templateID, mb.Budget.ID,
		len(mb.Categories), len(mb.Transactions))

	writeJSON(w, http.StatusCreated, materializeResponseJSON{
		Budget:           toBudgetJSON(mb.Budget),
		CategoryCount:    len(mb.Categories),
		TransactionCount: len(mb.Transactions),
	})
}
