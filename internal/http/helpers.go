package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/api"
	"fintrack/internal/core"
)

// render executes a named page template, logging failures the same way for
// every page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleUnauthorized clears the session and redirects to login when an
// authenticated call came back with 401. Reports whether it handled err.
func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request, sid string, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	slog.InfoContext(r.Context(), "Token rejected by backend, clearing session")
	s.sessions.Clear(r.Context(), sid)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

// transactionRow is a display-ready transaction.
type transactionRow struct {
	ID          string
	Date        string
	Type        core.TransactionType
	TypeLabel   string
	Description string
	Amount      string
	Category    string
}

func typeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Entrada"
	}
	return "Saída"
}

func categoryTypeLabel(t core.CategoryType) string {
	switch t {
	case core.CategoryIncome:
		return "Entrada"
	case core.CategoryExpense:
		return "Saída"
	default:
		return "Ambos"
	}
}

// toRows formats transactions for display, resolving category names.
func toRows(ts []core.Transaction, categories []core.Category) []transactionRow {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	rows := make([]transactionRow, 0, len(ts))
	for _, t := range ts {
		category := "Sem categoria"
		if t.CategoryID != nil {
			if name, ok := names[*t.CategoryID]; ok {
				category = name
			}
		}
		description := t.Description
		if description == "" {
			description = "Sem descrição"
		}
		rows = append(rows, transactionRow{
			ID:          t.ID,
			Date:        core.FormatDate(t.Date.String()),
			Type:        t.Type,
			TypeLabel:   typeLabel(t.Type),
			Description: description,
			Amount:      core.FormatAmount(t.Amount),
			Category:    category,
		})
	}
	return rows
}
