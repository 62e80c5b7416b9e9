package http

import (
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

type categoryRow struct {
	ID        string
	Name      string
	Type      core.CategoryType
	TypeLabel string
}

type categoriesView struct {
	UserEmail string
	Form      categoryForm
	Editing   bool
	Error     string
	Rows      []categoryRow
	Total     int
}

// handleCategoriesPage lists categories with the create/edit form
// (GET /categories). "?edit=<id>" pre-fills the form; the cancel link
// navigates back to /categories, restoring the empty create form without
// submitting anything. Load errors are logged and the page renders with
// whatever it has.
func (s *Server) handleCategoriesPage(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	view, fetched, err := s.loadCategoriesView(r, st)
	if err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(r.Context(), "Categories load error", "error", err)
	}

	if editID := r.URL.Query().Get("edit"); editID != "" {
		for _, c := range fetched {
			if c.ID != editID {
				continue
			}
			view.Editing = true
			view.Form = categoryForm{ID: c.ID, Name: c.Name, Type: string(c.Type)}
			break
		}
	}

	s.render(w, r, "categories.html", view)
}

// handleCategorySubmit creates a category, or updates one when the form
// carries an id (POST /categories).
func (s *Server) handleCategorySubmit(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formato de requisição inválido", http.StatusBadRequest)
		return
	}

	form := parseCategoryForm(r)
	input, err := form.toInput()
	if err == nil {
		err = s.validate.Struct(form)
	}
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderCategoriesError(w, r, st, form, "Informe um nome (2 a 80 caracteres) e um tipo.")
		return
	}

	ctx := r.Context()
	if form.ID != "" {
		_, err = s.categories.UpdateCategory(ctx, st.Token, form.ID, input)
	} else {
		_, err = s.categories.CreateCategory(ctx, st.Token, input)
	}
	if err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(ctx, "Category save error", "error", err, "id", form.ID)
		w.WriteHeader(http.StatusInternalServerError)
		s.renderCategoriesError(w, r, st, form, "Não foi possível salvar a categoria.")
		return
	}

	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

// handleCategoryDelete removes a category and reloads; no confirmation
// step (POST /categories/{id}/delete).
func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	id := r.PathValue("id")
	if err := s.categories.DeleteCategory(r.Context(), st.Token, id); err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(r.Context(), "Category delete error", "error", err, "id", id)
	}
	http.Redirect(w, r, "/categories", http.StatusSeeOther)
}

func (s *Server) loadCategoriesView(r *http.Request, st session.State) (categoriesView, []core.Category, error) {
	categories, err := s.categories.ListCategories(r.Context(), st.Token)

	rows := make([]categoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, categoryRow{
			ID:        c.ID,
			Name:      c.Name,
			Type:      c.Type,
			TypeLabel: categoryTypeLabel(c.Type),
		})
	}
	view := categoriesView{
		Form:  categoryForm{Type: string(core.CategoryIncome)},
		Rows:  rows,
		Total: len(categories),
	}
	if st.User != nil {
		view.UserEmail = st.User.Email
	}
	return view, categories, err
}

func (s *Server) renderCategoriesError(w http.ResponseWriter, r *http.Request, st session.State, form categoryForm, msg string) {
	view, _, err := s.loadCategoriesView(r, st)
	if err != nil {
		slog.ErrorContext(r.Context(), "Categories reload error", "error", err)
	}
	view.Form = form
	view.Editing = form.ID != ""
	view.Error = msg
	s.render(w, r, "categories.html", view)
}
