package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

type transactionsView struct {
	UserEmail  string
	Filters    core.TransactionFilter
	Form       transactionForm
	Editing    bool
	Error      string
	Rows       []transactionRow
	Categories []core.Category
	Total      int
	ExportURL  string
}

// handleTransactionsPage lists transactions with their filters and the
// create/edit form (GET /transactions). "?edit=<id>" toggles the form into
// edit mode pre-filled from the fetched record; the cancel link is a plain
// navigation back, which resets the form to create mode.
func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	filter := parseFilter(r)
	view, fetched, err := s.loadTransactionsView(r, st, filter)
	if err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(r.Context(), "Transactions load error", "error", err)
	}

	if editID := r.URL.Query().Get("edit"); editID != "" {
		for _, t := range fetched {
			if t.ID != editID {
				continue
			}
			view.Editing = true
			view.Form = transactionFormOf(t)
			break
		}
	}

	s.render(w, r, "transactions.html", view)
}

// handleTransactionSubmit creates a transaction, or updates one when the
// form carries an id (POST /transactions).
func (s *Server) handleTransactionSubmit(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "formato de requisição inválido", http.StatusBadRequest)
		return
	}

	form := parseTransactionForm(r)
	input, err := form.toInput()
	if err == nil {
		err = s.validate.Struct(form)
	}
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.renderTransactionsError(w, r, st, form, "Preencha data, tipo e um valor válido.")
		return
	}

	ctx := r.Context()
	if form.ID != "" {
		_, err = s.transactions.UpdateTransaction(ctx, st.Token, form.ID, input)
	} else {
		_, err = s.transactions.CreateTransaction(ctx, st.Token, input)
	}
	if err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(ctx, "Transaction save error", "error", err, "id", form.ID)
		w.WriteHeader(http.StatusInternalServerError)
		s.renderTransactionsError(w, r, st, form, "Não foi possível salvar o lançamento.")
		return
	}

	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

// handleTransactionDelete removes a record and reloads the listing; there
// is no confirmation step (POST /transactions/{id}/delete).
func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	id := r.PathValue("id")
	if err := s.transactions.DeleteTransaction(r.Context(), st.Token, id); err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(r.Context(), "Transaction delete error", "error", err, "id", id)
	}
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}

// handleTransactionExport streams the backend's CSV for the current
// filters as a download (GET /transactions/export).
func (s *Server) handleTransactionExport(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	filter := parseFilter(r)
	data, err := s.transactions.ExportTransactions(r.Context(), st.Token, filter)
	if err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(r.Context(), "Transaction export error", "error", err)
		http.Error(w, "não foi possível exportar", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transacoes.csv"`)
	_, _ = w.Write(data)
}

// loadTransactionsView fetches transactions and categories in parallel and
// assembles the page model. The raw records come back too, so edit mode can
// prefill the form without undoing display formatting.
func (s *Server) loadTransactionsView(r *http.Request, st session.State, filter core.TransactionFilter) (transactionsView, []core.Transaction, error) {
	var (
		transactions []core.Transaction
		categories   []core.Category
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		transactions, err = s.transactions.ListTransactions(ctx, st.Token, filter)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.ListCategories(ctx, st.Token)
		return err
	})
	err := g.Wait()

	view := transactionsView{
		Filters:    filter,
		Form:       transactionForm{Type: string(core.Income)},
		Rows:       toRows(transactions, categories),
		Categories: categories,
		Total:      len(transactions),
		ExportURL:  exportURL(filter),
	}
	if st.User != nil {
		view.UserEmail = st.User.Email
	}
	return view, transactions, err
}

// renderTransactionsError re-renders the page with the submitted form kept
// as the user left it.
func (s *Server) renderTransactionsError(w http.ResponseWriter, r *http.Request, st session.State, form transactionForm, msg string) {
	view, _, err := s.loadTransactionsView(r, st, core.TransactionFilter{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Transactions reload error", "error", err)
	}
	view.Form = form
	view.Editing = form.ID != ""
	view.Error = msg
	s.render(w, r, "transactions.html", view)
}

func exportURL(filter core.TransactionFilter) string {
	values := url.Values{}
	for k, v := range filter.Query() {
		values.Set(k, v)
	}
	u := "/transactions/export"
	if encoded := values.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// transactionFormOf prefills the editable form from a fetched record.
func transactionFormOf(t core.Transaction) transactionForm {
	form := transactionForm{
		ID:          t.ID,
		Date:        t.Date.String(),
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		Description: t.Description,
	}
	if t.CategoryID != nil {
		form.CategoryID = *t.CategoryID
	}
	return form
}
