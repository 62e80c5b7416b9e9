package http

import (
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

const recentLimit = 5

type dashboardView struct {
	UserEmail    string
	StartDate    string
	EndDate      string
	TotalIncome  string
	TotalExpense string
	Balance      string
	Recent       []transactionRow
}

// handleDashboard renders the summary cards plus the latest movements
// (GET /). Summary and transactions load in parallel; a load failure is
// logged and the page renders with whatever arrived; the dashboard never
// blocks on a flaky backend.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sid string, st session.State) {
	filter := parseFilter(r)
	// The dashboard only filters by period.
	filter.Type = ""
	filter.CategoryID = ""

	var (
		summary      core.Summary
		transactions []core.Transaction
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		summary, err = s.summaries.Summary(ctx, st.Token, filter)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.transactions.ListTransactions(ctx, st.Token, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		if s.handleUnauthorized(w, r, sid, err) {
			return
		}
		slog.ErrorContext(r.Context(), "Dashboard load error", "error", err)
	}

	if len(transactions) > recentLimit {
		transactions = transactions[:recentLimit]
	}

	view := dashboardView{
		StartDate:    filter.StartDate,
		EndDate:      filter.EndDate,
		TotalIncome:  core.FormatAmount(summary.TotalIncome),
		TotalExpense: core.FormatAmount(summary.TotalExpense),
		Balance:      core.FormatAmount(summary.Balance),
		Recent:       toRows(transactions, nil),
	}
	if st.User != nil {
		view.UserEmail = st.User.Email
	}
	s.render(w, r, "dashboard.html", view)
}
