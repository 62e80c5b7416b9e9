// Form parsing and required-field validation for the CRUD pages. Only
// presence and basic shape are checked here; everything deeper is the
// backend's business.
package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type transactionForm struct {
	ID          string
	Date        string `validate:"required"`
	Type        string `validate:"required,oneof=income expense"`
	Amount      string `validate:"required"`
	Description string `validate:"omitempty,max=255"`
	CategoryID  string
}

type categoryForm struct {
	ID   string
	Name string `validate:"required,min=2,max=80"`
	Type string `validate:"required,oneof=income expense both"`
}

func parseLoginForm(r *http.Request) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
}

func parseTransactionForm(r *http.Request) transactionForm {
	return transactionForm{
		ID:          strings.TrimSpace(r.FormValue("id")),
		Date:        strings.TrimSpace(r.FormValue("date")),
		Type:        strings.TrimSpace(r.FormValue("type")),
		Amount:      strings.TrimSpace(r.FormValue("amount")),
		Description: strings.TrimSpace(r.FormValue("description")),
		CategoryID:  strings.TrimSpace(r.FormValue("category_id")),
	}
}

func parseCategoryForm(r *http.Request) categoryForm {
	return categoryForm{
		ID:   strings.TrimSpace(r.FormValue("id")),
		Name: strings.TrimSpace(r.FormValue("name")),
		Type: strings.TrimSpace(r.FormValue("type")),
	}
}

// toInput converts the raw form to the API payload. An empty category means
// "no category" and travels as null.
func (f transactionForm) toInput() (core.TransactionInput, error) {
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.TransactionInput{}, err
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.TransactionInput{}, err
	}
	in := core.TransactionInput{
		Type:        core.TransactionType(f.Type),
		Amount:      amount,
		Description: f.Description,
		Date:        date,
	}
	if f.CategoryID != "" {
		categoryID := f.CategoryID
		in.CategoryID = &categoryID
	}
	return in, in.Validate()
}

func (f categoryForm) toInput() (core.CategoryInput, error) {
	in := core.CategoryInput{
		Name: f.Name,
		Type: core.CategoryType(f.Type),
	}
	return in, in.Validate()
}

// parseFilter builds the additive transaction filter from query or form
// values; omitted fields stay empty and are never sent to the backend.
func parseFilter(r *http.Request) core.TransactionFilter {
	q := r.URL.Query()
	return core.TransactionFilter{
		StartDate:  strings.TrimSpace(q.Get("start_date")),
		EndDate:    strings.TrimSpace(q.Get("end_date")),
		Type:       strings.TrimSpace(q.Get("type")),
		CategoryID: strings.TrimSpace(q.Get("category_id")),
	}
}
