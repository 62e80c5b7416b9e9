package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

type (
	// TransactionType classifies a movement as money in or money out.
	TransactionType string

	// CategoryType restricts which transaction types a category applies to.
	CategoryType string

	// Date is a calendar date without a time-of-day component. It travels
	// on the wire as "YYYY-MM-DD".
	Date struct {
		time.Time
	}

	// User is the profile resolved from a bearer token.
	User struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		IsActive bool   `json:"is_active"`
	}

	// Transaction is a single income or expense record owned by the backend.
	// The client only ever holds ephemeral copies fetched per view.
	Transaction struct {
		ID          string          `json:"id"`
		CategoryID  *string         `json:"category_id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
	}

	// TransactionInput is the payload for creating or updating a transaction.
	TransactionInput struct {
		CategoryID  *string         `json:"category_id"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
	}

	// TransactionFilter narrows a transaction listing. Filtering is additive:
	// zero-valued fields are not sent to the backend at all.
	TransactionFilter struct {
		StartDate  string
		EndDate    string
		Type       string
		CategoryID string
	}

	Category struct {
		ID   string       `json:"id"`
		Name string       `json:"name"`
		Type CategoryType `json:"type"`
	}

	CategoryInput struct {
		Name string       `json:"name"`
		Type CategoryType `json:"type"`
	}

	// Summary holds the server-computed aggregate over an optional date range.
	Summary struct {
		TotalIncome  decimal.Decimal `json:"total_income"`
		TotalExpense decimal.Decimal `json:"total_expense"`
		Balance      decimal.Decimal `json:"balance"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooShort    = errors.New("name too short (min 2 characters)")
	ErrNameTooLong     = errors.New("name too long (max 80 characters)")
	ErrDescriptionLong = errors.New("description too long (max 255 characters)")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON renders the date as a quoted "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD"; null leaves the date zero.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense || t == CategoryBoth
}

func (in TransactionInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if len(in.Description) > 255 {
		return ErrDescriptionLong
	}
	return nil
}

func (in CategoryInput) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) < 2 {
		return ErrNameTooShort
	}
	if len(name) > 80 {
		return ErrNameTooLong
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Query converts the filter to backend query parameters, omitting empty
// fields so filtering stays purely additive.
func (f TransactionFilter) Query() map[string]string {
	q := make(map[string]string, 4)
	if f.StartDate != "" {
		q["start_date"] = f.StartDate
	}
	if f.EndDate != "" {
		q["end_date"] = f.EndDate
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.CategoryID != "" {
		q["category_id"] = f.CategoryID
	}
	return q
}
