// Package memory implements the api ports with an in-process store. It
// backs the test suite and the DATA_BACKEND=memory demo mode, where the
// client runs without a real REST backend.
package memory

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/api"
	"fintrack/internal/core"
)

type account struct {
	user     core.User
	password string
}

type Store struct {
	mu           sync.Mutex
	accounts     map[string]*account // keyed by email
	tokens       map[string]string   // token -> user id
	transactions map[string][]core.Transaction
	categories   map[string][]core.Category
}

// Ensure interface conformance
var (
	_ api.Authenticator    = (*Store)(nil)
	_ api.SummaryReader    = (*Store)(nil)
	_ api.TransactionStore = (*Store)(nil)
	_ api.CategoryStore    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		accounts:     make(map[string]*account),
		tokens:       make(map[string]string),
		transactions: make(map[string][]core.Transaction),
		categories:   make(map[string][]core.Category),
	}
}

// NewSeeded creates a store with a demo account and a starter category set.
func NewSeeded(email, password string) *Store {
	s := New()
	_ = s.Register(context.Background(), email, password)
	s.mu.Lock()
	id := s.accounts[email].user.ID
	for _, c := range []struct {
		name string
		typ  core.CategoryType
	}{
		{"Salário", core.CategoryIncome},
		{"Vendas", core.CategoryIncome},
		{"Aluguel", core.CategoryExpense},
		{"Fornecedores", core.CategoryExpense},
		{"Serviços", core.CategoryBoth},
	} {
		s.categories[id] = append(s.categories[id], core.Category{
			ID:   uuid.NewString(),
			Name: c.name,
			Type: c.typ,
		})
	}
	s.mu.Unlock()
	return s
}

func (s *Store) Register(_ context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return fmt.Errorf("register: invalid credentials")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return fmt.Errorf("register: account already exists")
	}
	s.accounts[email] = &account{
		user:     core.User{ID: uuid.NewString(), Email: email, IsActive: true},
		password: password,
	}
	return nil
}

func (s *Store) Login(_ context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok || acc.password != password {
		return "", fmt.Errorf("login: %w", api.ErrUnauthorized)
	}
	token := uuid.NewString()
	s.tokens[token] = acc.user.ID
	return token, nil
}

func (s *Store) Me(_ context.Context, token string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return core.User{}, fmt.Errorf("me: %w", api.ErrUnauthorized)
	}
	for _, acc := range s.accounts {
		if acc.user.ID == userID {
			return acc.user, nil
		}
	}
	return core.User{}, fmt.Errorf("me: %w", api.ErrUnauthorized)
}

// RevokeToken invalidates an issued token, simulating expiry.
func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *Store) Summary(ctx context.Context, token string, f core.TransactionFilter) (core.Summary, error) {
	ts, err := s.ListTransactions(ctx, token, f)
	if err != nil {
		return core.Summary{}, err
	}
	var sum core.Summary
	for _, t := range ts {
		switch t.Type {
		case core.Income:
			sum.TotalIncome = sum.TotalIncome.Add(t.Amount)
		case core.Expense:
			sum.TotalExpense = sum.TotalExpense.Add(t.Amount)
		}
	}
	sum.Balance = sum.TotalIncome.Sub(sum.TotalExpense)
	return sum, nil
}

func (s *Store) ListTransactions(_ context.Context, token string, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("list transactions: %w", api.ErrUnauthorized)
	}
	var out []core.Transaction
	for _, t := range s.transactions[userID] {
		if !matches(t, f) {
			continue
		}
		out = append(out, t)
	}
	// Newest first, mirroring the backend's ordering.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, token string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", api.ErrUnauthorized)
	}
	t := core.Transaction{
		ID:          uuid.NewString(),
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
	}
	s.transactions[userID] = append(s.transactions[userID], t)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, token string, id string, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", api.ErrUnauthorized)
	}
	for i, t := range s.transactions[userID] {
		if t.ID == id {
			t.CategoryID = in.CategoryID
			t.Type = in.Type
			t.Amount = in.Amount
			t.Description = in.Description
			t.Date = in.Date
			s.transactions[userID][i] = t
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, api.ErrNotFound)
}

func (s *Store) DeleteTransaction(_ context.Context, token string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return fmt.Errorf("delete transaction: %w", api.ErrUnauthorized)
	}
	items := s.transactions[userID]
	for i, t := range items {
		if t.ID == id {
			s.transactions[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete transaction %s: %w", id, api.ErrNotFound)
}

// ExportTransactions renders the filtered listing as CSV with the backend's
// column layout.
func (s *Store) ExportTransactions(ctx context.Context, token string, f core.TransactionFilter) ([]byte, error) {
	ts, err := s.ListTransactions(ctx, token, f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "categoria_id", "tipo", "valor", "descricao", "data"})
	for _, t := range ts {
		categoryID := ""
		if t.CategoryID != nil {
			categoryID = *t.CategoryID
		}
		_ = w.Write([]string{t.ID, categoryID, string(t.Type), t.Amount.String(), t.Description, t.Date.String()})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("export transactions: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Store) ListCategories(_ context.Context, token string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("list categories: %w", api.ErrUnauthorized)
	}
	out := append([]core.Category(nil), s.categories[userID]...)
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, token string, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return core.Category{}, fmt.Errorf("create category: %w", api.ErrUnauthorized)
	}
	c := core.Category{ID: uuid.NewString(), Name: strings.TrimSpace(in.Name), Type: in.Type}
	s.categories[userID] = append(s.categories[userID], c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, token string, id string, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return core.Category{}, fmt.Errorf("update category: %w", api.ErrUnauthorized)
	}
	for i, c := range s.categories[userID] {
		if c.ID == id {
			c.Name = strings.TrimSpace(in.Name)
			c.Type = in.Type
			s.categories[userID][i] = c
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("update category %s: %w", id, api.ErrNotFound)
}

func (s *Store) DeleteCategory(_ context.Context, token string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return fmt.Errorf("delete category: %w", api.ErrUnauthorized)
	}
	items := s.categories[userID]
	for i, c := range items {
		if c.ID == id {
			s.categories[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete category %s: %w", id, api.ErrNotFound)
}

func matches(t core.Transaction, f core.TransactionFilter) bool {
	if f.StartDate != "" {
		if start, err := core.ParseDate(f.StartDate); err == nil && t.Date.Before(start.Time) {
			return false
		}
	}
	if f.EndDate != "" {
		if end, err := core.ParseDate(f.EndDate); err == nil && t.Date.After(end.Time) {
			return false
		}
	}
	if f.Type != "" && string(t.Type) != f.Type {
		return false
	}
	if f.CategoryID != "" {
		if t.CategoryID == nil || *t.CategoryID != f.CategoryID {
			return false
		}
	}
	return true
}
