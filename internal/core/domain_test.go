package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-07")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2024-03-07" {
		t.Fatalf("round trip = %q", d.String())
	}

	if _, err := ParseDate("07/03/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for empty input, got %v", err)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 3, 7)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-03-07"` {
		t.Fatalf("marshal = %s", data)
	}

	var parsed Date
	if err := json.Unmarshal([]byte(`"2024-03-07"`), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.String() != "2024-03-07" {
		t.Fatalf("unmarshal = %q", parsed.String())
	}

	var zero Date
	if err := json.Unmarshal([]byte(`null`), &zero); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !zero.IsZero() {
		t.Fatalf("null should leave the date zero")
	}
}

func TestTransactionInputValidate(t *testing.T) {
	valid := TransactionInput{
		Type:   Income,
		Amount: decimal.RequireFromString("10.50"),
		Date:   NewDate(2024, 3, 7),
	}

	tests := []struct {
		name    string
		mutate  func(in *TransactionInput)
		wantErr error
	}{
		{name: "valid", mutate: func(in *TransactionInput) {}},
		{name: "zero date", mutate: func(in *TransactionInput) { in.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "bad type", mutate: func(in *TransactionInput) { in.Type = "transfer" }, wantErr: ErrInvalidType},
		{name: "zero amount", mutate: func(in *TransactionInput) { in.Amount = decimal.Zero }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(in *TransactionInput) { in.Amount = decimal.NewFromInt(-5) }, wantErr: ErrInvalidAmount},
		{
			name: "description too long",
			mutate: func(in *TransactionInput) {
				long := make([]byte, 256)
				for i := range long {
					long[i] = 'a'
				}
				in.Description = string(long)
			},
			wantErr: ErrDescriptionLong,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      CategoryInput
		wantErr error
	}{
		{name: "valid income", in: CategoryInput{Name: "Vendas", Type: CategoryIncome}},
		{name: "valid both", in: CategoryInput{Name: "Serviços", Type: CategoryBoth}},
		{name: "empty name", in: CategoryInput{Name: "  ", Type: CategoryIncome}, wantErr: ErrEmptyName},
		{name: "name too short", in: CategoryInput{Name: "A", Type: CategoryIncome}, wantErr: ErrNameTooShort},
		{name: "bad type", in: CategoryInput{Name: "Vendas", Type: "other"}, wantErr: ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}

	long := make([]byte, 81)
	for i := range long {
		long[i] = 'a'
	}
	if err := (CategoryInput{Name: string(long), Type: CategoryIncome}).Validate(); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}

func TestTransactionFilterQuery(t *testing.T) {
	empty := TransactionFilter{}
	if q := empty.Query(); len(q) != 0 {
		t.Fatalf("empty filter produced params: %v", q)
	}

	f := TransactionFilter{StartDate: "2024-01-01", Type: "income"}
	q := f.Query()
	if len(q) != 2 {
		t.Fatalf("expected 2 params, got %v", q)
	}
	if q["start_date"] != "2024-01-01" || q["type"] != "income" {
		t.Fatalf("unexpected params: %v", q)
	}
	if _, ok := q["end_date"]; ok {
		t.Fatalf("empty end_date must not be sent")
	}
}
