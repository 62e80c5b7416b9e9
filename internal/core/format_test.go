package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{name: "zero", value: 0, want: "R$ 0,00"},
		{name: "thousands grouping", value: 1234.56, want: "R$ 1.234,56"},
		{name: "negative", value: -99.9, want: "R$ -99,90"},
		{name: "millions", value: 1000000, want: "R$ 1.000.000,00"},
		{name: "NaN treated as zero", value: math.NaN(), want: "R$ 0,00"},
		{name: "Inf treated as zero", value: math.Inf(1), want: "R$ 0,00"},
		{name: "negative Inf treated as zero", value: math.Inf(-1), want: "R$ 0,00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.value); got != tt.want {
				t.Fatalf("FormatCurrency(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	d := decimal.RequireFromString("1234.56")
	if got := FormatAmount(d); got != "R$ 1.234,56" {
		t.Fatalf("FormatAmount = %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "12.34", want: "12.34"},
		{in: "12,34", want: "12.34"},
		{in: " 100 ", want: "100"},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1,2,3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseAmount(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2024-03-07", want: "07/03/2024"},
		{in: "2024-12-31", want: "31/12/2024"},
		{in: "2024-03-07T10:30:00Z", want: "07/03/2024"},
		{in: "2024-03-07T10:30:00", want: "07/03/2024"},
		{in: "", want: ""},
		{in: "not a date", want: ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Fatalf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// An ISO date is reformatted positionally, never shifted by timezone.
func TestFormatDateNoTimezoneShift(t *testing.T) {
	if got := FormatDate("2024-01-01"); got != "01/01/2024" {
		t.Fatalf("FormatDate shifted the calendar date: %q", got)
	}
}
