package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestToDecimal_RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "20000", "18000.50", "-5", "0.01"} {
		d := decimal.RequireFromString(s)
		if got := ToDecimal(ToNumeric(d)); !got.Equal(d) {
			t.Errorf("%s: got %s", s, got)
		}
	}
}

func TestToDecimal_NullIsZero(t *testing.T) {
	if got := ToDecimal(pgtype.Numeric{}); !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}
	if got := ToDecimal(pgtype.Numeric{NaN: true, Valid: true}); !got.IsZero() {
		t.Errorf("NaN: got %s, want 0", got)
	}
}

func TestToNullNumeric(t *testing.T) {
	if ToNullNumeric(nil).Valid {
		t.Error("nil should be NULL")
	}
	d := decimal.NewFromInt(10)
	if got := ToDecimal(ToNullNumeric(&d)); !got.Equal(d) {
		t.Errorf("got %s, want 10", got)
	}
}
