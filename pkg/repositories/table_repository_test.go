package repositories

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestStringifyCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Acme", "Acme"},
		{"integral float", float64(1200), "1200"},
		{"fractional float", 12.5, "12.5"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringifyCell(tt.in))
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	num := pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}
	got := normalizeValue(num)
	assert.InDelta(t, 123.45, got, 1e-9)

	assert.Nil(t, normalizeValue(pgtype.Numeric{}))
	assert.Equal(t, "plain", normalizeValue("plain"))
	assert.Equal(t, int64(7), normalizeValue(int64(7)))
}
