package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docquery-inc/docquery-engine/pkg/models"
)

func TestLooksLikeNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1200", true},
		{"1,200.50", true},
		{"$3,400", true},
		{"-12.5", true},
		{"  42 ", true},
		{"", false},
		{"   ", false},
		{"north", false},
		{"Q1 2024", true}, // symbols stripped, digits remain
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeNumber(tt.in))
		})
	}
}

func TestLooksLikeDate(t *testing.T) {
	assert.True(t, looksLikeDate("2024-03-01"))
	assert.True(t, looksLikeDate("2024-03-01 12:30:00"))
	assert.True(t, looksLikeDate("2024-03-01T12:30:00.123"))
	assert.True(t, looksLikeDate("15 Jan 2024"))
	assert.True(t, looksLikeDate("December report")) // "dec" substring
	assert.False(t, looksLikeDate("1234"))
	assert.False(t, looksLikeDate(""))
}

func TestInferColumnKinds(t *testing.T) {
	headers := []string{"revenue_q1", "order_date", "amount", "shipped", "region"}
	samples := []models.SampleRow{
		{"revenue_q1": "not a number", "order_date": "x", "amount": "1,200", "shipped": "2024-01-05", "region": "north"},
		{"revenue_q1": "still text", "order_date": "y", "amount": "3400.5", "shipped": "2024-02-10", "region": "south"},
		{"amount": "-7", "shipped": "pending", "region": "east"},
	}

	cols := InferColumnKinds(headers, samples)

	assert.Equal(t, models.KindPeriodQ1, cols[0].Kind, "q1 in header wins over samples")
	assert.Equal(t, models.KindTemporal, cols[1].Kind, "date in header wins over samples")
	assert.Equal(t, models.KindNumber, cols[2].Kind, "all samples numeric")
	assert.Equal(t, models.KindTemporal, cols[3].Kind, "2 of 3 samples date-like")
	assert.Equal(t, models.KindText, cols[4].Kind)

	for i, col := range cols {
		assert.Equal(t, i, col.ID)
		assert.Equal(t, headers[i], col.Name)
	}
}

func TestInferColumnKinds_EmptySamplesDefaultText(t *testing.T) {
	cols := InferColumnKinds([]string{"anything"}, nil)
	assert.Equal(t, models.KindText, cols[0].Kind)
}

func TestInferColumnKinds_SingleDateSampleNotTemporal(t *testing.T) {
	// One date-like value out of one is below the minimum of 2.
	cols := InferColumnKinds([]string{"note"}, []models.SampleRow{{"note": "2024-01-05"}})
	assert.Equal(t, models.KindText, cols[0].Kind)
}

func TestInferColumnKinds_QuarterHeaderVariants(t *testing.T) {
	cols := InferColumnKinds([]string{"Q3 Sales", "sales q2", "quarterly"}, nil)
	assert.Equal(t, models.KindPeriodQ3, cols[0].Kind)
	assert.Equal(t, models.KindPeriodQ2, cols[1].Kind)
	// "quarterly" has no standalone q-number token but matches the temporal
	// name hint "quarter".
	assert.Equal(t, models.KindTemporal, cols[2].Kind)
}
