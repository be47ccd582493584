package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardLeasePricingQuote(t *testing.T) {
	pricing := NewStandardLeasePricing()

	total, err := pricing.Quote(45000, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(45000), total)

	total, err = pricing.Quote(45000, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(135000), total)

	_, err = pricing.Quote(0, 3)
	assert.Error(t, err)

	_, err = pricing.Quote(45000, 0)
	assert.Error(t, err)
}

func TestStandardLeasePricingRefundPercent(t *testing.T) {
	pricing := NewStandardLeasePricing()

	tests := []struct {
		days int
		want int
	}{
		{30, 100},
		{8, 100},
		{7, 100},
		{6, 50},
		{4, 50},
		{3, 50},
		{2, 0},
		{1, 0},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pricing.RefundPercent(tt.days), "days=%d", tt.days)
	}
}
