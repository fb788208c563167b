package infra

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "KES 1,234.50", FormatAmount("KES", decimal.RequireFromString("1234.5"), 2))
	assert.Equal(t, "KES 999.00", FormatAmount("KES", decimal.NewFromInt(999), 2))
	assert.Equal(t, "-1,000,000.00", FormatAmount("", decimal.NewFromInt(-1000000), 2))
	assert.Equal(t, "USD 0.00", FormatAmount("USD", decimal.Zero, 2))
}
