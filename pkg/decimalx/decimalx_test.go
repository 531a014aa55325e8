package decimalx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSlope(t *testing.T) {
	testCases := []struct {
		name     string
		ds       []decimal.Decimal
		positive bool
		negative bool
	}{
		{
			name: "rising",
			ds: []decimal.Decimal{
				decimal.NewFromInt(1),
				decimal.NewFromInt(2),
				decimal.NewFromInt(3),
				decimal.NewFromInt(4),
			},
			positive: true,
		},
		{
			name: "falling",
			ds: []decimal.Decimal{
				decimal.NewFromInt(300),
				decimal.NewFromInt(200),
				decimal.NewFromInt(100),
			},
			negative: true,
		},
		{
			name: "flat",
			ds: []decimal.Decimal{
				decimal.NewFromInt(5),
				decimal.NewFromInt(5),
				decimal.NewFromInt(5),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slope := Slope(tc.ds)
			if tc.positive {
				assert.True(t, slope.IsPositive())
			} else if tc.negative {
				assert.True(t, slope.IsNegative())
			} else {
				assert.True(t, slope.IsZero())
			}
		})
	}
}

func TestPercentChange(t *testing.T) {
	assert.True(t, PercentChange(decimal.NewFromInt(100), decimal.NewFromInt(105)).Equal(decimal.NewFromInt(5)))
	assert.True(t, PercentChange(decimal.NewFromInt(100), decimal.NewFromInt(95)).Equal(decimal.NewFromInt(-5)))
	assert.True(t, PercentChange(decimal.Zero, decimal.NewFromInt(5)).IsZero())
}

func TestAvgAndMax(t *testing.T) {
	ds := []decimal.Decimal{
		decimal.NewFromInt(2),
		decimal.NewFromInt(4),
		decimal.NewFromInt(6),
	}
	assert.True(t, Avg(ds).Equal(decimal.NewFromInt(4)))
	assert.True(t, Max(ds).Equal(decimal.NewFromInt(6)))
	assert.True(t, Avg(nil).IsZero())
	assert.True(t, Max(nil).IsZero())
}
