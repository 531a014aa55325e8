package analysis

import (
	"github.com/laimis/stock-analysis-sub000/internal/service/quote"
	"github.com/laimis/stock-analysis-sub000/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// ReversalPivot 短窗口内的上破反转:
// 窗口前段收盘价走弱 (斜率为负), 此时突破点取除最新 bar 外的最高 high.
// 返回 ok=false 表示窗口不构成反转形态, 对应 monitor 不布防.
func ReversalPivot(bars []quote.PriceBar, lookback int) (decimal.Decimal, bool) {
	if lookback < 3 {
		lookback = 3
	}
	if len(bars) < lookback+1 {
		return decimal.Zero, false
	}

	window := bars[len(bars)-lookback-1 : len(bars)-1]

	closes := make([]decimal.Decimal, 0, len(window))
	highs := make([]decimal.Decimal, 0, len(window))
	for _, b := range window {
		closes = append(closes, b.Close)
		highs = append(highs, b.High)
	}

	if !decimalx.Slope(closes).IsNegative() {
		return decimal.Zero, false
	}
	pivot := decimalx.Max(highs)
	if pivot.IsZero() {
		return decimal.Zero, false
	}
	return pivot, true
}
