package analysis

import (
	"github.com/laimis/stock-analysis-sub000/internal/service/quote"
	"github.com/laimis/stock-analysis-sub000/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// Gap 开盘跳空: 最新一根日线的开盘价相对前一根收盘价的涨跌幅
type Gap struct {
	Percent    decimal.Decimal
	Open       decimal.Decimal
	PriorClose decimal.Decimal
}

// LatestGap 只取最近一根 bar 的结果, 多根 bar 同时满足时以最新为准
func LatestGap(bars []quote.PriceBar) (Gap, bool) {
	if len(bars) < 2 {
		return Gap{}, false
	}
	latest := bars[len(bars)-1]
	prior := bars[len(bars)-2]
	if prior.Close.IsZero() {
		return Gap{}, false
	}
	return Gap{
		Percent:    decimalx.PercentChange(prior.Close, latest.Open),
		Open:       latest.Open,
		PriorClose: prior.Close,
	}, true
}
