package monitoring

import (
	"fmt"

	"github.com/laimis/stock-analysis-sub000/pkg/decimalx"
	"github.com/shopspring/decimal"
)

// Evaluation 评估结果, Triggered/Watched 为展示值
type Evaluation struct {
	Fired       bool
	Description string
	Triggered   decimal.Decimal
	Watched     decimal.Decimal
	Format      ValueFormat
}

// Evaluate 纯函数: 按条件种类比较 current 与 reference.
// reference 非正数时视为未布防, 永不触发.
func Evaluate(c Condition, current, reference decimal.Decimal) Evaluation {
	if !reference.IsPositive() {
		return Evaluation{}
	}

	switch c.Source {
	case SourceStopLoss:
		return evaluateStopLoss(c, current, reference)
	case SourcePriceAlert:
		return evaluatePriceAlert(c, current, reference)
	case SourceGapUp:
		return evaluateGapUp(c, current, reference)
	case SourceUpsideReversal:
		return evaluateUpsideReversal(current, reference)
	default:
		return Evaluation{}
	}
}

func evaluateStopLoss(c Condition, current, stop decimal.Decimal) Evaluation {
	fired := current.LessThanOrEqual(stop)
	sense := "below"
	if c.Short {
		fired = current.GreaterThanOrEqual(stop)
		sense = "above"
	}
	if !fired {
		return Evaluation{}
	}
	return Evaluation{
		Fired: true,
		Description: fmt.Sprintf("price %s is %s stop %s",
			FormatValue(FormatCurrency, current), sense, FormatValue(FormatCurrency, stop)),
		Triggered: current,
		Watched:   stop,
		Format:    FormatCurrency,
	}
}

func evaluatePriceAlert(c Condition, current, watched decimal.Decimal) Evaluation {
	var fired bool
	switch c.Direction {
	case DirectionBelow:
		fired = current.LessThanOrEqual(watched)
	default:
		fired = current.GreaterThanOrEqual(watched)
	}
	if !fired {
		return Evaluation{}
	}
	return Evaluation{
		Fired: true,
		Description: fmt.Sprintf("price %s crossed %s %s",
			FormatValue(FormatCurrency, current), c.Direction, FormatValue(FormatCurrency, watched)),
		Triggered: current,
		Watched:   watched,
		Format:    FormatCurrency,
	}
}

// evaluateGapUp reference 为前一交易日收盘价, 阈值在条件里.
// 阈值未配置时不触发, 避免每天误报.
func evaluateGapUp(c Condition, current, priorClose decimal.Decimal) Evaluation {
	if !c.GapPercent.IsPositive() {
		return Evaluation{}
	}
	gap := decimalx.PercentChange(priorClose, current)
	if gap.LessThan(c.GapPercent) {
		return Evaluation{}
	}
	return Evaluation{
		Fired: true,
		Description: fmt.Sprintf("gapped up %s over prior close %s",
			FormatValue(FormatPercentage, gap), FormatValue(FormatCurrency, priorClose)),
		Triggered: gap,
		Watched:   c.GapPercent,
		Format:    FormatPercentage,
	}
}

// evaluateUpsideReversal reference 为形态突破点, 形态类告警按布尔展示
func evaluateUpsideReversal(current, pivot decimal.Decimal) Evaluation {
	if !current.GreaterThan(pivot) {
		return Evaluation{}
	}
	one := decimal.NewFromInt(1)
	return Evaluation{
		Fired: true,
		Description: fmt.Sprintf("price %s broke above pivot %s after a decline",
			FormatValue(FormatCurrency, current), FormatValue(FormatCurrency, pivot)),
		Triggered: one,
		Watched:   one,
		Format:    FormatBoolean,
	}
}
