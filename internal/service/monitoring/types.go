package monitoring

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Source 监控条件种类
type Source string

const (
	SourceStopLoss       Source = "stop-loss"
	SourceGapUp          Source = "gap-up"
	SourcePriceAlert     Source = "price-alert"
	SourceUpsideReversal Source = "upside-reversal"
)

// HighUrgency 高优先级告警除邮件外还走短信
func (s Source) HighUrgency() bool {
	return s == SourceStopLoss || s == SourceGapUp
}

func (s Source) Title() string {
	switch s {
	case SourceStopLoss:
		return "Stop loss"
	case SourceGapUp:
		return "Gap up"
	case SourcePriceAlert:
		return "Price alert"
	case SourceUpsideReversal:
		return "Upside reversal"
	default:
		return string(s)
	}
}

type ValueFormat string

const (
	FormatCurrency   ValueFormat = "currency"
	FormatPercentage ValueFormat = "percentage"
	FormatNumber     ValueFormat = "number"
	FormatBoolean    ValueFormat = "boolean"
)

// FormatValue 只影响展示, 不影响比较逻辑
func FormatValue(format ValueFormat, v decimal.Decimal) string {
	switch format {
	case FormatCurrency:
		return "$" + v.StringFixed(2)
	case FormatPercentage:
		return v.StringFixed(2) + "%"
	case FormatBoolean:
		if v.IsZero() {
			return "no"
		}
		return "yes"
	default:
		return v.String()
	}
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusTriggered Status = "triggered"
)

type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Condition 以 Source 为 tag 的变体, 各字段只对对应种类有意义
type Condition struct {
	Source Source

	// stop-loss
	Short bool

	// gap-up: 触发所需的最小跳空涨幅 (百分比)
	GapPercent decimal.Decimal

	// price-alert
	Direction Direction
}

// MonitorKey 同一时刻每个 key 至多存在一个 Monitor
type MonitorKey struct {
	Source  Source
	Ticker  string
	OwnerId int64
}

func (k MonitorKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Source, k.Ticker, k.OwnerId)
}

// Monitor 一个被监控的条件及其状态, 实例归 Registry 所有
type Monitor struct {
	Source  Source
	Ticker  string
	OwnerId int64

	Condition Condition
	Status    Status

	// Reference 比较基准: 止损价/目标价/前收盘/突破点.
	// 为零表示未布防 (gap/reversal 的基准由当日 pass 推导).
	Reference       decimal.Decimal
	LastObserved    decimal.Decimal
	LastTriggeredAt time.Time
}

func (m Monitor) Key() MonitorKey {
	return MonitorKey{Source: m.Source, Ticker: m.Ticker, OwnerId: m.OwnerId}
}

// TriggeredAlert 一次触发的不可变记录
type TriggeredAlert struct {
	Id             string
	Source         Source
	Ticker         string
	OwnerId        int64
	TriggeredValue decimal.Decimal
	WatchedValue   decimal.Decimal
	When           time.Time
	Description    string
	Format         ValueFormat
}

func (a TriggeredAlert) Key() MonitorKey {
	return MonitorKey{Source: a.Source, Ticker: a.Ticker, OwnerId: a.OwnerId}
}

// Notice 给运维看的一条活动记录
type Notice struct {
	When time.Time
	Text string
}
