package quote

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Quote struct {
	Ticker string
	Price  decimal.Decimal
	Time   time.Time
}

type PriceBar struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// QuoteService 行情来源, ownerId 用于选择调用方的券商凭证
type QuoteService interface {
	GetQuote(ctx context.Context, ownerId int64, ticker string) (Quote, error)
}

type HistoryService interface {
	GetPriceHistory(ctx context.Context, ownerId int64, ticker string, frequency Frequency, start, end time.Time) ([]PriceBar, error)
}
