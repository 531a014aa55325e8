package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/laimis/stock-analysis-sub000/internal/service/quote"
	"github.com/shopspring/decimal"
)

var _ quote.QuoteService = (*Service)(nil)
var _ quote.HistoryService = (*Service)(nil)

// Service 通过币安现货行情实现 QuoteService/HistoryService,
// 用于监控 journal 里携带的加密货币 ticker (BTCUSDT 等)
type Service struct {
	cli *binance.Client
}

func NewService(cli *binance.Client) *Service {
	return &Service{cli: cli}
}

func (s *Service) GetQuote(ctx context.Context, ownerId int64, ticker string) (quote.Quote, error) {
	prices, err := s.cli.NewListPricesService().Symbol(ticker).Do(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	if len(prices) == 0 {
		return quote.Quote{}, fmt.Errorf("ticker %s not found", ticker)
	}
	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("parse price %q: %w", prices[0].Price, err)
	}
	return quote.Quote{
		Ticker: ticker,
		Price:  price,
		Time:   time.Now(),
	}, nil
}

func (s *Service) GetPriceHistory(ctx context.Context, ownerId int64, ticker string, frequency quote.Frequency, start, end time.Time) ([]quote.PriceBar, error) {
	interval := "1d"
	if frequency == quote.FrequencyWeekly {
		interval = "1w"
	}
	svc := s.cli.NewKlinesService().Symbol(ticker).Interval(interval)
	if !start.IsZero() {
		svc.StartTime(start.UnixMilli())
	}
	if !end.IsZero() {
		svc.EndTime(end.UnixMilli())
	}
	klines, err := svc.Do(ctx)
	if err != nil {
		return nil, err
	}
	return convertKlines(klines)
}

func convertKlines(klines []*binance.Kline) ([]quote.PriceBar, error) {
	bars := make([]quote.PriceBar, 0, len(klines))
	for _, k := range klines {
		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, err
		}
		high, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, err
		}
		low, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, err
		}
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, err
		}
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, err
		}
		bars = append(bars, quote.PriceBar{
			Time:   time.UnixMilli(k.OpenTime),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return bars, nil
}
