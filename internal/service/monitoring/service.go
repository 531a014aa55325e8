package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/laimis/stock-analysis-sub000/internal/service/analysis"
	"github.com/laimis/stock-analysis-sub000/internal/service/quote"
	"github.com/shopspring/decimal"
)

// Dispatcher 把触发的 alert 交给通知链路, 内部按 owner 隔离失败
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []TriggeredAlert)
}

const (
	defaultReversalLookback = 10
	historyPaddingDays      = 14
)

type Service struct {
	registry *Registry
	quotes   quote.QuoteService
	history  quote.HistoryService
	fanout   Dispatcher

	reversalLookback int
	nowFn            func() time.Time
}

type ServiceOption func(*Service)

func WithReversalLookback(n int) ServiceOption {
	return func(s *Service) {
		if n > 1 {
			s.reversalLookback = n
		}
	}
}

func WithServiceNowFunc(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFn = fn
	}
}

func NewService(registry *Registry, quotes quote.QuoteService, history quote.HistoryService, fanout Dispatcher, opts ...ServiceOption) *Service {
	s := &Service{
		registry:         registry,
		quotes:           quotes,
		history:          history,
		fanout:           fanout,
		reversalLookback: defaultReversalLookback,
		nowFn:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunPriceCheck 对止损和价格提醒类 monitor 拉一次现价并评估.
// 同一个 ticker 在一轮 pass 里只取一次报价.
func (s *Service) RunPriceCheck(ctx context.Context) error {
	now := s.nowFn()
	tickers := s.registry.TickersFor(SourceStopLoss, SourcePriceAlert)

	prices := make(map[string]decimal.Decimal, len(tickers))
	var fired []TriggeredAlert
	checked := 0
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			s.registry.AddNotice(fmt.Sprintf("price check interrupted after %d of %d tickers", checked, len(tickers)))
			return err
		}
		price, ok := prices[ticker]
		if !ok {
			ownerId, found := s.registry.OwnerFor(ticker)
			if !found {
				continue
			}
			q, err := s.quotes.GetQuote(ctx, ownerId, ticker)
			if err != nil {
				slog.Error("failed to get quote", "ticker", ticker, "err", err)
				continue
			}
			price = q.Price
			prices[ticker] = price
		}
		fired = append(fired, s.registry.UpdateValue(ticker, price, now)...)
		checked++
	}

	if len(fired) > 0 {
		s.fanout.Dispatch(ctx, fired)
	}
	s.registry.AddNotice(fmt.Sprintf("price check completed: %d tickers, %d alerts", checked, len(fired)))
	return nil
}

// RunGapUpCheck 开盘后跑一次: 用日线最近两根 bar 推导前收盘作为 reference,
// 再用当日开盘价评估. 只影响 gap-up monitor 的 reference.
func (s *Service) RunGapUpCheck(ctx context.Context) error {
	now := s.nowFn()
	tickers := s.registry.TickersFor(SourceGapUp)

	var fired []TriggeredAlert
	checked := 0
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			s.registry.AddNotice(fmt.Sprintf("gap-up check interrupted after %d of %d tickers", checked, len(tickers)))
			return err
		}
		ownerId, found := s.registry.OwnerFor(ticker)
		if !found {
			continue
		}
		bars, err := s.history.GetPriceHistory(ctx, ownerId, ticker, quote.FrequencyDaily, now.AddDate(0, 0, -historyPaddingDays), now)
		if err != nil {
			slog.Error("failed to get price history", "ticker", ticker, "err", err)
			continue
		}
		gap, ok := analysis.LatestGap(bars)
		if !ok {
			s.registry.UpdateReference(SourceGapUp, ticker, decimal.Zero)
			continue
		}
		s.registry.UpdateReference(SourceGapUp, ticker, gap.PriorClose)
		fired = append(fired, s.registry.UpdateValue(ticker, gap.Open, now)...)
		checked++
	}

	if len(fired) > 0 {
		s.fanout.Dispatch(ctx, fired)
	}
	s.registry.AddNotice(fmt.Sprintf("gap-up check completed: %d tickers, %d alerts", checked, len(fired)))
	return nil
}

// RunReversalCheck 收盘前跑一次: 回看最近 N 根日线, 前段走弱时取区间高点
// 作为 pivot, 当前收盘价站上 pivot 即触发.
func (s *Service) RunReversalCheck(ctx context.Context) error {
	now := s.nowFn()
	tickers := s.registry.TickersFor(SourceUpsideReversal)

	var fired []TriggeredAlert
	checked := 0
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			s.registry.AddNotice(fmt.Sprintf("reversal check interrupted after %d of %d tickers", checked, len(tickers)))
			return err
		}
		ownerId, found := s.registry.OwnerFor(ticker)
		if !found {
			continue
		}
		start := now.AddDate(0, 0, -(s.reversalLookback*2 + historyPaddingDays))
		bars, err := s.history.GetPriceHistory(ctx, ownerId, ticker, quote.FrequencyDaily, start, now)
		if err != nil {
			slog.Error("failed to get price history", "ticker", ticker, "err", err)
			continue
		}
		pivot, ok := analysis.ReversalPivot(bars, s.reversalLookback)
		if !ok {
			// 没有有效 pivot 时撤防, 避免用过期 reference 触发
			s.registry.UpdateReference(SourceUpsideReversal, ticker, decimal.Zero)
			continue
		}
		s.registry.UpdateReference(SourceUpsideReversal, ticker, pivot)
		latest := bars[len(bars)-1].Close
		fired = append(fired, s.registry.UpdateValue(ticker, latest, now)...)
		checked++
	}

	if len(fired) > 0 {
		s.fanout.Dispatch(ctx, fired)
	}
	s.registry.AddNotice(fmt.Sprintf("reversal check completed: %d tickers, %d alerts", checked, len(fired)))
	return nil
}
