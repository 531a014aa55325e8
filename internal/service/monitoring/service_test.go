package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/laimis/stock-analysis-sub000/internal/service/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============ Mock 定义 ============

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) GetQuote(ctx context.Context, ownerId int64, ticker string) (quote.Quote, error) {
	args := m.Called(ctx, ownerId, ticker)
	return args.Get(0).(quote.Quote), args.Error(1)
}

type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) GetPriceHistory(ctx context.Context, ownerId int64, ticker string, frequency quote.Frequency, start, end time.Time) ([]quote.PriceBar, error) {
	args := m.Called(ctx, ownerId, ticker, frequency, start, end)
	return args.Get(0).([]quote.PriceBar), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, alerts []TriggeredAlert) {
	m.Called(ctx, alerts)
}

func dailyBar(day int, open, high, low, close string) quote.PriceBar {
	return quote.PriceBar{
		Time:  time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		Open:  d(open),
		High:  d(high),
		Low:   d(low),
		Close: d(close),
	}
}

func TestRunPriceCheckQuoteOncePerTicker(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(WithNowFunc(func() time.Time { return now }))
	// 同一个 ticker 两个不同 owner 的止损
	r.Register(stopLossMonitor("AAPL", 1, "150"))
	r.Register(stopLossMonitor("AAPL", 2, "148"))
	r.Register(stopLossMonitor("TSLA", 1, "200"))

	quotes := new(MockQuoteService)
	quotes.On("GetQuote", mock.Anything, int64(1), "AAPL").
		Return(quote.Quote{Ticker: "AAPL", Price: d("149")}, nil).Once()
	quotes.On("GetQuote", mock.Anything, int64(1), "TSLA").
		Return(quote.Quote{Ticker: "TSLA", Price: d("210")}, nil).Once()

	fanout := new(MockDispatcher)
	fanout.On("Dispatch", mock.Anything, mock.MatchedBy(func(alerts []TriggeredAlert) bool {
		// 149 跌破 owner 1 的 150, 没破 owner 2 的 148
		return len(alerts) == 1 && alerts[0].OwnerId == 1 && alerts[0].Ticker == "AAPL"
	})).Once()

	svc := NewService(r, quotes, nil, fanout, WithServiceNowFunc(func() time.Time { return now }))
	err := svc.RunPriceCheck(context.Background())
	require.NoError(t, err)

	quotes.AssertExpectations(t)
	fanout.AssertExpectations(t)

	notices := r.Notices()
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[len(notices)-1].Text, "price check completed")
}

func TestRunPriceCheckQuoteErrorSkipsTicker(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.Register(stopLossMonitor("AAPL", 1, "150"))
	r.Register(stopLossMonitor("TSLA", 1, "200"))

	quotes := new(MockQuoteService)
	quotes.On("GetQuote", mock.Anything, int64(1), "AAPL").
		Return(quote.Quote{}, errors.New("upstream down")).Once()
	quotes.On("GetQuote", mock.Anything, int64(1), "TSLA").
		Return(quote.Quote{Ticker: "TSLA", Price: d("210")}, nil).Once()

	svc := NewService(r, quotes, nil, new(MockDispatcher), WithServiceNowFunc(func() time.Time { return now }))
	err := svc.RunPriceCheck(context.Background())
	require.NoError(t, err)
	quotes.AssertExpectations(t)
}

func TestRunPriceCheckCancelled(t *testing.T) {
	r := NewRegistry()
	r.Register(stopLossMonitor("AAPL", 1, "150"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(r, new(MockQuoteService), nil, new(MockDispatcher))
	err := svc.RunPriceCheck(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	notices := r.Notices()
	require.NotEmpty(t, notices)
	assert.Contains(t, notices[len(notices)-1].Text, "interrupted")
}

func TestRunGapUpCheck(t *testing.T) {
	now := time.Date(2024, 6, 4, 9, 40, 0, 0, time.UTC)
	r := NewRegistry()
	r.Register(Monitor{
		Source:    SourceGapUp,
		Ticker:    "NVDA",
		OwnerId:   1,
		Condition: Condition{Source: SourceGapUp, GapPercent: d("2")},
	})

	history := new(MockHistoryService)
	// 前收盘 100, 今日开盘 105: 跳空 5%
	history.On("GetPriceHistory", mock.Anything, int64(1), "NVDA", quote.FrequencyDaily, mock.Anything, mock.Anything).
		Return([]quote.PriceBar{
			dailyBar(3, "99", "101", "98", "100"),
			dailyBar(4, "105", "106", "104", "105"),
		}, nil).Once()

	fanout := new(MockDispatcher)
	fanout.On("Dispatch", mock.Anything, mock.MatchedBy(func(alerts []TriggeredAlert) bool {
		return len(alerts) == 1 && alerts[0].Source == SourceGapUp && alerts[0].TriggeredValue.Equal(d("5"))
	})).Once()

	svc := NewService(r, nil, history, fanout, WithServiceNowFunc(func() time.Time { return now }))
	require.NoError(t, svc.RunGapUpCheck(context.Background()))

	history.AssertExpectations(t)
	fanout.AssertExpectations(t)

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot[0].Reference.Equal(d("100")))
	assert.Equal(t, StatusTriggered, snapshot[0].Status)
}

func TestRunGapUpCheckInsufficientHistoryDisarms(t *testing.T) {
	now := time.Date(2024, 6, 4, 9, 40, 0, 0, time.UTC)
	r := NewRegistry()
	r.Register(Monitor{
		Source:    SourceGapUp,
		Ticker:    "NVDA",
		OwnerId:   1,
		Condition: Condition{Source: SourceGapUp, GapPercent: d("2")},
		Reference: d("100"),
	})

	history := new(MockHistoryService)
	history.On("GetPriceHistory", mock.Anything, int64(1), "NVDA", quote.FrequencyDaily, mock.Anything, mock.Anything).
		Return([]quote.PriceBar{dailyBar(4, "105", "106", "104", "105")}, nil).Once()

	svc := NewService(r, nil, history, new(MockDispatcher), WithServiceNowFunc(func() time.Time { return now }))
	require.NoError(t, svc.RunGapUpCheck(context.Background()))

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot[0].Reference.IsZero())
}

func TestRunReversalCheck(t *testing.T) {
	now := time.Date(2024, 6, 20, 15, 30, 0, 0, time.UTC)
	r := NewRegistry()
	r.Register(Monitor{
		Source:    SourceUpsideReversal,
		Ticker:    "AMD",
		OwnerId:   1,
		Condition: Condition{Source: SourceUpsideReversal},
	})

	// 回看窗口持续走低, 区间高点 120, 最新收盘 121 突破
	bars := []quote.PriceBar{
		dailyBar(10, "118", "120", "115", "119"),
		dailyBar(11, "117", "118", "113", "116"),
		dailyBar(12, "114", "115", "110", "113"),
		dailyBar(13, "112", "113", "108", "110"),
		dailyBar(14, "118", "121", "109", "121"),
	}

	history := new(MockHistoryService)
	history.On("GetPriceHistory", mock.Anything, int64(1), "AMD", quote.FrequencyDaily, mock.Anything, mock.Anything).
		Return(bars, nil).Once()

	fanout := new(MockDispatcher)
	fanout.On("Dispatch", mock.Anything, mock.MatchedBy(func(alerts []TriggeredAlert) bool {
		return len(alerts) == 1 && alerts[0].Source == SourceUpsideReversal
	})).Once()

	svc := NewService(r, nil, history, fanout,
		WithReversalLookback(4),
		WithServiceNowFunc(func() time.Time { return now }))
	require.NoError(t, svc.RunReversalCheck(context.Background()))

	history.AssertExpectations(t)
	fanout.AssertExpectations(t)
}
