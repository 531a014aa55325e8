package monitoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/laimis/stock-analysis-sub000/internal/entity"
	"github.com/laimis/stock-analysis-sub000/internal/repo"
	"github.com/shopspring/decimal"
)

// Defaults 注册 monitor 时用的条件参数
type Defaults struct {
	GapPercent decimal.Decimal
}

// MonitorForPosition 有止损价的持仓对应一个 stop-loss monitor
func MonitorForPosition(p entity.Position) (Monitor, bool) {
	if !p.IsOpen() || p.StopPrice == "" {
		return Monitor{}, false
	}
	stop, err := decimal.NewFromString(p.StopPrice)
	if err != nil || !stop.IsPositive() {
		return Monitor{}, false
	}
	return Monitor{
		Source:    SourceStopLoss,
		Ticker:    p.Ticker,
		OwnerId:   p.UserId,
		Condition: Condition{Source: SourceStopLoss, Short: p.IsShort},
		Reference: stop,
	}, true
}

// MonitorForWatch 监控列表条目按 tag 映射到条件种类
func MonitorForWatch(w entity.WatchedStock, defaults Defaults) (Monitor, bool) {
	switch w.Tag {
	case entity.WatchTagGapUp:
		return Monitor{
			Source:    SourceGapUp,
			Ticker:    w.Ticker,
			OwnerId:   w.UserId,
			Condition: Condition{Source: SourceGapUp, GapPercent: defaults.GapPercent},
			// Reference (前收盘) 由当日 pass 推导
		}, true
	case entity.WatchTagUpsideReversal:
		return Monitor{
			Source:    SourceUpsideReversal,
			Ticker:    w.Ticker,
			OwnerId:   w.UserId,
			Condition: Condition{Source: SourceUpsideReversal},
		}, true
	case entity.WatchTagPriceAlert:
		target, err := decimal.NewFromString(w.TargetPrice)
		if err != nil || !target.IsPositive() {
			return Monitor{}, false
		}
		direction := Direction(w.Direction)
		if direction != DirectionBelow {
			direction = DirectionAbove
		}
		return Monitor{
			Source:    SourcePriceAlert,
			Ticker:    w.Ticker,
			OwnerId:   w.UserId,
			Condition: Condition{Source: SourcePriceAlert, Direction: direction},
			Reference: target,
		}, true
	default:
		return Monitor{}, false
	}
}

// BuildFromStore 进程启动时扫描全部用户的持仓和监控列表重建 Registry.
// Registry 只是缓存, 持久层才是持仓的 source of truth.
func BuildFromStore(ctx context.Context, registry *Registry, positions repo.PositionRepo, watches repo.WatchlistRepo, defaults Defaults) error {
	openPositions, err := positions.FindAllOpen(ctx)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}
	for _, p := range openPositions {
		if m, ok := MonitorForPosition(p); ok {
			registry.Register(m)
		}
	}

	watched, err := watches.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load watch list: %w", err)
	}
	for _, w := range watched {
		if m, ok := MonitorForWatch(w, defaults); ok {
			registry.Register(m)
		} else if w.Tag != "" {
			slog.Warn("skip watch entry", "ticker", w.Ticker, "tag", w.Tag, "user", w.UserId)
		}
	}

	registry.AddNotice(fmt.Sprintf("registry built: %d monitors from %d positions and %d watch entries",
		registry.Len(), len(openPositions), len(watched)))
	return nil
}
