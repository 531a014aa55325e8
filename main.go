package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/laimis/stock-analysis-sub000/internal/repo"
	"github.com/laimis/stock-analysis-sub000/internal/schedule"
	commentarygemini "github.com/laimis/stock-analysis-sub000/internal/service/commentary/gemini"
	"github.com/laimis/stock-analysis-sub000/internal/service/marketclock"
	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
	"github.com/laimis/stock-analysis-sub000/internal/service/notification"
	quotebinance "github.com/laimis/stock-analysis-sub000/internal/service/quote/binance"
	"github.com/laimis/stock-analysis-sub000/internal/web"
	"github.com/laimis/stock-analysis-sub000/ioc"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

	viper.SetDefault("web.addr", ":8080")
	viper.SetDefault("monitoring.gap_percent", 2.0)
	viper.SetDefault("monitoring.price_check_interval", "5m")
}

func main() {
	initViper()

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	userRepo := repo.NewUserRepo(db)
	positionRepo := repo.NewPositionRepo(db)
	watchlistRepo := repo.NewWatchlistRepo(db)
	alertRepo := repo.NewAlertRepo(db)

	registry := monitoring.NewRegistry(
		monitoring.WithRecentTTL(viper.GetDuration("monitoring.suppression_ttl")))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	defaults := monitoring.Defaults{
		GapPercent: decimal.NewFromFloat(viper.GetFloat64("monitoring.gap_percent")),
	}
	if err := monitoring.BuildFromStore(ctx, registry, positionRepo, watchlistRepo, defaults); err != nil {
		panic(err)
	}

	quoteSvc := quotebinance.NewService(ioc.InitBinanceCli())

	var fanoutOpts []notification.FanoutOption
	if geminiCli := ioc.InitGeminiCli(); geminiCli != nil {
		fanoutOpts = append(fanoutOpts, notification.WithCommentator(commentarygemini.NewService(geminiCli)))
	}
	fanout := notification.NewFanout(registry, userRepo, alertRepo, fanoutOpts...)

	svc := monitoring.NewService(registry, quoteSvc, quoteSvc, fanout)
	clock := marketclock.NewNYSE()

	hosts := []*schedule.Host{
		schedule.NewHost(
			schedule.NewFuncTask("price check", svc.RunPriceCheck),
			schedule.IntervalDuringSession(clock, viper.GetDuration("monitoring.price_check_interval")),
			schedule.WithWaker(registry)),
		schedule.NewHost(
			schedule.NewFuncTask("gap-up check", svc.RunGapUpCheck),
			schedule.AtSessionOpen(clock, 10*time.Minute)),
		schedule.NewHost(
			schedule.NewFuncTask("reversal check", svc.RunReversalCheck),
			schedule.BeforeSessionClose(clock, 30*time.Minute)),
		schedule.NewHost(
			schedule.NewFuncTask("weekly digest", func(ctx context.Context) error {
				return fanout.SendWeeklyDigest(ctx, time.Now())
			}),
			schedule.WeeklyAt(clock, time.Saturday, 9, 0)),
	}

	server := web.NewServer(viper.GetString("web.addr"), web.NewHandlers(registry, alertRepo))

	eg, egCtx := errgroup.WithContext(ctx)
	for _, host := range hosts {
		host := host
		eg.Go(func() error {
			return host.Start(egCtx)
		})
	}
	eg.Go(func() error {
		return server.Start(egCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("shutdown with error", "err", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
