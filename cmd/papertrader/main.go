// ashare-paper simulates A-share paper trading: order placement against a
// polled last price, FIFO lot accounting, T+X settlement, and session-phase
// aware matching — with no connection to a real brokerage or exchange.
//
// Architecture:
//
//	main.go                  — entry point: loads config, wires subsystems, waits for SIGINT/SIGTERM
//	internal/calendar        — trading-day and session-phase classification
//	internal/fees            — commission/transfer/stamp-duty schedule
//	internal/marketdata      — Eastmoney quote adapter behind a TTL price cache
//	internal/ledger          — cash, frozen cash, FIFO lot positions
//	internal/orderbook       — indexed order store + pending-id queue
//	internal/journal         — trade history and bounded equity curve
//	internal/matching        — expire/guard/match loop over the order book
//	internal/service         — single-mutex trading facade (Buy/Sell/Cancel/Report)
//	internal/persist         — gob snapshot, written atomically, flushed on a timer
//	internal/api             — optional read-only report + equity-stream server
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ashare-paper/internal/api"
	"ashare-paper/internal/calendar"
	"ashare-paper/internal/config"
	"ashare-paper/internal/journal"
	"ashare-paper/internal/ledger"
	"ashare-paper/internal/marketdata"
	"ashare-paper/internal/matching"
	"ashare-paper/internal/orderbook"
	"ashare-paper/internal/persist"
	"ashare-paper/internal/service"
	"ashare-paper/pkg/money"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("ASHARE_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	loc, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		logger.Error("failed to load calendar timezone", "error", err, "timezone", cfg.Calendar.Timezone)
		os.Exit(1)
	}
	holidays := calendar.NewStaticHolidaySource(cfg.Calendar.HolidayDates)
	cal := calendar.New(holidays, loc)

	var prices marketdata.Source
	if cfg.MarketData.Mock {
		prices = marketdata.NewMockSource()
		logger.Warn("market data running in mock mode — no live quotes")
	} else {
		prices = marketdata.NewCache(marketdata.NewEastmoneyClient(cfg.MarketData.BaseURL, cfg.MarketData.Timeout))
	}

	led := ledger.New(money.New(cfg.Account.InitialCash))
	book := orderbook.New()
	jrnl := journal.New()

	store, err := persist.New(cfg.Store.DataDir, led, book, jrnl, logger)
	if err != nil {
		logger.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	if err := store.Load(); err != nil {
		if err == persist.ErrNotFound {
			logger.Info("no prior snapshot found, starting a fresh account", "initial_cash", cfg.Account.InitialCash)
			if err := store.Save(); err != nil {
				logger.Error("failed to write initial snapshot", "error", err)
				os.Exit(1)
			}
		} else {
			logger.Error("failed to load account snapshot", "error", err)
			os.Exit(1)
		}
	}

	engine := matching.New(book, led, jrnl, cal, prices, cfg.Matching.MaxAttempts, logger)
	svc := service.New(service.Params{
		LotSize:  cfg.Account.LotSize,
		TPlus:    cfg.Account.TPlus,
		OrderTTL: cfg.Matching.OrderTTL,
	}, cal, prices, led, book, jrnl, engine)
	svc.AttachStore(store)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go engine.Run(ctx, cfg.Matching.PollInterval, svcMutex(svc), &wg)

	wg.Add(1)
	go store.Run(ctx, time.Second, cfg.Store.FlushInterval, &wg)

	var apiServer *api.Server
	if cfg.Dashboard.Enabled {
		apiServer = api.NewServer(cfg.Dashboard, svc, logger)
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("dashboard server failed", "error", err)
			}
		}()
		logger.Info("dashboard started", "url", fmt.Sprintf("http://localhost:%d", cfg.Dashboard.Port))

		wg.Add(1)
		go broadcastEquity(ctx, svc, apiServer, cfg.Matching.PollInterval, &wg)
	}

	logger.Info("paper trading engine started",
		"initial_cash", cfg.Account.InitialCash,
		"t_plus", cfg.Account.TPlus,
		"lot_size", cfg.Account.LotSize,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop dashboard", "error", err)
		}
		shutdownCancel()
	}

	cancel()
	wg.Wait()

	if err := store.Save(); err != nil {
		logger.Error("failed to write final snapshot", "error", err)
	}
}

// svcMutex exposes the service's own mutex to the matching loop so it can
// serialize against Buy/Sell/CancelOrder calls without a second lock.
func svcMutex(svc *service.Service) *sync.Mutex {
	return svc.Mutex()
}

// broadcastEquity periodically pushes the latest equity sample to
// connected dashboard clients.
func broadcastEquity(ctx context.Context, svc *service.Service, srv *api.Server, interval time.Duration, wg *sync.WaitGroup) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			curve := svc.EquityHistory()
			if len(curve) == 0 {
				continue
			}
			srv.BroadcastEquity(curve[len(curve)-1])
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
