/*
Package main implements the trade-utils command line tool.

The tool exposes the toolkit's read paths for ad-hoc use: kline history and
live streams from the futures exchange, account snapshots, instrument trading
constraints, and range queries against the historical kline store.

Usage:

	go run main.go -config=config.yaml -mode=klines
	go run main.go -config=config.yaml -mode=store -from="2022-01-01 00:00:00" -to="2022-12-01 00:00:00"

Modes:

	klines       fetch recent klines for the configured symbols
	watch        poll for new klines on a fixed-interval timer
	account      fetch the account snapshot (requires credentials)
	instruments  fetch trading constraints for the configured symbols
	store        query the historical kline store by time range
	stream       stream closed klines over WebSocket until interrupted
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/karta134033/trade-utils/internal/binance"
	"github.com/karta134033/trade-utils/internal/config"
	"github.com/karta134033/trade-utils/internal/storage"
	"github.com/karta134033/trade-utils/internal/stream"
	"github.com/karta134033/trade-utils/internal/timer"
	"github.com/karta134033/trade-utils/internal/utils"
)

// timeLayout is the wall-clock format accepted by -from and -to.
const timeLayout = "2006-01-02 15:04:05"

// Command-line flags for configuring the tool behavior
var (
	configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
	mode       = flag.String("mode", "klines", "One of: klines, watch, account, instruments, store, stream")
	from       = flag.String("from", "", "Range start for store mode, e.g. \"2022-01-01 00:00:00\" (UTC)")
	to         = flag.String("to", "", "Range end for store mode; defaults to now")
	limit      = flag.Int("limit", 10, "Number of klines to fetch in klines mode")
)

func main() {
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := utils.ValidateSymbols(cfg.Symbols, 0); err != nil {
		log.Fatal().Err(err).Msg("invalid symbols in config")
	}
	if err := utils.ValidateInterval(cfg.Interval); err != nil {
		log.Fatal().Err(err).Msg("invalid interval in config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Str("mode", *mode).Msg("command failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	switch *mode {
	case "klines":
		return runKlines(ctx, cfg)
	case "watch":
		return runWatch(ctx, cfg)
	case "account":
		return runAccount(ctx, cfg)
	case "instruments":
		return runInstruments(ctx, cfg)
	case "store":
		return runStore(ctx, cfg)
	case "stream":
		return runStream(ctx, cfg)
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}
}

// runKlines fetches the most recent klines for each configured symbol.
func runKlines(ctx context.Context, cfg *config.Config) error {
	client, err := binance.NewClient(&binance.ClientConfig{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		return err
	}

	for _, symbol := range cfg.Symbols {
		klines, err := client.GetKlines(ctx, binance.KlineQuery{
			Symbol:   symbol,
			Interval: cfg.Interval,
			Limit:    *limit,
		})
		if err != nil {
			return err
		}
		for _, k := range klines {
			log.Info().
				Str("symbol", symbol).
				Time("close", time.UnixMilli(k.CloseTime)).
				Float64("open", k.Open).
				Float64("high", k.High).
				Float64("low", k.Low).
				Float64("close_price", k.Close).
				Msg("kline")
		}
	}
	return nil
}

// runWatch polls for fresh klines on a fixed-interval timer until
// interrupted. The timer re-arms itself on each elapsed period, so a slow
// poll never produces a backlog of fetches.
func runWatch(ctx context.Context, cfg *config.Config) error {
	client, err := binance.NewClient(&binance.ClientConfig{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		return err
	}

	period, err := watchPeriod(cfg.Interval)
	if err != nil {
		return err
	}
	tick := timer.NewTimer(period)

	poll := time.NewTicker(time.Second)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			if !tick.Update() {
				continue
			}
			for _, symbol := range cfg.Symbols {
				klines, err := client.GetKlines(ctx, binance.KlineQuery{
					Symbol:    symbol,
					Interval:  cfg.Interval,
					StartTime: tick.TsMs(),
					Limit:     1,
				})
				if err != nil {
					return err
				}
				if len(klines) == 0 {
					continue
				}
				latest := klines[len(klines)-1]
				log.Info().
					Str("symbol", symbol).
					Time("close", time.UnixMilli(latest.CloseTime)).
					Float64("close_price", latest.Close).
					Msg("new kline")
			}
		}
	}
}

// watchPeriod maps a kline interval onto a timer period. Only the intervals
// that align with calendar boundaries are supported for watching.
func watchPeriod(interval string) (timer.FixedUpdate, error) {
	switch interval {
	case "1m", "3m", "5m", "15m", "30m":
		var n int64
		fmt.Sscanf(interval, "%dm", &n)
		return timer.Minutes(n), nil
	case "1h", "2h", "4h", "6h", "8h", "12h":
		var n int64
		fmt.Sscanf(interval, "%dh", &n)
		return timer.Hours(n), nil
	case "1d", "3d":
		var n int64
		fmt.Sscanf(interval, "%dd", &n)
		return timer.Days(n), nil
	default:
		return timer.FixedUpdate{}, fmt.Errorf("interval %q cannot be watched on a calendar timer", interval)
	}
}

// runAccount fetches and logs the active balances and open positions.
func runAccount(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	client, err := binance.NewClient(&binance.ClientConfig{
		APIKey:    cfg.APIKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		return err
	}

	account, err := client.GetAccount(ctx)
	if err != nil {
		return err
	}

	for _, asset := range account.Assets {
		log.Info().
			Str("asset", asset.Asset).
			Float64("wallet", asset.WalletBalance).
			Float64("available", asset.AvailableBalance).
			Msg("balance")
	}
	for _, position := range account.Positions {
		log.Info().
			Str("symbol", position.Symbol).
			Float64("amount", position.PositionAmt).
			Float64("entry", position.EntryPrice).
			Float64("pnl", position.UnrealizedProfit).
			Uint64("leverage", position.Leverage).
			Msg("position")
	}
	return nil
}

// runInstruments fetches trading constraints for the configured symbols.
func runInstruments(ctx context.Context, cfg *config.Config) error {
	client, err := binance.NewClient(nil)
	if err != nil {
		return err
	}

	instruments, err := client.GetInstruments(ctx, cfg.Symbols)
	if err != nil {
		return err
	}

	for _, symbol := range cfg.Symbols {
		info, ok := instruments[symbol]
		if !ok {
			log.Warn().Str("symbol", symbol).Msg("not an actively trading perpetual")
			continue
		}
		log.Info().
			Str("symbol", info.Symbol).
			Str("tickSize", info.TickSize).
			Str("lotSize", info.LotSize).
			Float64("minQty", info.MinQty).
			Msg("instrument")
	}
	return nil
}

// runStore queries the historical kline store by close-time range, one
// collection per configured symbol (e.g., BTCUSDT_15m).
func runStore(ctx context.Context, cfg *config.Config) error {
	if *from == "" {
		return fmt.Errorf("store mode requires -from")
	}
	fromTime, err := time.ParseInLocation(timeLayout, *from, time.UTC)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	fromTs := fromTime.UnixMilli()

	var toTs *int64
	if *to != "" {
		toTime, err := time.ParseInLocation(timeLayout, *to, time.UTC)
		if err != nil {
			return fmt.Errorf("parse -to: %w", err)
		}
		ts := toTime.UnixMilli()
		toTs = &ts
	}

	store, err := storage.NewKlineStore(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close kline store")
		}
	}()

	for _, symbol := range cfg.Symbols {
		collection := fmt.Sprintf("%s_%s", symbol, cfg.Interval)
		klines, err := store.GetKlines(ctx, cfg.KlineDB, collection, fromTs, toTs)
		if err != nil {
			return err
		}
		log.Info().Str("collection", collection).Int("count", len(klines)).Msg("stored klines")
	}
	return nil
}

// runStream streams closed klines over WebSocket until interrupted.
func runStream(ctx context.Context, cfg *config.Config) error {
	streamer, err := stream.NewKlineStreamer(nil)
	if err != nil {
		return err
	}

	klines, err := streamer.SubscribeKlines(ctx, cfg.Symbols, cfg.Interval)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case kline, ok := <-klines:
			if !ok {
				log.Info().Msg("kline stream closed")
				return nil
			}
			log.Info().
				Time("close", time.UnixMilli(kline.CloseTime)).
				Float64("open", kline.Open).
				Float64("close_price", kline.Close).
				Msg("streamed kline")
		}
	}
}
