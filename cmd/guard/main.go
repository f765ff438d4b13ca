// Command guard runs the order-protection engine against a live tick
// feed. The host application supplies the position context and rule
// set; this binary wires the feed, engine, and executor together and
// serves metrics.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/auditlog"
	"main/internal/broker"
	"main/internal/engine"
	"main/internal/executor"
	"main/internal/feed"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/ops"
	"main/pkg/conn"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	dryRun := flag.Bool("dry-run", true, "Use the in-memory paper backend instead of a live broker")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		logs.Errorf("load config: %+v", err)
		os.Exit(1)
	}

	if addr := loaded.Profiling.PyroscopeAddr; addr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: loaded.Profiling.AppName,
			ServerAddress:   addr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileInuseObjects,
			},
		})
		if err != nil {
			logs.Errorf("pyroscope start failed: %+v", err)
			os.Exit(1)
		}
		defer func() { _ = profiler.Stop() }()
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(loaded.MetricsAddr, nil); err != nil {
			logs.Errorf("metrics server: %+v", err)
		}
	}()

	var sink engine.Sink
	if loaded.Audit.Postgres != "" {
		client, err := conn.New(conn.Option{ConnString: loaded.Audit.Postgres})
		if err != nil {
			logs.Errorf("connect audit database: %+v", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()

		store, err := auditlog.NewStore(client.DB())
		if err != nil {
			logs.Errorf("migrate audit schema: %+v", err)
			os.Exit(1)
		}
		sink = store
	}

	// The live broker REST client belongs to the host application; a
	// paper backend keeps this binary runnable on its own.
	if !*dryRun {
		logs.Errorf("live mode requires a broker backend, rerun with -dry-run")
		os.Exit(1)
	}
	backend := broker.NewPaper()
	cache := broker.NewPendingCache()

	exec := executor.New(loaded.Executor, backend, cache)
	runner := engine.NewRunner(engine.Config{Sink: sink}, exec)

	connection := feed.NewConnection(loaded.Feed, &feedEvents{runner: runner})
	if err := connection.Connect(ctx); err != nil {
		logs.Errorf("connect feed: %+v", err)
		os.Exit(1)
	}
	defer connection.Disconnect(true)

	position := demoPosition()
	if err := connection.Subscribe([]model.Instrument{{
		ExchangeSegment: position.ExchangeSegment,
		SecurityID:      position.SecurityID,
	}}); err != nil {
		logs.Errorf("subscribe: %+v", err)
		os.Exit(1)
	}

	if _, err := runner.Start(ctx, demoRules(), position); err != nil {
		logs.Errorf("start algorithm: %+v", err)
		os.Exit(1)
	}

	<-ctx.Done()
	runner.Cancel()
	logs.Info("shutting down")
}

// feedEvents bridges feed lifecycle callbacks onto the runner.
type feedEvents struct {
	runner *engine.Runner
}

func (f *feedEvents) OnTick(tick model.Tick) { f.runner.HandleTick(tick) }

func (f *feedEvents) OnConnect() { logs.Info("feed connected") }

func (f *feedEvents) OnDisconnect(reason error, intentional bool) {
	if intentional {
		logs.Info("feed disconnected")
		return
	}
	logs.Warnf("feed dropped: %+v", reason)
}

func (f *feedEvents) OnReconnectAttempt(attempt int) {
	logs.Infof("feed reconnect attempt %d", attempt)
}

func (f *feedEvents) OnError(err error) {
	logs.Errorf("feed: %+v", err)
}

func demoPosition() model.PositionContext {
	return model.PositionContext{
		SecurityID:      11536,
		ExchangeSegment: enum.ExchangeSegmentNSEEq,
		ProductType:     "INTRADAY",
		Symbol:          "TCS",
		BuyPrice:        decimal.NewFromInt(3500),
		Quantity:        10,
	}
}

func demoRules() []model.Rule {
	return []model.Rule{
		{
			ID:        "stop-loss-10",
			Condition: model.PointsLoss{ThresholdPoints: decimal.NewFromInt(10)},
			Action: model.PlaceProtectiveOrder{
				OffsetPoints: decimal.NewFromInt(-15),
				OrderKind:    enum.OrderKindStopLossMarket,
			},
		},
		{
			ID:        "take-profit-25",
			Condition: model.PointsGain{ThresholdPoints: decimal.NewFromInt(25)},
			Action: model.PlaceProtectiveOrder{
				OffsetPoints: decimal.NewFromInt(20),
				OrderKind:    enum.OrderKindLimit,
			},
		},
	}
}
