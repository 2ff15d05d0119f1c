// cmd/dashctl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/dropdash/internal/adapters/backend"
	"github.com/ammerola/dropdash/internal/adapters/export"
	"github.com/ammerola/dropdash/internal/adapters/rediscache"
	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/internal/core/ports"
	"github.com/ammerola/dropdash/internal/core/stores"
	"github.com/ammerola/dropdash/internal/pkg/config"
	"github.com/ammerola/dropdash/internal/pkg/logger"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	exportPath := flag.String("export", "", "write an xlsx snapshot to this file after refresh")
	forceOrders := flag.Bool("force-orders", true, "bypass the order cache on refresh")
	flag.Parse()

	slogger := logger.SetupLogger("debug", "json")
	slogger.Info("starting dropdash",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("backend", cfg.Backend.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	if err := run(ctx, cfg, deps, slogger, *exportPath, *forceOrders); err != nil {
		slogger.Error("refresh failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// dependencies holds the wired application components
type dependencies struct {
	backend     *backend.Client
	cache       ports.CacheRepository
	collections *stores.CollectionStore
	items       *stores.ItemStore
	orders      *stores.OrderStore
	dashboard   *stores.DashboardService
	redisClient *redis.Client
	logger      *slog.Logger
}

func initializeDependencies(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*dependencies, error) {
	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	}, slogger, func() {
		slogger.Warn("backend session expired, re-authentication required")
	})

	deps := &dependencies{
		backend: client,
		logger:  slogger,
	}

	if cfg.Redis.Enabled {
		deps.redisClient = redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr(),
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
		})
		cache := rediscache.NewCache(deps.redisClient, cfg.Redis.TTL, slogger)
		if err := cache.Ping(ctx); err != nil {
			slogger.Warn("redis unreachable, continuing without shared cache",
				slog.String("error", err.Error()))
		} else {
			deps.cache = cache
		}
	}

	deps.collections = stores.NewCollectionStore(client, stores.ReconcilerOptions{
		QueueSize:         cfg.Reconciler.QueueSize,
		RequestsPerSecond: cfg.Reconciler.RequestsPerSecond,
		Burst:             cfg.Reconciler.Burst,
	}, slogger)
	deps.items = stores.NewItemStore(client, slogger)
	deps.orders = stores.NewOrderStore(client, slogger)
	deps.dashboard = stores.NewDashboardService(
		deps.collections, deps.orders, deps.cache, cfg.Dashboard.SummaryTTL, slogger)

	return deps, nil
}

func (d *dependencies) cleanup() {
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.logger.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
}

func run(ctx context.Context, cfg *config.Config, deps *dependencies, slogger *slog.Logger,
	exportPath string, forceOrders bool) error {

	start := time.Now()

	// Fetch + reconcile runs inline here; no worker is started, so the
	// refresh is complete when FetchCollections returns.
	if err := deps.collections.FetchCollections(ctx); err != nil {
		return err
	}
	if _, err := deps.orders.FetchOrders(ctx, forceOrders); err != nil {
		return err
	}

	collections := deps.collections.Collections()
	items := make(map[int64][]domain.Item, len(collections))
	for _, c := range collections {
		list, err := deps.items.FetchItems(ctx, c.ID)
		if err != nil {
			slogger.Warn("skipping items for collection",
				slog.Int64("collection_id", c.ID),
				slog.String("error", err.Error()))
			continue
		}
		items[c.ID] = list
	}

	summary, err := deps.dashboard.Summary(ctx)
	if err != nil {
		return err
	}
	printSummary(summary, time.Since(start))

	if exportPath != "" {
		path := exportPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dashboard.ExportDir, path)
		}
		snapshot := export.Snapshot{
			Collections: collections,
			Items:       items,
			Orders:      deps.orders.Orders(),
		}
		if err := export.WriteFile(snapshot, path); err != nil {
			return err
		}
		slogger.Info("snapshot exported", slog.String("path", path))
	}
	return nil
}

func printSummary(s *stores.Summary, elapsed time.Duration) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Collections\t%d (%d active)\n", s.Collections, s.ActiveCollections)
	fmt.Fprintf(w, "Items\t%d (%d available)\n", s.Items, s.AvailableItems)
	fmt.Fprintf(w, "Capital invested\t%s\n", s.CapitalInvested.StringFixed(2))
	fmt.Fprintf(w, "Total sales\t%s\n", s.TotalSales.StringFixed(2))
	fmt.Fprintf(w, "Orders\t%d (%d paid)\n", s.Orders, s.PaidOrders)
	fmt.Fprintf(w, "Paid revenue\t%s\n", s.PaidRevenue.StringFixed(2))
	fmt.Fprintf(w, "Outstanding\t%s\n", s.OutstandingTotal.StringFixed(2))
	fmt.Fprintf(w, "Refreshed in\t%s\n", elapsed.Round(time.Millisecond))
	w.Flush()
}
