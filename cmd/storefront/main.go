package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/coin-storefront/internal/cart"
	"github.com/jcmexdev/coin-storefront/internal/catalog"
	"github.com/jcmexdev/coin-storefront/internal/checkout"
	"github.com/jcmexdev/coin-storefront/internal/config"
	"github.com/jcmexdev/coin-storefront/internal/httpx"
	"github.com/jcmexdev/coin-storefront/internal/orderlog"
	"github.com/jcmexdev/coin-storefront/internal/orderlog/sqlite"
	"github.com/jcmexdev/coin-storefront/internal/pkg/cache"
	"github.com/jcmexdev/coin-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/coin-storefront/internal/storefront"
	"github.com/jcmexdev/coin-storefront/web"
)

const catalogFetchTimeout = 10 * time.Second

func main() {
	telemetry.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var catalogCache cache.Cache
	if cfg.RedisAddr != "" {
		catalogCache = cache.NewRedisCache(cfg.RedisAddr, "storefront")
		slog.Info("catalog cache enabled", "redis_addr", cfg.RedisAddr, "ttl", cfg.Catalog.CacheTTL)
	}

	var orders orderlog.Repository
	if cfg.OrderLogPath != "" {
		repo, err := sqlite.Open(cfg.OrderLogPath)
		if err != nil {
			slog.Error("failed to open order log", "path", cfg.OrderLogPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		orders = repo
		slog.Info("order log enabled", "path", cfg.OrderLogPath)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	catalogClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   catalogFetchTimeout,
	}
	webhookClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.Checkout.Timeout,
	}

	cat := catalog.New(catalog.NewHTTPFetcher(cfg.Catalog.URL, catalogClient, catalogCache, cfg.Catalog.CacheTTL))

	sessions := storefront.NewStore(cfg.Sessions.TTL)
	go sessions.Run(ctx, cfg.Sessions.SweepInterval)

	submitOpts := []checkout.Option{checkout.WithLocation(loc)}
	if orders != nil {
		submitOpts = append(submitOpts, checkout.WithOrderLog(orders))
	}
	submitter := checkout.NewSubmitter(cfg.Checkout.WebhookURL, webhookClient, submitOpts...)

	builder := cart.NewBuilder(cfg.Pricing.CustomQuantityPriceMultiplier, cfg.Pricing.MinimumCustomQuantity)
	shop := storefront.NewShop(cat, sessions, builder, submitter)

	page, err := httpx.ParsePage(web.Templates())
	if err != nil {
		slog.Error("failed to parse page template", "error", err)
		os.Exit(1)
	}
	handler := httpx.NewHandler(shop, orders, page)
	router := httpx.NewRouter(handler, web.Static())

	srv := &http.Server{
		Handler:           otelhttp.NewHandler(router, "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The default catalog URL is served by this process, so listen before
	// the first fetch.
	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		slog.Error("failed to listen", "addr", cfg.HTTPAddr, "error", err)
		os.Exit(1)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(lis)
	}()
	slog.Info("storefront running", "addr", lis.Addr().String())

	cat.Start(ctx)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "error", err)
		}
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
