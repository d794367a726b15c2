package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/clients"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/domain/order"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/handler"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/listener"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/internal/storage/postgres"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/pkg/health"
	"github.com/NextLogic2025/AplicacionCafrilosa-sub006/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the notification
// listener, and handles graceful shutdown. It is the single wiring point for
// the service.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Collaborator clients share one HTTP client with the configured timeout.
	httpClient := &http.Client{Timeout: cfg.Collaborators.Timeout}
	inventoryClient := clients.NewInventoryClient(cfg.Collaborators.InventoryURL, httpClient)
	catalogClient := clients.NewCatalogClient(cfg.Collaborators.CatalogURL, httpClient)
	cartClient := clients.NewCartClient(cfg.Collaborators.CartURL, httpClient)
	warehouseClient := clients.NewWarehouseClient(cfg.Collaborators.WarehouseURL, httpClient)

	// Domain services.
	orderRepo := postgres.NewOrderRepository(pool)
	compensator := order.NewCompensator(inventoryClient, lg.Named("compensator"))
	orderService := order.NewService(cartClient, inventoryClient, catalogClient, catalogClient, orderRepo, compensator, lg.Named("orders"))
	statusService := order.NewStatusService(orderRepo, compensator, lg.Named("status"))

	// Notification listener bridging warehouse events into status changes.
	lst := listener.New(listener.Config{
		DatabaseURL: cfg.DatabaseURL,
		Backoff:     cfg.Listener.Backoff,
	}, lg.Named("listener"))
	listener.NewHandlers(orderRepo, statusService, warehouseClient, lg.Named("events")).Register(lst)

	// Health checks: the listener is a foreground-required subsystem, so it
	// gates readiness alongside the database.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("listener", time.Second, lst.Ready)
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// HTTP surface.
	h := handler.New(orderService, statusService, orderRepo)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "order-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.RequestID(),
			httpmiddleware.LogRequests(),
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return lst.Run(gctx)
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	// Graceful shutdown: stop taking traffic, drain, then stop the server.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		return nil
	})

	healthSvc.SetReady(true)
	return g.Wait()
}
