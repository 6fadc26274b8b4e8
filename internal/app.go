package internal

import (
	"context"
	"fmt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"zoblogs/internal/controllers"
	"zoblogs/internal/providers"
	"zoblogs/internal/scheduler"
	"zoblogs/internal/structures"
)

type App struct {
	WebServer *http.Server
}

// newHandler mounts the page and API routes behind the metrics middleware,
// next to the uninstrumented infrastructure routes.
func newHandler(healthController *controllers.HealthController, conf *structures.Config, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	infra := providers.NewRouterProvider()
	infra.Get("/health", http.HandlerFunc(healthController.Health))
	if conf.Metrics.Enabled {
		infra.Get("/metrics", promhttp.Handler())
	}

	mux := http.NewServeMux()
	for _, route := range infra.GetRoutes() {
		mux.Handle(route.Url, route.Handler)
	}
	mux.Handle("/", providers.MetricsMiddleware(metrics, apiMux))
	return mux
}

func NewApp(healthController *controllers.HealthController, scheduler scheduler.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	mux := newHandler(healthController, conf, router, metrics)

	logger.Infof(providers.TypeApp, "Starting %s for platform %s on chain %d", conf.AppName, conf.Platform.Name, conf.Platform.ChainID)
	if conf.Wallet.ConnectProjectId == "" {
		logger.Warnf(providers.TypeApp, "Wallet project id is not configured, post creation is disabled")
	}

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	scheduler.WarmUp()
	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
