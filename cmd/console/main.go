package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/bassista/go_sole/internal/api/middleware"
	route "github.com/bassista/go_sole/internal/api/route"
	appctx "github.com/bassista/go_sole/internal/app"
	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/config"
	"github.com/bassista/go_sole/internal/logger"
	"github.com/bassista/go_sole/internal/realtime"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/bassista/go_sole/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/enrichman/httpgrace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	if err := logger.Configure(cfg.Misc.LogLevel, cfg.Misc.LogFormat); err != nil {
		logger.WithComponent("main").Warnf("%v, keeping defaults", err)
	}
	logger.WithComponent("main").Debugf("log level set to: %s", logger.Logger.GetLevel().String())
	logger.WithComponent("main").Infof("Console will run on port: %d", cfg.Server.Port)
	logger.WithComponent("main").Infof("Shop API: %s", cfg.API.BaseURL)

	repo, err := session.NewFileRepository(cfg.Session.FilePath)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init session repository: %v", err)
	}
	doc, err := repo.Load(context.Background())
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot load session file: %v", err)
	}
	sess := session.New(*doc, repo)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cacheStore := cache.NewStore(
		cache.WithDefaultStaleTime(cfg.Cache.StaleTime),
		cache.WithMetrics(cache.NewMetrics(reg)),
	)
	defer cacheStore.Close()

	apiClient, err := client.New(cfg.API, sess)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init api client: %v", err)
	}
	transport, err := realtime.NewTransportFromConfig(cfg, sess)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init realtime transport: %v", err)
	}
	if closer, ok := transport.(io.Closer); ok {
		defer closer.Close()
	}

	app, err := appctx.New(cfg, repo, sess, cacheStore, resource.New(apiClient), transport)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		logger.WithComponent("main").Fatalf("cannot start watchers: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	if cfg.Server.MetricsPort != 0 {
		metricsSrv := createGraceHttpServer(app.BaseCtx, "metrics-server", cfg.Server, newMetricsRouter(reg, logger.Logger))
		go func() {
			if err := metricsSrv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithComponent("main").Errorf("Metrics server error: %v", err)
			}
		}()
	}

	r := newConsoleRouter(app, logger.Logger)
	mainSrv := createGraceHttpServer(app.BaseCtx, "console-server", cfg.Server, r)

	if err := mainSrv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Fatal(err)
	}
}

// newConsoleRouter builds the console engine with the shared middleware chain.
func newConsoleRouter(app *appctx.App, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.HoneybadgerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(app.Config.Server.CORSAllowedOrigins))

	route.SetupRoutes(r, app)
	return r
}

// newMetricsRouter creates the secondary engine dedicated to /metrics.
func newMetricsRouter(reg *prometheus.Registry, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(logger))
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	return r
}

func createGraceHttpServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
