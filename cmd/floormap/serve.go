package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campus-floormap/backend/internal/api"
	"github.com/campus-floormap/backend/internal/campus"
	"github.com/campus-floormap/backend/internal/config"
	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/snapshot"
	"github.com/campus-floormap/backend/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: "Start the dashboard server. It serves the generated floor maps,\n" +
		"the allocation query API and the embedded frontend on one port.",
	RunE: runServe,
}

var (
	servePort   int
	serveNoPull bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoPull, "no-refresh", false, "Do not fetch the campus feed on start or on a timer")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	client := campus.NewClient(
		cfg.Campus.BaseURL,
		cfg.Campus.Centro,
		time.Duration(cfg.Campus.TimeoutSeconds)*time.Second,
		logger,
	)

	manager := snapshot.NewManager(client, snapshot.Options{
		TempDir:     cfg.Storage.TempDirectory,
		CacheFile:   cfg.Storage.SnapshotCacheFile,
		Threads:     cfg.Advanced.DuckDBThreads,
		MemoryLimit: cfg.Advanced.DuckDBMemoryLimit,
		UseCache:    cfg.Campus.UseCachedOnFailure,
	}, logger)
	defer manager.Close()

	if err := manager.Bootstrap(); err != nil {
		logger.Warn("snapshot cache restore failed", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handlers := api.NewHandlers(&api.Dependencies{
		Snapshots:    api.ManagerProvider{Manager: manager},
		Floors:       models.DefaultFloors(),
		ProcessedDir: cfg.Storage.ProcessedDirectory,
		Registry:     registry,
		Version:      Version,
		Logger:       logger,
	})

	manager.SetNotify(func(snap models.Snapshot) {
		handlers.WS.Broadcast(snap)
		handlers.Metrics.Observe(snap.Status, snap.CourseCount)
	})

	e := newEcho(cfg)
	api.RegisterRoutes(e, handlers)
	if err := web.RegisterStaticRoutes(e); err != nil {
		return fmt.Errorf("failed to register static routes: %w", err)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if !serveNoPull && cfg.Campus.RefreshOnStart {
		manager.Refresh()
	}

	if !serveNoPull && cfg.Campus.RefreshMinutes > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(time.Duration(cfg.Campus.RefreshMinutes) * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					manager.Refresh()
				case <-ctx.Done():
					return nil
				}
			}
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		handlers.WS.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newEcho(cfg *config.AppConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e)
	api.SetVerboseErrors(cfg.Advanced.LogLevel == "debug")

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/progress") ||
				path == "/api/health" || path == "/health" || path == "/metrics"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/progress") ||
				path == "/api/ws" ||
				c.Request().Header.Get("Accept") == "text/event-stream"
		},
		ErrorMessage: "Request timeout - query took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Accept") == "text/event-stream" ||
				c.Request().URL.Path == "/api/ws"
		},
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	return e
}

func printBanner(cfg *config.AppConfig) {
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Campus Floor Map Server                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Address:    %-45s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Feed:       %-45s║\n", cfg.Campus.BaseURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")
}
