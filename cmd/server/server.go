package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/acolella/linkshort/cmd"
	"github.com/acolella/linkshort/internal/api"
	"github.com/acolella/linkshort/internal/cache"
	"github.com/acolella/linkshort/internal/config"
	"github.com/acolella/linkshort/internal/geoip"
	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/monitor"
	"github.com/acolella/linkshort/internal/repository"
	"github.com/acolella/linkshort/internal/services"
	"github.com/acolella/linkshort/internal/slug"
	"github.com/acolella/linkshort/internal/workers"
)

// RunServerCmd is the 'run-server' command: it wires the whole service
// together and runs it until a shutdown signal arrives.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Start the link shortener API server and background workers",
	Long: `Initializes the database, starts the click worker pool and the
destination monitor, then serves the HTTP API until SIGINT/SIGTERM.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}

		linkRepo := repository.NewLinkRepository(db)
		clickRepo := repository.NewClickRepository(db)

		destCache, err := cache.NewDestinationCache()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize destination cache")
		}
		defer destCache.Close()

		generator := slug.NewGenerator(cfg.Slug.AutoMinLength, cfg.Slug.AutoMaxLength)
		linkService := services.NewLinkService(linkRepo, generator, destCache, cfg.Slug.MinLength, cfg.Slug.MaxLength)
		statsService := services.NewStatsService(linkRepo, clickRepo)

		// GeoIP resolver is process-scoped: opened here, closed on shutdown,
		// injected into the worker pool.
		geoTimeout := time.Duration(cfg.GeoIP.TimeoutSeconds) * time.Second
		resolver := geoip.NewHTTPResolver(cfg.GeoIP.Endpoint, geoTimeout)
		defer resolver.Close()

		clickEvents := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		workerWG := workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEvents, clickRepo, resolver, geoTimeout)
		log.Info().Int("buffer", cfg.Analytics.BufferSize).
			Int("workers", cfg.Analytics.WorkerCount).Msg("Click pipeline started")

		monitorCtx, stopMonitor := context.WithCancel(context.Background())
		defer stopMonitor()
		destMonitor := monitor.NewDestinationMonitor(linkRepo, time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute)
		go destMonitor.Start(monitorCtx)

		router := gin.Default()
		api.SetupRoutes(router, linkService, statsService, clickEvents, cfg.Server.BaseURL)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("HTTP server failed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}

		// No more redirects can enqueue events now; close the channel and
		// let the workers drain what is left.
		stopMonitor()
		close(clickEvents)
		drained := make(chan struct{})
		go func() {
			workerWG.Wait()
			close(drained)
		}()
		select {
		case <-drained:
			log.Info().Msg("Click workers drained")
		case <-time.After(10 * time.Second):
			log.Warn().Msg("Timed out waiting for click workers")
		}

		log.Info().Msg("Server stopped")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
