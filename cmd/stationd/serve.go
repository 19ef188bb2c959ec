package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"

	"filament-station/config"
	"filament-station/internal/api"
	"filament-station/internal/camera"
	"filament-station/internal/db"
	"filament-station/internal/notification"
	"filament-station/internal/station"
	"filament-station/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the kiosk daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	logger := log.New(os.Stdout, "stationd ", log.LstdFlags)

	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	logger.Printf("configuration loaded from %s (%d locations, pairing window %s)",
		path, len(cfg.Station.Locations), cfg.Station.PairWindow)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Push notifications are optional on a kiosk; without VAPID keys the
	// station simply runs without them.
	var webpushOptions *webpush.Options
	var notifier station.Notifier
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		workerPool.Start(ctx)
		notifier = workerPool
		logger.Printf("push notifications enabled (%d workers)", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	st := station.New(cfg, appStore, notifier)
	go st.Run(ctx)

	// A dead camera is reported once; manual actions keep working.
	source, err := camera.NewZbarcamSource(&cfg.Camera)
	if err != nil {
		logger.Printf("camera unavailable: %v", err)
		st.ReportStatus("Camera unavailable. Manual actions still work.")
	} else {
		poller := camera.NewPoller(cfg, source, st.EnqueueScan, st.ReportStatus)
		go poller.Run(ctx)
	}

	router := api.NewRouter(cfg, appStore, st, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Stop the camera and station loops before the HTTP server drains.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	logger.Println("Server gracefully stopped")
	return nil
}
