package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"pantry/internal/client"
	"pantry/internal/configuration"
	"pantry/internal/database"
	"pantry/internal/logger"
	"pantry/internal/server"
	"pantry/internal/session"
	"pantry/internal/shoppinglist"
	"pantry/internal/tracker"
)

const logFileName = "pantry.log"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the background refresh and session check",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func runServe(appContext context.Context) (err error) {
	logOutput := io.Writer(os.Stdout)
	appLogger := logger.NewLogger(logger.LevelInfo, logOutput)
	defer func() {
		_ = appLogger.Sync()
	}()

	defer func() {
		if r := recover(); r != nil {
			appLogger.Errorf("APPLICATION CRASHED: %+v", r)
			err = errors.Errorf("application crashed: %v", r)
		}
	}()

	config, err := configuration.GetConfig(configPath)
	if err != nil {
		appLogger.Error("Error getting configuration from", configPath+":", err)
		return err
	}

	if config.LogToFile {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			appLogger.Error("Error opening log file:", err)
			return err
		}
		defer func() {
			if err := logFile.Close(); err != nil {
				appLogger.Error("Error closing log file:", err)
			}
		}()
		logOutput = io.MultiWriter(logOutput, logFile)
	}
	appLogger = logger.NewLogger(config.LogLevel, logOutput)

	if config.LogLevel >= logger.LevelDebug {
		conf, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			appLogger.Error("Error marshalling Config to JSON:", err)
			return err
		}
		appLogger.Debugf("Config:\n%s", conf)
	}

	appLogger.Info("Opening", config.StorageBackend, "storage")
	kv, err := database.Open(appContext, config.StorageBackend, config.StorageURI)
	if err != nil {
		appLogger.Error("Error opening storage:", err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := kv.Close(closeCtx); err != nil {
			appLogger.Error("Error closing storage:", err)
		}
	}()
	db := database.New(kv, appLogger)

	tr := tracker.New(db, appLogger, tracker.WithPruning(config.PruneOrphanedTimestamps))
	if err = tr.LoadInitial(appContext); err != nil {
		appLogger.Error("Error loading tracked items:", err)
		return err
	}

	guard := session.New(db, appLogger)
	if !guard.ValidateAuth(appContext) {
		appLogger.Info("No valid session at startup, login required")
	}

	httpClient := client.Client{
		Client: &http.Client{Timeout: 15 * time.Second},
		FCMKey: config.FCMKey,
		Logger: appLogger,
	}
	sharer := client.FCMSharer{Client: httpClient, DeviceTokens: config.ShareDeviceTokens}
	if !sharer.Available() {
		appLogger.Info("Push sharing not configured, shared lists go to the clipboard")
	}
	list := shoppinglist.New(db, tr, sharer, appLogger, config.CheckoutClearDelay)

	srv := server.Server{
		DB:             db,
		Tracker:        tr,
		List:           list,
		Guard:          guard,
		Logger:         appLogger,
		AuthSecretKey:  config.AuthSecretKey,
		PassphraseHash: config.AuthPassphraseHash,
	}

	appLogger.Info("Starting tracker refresh with interval:", config.RefreshInterval)
	go tr.RefreshInInterval(appContext, time.NewTicker(config.RefreshInterval))
	appLogger.Info("Starting session check with interval:", config.SessionCheckInterval)
	go guard.CheckInInterval(appContext, time.NewTicker(config.SessionCheckInterval))

	httpSrv := &http.Server{
		Handler:      srv.Router(),
		Addr:         config.ServerAddress,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Serving on", httpSrv.Addr)
		serveErr <- httpSrv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		appLogger.Error("Error serving HTTP:", err)
		return err
	case <-appContext.Done():
	}

	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = httpSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error shutting down HTTP server:", err)
	}
	if err = list.Flush(shutdownCtx); err != nil {
		appLogger.Error("Error flushing pending checkout:", err)
	}
	return nil
}
