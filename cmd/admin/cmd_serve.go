package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "astro-admin-go/internal/http"
	"astro-admin-go/internal/logging"
	"astro-admin-go/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local gateway for the browser UI",
	Long: `Run the local gateway. It serves the store over JSON on /api and
pushes every state change to clients connected on /ws/state.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides GATEWAY_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.GatewayAddr = serveAddr
	}
	cleanupLogs, err := logging.Setup(logger, cfg.LogDir, cfg.LogRetentionDays, cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("log file setup failed, logging to stderr only")
	} else {
		defer cleanupLogs()
	}

	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	hub := services.NewStateHub(logger)
	detach := hub.Attach(a.store)
	defer detach()
	go hub.Run(ctx)

	server := httpapi.NewServer(cfg, a.catalogue, a.auth, a.media, hub, logger)
	httpServer := &http.Server{
		Addr:              cfg.GatewayAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.GatewayAddr, "backend": cfg.APIBaseURL}).Info("gateway listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
	logger.Info("shutdown complete")
	return nil
}
