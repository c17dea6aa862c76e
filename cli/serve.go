package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notepost/config"
	"notepost/config/database"
	"notepost/pkg/logger"
	"notepost/router"
	"notepost/socket"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func (c *CLI) newServeCmd() *cobra.Command {
	var (
		addr       string
		initSchema bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, c.cfg, initSchema)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	cmd.Flags().BoolVar(&initSchema, "init-db", false, "recreate the entries table before serving (destroys data)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, initSchema bool) error {
	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	// A private in-memory database starts empty on every run.
	if initSchema || cfg.Database == config.MemoryDatabase {
		if err := database.InitSchema(ctx, store); err != nil {
			return err
		}
	}

	hub := socket.NewHub()
	go hub.Run(ctx)

	handler, err := router.Setup(cfg, store, hub)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Sugar.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Sugar.Infof("notepost listening on %s (%s profile)", cfg.Addr, cfg.Profile)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Sugar.Info("Server stopped")
	return nil
}
