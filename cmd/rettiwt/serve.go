package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anatolykoptev/go-rettiwt"
	"github.com/anatolykoptev/go-rettiwt/internal/server"
	"github.com/anatolykoptev/go-rettiwt/logging"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.AppPort == 0 {
				cfg.AppPort = 3000
			}
			log, closer, err := logging.New(serverLogConfig(cfg))
			if err != nil {
				return fmt.Errorf("logging: %w", err)
			}
			if closer != nil {
				defer closer.Close()
			}
			cfg.Logger = log

			client, err := rettiwt.New(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.AppPort),
				Handler:           server.SetupRouter(client, log, viper.GetString("mode")),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening", slog.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().Int("port", 3000, "listen port")
	cmd.Flags().String("mode", "release", "gin mode (debug, release, test)")
	_ = viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("mode", cmd.Flags().Lookup("mode"))
	return cmd
}

// serverLogConfig keeps stderr logging on for the server and honours the
// --verbose, --store-logs and --log-file settings.
func serverLogConfig(cfg rettiwt.Config) logging.Config {
	lc := logging.Config{Enabled: true, StoreLogs: cfg.StoreLogs, File: cfg.LogFile, Level: slog.LevelInfo}
	if cfg.Logging {
		lc.Level = slog.LevelDebug
	}
	if lc.StoreLogs && lc.File == "" {
		lc.File = "rettiwt.log"
	}
	return lc
}
