package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/catalog"
	"github.com/studykit/studykit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if listen != "" {
			cfg.Listen = listen
		}

		svc, settings, closer, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer closer()

		log := logrus.New()
		srv := server.New(svc, catalog.Default(), settings, log)

		httpSrv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithField("addr", cfg.Listen).Info("http server listening")
			errCh <- httpSrv.ListenAndServe()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-stop:
			log.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Bind address (default 127.0.0.1:8799)")
}
