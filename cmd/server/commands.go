package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/handler"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configFile string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "exchange-rate-tracker",
		Short:        "Daily exchange rate fetcher and reporter",
		Version:      "v1.0.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Debug flag")

	rootCmd.AddCommand(
		serveCommand(opts),
		ingestCommand(opts),
		reportCommand(opts),
	)

	return rootCmd
}

func serveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the exchange rate HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ratesHandler := handler.NewRatesHandler(a.ingestion, a.reporting, a.logger)
			server := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           handler.NewRouter(ratesHandler, a.logger),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Server listening", map[string]interface{}{"addr": server.Addr})
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down server", nil)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func ingestCommand(opts *rootOptions) *cobra.Command {
	var standalone bool
	var after time.Duration

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch today's rates and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !standalone {
				if _, err := a.ingestion.Ingest(ctx); err != nil {
					return errors.New(apperrors.Message(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), handler.IngestSuccessMessage)
				return nil
			}

			for {
				if _, err := a.ingestion.Ingest(ctx); err != nil {
					a.logger.Error("Scheduled ingestion failed", map[string]interface{}{
						"error": apperrors.Message(err),
					})
				}

				select {
				case <-time.After(after):
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	ingestCmd.Flags().BoolVar(&standalone, "standalone", false, "Keep running and ingest on a fixed interval")
	ingestCmd.Flags().DurationVar(&after, "after", 24*time.Hour, "Interval between standalone ingestions")

	return ingestCmd
}

func reportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print today's rates and their change as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.reporting.Report(cmd.Context())
			if err != nil {
				return errors.New(apperrors.Message(err))
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}
}
