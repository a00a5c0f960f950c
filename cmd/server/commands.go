package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/damon-houk/dca-calculator/internal/application/service"
	"github.com/damon-houk/dca-calculator/internal/config"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/api"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/db"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/handler"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// newRootCmd creates the root command. Without a subcommand it serves the API.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dca-server",
		Short: "DCA calculator API",
		Long: `dca-server stores daily cryptocurrency prices, serves price lookups,
fetches the USD to EUR conversion rate and simulates dollar-cost averaging plans.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSeedCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Seed the store if empty and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the price store with synthetic history if it is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			return a.seed(cmd.Context())
		},
	}
}

// app holds the long-lived resources shared by the commands
type app struct {
	cfg    *config.Config
	log    logger.Logger
	db     *badger.DB
	prices *db.BadgerPriceRepository
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logger.NewJSONLogger(nil, level)
	logger.SetDefaultLogger(log)

	badgerDB, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	repo, err := db.NewBadgerPriceRepository(badgerDB)
	if err != nil {
		badgerDB.Close()
		return nil, err
	}

	log.Info("Price store opened", map[string]interface{}{
		"data_dir": cfg.DataDir,
	})

	return &app{cfg: cfg, log: log, db: badgerDB, prices: repo}, nil
}

func (a *app) seed(ctx context.Context) error {
	return service.NewSeedService(a.prices, a.log).Initialize(ctx)
}

func (a *app) close() {
	if err := a.prices.Close(); err != nil {
		a.log.Error("Error releasing id sequence", map[string]interface{}{"error": err.Error()})
	}
	if err := a.db.Close(); err != nil {
		a.log.Error("Error closing BadgerDB", map[string]interface{}{"error": err.Error()})
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.SeedOnStart {
		if err := a.seed(ctx); err != nil {
			return fmt.Errorf("failed to seed price store: %w", err)
		}
	}

	rates := api.NewRateAPIClient(a.cfg.RateAPIURL, a.log)
	prices := service.NewPriceService(a.prices, a.log)
	dca := service.NewDCAService(prices, rates, a.log)

	router := handler.NewRouter(a.log,
		handler.NewPriceHandler(prices, a.log),
		handler.NewRateHandler(rates, a.log),
		handler.NewDCAHandler(dca, a.log),
	)

	server := &http.Server{
		Addr:    a.cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server listening", map[string]interface{}{
			"addr":         server.Addr,
			"rate_api_url": a.cfg.RateAPIURL,
		})
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
