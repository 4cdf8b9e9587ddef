package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/sumandas0/plantmodel/config"
	"github.com/sumandas0/plantmodel/internal/core"
	"github.com/sumandas0/plantmodel/internal/health"
	"github.com/sumandas0/plantmodel/internal/kernel"
	"github.com/sumandas0/plantmodel/internal/manager"
	"github.com/sumandas0/plantmodel/internal/observability"
	"github.com/sumandas0/plantmodel/internal/resilience"
)

// application holds everything a command needs.
type application struct {
	cfg     *config.Config
	logger  *observability.Logger
	metrics *observability.MetricsManager
	tracing *observability.TracingManager
	manager *manager.ModelManager
	health  *health.HealthChecker
}

func newApplication(cmd *cobra.Command) (*application, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	observability.SetGlobalLogger(logger)
	zl := logger.GetZerologLogger()

	metrics := observability.NewMetricsManager(cfg.Metrics)
	metrics.SetBuildInfo(version, commit)

	tracing, err := observability.NewTracingManager(cfg.Tracing)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	checker := health.NewHealthChecker(cfg.Kernel.CircuitBreaker.Timeout)
	var client kernel.Client
	if cfg.Kernel.SpoolDir != "" {
		breakers := resilience.NewCircuitBreakerManager(cfg.Kernel.CircuitBreaker, zl)
		resilient := kernel.NewResilientClient(
			kernel.NewFileClient(cfg.Kernel.SpoolDir),
			breakers,
			resilience.NewRetryManager(cfg.Kernel.Retry, resilience.RetryStrategy(cfg.Kernel.Strategy)),
			zl.With().Str("component", "kernel").Logger(),
		)
		resilient.SetObservability(metrics, tracing)
		resilient.SetRateLimiter(resilience.NewRateLimiter(cfg.Kernel.RateLimit))
		client = resilient

		checker.RegisterComponent("kernel", health.CreateKernelHealthCheck(resilient))
		checker.RegisterComponent("circuit_breakers",
			health.CreateBreakerHealthCheck(breakers, kernel.CallCreatePlantModel, kernel.CallGetPlantModel))
	}

	scaleX, scaleY := cfg.Scale()
	mgr := manager.NewModelManager(
		core.NewValidator(zl.With().Str("component", "validator").Logger()),
		client,
		manager.WithLogger(zl.With().Str("component", "manager").Logger()),
		manager.WithMetrics(metrics),
		manager.WithTracing(tracing),
		manager.WithDefaults(cfg.Model.Name, manager.Scale{X: scaleX, Y: scaleY}),
	)

	zl.Debug().
		Str("config", configSource(configPath)).
		Str("version", version).
		Msg("plantmodel initialized")

	return &application{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		tracing: tracing,
		manager: mgr,
		health:  checker,
	}, nil
}

// Close flushes metrics and traces and releases the log file.
func (app *application) Close() error {
	var errs []error
	if err := app.metrics.WriteTextFile(); err != nil {
		errs = append(errs, fmt.Errorf("metrics dump failed: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown failed: %w", err))
	}
	if err := app.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("log close failed: %w", err))
	}
	return errors.Join(errs...)
}

func configSource(configPath string) string {
	if configPath != "" {
		return configPath
	}
	return "defaults and environment variables"
}
