// Package kernel talks to the plant-control kernel that executes a model.
package kernel

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/observability"
	"github.com/sumandas0/plantmodel/internal/resilience"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
	"github.com/sumandas0/plantmodel/pkg/utils"
	"go.opentelemetry.io/otel/trace"
)

const (
	CallCreatePlantModel = "create_plant_model"
	CallGetPlantModel    = "get_plant_model"
)

// Client is the kernel's model API. The transport behind it is not part of
// this module.
type Client interface {
	CreatePlantModel(ctx context.Context, model *plantmodel.Model) error
	GetPlantModel(ctx context.Context) (*plantmodel.Model, error)
}

// ResilientClient guards a Client with a circuit breaker per call and
// retries transient failures. An optional rate limiter throttles calls
// before they reach the kernel.
type ResilientClient struct {
	client   Client
	breakers *resilience.CircuitBreakerManager
	retry    *resilience.RetryManager
	limiter  *resilience.RateLimiter
	logger   zerolog.Logger
	metrics  *observability.MetricsManager
	tracing  *observability.TracingManager
}

func NewResilientClient(client Client, breakers *resilience.CircuitBreakerManager, retry *resilience.RetryManager, logger zerolog.Logger) *ResilientClient {
	return &ResilientClient{
		client:   client,
		breakers: breakers,
		retry:    retry,
		logger:   logger,
	}
}

func (c *ResilientClient) SetObservability(metrics *observability.MetricsManager, tracing *observability.TracingManager) {
	c.metrics = metrics
	c.tracing = tracing
}

func (c *ResilientClient) SetRateLimiter(limiter *resilience.RateLimiter) {
	c.limiter = limiter
}

func (c *ResilientClient) CreatePlantModel(ctx context.Context, model *plantmodel.Model) error {
	if model == nil {
		return utils.NewAppError(utils.CodePrecondition, "kernel upload requires a model", nil)
	}
	_, err := c.call(ctx, CallCreatePlantModel, func(ctx context.Context) (any, error) {
		return nil, c.client.CreatePlantModel(ctx, model)
	})
	return err
}

func (c *ResilientClient) GetPlantModel(ctx context.Context) (*plantmodel.Model, error) {
	res, err := c.call(ctx, CallGetPlantModel, func(ctx context.Context) (any, error) {
		return c.client.GetPlantModel(ctx)
	})
	if err != nil {
		return nil, err
	}
	model, _ := res.(*plantmodel.Model)
	if model == nil {
		return nil, utils.NewAppError(utils.CodeKernelUnavailable, "kernel returned no model", nil)
	}
	return model, nil
}

func (c *ResilientClient) call(ctx context.Context, name string, fn func(context.Context) (any, error)) (any, error) {
	var span trace.Span
	if c.tracing != nil {
		ctx, span = c.tracing.StartKernelCall(ctx, name)
		defer span.End()
	}

	res, err := c.retry.ExecuteWithResult(ctx, func() (any, error) {
		if err := c.limiter.Wait(ctx, name); err != nil {
			return nil, err
		}
		return c.breakers.ExecuteWithContext(ctx, name, fn)
	}, resilience.TransientErrors)

	if c.metrics != nil {
		c.metrics.RecordKernelCall(name, err)
	}
	if err == nil {
		return res, nil
	}
	if span != nil {
		c.tracing.SetSpanError(span, err)
	}

	c.logger.Error().Err(err).Str("call", name).Msg("kernel call failed")
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) && appErr.Code != utils.CodeKernelUnavailable {
		return nil, err
	}
	return nil, utils.NewAppError(utils.CodeKernelUnavailable, "kernel call failed", err).
		WithDetail("call", name).
		WithDetail("breaker_state", c.breakers.GetState(name).String())
}
