package kernel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sumandas0/plantmodel/internal/observability"
	"github.com/sumandas0/plantmodel/internal/resilience"
	"github.com/sumandas0/plantmodel/internal/store/testutils"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

func newResilient(client Client, threshold uint32, attempts int) *ResilientClient {
	logger := zerolog.Nop()
	breakers := resilience.NewCircuitBreakerManager(resilience.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: threshold,
	}, logger)
	retry := resilience.NewRetryManager(resilience.RetryConfig{
		Enabled:           true,
		MaxAttempts:       attempts,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 1,
	}, resilience.StrategyFixed)
	return NewResilientClient(client, breakers, retry, logger)
}

func sampleModel() *plantmodel.Model {
	return &plantmodel.Model{
		Version: plantmodel.Version,
		Name:    "kernel-plant",
		Points:  []plantmodel.Point{{Name: "P1"}, {Name: "P2", XPosition: 1000}},
		Paths:   []plantmodel.Path{{Name: "P1 --- P2", SourcePoint: "P1", DestinationPoint: "P2", Length: 1000}},
	}
}

func TestResilientClient_RetriesTransientFailures(t *testing.T) {
	mock := testutils.NewMockKernel()
	c := newResilient(mock, 5, 3)
	metrics := observability.NewMetricsManager(observability.MetricsConfig{Enabled: true})
	c.SetObservability(metrics, nil)

	mock.FailNext(2, testutils.ErrKernelDown)
	require.NoError(t, c.CreatePlantModel(context.Background(), sampleModel()))
	assert.Equal(t, 3, mock.Calls())

	got, err := c.GetPlantModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kernel-plant", got.Name)
	assert.Equal(t, 4, mock.Calls())
}

func TestResilientClient_PermanentFailureIsNotRetried(t *testing.T) {
	mock := testutils.NewMockKernel()
	c := newResilient(mock, 5, 3)

	mock.FailNext(1, errors.New("model rejected: duplicate point"))
	err := c.CreatePlantModel(context.Background(), sampleModel())
	assert.True(t, utils.IsKernelUnavailable(err))
	assert.Equal(t, 1, mock.Calls())
}

func TestResilientClient_BreakerOpens(t *testing.T) {
	mock := testutils.NewMockKernel()
	c := newResilient(mock, 2, 1)
	mock.FailNext(10, testutils.ErrKernelDown)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.GetPlantModel(ctx)
		assert.True(t, utils.IsKernelUnavailable(err))
	}
	assert.Equal(t, gobreaker.StateOpen, c.breakers.GetState(CallGetPlantModel))

	_, err := c.GetPlantModel(ctx)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeKernelUnavailable, appErr.Code)
	assert.Equal(t, "open", appErr.Details["breaker_state"])
	assert.True(t, resilience.IsCircuitBreakerError(err))
	assert.Equal(t, 2, mock.Calls(), "an open breaker keeps calls from the kernel")

	assert.Equal(t, gobreaker.StateClosed, c.breakers.GetState(CallCreatePlantModel), "breakers are per call")
}

func TestResilientClient_AppErrorsPassThrough(t *testing.T) {
	c := newResilient(NewFileClient(t.TempDir()), 5, 3)

	_, err := c.GetPlantModel(context.Background())
	assert.True(t, utils.IsNotFound(err))
}

func TestResilientClient_Preconditions(t *testing.T) {
	mock := testutils.NewMockKernel()
	c := newResilient(mock, 5, 3)

	assert.True(t, utils.IsPrecondition(c.CreatePlantModel(context.Background(), nil)))
	assert.Zero(t, mock.Calls())

	_, err := c.GetPlantModel(context.Background())
	assert.True(t, utils.IsKernelUnavailable(err), "a kernel without a model answers with nothing")
}

func TestResilientClient_Cancelled(t *testing.T) {
	mock := testutils.NewMockKernel()
	c := newResilient(mock, 5, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.CreatePlantModel(ctx, sampleModel())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, utils.IsKernelUnavailable(err))
}

func TestFileClient_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	c := NewFileClient(dir)
	ctx := context.Background()

	_, err := c.GetPlantModel(ctx)
	assert.True(t, utils.IsNotFound(err))

	require.NoError(t, c.CreatePlantModel(ctx, sampleModel()))
	_, err = os.Stat(filepath.Join(dir, SpoolFileName))
	require.NoError(t, err)

	got, err := c.GetPlantModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kernel-plant", got.Name)
	require.Len(t, got.Paths, 1)
	assert.Equal(t, 1000.0, got.Paths[0].Length)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestFileClient_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SpoolFileName), []byte("<model"), 0o644))

	_, err := NewFileClient(dir).GetPlantModel(context.Background())
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeInvalidInput, appErr.Code)
}

func TestResilientClient_RateLimited(t *testing.T) {
	mock := testutils.NewMockKernel()
	c := newResilient(mock, 5, 1)
	c.SetRateLimiter(resilience.NewRateLimiter(resilience.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 0.001,
		BurstSize:         1,
	}))

	require.NoError(t, c.CreatePlantModel(context.Background(), sampleModel()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetPlantModel(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, mock.Calls(), "a throttled call never reaches the kernel")
}
