package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sumandas0/plantmodel/internal/core"
	"github.com/sumandas0/plantmodel/internal/kernel"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/observability"
	"github.com/sumandas0/plantmodel/internal/persist"
	"github.com/sumandas0/plantmodel/internal/resilience"
	"github.com/sumandas0/plantmodel/internal/store/testutils"
	"github.com/sumandas0/plantmodel/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newManager(t *testing.T, client kernel.Client, opts ...Option) *ModelManager {
	t.Helper()
	return NewModelManager(core.NewValidator(zerolog.Nop()), client, opts...)
}

func resilientKernel(mock *testutils.MockKernel) *kernel.ResilientClient {
	logger := zerolog.Nop()
	breakers := resilience.NewCircuitBreakerManager(resilience.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 3,
	}, logger)
	retry := resilience.NewRetryManager(resilience.RetryConfig{
		Enabled:           true,
		MaxAttempts:       3,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 1,
	}, resilience.StrategyFixed)
	return kernel.NewResilientClient(mock, breakers, retry, logger)
}

func figure(t *testing.T, e *models.Entity) (float64, float64) {
	t.Helper()
	fx, err := e.Property(models.KeyFigureX).ValueIn(models.UnitPixel)
	require.NoError(t, err)
	fy, err := e.Property(models.KeyFigureY).ValueIn(models.UnitPixel)
	require.NoError(t, err)
	return fx, fy
}

func TestNewModelManager_Defaults(t *testing.T) {
	m := newManager(t, nil)
	assert.Equal(t, "unnamed", m.Model().Name())
	assert.Equal(t, DefaultScale(), m.Scale())

	m = newManager(t, nil, WithDefaults("hall", Scale{X: 10, Y: 20}))
	assert.Equal(t, "hall", m.Model().Name())
	assert.Equal(t, Scale{X: 10, Y: 20}, m.Scale())

	fresh := m.NewModel("")
	assert.Equal(t, "hall", fresh.Name())
	assert.Same(t, fresh, m.Model())
	assert.Equal(t, Scale{X: 10, Y: 20}, m.Scale())
}

func TestModelManager_SetScale(t *testing.T) {
	m := newManager(t, nil)
	require.NoError(t, m.Model().Add(testutils.Point("P1", 1000, -500)))
	require.NoError(t, m.Model().Add(testutils.Location("Loc", "LType", 200, 300)))

	for _, bad := range [][2]float64{{0, 10}, {10, -1}} {
		err := m.SetScale(bad[0], bad[1])
		var appErr *utils.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, utils.CodeInvalidInput, appErr.Code)
	}
	assert.Equal(t, DefaultScale(), m.Scale(), "a rejected scale changes nothing")

	require.NoError(t, m.SetScale(10, 25))
	assert.Equal(t, Scale{X: 10, Y: 25}, m.Scale())
	assert.True(t, m.Model().Layout().Property(models.KeyScaleX).Changed)

	p1, _ := m.Model().Lookup("P1")
	fx, fy := figure(t, p1)
	assert.InDelta(t, 100.0, fx, 1e-9)
	assert.InDelta(t, 20.0, fy, 1e-9)

	loc, _ := m.Model().Lookup("Loc")
	fx, fy = figure(t, loc)
	assert.InDelta(t, 20.0, fx, 1e-9)
	assert.InDelta(t, -12.0, fy, 1e-9)

	mm, err := p1.Property(models.KeyModelXPosition).ValueIn(models.UnitMM)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, mm, "model coordinates are not touched by a scale change")
}

func TestModelManager_MoveComponent(t *testing.T) {
	m := newManager(t, nil)
	require.NoError(t, m.SetScale(10, 25))
	require.NoError(t, m.Model().Add(testutils.Point("P1", 0, 0)))
	require.NoError(t, m.Model().Add(testutils.LocationType("LType")))

	require.NoError(t, m.MoveComponent("P1", 30, -4))

	p1, _ := m.Model().Lookup("P1")
	x := p1.Property(models.KeyModelXPosition)
	y := p1.Property(models.KeyModelYPosition)
	assert.Equal(t, 300.0, x.Number)
	assert.Equal(t, 100.0, y.Number)
	assert.True(t, x.Changed)
	assert.Equal(t, models.PropertyCoordinate, x.Type)
	assert.Equal(t, "300", p1.Text(models.KeyXPosition))
	assert.Equal(t, "100", p1.Text(models.KeyYPosition))

	px, py, err := m.PixelPosition("P1")
	require.NoError(t, err)
	assert.InDelta(t, 30.0, px, 1e-9)
	assert.InDelta(t, -4.0, py, 1e-9)

	assert.True(t, utils.IsNotFound(m.MoveComponent("P9", 1, 1)))
	_, _, err = m.PixelPosition("LType")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeInvalidInput, appErr.Code)
}

func TestModelManager_SaveAndLoadFile(t *testing.T) {
	ctx := context.Background()
	for _, ext := range []string{persist.ExtLegacy, persist.ExtUnified} {
		t.Run(ext, func(t *testing.T) {
			m := newManager(t, nil)
			original := testutils.PlantModel(t)
			m.install(original)

			path := filepath.Join(t.TempDir(), "plant"+ext)
			report, err := m.SaveFile(ctx, path, false)
			require.NoError(t, err)
			assert.True(t, report.OK())

			m.NewModel("scratch")
			report, err = m.LoadFile(ctx, path)
			require.NoError(t, err)
			assert.True(t, report.OK(), report.Errors)

			loaded := m.Model()
			assert.Equal(t, "plant", loaded.Name())
			assert.True(t, persist.Equal(original, loaded), persist.Diff(original, loaded))

			p3, ok := loaded.Lookup("P3")
			require.True(t, ok)
			fx, fy := figure(t, p3)
			assert.InDelta(t, 100.0, fx, 1e-9)
			assert.InDelta(t, 60.0, fy, 1e-9)
		})
	}
}

func TestModelManager_SaveFileRejectsInvalidModel(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	model := testutils.TwoPointModel(t)
	model.Remove("P2")
	m.install(model)

	path := filepath.Join(t.TempDir(), "broken.xml")
	report, err := m.SaveFile(ctx, path, false)
	assert.True(t, utils.IsValidation(err))
	assert.Equal(t, []string{"P1 --- P2"}, report.Rejected)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	report, err = m.SaveFile(ctx, path, true)
	require.NoError(t, err)
	assert.False(t, report.OK())
	_, statErr = os.Stat(path)
	assert.NoError(t, statErr)
}

func TestModelManager_LoadFileKeepsCurrentModelOnError(t *testing.T) {
	m := newManager(t, nil)
	current := m.NewModel("current")

	_, err := m.LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.opentcs"))
	assert.True(t, utils.IsIO(err))
	assert.Same(t, current, m.Model())
}

func TestModelManager_KernelRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := testutils.NewMockKernel()
	m := newManager(t, resilientKernel(mock))
	original := testutils.PlantModel(t)
	m.install(original)

	mock.FailNext(1, testutils.ErrKernelDown)
	report, err := m.UploadToKernel(ctx, false)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, mock.Calls(), "the transient failure is retried")

	uploaded := mock.Model()
	require.NotNil(t, uploaded)
	assert.Equal(t, "plant", uploaded.Name)
	assert.Len(t, uploaded.Points, 3)

	m.NewModel("scratch")
	report, err = m.LoadFromKernel(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), report.Errors)
	assert.True(t, persist.Equal(original, m.Model()), persist.Diff(original, m.Model()))

	p1, _ := m.Model().Lookup("P1")
	assert.True(t, p1.Has(models.KeyFigureX))
}

func TestModelManager_UploadRejectsInvalidModel(t *testing.T) {
	mock := testutils.NewMockKernel()
	m := newManager(t, resilientKernel(mock))
	model := testutils.PlantModel(t)
	model.Remove("P3")
	m.install(model)

	report, err := m.UploadToKernel(context.Background(), false)
	assert.True(t, utils.IsValidation(err))
	assert.ElementsMatch(t, []string{"P2 --- P3", "Route-01"}, report.Rejected)
	assert.Zero(t, mock.Calls())
}

func TestModelManager_KernelUnavailable(t *testing.T) {
	ctx := context.Background()
	mock := testutils.NewMockKernel()
	m := newManager(t, resilientKernel(mock))
	current := m.NewModel("current")

	mock.FailNext(100, testutils.ErrKernelDown)
	_, err := m.LoadFromKernel(ctx)
	assert.True(t, utils.IsKernelUnavailable(err))
	assert.Same(t, current, m.Model())
	assert.Equal(t, 3, mock.Calls())
}

func TestModelManager_KernelWithoutModel(t *testing.T) {
	mock := testutils.NewMockKernel()
	m := newManager(t, mock)
	current := m.NewModel("current")

	_, err := m.LoadFromKernel(context.Background())
	assert.True(t, utils.IsKernelUnavailable(err))
	assert.Same(t, current, m.Model())
	assert.Equal(t, 1, mock.Calls())
}

func TestModelManager_KernelNotConfigured(t *testing.T) {
	m := newManager(t, nil)

	_, err := m.UploadToKernel(context.Background(), false)
	assert.True(t, utils.IsPrecondition(err))
	_, err = m.LoadFromKernel(context.Background())
	assert.True(t, utils.IsPrecondition(err))
}

func TestModelManager_Observability(t *testing.T) {
	metrics := observability.NewMetricsManager(observability.MetricsConfig{Enabled: true, Namespace: "test"})
	recorder := tracetest.NewSpanRecorder()
	tracing := observability.NewTracingManagerWithProvider(observability.TracingConfig{},
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	m := newManager(t, nil, WithMetrics(metrics), WithTracing(tracing))
	model := testutils.TwoPointModel(t)
	model.Remove("P2")
	m.install(model)

	_, err := m.SaveFile(context.Background(), filepath.Join(t.TempDir(), "m.xml"), false)
	require.Error(t, err)
	require.NoError(t, m.SetScale(20, 20))

	count, err := testutil.GatherAndCount(metrics.Registry(), "test_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(metrics.Registry(), "test_scale_propagations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "model."+OpSaveFile, spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("model.rejected", 1))
}
