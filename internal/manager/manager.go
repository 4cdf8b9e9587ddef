// Package manager drives the load and save lifecycle of the current plant
// model and keeps its presentation coordinates in step with the scale.
package manager

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sumandas0/plantmodel/internal/codec"
	"github.com/sumandas0/plantmodel/internal/codec/unified"
	"github.com/sumandas0/plantmodel/internal/core"
	"github.com/sumandas0/plantmodel/internal/kernel"
	"github.com/sumandas0/plantmodel/internal/models"
	"github.com/sumandas0/plantmodel/internal/observability"
	"github.com/sumandas0/plantmodel/internal/persist"
	"github.com/sumandas0/plantmodel/internal/store/memory"
	"github.com/sumandas0/plantmodel/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	OpLoadFile       = "load_file"
	OpSaveFile       = "save_file"
	OpLoadFromKernel = "load_kernel"
	OpUploadToKernel = "upload_kernel"

	formatKernel = "kernel"
)

type Option func(*ModelManager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *ModelManager) { m.logger = logger }
}

func WithMetrics(metrics *observability.MetricsManager) Option {
	return func(m *ModelManager) { m.metrics = metrics }
}

func WithTracing(tracing *observability.TracingManager) Option {
	return func(m *ModelManager) { m.tracing = tracing }
}

func WithFormats(formats *persist.Formats) Option {
	return func(m *ModelManager) { m.formats = formats }
}

// WithDefaults sets the name and scale of models created by NewModel.
func WithDefaults(name string, scale Scale) Option {
	return func(m *ModelManager) {
		m.defaultName = name
		m.defaultScale = scale
	}
}

// ModelManager owns the current model. Methods are safe for concurrent use
// but serialize on one lock.
type ModelManager struct {
	validator *core.Validator
	kernel    kernel.Client
	formats   *persist.Formats
	persistor *persist.Persistor
	reader    *persist.Reader
	converter *unified.Converter

	logger  zerolog.Logger
	metrics *observability.MetricsManager
	tracing *observability.TracingManager

	defaultName  string
	defaultScale Scale

	mu    sync.Mutex
	model *memory.SystemModel
}

// NewModelManager creates a manager holding an empty model. kernelClient may
// be nil, in which case kernel operations fail with PRECONDITION_FAILED.
func NewModelManager(validator *core.Validator, kernelClient kernel.Client, opts ...Option) *ModelManager {
	m := &ModelManager{
		validator:    validator,
		kernel:       kernelClient,
		logger:       zerolog.Nop(),
		metrics:      observability.NewMetricsManager(observability.MetricsConfig{}),
		defaultName:  "unnamed",
		defaultScale: DefaultScale(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tracing == nil {
		m.tracing, _ = observability.NewTracingManager(observability.TracingConfig{})
	}
	if m.formats == nil {
		m.formats = persist.DefaultFormats(m.logger)
	}
	m.persistor = persist.NewPersistor(validator, m.formats, m.logger)
	m.reader = persist.NewReader(validator, m.formats, m.logger)
	m.converter = unified.NewConverter(m.logger.With().Str("codec", codec.FormatUnified).Logger())
	m.model = m.newModel(m.defaultName)
	return m
}

// Model returns the current model.
func (m *ModelManager) Model() *memory.SystemModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// NewModel replaces the current model with an empty one.
func (m *ModelManager) NewModel(name string) *memory.SystemModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		name = m.defaultName
	}
	m.model = m.newModel(name)
	m.metrics.SetModelComponents(m.model.Len())
	return m.model
}

func (m *ModelManager) newModel(name string) *memory.SystemModel {
	model := memory.NewSystemModel(name)
	setScale(model.Layout(), m.defaultScale)
	return model
}

// Validate runs a whole-model validation pass over the current model.
func (m *ModelManager) Validate() (*core.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validator.ValidateModel(m.model)
}

// LoadFile replaces the current model with the valid part of the file at
// path. The report lists what was left out.
func (m *ModelManager) LoadFile(ctx context.Context, path string) (*core.Report, error) {
	format, _ := persist.FormatFor(path)
	ctx, span := m.tracing.StartModelOperation(ctx, OpLoadFile, "", path)
	defer span.End()
	start := time.Now()

	model, report, err := m.reader.Deserialize(path)
	m.finish(ctx, span, OpLoadFile, format, start, report, err)
	if err != nil {
		return nil, err
	}
	m.install(model)
	return report, nil
}

// SaveFile writes the current model to path. With validation errors and
// ignoreErrors unset nothing is written and the report is returned with a
// VALIDATION_ERROR.
func (m *ModelManager) SaveFile(ctx context.Context, path string, ignoreErrors bool) (*core.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	format, _ := persist.FormatFor(path)
	ctx, span := m.tracing.StartModelOperation(ctx, OpSaveFile, m.model.Name(), path)
	defer span.End()
	start := time.Now()

	report, err := m.persistor.Serialize(m.model, "", path, ignoreErrors)
	m.finish(ctx, span, OpSaveFile, format, start, report, err)
	return report, err
}

// UploadToKernel validates the current model and hands a snapshot of it to
// the kernel.
func (m *ModelManager) UploadToKernel(ctx context.Context, ignoreErrors bool) (*core.Report, error) {
	if m.kernel == nil {
		return nil, utils.NewAppError(utils.CodePrecondition, "no kernel configured", nil)
	}
	m.mu.Lock()
	snapshot := m.model.Clone()
	m.mu.Unlock()

	ctx, span := m.tracing.StartModelOperation(ctx, OpUploadToKernel, snapshot.Name(), formatKernel)
	defer span.End()
	start := time.Now()

	report, err := m.persistor.Check(snapshot, ignoreErrors)
	if err == nil {
		transfer, exportErr := m.converter.ExportModel(snapshot)
		if exportErr != nil {
			err = exportErr
		} else {
			err = m.kernel.CreatePlantModel(ctx, transfer)
		}
	}
	m.finish(ctx, span, OpUploadToKernel, formatKernel, start, report, err)
	return report, err
}

// LoadFromKernel replaces the current model with the kernel's, validated the
// same way as a file read.
func (m *ModelManager) LoadFromKernel(ctx context.Context) (*core.Report, error) {
	if m.kernel == nil {
		return nil, utils.NewAppError(utils.CodePrecondition, "no kernel configured", nil)
	}
	ctx, span := m.tracing.StartModelOperation(ctx, OpLoadFromKernel, "", formatKernel)
	defer span.End()
	start := time.Now()

	var model *memory.SystemModel
	var report *core.Report
	transfer, err := m.kernel.GetPlantModel(ctx)
	if err == nil && transfer == nil {
		err = utils.NewAppError(utils.CodeKernelUnavailable, "kernel returned no model", nil)
	}
	if err == nil {
		model, report, err = m.reader.Load(m.converter.Import(transfer))
	}
	m.finish(ctx, span, OpLoadFromKernel, formatKernel, start, report, err)
	if err != nil {
		return nil, err
	}
	m.install(model)
	return report, nil
}

func (m *ModelManager) install(model *memory.SystemModel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
	m.refreshFigures()
	for _, e := range model.Components() {
		m.metrics.RecordLoaded(string(e.Kind))
	}
	m.metrics.SetModelComponents(model.Len())
}

func (m *ModelManager) finish(ctx context.Context, span trace.Span, op, format string, start time.Time, report *core.Report, err error) {
	duration := time.Since(start)
	m.metrics.RecordOperation(op, format, err, duration)

	logger := m.logger.With().Str("operation", op).Str("format", format).Dur("duration", duration).Logger()
	if report != nil {
		m.metrics.RecordRejected(op, len(report.Rejected), len(report.Errors))
		span.SetAttributes(
			attribute.Int("model.rejected", len(report.Rejected)),
			attribute.Int("model.errors", len(report.Errors)),
		)
		for _, msg := range report.Errors {
			logger.Warn().Msg(msg)
		}
	}
	if err != nil {
		m.tracing.SetSpanError(span, err)
		logger.Error().Err(err).Msg("model operation failed")
		return
	}
	logger.Info().Msg("model operation completed")
}

// Scale returns the scale stored on the layout of the current model.
func (m *ModelManager) Scale() Scale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ScaleOf(m.model.Layout())
}

// SetScale stores a new scale and recomputes the pixel position of every
// positioned component.
func (m *ModelManager) SetScale(x, y float64) error {
	s := Scale{X: x, Y: y}
	if !s.Valid() {
		return utils.NewAppError(utils.CodeInvalidInput, "scale factors must be positive", nil).
			WithDetail("x", x).
			WithDetail("y", y)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	setScale(m.model.Layout(), s)
	m.refreshFigures()
	m.metrics.RecordScalePropagation()
	return nil
}

// MoveComponent places a point or location at a pixel position, updating
// its model coordinates.
func (m *ModelManager) MoveComponent(name string, px, py float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.positioned(name)
	if err != nil {
		return err
	}
	x, y := ScaleOf(m.model.Layout()).ToModel(px, py)
	setNumber(e, models.KeyModelXPosition, models.NewCoordinate(x, models.UnitMM))
	setNumber(e, models.KeyModelYPosition, models.NewCoordinate(y, models.UnitMM))
	setText(e, models.KeyXPosition, strconv.FormatInt(int64(math.Round(x)), 10))
	setText(e, models.KeyYPosition, strconv.FormatInt(int64(math.Round(y)), 10))
	e.SetProperty(models.KeyFigureX, models.NewCoordinate(px, models.UnitPixel))
	e.SetProperty(models.KeyFigureY, models.NewCoordinate(py, models.UnitPixel))
	return nil
}

// PixelPosition returns where a point or location is drawn.
func (m *ModelManager) PixelPosition(name string) (float64, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := m.positioned(name)
	if err != nil {
		return 0, 0, err
	}
	x, _ := e.Property(models.KeyModelXPosition).ValueIn(models.UnitMM)
	y, _ := e.Property(models.KeyModelYPosition).ValueIn(models.UnitMM)
	px, py := ScaleOf(m.model.Layout()).ToPixel(x, y)
	return px, py, nil
}

func (m *ModelManager) positioned(name string) (*models.Entity, error) {
	e, ok := m.model.Lookup(name)
	if !ok {
		return nil, utils.NewAppError(utils.CodeNotFound, "component not found", nil).WithDetail("name", name)
	}
	if e.Kind != models.KindPoint && e.Kind != models.KindLocation {
		return nil, utils.NewAppError(utils.CodeInvalidInput, "component has no position", nil).
			WithDetail("name", name).
			WithDetail("kind", string(e.Kind))
	}
	return e, nil
}

// refreshFigures derives the pixel position of points and locations from
// their model coordinates. Callers hold m.mu.
func (m *ModelManager) refreshFigures() {
	s := ScaleOf(m.model.Layout())
	for _, kind := range []models.Kind{models.KindPoint, models.KindLocation} {
		for _, e := range m.model.ComponentsOfKind(kind) {
			x, errX := e.Property(models.KeyModelXPosition).ValueIn(models.UnitMM)
			y, errY := e.Property(models.KeyModelYPosition).ValueIn(models.UnitMM)
			if errX != nil || errY != nil {
				continue
			}
			px, py := s.ToPixel(x, y)
			e.SetProperty(models.KeyFigureX, models.NewCoordinate(px, models.UnitPixel))
			e.SetProperty(models.KeyFigureY, models.NewCoordinate(py, models.UnitPixel))
		}
	}
}

func setScale(layout *models.Entity, s Scale) {
	setNumber(layout, models.KeyScaleX, models.NewLength(s.X, models.UnitMM))
	setNumber(layout, models.KeyScaleY, models.NewLength(s.Y, models.UnitMM))
}

// setNumber updates a numeric property in place, or stores fresh when the
// existing value is missing or not numeric.
func setNumber(e *models.Entity, key string, fresh *models.Property) {
	if p := e.Property(key); p != nil && p.Type.Numeric() {
		p.Unit = fresh.Unit
		p.SetNumber(fresh.Number)
		return
	}
	fresh.Changed = true
	e.SetProperty(key, fresh)
}

func setText(e *models.Entity, key, v string) {
	if p := e.Property(key); p != nil && p.Type == models.PropertyString {
		p.SetText(v)
		return
	}
	e.SetProperty(key, models.NewString(v))
}
