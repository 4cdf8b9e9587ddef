package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	// TextFile, when set, receives the metrics in text exposition format on exit.
	TextFile  string `yaml:"text_file" mapstructure:"text_file"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MetricsManager owns a private registry. All record methods are no-ops
// when metrics are disabled.
type MetricsManager struct {
	config   MetricsConfig
	registry *prometheus.Registry

	operations         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	componentsLoaded   *prometheus.CounterVec
	componentsRejected *prometheus.CounterVec
	validationErrors   prometheus.Counter
	scalePropagations  prometheus.Counter
	modelComponents    prometheus.Gauge
	kernelCalls        *prometheus.CounterVec
	buildInfo          *prometheus.GaugeVec
}

func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if !config.Enabled {
		return &MetricsManager{config: config}
	}

	namespace := config.Namespace
	if namespace == "" {
		namespace = "plantmodel"
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsManager{
		config:   config,
		registry: registry,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Model operations by kind, format and outcome",
			},
			[]string{"operation", "format", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of model operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "format"},
		),
		componentsLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "components_loaded_total",
				Help:      "Components accepted into a model, by kind",
			},
			[]string{"kind"},
		),
		componentsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "components_rejected_total",
				Help:      "Components rejected by validation, by operation",
			},
			[]string{"operation"},
		),
		validationErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Distinct validation messages reported",
			},
		),
		scalePropagations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scale_propagations_total",
				Help:      "Scale changes propagated to positioned components",
			},
		),
		modelComponents: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_components",
				Help:      "Components in the current model",
			},
		),
		kernelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "kernel",
				Name:      "calls_total",
				Help:      "Calls to the plant-control kernel",
			},
			[]string{"call", "status"},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Build information",
			},
			[]string{"version", "commit"},
		),
	}
}

func (mm *MetricsManager) RecordOperation(operation, format string, err error, duration time.Duration) {
	if mm.registry == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	mm.operations.WithLabelValues(operation, format, status).Inc()
	mm.operationDuration.WithLabelValues(operation, format).Observe(duration.Seconds())
}

func (mm *MetricsManager) RecordLoaded(kind string) {
	if mm.registry == nil {
		return
	}
	mm.componentsLoaded.WithLabelValues(kind).Inc()
}

func (mm *MetricsManager) RecordRejected(operation string, components, messages int) {
	if mm.registry == nil {
		return
	}
	mm.componentsRejected.WithLabelValues(operation).Add(float64(components))
	mm.validationErrors.Add(float64(messages))
}

func (mm *MetricsManager) RecordScalePropagation() {
	if mm.registry == nil {
		return
	}
	mm.scalePropagations.Inc()
}

func (mm *MetricsManager) SetModelComponents(n int) {
	if mm.registry == nil {
		return
	}
	mm.modelComponents.Set(float64(n))
}

func (mm *MetricsManager) RecordKernelCall(call string, err error) {
	if mm.registry == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	mm.kernelCalls.WithLabelValues(call, status).Inc()
}

func (mm *MetricsManager) SetBuildInfo(version, commit string) {
	if mm.registry == nil {
		return
	}
	mm.buildInfo.WithLabelValues(version, commit).Set(1)
}

// Registry exposes the private registry, nil when disabled.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

// WriteTextFile dumps all metrics to the configured text file.
func (mm *MetricsManager) WriteTextFile() error {
	if mm.registry == nil || mm.config.TextFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(mm.config.TextFile, mm.registry)
}

func (mm *MetricsManager) IsEnabled() bool {
	return mm.config.Enabled
}
