package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/sumandas0/plantmodel/internal/observability"
	"github.com/sumandas0/plantmodel/internal/resilience"
)

type Config struct {
	Model       ModelConfig                 `mapstructure:"model"`
	Logging     observability.LoggingConfig `mapstructure:"logging"`
	Metrics     observability.MetricsConfig `mapstructure:"metrics"`
	Tracing     observability.TracingConfig `mapstructure:"tracing"`
	Kernel      KernelConfig                `mapstructure:"kernel"`
	Environment string                      `mapstructure:"environment" validate:"required"`
}

type ModelConfig struct {
	Name         string  `mapstructure:"name" validate:"required"`
	ScaleX       float64 `mapstructure:"scale_x" validate:"gt=0"`
	ScaleY       float64 `mapstructure:"scale_y" validate:"gt=0"`
	IgnoreErrors bool    `mapstructure:"ignore_errors"`
}

type KernelConfig struct {
	// SpoolDir, when set, selects the file based kernel client.
	SpoolDir       string                          `mapstructure:"spool_dir"`
	CircuitBreaker resilience.CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Retry          resilience.RetryConfig          `mapstructure:"retry"`
	// RetryPreset, when set, replaces Retry with a named preset.
	RetryPreset    string                          `mapstructure:"retry_preset" validate:"omitempty,oneof=fast standard"`
	RateLimit      resilience.RateLimitConfig      `mapstructure:"rate_limit"`
	Strategy       string                          `mapstructure:"strategy" validate:"oneof=exponential linear fixed"`
}

// LoadConfig reads configPath, or plantmodel.yaml from the usual locations
// when configPath is empty. PLANTMODEL_ environment variables override both.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("plantmodel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/plantmodel/")
		v.AddConfigPath("$HOME/.plantmodel/")
	}

	v.SetEnvPrefix("PLANTMODEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if preset, ok := resilience.BackoffStrategies[config.Kernel.RetryPreset]; ok {
		config.Kernel.Retry = preset
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.name", "unnamed")
	v.SetDefault("model.scale_x", 50.0)
	v.SetDefault("model.scale_y", 50.0)
	v.SetDefault("model.ignore_errors", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.time_format", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "plantmodel")
	v.SetDefault("metrics.text_file", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.jaeger_url", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.service_name", "plantmodel")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 1.0)

	v.SetDefault("kernel.spool_dir", "")
	v.SetDefault("kernel.strategy", "exponential")
	v.SetDefault("kernel.retry_preset", "")
	v.SetDefault("kernel.circuit_breaker.enabled", true)
	v.SetDefault("kernel.circuit_breaker.max_requests", 1)
	v.SetDefault("kernel.circuit_breaker.interval", "60s")
	v.SetDefault("kernel.circuit_breaker.timeout", "30s")
	v.SetDefault("kernel.circuit_breaker.failure_threshold", 5)
	v.SetDefault("kernel.retry.enabled", true)
	v.SetDefault("kernel.retry.max_attempts", 3)
	v.SetDefault("kernel.retry.initial_delay", "100ms")
	v.SetDefault("kernel.retry.max_delay", "5s")
	v.SetDefault("kernel.retry.backoff_multiplier", 2.0)
	v.SetDefault("kernel.retry.jitter_enabled", true)
	v.SetDefault("kernel.retry.jitter_factor", 0.1)
	v.SetDefault("kernel.rate_limit.enabled", false)
	v.SetDefault("kernel.rate_limit.requests_per_second", 10.0)
	v.SetDefault("kernel.rate_limit.burst_size", 2)

	v.SetDefault("environment", "development")
}

func validateConfig(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed on %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// Scale returns the configured default scale in millimetres per pixel.
func (c *Config) Scale() (float64, float64) {
	return c.Model.ScaleX, c.Model.ScaleY
}
