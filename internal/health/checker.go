package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"github.com/sumandas0/plantmodel/internal/resilience"
	"github.com/sumandas0/plantmodel/pkg/plantmodel"
	"github.com/sumandas0/plantmodel/pkg/utils"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Name      string            `json:"name"`
	Status    Status            `json:"status"`
	Message   string            `json:"message,omitempty"`
	LastCheck time.Time         `json:"last_check"`
	Duration  time.Duration     `json:"duration_ms"`
	Details   map[string]string `json:"details,omitempty"`
}

type SystemHealth struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components"`
	Summary    HealthSummary              `json:"summary"`
}

type HealthSummary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Degraded  int `json:"degraded"`
}

// Names returns the component names in a stable order.
func (s SystemHealth) Names() []string {
	names := make([]string, 0, len(s.Components))
	for name := range s.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthChecker runs the registered checks concurrently, each bounded by
// the checker timeout.
type HealthChecker struct {
	components map[string]HealthCheckFunc
	mutex      sync.RWMutex
	timeout    time.Duration
}

type HealthCheckFunc func(ctx context.Context) ComponentHealth

func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &HealthChecker{
		components: make(map[string]HealthCheckFunc),
		timeout:    timeout,
	}
}

func (hc *HealthChecker) RegisterComponent(name string, checkFunc HealthCheckFunc) {
	hc.mutex.Lock()
	defer hc.mutex.Unlock()
	hc.components[name] = checkFunc
}

// Check performs health checks on all registered components
func (hc *HealthChecker) Check(ctx context.Context) SystemHealth {
	hc.mutex.RLock()
	components := make(map[string]HealthCheckFunc, len(hc.components))
	for name, checkFunc := range hc.components {
		components[name] = checkFunc
	}
	hc.mutex.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	resultChan := make(chan ComponentHealth, len(components))
	var wg sync.WaitGroup

	for name, checkFunc := range components {
		wg.Add(1)
		go func(n string, cf HealthCheckFunc) {
			defer wg.Done()

			done := make(chan ComponentHealth, 1)
			go func() {
				result := cf(checkCtx)
				result.Name = n
				done <- result
			}()

			select {
			case result := <-done:
				resultChan <- result
			case <-checkCtx.Done():
				resultChan <- ComponentHealth{
					Name:      n,
					Status:    StatusUnhealthy,
					Message:   "health check timeout",
					LastCheck: time.Now(),
					Duration:  hc.timeout,
				}
			}
		}(name, checkFunc)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make(map[string]ComponentHealth)
	for result := range resultChan {
		results[result.Name] = result
	}

	return calculateSystemHealth(results)
}

func calculateSystemHealth(results map[string]ComponentHealth) SystemHealth {
	summary := HealthSummary{
		Total: len(results),
	}

	for _, result := range results {
		switch result.Status {
		case StatusHealthy:
			summary.Healthy++
		case StatusUnhealthy:
			summary.Unhealthy++
		case StatusDegraded:
			summary.Degraded++
		}
	}

	overallStatus := StatusHealthy
	if summary.Unhealthy > 0 {
		overallStatus = StatusUnhealthy
	} else if summary.Degraded > 0 {
		overallStatus = StatusDegraded
	}

	return SystemHealth{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: results,
		Summary:    summary,
	}
}

// ModelSource is anything that can hand out the kernel's current model.
type ModelSource interface {
	GetPlantModel(ctx context.Context) (*plantmodel.Model, error)
}

// CreateKernelHealthCheck probes the kernel by downloading its model. A
// kernel that holds no model yet is still reachable.
func CreateKernelHealthCheck(source ModelSource) HealthCheckFunc {
	return func(ctx context.Context) ComponentHealth {
		start := time.Now()
		health := ComponentHealth{
			Name:      "kernel",
			LastCheck: start,
			Details:   make(map[string]string),
		}

		model, err := source.GetPlantModel(ctx)
		switch {
		case err == nil:
			health.Status = StatusHealthy
			health.Message = "kernel reachable"
			if model != nil {
				health.Details["model"] = model.Name
			}
		case utils.IsNotFound(err):
			health.Status = StatusHealthy
			health.Message = "kernel reachable, no model loaded"
		default:
			health.Status = StatusUnhealthy
			health.Message = fmt.Sprintf("kernel probe failed: %v", err)
		}

		health.Duration = time.Since(start)
		health.Details["response_time"] = health.Duration.String()
		return health
	}
}

// CreateBreakerHealthCheck reports degraded while any of the given call
// breakers is not closed.
func CreateBreakerHealthCheck(breakers *resilience.CircuitBreakerManager, calls ...string) HealthCheckFunc {
	return func(ctx context.Context) ComponentHealth {
		health := ComponentHealth{
			Name:      "circuit_breakers",
			Status:    StatusHealthy,
			Message:   "all breakers closed",
			LastCheck: time.Now(),
			Details:   make(map[string]string),
		}

		for _, call := range calls {
			state := breakers.GetState(call)
			health.Details[call] = state.String()
			if state != gobreaker.StateClosed {
				health.Status = StatusDegraded
				health.Message = fmt.Sprintf("breaker for %s is %s", call, state)
			}
		}
		return health
	}
}
