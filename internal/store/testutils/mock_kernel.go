package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/sumandas0/plantmodel/pkg/plantmodel"
)

var ErrKernelDown = errors.New("connection refused")

// MockKernel is an in-memory kernel for testing. Uploaded models are kept
// as-is and returned by GetPlantModel.
type MockKernel struct {
	mu       sync.Mutex
	model    *plantmodel.Model
	failNext int
	failErr  error
	calls    int
}

func NewMockKernel() *MockKernel {
	return &MockKernel{}
}

// FailNext makes the next n calls return err.
func (m *MockKernel) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failErr = err
}

// SetModel preloads the model the kernel holds.
func (m *MockKernel) SetModel(model *plantmodel.Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// CreatePlantModel implements kernel.Client
func (m *MockKernel) CreatePlantModel(ctx context.Context, model *plantmodel.Model) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(ctx); err != nil {
		return err
	}
	m.model = model
	return nil
}

// GetPlantModel implements kernel.Client
func (m *MockKernel) GetPlantModel(ctx context.Context) (*plantmodel.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.begin(ctx); err != nil {
		return nil, err
	}
	return m.model, nil
}

func (m *MockKernel) begin(ctx context.Context) error {
	m.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.failNext > 0 {
		m.failNext--
		return m.failErr
	}
	return nil
}

// Model returns the last uploaded model.
func (m *MockKernel) Model() *plantmodel.Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// Calls returns how many calls reached the kernel.
func (m *MockKernel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
