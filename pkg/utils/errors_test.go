package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewAppError(CodeIO, "failed to write model", cause).WithDetail("path", "/tmp/m.xml")

	assert.Equal(t, "IO_ERROR: failed to write model: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/tmp/m.xml", err.Details["path"])

	plain := NewAppError(CodeNotFound, "component not found", nil)
	assert.Equal(t, "NOT_FOUND: component not found", plain.Error())
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "not found", err: NewAppError(CodeNotFound, "x", nil), check: IsNotFound},
		{name: "already exists", err: NewAppError(CodeAlreadyExists, "x", nil), check: IsAlreadyExists},
		{name: "validation", err: NewAppError(CodeValidation, "x", nil), check: IsValidation},
		{name: "precondition", err: NewAppError(CodePrecondition, "x", nil), check: IsPrecondition},
		{name: "io", err: NewAppError(CodeIO, "x", nil), check: IsIO},
		{name: "unsupported format", err: NewAppError(CodeUnsupportedFormat, "x", nil), check: IsUnsupportedFormat},
		{name: "kernel unavailable", err: NewAppError(CodeKernelUnavailable, "x", nil), check: IsKernelUnavailable},
		{name: "wrapped", err: fmt.Errorf("save: %w", NewAppError(CodeIO, "x", nil)), check: IsIO},
		{name: "sentinel", err: fmt.Errorf("lookup: %w", ErrNotFound), check: IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("other")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestMessages(t *testing.T) {
	err := NewAppError(CodeValidation, "model contains invalid components", nil).
		WithDetail("errors", []string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, Messages(fmt.Errorf("save: %w", err)))
	assert.Nil(t, Messages(errors.New("plain")))
	assert.Nil(t, Messages(NewAppError(CodeIO, "x", nil)))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))

	cause := errors.New("boom")
	err := WrapError(cause, "loading %s", "plant.xml")
	assert.EqualError(t, err, "loading plant.xml: boom")
	assert.ErrorIs(t, err, cause)
}
