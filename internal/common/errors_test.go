package common

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *MutationError
		want string
	}{
		{
			name: "status and body",
			err:  &MutationError{Method: "POST", Endpoint: "http://tx/api/transactions", Status: 400, Body: `{"error":"amount must be positive"}`},
			want: `POST http://tx/api/transactions failed (status 400): {"error":"amount must be positive"}`,
		},
		{
			name: "transport failure",
			err:  &MutationError{Method: "PATCH", Endpoint: "http://cases/api/cases/1/status", Err: errors.New("connection refused")},
			want: "PATCH http://cases/api/cases/1/status failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestEndpoint(t *testing.T) {
	inner := &MutationError{Method: "POST", Endpoint: "http://tx/api/transactions", Status: 500}
	wrapped := fmt.Errorf("submit: %w", inner)

	assert.Equal(t, "http://tx/api/transactions", Endpoint(wrapped))
	assert.Empty(t, Endpoint(errors.New("other")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not load notes", ErrNotFound)
	assert.Equal(t, "could not load notes: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
