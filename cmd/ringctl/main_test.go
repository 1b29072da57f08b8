package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wizpr/ringctl/ring"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"numeric version gets v prefix", "1.2.3", "v1.2.3"},
		{"prefixed version unchanged", "v1.2.3", "v1.2.3"},
		{"dev build unchanged", "dev", "dev"},
		{"empty string unchanged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatVersion(tt.version))
		})
	}
}

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "connect failure",
			err:      &ring.ConnError{Kind: ring.ConnectFailed, Msg: "AA:BB"},
			contains: "could not connect",
		},
		{
			name:     "not connected",
			err:      ring.ErrNotConnected,
			contains: "not connected",
		},
		{
			name:     "busy",
			err:      ring.ErrBusy,
			contains: "in progress",
		},
		{
			name:     "timeout",
			err:      context.DeadlineExceeded,
			contains: "timed out",
		},
		{
			name:     "unknown errors pass through",
			err:      errors.New("boom"),
			contains: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, formatUserError(tt.err), tt.contains)
		})
	}
}
