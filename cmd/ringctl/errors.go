package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wizpr/ringctl/ring"
)

// formatUserError turns internal errors into actionable messages.
func formatUserError(err error) string {
	switch {
	case errors.Is(err, ring.ErrConnectFailed):
		return fmt.Sprintf("could not connect to the ring (%v) - check that it is powered on and in range", err)
	case errors.Is(err, ring.ErrNotConnected):
		return fmt.Sprintf("the ring is not connected (%v)", err)
	case errors.Is(err, ring.ErrBusy):
		return fmt.Sprintf("another ring operation is in progress (%v)", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("operation timed out (%v)", err)
	default:
		return err.Error()
	}
}
