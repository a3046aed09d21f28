package cmd

import (
	"context"
	"os"
	"os/signal"
)

// Get a context that is canceled when the process receives an interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
