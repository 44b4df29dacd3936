package utils

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// GracefulShutdown runs cleanup once ctx is cancelled, giving up after
// shutdownTimeout.
func GracefulShutdown(ctx context.Context, cleanup func()) {
	<-ctx.Done()

	done := make(chan struct{})
	go func() {
		defer close(done)
		cleanup()
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logrus.Warn("Cleanup did not finish before shutdown timeout")
	}
}
