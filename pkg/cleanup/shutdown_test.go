// Graceful shutdown tests in Chalkboard.

package cleanup

import (
	"Chalkboard/pkg/log"
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Global instance of log.Logger to be used during cleanup testing.
var logger log.Logger = log.New("test")

// Global context
var ctx context.Context = context.Background()

func TestGracefulShutdownSIGTERM(t *testing.T) {
	ranFirst, ranSecond := false, false

	// Send SIGTERM signal to test graceful shutdown
	go func() {
		time.Sleep(100 * time.Millisecond)
		logger.Info().Msg("Sending SIGTERM signal")
		syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
	}()

	wait := GracefulShutdown(ctx, logger, 5*time.Second, map[string]Operation{
		"first": func(ctx context.Context) error {
			ranFirst = true
			return nil
		},
		"second": func(ctx context.Context) error {
			ranSecond = true
			return nil
		},
	})
	<-wait

	assert.True(t, ranFirst)
	assert.True(t, ranSecond)
}
