package sse

import (
	"context"
	"log/slog"
	"time"
)

// keepAliveWriter is satisfied by *Writer
type keepAliveWriter interface {
	WriteKeepAlive() error
}

// KeepAlive writes a comment frame every interval until ctx ends or a write
// fails. The returned channel closes when it stops; if it closes while ctx is
// still live, the client has gone away.
func KeepAlive(ctx context.Context, w keepAliveWriter, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.WriteKeepAlive(); err != nil {
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			}
		}
	}()

	return stopped
}
