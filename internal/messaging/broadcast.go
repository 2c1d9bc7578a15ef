package messaging

import (
	"context"
	"io"
	"log"
	"time"
)

// Broadcast sends the same text to every recipient with a fixed delay
// between sends to avoid transport throttling. The delay blocks only this
// call. Per-recipient failures are logged and skipped.
func Broadcast(ctx context.Context, sender Sender, logger *log.Logger, recipients []string, body string, delay time.Duration) int {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sent := 0
	for i, to := range recipients {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return sent
			}
		}
		if err := sender.SendText(ctx, to, body); err != nil {
			logger.Printf("broadcast: send to=%s err=%v", to, err)
			continue
		}
		sent++
	}
	return sent
}
