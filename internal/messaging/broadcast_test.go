package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakySender struct {
	failFor map[string]bool
	sent    []string
}

func (s *flakySender) SendText(_ context.Context, to, _ string) error {
	if s.failFor[to] {
		return errors.New("unreachable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func (s *flakySender) SendImage(_ context.Context, _, _, _ string) error { return nil }

func TestBroadcastSkipsFailures(t *testing.T) {
	sender := &flakySender{failFor: map[string]bool{"p2": true}}
	sent := Broadcast(context.Background(), sender, nil, []string{"p1", "p2", "p3"}, "promo", 0)
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if len(sender.sent) != 2 || sender.sent[0] != "p1" || sender.sent[1] != "p3" {
		t.Fatalf("recipients = %v", sender.sent)
	}
}

func TestBroadcastStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sender := &flakySender{}
	cancel()
	// The first send goes out before the pacing wait observes cancellation.
	sent := Broadcast(ctx, sender, nil, []string{"p1", "p2", "p3"}, "promo", time.Minute)
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
}
