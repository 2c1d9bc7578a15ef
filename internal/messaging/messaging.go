// Package messaging sends outbound WhatsApp messages and fetches inbound
// media through the Cloud API. Delivery is fire-and-forget from the core's
// perspective: failures are logged, never retried here.
package messaging

import "context"

// Sender delivers outbound messages.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendImage(ctx context.Context, to, imageURL, caption string) error
}

// MediaFetcher downloads inbound media (payment receipts) by media id.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaID string) (data []byte, mimeType string, err error)
}
