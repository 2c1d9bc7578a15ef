package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vendebot/internal/engine"
)

// handleTimeout bounds how long one inbound message may be processed after
// the webhook has already been acknowledged.
const handleTimeout = 2 * time.Minute

// verifyWebhook answers the Meta subscription handshake: echo the challenge
// when the token matches, 403 otherwise.
func verifyWebhook(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		mode := c.Query("hub.mode")
		if mode == "subscribe" && c.Query("hub.verify_token") == token {
			c.String(http.StatusOK, c.Query("hub.challenge"))
			return
		}
		c.String(http.StatusForbidden, "forbidden")
	}
}

// Webhook envelope shapes, reduced to the fields the assistant consumes.
type webhookEnvelope struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []webhookMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Image *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"image"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// receiveWebhook acknowledges immediately and processes each message on its
// own goroutine: Meta retries slow responses, which would double-handle.
func receiveWebhook(logger *log.Logger, handler MessageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var env webhookEnvelope
		if err := c.ShouldBindJSON(&env); err != nil {
			logger.Printf("httpserver: bad webhook payload: %v", err)
			c.String(http.StatusOK, "ok")
			return
		}

		for _, msg := range flatten(env) {
			go func(in engine.Inbound) {
				ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
				defer cancel()
				handler.HandleMessage(ctx, in)
			}(msg)
		}
		c.String(http.StatusOK, "ok")
	}
}

// flatten extracts the inbound messages the engine understands from the
// nested envelope. Statuses and unsupported types are dropped.
func flatten(env webhookEnvelope) []engine.Inbound {
	var out []engine.Inbound
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.From == "" {
					continue
				}
				in := engine.Inbound{From: m.From, Kind: m.Type}
				switch m.Type {
				case "text":
					if m.Text == nil {
						continue
					}
					in.Text = m.Text.Body
				case "image":
					if m.Image == nil {
						continue
					}
					in.MediaID = m.Image.ID
					in.MimeType = m.Image.MimeType
				case "location":
					if m.Location == nil {
						continue
					}
					in.Latitude = m.Location.Latitude
					in.Longitude = m.Location.Longitude
				default:
					continue
				}
				out = append(out, in)
			}
		}
	}
	return out
}
