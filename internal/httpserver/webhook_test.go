package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vendebot/internal/engine"
)

type recordingHandler struct {
	mu   sync.Mutex
	msgs []engine.Inbound
	done chan struct{}
}

func newRecordingHandler(expect int) *recordingHandler {
	h := &recordingHandler{done: make(chan struct{}, expect)}
	return h
}

func (h *recordingHandler) HandleMessage(_ context.Context, msg engine.Inbound) {
	h.mu.Lock()
	h.msgs = append(h.msgs, msg)
	h.mu.Unlock()
	h.done <- struct{}{}
}

func (h *recordingHandler) wait(t *testing.T, n int) []engine.Inbound {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d of %d", i+1, n)
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]engine.Inbound, len(h.msgs))
	copy(out, h.msgs)
	return out
}

func testRouter(handler MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return buildRouter(log.New(io.Discard, "", 0), nil, Deps{
		Handler:     handler,
		VerifyToken: "vendebot2024",
	})
}

func TestVerifyHandshake(t *testing.T) {
	router := testRouter(newRecordingHandler(0))

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=vendebot2024&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Fatalf("body = %q, want the challenge echoed", rec.Body.String())
	}
}

func TestVerifyHandshakeRejectsBadToken(t *testing.T) {
	router := testRouter(newRecordingHandler(0))

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

const envelopeJSON = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [
          {"from": "593991234567", "type": "text", "text": {"body": "hola"}},
          {"from": "593991234567", "type": "image", "image": {"id": "m-77", "mime_type": "image/png"}},
          {"from": "593997654321", "type": "location", "location": {"latitude": -0.18, "longitude": -78.46}},
          {"from": "593997654321", "type": "sticker"}
        ]
      }
    }]
  }]
}`

func TestReceiveWebhookDispatches(t *testing.T) {
	handler := newRecordingHandler(3)
	router := testRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(envelopeJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	msgs := handler.wait(t, 3)
	byKind := map[string]engine.Inbound{}
	for _, m := range msgs {
		byKind[m.Kind] = m
	}
	if got := byKind["text"]; got.From != "593991234567" || got.Text != "hola" {
		t.Fatalf("text message = %+v", got)
	}
	if got := byKind["image"]; got.MediaID != "m-77" || got.MimeType != "image/png" {
		t.Fatalf("image message = %+v", got)
	}
	if got := byKind["location"]; got.Latitude != -0.18 || got.Longitude != -78.46 {
		t.Fatalf("location message = %+v", got)
	}
	if _, ok := byKind["sticker"]; ok {
		t.Fatal("unsupported types must be dropped")
	}
}

func TestReceiveWebhookBadPayloadStillAcks(t *testing.T) {
	router := testRouter(newRecordingHandler(0))

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Meta retries non-200 answers; a broken payload is acked and dropped.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestFlattenSkipsIncompletePayloads(t *testing.T) {
	const raw = `{"entry":[{"changes":[{"value":{"messages":[
		{"from": "", "type": "text", "text": {"body": "hola"}},
		{"from": "593991234567", "type": "text"},
		{"from": "593991234567", "type": "image"},
		{"from": "593991234567", "type": "unknown"}
	]}}]}]}`

	var env webhookEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := flatten(env); len(got) != 0 {
		t.Fatalf("flatten = %+v, want nothing", got)
	}
}
