// Package vision verifies payment-proof images through the external image
// analysis service.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Verdict is the strict analysis result. Anything the service answers that
// does not parse as this JSON degrades to an invalid verdict.
type Verdict struct {
	Valid  bool   `json:"valido"`
	Reason string `json:"motivo"`
}

// Model is the narrow surface of the image analysis service.
type Model interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType, question string) (string, error)
}

// Verifier decides whether a submitted receipt image matches the expected
// payment.
type Verifier struct {
	model Model
}

// New builds a Verifier over the given model.
func New(model Model) *Verifier {
	return &Verifier{model: model}
}

// Verify asks the analysis service whether the receipt is a real, recent
// bank transfer for the expected amount. Transport or parse failures never
// propagate; they come back as an unreadable verdict.
func (v *Verifier) Verify(ctx context.Context, image []byte, mimeType, bankName string, expectedCents int64, today string) Verdict {
	question := fmt.Sprintf(
		"¿Es un comprobante bancario real y reciente de %s (hoy %s) por $%d.%02d? Responde solo JSON: {\"valido\":true/false,\"motivo\":\"\"}",
		bankName, today, expectedCents/100, expectedCents%100,
	)

	unreadable := Verdict{Valid: false, Reason: "No se pudo leer el comprobante"}

	raw, err := v.model.AnalyzeImage(ctx, image, mimeType, question)
	if err != nil {
		return unreadable
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(extractJSON(raw)), &verdict); err != nil {
		return unreadable
	}
	if !verdict.Valid && verdict.Reason == "" {
		verdict.Reason = unreadable.Reason
	}
	return verdict
}

// extractJSON strips markdown fences or prose the model may wrap around the
// JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

// Gemini implements Model over the genai client.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini vision wrapper.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// AnalyzeImage sends the image and the question in a single user turn.
func (g *Gemini) AnalyzeImage(ctx context.Context, image []byte, mimeType, question string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(question),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 300,
	})
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}
	return resp.Text(), nil
}
