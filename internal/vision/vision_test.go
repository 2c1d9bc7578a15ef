package vision

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubModel struct {
	answer       string
	err          error
	lastQuestion string
	lastMime     string
}

func (s *stubModel) AnalyzeImage(_ context.Context, _ []byte, mimeType, question string) (string, error) {
	s.lastMime = mimeType
	s.lastQuestion = question
	return s.answer, s.err
}

func verify(m *stubModel) Verdict {
	v := New(m)
	return v.Verify(context.Background(), []byte("img"), "image/jpeg", "Banco Pichincha", 3700, "2026-03-10")
}

func TestVerifyValid(t *testing.T) {
	m := &stubModel{answer: `{"valido":true,"motivo":""}`}
	got := verify(m)
	if !got.Valid {
		t.Fatalf("verdict = %+v", got)
	}
	for _, want := range []string{"Banco Pichincha", "2026-03-10", "$37.00"} {
		if !strings.Contains(m.lastQuestion, want) {
			t.Fatalf("question %q missing %q", m.lastQuestion, want)
		}
	}
}

func TestVerifyInvalidKeepsReason(t *testing.T) {
	m := &stubModel{answer: `{"valido":false,"motivo":"el monto no coincide"}`}
	got := verify(m)
	if got.Valid || got.Reason != "el monto no coincide" {
		t.Fatalf("verdict = %+v", got)
	}
}

func TestVerifyStripsMarkdownFences(t *testing.T) {
	m := &stubModel{answer: "```json\n{\"valido\":true,\"motivo\":\"\"}\n```"}
	if got := verify(m); !got.Valid {
		t.Fatalf("fenced verdict = %+v", got)
	}
}

func TestVerifyDegradesOnGarbage(t *testing.T) {
	for _, answer := range []string{"no puedo analizar esto", "{rotisimo", ""} {
		m := &stubModel{answer: answer}
		got := verify(m)
		if got.Valid {
			t.Fatalf("answer %q produced a valid verdict", answer)
		}
		if got.Reason != "No se pudo leer el comprobante" {
			t.Fatalf("answer %q reason = %q", answer, got.Reason)
		}
	}
}

func TestVerifyDegradesOnTransportError(t *testing.T) {
	m := &stubModel{err: errors.New("rpc error")}
	got := verify(m)
	if got.Valid || got.Reason != "No se pudo leer el comprobante" {
		t.Fatalf("verdict = %+v", got)
	}
}

func TestVerifyFillsEmptyReason(t *testing.T) {
	m := &stubModel{answer: `{"valido":false}`}
	if got := verify(m); got.Reason == "" {
		t.Fatal("invalid verdict must carry a reason")
	}
}
