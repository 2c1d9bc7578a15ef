package reasoning

import (
	"strings"
	"testing"

	"vendebot/internal/domain"
)

func TestSystemPromptContents(t *testing.T) {
	pc := PromptContext{
		Business: domain.Business{
			Name: "Dulce Tentación", Kind: "pastelería",
			BankName: "Banco Pichincha", BankAccount: "2203456789", BankHolder: "Dulce Tentación S.A.",
		},
		Catalog: []domain.Product{
			{Ref: 1, Name: "Torta de chocolate", PriceCents: 1850, Stock: 10, Emoji: "🍫"},
		},
		Promotions: []domain.Promotion{
			{Title: "2x1 martes", Description: "Dos cupcakes al precio de uno", Active: true, StartsOn: "2026-03-01", EndsOn: "2026-03-31"},
			{Title: "Vencida", Description: "Ya pasó", Active: true, EndsOn: "2026-01-31"},
		},
		Customer: domain.Customer{Name: "María", OrderCount: 4, PointsBalance: 120},
		Order:    domain.Order{SubtotalCents: 1850},
		Stage:    domain.StageQuoting,
		Today:    "2026-03-10",
	}

	prompt := pc.System()

	for _, want := range []string{
		"Dulce Tentación",
		"[1] 🍫 *Torta de chocolate*: $18.50",
		"2x1 martes",
		"Nombre: María",
		"Puntos acumulados: 120",
		"Banco Pichincha | Cuenta: 2203456789",
		`"subtotal_centavos":1850`,
		"ETAPA: quoting",
		"FECHA: 2026-03-10",
		"PEDIDO_JSON:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Contains(prompt, "Vencida") {
		t.Error("expired promotion leaked into the prompt")
	}
}

func TestSystemPromptOmitsEmptyCustomerFields(t *testing.T) {
	pc := PromptContext{Business: domain.Business{Name: "X", Kind: "tienda"}}
	prompt := pc.System()
	if strings.Contains(prompt, "Nombre:") {
		t.Error("anonymous customer must have no name line")
	}
	if strings.Contains(prompt, "Código de referido") {
		t.Error("missing referral code must have no line")
	}
}
