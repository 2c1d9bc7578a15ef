package reasoning

import (
	"testing"

	"vendebot/internal/domain"
)

func TestParseReplyFullTrailer(t *testing.T) {
	raw := "¡Perfecto! Aquí tienes la cotización. 🎂\n" +
		"ETAPA: cotizando\n" +
		`PEDIDO_JSON: {"items":[{"id":1,"nombre":"Torta de chocolate","cantidad":2,"precio":18.50}],"es_domicilio":true,"costo_delivery":3.00}` + "\n" +
		"ENVIAR_IMAGENES: [1,3]\n" +
		"CUPON: bienvenido10\n" +
		"NOMBRE_CLIENTE: María\n" +
		"MOSTRAR_PAGO: true"

	r := ParseReply(raw)

	if r.Text != "¡Perfecto! Aquí tienes la cotización. 🎂" {
		t.Fatalf("text = %q", r.Text)
	}
	if !r.StageKnown || r.Stage != domain.StageQuoting {
		t.Fatalf("stage = %q known=%v", r.Stage, r.StageKnown)
	}
	if r.Delta == nil || r.Delta.Items == nil || len(*r.Delta.Items) != 1 {
		t.Fatalf("delta = %+v", r.Delta)
	}
	if got := (*r.Delta.Items)[0]; got.Ref != 1 || got.Quantity != 2 || got.Price != 18.50 {
		t.Fatalf("item = %+v", got)
	}
	if len(r.ImageRefs) != 2 || r.ImageRefs[0] != 1 || r.ImageRefs[1] != 3 {
		t.Fatalf("image refs = %v", r.ImageRefs)
	}
	if r.CouponCode != "BIENVENIDO10" {
		t.Fatalf("coupon = %q", r.CouponCode)
	}
	if r.CustomerName != "María" {
		t.Fatalf("name = %q", r.CustomerName)
	}
	if !r.ShowPayment {
		t.Fatal("show payment not set")
	}
}

func TestParseReplyMalformedTrailersDegradeIndependently(t *testing.T) {
	raw := "Claro, te ayudo.\n" +
		"ETAPA: etapa_inventada\n" +
		"PEDIDO_JSON: {not json}\n" +
		"ENVIAR_IMAGENES: [1,2\n" +
		"NOMBRE_CLIENTE: X\n" +
		"CUPON: DULCE5"

	r := ParseReply(raw)

	if r.Text != "Claro, te ayudo." {
		t.Fatalf("text = %q", r.Text)
	}
	if r.StageKnown {
		t.Fatal("unknown stage label must not be applied")
	}
	if r.Delta != nil {
		t.Fatal("malformed delta must be dropped")
	}
	if r.ImageRefs != nil {
		t.Fatal("malformed ref list must be dropped")
	}
	if r.CustomerName != "" {
		t.Fatal("single-rune name must be ignored")
	}
	if r.CouponCode != "DULCE5" {
		t.Fatalf("coupon = %q, valid trailer must survive its broken neighbors", r.CouponCode)
	}
}

func TestParseReplyNoTrailers(t *testing.T) {
	r := ParseReply("Hola, ¿en qué te ayudo?\nTenemos tortas y cupcakes.")
	if r.Text != "Hola, ¿en qué te ayudo?\nTenemos tortas y cupcakes." {
		t.Fatalf("text = %q", r.Text)
	}
	if r.StageKnown || r.Delta != nil || r.ShowPayment {
		t.Fatal("plain reply must parse as text only")
	}
}

func TestApplyReplacesItemsAndRecomputes(t *testing.T) {
	o := domain.Order{
		Items:         []domain.OrderItem{{ProductRef: 9, Quantity: 1, UnitPriceCents: 100}},
		DiscountCents: 0,
	}
	items := []ItemDelta{
		{Ref: 1, Name: "Torta", Quantity: 2, Price: 18.50},
		{Ref: 2, Name: "Fantasma", Quantity: 0, Price: 5},
	}
	total := 999.99 // model hallucination, must be ignored
	delivery := 3.0
	isDel := true
	(&OrderDelta{Items: &items, Total: &total, DeliveryCost: &delivery, IsDelivery: &isDel}).Apply(&o)

	if len(o.Items) != 1 {
		t.Fatalf("zero-quantity line must be skipped, got %d items", len(o.Items))
	}
	if o.SubtotalCents != 3700 {
		t.Fatalf("subtotal = %d, want 3700", o.SubtotalCents)
	}
	if o.TotalCents != 4000 {
		t.Fatalf("total = %d, want 4000 (never the claimed total)", o.TotalCents)
	}
}

func TestApplySubtotalOnlyWhenNoItems(t *testing.T) {
	o := domain.Order{}
	sub := 35.0
	desc := "Torta personalizada de 3 pisos"
	(&OrderDelta{Subtotal: &sub, Description: &desc}).Apply(&o)
	if o.SubtotalCents != 3500 || o.TotalCents != 3500 {
		t.Fatalf("got subtotal=%d total=%d", o.SubtotalCents, o.TotalCents)
	}

	withItems := domain.Order{Items: []domain.OrderItem{{Quantity: 1, UnitPriceCents: 1000}}}
	(&OrderDelta{Subtotal: &sub}).Apply(&withItems)
	if withItems.SubtotalCents != 1000 {
		t.Fatalf("subtotal claim over items = %d, want 1000", withItems.SubtotalCents)
	}
}

func TestApplyPaymentMethodNormalization(t *testing.T) {
	for _, raw := range []string{"efectivo", "contra entrega", "Contraentrega"} {
		o := domain.Order{}
		m := raw
		(&OrderDelta{PaymentMethod: &m}).Apply(&o)
		if o.PaymentMethod != domain.PaymentCashOnDelivery {
			t.Fatalf("method %q normalized to %q", raw, o.PaymentMethod)
		}
	}

	o := domain.Order{}
	m := "tarjeta"
	(&OrderDelta{PaymentMethod: &m}).Apply(&o)
	if o.PaymentMethod != "" {
		t.Fatalf("unknown method %q must be ignored, got %q", m, o.PaymentMethod)
	}
}

func TestApplyNilDelta(t *testing.T) {
	o := domain.Order{SubtotalCents: 100}
	var d *OrderDelta
	d.Apply(&o)
	if o.SubtotalCents != 100 {
		t.Fatal("nil delta must not modify the order")
	}
}
