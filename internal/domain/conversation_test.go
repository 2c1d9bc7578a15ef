package domain

import (
	"testing"
	"time"
)

func TestParseStageLabels(t *testing.T) {
	cases := []struct {
		label string
		want  Stage
		ok    bool
	}{
		{"inicio", StageStart, true},
		{"consultando", StageInquiring, true},
		{"cotizando", StageQuoting, true},
		{"confirmando", StageConfirming, true},
		{"delivery", StageDeliverySetup, true},
		{"pago", StageAwaitingPayment, true},
		{"confirmado", StageConfirmed, true},
		{"CANCELADO", StageCancelled, true},
		{" awaiting_payment ", StageAwaitingPayment, true},
		{"quoting", StageQuoting, true},
		{"desconocido", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStage(tc.label)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseStage(%q) = (%q, %v), want (%q, %v)", tc.label, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStageTerminal(t *testing.T) {
	if !StageConfirmed.Terminal() || !StageCancelled.Terminal() {
		t.Fatal("confirmed and cancelled must be terminal")
	}
	if StageAwaitingPayment.Terminal() || StageStart.Terminal() {
		t.Fatal("non-final stages must not be terminal")
	}
}

func TestConversationHistoryCap(t *testing.T) {
	c := NewConversation("593990000009", "b1", time.Now())
	for i := 0; i < HistoryCap+7; i++ {
		c.Append("user", "hola")
	}
	if len(c.History) != HistoryCap {
		t.Fatalf("history length = %d, want %d", len(c.History), HistoryCap)
	}
}

func TestCouponDiscount(t *testing.T) {
	pct := Coupon{Kind: CouponPercent, Value: 10}
	if got := pct.DiscountCents(4900); got != 490 {
		t.Fatalf("percent discount = %d, want 490", got)
	}

	fixed := Coupon{Kind: CouponFixed, Value: 500}
	if got := fixed.DiscountCents(4900); got != 500 {
		t.Fatalf("fixed discount = %d, want 500", got)
	}
	if got := fixed.DiscountCents(300); got != 300 {
		t.Fatalf("fixed discount on small subtotal = %d, want clamp to 300", got)
	}

	if got := (Coupon{Kind: "otro", Value: 500}).DiscountCents(1000); got != 0 {
		t.Fatalf("unknown kind discount = %d, want 0", got)
	}
}

func TestCustomerOrderRing(t *testing.T) {
	var c Customer
	for i := 0; i < OrderHistoryCap+5; i++ {
		c.RecordOrder(OrderRecord{BusinessID: "b1", TotalCents: int64(i)})
	}
	if len(c.History) != OrderHistoryCap {
		t.Fatalf("history length = %d, want %d", len(c.History), OrderHistoryCap)
	}
	if c.OrderCount != OrderHistoryCap+5 {
		t.Fatalf("order count = %d, want %d", c.OrderCount, OrderHistoryCap+5)
	}
	last := c.LastOrder()
	if last == nil || last.TotalCents != int64(OrderHistoryCap+4) {
		t.Fatalf("last order = %+v, want most recent entry", last)
	}
	if !c.Frequent() {
		t.Fatal("customer with many orders should be frequent")
	}
}
