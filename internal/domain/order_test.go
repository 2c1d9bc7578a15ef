package domain

import "testing"

func TestRecomputeFromItems(t *testing.T) {
	o := Order{
		Items: []OrderItem{
			{ProductRef: 1, Name: "Torta", Quantity: 2, UnitPriceCents: 1850},
			{ProductRef: 3, Name: "Cupcakes", Quantity: 1, UnitPriceCents: 1200},
		},
		SubtotalCents: 99, // stale claim, must be overwritten
		DeliveryCents: 300,
		IsDelivery:    true,
	}
	o.Recompute()
	if o.SubtotalCents != 4900 {
		t.Fatalf("subtotal = %d, want 4900", o.SubtotalCents)
	}
	if o.TotalCents != 5200 {
		t.Fatalf("total = %d, want 5200", o.TotalCents)
	}
}

func TestRecomputeIgnoresDeliveryFeeForPickup(t *testing.T) {
	o := Order{
		Items:         []OrderItem{{Quantity: 1, UnitPriceCents: 1000}},
		DeliveryCents: 500,
		IsDelivery:    false,
	}
	o.Recompute()
	if o.TotalCents != 1000 {
		t.Fatalf("total = %d, want 1000", o.TotalCents)
	}
}

func TestRecomputeClampsDiscount(t *testing.T) {
	o := Order{
		Items:         []OrderItem{{Quantity: 1, UnitPriceCents: 1000}},
		DiscountCents: 2500,
	}
	o.Recompute()
	if o.DiscountCents != 1000 {
		t.Fatalf("discount = %d, want clamp to 1000", o.DiscountCents)
	}
	if o.TotalCents != 0 {
		t.Fatalf("total = %d, want 0", o.TotalCents)
	}

	o.DiscountCents = -100
	o.Recompute()
	if o.DiscountCents != 0 {
		t.Fatalf("negative discount = %d, want 0", o.DiscountCents)
	}
}

func TestRecomputeKeepsSubtotalWithoutItems(t *testing.T) {
	o := Order{Description: "Torta personalizada", SubtotalCents: 3500}
	o.Recompute()
	if o.SubtotalCents != 3500 || o.TotalCents != 3500 {
		t.Fatalf("got subtotal=%d total=%d, want 3500/3500", o.SubtotalCents, o.TotalCents)
	}
}

func TestOrderEmpty(t *testing.T) {
	if !(Order{}).Empty() {
		t.Fatal("zero order should be empty")
	}
	if (Order{Description: "algo"}).Empty() {
		t.Fatal("described order should not be empty")
	}
	if (Order{SubtotalCents: 100}).Empty() {
		t.Fatal("priced order should not be empty")
	}
}
