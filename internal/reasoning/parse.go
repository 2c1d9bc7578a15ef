package reasoning

import (
	"encoding/json"
	"math"
	"strings"
	"unicode/utf8"

	"vendebot/internal/domain"
)

// Reply is the parsed model output: the customer-facing text with every
// trailer line extracted and stripped.
type Reply struct {
	Text         string
	Stage        domain.Stage
	StageKnown   bool
	Delta        *OrderDelta
	ImageRefs    []int
	ShowPayment  bool
	CouponCode   string
	CustomerName string
}

// OrderDelta is the semi-structured order update proposed by the model.
// Pointer fields distinguish "absent" from zero; amounts are float dollars.
type OrderDelta struct {
	Description   *string      `json:"descripcion"`
	Items         *[]ItemDelta `json:"items"`
	Subtotal      *float64     `json:"subtotal"`
	Discount      *float64     `json:"descuento"`
	DeliveryCost  *float64     `json:"costo_delivery"`
	Total         *float64     `json:"total"`
	IsDelivery    *bool        `json:"es_domicilio"`
	Address       *string      `json:"direccion"`
	DeliveryDate  *string      `json:"fecha_entrega"`
	DeliveryTime  *string      `json:"hora_entrega"`
	PaymentMethod *string      `json:"metodo_pago"`
	Notes         *string      `json:"notas"`
}

// ItemDelta is one proposed line item.
type ItemDelta struct {
	Ref      int     `json:"id"`
	Name     string  `json:"nombre"`
	Quantity int     `json:"cantidad"`
	Price    float64 `json:"precio"`
}

// ParseReply extracts trailer lines from a raw model reply. Every trailer
// parses independently; a malformed one is dropped, never an error. The
// customer-facing text survives regardless.
func ParseReply(raw string) Reply {
	var r Reply
	var textLines []string

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "ETAPA:"):
			if stage, ok := domain.ParseStage(strings.TrimPrefix(trimmed, "ETAPA:")); ok {
				r.Stage = stage
				r.StageKnown = true
			}
		case strings.HasPrefix(trimmed, "PEDIDO_JSON:"):
			payload := strings.TrimSpace(strings.TrimPrefix(trimmed, "PEDIDO_JSON:"))
			var delta OrderDelta
			if err := json.Unmarshal([]byte(payload), &delta); err == nil {
				r.Delta = &delta
			}
		case strings.HasPrefix(trimmed, "ENVIAR_IMAGENES:"):
			payload := strings.TrimSpace(strings.TrimPrefix(trimmed, "ENVIAR_IMAGENES:"))
			var refs []int
			if err := json.Unmarshal([]byte(payload), &refs); err == nil {
				r.ImageRefs = refs
			}
		case strings.HasPrefix(trimmed, "MOSTRAR_PAGO:"):
			r.ShowPayment = strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(trimmed, "MOSTRAR_PAGO:")), "true")
		case strings.HasPrefix(trimmed, "CUPON:"):
			r.CouponCode = domain.NormalizeCouponCode(strings.TrimPrefix(trimmed, "CUPON:"))
		case strings.HasPrefix(trimmed, "NOMBRE_CLIENTE:"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "NOMBRE_CLIENTE:"))
			if utf8.RuneCountInString(name) >= 2 {
				r.CustomerName = name
			}
		default:
			textLines = append(textLines, line)
		}
	}

	r.Text = strings.TrimSpace(strings.Join(textLines, "\n"))
	return r
}

// Apply merges the delta into the order field by field. An items array
// replaces the line items wholesale. Totals are recomputed authoritatively
// whenever items are present; a totals-only delta updates the stored totals
// informationally, still subject to the arithmetic invariants.
func (d *OrderDelta) Apply(o *domain.Order) {
	if d == nil {
		return
	}
	if d.Description != nil {
		o.Description = *d.Description
	}
	if d.Items != nil {
		items := make([]domain.OrderItem, 0, len(*d.Items))
		for _, it := range *d.Items {
			if it.Quantity <= 0 {
				continue
			}
			items = append(items, domain.OrderItem{
				ProductRef:     it.Ref,
				Name:           it.Name,
				Quantity:       it.Quantity,
				UnitPriceCents: cents(it.Price),
			})
		}
		o.Items = items
	}
	if d.Subtotal != nil && len(o.Items) == 0 {
		o.SubtotalCents = cents(*d.Subtotal)
	}
	if d.Discount != nil {
		o.DiscountCents = cents(*d.Discount)
	}
	if d.DeliveryCost != nil {
		o.DeliveryCents = cents(*d.DeliveryCost)
	}
	if d.IsDelivery != nil {
		o.IsDelivery = *d.IsDelivery
	}
	if d.Address != nil && *d.Address != "" {
		o.Address = *d.Address
	}
	if d.DeliveryDate != nil && *d.DeliveryDate != "" {
		o.DeliveryDate = *d.DeliveryDate
	}
	if d.DeliveryTime != nil && *d.DeliveryTime != "" {
		o.DeliveryTime = *d.DeliveryTime
	}
	if d.PaymentMethod != nil {
		switch strings.ToLower(strings.TrimSpace(*d.PaymentMethod)) {
		case domain.PaymentTransfer:
			o.PaymentMethod = domain.PaymentTransfer
		case domain.PaymentCashOnDelivery, "efectivo", "contra entrega":
			o.PaymentMethod = domain.PaymentCashOnDelivery
		}
	}
	if d.Notes != nil && *d.Notes != "" {
		o.Notes = *d.Notes
	}
	// The model's verbatim total is never trusted when items exist.
	o.Recompute()
}

func cents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}
