package domain

import "time"

// Payment methods accepted by the assistant.
const (
	PaymentTransfer       = "transferencia"
	PaymentCashOnDelivery = "contraentrega"
)

// OrderItem is one line of an in-progress or confirmed order.
type OrderItem struct {
	ProductRef     int    `json:"id"`
	Name           string `json:"nombre"`
	Quantity       int    `json:"cantidad"`
	UnitPriceCents int64  `json:"precio_centavos"`
}

// Order is the aggregate built up over a conversation. All amounts are
// integer cents; they are rendered as dollars only in outgoing messages.
type Order struct {
	Description   string      `json:"descripcion,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	SubtotalCents int64       `json:"subtotal_centavos"`
	DiscountCents int64       `json:"descuento_centavos"`
	DeliveryCents int64       `json:"costo_delivery_centavos"`
	TotalCents    int64       `json:"total_centavos"`
	IsDelivery    bool        `json:"es_domicilio"`
	Address       string      `json:"direccion,omitempty"`
	DeliveryDate  string      `json:"fecha_entrega,omitempty"` // YYYY-MM-DD
	DeliveryTime  string      `json:"hora_entrega,omitempty"`
	PaymentMethod string      `json:"metodo_pago,omitempty"`
	CouponCode    string      `json:"cupon,omitempty"`
	CourierName   string      `json:"courier,omitempty"`
	Notes         string      `json:"notas,omitempty"`
}

// Empty reports whether nothing has been ordered yet.
func (o Order) Empty() bool {
	return len(o.Items) == 0 && o.SubtotalCents == 0 && o.Description == ""
}

// Recompute derives subtotal and total from components. When line items are
// present the subtotal is always the sum of the lines, regardless of what a
// delta claimed. The discount never goes negative nor exceeds the subtotal,
// and the delivery fee only counts for delivery orders.
func (o *Order) Recompute() {
	if len(o.Items) > 0 {
		var sum int64
		for _, it := range o.Items {
			sum += it.UnitPriceCents * int64(it.Quantity)
		}
		o.SubtotalCents = sum
	}
	if o.DiscountCents < 0 {
		o.DiscountCents = 0
	}
	if o.DiscountCents > o.SubtotalCents {
		o.DiscountCents = o.SubtotalCents
	}
	delivery := o.DeliveryCents
	if !o.IsDelivery {
		delivery = 0
	}
	o.TotalCents = o.SubtotalCents - o.DiscountCents + delivery
}

// PendingOrder is the durable ledger entry written at confirmation. It
// outlives the conversation and feeds the reconciliation jobs.
type PendingOrder struct {
	ID                   string    `json:"id"`
	BusinessID           string    `json:"businessId"`
	BusinessName         string    `json:"nombre_negocio"`
	CustomerPhone        string    `json:"numero"`
	CustomerName         string    `json:"nombre_cliente,omitempty"`
	Order                Order     `json:"pedido"`
	ConfirmedAt          time.Time `json:"confirmadoAt"`
	DeliveryReminderSent bool      `json:"recordatorio_entrega_enviado"`
	DeliveryConfirmed    bool      `json:"entrega_confirmada"`
	FollowupSent         bool      `json:"seguimiento_enviado"`
}
