package domain

import "time"

// OrderHistoryCap bounds the per-customer order history ring.
const OrderHistoryCap = 20

// FrequentOrderCount is the lifetime order count from which a customer is
// greeted as a frequent one.
const FrequentOrderCount = 3

// OrderRecord is one entry of a customer's bounded order history.
type OrderRecord struct {
	BusinessID   string    `json:"businessId"`
	BusinessName string    `json:"nombre_negocio"`
	Description  string    `json:"descripcion"`
	TotalCents   int64     `json:"total_centavos"`
	ConfirmedAt  time.Time `json:"confirmadoAt"`
}

// Customer is the durable record keyed by WhatsApp phone number.
type Customer struct {
	Phone           string        `json:"numero"`
	Name            string        `json:"nombre,omitempty"`
	FirstContact    time.Time     `json:"primerContacto"`
	LastContact     time.Time     `json:"ultimoContacto"`
	OrderCount      int           `json:"totalPedidos"`
	TotalSpentCents int64         `json:"totalGastado_centavos"`
	History         []OrderRecord `json:"historial,omitempty"`
	PointsBalance   int64         `json:"puntos"`
	PointsRedeemed  int64         `json:"puntosCanjeados"`
	ReferralCode    string        `json:"codigoReferido,omitempty"`
	Reengaged       bool          `json:"reenganchado"`
}

// Frequent reports whether the customer qualifies for the frequent greeting.
func (c Customer) Frequent() bool {
	return c.OrderCount >= FrequentOrderCount
}

// RecordOrder appends an order to the history ring and updates the lifetime
// counters. The ring keeps the most recent OrderHistoryCap entries.
func (c *Customer) RecordOrder(rec OrderRecord) {
	c.OrderCount++
	c.TotalSpentCents += rec.TotalCents
	c.History = append(c.History, rec)
	if len(c.History) > OrderHistoryCap {
		c.History = c.History[len(c.History)-OrderHistoryCap:]
	}
}

// LastOrder returns the most recent history entry, or nil.
func (c Customer) LastOrder() *OrderRecord {
	if len(c.History) == 0 {
		return nil
	}
	rec := c.History[len(c.History)-1]
	return &rec
}
