package domain

import "time"

// Business is one tenant of the assistant: a shop selling over WhatsApp.
type Business struct {
	ID             string    `json:"id"`
	Name           string    `json:"nombre"`
	Kind           string    `json:"tipo"`
	OwnerPhone     string    `json:"whatsapp_dueno"`
	BankName       string    `json:"banco"`
	BankAccount    string    `json:"numero_cuenta"`
	BankHolder     string    `json:"titular_cuenta"`
	WelcomeMessage string    `json:"mensaje_bienvenida,omitempty"`
	Active         bool      `json:"activo"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Product is one catalog entry of a business. Ref is the small per-business
// number shown to the reasoning service and echoed back in image requests.
type Product struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"-"`
	Ref         int       `json:"ref"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion,omitempty"`
	PriceCents  int64     `json:"precio_centavos"`
	Stock       int       `json:"stock"`
	Emoji       string    `json:"emoji,omitempty"`
	ImageURL    string    `json:"imagen,omitempty"`
	Active      bool      `json:"activo"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Promotion is a date-bounded announcement included in the reasoning context.
type Promotion struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"-"`
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion,omitempty"`
	Active      bool      `json:"activo"`
	StartsOn    string    `json:"desde,omitempty"` // YYYY-MM-DD, empty = always
	EndsOn      string    `json:"hasta,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InWindow reports whether the promotion applies on the given local date.
func (p Promotion) InWindow(date string) bool {
	if !p.Active {
		return false
	}
	if p.StartsOn != "" && date < p.StartsOn {
		return false
	}
	if p.EndsOn != "" && date > p.EndsOn {
		return false
	}
	return true
}

// Courier delivers orders for a business.
type Courier struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"-"`
	Name       string    `json:"nombre"`
	Phone      string    `json:"whatsapp"`
	Active     bool      `json:"activo"`
	Available  bool      `json:"disponible"`
	CreatedAt  time.Time `json:"createdAt"`
}
