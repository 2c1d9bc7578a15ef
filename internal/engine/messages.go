package engine

import (
	"fmt"
	"strings"

	"vendebot/internal/domain"
)

// Customer-facing copy. Everything the assistant sends outside of model
// replies lives here so the wording can be reviewed in one place.
const (
	msgApology       = "😅 Disculpa, tuve un problema procesando tu mensaje. ¿Me lo repites?"
	msgNoBusiness    = "😅 En este momento no hay tiendas disponibles. Intenta más tarde, por favor."
	msgNotUnderstood = "🤔 No te entendí bien. ¿Me lo puedes explicar de otra forma?"

	msgCheckingProof   = "🔍 Revisando tu comprobante..."
	msgProofUnreadable = "😅 No pude descargar la imagen. ¿Me la envías de nuevo, por favor?"
	msgProofExhausted  = "❌ No pudimos validar tu comprobante después de varios intentos.\n\nPor favor comunícate directamente con *%s* para completar tu pedido. 🙏"
	msgProofRejected   = "❌ No pude validar el comprobante: %s\n\nRecuerda que el total es *$%s*. Envíame una foto clara del boucher, por favor. (Intento %d de %d)"

	msgCashOnDelivery = "💵 Perfecto, pagas *en efectivo al recibir* tu pedido."
	msgDeliveryThanks = "🎉 ¡Gracias por confirmar la entrega! Esperamos que lo disfrutes. 🙌"

	msgAskDeliveryPhoto = "📸 ¡Qué bueno! Envíame una foto del pedido recibido para registrar la entrega."

	msgCancelImmutable = "😅 Tu pedido ya fue confirmado y no puede cancelarse por aquí. Comunícate con la tienda para ayudarte."
	msgCancelled       = "👌 Listo, cancelé tu pedido. Cuando quieras empezamos uno nuevo, solo escríbeme."

	msgNoOrder     = "🤔 No tienes ningún pedido en curso. ¿Te muestro el catálogo?"
	msgNoHistory   = "🤔 Todavía no tienes pedidos registrados. ¡Anímate a hacer el primero!"
	msgRedeemShort = "😅 Necesitas *%d puntos* para canjear y tienes *%d*. ¡Sigue comprando para acumular!"
	msgRedeemed    = "🎁 ¡Canje exitoso! Usaste %d puntos por un cupón de *$%s*.\n\nTu código: *%s* (un solo uso, personal)\nTe quedan *%d puntos*."
	msgReferral    = "🤝 Tu código de referido es *%s*.\nCompártelo con tus amigos: cuando lo mencionen en su primer pedido, ambos ganan puntos."

	msgNoPromotions = "🤷 Por ahora no hay promociones vigentes, pero pregúntame por el catálogo."
	msgHours        = "🕘 *%s* atiende todos los días de %d:00 a %d:00."
	msgReturnPolicy = "🔁 Aceptamos cambios y devoluciones dentro de las 24 horas de la entrega, con el producto en buen estado. Escríbenos por aquí y lo coordinamos."
)

// money renders integer cents as a dollar string with two decimals.
func money(cents int64) string {
	neg := ""
	if cents < 0 {
		neg = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", neg, cents/100, cents%100)
}

// welcomeMessage greets a first message in a conversation. Returning and
// frequent customers get a personal variant; the business can override the
// base greeting.
func welcomeMessage(biz *domain.Business, cust *domain.Customer) string {
	base := biz.WelcomeMessage
	if base == "" {
		base = fmt.Sprintf("¡Hola! 👋 Bienvenido a *%s*. Cuéntame qué estás buscando y con gusto te ayudo. 🛍️", biz.Name)
	}

	name := strings.TrimSpace(cust.Name)
	switch {
	case cust.Frequent() && name != "":
		return fmt.Sprintf("¡Hola de nuevo, %s! 🌟 Qué gusto tenerte por acá otra vez.\n\n%s", name, base)
	case len(cust.History) > 0 && name != "":
		return fmt.Sprintf("¡Hola, %s! 👋 Qué bueno verte de vuelta.\n\n%s", name, base)
	default:
		return base
	}
}

// orderSummary renders the running order as the customer sees it before
// paying.
func orderSummary(o domain.Order) string {
	var b strings.Builder
	b.WriteString("🧾 *Resumen de tu pedido:*\n")
	if len(o.Items) > 0 {
		for _, it := range o.Items {
			fmt.Fprintf(&b, "• %d x %s — $%s\n", it.Quantity, it.Name, money(it.UnitPriceCents*int64(it.Quantity)))
		}
	} else if o.Description != "" {
		fmt.Fprintf(&b, "• %s\n", o.Description)
	}
	fmt.Fprintf(&b, "\nSubtotal: $%s\n", money(o.SubtotalCents))
	if o.DiscountCents > 0 {
		label := "Descuento"
		if o.CouponCode != "" {
			label = "Descuento (" + o.CouponCode + ")"
		}
		fmt.Fprintf(&b, "%s: -$%s\n", label, money(o.DiscountCents))
	}
	if o.IsDelivery {
		fmt.Fprintf(&b, "Delivery: $%s\n", money(o.DeliveryCents))
		if o.Address != "" {
			fmt.Fprintf(&b, "📍 Dirección: %s\n", o.Address)
		}
		if o.DeliveryDate != "" {
			when := o.DeliveryDate
			if o.DeliveryTime != "" {
				when += " " + o.DeliveryTime
			}
			fmt.Fprintf(&b, "🚚 Entrega: %s\n", when)
		}
	} else {
		b.WriteString("🏪 Retiro en tienda\n")
	}
	fmt.Fprintf(&b, "\n*Total: $%s*", money(o.TotalCents))
	return b.String()
}

// paymentInstructions asks for a transfer to the business bank account and
// a photo of the receipt.
func paymentInstructions(biz *domain.Business, o domain.Order) string {
	var b strings.Builder
	b.WriteString("💳 *Datos para la transferencia:*\n")
	fmt.Fprintf(&b, "🏦 Banco: %s\n", biz.BankName)
	fmt.Fprintf(&b, "🔢 Cuenta: %s\n", biz.BankAccount)
	fmt.Fprintf(&b, "👤 Titular: %s\n", biz.BankHolder)
	fmt.Fprintf(&b, "💵 Monto: $%s\n", money(o.TotalCents))
	b.WriteString("\nCuando hagas la transferencia, envíame la *foto del boucher* para confirmar tu pedido. 📸")
	return b.String()
}

// ownerNotification tells the business owner a new order was confirmed.
func ownerNotification(biz *domain.Business, cust *domain.Customer, o domain.Order) string {
	name := cust.Name
	if name == "" {
		name = "Cliente"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛎️ *Nuevo pedido confirmado* — %s\n\n", biz.Name)
	fmt.Fprintf(&b, "👤 %s (%s)\n", name, cust.Phone)
	if len(o.Items) > 0 {
		for _, it := range o.Items {
			fmt.Fprintf(&b, "• %d x %s\n", it.Quantity, it.Name)
		}
	} else if o.Description != "" {
		fmt.Fprintf(&b, "• %s\n", o.Description)
	}
	fmt.Fprintf(&b, "\n💰 Total: $%s\n", money(o.TotalCents))
	fmt.Fprintf(&b, "💳 Pago: %s\n", paymentLabel(o.PaymentMethod))
	if o.IsDelivery {
		fmt.Fprintf(&b, "🚚 Delivery: %s", o.Address)
		if o.DeliveryDate != "" {
			fmt.Fprintf(&b, " (%s %s)", o.DeliveryDate, o.DeliveryTime)
		}
		b.WriteString("\n")
		if o.CourierName != "" {
			fmt.Fprintf(&b, "🛵 Repartidor: %s\n", o.CourierName)
		}
	} else {
		b.WriteString("🏪 Retiro en tienda\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// confirmationMessage closes the loop with the customer, including the
// loyalty accrual for this order.
func confirmationMessage(biz *domain.Business, cust *domain.Customer, points, redeemCost int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *¡Pedido confirmado!* Gracias por comprar en %s. 🎉\n", biz.Name)
	if points > 0 {
		fmt.Fprintf(&b, "\n⭐ Ganaste *%d puntos* con esta compra. Ahora tienes *%d*.\n", points, cust.PointsBalance)
		if cust.PointsBalance >= redeemCost {
			b.WriteString("¡Ya puedes canjearlos! Escribe *canjear puntos*.\n")
		}
	}
	b.WriteString("\nTe avisaremos cualquier novedad por aquí. 🙌")
	return b.String()
}

// courierNotification briefs the assigned courier.
func courierNotification(biz *domain.Business, customerPhone string, o domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛵 *Nueva entrega* — %s\n\n", biz.Name)
	fmt.Fprintf(&b, "📍 %s\n", o.Address)
	if o.DeliveryDate != "" {
		fmt.Fprintf(&b, "📅 %s %s\n", o.DeliveryDate, o.DeliveryTime)
	}
	fmt.Fprintf(&b, "📞 Cliente: %s\n", customerPhone)
	fmt.Fprintf(&b, "💰 Cobrar: $%s (%s)", money(o.TotalCents), paymentLabel(o.PaymentMethod))
	return b.String()
}

// productCaption is the caption sent with a catalog photo.
func productCaption(p domain.Product) string {
	emoji := p.Emoji
	if emoji == "" {
		emoji = "🛍️"
	}
	caption := fmt.Sprintf("%s *%s* — $%s", emoji, p.Name, money(p.PriceCents))
	if p.Description != "" {
		caption += "\n" + p.Description
	}
	return caption
}

func paymentLabel(method string) string {
	switch method {
	case domain.PaymentCashOnDelivery:
		return "efectivo contra entrega"
	case domain.PaymentTransfer:
		return "transferencia"
	default:
		return "por definir"
	}
}
