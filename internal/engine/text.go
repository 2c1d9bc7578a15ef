package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"vendebot/internal/domain"
	"vendebot/internal/reasoning"
	couponsvc "vendebot/internal/service/coupon"
)

// handleText runs the per-message transition sources in priority order:
// deterministic commands, structural awaited inputs, the first-message
// welcome, then the reasoning service.
func (e *Engine) handleText(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if e.tryCommand(ctx, biz, conv, cust, text) {
		return
	}

	// A plain text while a delivery address is awaited is the address.
	if conv.Awaiting == domain.AwaitingAddress {
		e.applyAddress(ctx, biz, conv, cust, text)
		return
	}

	first := conv.Stage == domain.StageStart && len(conv.History) == 0
	if first {
		e.send(ctx, conv.Phone, welcomeMessage(biz, cust))
		conv.Stage = domain.StageInquiring
		if isBareGreeting(text) || utf8.RuneCountInString(text) < 4 {
			return
		}
		// A substantive first utterance is not dropped: fall through to the
		// reasoning service in the same pass.
	}

	e.consultModel(ctx, biz, conv, cust, text)
}

var greetings = map[string]bool{
	"hola": true, "buenas": true, "buenos dias": true, "buenas tardes": true,
	"buenas noches": true, "hello": true, "hi": true, "hey": true, "saludos": true,
}

func isBareGreeting(text string) bool {
	return greetings[normalize(text)]
}

// consultModel forwards free text to the reasoning adapter and applies its
// structured reply: stage label, order delta, coupon attempt, disclosed
// name, catalog images and the show-payment signal.
func (e *Engine) consultModel(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, text string) {
	catalog, err := e.deps.Products.ListActive(ctx, biz.ID)
	if err != nil {
		e.logger.Printf("engine: load catalog business=%s err=%v", biz.ID, err)
	}
	promos, err := e.deps.Promotions.ListActive(ctx, biz.ID)
	if err != nil {
		e.logger.Printf("engine: load promotions business=%s err=%v", biz.ID, err)
	}

	pc := reasoning.PromptContext{
		Business:   *biz,
		Catalog:    catalog,
		Promotions: promos,
		Customer:   *cust,
		Order:      conv.Order,
		Stage:      conv.Stage,
		Today:      e.today(),
	}

	conv.Append("user", text)

	reply, err := e.deps.Adapter.Ask(ctx, pc, conv.History)
	if err != nil {
		e.logger.Printf("engine: reasoning call from=%s err=%v", conv.Phone, err)
		e.send(ctx, conv.Phone, msgNotUnderstood)
		return
	}

	reply.Delta.Apply(&conv.Order)

	if reply.CustomerName != "" && cust.Name == "" {
		cust.Name = reply.CustomerName
		e.saveCustomer(ctx, cust)
	}

	extra := e.tryCoupon(ctx, biz, conv, cust, reply.CouponCode)

	if reply.StageKnown {
		e.applyModelStage(conv, reply.Stage)
	}

	out := reply.Text
	if out == "" {
		out = msgNotUnderstood
	}
	if extra != "" {
		out += "\n\n" + extra
	}
	conv.Append("assistant", reply.Text)
	e.send(ctx, conv.Phone, out)

	e.sendCatalogImages(ctx, biz, conv, reply.ImageRefs)

	if reply.ShowPayment || conv.Stage == domain.StageAwaitingPayment {
		e.requestPayment(ctx, biz, conv, cust)
	}
}

// applyModelStage applies the model's stage label verbatim, with one guard:
// a confirmed claim never bypasses the payment step. It is routed through
// requestPayment, which finalizes immediately for cash on delivery and arms
// the proof marker otherwise.
func (e *Engine) applyModelStage(conv *domain.Conversation, stage domain.Stage) {
	if stage == domain.StageConfirmed {
		conv.Stage = domain.StageAwaitingPayment
		return
	}
	conv.Stage = stage
}

// tryCoupon validates a coupon the model relayed and applies its discount.
// Failures come back as a structured reason; the order totals are never
// corrupted by a bad attempt.
func (e *Engine) tryCoupon(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, code string) string {
	if code == "" || code == conv.Order.CouponCode {
		return ""
	}
	cpn, err := e.deps.Coupons.Get(ctx, biz.ID, code)
	if err != nil {
		return fmt.Sprintf("😅 No encontré el cupón %s.", code)
	}
	if err := couponsvc.Validate(*cpn, conv.Order.SubtotalCents, cust.Phone, e.today()); err != nil {
		return fmt.Sprintf("😅 No pude aplicar el cupón %s: %s.", code, couponsvc.Reason(err))
	}
	conv.Order.CouponCode = cpn.Code
	conv.Order.DiscountCents = cpn.DiscountCents(conv.Order.SubtotalCents)
	conv.Order.Recompute()
	return fmt.Sprintf("🎟️ ¡Cupón %s aplicado! Descuento: $%s. Nuevo total: $%s.",
		cpn.Code, money(conv.Order.DiscountCents), money(conv.Order.TotalCents))
}

// sendCatalogImages pushes product photos the model asked for, paced one
// second apart. Pushes are suppressed once payment has been requested or the
// order is confirmed, so catalog photos are not resent after checkout.
func (e *Engine) sendCatalogImages(ctx context.Context, biz *domain.Business, conv *domain.Conversation, refs []int) {
	if len(refs) == 0 {
		return
	}
	if conv.Awaiting == domain.AwaitingProof || conv.Stage == domain.StageAwaitingPayment || conv.Stage.Terminal() {
		return
	}
	sent := 0
	for _, ref := range refs {
		p, err := e.deps.Products.GetByRef(ctx, biz.ID, ref)
		if err != nil || p.ImageURL == "" {
			continue
		}
		if sent > 0 {
			select {
			case <-time.After(e.cfg.ImageSendDelay):
			case <-ctx.Done():
				return
			}
		}
		caption := productCaption(*p)
		if err := e.deps.Sender.SendImage(ctx, conv.Phone, p.ImageURL, caption); err != nil {
			e.logger.Printf("engine: send image ref=%d to=%s err=%v", ref, conv.Phone, err)
			continue
		}
		sent++
	}
}

// requestPayment runs the awaiting-payment side effects: order summary plus
// payment instructions. Transfers arm the proof marker; cash on delivery
// finalizes synchronously.
func (e *Engine) requestPayment(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer) {
	if conv.Stage.Terminal() || conv.ProofExhausted {
		return
	}
	conv.Order.Recompute()
	conv.Stage = domain.StageAwaitingPayment

	if conv.Order.PaymentMethod == domain.PaymentCashOnDelivery {
		e.send(ctx, conv.Phone, orderSummary(conv.Order)+"\n\n"+msgCashOnDelivery)
		e.finalize(ctx, biz, conv, cust)
		return
	}

	e.send(ctx, conv.Phone, orderSummary(conv.Order)+"\n\n"+paymentInstructions(biz, conv.Order))
	conv.Awaiting = domain.AwaitingProof
}

// applyAddress consumes a delivery address, clears the marker and moves the
// conversation to payment (or straight to confirmation for cash orders).
func (e *Engine) applyAddress(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, address string) {
	conv.Order.IsDelivery = true
	conv.Order.Address = address
	conv.Awaiting = domain.AwaitingNone
	conv.Order.Recompute()

	e.send(ctx, conv.Phone, fmt.Sprintf("✅ Dirección registrada: %s", address))
	e.requestPayment(ctx, biz, conv, cust)
}

// handleLocation consumes a shared location while an address is awaited.
func (e *Engine) handleLocation(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, msg Inbound) {
	if conv.Awaiting != domain.AwaitingAddress {
		return
	}
	address := fmt.Sprintf("https://maps.google.com/?q=%f,%f", msg.Latitude, msg.Longitude)
	e.applyAddress(ctx, biz, conv, cust, address)
}
