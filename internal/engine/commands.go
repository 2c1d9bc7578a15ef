package engine

import (
	"context"
	"fmt"
	"strings"

	"vendebot/internal/domain"
	"vendebot/internal/service/loyalty"
	"github.com/google/uuid"
)

var diacritics = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"¿", "", "?", "", "¡", "", "!", "",
)

func normalize(text string) string {
	return strings.TrimSpace(diacritics.Replace(strings.ToLower(text)))
}

// tryCommand handles the deterministic commands entirely outside the
// reasoning service. It reports whether the text was consumed.
func (e *Engine) tryCommand(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, text string) bool {
	n := normalize(text)
	switch {
	case n == "cancelar" || strings.HasPrefix(n, "cancelar "):
		e.cmdCancel(ctx, conv)
	case n == "mi pedido" || n == "ver pedido":
		e.cmdViewOrder(ctx, conv)
	case n == "mis pedidos" || n == "historial":
		e.cmdHistory(ctx, conv, cust)
	case n == "mis puntos" || n == "puntos":
		e.cmdPoints(ctx, conv, cust)
	case n == "canjear puntos" || n == "canjear":
		e.cmdRedeem(ctx, biz, conv, cust)
	case n == "mi codigo" || n == "referidos" || n == "mi codigo de referido":
		e.cmdReferral(ctx, conv, cust)
	case n == "promociones":
		e.cmdPromotions(ctx, biz, conv)
	case n == "horario" || n == "horarios":
		e.send(ctx, conv.Phone, fmt.Sprintf(msgHours, biz.Name, e.cfg.OpenHour, e.cfg.CloseHour))
	case n == "devoluciones" || n == "politica de devoluciones":
		e.send(ctx, conv.Phone, msgReturnPolicy)
	case n == "recibido" || n == "entregado" || n == "ya llego" || n == "ya llego mi pedido":
		conv.Awaiting = domain.AwaitingDeliveryPhoto
		e.send(ctx, conv.Phone, msgAskDeliveryPhoto)
	default:
		return false
	}
	return true
}

// cmdCancel ends the conversation instance unless the order is already
// confirmed, which is immutable.
func (e *Engine) cmdCancel(ctx context.Context, conv *domain.Conversation) {
	if conv.Stage == domain.StageConfirmed {
		e.send(ctx, conv.Phone, msgCancelImmutable)
		return
	}
	conv.Stage = domain.StageCancelled
	conv.Order = domain.Order{}
	conv.Awaiting = domain.AwaitingNone
	e.send(ctx, conv.Phone, msgCancelled)
	// The next message under this key starts a fresh conversation.
	e.deps.Store.Evict(conv.Phone, conv.BusinessID)
}

func (e *Engine) cmdViewOrder(ctx context.Context, conv *domain.Conversation) {
	if conv.Order.Empty() {
		e.send(ctx, conv.Phone, msgNoOrder)
		return
	}
	conv.Order.Recompute()
	e.send(ctx, conv.Phone, orderSummary(conv.Order))
}

func (e *Engine) cmdHistory(ctx context.Context, conv *domain.Conversation, cust *domain.Customer) {
	if len(cust.History) == 0 {
		e.send(ctx, conv.Phone, msgNoHistory)
		return
	}
	var b strings.Builder
	b.WriteString("🧾 *Tus últimos pedidos:*\n")
	start := len(cust.History) - 5
	if start < 0 {
		start = 0
	}
	for _, rec := range cust.History[start:] {
		desc := rec.Description
		if desc == "" {
			desc = "Pedido"
		}
		fmt.Fprintf(&b, "• %s — %s: $%s\n", rec.ConfirmedAt.In(e.loc).Format("02/01/2006"), desc, money(rec.TotalCents))
	}
	e.send(ctx, conv.Phone, strings.TrimRight(b.String(), "\n"))
}

func (e *Engine) cmdPoints(ctx context.Context, conv *domain.Conversation, cust *domain.Customer) {
	e.send(ctx, conv.Phone, fmt.Sprintf("⭐ Tienes *%d puntos*.\n%s",
		cust.PointsBalance, loyalty.RewardHint(cust.PointsBalance, e.cfg.RedeemCostPoints)))
}

// cmdRedeem swaps points for a single-use personal coupon.
func (e *Engine) cmdRedeem(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer) {
	if err := loyalty.Redeem(cust, e.cfg.RedeemCostPoints); err != nil {
		e.send(ctx, conv.Phone, fmt.Sprintf(msgRedeemShort, e.cfg.RedeemCostPoints, cust.PointsBalance))
		return
	}
	code := "PUNTOS-" + strings.ToUpper(uuid.NewString()[:6])
	cpn := domain.Coupon{
		Code:          code,
		BusinessID:    biz.ID,
		Kind:          domain.CouponFixed,
		Value:         e.cfg.RedeemValueCents,
		Active:        true,
		MaxUses:       1,
		CustomerPhone: cust.Phone,
	}
	if err := e.deps.Coupons.Upsert(ctx, cpn); err != nil {
		e.logger.Printf("engine: mint redeem coupon phone=%s err=%v", cust.Phone, err)
		e.send(ctx, conv.Phone, msgApology)
		return
	}
	e.saveCustomer(ctx, cust)
	e.send(ctx, conv.Phone, fmt.Sprintf(msgRedeemed,
		e.cfg.RedeemCostPoints, money(e.cfg.RedeemValueCents), code, cust.PointsBalance))
}

func (e *Engine) cmdReferral(ctx context.Context, conv *domain.Conversation, cust *domain.Customer) {
	code := loyalty.EnsureReferralCode(cust)
	e.saveCustomer(ctx, cust)
	e.send(ctx, conv.Phone, fmt.Sprintf(msgReferral, code))
}

func (e *Engine) cmdPromotions(ctx context.Context, biz *domain.Business, conv *domain.Conversation) {
	promos, err := e.deps.Promotions.ListActive(ctx, biz.ID)
	if err != nil {
		e.logger.Printf("engine: list promotions business=%s err=%v", biz.ID, err)
	}
	today := e.today()
	var lines []string
	for _, p := range promos {
		if p.InWindow(today) {
			lines = append(lines, fmt.Sprintf("• *%s*: %s", p.Title, p.Description))
		}
	}
	if len(lines) == 0 {
		e.send(ctx, conv.Phone, msgNoPromotions)
		return
	}
	e.send(ctx, conv.Phone, "🎉 *Promociones vigentes:*\n"+strings.Join(lines, "\n"))
}
