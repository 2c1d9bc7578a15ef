package engine

import (
	"context"
	"fmt"

	"vendebot/internal/domain"
	"vendebot/internal/service/loyalty"
	"github.com/google/uuid"
)

// handleImage routes an inbound image: a payment proof while one is
// awaited, a delivery confirmation photo, anything else is dropped.
func (e *Engine) handleImage(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, msg Inbound) {
	switch {
	case conv.Awaiting == domain.AwaitingProof && !conv.ProofExhausted:
		e.verifyProof(ctx, biz, conv, cust, msg)
	case conv.Awaiting == domain.AwaitingDeliveryPhoto:
		e.confirmDelivery(ctx, conv)
	default:
		e.logger.Printf("engine: unexpected image from=%s awaiting=%s", conv.Phone, conv.Awaiting)
	}
}

// verifyProof runs the payment-proof protocol: immediate acknowledgement,
// media fetch, external analysis, then the valid/retry/terminal decision.
func (e *Engine) verifyProof(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer, msg Inbound) {
	// The acknowledgement is distinct from the verdict: analysis takes time.
	e.send(ctx, conv.Phone, msgCheckingProof)

	image, mime, err := e.deps.Media.FetchMedia(ctx, msg.MediaID)
	if err != nil {
		e.logger.Printf("engine: fetch proof media=%s err=%v", msg.MediaID, err)
		e.send(ctx, conv.Phone, msgProofUnreadable)
		return
	}
	if msg.MimeType != "" {
		mime = msg.MimeType
	}

	verdict := e.deps.Verifier.Verify(ctx, image, mime, biz.BankName, conv.Order.TotalCents, e.today())
	if verdict.Valid {
		conv.Awaiting = domain.AwaitingNone
		e.finalize(ctx, biz, conv, cust)
		return
	}

	conv.BoucherAttempts++
	if conv.BoucherAttempts >= MaxBoucherAttempts {
		conv.ProofExhausted = true
		conv.Awaiting = domain.AwaitingNone
		e.send(ctx, conv.Phone, fmt.Sprintf(msgProofExhausted, biz.Name))
		return
	}
	e.send(ctx, conv.Phone, fmt.Sprintf(msgProofRejected,
		verdict.Reason, money(conv.Order.TotalCents), conv.BoucherAttempts, MaxBoucherAttempts))
}

// finalize runs every confirmation side effect exactly once: recompute,
// coupon consumption, points accrual, courier assignment, durable writes
// and both notifications.
func (e *Engine) finalize(ctx context.Context, biz *domain.Business, conv *domain.Conversation, cust *domain.Customer) {
	if conv.Stage == domain.StageConfirmed {
		return
	}
	conv.Order.Recompute()
	conv.Stage = domain.StageConfirmed
	conv.Awaiting = domain.AwaitingNone
	now := e.now()

	if code := conv.Order.CouponCode; code != "" {
		if err := e.deps.Coupons.IncrementUse(ctx, biz.ID, code); err != nil {
			e.logger.Printf("engine: consume coupon code=%s err=%v", code, err)
		}
	}

	points := loyalty.PointsForTotal(conv.Order.TotalCents, e.cfg.PointsPerDollar)
	loyalty.Accrue(cust, points)

	if conv.Order.IsDelivery {
		e.assignCourier(ctx, biz, conv)
	}

	cust.RecordOrder(domain.OrderRecord{
		BusinessID:   biz.ID,
		BusinessName: biz.Name,
		Description:  conv.Order.Description,
		TotalCents:   conv.Order.TotalCents,
		ConfirmedAt:  now,
	})
	e.saveCustomer(ctx, cust)

	entry := domain.PendingOrder{
		ID:            uuid.NewString(),
		BusinessID:    biz.ID,
		BusinessName:  biz.Name,
		CustomerPhone: cust.Phone,
		CustomerName:  cust.Name,
		Order:         conv.Order,
		ConfirmedAt:   now,
	}
	if err := e.deps.Orders.Insert(ctx, entry); err != nil {
		e.logger.Printf("engine: ledger insert id=%s err=%v", entry.ID, err)
	}

	e.send(ctx, biz.OwnerPhone, ownerNotification(biz, cust, conv.Order))
	e.send(ctx, conv.Phone, confirmationMessage(biz, cust, points, e.cfg.RedeemCostPoints))
}

// assignCourier picks a courier at random from the active-and-available
// pool. An empty pool is not an error: the order proceeds unassigned.
func (e *Engine) assignCourier(ctx context.Context, biz *domain.Business, conv *domain.Conversation) {
	pool, err := e.deps.Couriers.ListActiveAvailable(ctx, biz.ID)
	if err != nil {
		e.logger.Printf("engine: list couriers business=%s err=%v", biz.ID, err)
		return
	}
	if len(pool) == 0 {
		return
	}
	picked := pool[e.pick(len(pool))]
	conv.Order.CourierName = picked.Name
	e.send(ctx, picked.Phone, courierNotification(biz, conv.Phone, conv.Order))
}

// confirmDelivery marks the latest ledger entry as delivered.
func (e *Engine) confirmDelivery(ctx context.Context, conv *domain.Conversation) {
	conv.Awaiting = domain.AwaitingNone
	po, err := e.deps.Orders.LatestByCustomer(ctx, conv.Phone)
	if err != nil {
		e.logger.Printf("engine: confirm delivery phone=%s err=%v", conv.Phone, err)
		e.send(ctx, conv.Phone, msgDeliveryThanks)
		return
	}
	if err := e.deps.Orders.MarkDeliveryConfirmed(ctx, po.ID); err != nil {
		e.logger.Printf("engine: mark delivered id=%s err=%v", po.ID, err)
	}
	e.send(ctx, conv.Phone, msgDeliveryThanks)
}
