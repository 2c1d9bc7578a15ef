// Package scheduler runs the periodic reconciliation jobs: payment
// reminders, delivery-day reminders, daily owner summaries, re-engagement
// campaigns and post-sale follow-ups. Each job is an idempotent exported
// method; Run wires them to tickers.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"vendebot/internal/convstore"
	"vendebot/internal/domain"
	"vendebot/internal/messaging"
	businessrepo "vendebot/internal/repository/business"
	couponrepo "vendebot/internal/repository/coupon"
	customerrepo "vendebot/internal/repository/customer"
	orderrepo "vendebot/internal/repository/order"
	"github.com/google/uuid"
)

// Deps are the collaborators the jobs read and write.
type Deps struct {
	Businesses businessrepo.Repository
	Customers  customerrepo.Repository
	Orders     orderrepo.Repository
	Coupons    couponrepo.Repository
	Sender     messaging.Sender
	Store      *convstore.Store
}

// Config carries the cadence and policy knobs.
type Config struct {
	PaymentReminderIdle     time.Duration
	PaymentReminderInterval time.Duration
	DeliveryReminderEvery   time.Duration
	FollowupEvery           time.Duration
	DailySummaryHour        int
	ReengageHour            int
	ReengageAfterDays       int
	OpenHour                int
	CloseHour               int
}

// Scheduler owns the job loops.
type Scheduler struct {
	deps   Deps
	cfg    Config
	logger *log.Logger
	loc    *time.Location
	now    func() time.Time

	lastSummary  string // YYYY-MM-DD already summarized
	lastReengage string // YYYY-MM-DD already swept
}

func New(deps Deps, cfg Config, loc *time.Location, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{deps: deps, cfg: cfg, logger: logger, loc: loc, now: time.Now}
}

// Run blocks until ctx is cancelled, waking each job on its own cadence.
// The hourly jobs (summary, re-engagement) piggyback on the follow-up tick.
func (s *Scheduler) Run(ctx context.Context) {
	payment := time.NewTicker(s.cfg.PaymentReminderInterval)
	delivery := time.NewTicker(s.cfg.DeliveryReminderEvery)
	followup := time.NewTicker(s.cfg.FollowupEvery)
	defer payment.Stop()
	defer delivery.Stop()
	defer followup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-payment.C:
			s.RunPaymentReminders(ctx)
		case <-delivery.C:
			s.RunDeliveryReminders(ctx)
		case <-followup.C:
			s.RunFollowups(ctx)
			s.RunDailySummaries(ctx)
			s.RunReengagement(ctx)
		}
	}
}

// withinHours reports whether t falls inside the customer-messaging window.
func (s *Scheduler) withinHours(t time.Time) bool {
	h := t.In(s.loc).Hour()
	return h >= s.cfg.OpenHour && h < s.cfg.CloseHour
}

func (s *Scheduler) today(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// RunPaymentReminders nudges conversations stuck awaiting payment. Each
// conversation is reminded at most once; conversations busy in a handler
// are skipped and caught on a later tick.
func (s *Scheduler) RunPaymentReminders(ctx context.Context) {
	now := s.now()
	if !s.withinHours(now) {
		return
	}
	s.deps.Store.ForEach(func(conv *domain.Conversation) {
		if conv.Stage != domain.StageAwaitingPayment || conv.PaymentReminderSent || conv.ProofExhausted {
			return
		}
		if now.Sub(conv.LastActivity) < s.cfg.PaymentReminderIdle {
			return
		}
		conv.PaymentReminderSent = true
		body := fmt.Sprintf("👋 ¡Hola! Tu pedido por *$%s* sigue pendiente de pago.\n\nCuando hagas la transferencia envíame la foto del boucher y lo confirmamos. 🙌",
			moneyCents(conv.Order.TotalCents))
		if err := s.deps.Sender.SendText(ctx, conv.Phone, body); err != nil {
			s.logger.Printf("scheduler: payment reminder to=%s err=%v", conv.Phone, err)
		}
	})
}

// RunDeliveryReminders pings customers whose order is scheduled for today
// and asks them to confirm receipt.
func (s *Scheduler) RunDeliveryReminders(ctx context.Context) {
	now := s.now()
	if !s.withinHours(now) {
		return
	}
	orders, err := s.deps.Orders.ListByDeliveryDate(ctx, s.today(now))
	if err != nil {
		s.logger.Printf("scheduler: list deliveries err=%v", err)
		return
	}
	for _, po := range orders {
		if po.DeliveryReminderSent || po.DeliveryConfirmed {
			continue
		}
		body := fmt.Sprintf("🚚 ¡Hola! Hoy llega tu pedido de *%s*.\n\nCuando lo recibas escribe *recibido* para confirmar la entrega. 📦", po.BusinessName)
		if err := s.deps.Sender.SendText(ctx, po.CustomerPhone, body); err != nil {
			s.logger.Printf("scheduler: delivery reminder to=%s err=%v", po.CustomerPhone, err)
			continue
		}
		if err := s.deps.Orders.MarkDeliveryReminded(ctx, po.ID); err != nil {
			s.logger.Printf("scheduler: mark reminded id=%s err=%v", po.ID, err)
		}
	}
}

// RunDailySummaries sends each owner the day's sales digest once, at the
// configured hour. It aggregates from customer order histories, so orders
// confirmed on any instance count. Owners are not customers: the window
// gate does not apply.
func (s *Scheduler) RunDailySummaries(ctx context.Context) {
	now := s.now()
	today := s.today(now)
	if now.In(s.loc).Hour() != s.cfg.DailySummaryHour || s.lastSummary == today {
		return
	}
	s.lastSummary = today

	businesses, err := s.deps.Businesses.ListActive(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list businesses err=%v", err)
		return
	}
	customers, err := s.deps.Customers.List(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list customers err=%v", err)
		return
	}

	for _, biz := range businesses {
		var count int
		var total int64
		for _, c := range customers {
			for _, rec := range c.History {
				if rec.BusinessID == biz.ID && s.today(rec.ConfirmedAt) == today {
					count++
					total += rec.TotalCents
				}
			}
		}
		if count == 0 {
			continue
		}
		body := fmt.Sprintf("📊 *Resumen del día — %s*\n\n🧾 Pedidos confirmados: %d\n💰 Ventas: $%s",
			biz.Name, count, moneyCents(total))
		if err := s.deps.Sender.SendText(ctx, biz.OwnerPhone, body); err != nil {
			s.logger.Printf("scheduler: daily summary business=%s err=%v", biz.ID, err)
		}
	}
}

// RunReengagement mints a comeback coupon for customers who ordered before
// but have gone quiet. Each customer is targeted at most once; the pass
// itself runs once per day at the configured hour.
func (s *Scheduler) RunReengagement(ctx context.Context) {
	now := s.now()
	today := s.today(now)
	if now.In(s.loc).Hour() != s.cfg.ReengageHour || s.lastReengage == today {
		return
	}
	s.lastReengage = today

	customers, err := s.deps.Customers.List(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list customers err=%v", err)
		return
	}
	cutoff := now.AddDate(0, 0, -s.cfg.ReengageAfterDays)
	for _, c := range customers {
		if c.Reengaged || c.OrderCount == 0 || c.LastContact.After(cutoff) {
			continue
		}
		last := c.LastOrder()
		if last == nil {
			continue
		}
		code := "VUELVE" + strings.ToUpper(uuid.NewString()[:4])
		cpn := domain.Coupon{
			Code:          code,
			BusinessID:    last.BusinessID,
			Kind:          domain.CouponPercent,
			Value:         10,
			Active:        true,
			MaxUses:       1,
			CustomerPhone: c.Phone,
			ExpiresOn:     s.today(now.AddDate(0, 0, 7)),
		}
		if err := s.deps.Coupons.Upsert(ctx, cpn); err != nil {
			s.logger.Printf("scheduler: mint comeback coupon phone=%s err=%v", c.Phone, err)
			continue
		}
		body := fmt.Sprintf("👋 ¡Te extrañamos en *%s*!\n\nVuelve con un *10%% de descuento* usando el cupón *%s* (válido 7 días). 🎁",
			last.BusinessName, code)
		if err := s.deps.Sender.SendText(ctx, c.Phone, body); err != nil {
			s.logger.Printf("scheduler: reengage to=%s err=%v", c.Phone, err)
			continue
		}
		c.Reengaged = true
		if err := s.deps.Customers.Upsert(ctx, c); err != nil {
			s.logger.Printf("scheduler: upsert reengaged phone=%s err=%v", c.Phone, err)
		}
	}
}

// followupWindow bounds the order age for the post-sale check-in.
const (
	followupAfter  = 23 * time.Hour
	followupBefore = 25 * time.Hour
)

// RunFollowups checks in on orders confirmed roughly a day ago. Orders
// older than the window are marked without messaging, so a long outage does
// not produce a burst of stale check-ins.
func (s *Scheduler) RunFollowups(ctx context.Context) {
	now := s.now()
	if !s.withinHours(now) {
		return
	}
	orders, err := s.deps.Orders.ListUnfollowed(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list unfollowed err=%v", err)
		return
	}
	for _, po := range orders {
		age := now.Sub(po.ConfirmedAt)
		if age < followupAfter {
			continue
		}
		if age <= followupBefore {
			body := fmt.Sprintf("😊 ¡Hola! ¿Qué tal estuvo tu pedido de *%s*?\n\nTu opinión nos ayuda a mejorar. ¡Gracias por tu compra! 🙏", po.BusinessName)
			if err := s.deps.Sender.SendText(ctx, po.CustomerPhone, body); err != nil {
				s.logger.Printf("scheduler: followup to=%s err=%v", po.CustomerPhone, err)
				continue
			}
		}
		if err := s.deps.Orders.MarkFollowedUp(ctx, po.ID); err != nil {
			s.logger.Printf("scheduler: mark followup id=%s err=%v", po.ID, err)
		}
	}
}

func moneyCents(cents int64) string {
	if cents < 0 {
		cents = 0
	}
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
