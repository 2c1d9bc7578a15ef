// Package engine drives the conversation state machine and the order
// lifecycle: it routes inbound messages, consults the reasoning service,
// merges its structured output into the order aggregate and runs the
// confirmation side effects.
package engine

import (
	"context"
	"io"
	"log"
	"math/rand"
	"time"

	"vendebot/internal/convstore"
	"vendebot/internal/domain"
	"vendebot/internal/messaging"
	"vendebot/internal/reasoning"
	businessrepo "vendebot/internal/repository/business"
	couponrepo "vendebot/internal/repository/coupon"
	courierrepo "vendebot/internal/repository/courier"
	customerrepo "vendebot/internal/repository/customer"
	orderrepo "vendebot/internal/repository/order"
	productrepo "vendebot/internal/repository/product"
	promotionrepo "vendebot/internal/repository/promotion"
	"vendebot/internal/vision"
)

// MaxBoucherAttempts caps payment-proof retries before the flow goes
// terminal for the conversation.
const MaxBoucherAttempts = 3

// Inbound is one webhook message after transport decoding.
type Inbound struct {
	From      string
	Kind      string // text | image | location | audio | document
	Text      string
	MediaID   string
	MimeType  string
	Latitude  float64
	Longitude float64
}

// Config holds the engine's tunables.
type Config struct {
	PointsPerDollar  int64
	RedeemCostPoints int64
	RedeemValueCents int64
	ImageSendDelay   time.Duration

	// Business hours, quoted back on the "horario" command.
	OpenHour  int
	CloseHour int
}

// Deps bundles the engine's collaborators.
type Deps struct {
	Store      *convstore.Store
	Businesses businessrepo.Repository
	Customers  customerrepo.Repository
	Orders     orderrepo.Repository
	Coupons    couponrepo.Repository
	Couriers   courierrepo.Repository
	Products   productrepo.Repository
	Promotions promotionrepo.Repository
	Adapter    *reasoning.Adapter
	Verifier   *vision.Verifier
	Sender     messaging.Sender
	Media      messaging.MediaFetcher
}

// Engine is the conversational core for every business.
type Engine struct {
	deps   Deps
	cfg    Config
	logger *log.Logger
	loc    *time.Location
	now    func() time.Time
	pick   func(n int) int
}

// New builds an Engine. loc is the business time zone used for dates.
func New(deps Deps, cfg Config, loc *time.Location, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.ImageSendDelay == 0 {
		cfg.ImageSendDelay = time.Second
	}
	return &Engine{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		now:    time.Now,
		pick:   rand.Intn,
	}
}

func (e *Engine) today() string {
	return e.now().In(e.loc).Format("2006-01-02")
}

// HandleMessage processes one inbound message end to end. It never panics
// out: unexpected failures are logged and the customer gets a generic
// apology, so the webhook is always acknowledged upstream.
func (e *Engine) HandleMessage(ctx context.Context, msg Inbound) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("engine: panic handling message from=%s: %v", msg.From, r)
			e.send(ctx, msg.From, msgApology)
		}
	}()

	biz, err := e.resolveBusiness(ctx, msg.From)
	if err != nil {
		e.logger.Printf("engine: no business for %s: %v", msg.From, err)
		e.send(ctx, msg.From, msgNoBusiness)
		return
	}

	conv, release, _ := e.deps.Store.Acquire(msg.From, biz.ID)
	defer release()
	conv.Touch(e.now())

	cust := e.loadCustomer(ctx, msg.From)

	switch msg.Kind {
	case "image":
		e.handleImage(ctx, biz, conv, cust, msg)
	case "location":
		e.handleLocation(ctx, biz, conv, cust, msg)
	case "text":
		e.handleText(ctx, biz, conv, cust, msg.Text)
	default:
		// Audio and documents are acknowledged upstream and dropped here.
		e.logger.Printf("engine: dropping %s message from=%s", msg.Kind, msg.From)
	}
}

// resolveBusiness finds the business assigned to the customer, assigning the
// first active one on first contact.
func (e *Engine) resolveBusiness(ctx context.Context, phone string) (*domain.Business, error) {
	if id, err := e.deps.Businesses.AssignmentFor(ctx, phone); err == nil {
		if biz, err := e.deps.Businesses.GetByID(ctx, id); err == nil && biz.Active {
			return biz, nil
		}
	}

	active, err := e.deps.Businesses.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrNotFound
	}
	biz := active[0]
	if err := e.deps.Businesses.Assign(ctx, phone, biz.ID); err != nil {
		e.logger.Printf("engine: assign business phone=%s err=%v", phone, err)
	}
	return &biz, nil
}

// loadCustomer fetches or creates the durable customer record and refreshes
// the last-contact timestamp.
func (e *Engine) loadCustomer(ctx context.Context, phone string) *domain.Customer {
	now := e.now()
	cust, err := e.deps.Customers.Get(ctx, phone)
	if err != nil {
		cust = &domain.Customer{Phone: phone, FirstContact: now}
	}
	cust.LastContact = now
	if err := e.deps.Customers.Upsert(ctx, *cust); err != nil {
		e.logger.Printf("engine: upsert customer phone=%s err=%v", phone, err)
	}
	return cust
}

func (e *Engine) saveCustomer(ctx context.Context, cust *domain.Customer) {
	if err := e.deps.Customers.Upsert(ctx, *cust); err != nil {
		e.logger.Printf("engine: save customer phone=%s err=%v", cust.Phone, err)
	}
}

func (e *Engine) send(ctx context.Context, to, body string) {
	if body == "" {
		return
	}
	if err := e.deps.Sender.SendText(ctx, to, body); err != nil {
		e.logger.Printf("engine: send to=%s err=%v", to, err)
	}
}
