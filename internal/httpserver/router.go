package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"vendebot/internal/engine"
	"vendebot/internal/messaging"
	businessrepo "vendebot/internal/repository/business"
	couponrepo "vendebot/internal/repository/coupon"
	courierrepo "vendebot/internal/repository/courier"
	customerrepo "vendebot/internal/repository/customer"
	productrepo "vendebot/internal/repository/product"
	promotionrepo "vendebot/internal/repository/promotion"
)

// MessageHandler consumes one inbound webhook message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg engine.Inbound)
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Handler     MessageHandler
	VerifyToken string

	Businesses businessrepo.Repository
	Customers  customerrepo.Repository
	Products   productrepo.Repository
	Coupons    couponrepo.Repository
	Couriers   courierrepo.Repository
	Promotions promotionrepo.Repository

	Sender        messaging.Sender
	BulkSendDelay time.Duration
}

// buildRouter wires routes for the webhook and the admin API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/webhook", verifyWebhook(deps.VerifyToken))
	router.POST("/webhook", receiveWebhook(logger, deps.Handler))

	admin := router.Group("/admin")
	admin.Use(cors.Default())
	{
		admin.GET("/businesses", listBusinesses(deps.Businesses))
		admin.GET("/customers", listCustomers(deps.Customers))

		admin.GET("/businesses/:id/products", listProducts(deps.Products))
		admin.PUT("/businesses/:id/products", upsertProduct(deps.Products))
		admin.DELETE("/businesses/:id/products/:ref", deleteProduct(deps.Products))

		admin.GET("/businesses/:id/coupons", listCoupons(deps.Coupons))
		admin.PUT("/businesses/:id/coupons", upsertCoupon(deps.Coupons))
		admin.DELETE("/businesses/:id/coupons/:code", deleteCoupon(deps.Coupons))

		admin.GET("/businesses/:id/couriers", listCouriers(deps.Couriers))
		admin.PUT("/businesses/:id/couriers", upsertCourier(deps.Couriers))
		admin.DELETE("/businesses/:id/couriers/:courierID", deleteCourier(deps.Couriers))

		admin.GET("/businesses/:id/promotions", listPromotions(deps.Promotions))
		admin.PUT("/businesses/:id/promotions", upsertPromotion(deps.Promotions))
		admin.DELETE("/businesses/:id/promotions/:promotionID", deletePromotion(deps.Promotions))

		admin.POST("/broadcast", broadcastHandler(logger, deps))
	}

	return router
}
