package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vendebot/internal/domain"
	"vendebot/internal/messaging"
	businessrepo "vendebot/internal/repository/business"
	couponrepo "vendebot/internal/repository/coupon"
	courierrepo "vendebot/internal/repository/courier"
	customerrepo "vendebot/internal/repository/customer"
	productrepo "vendebot/internal/repository/product"
	promotionrepo "vendebot/internal/repository/promotion"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func listBusinesses(repo businessrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListActive(c.Request.Context())
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func listCustomers(repo customerrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context())
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func listProducts(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func upsertProduct(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domain.Product
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p.BusinessID = c.Param("id")
		saved, err := repo.Upsert(c.Request.Context(), p)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func deleteProduct(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, err := strconv.Atoi(c.Param("ref"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ref must be an integer"})
			return
		}
		if err := repo.Delete(c.Request.Context(), c.Param("id"), ref); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listCoupons(repo couponrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func upsertCoupon(repo couponrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cpn domain.Coupon
		if err := c.ShouldBindJSON(&cpn); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cpn.BusinessID = c.Param("id")
		cpn.Code = domain.NormalizeCouponCode(cpn.Code)
		if cpn.Code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
			return
		}
		if err := repo.Upsert(c.Request.Context(), cpn); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cpn)
	}
}

func deleteCoupon(repo couponrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := domain.NormalizeCouponCode(c.Param("code"))
		if err := repo.Delete(c.Request.Context(), c.Param("id"), code); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listCouriers(repo courierrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func upsertCourier(repo courierrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cr domain.Courier
		if err := c.ShouldBindJSON(&cr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cr.BusinessID = c.Param("id")
		saved, err := repo.Upsert(c.Request.Context(), cr)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func deleteCourier(repo courierrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id"), c.Param("courierID")); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listPromotions(repo promotionrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.List(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": out, "total": len(out)})
	}
}

func upsertPromotion(repo promotionrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p domain.Promotion
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p.BusinessID = c.Param("id")
		saved, err := repo.Upsert(c.Request.Context(), p)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func deletePromotion(repo promotionrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("id"), c.Param("promotionID")); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type broadcastRequest struct {
	Message string   `json:"message" binding:"required"`
	Phones  []string `json:"phones"`
}

// broadcastHandler pushes one message to an explicit recipient list, or to
// every known customer when the list is empty. Sends are paced; failures
// are logged and skipped.
func broadcastHandler(logger *log.Logger, deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req broadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		phones := req.Phones
		if len(phones) == 0 {
			customers, err := deps.Customers.List(c.Request.Context())
			if err != nil {
				c.JSON(statusFor(err), gin.H{"error": err.Error()})
				return
			}
			for _, cust := range customers {
				phones = append(phones, cust.Phone)
			}
		}
		sent := messaging.Broadcast(c.Request.Context(), deps.Sender, logger, phones, req.Message, deps.BulkSendDelay)
		c.JSON(http.StatusOK, gin.H{"recipients": len(phones), "sent": sent})
	}
}
