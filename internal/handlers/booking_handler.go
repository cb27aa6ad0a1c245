package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/services"
)

type createOrderRequest struct {
	Amount any `json:"amount"`
}

func CreateOrder(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		amount, err := services.ParsePrice(req.Amount)
		if err != nil {
			badRequest(c, "amount "+err.Error())
			return
		}

		order, err := bs.CreateOrder(c.Request.Context(), amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(order, "Order created"))
	}
}

func VerifyPayment(bs *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.ConfirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		result, err := bs.ConfirmPayment(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		if result.Replayed {
			c.JSON(http.StatusOK, models.SuccessResponse(result, "Booking already confirmed"))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(result, "Payment verified and booking confirmed"))
	}
}
