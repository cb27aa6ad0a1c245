package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/services"
)

type updatePricesRequest struct {
	DayPass    any `json:"dayPass"`
	SeasonPass any `json:"seasonPass"`
}

func GetPrices(ps *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(ps.GetPrices(c.Request.Context()), ""))
	}
}

func UpdatePrices(ps *services.PricingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updatePricesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}

		p, err := ps.UpdatePrices(c.Request.Context(), req.DayPass, req.SeasonPass)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(p, "Prices updated"))
	}
}
