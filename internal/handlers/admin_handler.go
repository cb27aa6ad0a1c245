package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/helpers"
	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/joshua-takyi/gatepass/internal/services"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type verifyQRRequest struct {
	QRData string `json:"qrData" binding:"required"`
}

func AdminLogin(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "username and password are required")
			return
		}

		res, err := as.Login(helpers.StringTrim(req.Username), req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, "Login successful"))
	}
}

func ListBookings(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := as.Dashboard(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(d, ""))
	}
}

// VerifyQR answers 200 for every well-formed scan; the verdict is in the
// response status (valid, invalid, already_used).
func VerifyQR(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyQRRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "qrData is required")
			return
		}

		res, err := as.VerifyScan(c.Request.Context(), req.QRData)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ApiResponse{
			Success: res.Status == models.StatusValid,
			Status:  res.Status,
			Data:    res,
		})
	}
}

func PurgeBookings(as *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := as.PurgeBookings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"deleted": n}, "All bookings deleted"))
	}
}
