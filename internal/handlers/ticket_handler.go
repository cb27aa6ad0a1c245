package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/gatepass/internal/helpers"
	"github.com/joshua-takyi/gatepass/internal/services"
	"github.com/joshua-takyi/gatepass/internal/tickets"
)

func DownloadTicket(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		serial := helpers.StringTrim(c.Param("serial"))
		pdf, _, err := ts.PublicTicket(c.Request.Context(), serial, c.Query("token"))
		if err != nil {
			respondError(c, err)
			return
		}
		sendPDF(c, serial, pdf)
	}
}

func AdminDownloadTicket(ts *services.TicketService) gin.HandlerFunc {
	return func(c *gin.Context) {
		serial := helpers.StringTrim(c.Param("serial"))
		pdf, _, err := ts.AdminTicket(c.Request.Context(), serial)
		if err != nil {
			respondError(c, err)
			return
		}
		sendPDF(c, serial, pdf)
	}
}

func sendPDF(c *gin.Context, serial string, pdf []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tickets.FileName(serial)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
