package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/megamarket-backend/internal/http/request"
	"github.com/yungbote/megamarket-backend/internal/http/response"
	"github.com/yungbote/megamarket-backend/internal/services"
)

type SalesHandler struct {
	sales services.SalesService
}

func NewSalesHandler(sales services.SalesService) *SalesHandler {
	return &SalesHandler{sales: sales}
}

// GET /sales?date=
func (h *SalesHandler) ListSales(c *gin.Context) {
	at, err := request.ParseDate(c.Query("date"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	items, err := h.sales.ListSales(c.Request.Context(), at)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}
