package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/megamarket-backend/internal/http/request"
	"github.com/yungbote/megamarket-backend/internal/http/response"
	"github.com/yungbote/megamarket-backend/internal/services"
)

type ImportHandler struct {
	imports services.ImportService
}

func NewImportHandler(imports services.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// POST /imports
func (h *ImportHandler) Import(c *gin.Context) {
	var req request.Import
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, request.InvalidBody(err))
		return
	}
	batch, err := req.ToBatch()
	if err != nil {
		response.Fail(c, err)
		return
	}
	if _, err := h.imports.Import(c.Request.Context(), batch); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondEmpty(c)
}
