package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/megamarket-backend/internal/http/request"
	"github.com/yungbote/megamarket-backend/internal/http/response"
	"github.com/yungbote/megamarket-backend/internal/services"
)

type NodeHandler struct {
	nodes services.NodeService
}

func NewNodeHandler(nodes services.NodeService) *NodeHandler {
	return &NodeHandler{nodes: nodes}
}

// GET /nodes/:id
func (h *NodeHandler) GetNode(c *gin.Context) {
	id, err := request.ParseID(c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	node, err := h.nodes.GetTree(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, node)
}

// DELETE /delete/:id
// GET /delete?id=
func (h *NodeHandler) Delete(c *gin.Context) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.Query("id")
	}
	id, err := request.ParseID(raw)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.nodes.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondEmpty(c)
}
