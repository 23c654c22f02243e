package handler

import (
	"provenance-ledger/internal/adapter/http/dto"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/pkg/apperror"
	"provenance-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// TagHandler serves the public scan endpoint that tag links point at.
type TagHandler struct {
	itemSvc ports.ItemService
}

func NewTagHandler(itemSvc ports.ItemService) *TagHandler {
	return &TagHandler{itemSvc: itemSvc}
}

// Scan handles GET /api/v1/tags/scan?key=&version=.
// Malformed links get the same TAG_001 answer as a failed decryption.
func (h *TagHandler) Scan(c *gin.Context) {
	var q dto.ScanQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.ErrInvalidTag())
		return
	}

	history, err := h.itemSvc.ScanTag(c.Request.Context(), ports.ScanTagRequest{
		Token:    q.Key,
		Version:  q.Version,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToHistoryResponse(history))
}
