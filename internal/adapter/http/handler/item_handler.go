package handler

import (
	"provenance-ledger/internal/adapter/http/dto"
	"provenance-ledger/internal/adapter/http/middleware"
	"provenance-ledger/internal/core/ports"
	"provenance-ledger/pkg/apperror"
	"provenance-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ItemHandler handles product line and item endpoints.
type ItemHandler struct {
	itemSvc ports.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemSvc ports.ItemService) *ItemHandler {
	return &ItemHandler{itemSvc: itemSvc}
}

// CreateProductLine handles POST /api/v1/product-lines.
func (h *ItemHandler) CreateProductLine(c *gin.Context) {
	var req dto.CreateProductLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	line, err := h.itemSvc.CreateProductLine(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProductLineResponse(line))
}

// CreateItem handles POST /api/v1/items.
func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.itemSvc.CreateItem(c.Request.Context(), ports.CreateItemRequest{
		ProductLineCode: req.ProductLineCode,
		NFCSerialNumber: req.NFCSerialNumber,
		Owner:           req.Owner.Party(),
		RequestNonce:    req.RequestNonce,
		Actor:           middleware.OperatorID(c),
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToItemResultResponse(result))
}

// Transfer handles POST /api/v1/items/:id/transfers.
func (h *ItemHandler) Transfer(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.itemSvc.TransferItem(c.Request.Context(), ports.TransferItemRequest{
		ItemID:       itemID,
		NewOwner:     req.NewOwner.Party(),
		RequestNonce: req.RequestNonce,
		Actor:        middleware.OperatorID(c),
		ClientIP:     c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToItemResultResponse(result))
}

// Verify handles GET /api/v1/items/:id/verify. A broken chain is reported in
// the body with 200; only lookup and storage failures are errors.
func (h *ItemHandler) Verify(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	result, err := h.itemSvc.VerifyItem(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToVerifyResponse(itemID.String(), result))
}

// History handles GET /api/v1/items/:id/history.
func (h *ItemHandler) History(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	history, err := h.itemSvc.ItemHistory(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToHistoryResponse(history))
}

func itemIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("item id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
