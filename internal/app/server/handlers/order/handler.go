package order

import (
	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/pkg/ginx"
	"wbhub/internal/app/pkg/logger"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes order-level operations.
type OrderHandler struct {
	supplyService *svsupply.SupplyService
	log           logger.Logger
}

// NewOrderHandler creates the order handler.
func NewOrderHandler(supplyService *svsupply.SupplyService, log logger.Logger) *OrderHandler {
	return &OrderHandler{
		supplyService: supplyService,
		log:           log,
	}
}

// DeliveredRequest is the delivered-orders report body.
type DeliveredRequest struct {
	Orders   []svsupply.DeliveredOrder `json:"orders" binding:"required,min=1,dive"`
	Operator string                    `json:"operator" binding:"required"`
}

// Delivered records physically delivered orders in the ledger.
// POST /api/v1/orders/delivered
func (h *OrderHandler) Delivered(c *gin.Context) {
	var req DeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	err := h.supplyService.LogDelivered(c.Request.Context(), req.Orders, req.Operator)
	if err != nil {
		h.log.Errorf(c.Request.Context(), "record delivered orders: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}
	ginx.Success(c, gin.H{"recorded": len(req.Orders)})
}
