package supply

import (
	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/pkg/ginx"

	"github.com/gin-gonic/gin"
)

// List returns every configured account's supply list.
// GET /api/v1/supplies
func (h *SupplyHandler) List(c *gin.Context) {
	results := h.supplyService.ListSupplies(c.Request.Context())
	ginx.Success(c, results)
}

// DeleteRequest is the batch supply delete body.
type DeleteRequest struct {
	Supplies []svsupply.SupplyRef `json:"supplies" binding:"required,min=1,dive"`
}

// Delete removes marketplace supplies one by one.
// POST /api/v1/supplies/delete
func (h *SupplyHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	outcomes := h.supplyService.DeleteSupplies(c.Request.Context(), req.Supplies)
	ginx.Success(c, outcomes)
}

// DeliverRequest is the batch supply deliver body.
type DeliverRequest struct {
	Supplies []svsupply.SupplyRef `json:"supplies" binding:"required,min=1,dive"`
}

// Deliver switches supplies into delivery on the marketplace.
// POST /api/v1/supplies/deliver
func (h *SupplyHandler) Deliver(c *gin.Context) {
	var req DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	outcomes := h.supplyService.DeliverSupplies(c.Request.Context(), req.Supplies)
	ginx.Success(c, outcomes)
}
