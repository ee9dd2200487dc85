package supply

import (
	"errors"

	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/pkg/errorx"
	"wbhub/internal/app/pkg/ginx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MoveOrders moves orders between supplies.
// POST /api/v1/supplies/move-orders
func (h *SupplyHandler) MoveOrders(c *gin.Context) {
	var req svsupply.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if req.OperationID == "" {
		req.OperationID = uuid.NewString()
	}

	result, err := h.supplyService.MoveOrders(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, errorx.ErrOperationExists):
			ginx.Conflict(c, "operation already in progress, poll /api/v1/operations/"+req.OperationID)
		case errorx.IsValidation(err):
			ginx.BadRequest(c, err.Error())
		default:
			h.log.Errorf(c.Request.Context(), "move orders failed: %v", err)
			ginx.InternalError(c, err.Error())
		}
		return
	}

	ginx.Success(c, gin.H{
		"operation_id": req.OperationID,
		"result":       result,
	})
}
