package operation

import (
	"encoding/json"
	"errors"

	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/pkg/ginx"
	"wbhub/internal/app/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OperationHandler exposes operation polling.
type OperationHandler struct {
	supplyService *svsupply.SupplyService
	log           logger.Logger
}

// NewOperationHandler creates the operation handler.
func NewOperationHandler(supplyService *svsupply.SupplyService, log logger.Logger) *OperationHandler {
	return &OperationHandler{
		supplyService: supplyService,
		log:           log,
	}
}

// Get returns one operation's persisted status and result.
// GET /api/v1/operations/:operationID
func (h *OperationHandler) Get(c *gin.Context) {
	op, err := h.supplyService.GetOperation(c.Request.Context(), c.Param("operationID"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ginx.NotFound(c, "operation not found")
			return
		}
		h.log.Errorf(c.Request.Context(), "get operation: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}

	var result interface{}
	if len(op.Response) > 0 {
		_ = json.Unmarshal(op.Response, &result)
	}

	ginx.Success(c, gin.H{
		"operation_id": op.OperationID,
		"status":       op.Status,
		"operator":     op.Operator,
		"result":       result,
		"error":        op.ErrorMessage,
		"created_at":   op.CreatedAt,
		"completed_at": op.CompletedAt,
	})
}
