package supply

import (
	"errors"

	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/pkg/errorx"
	"wbhub/internal/app/pkg/ginx"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DeliverFictitiousRequest maps supply id to account.
type DeliverFictitiousRequest struct {
	Supplies map[string]string `json:"supplies" binding:"required,min=1"`
	Operator string            `json:"operator" binding:"required"`
}

// DeliverFictitious marks hanging supplies fictitiously delivered.
// POST /api/v1/supplies/delivery-fictitious
func (h *SupplyHandler) DeliverFictitious(c *gin.Context) {
	var req DeliverFictitiousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result := h.supplyService.DeliverFictitiousBatch(c.Request.Context(), req.Supplies, req.Operator)
	ginx.Success(c, result)
}

// ShipFictitious dispatches part of a hanging supply and returns the labels.
// POST /api/v1/supplies/shipment-fictitious
func (h *SupplyHandler) ShipFictitious(c *gin.Context) {
	var req svsupply.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.supplyService.ShipFictitious(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, errorx.ErrSupplyNotFound):
			ginx.NotFound(c, err.Error())
		case errorx.IsValidation(err):
			ginx.BadRequest(c, err.Error())
		default:
			h.log.Errorf(c.Request.Context(), "fictitious shipment failed: %v", err)
			ginx.InternalError(c, err.Error())
		}
		return
	}
	ginx.Success(c, result)
}

// HangingList lists hanging supplies with table statistics.
// GET /api/v1/supplies/hanging
func (h *SupplyHandler) HangingList(c *gin.Context) {
	views, stats, err := h.supplyService.GetHangingList(c.Request.Context())
	if err != nil {
		h.log.Errorf(c.Request.Context(), "hanging list failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}
	ginx.Success(c, gin.H{
		"supplies":   views,
		"statistics": stats,
	})
}

// HangingGet returns one hanging supply.
// GET /api/v1/supplies/hanging/:supplyID
func (h *SupplyHandler) HangingGet(c *gin.Context) {
	view, err := h.supplyService.GetHangingByID(c.Request.Context(), c.Param("supplyID"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ginx.NotFound(c, "hanging supply not found")
			return
		}
		h.log.Errorf(c.Request.Context(), "hanging get failed: %v", err)
		ginx.InternalError(c, err.Error())
		return
	}
	ginx.Success(c, view)
}
