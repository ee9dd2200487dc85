package supply

import (
	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/pkg/logger"
)

// SupplyHandler exposes the supply lifecycle over HTTP.
type SupplyHandler struct {
	supplyService *svsupply.SupplyService
	log           logger.Logger
}

// NewSupplyHandler creates the supply handler.
func NewSupplyHandler(supplyService *svsupply.SupplyService, log logger.Logger) *SupplyHandler {
	return &SupplyHandler{
		supplyService: supplyService,
		log:           log,
	}
}
