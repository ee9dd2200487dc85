package routers

import (
	"wbhub/internal/app/infra/persistence/redisx"
	"wbhub/internal/app/pkg/logger"
	"wbhub/internal/app/server/handlers/operation"
	"wbhub/internal/app/server/handlers/order"
	"wbhub/internal/app/server/handlers/supply"
	"wbhub/internal/app/server/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all routes. Mutating supply endpoints additionally go
// through the Redis request dedup guard.
func SetupRoutes(
	supplyHandler *supply.SupplyHandler,
	orderHandler *order.OrderHandler,
	operationHandler *operation.OperationHandler,
	dedup *redisx.DedupClient,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()

	r.Use(middlewares.CORS())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "wbhub",
		})
	})

	v1 := r.Group("/api/v1")
	{
		supplies := v1.Group("/supplies")
		{
			supplies.GET("", supplyHandler.List)
			supplies.GET("/hanging", supplyHandler.HangingList)
			supplies.GET("/hanging/:supplyID", supplyHandler.HangingGet)

			guarded := supplies.Group("", middlewares.Dedup(dedup, log))
			{
				guarded.POST("/move-orders", supplyHandler.MoveOrders)
				guarded.POST("/delete", supplyHandler.Delete)
				guarded.POST("/deliver", supplyHandler.Deliver)
				guarded.POST("/delivery-fictitious", supplyHandler.DeliverFictitious)
				guarded.POST("/shipment-fictitious", supplyHandler.ShipFictitious)
			}
		}

		orders := v1.Group("/orders")
		{
			orders.POST("/delivered", orderHandler.Delivered)
		}

		operations := v1.Group("/operations")
		{
			operations.GET("/:operationID", operationHandler.Get)
		}
	}

	return r
}
