package persistence

import (
	"wbhub/internal/app/infra/persistence/entity"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// NewDB opens the Postgres connection.
func NewDB(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Warn),
	})
}

// Migrate creates or updates the service-owned tables. The order mirror
// table is owned by the external sync and deliberately excluded.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.OrderStatusLog{},
		&entity.HangingSupply{},
		&entity.FinalSupply{},
		&entity.SupplyOperation{},
	)
}
