package main

import (
	"sort"

	"wbhub/internal/app/config"
	"wbhub/internal/app/domains/modules/mderp"
	"wbhub/internal/app/domains/modules/mdselection"
	"wbhub/internal/app/domains/modules/mdshipment"
	"wbhub/internal/app/domains/modules/mdvalidation"
	"wbhub/internal/app/domains/repo/rpfinal"
	"wbhub/internal/app/domains/repo/rphanging"
	"wbhub/internal/app/domains/repo/rpoperation"
	"wbhub/internal/app/domains/repo/rpsnapshot"
	"wbhub/internal/app/domains/repo/rpstatuslog"
	"wbhub/internal/app/domains/services/svreconcile"
	"wbhub/internal/app/domains/services/svsupply"
	"wbhub/internal/app/infra/persistence"
	"wbhub/internal/app/infra/persistence/redisx"
	"wbhub/internal/app/infra/wbclient"
	"wbhub/internal/app/pkg/logger"
	"wbhub/internal/app/server/handlers/operation"
	"wbhub/internal/app/server/handlers/order"
	"wbhub/internal/app/server/handlers/supply"
	"wbhub/internal/app/server/routers"

	"github.com/gin-gonic/gin"
)

// App bundles the wired application.
type App struct {
	Engine     *gin.Engine
	Reconciler *svreconcile.Reconciler
	Logger     logger.Logger
}

// InitializeApp wires every layer by hand, bottom up.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	db, err := persistence.NewDB(cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := persistence.Migrate(db); err != nil {
		return nil, nil, err
	}

	dedup, err := redisx.NewDedupClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Dedup.LockTTL)
	if err != nil {
		return nil, nil, err
	}

	marketplace := wbclient.NewMarketplace(wbclient.NewClient(cfg.Tokens(), log))

	statusLogRepo := rpstatuslog.NewStatusLogRepository(db)
	hangingRepo := rphanging.NewHangingRepository(db)
	finalRepo := rpfinal.NewFinalRepository(db)
	operationRepo := rpoperation.NewOperationRepository(db)
	snapshotRepo := rpsnapshot.NewSnapshotRepository(db)

	validation := mdvalidation.NewValidationModule(marketplace, log)
	selection := mdselection.NewSelectionModule()
	erp := mderp.NewERPModule(cfg.OneC.Host, cfg.OneC.User, cfg.OneC.Password, cfg.INNs(), cfg.OneC.Timeout, log)
	shipment := mdshipment.NewShipmentModule(cfg.Shipment.BaseURL, cfg.Shipment.WarehouseID, cfg.Shipment.Timeout, log)

	accounts := make([]string, 0, len(cfg.Accounts))
	for name := range cfg.Accounts {
		accounts = append(accounts, name)
	}
	sort.Strings(accounts)

	supplyService := svsupply.NewSupplyService(
		marketplace, validation, selection, erp, shipment,
		statusLogRepo, hangingRepo, finalRepo, operationRepo, snapshotRepo,
		accounts, log,
	)
	reconciler := svreconcile.NewReconciler(
		marketplace, hangingRepo, operationRepo, dedup,
		cfg.Reconciler.Interval, cfg.Reconciler.RetentionDays, log,
	)

	supplyHandler := supply.NewSupplyHandler(supplyService, log)
	orderHandler := order.NewOrderHandler(supplyService, log)
	operationHandler := operation.NewOperationHandler(supplyService, log)

	engine := routers.SetupRoutes(supplyHandler, orderHandler, operationHandler, dedup, log)

	cleanup := func() {
		_ = dedup.Close()
		_ = log.Sync()
	}

	return &App{Engine: engine, Reconciler: reconciler, Logger: log}, cleanup, nil
}
