package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"

	httpadapter "rialto/internal/adapter/http"
	metricsinmem "rialto/internal/adapter/metrics/inmemory"
	staticpath "rialto/internal/adapter/pathfinder/static"
	gormrepo "rialto/internal/adapter/repo/gorm"
	"rialto/internal/adapter/repo/memory"
	"rialto/internal/app/activity"
	"rialto/internal/app/contract"
	"rialto/internal/app/ledger"
	"rialto/internal/app/ports"
	"rialto/internal/app/scheduler"
	"rialto/internal/app/stratagem"
	"rialto/internal/config"
)

type repos struct {
	citizens      ports.CitizenRepository
	buildings     ports.BuildingRepository
	resources     ports.ResourceRepository
	activities    ports.ActivityRepository
	contracts     ports.ContractRepository
	stratagems    ports.StratagemRepository
	transactions  ports.TransactionRepository
	notifications ports.NotificationRepository
	txManager     ports.TxManager
}

func main() {
	cfg, tuning, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	r := mustBuildRepos(cfg, logger)

	ledgerSvc := ledger.Service{
		Citizens:     r.citizens,
		Resources:    r.resources,
		Transactions: r.transactions,
	}
	marketSvc := contract.Service{
		Contracts: r.contracts,
		Buildings: r.buildings,
		Ledger:    ledgerSvc,
		Tuning:    tuning,
	}
	path := staticpath.Provider{MetersPerMinute: tuning.WalkMetersPerMinute}

	createActivityUC := activity.CreateUseCase{
		TxManager:  r.txManager,
		Citizens:   r.citizens,
		Buildings:  r.buildings,
		Resources:  r.resources,
		Contracts:  r.contracts,
		Activities: r.activities,
		Path:       path,
		Tuning:     tuning,
	}
	processActivityUC := activity.ProcessUseCase{
		TxManager:     r.txManager,
		Citizens:      r.citizens,
		Buildings:     r.buildings,
		Resources:     r.resources,
		Contracts:     r.contracts,
		Activities:    r.activities,
		Notifications: r.notifications,
		Ledger:        ledgerSvc,
		Market:        marketSvc,
		Tuning:        tuning,
	}
	createContractUC := contract.CreateUseCase{
		TxManager: r.txManager,
		Citizens:  r.citizens,
		Buildings: r.buildings,
		Market:    marketSvc,
	}
	createStratagemUC := stratagem.CreateUseCase{
		TxManager:  r.txManager,
		Citizens:   r.citizens,
		Buildings:  r.buildings,
		Stratagems: r.stratagems,
		Ledger:     ledgerSvc,
		Tuning:     tuning,
	}
	processStratagemUC := stratagem.ProcessUseCase{
		TxManager:     r.txManager,
		Citizens:      r.citizens,
		Activities:    r.activities,
		Stratagems:    r.stratagems,
		Notifications: r.notifications,
		Ledger:        ledgerSvc,
		Tuning:        tuning,
	}

	kpiRecorder := metricsinmem.NewRecorder()

	loop := scheduler.Loop{
		Activities:     processActivityUC,
		Stratagems:     processStratagemUC,
		Market:         marketSvc,
		Ledger:         ledgerSvc,
		ActivityRepo:   r.activities,
		StratagemRepo:  r.stratagems,
		TxManager:      r.txManager,
		Metrics:        kpiRecorder,
		Interval:       cfg.TickInterval,
		Workers:        cfg.Workers,
		ReconcileAfter: cfg.ReconcileAfter,
		Logger:         logger,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	h := httpadapter.Handler{
		CreateActivityUC:  createActivityUC,
		CreateContractUC:  createContractUC,
		CreateStratagemUC: createStratagemUC,
		Activities:        r.activities,
		Contracts:         r.contracts,
		Stratagems:        r.stratagems,
		Transactions:      r.transactions,
		KPI:               kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.ListenAddr))
	h.RegisterRoutes(s)

	logger.Info("rialto server listening", "addr", cfg.ListenAddr)
	s.Spin()
}

func mustBuildRepos(cfg config.Config, logger *slog.Logger) repos {
	if cfg.DatabaseDSN == "" {
		logger.Warn("DATABASE_DSN not set, running on the in-memory store")
		store := memory.NewStore()
		return repos{
			citizens:      memory.NewCitizenRepo(store),
			buildings:     memory.NewBuildingRepo(store),
			resources:     memory.NewResourceRepo(store),
			activities:    memory.NewActivityRepo(store),
			contracts:     memory.NewContractRepo(store),
			stratagems:    memory.NewStratagemRepo(store),
			transactions:  memory.NewTransactionRepo(store),
			notifications: memory.NewNotificationRepo(store),
			txManager:     memory.NewTxManager(store),
		}
	}

	db, err := gormrepo.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	migrCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := gormrepo.ApplyMigrations(migrCtx, db, cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	return repos{
		citizens:      gormrepo.NewCitizenRepo(db),
		buildings:     gormrepo.NewBuildingRepo(db),
		resources:     gormrepo.NewResourceRepo(db),
		activities:    gormrepo.NewActivityRepo(db),
		contracts:     gormrepo.NewContractRepo(db),
		stratagems:    gormrepo.NewStratagemRepo(db),
		transactions:  gormrepo.NewTransactionRepo(db),
		notifications: gormrepo.NewNotificationRepo(db),
		txManager:     gormrepo.NewTxManager(db),
	}
}
