package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Leganyst/scrutineering-core/internal/config"
	"github.com/Leganyst/scrutineering-core/internal/db"
	"github.com/Leganyst/scrutineering-core/internal/model"
	"github.com/Leganyst/scrutineering-core/internal/repository"
	"github.com/Leganyst/scrutineering-core/internal/scrutineering"
	"github.com/Leganyst/scrutineering-core/internal/server"
	"github.com/Leganyst/scrutineering-core/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Загружаем конфиг БД из env.
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	appCfg := config.LoadAppConfig()

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей и частичный уникальный индекс на слот.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	if err := model.EnsureIndexes(gormDB); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	typeRepo := repository.NewGormInspectionTypeRepository(gormDB)
	checklistRepo := repository.NewGormChecklistRepository(gormDB)
	resultRepo := repository.NewGormResultRepository(gormDB)
	teamRepo := repository.NewGormTeamRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	// 5. Доменные сервисы.
	window, err := scrutineering.NewOperatingWindow(appCfg.OpeningTime, appCfg.ClosingTime)
	if err != nil {
		log.Fatalf("operating window: %v", err)
	}
	retry := scrutineering.RetryPolicy{
		Attempts:  appCfg.RetryAttempts,
		BaseDelay: time.Duration(appCfg.RetryBaseDelayMs) * time.Millisecond,
	}
	storeTimeout := time.Duration(appCfg.StoreTimeoutSec) * time.Second
	sweepInterval := time.Duration(appCfg.SweepIntervalSec) * time.Second

	allocator := service.NewSlotAllocator(bookingRepo, typeRepo, eventRepo, window, storeTimeout, logger)
	machine := service.NewBookingStateMachine(bookingRepo, eventRepo, retry, storeTimeout, logger)
	tracker := service.NewChecklistProgressTracker(bookingRepo, checklistRepo, eventRepo, retry, storeTimeout, sweepInterval, logger)
	recorder := service.NewInspectionResultRecorder(resultRepo, eventRepo, tracker, machine, storeTimeout, logger)

	// 6. Фоновая досылка застрявших записей чек-листа.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go tracker.RunSweep(sweepCtx)

	// 7. HTTP-сервер.
	srv := server.New(allocator, machine, tracker, recorder,
		bookingRepo, typeRepo, checklistRepo, resultRepo, teamRepo, userRepo, eventRepo, logger)
	httpServer := &http.Server{
		Addr:    appCfg.HTTPAddr,
		Handler: srv.Routes(),
	}

	logger.Info("scrutineering core listening", "addr", appCfg.HTTPAddr)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down HTTP server...")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
