package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinetics/internal/bot"
	"kinetics/internal/config"
	"kinetics/internal/repository"
	"kinetics/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	squadRepo := repository.NewSquadRepository(db)

	taskSvc := service.NewTaskService(taskRepo, categoryRepo, entryRepo, cfg.RecoveryThreshold, cfg.RecoveryGrace)
	reportSvc := service.NewReportService(taskRepo, categoryRepo, entryRepo, cfg.RecoveryGrace)
	squadSvc := service.NewSquadService(squadRepo, taskRepo, userRepo)

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, entryRepo, taskSvc, reportSvc, squadSvc, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("report: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
	}

	// Settle squad days shortly after midnight, once yesterday is final.
	if _, err := scheduler.ScheduleDaily("00:10", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := squadSvc.SettleYesterday(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("settle squads: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule squad settlement: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Kinetics bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
