package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"timeline-planner/internal/bot"
	"timeline-planner/internal/config"
	"timeline-planner/internal/repository"
	"timeline-planner/internal/service"
	"timeline-planner/internal/timeline"
	"timeline-planner/internal/ui"
)

func main() {
	serve := flag.Bool("serve", false, "run the Telegram agenda bot instead of the timeline UI")
	flag.Parse()

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
	elementRepo := repository.NewElementRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	taskSvc := service.NewTaskService(taskRepo, elementRepo)
	agendaSvc := service.NewAgendaService(taskRepo, elementRepo)

	if *serve {
		runBot(cfg, userRepo, taskRepo, taskSvc, agendaSvc)
		return
	}

	session := timeline.NewSession(taskRepo, time.Now(), cfg.DaysBack, cfg.DaysForward, timeline.Grid{}, 0)
	if err := session.Load(context.Background()); err != nil {
		log.Fatalf("load timeline: %v", err)
	}

	app := ui.NewApp(session, taskSvc)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatalf("ui: %v", err)
	}
}

func runBot(cfg config.Config, userRepo *repository.UserRepository, taskRepo *repository.TaskRepository, taskSvc *service.TaskService, agendaSvc *service.AgendaService) {
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required in serve mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, taskRepo, taskSvc, agendaSvc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.AgendaTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyAgendas(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("agenda broadcast: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule agenda: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Timeline planner bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
