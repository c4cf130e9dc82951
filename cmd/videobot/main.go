package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cute-videos/internal/bot"
	"cute-videos/internal/config"
	"cute-videos/internal/repository"
	"cute-videos/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	catalog := repository.LoadCatalog(cfg.CategoriesFile, cfg.VideosFile)

	users := repository.NewUserStore(repository.FileSink{Path: cfg.UserLogFile})
	if err := users.Load(cfg.UserLogFile); err != nil {
		log.Printf("load user log: %v", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	scheduler := service.NewDeletionScheduler(api, cfg.DeleteTimeout, nil)
	delivery := service.NewDeliveryService(api, cfg.ChannelID, scheduler, cfg.DeleteTimeout)
	telegramBot := bot.New(api, catalog, users, delivery, &cfg)

	cronSvc := service.NewCronService(time.Local)
	if cfg.FlushInterval > 0 {
		if _, err := cronSvc.ScheduleInterval(cfg.FlushInterval, func() {
			if err := users.Flush(); err != nil {
				log.Printf("flush user log: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule flush: %v", err)
		}
		cronSvc.Start()
		defer cronSvc.Stop()
	}

	log.Println("Cute videos bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}

	if err := users.Flush(); err != nil {
		log.Printf("final user log flush: %v", err)
	}
	log.Println("Shutdown complete.")
}
