package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/novayshop/shopbot/config"
	"github.com/novayshop/shopbot/db"
	"github.com/novayshop/shopbot/internal/bot"
	"github.com/novayshop/shopbot/internal/metrics"
	"github.com/novayshop/shopbot/internal/payments"
	"github.com/novayshop/shopbot/internal/repository"
	"github.com/novayshop/shopbot/internal/service"
	"github.com/novayshop/shopbot/internal/webhook"
	"github.com/novayshop/shopbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		utils.InitLogger("info").Fatal("Failed to load config: ", err)
	}
	logger := utils.InitLogger(cfg.LogLevel)

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}
	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	ctx := context.Background()
	if err := repo.SeedDefaults(ctx); err != nil {
		logger.Fatal("Failed to seed products: ", err)
	}

	telegramBot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}

	m := metrics.Registry(cfg.MetricsNamespace)
	invoicer := payments.New(payments.Config{
		BaseURL:     cfg.NowpaymentsBaseURL,
		APIKey:      cfg.NowpaymentsAPIKey,
		PayCurrency: cfg.PayCurrency,
		SuccessURL:  cfg.SuccessURL,
		CancelURL:   cfg.CancelURL,
	}, m, logger)
	notifier := bot.NewTelegramNotifier(telegramBot, logger, cfg.AdminChatID, cfg.AdminChannelID)

	svc := service.New(repo, invoicer, notifier, m, logger, service.Config{
		MinDepositCents: cfg.MinDepositEUR * 100,
		CustomMinCents:  cfg.CustomMinEUR * 100,
		AdminID:         cfg.AdminChatID,
	})

	handler := webhook.NewHandler(svc, cfg.NowpaymentsIPNSecret, m, logger)
	server := webhook.NewServer(cfg.HTTPListenAddr, handler, prometheus.DefaultGatherer, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed: ", err)
		}
	}()

	shopBot := bot.NewBot(telegramBot, svc, logger, &cfg)
	go shopBot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Infof("Received %s, shutting down", sig)

	shopBot.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown: %v", err)
	}
}
