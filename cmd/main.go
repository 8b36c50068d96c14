package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/SM-TRIBE/bot/internal/api/handler"
	"github.com/SM-TRIBE/bot/internal/config"
	"github.com/SM-TRIBE/bot/internal/discovery"
	"github.com/SM-TRIBE/bot/internal/lib/sl"
	"github.com/SM-TRIBE/bot/internal/session"
	"github.com/SM-TRIBE/bot/internal/storage"
	"github.com/SM-TRIBE/bot/internal/telegram"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.MustLoad()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	log.Info("starting dating bot backend")

	store := storage.NewFileStore(cfg.DataFile, log)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Error("cannot authorize bot", sl.Err(err))
		os.Exit(1)
	}
	log.Info("bot authorized", slog.String("username", api.Self.UserName))

	// Telegram pushes updates to BASE_URL/webhook/<token>.
	webhookURL := cfg.BaseURL + "/webhook/" + cfg.BotToken
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		log.Error("cannot build webhook config", sl.Err(err))
		os.Exit(1)
	}
	if _, err := api.Request(wh); err != nil {
		log.Error("cannot register webhook", sl.Err(err))
		os.Exit(1)
	}

	bot := telegram.NewBotService(log, cfg, telegram.NewAPISender(api), store,
		session.NewRegistry(), discovery.NewEngine(), api.Self.UserName)

	r := gin.Default()
	handler.NewHandler(log, bot, cfg.BotToken).Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info("listening", slog.String("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil {
		log.Error("server stopped", sl.Err(err))
		os.Exit(1)
	}
}
