package main

import (
	"context"
	"time"

	"giftscout-backend/lib/configutil"
	configsqlite "giftscout-backend/lib/configutil/sqlite"
	"giftscout-backend/lib/scrapers/pricebot"
	"giftscout-backend/lib/searchlog"
	"giftscout-backend/lib/serviceutil"
	"giftscout-backend/lib/telemetry"
	"giftscout-backend/lib/tgsession"
	"giftscout-backend/services/gifts"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	Port     int `json:"port"`
	Telegram struct {
		ApiID       int    `json:"api_id"`
		ApiHash     string `json:"api_hash"`
		SessionFile string `json:"session_file"`
	} `json:"telegram"`
	PriceBot struct {
		Username           string `json:"username"`
		Command            string `json:"command"`
		SearchTemplate     string `json:"search_template"`
		SettleDelaySeconds int    `json:"settle_delay_seconds"`
		HistoryLimit       int    `json:"history_limit"`
	} `json:"pricebot"`
	SearchLog configsqlite.Struct `json:"search_log"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Telegram.ApiID == 0 || config.Telegram.ApiHash == "" {
		serviceutil.Fatal("telegram api_id and api_hash are required in config", nil)
	}
	if config.Telegram.SessionFile == "" {
		serviceutil.Fatal("telegram session_file is required in config", nil)
	}
	if config.Port == 0 {
		config.Port = 3000
	}

	t, err := telemetry.SetupFromEnv(ctx, "gifts-live")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(false)

	session, err := tgsession.NewClient(tgsession.Options{
		ApiID:       config.Telegram.ApiID,
		ApiHash:     config.Telegram.ApiHash,
		SessionFile: config.Telegram.SessionFile,
	})
	if err != nil {
		serviceutil.Fatal("failed to create telegram client", err)
	}
	stop, err := session.Connect(ctx)
	if err != nil {
		serviceutil.Fatal("failed to connect telegram session", err)
	}
	defer stop()

	provider, err := pricebot.NewProvider(pricebot.Options{
		Session:        session,
		BotUsername:    config.PriceBot.Username,
		Command:        config.PriceBot.Command,
		SearchTemplate: config.PriceBot.SearchTemplate,
		SettleDelay:    time.Duration(config.PriceBot.SettleDelaySeconds) * time.Second,
		HistoryLimit:   config.PriceBot.HistoryLimit,
	})
	if err != nil {
		serviceutil.Fatal("failed to create pricebot provider", err)
	}

	logStore := searchlog.Store{}
	if config.SearchLog.File != "" {
		db, err := config.SearchLog.OpenDB(searchlog.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open search log database", err)
		}
		logStore = searchlog.NewStore(db)
	}

	service, err := gifts.NewService(provider, logStore)
	if err != nil {
		serviceutil.Fatal("failed to create gifts service", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	service.RegisterRoutes(e)
	go serviceutil.StartHttpServer(config.Port, e)

	<-ctx.Done()
}
