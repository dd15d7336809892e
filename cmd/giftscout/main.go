package main

import (
	"context"
	"embed"
	"net/http"
	"time"

	"giftscout-backend/lib/configutil"
	configsqlite "giftscout-backend/lib/configutil/sqlite"
	"giftscout-backend/lib/scrapers/peek"
	"giftscout-backend/lib/searchlog"
	"giftscout-backend/lib/serviceutil"
	"giftscout-backend/lib/telemetry"
	"giftscout-backend/services/botui"
	"giftscout-backend/services/search"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

//go:embed public
var public embed.FS

type Config struct {
	Port     int    `json:"port"`
	BotToken string `json:"bot_token"`
	Market   struct {
		BaseUrl           string     `json:"base_url"`
		UserAgent         string     `json:"user_agent"`
		TimeoutSeconds    int        `json:"timeout_seconds"`
		RequestsPerSecond float64    `json:"requests_per_second"`
		BuyablePhrases    [][]string `json:"buyable_phrases"`
	} `json:"market"`
	Concurrency     int                 `json:"concurrency"`
	DeadlineSeconds int                 `json:"deadline_seconds"`
	SearchLog       configsqlite.Struct `json:"search_log"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.BotToken == "" {
		serviceutil.Fatal("bot_token is required in config", nil)
	}
	if config.Port == 0 {
		config.Port = 3000
	}

	t, err := telemetry.SetupFromEnv(ctx, "giftscout")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(false)

	client, err := peek.NewClient(peek.ClientOptions{
		BaseUrl:           config.Market.BaseUrl,
		UserAgent:         config.Market.UserAgent,
		Timeout:           time.Duration(config.Market.TimeoutSeconds) * time.Second,
		RequestsPerSecond: config.Market.RequestsPerSecond,
		BuyablePhrases:    config.Market.BuyablePhrases,
	})
	if err != nil {
		serviceutil.Fatal("failed to create marketplace client", err)
	}

	logStore := searchlog.Store{}
	if config.SearchLog.File != "" {
		db, err := config.SearchLog.OpenDB(searchlog.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open search log database", err)
		}
		logStore = searchlog.NewStore(db)
	}

	service, err := search.NewService(search.ServiceOptions{
		Client:      client,
		Log:         logStore,
		Concurrency: config.Concurrency,
		Deadline:    time.Duration(config.DeadlineSeconds) * time.Second,
	})
	if err != nil {
		serviceutil.Fatal("failed to create search service", err)
	}

	api, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		serviceutil.Fatal("failed to connect to the bot api", err)
	}
	bot := botui.New(api, service, search.MaxLimit)
	go bot.Run(ctx, api)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	service.RegisterRoutes(e)
	e.GET("/", func(c echo.Context) error {
		page, err := public.ReadFile("public/index.html")
		if err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, page)
	})
	go serviceutil.StartHttpServer(config.Port, e)

	<-ctx.Done()
}
