// Package app 提供应用程序的初始化与启动.
package app

import (
	contextPkg "context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filerelay/pkg/api"
	"github.com/yeisme/filerelay/pkg/cache"
	"github.com/yeisme/filerelay/pkg/configs"
	"github.com/yeisme/filerelay/pkg/internal/bot"
	"github.com/yeisme/filerelay/pkg/internal/repo"
	"github.com/yeisme/filerelay/pkg/internal/service"
	"github.com/yeisme/filerelay/pkg/internal/storage"
	"github.com/yeisme/filerelay/pkg/log"
	"github.com/yeisme/filerelay/pkg/metrics"
	"github.com/yeisme/filerelay/pkg/middleware"
	"github.com/yeisme/filerelay/pkg/rule"
)

type App struct {
	Engine *gin.Engine
	Bot    *bot.Bot

	config  *configs.AppConfig
	manager *storage.Manager
}

// NewApp 完成全部初始化：配置、日志、指标、存储、迁移、机器人与 HTTP 引擎.
// 任何一步失败都直接退出，半初始化的进程没有继续的意义.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	// 机器人凭据缺失时尽早失败，而不是在第一条消息时才暴露
	if err := rule.ValidateStruct(config.Bot); err != nil {
		fmt.Printf("Invalid bot config: %v\n", err)
		os.Exit(1)
	}

	if !config.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	if err := repo.Migrate(manager.GetDBClient()); err != nil {
		fmt.Printf("Error migrating database: %v\n", err)
		os.Exit(1)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.PrometheusMiddleware(),
		middleware.StorageMiddleware(manager),
	)

	api.RegisterGroup(engine)

	// 文件清单静态页面
	if config.Server.StaticDir != "" {
		if _, err := os.Stat(config.Server.StaticDir); err == nil {
			engine.Static("/static", config.Server.StaticDir)
			engine.StaticFile("/", config.Server.StaticDir+"/index.html")
		}
	}

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return &App{
		Engine:  engine,
		Bot:     newBot(manager, config),
		config:  config,
		manager: manager,
	}
}

// newBot 组装 Telegram 接入层与业务服务.
func newBot(manager *storage.Manager, config *configs.AppConfig) *bot.Bot {
	tr, err := bot.NewTelegram(config.Bot.Token)
	if err != nil {
		fmt.Printf("Error connecting to Telegram: %v\n", err)
		os.Exit(1)
	}

	store := repo.NewUsers(manager.GetDBClient())
	codec := service.NewLinkCodec(config.Bot.Username)
	tracker := service.NewBatchTracker(config.Bot.BatchPolicy)
	gate := service.NewGate(tr, &config.Bot, config.CircuitBreaker, cache.NewCache(manager.GetKVClient()))

	return bot.New(tr, &config.Bot,
		gate,
		service.NewRegisterService(tr, store, codec, tracker, config.Bot.ArchiveChannelID),
		service.NewResolveService(tr, store, codec, config.Bot.WelcomePhotoURL),
		service.NewBroadcastService(tr, store),
	)
}

// Run 同时运行 HTTP 服务与机器人轮询，任一退出即整体退出.
// ctx 取消时 HTTP 服务优雅关停，机器人停止接收更新并等待在途消息处理完.
func (a *App) Run(ctx contextPkg.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Logger().Info().Str("addr", srv.Addr).Msg("HTTP server started")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := contextPkg.WithTimeout(contextPkg.Background(), a.config.Server.GetTimeoutDuration())
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		err := a.Bot.Run(gctx)
		if errors.Is(err, contextPkg.Canceled) {
			return nil
		}

		return err
	})

	return g.Wait()
}
