package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"toothquest_portal/internal/apiclient"
	"toothquest_portal/internal/config"
	"toothquest_portal/internal/controller"
	"toothquest_portal/internal/repository"
	"toothquest_portal/internal/service"
	"toothquest_portal/internal/session"
	"toothquest_portal/pkg/configwatcher"
	"toothquest_portal/pkg/database"
	"toothquest_portal/pkg/logger"
	"toothquest_portal/pkg/monitoring"
	"toothquest_portal/pkg/security"
	"toothquest_portal/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configPath = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
}

type services struct {
	sessions     session.Store
	memory       *session.MemoryStore
	notification *service.NotificationService
	history      *service.QuizHistoryService
	report       *service.ReportService
	user         *service.UserService
	auth         *service.AuthService
}

type controllers struct {
	auth         *controller.AuthController
	history      *controller.HistoryController
	report       *controller.ReportController
	user         *controller.UserController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	if rdb != nil {
		s.sessions = session.NewRedisStore(rdb)
	} else {
		s.memory = session.NewMemoryStore()
		s.sessions = s.memory
	}

	api := apiclient.New(cfg.Upstream)

	var store service.HistoryStore
	if db != nil {
		store = repository.NewHistoryRepository(db)
	}

	s.notification = service.NewNotificationService(cfg.Screens.NotificationTTL)
	s.history = service.NewQuizHistoryService(api, store, s.notification, cfg.Screens.HistoryPageSize)
	s.report = service.NewReportService(api, s.notification, cfg.Screens.ReportPageSize)
	s.user = service.NewUserService(api, s.notification, cfg.Screens.UserPageSize)
	s.auth = service.NewAuthService(api, s.sessions, cfg.Session.TTL)

	s.auth.OnLogout(s.history.Drop)
	s.auth.OnLogout(s.report.Drop)
	s.auth.OnLogout(s.user.Drop)
	s.auth.OnLogout(s.notification.Drop)

	// 分页大小支持热更新
	a.RegisterConfigCallback(func(c *config.Config) {
		s.history.SetPageSize(c.Screens.HistoryPageSize)
		s.report.SetPageSize(c.Screens.ReportPageSize)
		s.user.SetPageSize(c.Screens.UserPageSize)
	})

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, cfg.Session.CookieName, cfg.Server.Mode == gin.ReleaseMode),
		history:      controller.NewHistoryController(s.history),
		report:       controller.NewReportController(s.report),
		user:         controller.NewUserController(s.user),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 定期回收空闲页面、过期提示和内存会话
func (a *App) startBackgroundTasks(s *services, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-a.ctx.Done():
				return
			case <-ticker.C:
				evicted := s.history.EvictIdle(idle) + s.report.EvictIdle(idle) + s.user.EvictIdle(idle)
				if evicted > 0 {
					logger.Log.Debug("Evicted idle screens", zap.Int("count", evicted))
				}
				s.notification.Sweep()
				if s.memory != nil {
					s.memory.Sweep()
				}
			}
		}
	}()

	go func() {
		err := configwatcher.WatchConfig(a.ctx, configPath, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	migrate := cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	} else {
		logger.Log.Warn("Redis disabled, sessions are kept in memory")
	}

	if err := controller.RegisterValidators(); err != nil {
		logger.Log.Fatal("Failed to register validators", zap.Error(err))
	}

	services := app.initServices(cfg, db, app.Redis)
	app.services = services
	controllers := app.initControllers(services, cfg)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode != gin.ReleaseMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services, cfg)
	app.startBackgroundTasks(services, cfg.Session.IdleScreen)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
