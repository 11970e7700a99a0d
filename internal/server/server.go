package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/migrations"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Broker realtime.Broker

	log      *zap.Logger
	listener *realtime.Listener
}

func Init(cfg *config.Config, log *zap.Logger) (*Server, error) {
	if cfg.RunMigrations {
		if err := migrations.Up(cfg.MigrateURL()); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	broker, err := newBroker(cfg, log)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	registerRoutes(r, db, broker, cfg, log)

	return &Server{
		Engine:   r,
		DB:       db,
		Config:   cfg,
		Broker:   broker,
		log:      log,
		listener: realtime.NewListener(cfg.DSN(), broker, log),
	}, nil
}

func newBroker(cfg *config.Config, log *zap.Logger) (realtime.Broker, error) {
	switch cfg.RealtimeDriver {
	case "", "memory":
		return realtime.NewMemoryBroker(log), nil
	case "redis":
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return realtime.NewRedisBroker(rc, cfg.RealtimeChannel, log), nil
	case "amqp":
		b, err := realtime.NewAMQPBroker(cfg.AMQPURL, cfg.RealtimeChannel, log)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown realtime driver %q", cfg.RealtimeDriver)
	}
}

func registerRoutes(r *gin.Engine, db *gorm.DB, broker realtime.Broker, cfg *config.Config, log *zap.Logger) {
	// Initialize repositories
	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(taskRepo)
	teamHandler := handler.NewTeamHandler(teamRepo)
	profileHandler := handler.NewProfileHandler(profileRepo, roleRepo)
	dashboardHandler := handler.NewDashboardHandler(taskRepo, profileRepo, teamRepo)
	streamHandler := handler.NewStreamHandler(broker, log)

	// Public routes
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks", taskHandler.Create)
		authorized.PATCH("/tasks/:id", taskHandler.Update)

		authorized.GET("/teams", teamHandler.List)
		authorized.GET("/teams/:id", teamHandler.GetByID)

		authorized.GET("/profiles/:id", profileHandler.GetByID)
		authorized.PATCH("/profiles/:id", profileHandler.Update)
		authorized.GET("/roles/:user_id", profileHandler.Role)

		authorized.GET("/dashboard", dashboardHandler.Get)

		authorized.GET("/realtime/:table", streamHandler.Stream)
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	ctx, stopListener := context.WithCancel(context.Background())
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		s.listener.Run(ctx)
	}()

	go func() {
		s.log.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("failed to listen", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.log.Info("shutting down server")

	stopListener()
	<-listenerDone
	// ends open change streams so Shutdown does not wait on them
	if err := s.Broker.Close(); err != nil {
		s.log.Warn("close broker", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Fatal("server forced to shutdown", zap.Error(err))
	}

	s.log.Info("server exited properly")
}
