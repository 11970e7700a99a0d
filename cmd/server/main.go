package main

import (
	"log"

	"go.uber.org/zap"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/server"
)

// @title           Taskboard API
// @version         1.0
// @description     Tasks, teams, profiles and row change streams for the team task board.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	s, err := server.Init(cfg, zl)
	if err != nil {
		zl.Fatal("server initialization failed", zap.Error(err))
	}

	s.Run()
}
