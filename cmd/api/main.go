package main

import (
	"fmt"
	"os"

	"bankbook/internal/config"
	"bankbook/internal/database"
	"bankbook/internal/logger"
	"bankbook/internal/server"
	"bankbook/internal/validator"
)

// @title           bankbook API
// @version         1.0
// @description     Personal finance ledger: accounts, monthly budgets and the debits, credits and transfers that move money between them.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := server.NewPublisher(appConfig)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	defer publisher.Close()

	validator.Register()

	db := dbManager.DB()
	engine := server.NewEngine(db, appConfig)
	router := server.NewRouter(db, engine, server.OptionsFromConfig(appConfig, publisher))

	log.Infow("Starting bankbook API",
		"port", appConfig.Port,
		"db_driver", appConfig.DBDriver,
		"budget_policy", appConfig.BudgetPolicy,
	)
	return router.Run(":" + appConfig.Port)
}
