// Package server wires the ledger, services and handlers into the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bankbook/internal/config"
	"bankbook/internal/events"
	"bankbook/internal/handlers"
	"bankbook/internal/ledger"
	"bankbook/internal/logger"
	"bankbook/internal/middleware"
	"bankbook/internal/services"
	"bankbook/internal/store/gormstore"
)

// Options configures the API.
type Options struct {
	// AccountKinds limits the kinds accounts can be created with. Empty
	// means every kind.
	AccountKinds []ledger.AccountKind
	// DefaultBudget is hidden from budget listings.
	DefaultBudget string
	Publisher     events.Publisher
}

// NewEngine builds the ledger engine over db with the configured budget policy.
func NewEngine(db *gorm.DB, cfg *config.Config) *ledger.Engine {
	return ledger.NewEngine(gormstore.New(db),
		ledger.WithBudgetPolicy(ledger.BudgetPolicy(cfg.BudgetPolicy), cfg.DefaultBudgetName),
	)
}

// NewPublisher connects to AMQP when configured and falls back to dropping
// events otherwise.
func NewPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, ledger events are disabled")
		return events.NopPublisher{}, nil
	}
	return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
}

// OptionsFromConfig maps the application config onto router options.
func OptionsFromConfig(cfg *config.Config, publisher events.Publisher) Options {
	opts := Options{DefaultBudget: cfg.DefaultBudgetName, Publisher: publisher}
	for _, k := range cfg.AccountKinds {
		if kind, ok := ledger.ParseAccountKind(k); ok {
			opts.AccountKinds = append(opts.AccountKinds, kind)
		}
	}
	// Unbudgeted transactions only land in the default budget under the
	// default policy; otherwise the name is not reserved.
	if cfg.BudgetPolicy != config.BudgetPolicyDefault {
		opts.DefaultBudget = ""
	}
	return opts
}

// NewRouter builds the gin router for the API.
func NewRouter(db *gorm.DB, l services.Ledger, opts Options) *gin.Engine {
	userService := services.NewUserService(db)
	accountService := services.NewAccountService(db, opts.AccountKinds...)
	budgetService := services.NewBudgetService(db, opts.DefaultBudget)
	transactionService := services.NewTransactionService(db, l, opts.Publisher)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(userService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/kinds", accountHandler.GetKinds)
	protected.GET("/categories", transactionHandler.GetCategories)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/history", accountHandler.GetAccountHistory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/history", budgetHandler.GetBudgetHistory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	return router
}
