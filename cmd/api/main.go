package main

import (
	"os"

	_ "tourdesk-backend/api/swagger" // swagger docs
	"tourdesk-backend/internal/database"
	"tourdesk-backend/internal/handler"
	"tourdesk-backend/internal/jobs"
	"tourdesk-backend/internal/logger"
	"tourdesk-backend/internal/middleware"
	"tourdesk-backend/internal/repository"
	"tourdesk-backend/internal/service"
	"tourdesk-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           TourDesk Reconciliation API
// @version         1.0
// @description     Back-office booking and payment reconciliation for a travel agency.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		logrus.Info("No configs/.env file found or error loading it")
	}

	logger.Init()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "tourdesk")
	dbSslMode := getEnv("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logrus.WithError(err).Fatal("Database connection failed")
	}
	logrus.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	log := logrus.StandardLogger()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	creditNoteRepo := repository.NewCreditNoteRepository(db)
	payableRepo := repository.NewPayableRepository(db)
	cancellationRepo := repository.NewCancellationRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	amendmentRepo := repository.NewAmendmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	userService := service.NewUserService(userRepo)
	commissionService := service.NewCommissionService(commissionRepo, agentRepo, amendmentRepo, log)
	reconcileService := service.NewReconcileService(bookingRepo, paymentRepo, supplierRepo, payableRepo, amendmentRepo, commissionService, wsHub, log)
	creditNoteService := service.NewCreditNoteService(creditNoteRepo)
	bookingService := service.NewBookingService(txManager, bookingRepo, agentRepo, paymentRepo, amendmentRepo, cancellationRepo, commissionRepo, auditRepo, commissionService, reconcileService, log)
	paymentService := service.NewPaymentService(txManager, bookingRepo, paymentRepo, cancellationRepo, auditRepo, creditNoteService, reconcileService, log)
	supplierService := service.NewSupplierService(txManager, bookingRepo, supplierRepo, auditRepo, creditNoteService, reconcileService, log)
	cancellationService := service.NewCancellationService(txManager, bookingRepo, paymentRepo, supplierRepo, payableRepo, cancellationRepo, auditRepo, creditNoteService, wsHub, log)
	settlementService := service.NewSettlementService(txManager, payableRepo, supplierRepo, auditRepo, creditNoteService, reconcileService, log)
	amendmentService := service.NewAmendmentService(txManager, bookingRepo, amendmentRepo, auditRepo, reconcileService, log)
	agentService := service.NewAgentService(txManager, agentRepo, auditRepo)
	auditService := service.NewAuditService(auditRepo)
	documentService := service.NewDocumentService(txManager, bookingRepo, paymentRepo, auditRepo)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	bookingHandler := handler.NewBookingHandler(bookingService, documentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	cancellationHandler := handler.NewCancellationHandler(cancellationService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	amendmentHandler := handler.NewAmendmentHandler(amendmentService)
	agentHandler := handler.NewAgentHandler(agentService, commissionService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Background jobs
	reminder := jobs.NewInstalmentReminder(paymentRepo, wsHub)
	if err := reminder.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to schedule instalment reminder")
	}
	defer reminder.Stop()

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	bookingHandler.RegisterRoutes(root)
	paymentHandler.RegisterRoutes(root)
	supplierHandler.RegisterRoutes(root)
	cancellationHandler.RegisterRoutes(root)
	settlementHandler.RegisterRoutes(root)
	creditNoteHandler.RegisterRoutes(root)
	amendmentHandler.RegisterRoutes(root)
	agentHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := getEnv("PORT", "8080")

	logrus.WithField("port", port).Info("Server listening")
	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
