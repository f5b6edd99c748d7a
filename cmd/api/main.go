package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-retail-pos/internal/handler"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/clock"
	"go-retail-pos/pkg/database"
	applog "go-retail-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	log := applog.New(applog.Config{
		Env:   os.Getenv("APP_ENV"),
		Level: os.Getenv("LOG_LEVEL"),
	})
	if envErr != nil {
		log.Debug().Msg(".env file not found, using ambient environment")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Sale{},
		&model.SaleItem{},
		&model.InventoryLogEntry{},
		&model.ActivityLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// 3. Seed default users
	seedDefaultUsers(db, log)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	clk := clock.NewRealClock()

	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	logRepo := repository.NewInventoryLogRepo(db)
	activityRepo := repository.NewActivityLogRepo(db)
	userRepo := repository.NewUserRepo(db)
	txRunner := repository.NewTxRunner(db)

	activityService := service.NewActivityService(activityRepo, clk, log)
	invService := service.NewInventoryService(productRepo, logRepo, txRunner, wsHub)
	saleService := service.NewSaleService(txRunner, saleRepo, clk, log, wsHub)
	reportService := service.NewReportService(saleRepo, productRepo, logRepo, clk)
	authService := service.NewAuthService(userRepo, activityService)
	userService := service.NewUserService(userRepo, activityService)

	productHandler := handler.NewProductHandler(invService, activityService)
	saleHandler := handler.NewSaleHandler(saleService, activityService)
	reportHandler := handler.NewReportHandler(reportService, clk)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	activityHandler := handler.NewActivityHandler(activityService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retail POS API v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Request logging
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	// Product Routes (catalog reads for all, writes admin-only)
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/:id", productHandler.GetProduct)
	protected.Get("/products/:id/inventory", productHandler.GetInventoryHistory)
	protected.Post("/products", middleware.RequireRole(model.RoleAdmin), productHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequireRole(model.RoleAdmin), productHandler.DeleteProduct)
	protected.Post("/products/:id/stock", middleware.RequireRole(model.RoleAdmin), productHandler.AdjustStock)

	// Sale Routes (any authenticated user can sell, refunds are admin-only)
	protected.Post("/sales", saleHandler.CreateSale)
	protected.Get("/sales", saleHandler.GetSales)
	protected.Get("/sales/:id", saleHandler.GetSale)
	protected.Post("/sales/:id/refund", middleware.RequireRole(model.RoleAdmin), saleHandler.RefundSale)

	// Report Routes
	protected.Get("/reports/dashboard", middleware.RequireRole(model.RoleAdmin), reportHandler.AdminDashboard)
	protected.Get("/reports/cashier-dashboard", reportHandler.CashierDashboard)
	protected.Get("/reports/sales", middleware.RequireRole(model.RoleAdmin), reportHandler.SalesReport)
	protected.Get("/reports/profit-expense", middleware.RequireRole(model.RoleAdmin), reportHandler.ProfitExpenseReport)
	protected.Get("/reports/inventory-movement", middleware.RequireRole(model.RoleAdmin), reportHandler.InventoryMovement)
	protected.Get("/reports/sales-by-user", middleware.RequireRole(model.RoleAdmin), reportHandler.SalesByUser)

	// User Management Routes (admin only)
	protected.Get("/auth/users", middleware.RequireRole(model.RoleAdmin), userHandler.GetUsers)
	protected.Post("/auth/users", middleware.RequireRole(model.RoleAdmin), userHandler.CreateUser)
	protected.Put("/auth/users/:id", middleware.RequireRole(model.RoleAdmin), userHandler.UpdateUser)

	// Activity Log Routes
	protected.Get("/activity", middleware.RequireRole(model.RoleAdmin), activityHandler.List)
	protected.Get("/activity/stats", middleware.RequireRole(model.RoleAdmin), activityHandler.Stats)
	protected.Get("/activity/me", activityHandler.MyActivity)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// seedDefaultUsers creates the default admin and cashier accounts if missing.
func seedDefaultUsers(db *gorm.DB, log *applog.Logger) {
	userRepo := repository.NewUserRepo(db)

	seeds := []struct {
		username string
		password string
		name     string
		role     string
	}{
		{"admin", "admin123", "Administrator", model.RoleAdmin},
		{"cashier1", "cashier123", "Default Cashier", model.RoleCashier},
	}

	for _, s := range seeds {
		if _, err := userRepo.FindByUsername(s.username); err == nil {
			continue
		}

		user := &model.User{
			Username: s.username,
			Name:     s.name,
			Role:     s.role,
			Active:   true,
		}
		if err := user.SetPassword(s.password); err != nil {
			log.Warn().Err(err).Str("username", s.username).Msg("failed to hash seed password")
			continue
		}
		if err := userRepo.Create(user); err != nil {
			log.Warn().Err(err).Str("username", s.username).Msg("failed to seed user")
			continue
		}
		log.Info().Str("username", s.username).Str("role", s.role).Msg("seeded default user")
	}
}
