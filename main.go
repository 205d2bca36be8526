package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bot-arena-system/handlers"
	"bot-arena-system/middleware"
	"bot-arena-system/models"
	"bot-arena-system/services"
	"bot-arena-system/utils"
	"bot-arena-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.BotMatch{},
		&models.Turn{},
		&models.WagerPool{},
		&models.Wager{},
		&models.WalletMirror{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Single-room invariant: at most one active match, enforced by the
	// database rather than any process-local state. A naive read-then-insert
	// would race; this partial unique index makes creation atomic.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bot_matches_single_active
		 ON bot_matches (status) WHERE status = 'active'`,
	).Error; err != nil {
		log.Fatal("failed to create single-active-match index:", err)
	}

	walletServiceURL := os.Getenv("WALLET_SERVICE_URL")
	if walletServiceURL == "" {
		log.Fatal("WALLET_SERVICE_URL environment variable not set")
	}
	arenaServiceToken := os.Getenv("ARENA_SERVICE_TOKEN")
	if arenaServiceToken == "" {
		log.Fatal("ARENA_SERVICE_TOKEN environment variable not set")
	}

	walletClient := services.NewWalletServiceClient(walletServiceURL, arenaServiceToken)

	matchService := services.NewMatchService(db)
	wagerService := services.NewWagerService(db, walletClient)

	// --- Wallet balance mirror polling (workers package) ---
	walletSyncClient := workers.NewWalletSyncClient(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollWallets(ctx, walletSyncClient, 10*time.Second)

	matchService.StartLifecycleScheduler(wagerService)

	// ✅ Setup routes — enforced Gateway auth, user context on wager paths
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupWagerRoutes(app, wagerService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Lifecycle scheduler running (every 5s)")
	log.Println("✅ Wallet polling running (every 10s)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
