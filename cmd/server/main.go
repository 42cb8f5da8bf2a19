package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flash-sale-tickets/internal/config"
	"github.com/iliyamo/flash-sale-tickets/internal/database"
	"github.com/iliyamo/flash-sale-tickets/internal/handler"
	"github.com/iliyamo/flash-sale-tickets/internal/lock"
	"github.com/iliyamo/flash-sale-tickets/internal/middleware"
	"github.com/iliyamo/flash-sale-tickets/internal/queue"
	"github.com/iliyamo/flash-sale-tickets/internal/repository"
	"github.com/iliyamo/flash-sale-tickets/internal/router"
	"github.com/iliyamo/flash-sale-tickets/internal/service"
	"github.com/iliyamo/flash-sale-tickets/internal/stock"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis holds the shared stock counter and the per-buyer locks; the
	// service cannot sell safely without it.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed; stock counter and purchase locks require Redis")
	}

	ticketRepo := repository.NewTicketRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	userRepo := repository.NewUserRepo(db)
	allocator := repository.NewAllocator(ticketRepo, purchaseRepo)

	counter := stock.NewRedisCounter(rdb, cfg.StockKey)
	locker := lock.NewRedisLocker(rdb)
	publisher := queue.NewPublisher()

	ticketSvc := service.NewTicketService(ticketRepo, counter, cfg.TicketPriceCents)
	purchaseSvc := service.NewPurchaseService(userRepo, allocator, purchaseRepo,
		counter, locker, publisher, cfg.LockKeyPrefix, cfg.LockWait, cfg.LockLease)

	// Bootstrap the pool; on restart this only reconciles the counter to
	// the durable unsold count.
	if err := ticketSvc.InitializeInventory(context.Background(), cfg.TotalTickets); err != nil {
		log.Fatalf("inventory: %v", err)
	}

	// Background consumer records completed purchases to logs/purchase.log.
	go func() {
		if err := queue.StartPurchaseConsumer(); err != nil {
			log.Printf("purchase-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterAPI(e,
		handler.NewUserHandler(userRepo),
		handler.NewTicketHandler(ticketSvc),
		handler.NewPurchaseHandler(purchaseSvc),
		limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
