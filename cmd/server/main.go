package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/stockroomhq/stockroom/internal/adapter/feed"
	"github.com/stockroomhq/stockroom/internal/adapter/handler"
	"github.com/stockroomhq/stockroom/internal/adapter/storage"
	"github.com/stockroomhq/stockroom/internal/auth"
	"github.com/stockroomhq/stockroom/internal/core/service"
)

const (
	defaultHTTPAddr  = ":8080"
	defaultMySQLDSN  = "root:root@tcp(localhost:3306)/stockroom?parseTime=true"
	defaultRedisAddr = "localhost:6379"
	defaultJWTSecret = "change-me-in-production"
	tokenTTL         = 12 * time.Hour
	feedWorkers      = 4
	feedQueueSize    = 256
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpAddr := envOr("HTTP_ADDR", defaultHTTPAddr)
	mysqlDSN := envOr("MYSQL_DSN", defaultMySQLDSN)
	redisAddr := envOr("REDIS_ADDR", defaultRedisAddr)
	jwtSecret := envOr("JWT_SECRET", defaultJWTSecret)

	// Initialize MySQL
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Initialize adapters
	store := storage.NewMySQLAdapter(db)
	guard := storage.NewRedisGuard(rdb)
	changeFeed := feed.NewRedisFeed(rdb)

	notifier := feed.NewSnapshotNotifier(store, store, changeFeed, feedQueueSize)
	notifier.Start(feedWorkers)
	log.Printf("started %d feed workers", feedWorkers)

	// Initialize services
	tokens := auth.NewManager([]byte(jwtSecret), tokenTTL)
	authService := service.NewAuthService(store, tokens)
	productService := service.NewProductService(store, notifier)
	ledgerService := service.NewLedgerService(store, store, guard, notifier)

	// Initialize HTTP server
	h := handler.NewHTTPHandler(authService, productService, ledgerService, store, changeFeed)

	r := gin.Default()
	r.Use(handler.CORSMiddleware())

	r.GET("/health-check", h.HealthCheck)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)

	authorized := r.Group("/")
	authorized.Use(handler.AuthMiddleware(tokens))
	{
		authorized.POST("/products", h.CreateProduct)
		authorized.PUT("/products/:id", h.UpdateProduct)
		authorized.DELETE("/products/:id", h.DeleteProduct)
		authorized.GET("/products/:id/availability", h.GetAvailability)
		authorized.GET("/products/:id/distributions", h.ListProductDistributions)
		authorized.POST("/distributions", h.CreateDistribution)
		authorized.GET("/distributions", h.ListDistributions)
		authorized.GET("/dashboard", h.Dashboard)
		authorized.GET("/stream/products", h.StreamProducts)
	}

	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: r,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	notifier.Close()
	log.Println("feed workers stopped")

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
