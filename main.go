package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"food-ordering-api/cart"
	"food-ordering-api/config"
	"food-ordering-api/events"
	"food-ordering-api/handlers"
	"food-ordering-api/metrics"
	"food-ordering-api/middleware"
	"food-ordering-api/routes"
	"food-ordering-api/service"
	"food-ordering-api/statemachine"
	"food-ordering-api/storage"
	"food-ordering-api/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := config.OpenDB(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := store.NewUserStore(db, cfg.BcryptCost)
	menuItems := store.NewMenuStore(db)
	orders := store.NewOrderStore(db)
	tokens := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	m := metrics.New()

	var cartStore cart.Store = cart.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to reach redis")
		}
		cartStore = cart.NewRedisStore(rdb, cfg.CartTTL)
		log.WithField("addr", cfg.RedisAddr).Info("carts stored in redis")
	}

	var images storage.ImageStore
	if cfg.ImageStore == "s3" {
		images, err = storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	} else {
		images, err = storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to set up image storage")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer kp.Close()
		publisher = kp
	}

	policy, err := statemachine.ParsePolicy(cfg.OrderStatusPolicy)
	if err != nil {
		log.WithError(err).Fatal("invalid order status policy")
	}
	fsm := statemachine.New(policy)

	accounts := service.NewAccountService(users, tokens, log)
	menuSvc := service.NewMenuService(menuItems, images, m, log)
	carts := cart.NewService(cartStore, menuItems)
	orderSvc := service.NewOrderService(orders, users, carts, fsm, publisher, m, log)

	created, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminNickname)
	if err != nil {
		log.WithError(err).Fatal("failed to seed admin account")
	}
	if created {
		log.WithField("email", cfg.AdminEmail).Info("admin account created")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(time.Minute, ctx.Done())

	r := gin.New()
	r.Use(m.Middleware(), middleware.RequestLogger(log), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	deps := routes.Deps{
		Handler: &handlers.Handler{
			Accounts: accounts,
			Menu:     menuSvc,
			Carts:    carts,
			Orders:   orderSvc,
			FSM:      fsm,
			Log:      log,
		},
		Tokens:      tokens,
		Users:       users,
		Metrics:     m,
		AuthLimiter: limiter,
	}
	// only relative prefixes can be served by this process
	if cfg.ImageStore != "s3" && strings.HasPrefix(cfg.UploadURLPrefix, "/") {
		deps.UploadDir = cfg.UploadDir
		deps.UploadPrefix = cfg.UploadURLPrefix
	}
	routes.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "policy": fsm.Policy()}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	menuSvc.Wait()
	orderSvc.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func corsConfig(origins []string) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	conf.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
	}
	return conf
}
