package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cedra_storefront/internal/cache"
	"cedra_storefront/internal/checkout"
	"cedra_storefront/internal/config"
	"cedra_storefront/internal/database"
	"cedra_storefront/internal/handlers"
	"cedra_storefront/internal/metrics"
	"cedra_storefront/internal/orders"
	"cedra_storefront/internal/routes"
	"cedra_storefront/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer redisClient.Close()

	scylla, err := database.NewScyllaManager(database.LoadScyllaConfigs())
	if err != nil {
		log.Fatalf("❌ ScyllaDB: %v", err)
	}
	defer scylla.Close()

	ordersSession, err := scylla.Session(database.KeyspaceOrders)
	if err != nil {
		log.Fatalf("❌ ScyllaDB: %v", err)
	}
	usersSession, err := scylla.Session(database.KeyspaceUsers)
	if err != nil {
		log.Fatalf("❌ ScyllaDB: %v", err)
	}
	addresses := database.NewAddressRepository(usersSession)

	var notifier orders.Notifier = utils.NopNotifier{}
	var mailer *utils.Mailer
	if smtp := utils.LoadSMTPConfig(); smtp.Enabled() {
		client, err := utils.NewSMTPClient(smtp)
		if err != nil {
			log.Fatalf("❌ SMTP: %v", err)
		}
		mailer = utils.NewMailer(client, smtp.From)
		notifier = mailer
		log.Println("✅ Notifications email activées")
	} else {
		log.Println("⚠️ SMTP_HOST absent, notifications email désactivées")
	}

	m := metrics.New(nil)

	addressBooks := func(userID string) checkout.AddressBook {
		return addresses.ForUser(userID)
	}

	h := handlers.New(ctx, handlers.Deps{
		Carts:        cache.NewCartRepository(redisClient),
		Pending:      cache.NewPendingRepository(redisClient),
		Checkout:     cache.NewCheckoutStateRepository(redisClient),
		Orders:       database.NewOrderRepository(ordersSession),
		Addresses:    addressBooks,
		Notifier:     notifier,
		Metrics:      m,
		Rates:        cfg.Rates,
		UPI:          utils.LoadUPIPayee(),
		PollInterval: cfg.PollInterval,
	})

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handlers.SessionHeader},
		ExposeHeaders:    []string{handlers.SessionHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(r, h, routes.Options{JWTSecret: cfg.JWTSecret, Redis: redisClient, Metrics: m})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("🚀 Serveur Cedra lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Arrêt forcé: %v", err)
	}
	if mailer != nil {
		mailer.Wait()
	}
}
