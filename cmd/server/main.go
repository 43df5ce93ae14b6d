package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"theater-booking-platform/internal/config"
	"theater-booking-platform/internal/database"
	"theater-booking-platform/internal/handlers"
	"theater-booking-platform/internal/middleware"
	"theater-booking-platform/internal/repositories"
	"theater-booking-platform/internal/services"
	"theater-booking-platform/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database connection
	db, err := database.NewConnection(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database ready")

	// Session cookie store
	sessionStore := middleware.NewCookieStore(cfg.Session.Secret, cfg.Server.Env == "production")
	sessionMiddleware := middleware.NewSessionMiddleware(sessionStore)

	// Upstream services. Empty base URLs select the in-process mocks,
	// which is how local development and the test environment run.
	var (
		pricing      services.PricingServiceInterface
		reservations services.ReservationServiceInterface
		coupons      services.CouponServiceInterface
		orders       services.OrderServiceInterface
	)
	if cfg.Upstream.PricingURL != "" {
		pricing = services.NewPricingService(cfg.Upstream.PricingURL)
	} else {
		pricing = services.NewMockPricingService()
	}
	if cfg.Upstream.ReservationURL != "" {
		reservations = services.NewReservationService(cfg.Upstream.ReservationURL)
	} else {
		reservations = services.NewMockReservationService(cfg.Booking.ReservationTTL, cfg.Booking.ExtensionDuration)
	}
	if cfg.Upstream.CouponURL != "" {
		coupons = services.NewCouponService(cfg.Upstream.CouponURL)
	} else {
		coupons = services.NewMockCouponService()
	}
	if cfg.Upstream.OrderURL != "" {
		orders = services.NewOrderService(cfg.Upstream.OrderURL)
	} else {
		orders = services.NewMockOrderService(cfg.Upstream.IntentSecret)
	}

	// One booking engine per session
	registry := session.NewRegistry(pricing, reservations, coupons, orders, cfg.Booking.EngineIdleTimeout)
	defer registry.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registry.StartEviction(ctx)

	// Redis push channel for reservation events
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	realtime := services.NewRealtimeService(redisClient, cfg.Redis.EventChannel, registry.Route)
	if err := realtime.HealthCheck(ctx); err != nil {
		log.Printf("Warning: redis unreachable, reservation pushes disabled: %v", err)
	} else {
		realtime.Start(ctx)
		log.Println("Subscribed to reservation push events")
	}

	// Repositories and handlers
	orderRepo := repositories.NewOrderRepository(db.DB)
	bookingHandler := handlers.NewBookingHandler(registry)
	checkoutHandler := handlers.NewCheckoutHandler(registry, orderRepo)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	r.Use(sessionMiddleware.EnsureSession)

	r.Route("/api/booking", func(r chi.Router) {
		r.Get("/", bookingHandler.GetState)

		r.Post("/show", bookingHandler.SelectShow)
		r.Post("/seats", bookingHandler.ReserveSeats)

		r.Post("/reservation/extend", bookingHandler.ExtendReservation)
		r.Post("/reservation/release", bookingHandler.ReleaseReservation)

		r.Post("/items", bookingHandler.AddItems)
		r.Put("/items", bookingHandler.ReplaceItems)
		r.Patch("/items/{itemID}", bookingHandler.UpdateItem)
		r.Delete("/items/{itemID}", bookingHandler.RemoveItem)

		r.Post("/delivery", bookingHandler.SetDelivery)

		r.Post("/coupons", bookingHandler.ApplyCoupon)
		r.Delete("/coupons/{code}", bookingHandler.RemoveCoupon)

		r.Post("/steps/next", bookingHandler.NextStep)
		r.Post("/steps/previous", bookingHandler.PreviousStep)
		r.Post("/steps/goto", bookingHandler.GoToStep)
		r.Post("/flow", bookingHandler.SwitchFlow)

		r.Delete("/notifications/{notificationID}", bookingHandler.DismissNotification)

		r.Post("/order", checkoutHandler.PlaceOrder)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", checkoutHandler.ListOrders)
		r.Get("/{orderNumber}", checkoutHandler.GetOrder)
	})

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Booking service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
