package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // Africa/Nairobi on hosts without a zoneinfo database

	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"zuru/internal/app"
	"zuru/internal/config"
	"zuru/internal/domain"
	"zuru/internal/geo"
	"zuru/internal/handler"
	"zuru/internal/messaging"
	internalRedis "zuru/internal/redis"
	"zuru/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger, err := app.NewLogger(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		logger.Warn("AUTH_JWT_SECRET not set, using the development secret")
	}

	loc, err := time.LoadLocation(cfg.App.TimeZone)
	if err != nil {
		logger.Fatal("invalid time zone", zap.String("zone", cfg.App.TimeZone), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Error("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	repos, err := app.NewRepositories(ctx, cfg, nrApp, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer repos.Close(context.Background())

	stores, err := app.NewStores(ctx, cfg, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer stores.Close()

	var publisher service.Publisher = service.NewLogPublisher(logger)
	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rmq.Close()
		publisher = rmq
		logger.Info("publishing events to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// Wire dependencies.
	server := wireServer(cfg, repos, stores, publisher, loc, nrApp, logger)

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(cfg.Server.ShutdownTimeout)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	cfg *config.Config,
	repos *app.Repositories,
	stores *app.Stores,
	publisher service.Publisher,
	loc *time.Location,
	nrApp *newrelic.Application,
	logger *zap.Logger,
) *http.Server {
	// Geocoding goes through the shared cache.
	geocoder := geo.NewCachedGeocoder(
		geo.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout),
		stores.Cache,
		internalRedis.GeocodeCacheTTL,
		logger,
	)

	// Payment providers per method.
	var card service.PSP = service.NewMockPSP("CD")
	if cfg.Stripe.SecretKey != "" {
		card = service.NewStripePSP(cfg.Stripe.SecretKey, cfg.Stripe.Currency, nil)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, card payments use the mock provider")
	}
	psps := map[domain.PaymentMethod]service.PSP{
		domain.PaymentMethodMpesa:  service.NewMockPSP("MP"),
		domain.PaymentMethodPayPal: service.NewMockPSP("PP"),
		domain.PaymentMethodCard:   card,
	}

	// Initialize services.
	notificationService := service.NewNotificationService(publisher, logger)
	authService := service.NewAuthService(repos.Users, stores.Revocations, notificationService, service.AuthConfig{
		Secret:            []byte(cfg.Auth.JWTSecret),
		TokenTTL:          cfg.Auth.TokenTTL,
		RecentLoginWindow: cfg.Auth.RecentLoginWindow,
		BcryptCost:        cfg.Auth.BcryptCost,
	}, logger)
	quoteService := service.NewQuoteService(stores.Locations, geocoder, cfg.Fare.RatePerKm, logger)
	bookingService := service.NewBookingService(repos.Bookings, quoteService, notificationService, logger)
	paymentService := service.NewPaymentService(repos.Payments, repos.Bookings, psps, stores.Locks, notificationService, loc, logger)
	receiptService := service.NewReceiptService(notificationService)
	tripService := service.NewTripService(repos.Payments, loc)
	destinationService := service.NewDestinationService(repos.Destinations, stores.Cache, internalRedis.DestinationCacheTTL, logger)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:        handler.NewAuthHandler(authService),
		UserHandler:        handler.NewUserHandler(authService),
		LocationHandler:    handler.NewLocationHandler(stores.Locations, geocoder),
		DestinationHandler: handler.NewDestinationHandler(destinationService),
		BookingHandler:     handler.NewBookingHandler(quoteService, bookingService),
		PaymentHandler:     handler.NewPaymentHandler(paymentService, receiptService),
		TripHandler:        handler.NewTripHandler(tripService),
		Authenticator:      authService,
		ResponseCache:      stores.Cache,
		AllowedOrigins:     cfg.App.AllowedOrigins,
		NewRelicApp:        nrApp,
		Logger:             logger,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
