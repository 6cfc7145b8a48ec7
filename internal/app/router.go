package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"zuru/internal/handler"
	"zuru/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	LocationHandler    *handler.LocationHandler
	DestinationHandler *handler.DestinationHandler
	BookingHandler     *handler.BookingHandler
	PaymentHandler     *handler.PaymentHandler
	TripHandler        *handler.TripHandler
	Authenticator      middleware.Authenticator
	ResponseCache      middleware.ResponseCache
	AllowedOrigins     []string
	NewRelicApp        *newrelic.Application
	Logger             *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	// Public routes.
	{
		v1.POST("/auth/signup", deps.AuthHandler.SignUp)
		v1.POST("/auth/signin", deps.AuthHandler.SignIn)

		destinations := v1.Group("/destinations")
		{
			destinations.GET("", deps.DestinationHandler.GetAll)
			destinations.GET("/:id", deps.DestinationHandler.GetDestination)
		}
	}

	// Signed-in routes. Mutations honour Idempotency-Key per caller.
	authed := v1.Group("",
		middleware.RequireSession(deps.Authenticator),
		middleware.NewRelicSession(),
		middleware.IdempotencyMiddleware(deps.ResponseCache, deps.Logger),
	)
	{
		authed.POST("/auth/signout", deps.AuthHandler.SignOut)
		authed.POST("/auth/reauthenticate", deps.AuthHandler.Reauthenticate)

		me := authed.Group("/me")
		{
			me.GET("", deps.UserHandler.Me)
			me.DELETE("", deps.UserHandler.Delete)
			me.PATCH("/profile", deps.UserHandler.UpdateProfile)
			me.PUT("/email", deps.UserHandler.UpdateEmail)
			me.PUT("/password", deps.UserHandler.UpdatePassword)
			me.PUT("/location", deps.LocationHandler.UpdateLocation)
			me.GET("/location", deps.LocationHandler.GetLocation)
		}

		geocode := authed.Group("/geocode")
		{
			geocode.GET("/reverse", deps.LocationHandler.Reverse)
			geocode.GET("/forward", deps.LocationHandler.Forward)
		}

		authed.POST("/fares/quote", deps.BookingHandler.Quote)

		bookings := authed.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("", deps.BookingHandler.GetAll)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
		}

		payments := authed.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.ProcessPayment)
			payments.GET("", deps.PaymentHandler.GetAll)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
			payments.GET("/:id/receipt", deps.PaymentHandler.GetReceipt)
		}

		trips := authed.Group("/trips")
		{
			trips.GET("/upcoming", deps.TripHandler.Upcoming)
			trips.GET("/reminder", deps.TripHandler.Reminder)
		}
	}

	return router
}
