package server

import (
	"context"
	"net/http"
	"time"

	"fitslot/internal/auth"
	"fitslot/internal/availability"
	"fitslot/internal/booking"
	"fitslot/internal/config"
	"fitslot/internal/email"
	"fitslot/internal/gym"
	"fitslot/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router   *gin.Engine
	http     *http.Server
	db       *sqlx.DB
	config   *config.Config
	email    *email.Service
	bookings booking.Service
}

// New wires repositories, services and handlers. emailService may be nil, which disables notifications.
func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret)

	gymService := gym.NewService(gym.NewRepository(db))
	availabilityService := availability.NewService(availability.NewRepository(db), gymService)

	var notifier booking.Notifier
	if emailService != nil {
		notifier = emailService
	}
	bookingService := booking.NewService(
		booking.NewRepository(db),
		booking.NewAnalyticsRepository(db),
		availabilityService,
		gymService,
		userRepo,
		notifier,
		booking.Options{
			Granularity: cfg.SlotGranularity,
			DefaultSpan: cfg.DefaultSlotSpan,
		},
	)

	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(), RequestLoggingMiddleware(), MetricsMiddleware())
	if cfg.RateLimitRPS > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	router.GET("/health", Health(db))
	registerRoutes(router, cfg, handlers{
		user:         user.NewHandler(userService),
		gym:          gym.NewHandler(gymService),
		availability: availability.NewHandler(availabilityService),
		booking:      booking.NewHandler(bookingService),
	})

	if emailService != nil {
		router.GET("/test-email", auth.AuthMiddleware(cfg.JWTSecret), auth.RequireRole(auth.RoleAdmin), TestEmail(emailService))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		router:   router,
		http:     httpServer,
		db:       db,
		config:   cfg,
		email:    emailService,
		bookings: bookingService,
	}
}

type handlers struct {
	user         *user.Handler
	gym          *gym.Handler
	availability *availability.Handler
	booking      *booking.Handler
}

func registerRoutes(router *gin.Engine, cfg *config.Config, h handlers) {
	router.GET("/metrics", Metrics())

	public := router.Group("/auth")
	{
		public.POST("/register", h.user.Register)
		public.POST("/login", h.user.Login)
		public.POST("/refresh", h.user.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.user.GetMe)

		protected.GET("/gyms", h.gym.ListGyms)
		protected.GET("/gyms/:gymID/trainers", h.gym.ListTrainers)
		protected.GET("/trainers/available", h.availability.ListAvailableTrainers)
		protected.GET("/trainers/:trainerID/services", h.gym.ListTrainerServices)
		protected.GET("/trainers/:trainerID/availability", h.availability.ListTrainerAvailability)
		protected.GET("/trainers/:trainerID/slots", h.booking.GetAvailableSlots)

		protected.POST("/bookings", h.booking.CreateBooking)
		protected.GET("/bookings", h.booking.ListMyBookings)
		protected.GET("/bookings/:bookingID", h.booking.GetBooking)
		protected.POST("/bookings/:bookingID/cancel", h.booking.CancelBooking)
	}

	staff := router.Group("/staff")
	staff.Use(authMiddleware, auth.RequireRole(auth.StaffRoles...))
	{
		staff.GET("/bookings", h.booking.ListBookings)
		staff.GET("/bookings/today", h.booking.ListToday)
		staff.GET("/bookings/stats", h.booking.GetStats)
		staff.PATCH("/bookings/:bookingID/status", h.booking.UpdateStatus)
		staff.GET("/trainers/:trainerID/bookings", h.booking.ListTrainerDay)
	}
}

// Bookings exposes the booking service for background jobs such as the sweeper.
func (s *Server) Bookings() booking.Service {
	return s.bookings
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
