package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/activitylog"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/auth"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/booking"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/config"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/dashboard"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/email"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/gym"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/schedule"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config

	// ScheduleService is exposed so background jobs share the exact
	// materialize/revert code the HTTP handlers use.
	ScheduleService *schedule.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.FrontendURL))
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	logRepo := activitylog.NewRepository(db)
	logService := activitylog.NewService(logRepo)
	logHandler := activitylog.NewHandler(logService)

	userService := user.NewService(user.NewRepository(db), logService, cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	userHandler := user.NewHandler(userService)

	gymService := gym.NewService(gym.NewRepository(db), logService)
	gymHandler := gym.NewHandler(gymService)

	scheduleService := schedule.NewService(db, schedule.NewRepository(db), logService, cfg.Location)
	scheduleHandler := schedule.NewHandler(scheduleService)

	bookingService := booking.NewService(db, booking.NewRepository(db), scheduleService, cfg.Location)
	bookingHandler := booking.NewHandler(bookingService, booking.NewDispatcher(emailService, logService))

	dashboardService := dashboard.NewService(dashboard.NewRepository(db), cfg.Location)
	dashboardHandler := dashboard.NewHandler(dashboardService, cfg.Location)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	publicLimit := RateLimitMiddleware(10, 20)

	public := router.Group("/auth")
	public.Use(publicLimit)
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authRequired := auth.AuthMiddleware(cfg.AccessTokenSecret)
	authOptional := auth.OptionalAuthMiddleware(cfg.AccessTokenSecret)

	// Booking endpoints are open to the client app; a valid token only
	// changes who the activity log attributes the action to.
	client := router.Group("/")
	client.Use(publicLimit, authOptional)
	{
		client.GET("/schedules", scheduleHandler.ListSchedules)
		client.GET("/schedules/available", bookingHandler.ListAvailableSchedules)
		client.GET("/schedules/:id", scheduleHandler.GetSchedule)

		client.POST("/bookings", bookingHandler.CreateBooking)
		client.GET("/bookings", bookingHandler.ListBookings)
		client.GET("/bookings/:id", bookingHandler.GetBooking)
		client.PUT("/bookings/:id", bookingHandler.UpdateBooking)
		client.PATCH("/bookings/:id/cancel", bookingHandler.CancelBooking)
		client.PATCH("/bookings/:id/status", bookingHandler.SetBookingStatus)
		client.PATCH("/bookings/:id/note", bookingHandler.SetBookingNote)
		client.PUT("/bookings/:id/trainer", bookingHandler.SetBookingTrainer)
		client.PUT("/bookings/:id/payment", bookingHandler.MarkBookingPaymented)
	}

	protected := router.Group("/")
	protected.Use(authRequired)
	{
		protected.GET("/me", userHandler.Me)
	}

	admin := router.Group("/admin")
	admin.Use(authRequired, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/schedules", scheduleHandler.CreateSchedule)
		admin.PUT("/schedules/:id", scheduleHandler.UpdateSchedule)
		admin.DELETE("/schedules/:id", scheduleHandler.DeleteSchedule)

		admin.POST("/advance-configs", scheduleHandler.CreateAdvanceConfig)
		admin.GET("/advance-configs", scheduleHandler.ListAdvanceConfigs)
		admin.GET("/advance-configs/:id", scheduleHandler.GetAdvanceConfig)
		admin.PUT("/advance-configs/:id", scheduleHandler.UpdateAdvanceConfig)
		admin.DELETE("/advance-configs/:id", scheduleHandler.DeleteAdvanceConfig)

		admin.POST("/gyms", gymHandler.CreateGym)
		admin.GET("/gyms", gymHandler.ListGyms)
		admin.GET("/gyms/:id", gymHandler.GetGym)
		admin.GET("/gyms/:id/trainers", gymHandler.ListTrainers)
		admin.POST("/trainers", gymHandler.AssignTrainer)
		admin.DELETE("/gyms/:id/trainers/:userId", gymHandler.RemoveTrainer)
		admin.GET("/trainers/assignable", gymHandler.ListAssignableUsers)

		admin.GET("/users", userHandler.ListUsers)
		admin.PUT("/users/:id", userHandler.UpdateUser)
		admin.DELETE("/users/:id", userHandler.DeactivateUser)

		admin.GET("/activity-logs", logHandler.ListLogs)
		admin.GET("/dashboard", dashboardHandler.GetSummary)

		admin.GET("/test-email", TestEmail(emailService))
	}

	return &Server{
		router:          router,
		config:          cfg,
		ScheduleService: scheduleService,
	}
}

// Router exposes the gin engine for httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := frontendURL
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
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
