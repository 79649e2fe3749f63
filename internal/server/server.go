package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"pingslot/internal/auth"
	"pingslot/internal/availability"
	"pingslot/internal/booking"
	"pingslot/internal/config"
	"pingslot/internal/email"
	"pingslot/internal/notify"
	"pingslot/internal/openslot"
	"pingslot/internal/schedule"
	"pingslot/internal/settings"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	email  *email.Service
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service, events notify.Publisher) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	scheduleRepo := schedule.NewRepository(db)
	openRepo := openslot.NewRepository(db)
	settingsRepo := settings.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	availService := availability.NewService(scheduleRepo, openRepo, bookingRepo, settingsRepo)

	bookingService := booking.NewService(bookingRepo, availService, events, emailService)

	availHandler := availability.NewHandler(availService)
	bookingHandler := booking.NewHandler(bookingService)
	scheduleHandler := schedule.NewHandler(db, events)
	openHandler := openslot.NewHandler(db, events, bookingService)
	settingsHandler := settings.NewHandler(db, events)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/calendar/day", availHandler.DaySheet)
		protected.GET("/slots/:slotID/availability", availHandler.SlotAvailability)
		protected.POST("/slots/:slotID/register", bookingHandler.Register)
		protected.POST("/slots/:slotID/unregister", bookingHandler.Unregister)
		protected.POST("/slots/:slotID/invitations", bookingHandler.Invite)
		protected.POST("/slots/:slotID/invitations/respond", bookingHandler.Respond)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/templates", scheduleHandler.CreateTemplate)
		admin.GET("/templates", scheduleHandler.ListTemplates)
		admin.GET("/templates/:templateID", scheduleHandler.GetTemplate)
		admin.DELETE("/templates/:templateID", scheduleHandler.DeleteTemplate)
		admin.POST("/templates/:templateID/slots", scheduleHandler.AddTemplateSlot)
		admin.DELETE("/templates/:templateID/slots/:slotID", scheduleHandler.DeleteTemplateSlot)
		admin.POST("/templates/:templateID/hours", scheduleHandler.AddTemplateHour)
		admin.DELETE("/templates/:templateID/hours/:hourID", scheduleHandler.DeleteTemplateHour)
		admin.POST("/templates/:templateID/apply", scheduleHandler.ApplyTemplate)
		admin.POST("/templates/apply", scheduleHandler.ApplyTemplates)
		admin.POST("/templates/:templateID/analyze", scheduleHandler.AnalyzeTemplate)

		admin.GET("/weeks/:weekStart", scheduleHandler.GetWeek)
		admin.DELETE("/weeks/:weekStart", scheduleHandler.DeleteWeek)
		admin.DELETE("/weeks/:weekStart/slots/:slotID", scheduleHandler.DeleteWeekSlot)

		admin.GET("/settings/total-tables", settingsHandler.GetCapacity)
		admin.PUT("/settings/total-tables", settingsHandler.UpdateCapacity)

		admin.DELETE("/reservations", bookingHandler.AdminDeleteReservation)
		admin.DELETE("/invitations", bookingHandler.AdminDeleteInvitation)
	}

	rooms := router.Group("/rooms")
	rooms.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin, auth.RoleAdminSalle))
	{
		rooms.POST("/opened-slots", openHandler.OpenSlot)
		rooms.DELETE("/opened-slots", openHandler.CloseSlot)
		rooms.GET("/opened-slots", openHandler.ListOpenedSlots)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
