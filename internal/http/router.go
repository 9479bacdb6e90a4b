package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dtbooking/backend/internal/config"
	"github.com/dtbooking/backend/internal/db"
	"github.com/dtbooking/backend/internal/http/handlers"
	"github.com/dtbooking/backend/internal/http/middleware"
	"github.com/dtbooking/backend/internal/service"

	_ "github.com/dtbooking/backend/docs"
)

func Router(cfg config.Config, store *db.Store, booking *service.BookingService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Id", "X-User-Role", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Booking:          booking,
		DB:               store,
		Logger:           logger,
		AdminRoleID:      cfg.AdminRoleID,
		SuperadminRoleID: cfg.SuperadminRoleID,
		RequestTimeout:   cfg.RequestTimeout,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.Authenticated())
	{
		api.GET("/jobs", h.JobsIndex)
		api.GET("/jobs/:id", h.JobShow)
		api.POST("/jobs", h.JobCreate)
		api.PUT("/jobs/:id", h.JobUpdate)
		api.GET("/potential-jobs", h.PotentialJobs)
		api.POST("/accept-job", h.JobAccept)
		api.POST("/accept-job/:id", h.JobAcceptByID)
		api.POST("/cancel-job/:id", h.JobCancel)
		api.POST("/end-job/:id", h.JobEnd)
		api.POST("/not-called/:id", h.JobNotCalled)
		api.POST("/reopen-job/:id", h.JobReopen)
		api.POST("/resend-push/:id", h.ResendPush)
		api.POST("/resend-sms/:id", h.ResendSMS)
		api.POST("/distance-feed", h.DistanceFeed)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
