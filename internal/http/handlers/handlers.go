package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/http/middleware"
	"github.com/dtbooking/backend/internal/service"
)

// Pinger is the slice of the store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Booking          *service.BookingService
	DB               Pinger
	Logger           zerolog.Logger
	AdminRoleID      string
	SuperadminRoleID string
	RequestTimeout   time.Duration
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List jobs
// @Description Jobs for a given user, or every job when the caller is an admin
// @Tags jobs
// @Produce json
// @Param user_id query int false "User ID"
// @Success 200 {object} map[string]any
// @Router /api/jobs [get]
func (h *Handler) JobsIndex(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "user_id must be an integer"})
			return
		}
		jobs, err := h.Booking.JobsForUser(ctx, userID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"jobs": jobs})
		return
	}

	if !h.requireAdmin(c) {
		return
	}
	jobs, err := h.Booking.AllJobs(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *Handler) JobShow(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	details, err := h.Booking.GetJob(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) JobCreate(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	actor, _ := middleware.Actor(c)
	job, err := h.Booking.CreateBooking(ctx, actor, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// JobUpdate binds a typed payload, so transport-only fields never reach the
// engine.
func (h *Handler) JobUpdate(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	var req service.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	actor, _ := middleware.Actor(c)
	job, err := h.Booking.UpdateBooking(ctx, id, req, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) JobAccept(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	var req service.AcceptJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	actor, _ := middleware.Actor(c)
	job, err := h.Booking.AcceptByPayload(ctx, req, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) JobAcceptByID(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	job, err := h.Booking.Accept(ctx, id, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) JobCancel(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	actor, _ := middleware.Actor(c)
	job, err := h.Booking.Cancel(ctx, id, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "job": job})
}

func (h *Handler) JobEnd(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	job, err := h.Booking.End(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended", "job": job})
}

func (h *Handler) JobNotCalled(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	job, err := h.Booking.CustomerNotCall(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "job": job})
}

func (h *Handler) JobReopen(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	job, err := h.Booking.Reopen(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reopened", "job": job})
}

func (h *Handler) PotentialJobs(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	actor, _ := middleware.Actor(c)
	jobs, err := h.Booking.PotentialJobs(ctx, actor)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// @Summary Distance and admin correction feed
// @Tags jobs
// @Accept json
// @Produce plain
// @Success 200 {string} string "Record updated!"
// @Failure 400 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /api/distance-feed [post]
func (h *Handler) DistanceFeed(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if !h.requireAdmin(c) {
		return
	}
	var req service.DistanceFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	msg, err := h.Booking.DistanceFeed(ctx, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.String(http.StatusOK, msg)
}

func (h *Handler) ResendPush(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	if err := h.Booking.ResendPush(ctx, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "Push sent"})
}

func (h *Handler) ResendSMS(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	id, ok := h.jobID(c)
	if !ok {
		return
	}
	if err := h.Booking.ResendSMS(ctx, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "SMS sent"})
}

// requireAdmin rejects the request with 403 unless the actor carries one of
// the configured admin roles.
func (h *Handler) requireAdmin(c *gin.Context) bool {
	actor, _ := middleware.Actor(c)
	if actor.RoleID == "" || (actor.RoleID != h.AdminRoleID && actor.RoleID != h.SuperadminRoleID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "admin role required"})
		return false
	}
	return true
}

func (h *Handler) jobID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "job id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// writeError maps the error taxonomy onto HTTP statuses and renders the
// uniform message envelope. Unknown errors are never reported as success.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindDispatch:
		status = http.StatusBadGateway
	case apperr.KindStorage:
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"message": errorMessage(err)})
}

// errorMessage prefers the taxonomy message over the wrapped cause chain so
// internal details stay out of responses.
func errorMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
