package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
	"github.com/dtbooking/backend/internal/notify"
)

// JobStore is the narrow persistence contract the lifecycle engine needs for
// jobs. Every method may fail with apperr NotFound, Conflict or Storage.
type JobStore interface {
	GetJob(ctx context.Context, id int64) (models.Job, error)
	ListJobsForUser(ctx context.Context, userID int64) ([]models.Job, error)
	ListAllJobs(ctx context.Context) ([]models.Job, error)
	ListPotentialJobs(ctx context.Context, translatorID int64) ([]models.Job, error)
	CreateJob(ctx context.Context, job models.Job) (models.Job, error)
	UpdateJobFields(ctx context.Context, id int64, update models.JobUpdate) (models.Job, error)
	UpdateJobStatus(ctx context.Context, id int64, from []models.JobStatus, change models.StatusChange) (models.Job, error)
}

// DistanceStore owns the per-job distance/time ledger.
type DistanceStore interface {
	UpsertDistance(ctx context.Context, jobID int64, distance, time *string) error
}

type UserStore interface {
	GetUser(ctx context.Context, id int64) (models.User, error)
}

// BookingService owns the job lifecycle state machine: which transitions are
// legal, what side data may be attached, and which notifications each
// transition triggers. All state lives behind the store interfaces.
type BookingService struct {
	Jobs            JobStore
	Distances       DistanceStore
	Users           UserStore
	Dispatcher      notify.Dispatcher
	Validator       *validator.Validate
	Logger          zerolog.Logger
	DispatchTimeout time.Duration

	// AdminRoleID and SuperadminRoleID identify actors allowed to operate on
	// jobs they do not own. Injected from config.
	AdminRoleID      string
	SuperadminRoleID string
}

// isAdmin reports whether the actor carries one of the injected admin roles.
// An actor with no role never matches, even when a role id is unset.
func (s *BookingService) isAdmin(actor models.User) bool {
	if actor.RoleID == "" {
		return false
	}
	return actor.RoleID == s.AdminRoleID || actor.RoleID == s.SuperadminRoleID
}

// JobDetails is a job with its assigned translator expanded.
type JobDetails struct {
	models.Job
	Translator *models.User `json:"translator,omitempty"`
}

type CreateBookingRequest struct {
	FromLanguage string    `json:"from_language" validate:"required"`
	ToLanguage   string    `json:"to_language" validate:"required"`
	Duration     int       `json:"duration" validate:"required,gt=0"`
	DueAt        time.Time `json:"due_at" validate:"required"`
}

type UpdateBookingRequest struct {
	FromLanguage *string    `json:"from_language" validate:"omitempty,min=1"`
	ToLanguage   *string    `json:"to_language" validate:"omitempty,min=1"`
	Duration     *int       `json:"duration" validate:"omitempty,gt=0"`
	DueAt        *time.Time `json:"due_at"`
}

func (s *BookingService) JobsForUser(ctx context.Context, userID int64) ([]models.Job, error) {
	return s.Jobs.ListJobsForUser(ctx, userID)
}

func (s *BookingService) AllJobs(ctx context.Context) ([]models.Job, error) {
	return s.Jobs.ListAllJobs(ctx)
}

func (s *BookingService) PotentialJobs(ctx context.Context, actor models.User) ([]models.Job, error) {
	return s.Jobs.ListPotentialJobs(ctx, actor.ID)
}

// GetJob loads a job with its translator relation expanded. A missing
// translator row is logged and omitted rather than failing the read.
func (s *BookingService) GetJob(ctx context.Context, id int64) (JobDetails, error) {
	job, err := s.Jobs.GetJob(ctx, id)
	if err != nil {
		return JobDetails{}, err
	}
	details := JobDetails{Job: job}
	if job.TranslatorID != nil {
		user, err := s.Users.GetUser(ctx, *job.TranslatorID)
		if err != nil {
			s.Logger.Warn().Err(err).Int64("job_id", id).Msg("failed to expand translator")
		} else {
			details.Translator = &user
		}
	}
	return details, nil
}

// CreateBooking stores a new job in pending state with no ledger entry.
func (s *BookingService) CreateBooking(ctx context.Context, actor models.User, req CreateBookingRequest) (models.Job, error) {
	if err := s.validateStruct(req); err != nil {
		return models.Job{}, err
	}
	job := models.Job{
		CustomerID:   actor.ID,
		Status:       models.StatusPending,
		FromLanguage: req.FromLanguage,
		ToLanguage:   req.ToLanguage,
		Duration:     req.Duration,
		DueAt:        req.DueAt,
	}
	return s.Jobs.CreateJob(ctx, job)
}

// UpdateBooking writes only the booking fields present in the request.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req UpdateBookingRequest, actor models.User) (models.Job, error) {
	if err := s.validateStruct(req); err != nil {
		return models.Job{}, err
	}
	s.Logger.Debug().Int64("job_id", id).Int64("actor_id", actor.ID).Msg("booking update")
	update := models.JobUpdate{
		FromLanguage: req.FromLanguage,
		ToLanguage:   req.ToLanguage,
		Duration:     req.Duration,
		DueAt:        req.DueAt,
	}
	return s.Jobs.UpdateJobFields(ctx, id, update)
}

func (s *BookingService) validateStruct(req any) error {
	err := s.Validator.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return apperr.ValidationField(f.Field(), fmt.Sprintf("%s failed on the %q rule", f.Field(), f.Tag()))
	}
	return apperr.Validation(err.Error())
}
