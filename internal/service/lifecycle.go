package service

import (
	"context"
	"strconv"
	"time"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
)

type AcceptJobRequest struct {
	JobID int64 `json:"job_id" validate:"required"`
}

// Accept assigns the job to the acting translator. Exactly one of two
// concurrent accepts wins; the loser gets a conflict from the conditional
// status write. Acceptance answers an earlier broadcast, so it triggers no
// notification of its own.
func (s *BookingService) Accept(ctx context.Context, jobID int64, actor models.User) (models.Job, error) {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, err
	}
	// Same eligibility rule as the potential-jobs listing.
	if actor.ID == job.CustomerID {
		return models.Job{}, apperr.Forbidden("customers cannot accept their own jobs")
	}
	translatorID := actor.ID
	return s.Jobs.UpdateJobStatus(ctx, jobID, models.AcceptableFrom, models.StatusChange{
		To:            models.StatusAccepted,
		SetTranslator: &translatorID,
	})
}

// AcceptByPayload accepts a job identified inside the request body.
func (s *BookingService) AcceptByPayload(ctx context.Context, req AcceptJobRequest, actor models.User) (models.Job, error) {
	if err := s.validateStruct(req); err != nil {
		return models.Job{}, err
	}
	return s.Accept(ctx, req.JobID, actor)
}

// Cancel moves the job to cancelled and tells the previously assigned
// translator the job is gone. Only the job's customer or an admin may cancel.
// The translator reference is cleared unless the session already started.
func (s *BookingService) Cancel(ctx context.Context, jobID int64, actor models.User) (models.Job, error) {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, err
	}
	if actor.ID != job.CustomerID && !s.isAdmin(actor) {
		return models.Job{}, apperr.Forbidden("only the job's customer or an admin may cancel")
	}
	if job.Status == models.StatusCancelled {
		return models.Job{}, apperr.Conflict("job %d is already cancelled", jobID)
	}

	change := models.StatusChange{To: models.StatusCancelled}
	if job.Status != models.StatusStarted {
		change.ClearTranslator = true
	}
	// Conditioning on the observed status keeps two racing transitions from
	// both succeeding.
	updated, err := s.Jobs.UpdateJobStatus(ctx, jobID, []models.JobStatus{job.Status}, change)
	if err != nil {
		return models.Job{}, err
	}

	recipient := models.RecipientAll
	if job.TranslatorID != nil {
		recipient = strconv.FormatInt(*job.TranslatorID, 10)
	}
	s.dispatch(ctx, models.NotificationRequest{
		JobID:     jobID,
		Channel:   models.ChannelPush,
		Recipient: recipient,
		Payload:   s.jobPayload(updated, "job_cancelled"),
	})
	return updated, nil
}

// End closes out an accepted or started session.
func (s *BookingService) End(ctx context.Context, jobID int64) (models.Job, error) {
	return s.Jobs.UpdateJobStatus(ctx, jobID, models.EndableFrom, models.StatusChange{
		To:         models.StatusEnded,
		SetEndedAt: true,
	})
}

// Reopen makes a cancelled or ended job assignable again and re-broadcasts
// it to eligible translators.
func (s *BookingService) Reopen(ctx context.Context, jobID int64) (models.Job, error) {
	updated, err := s.Jobs.UpdateJobStatus(ctx, jobID, models.ReopenableFrom, models.StatusChange{
		To:              models.StatusReopened,
		ClearTranslator: true,
	})
	if err != nil {
		return models.Job{}, err
	}
	s.dispatch(ctx, models.NotificationRequest{
		JobID:     jobID,
		Channel:   models.ChannelPush,
		Recipient: models.RecipientAll,
		Payload:   s.jobPayload(updated, "job_reopened"),
	})
	return updated, nil
}

// CustomerNotCall marks that the customer did not respond. Metadata only,
// the status is untouched.
func (s *BookingService) CustomerNotCall(ctx context.Context, jobID int64) (models.Job, error) {
	notCalled := true
	return s.Jobs.UpdateJobFields(ctx, jobID, models.JobUpdate{CustomerNotCalled: &notCalled})
}

// ResendPush re-broadcasts the job to all eligible translators. Delivery
// failures are logged, not surfaced: the caller gets success once the job is
// known to exist and the request was handed to the dispatcher.
func (s *BookingService) ResendPush(ctx context.Context, jobID int64) error {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	s.dispatch(ctx, models.NotificationRequest{
		JobID:     jobID,
		Channel:   models.ChannelPush,
		Recipient: models.RecipientAll,
		Payload:   s.jobPayload(job, "new_job"),
	})
	return nil
}

// ResendSMS sends the job details to the assigned translator by SMS.
func (s *BookingService) ResendSMS(ctx context.Context, jobID int64) error {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.TranslatorID == nil {
		return apperr.Validation("job has no assigned translator")
	}
	s.dispatch(ctx, models.NotificationRequest{
		JobID:     jobID,
		Channel:   models.ChannelSMS,
		Recipient: strconv.FormatInt(*job.TranslatorID, 10),
		Payload:   s.jobPayload(job, "job_details"),
	})
	return nil
}

// jobPayload renders the notification payload from the job's current state.
func (s *BookingService) jobPayload(job models.Job, event string) map[string]any {
	return map[string]any{
		"event":         event,
		"job_id":        job.ID,
		"from_language": job.FromLanguage,
		"to_language":   job.ToLanguage,
		"duration":      job.Duration,
		"due_at":        job.DueAt,
	}
}

// dispatch hands a request to the dispatcher, best effort. It runs after the
// state change is durable, is bounded by its own timeout, survives caller
// cancellation, and never propagates delivery failure to the caller.
func (s *BookingService) dispatch(ctx context.Context, req models.NotificationRequest) {
	timeout := s.DispatchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var err error
	switch req.Channel {
	case models.ChannelSMS:
		err = s.Dispatcher.SendSMS(dctx, req)
	default:
		err = s.Dispatcher.SendPush(dctx, req)
	}
	if err != nil {
		s.Logger.Error().Err(err).
			Int64("job_id", req.JobID).
			Str("channel", string(req.Channel)).
			Str("recipient", req.Recipient).
			Msg("notification dispatch failed")
	}
}
