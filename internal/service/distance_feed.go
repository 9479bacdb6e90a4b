package service

import (
	"context"
	"strings"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
)

// RecordUpdated is the confirmation callers of DistanceFeed receive.
const RecordUpdated = "Record updated!"

// MsgCommentRequired is returned when a job is flagged without a comment.
const MsgCommentRequired = "Please, add comment"

// DistanceFeedRequest carries the admin correction form. The flag fields are
// string-typed at the boundary ("true"/anything else) and normalized into
// booleans before any business logic runs.
type DistanceFeedRequest struct {
	JobID           int64  `json:"jobid" validate:"required"`
	Distance        string `json:"distance"`
	Time            string `json:"time"`
	SessionTime     string `json:"session_time"`
	Flagged         string `json:"flagged"`
	AdminComment    string `json:"admincomment"`
	ManuallyHandled string `json:"manually_handled"`
	ByAdmin         string `json:"by_admin"`
}

// DistanceFeed applies the combined distance/time and admin correction
// update. Distance/time go to the ledger, admin metadata to the job, each a
// single independent write. Flagging without a comment aborts the whole
// operation before anything is written. Supplying nothing is a successful
// no-op.
func (s *BookingService) DistanceFeed(ctx context.Context, req DistanceFeedRequest) (string, error) {
	if err := s.validateStruct(req); err != nil {
		return "", err
	}

	flagged := req.Flagged == "true"
	if flagged && strings.TrimSpace(req.AdminComment) == "" {
		return "", apperr.Validation(MsgCommentRequired)
	}
	manuallyHandled := req.ManuallyHandled == "true"
	byAdmin := req.ByAdmin == "true"

	distance := optional(req.Distance)
	elapsed := optional(req.Time)
	writeLedger := distance != nil || elapsed != nil
	writeJob := req.AdminComment != "" || req.SessionTime != "" || flagged || manuallyHandled || byAdmin

	if !writeLedger && !writeJob {
		return RecordUpdated, nil
	}

	if _, err := s.Jobs.GetJob(ctx, req.JobID); err != nil {
		return "", err
	}

	if writeLedger {
		if err := s.Distances.UpsertDistance(ctx, req.JobID, distance, elapsed); err != nil {
			return "", err
		}
	}

	if writeJob {
		update := models.JobUpdate{
			AdminComments:   &req.AdminComment,
			Flagged:         &flagged,
			SessionTime:     &req.SessionTime,
			ManuallyHandled: &manuallyHandled,
			ByAdmin:         &byAdmin,
		}
		if _, err := s.Jobs.UpdateJobFields(ctx, req.JobID, update); err != nil {
			if writeLedger {
				// The ledger write already landed; say which part failed.
				return "", apperr.Storage("distance entry updated but job update failed", err)
			}
			return "", err
		}
	}

	return RecordUpdated, nil
}

// optional maps an empty string to "not provided" so blanks never overwrite
// stored values.
func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
