package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

const jobColumns = `id, customer_id, translator_id, status, from_language, to_language,
	duration, due_at, admin_comments, flagged, manually_handled, by_admin,
	session_time, customer_not_called, ended_at, created_at, updated_at`

func scanJob(row pgx.Row) (models.Job, error) {
	var j models.Job
	err := row.Scan(
		&j.ID, &j.CustomerID, &j.TranslatorID, &j.Status, &j.FromLanguage, &j.ToLanguage,
		&j.Duration, &j.DueAt, &j.AdminComments, &j.Flagged, &j.ManuallyHandled, &j.ByAdmin,
		&j.SessionTime, &j.CustomerNotCalled, &j.EndedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	return j, err
}

func (s *Store) GetJob(ctx context.Context, id int64) (models.Job, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, apperr.NotFound("job %d not found", id)
		}
		return models.Job{}, apperr.Storage("failed to load job", err)
	}
	return j, nil
}

func (s *Store) listJobs(ctx context.Context, query string, args ...any) ([]models.Job, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Storage("failed to list jobs", err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, apperr.Storage("failed to scan job", err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to list jobs", err)
	}
	return out, nil
}

// ListJobsForUser returns jobs where the user is the customer or the
// assigned translator.
func (s *Store) ListJobsForUser(ctx context.Context, userID int64) ([]models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs
		WHERE customer_id = $1 OR translator_id = $1
		ORDER BY due_at ASC`, userID)
}

func (s *Store) ListAllJobs(ctx context.Context) ([]models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
}

// ListPotentialJobs returns open unassigned jobs a translator could accept.
func (s *Store) ListPotentialJobs(ctx context.Context, translatorID int64) ([]models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs
		WHERE status = ANY($1) AND translator_id IS NULL AND customer_id <> $2
		ORDER BY due_at ASC`,
		statusStrings(models.StatusPending, models.StatusReopened), translatorID)
}

func statusStrings(statuses ...models.JobStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (s *Store) CreateJob(ctx context.Context, job models.Job) (models.Job, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO jobs (customer_id, status, from_language, to_language, duration, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+jobColumns,
		job.CustomerID, job.Status, job.FromLanguage, job.ToLanguage, job.Duration, job.DueAt)
	j, err := scanJob(row)
	if err != nil {
		return models.Job{}, apperr.Storage("failed to create job", err)
	}
	return j, nil
}

// UpdateJobFields writes only the fields present in update, leaving every
// other column untouched. A nil-only update is a no-op read.
func (s *Store) UpdateJobFields(ctx context.Context, id int64, update models.JobUpdate) (models.Job, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if update.FromLanguage != nil {
		add("from_language", *update.FromLanguage)
	}
	if update.ToLanguage != nil {
		add("to_language", *update.ToLanguage)
	}
	if update.Duration != nil {
		add("duration", *update.Duration)
	}
	if update.DueAt != nil {
		add("due_at", *update.DueAt)
	}
	if update.AdminComments != nil {
		add("admin_comments", *update.AdminComments)
	}
	if update.Flagged != nil {
		add("flagged", *update.Flagged)
	}
	if update.ManuallyHandled != nil {
		add("manually_handled", *update.ManuallyHandled)
	}
	if update.ByAdmin != nil {
		add("by_admin", *update.ByAdmin)
	}
	if update.SessionTime != nil {
		add("session_time", *update.SessionTime)
	}
	if update.CustomerNotCalled != nil {
		add("customer_not_called", *update.CustomerNotCalled)
	}

	if len(sets) == 0 {
		return s.GetJob(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), jobColumns)

	j, err := scanJob(s.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, apperr.NotFound("job %d not found", id)
		}
		return models.Job{}, apperr.Storage("failed to update job", err)
	}
	return j, nil
}

// UpdateJobStatus applies a transition atomically: the row is updated only
// when its current status is still in from. A losing concurrent caller gets
// a conflict, a missing job gets not-found.
func (s *Store) UpdateJobStatus(ctx context.Context, id int64, from []models.JobStatus, change models.StatusChange) (models.Job, error) {
	sets := []string{"status = $1", "updated_at = NOW()"}
	args := []any{change.To}
	if change.SetTranslator != nil {
		args = append(args, *change.SetTranslator)
		sets = append(sets, fmt.Sprintf("translator_id = $%d", len(args)))
	}
	if change.ClearTranslator {
		sets = append(sets, "translator_id = NULL")
	}
	if change.SetEndedAt {
		sets = append(sets, "ended_at = NOW()")
	}
	args = append(args, id)
	idPos := len(args)
	args = append(args, statusStrings(from...))

	query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = $%d AND status = ANY($%d) RETURNING %s`,
		strings.Join(sets, ", "), idPos, idPos+1, jobColumns)

	j, err := scanJob(s.Pool.QueryRow(ctx, query, args...))
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, apperr.Storage("failed to apply transition", err)
	}

	// Zero rows: either the job is gone or another transition won the race.
	var current models.JobStatus
	err = s.Pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, apperr.NotFound("job %d not found", id)
	}
	if err != nil {
		return models.Job{}, apperr.Storage("failed to load job status", err)
	}
	return models.Job{}, apperr.Conflict("job %d is %s, cannot transition to %s", id, current, change.To)
}

// UpsertDistance creates or updates the job's distance entry. A nil field
// never blanks an already stored value.
func (s *Store) UpsertDistance(ctx context.Context, jobID int64, distance, elapsed *string) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO distances (job_id, distance, time, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (job_id) DO UPDATE SET
			distance = COALESCE(EXCLUDED.distance, distances.distance),
			time = COALESCE(EXCLUDED.time, distances.time),
			updated_at = NOW()
	`, jobID, distance, elapsed)
	if err != nil {
		return apperr.Storage("failed to upsert distance entry", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.Pool.QueryRow(ctx, `SELECT id, name, role_id, phone FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.RoleID, &u.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, apperr.NotFound("user %d not found", id)
		}
		return models.User{}, apperr.Storage("failed to load user", err)
	}
	return u, nil
}
