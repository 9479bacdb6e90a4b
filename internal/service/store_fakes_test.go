package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
)

// fakeStore implements the store contracts in memory with the same
// conditional-update semantics as the pgx store.
type fakeStore struct {
	mu         sync.Mutex
	jobs       map[int64]models.Job
	distances  map[int64]models.DistanceEntry
	users      map[int64]models.User
	nextID     int64
	jobWrites  int
	distWrites int

	failJobUpdate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:      map[int64]models.Job{},
		distances: map[int64]models.DistanceEntry{},
		users:     map[int64]models.User{},
	}
}

func (f *fakeStore) seedJob(job models.Job) models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job.ID == 0 {
		f.nextID++
		job.ID = f.nextID
	} else if job.ID > f.nextID {
		f.nextID = job.ID
	}
	f.jobs[job.ID] = job
	return job
}

func (f *fakeStore) GetJob(_ context.Context, id int64) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return models.Job{}, apperr.NotFound("job %d not found", id)
	}
	return job, nil
}

func (f *fakeStore) ListJobsForUser(_ context.Context, userID int64) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.jobs {
		if j.CustomerID == userID || (j.TranslatorID != nil && *j.TranslatorID == userID) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllJobs(_ context.Context) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeStore) ListPotentialJobs(_ context.Context, translatorID int64) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.jobs {
		open := j.Status == models.StatusPending || j.Status == models.StatusReopened
		if open && j.TranslatorID == nil && j.CustomerID != translatorID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateJob(_ context.Context, job models.Job) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	job.ID = f.nextID
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	f.jobs[job.ID] = job
	f.jobWrites++
	return job, nil
}

func (f *fakeStore) UpdateJobFields(_ context.Context, id int64, update models.JobUpdate) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failJobUpdate {
		return models.Job{}, apperr.Storage("failed to update job", errors.New("boom"))
	}
	job, ok := f.jobs[id]
	if !ok {
		return models.Job{}, apperr.NotFound("job %d not found", id)
	}
	if update.FromLanguage != nil {
		job.FromLanguage = *update.FromLanguage
	}
	if update.ToLanguage != nil {
		job.ToLanguage = *update.ToLanguage
	}
	if update.Duration != nil {
		job.Duration = *update.Duration
	}
	if update.DueAt != nil {
		job.DueAt = *update.DueAt
	}
	if update.AdminComments != nil {
		job.AdminComments = *update.AdminComments
	}
	if update.Flagged != nil {
		job.Flagged = *update.Flagged
	}
	if update.ManuallyHandled != nil {
		job.ManuallyHandled = *update.ManuallyHandled
	}
	if update.ByAdmin != nil {
		job.ByAdmin = *update.ByAdmin
	}
	if update.SessionTime != nil {
		job.SessionTime = *update.SessionTime
	}
	if update.CustomerNotCalled != nil {
		job.CustomerNotCalled = *update.CustomerNotCalled
	}
	job.UpdatedAt = time.Now()
	f.jobs[id] = job
	f.jobWrites++
	return job, nil
}

func (f *fakeStore) UpdateJobStatus(_ context.Context, id int64, from []models.JobStatus, change models.StatusChange) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return models.Job{}, apperr.NotFound("job %d not found", id)
	}
	if !job.Status.In(from) {
		return models.Job{}, apperr.Conflict("job %d is %s, cannot transition to %s", id, job.Status, change.To)
	}
	job.Status = change.To
	if change.SetTranslator != nil {
		tid := *change.SetTranslator
		job.TranslatorID = &tid
	}
	if change.ClearTranslator {
		job.TranslatorID = nil
	}
	if change.SetEndedAt {
		now := time.Now()
		job.EndedAt = &now
	}
	job.UpdatedAt = time.Now()
	f.jobs[id] = job
	f.jobWrites++
	return job, nil
}

func (f *fakeStore) UpsertDistance(_ context.Context, jobID int64, distance, elapsed *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry := f.distances[jobID]
	entry.JobID = jobID
	if distance != nil {
		entry.Distance = *distance
	}
	if elapsed != nil {
		entry.Time = *elapsed
	}
	entry.UpdatedAt = time.Now()
	f.distances[jobID] = entry
	f.distWrites++
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user %d not found", id)
	}
	return u, nil
}

func (f *fakeStore) writes() (jobs, distances int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobWrites, f.distWrites
}

func (f *fakeStore) job(id int64) models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id]
}

func (f *fakeStore) distance(id int64) (models.DistanceEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.distances[id]
	return e, ok
}
