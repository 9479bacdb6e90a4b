package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dtbooking/backend/internal/apperr"
)

func TestDistanceFeedFlaggedWithoutCommentWritesNothing(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)

	_, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{
		JobID:        5,
		Distance:     "12km",
		Flagged:      "true",
		AdminComment: "",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var e *apperr.Error
	if !errors.As(err, &e) || e.Message != MsgCommentRequired {
		t.Fatalf("expected %q, got %v", MsgCommentRequired, err)
	}
	if jw, dw := store.writes(); jw != 0 || dw != 0 {
		t.Fatalf("flagging without comment must write nothing, got jobs=%d distances=%d", jw, dw)
	}
}

func TestDistanceFeedDistanceOnlyUpdatesLedgerOnly(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)

	msg, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{
		JobID:    5,
		Distance: "12km",
		Time:     "20min",
		Flagged:  "false",
	})
	if err != nil {
		t.Fatalf("distance feed: %v", err)
	}
	if msg != RecordUpdated {
		t.Fatalf("expected %q, got %q", RecordUpdated, msg)
	}

	entry, ok := store.distance(5)
	if !ok || entry.Distance != "12km" || entry.Time != "20min" {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
	job := store.job(5)
	if job.Flagged || job.AdminComments != "" || job.SessionTime != "" || job.ManuallyHandled || job.ByAdmin {
		t.Fatalf("job admin fields must be untouched, got %+v", job)
	}
	if jw, _ := store.writes(); jw != 0 {
		t.Fatalf("expected no job writes, got %d", jw)
	}
}

func TestDistanceFeedAdminFieldsOnlyUpdateJobOnly(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)

	_, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{
		JobID:           5,
		Flagged:         "true",
		AdminComment:    "customer complaint",
		SessionTime:     "01:30:00",
		ManuallyHandled: "true",
		ByAdmin:         "false",
	})
	if err != nil {
		t.Fatalf("distance feed: %v", err)
	}

	job := store.job(5)
	if !job.Flagged || job.AdminComments != "customer complaint" || job.SessionTime != "01:30:00" {
		t.Fatalf("unexpected job admin fields: %+v", job)
	}
	if !job.ManuallyHandled || job.ByAdmin {
		t.Fatalf("boolean flags misparsed: %+v", job)
	}
	if _, ok := store.distance(5); ok {
		t.Fatalf("ledger must be untouched")
	}
}

func TestDistanceFeedNoInputIsSuccessfulNoOp(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)

	msg, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{JobID: 5})
	if err != nil || msg != RecordUpdated {
		t.Fatalf("expected successful no-op, got %q, %v", msg, err)
	}
	if jw, dw := store.writes(); jw != 0 || dw != 0 {
		t.Fatalf("no-op must not write, got jobs=%d distances=%d", jw, dw)
	}
}

func TestDistanceFeedIsIdempotent(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)

	req := DistanceFeedRequest{JobID: 5, Distance: "12km", Time: "20min", AdminComment: "note"}
	if _, err := svc.DistanceFeed(context.Background(), req); err != nil {
		t.Fatalf("first feed: %v", err)
	}
	firstEntry, _ := store.distance(5)
	firstJob := store.job(5)

	if _, err := svc.DistanceFeed(context.Background(), req); err != nil {
		t.Fatalf("second feed: %v", err)
	}
	secondEntry, _ := store.distance(5)
	secondJob := store.job(5)

	if firstEntry.Distance != secondEntry.Distance || firstEntry.Time != secondEntry.Time {
		t.Fatalf("ledger changed on identical replay: %+v vs %+v", firstEntry, secondEntry)
	}
	if firstJob.AdminComments != secondJob.AdminComments || firstJob.Flagged != secondJob.Flagged {
		t.Fatalf("job changed on identical replay")
	}
}

func TestDistanceFeedEmptyValuesDoNotBlankStoredOnes(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)

	if _, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{JobID: 5, Distance: "12km", Time: "20min"}); err != nil {
		t.Fatalf("seed feed: %v", err)
	}
	if _, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{JobID: 5, Time: "25min"}); err != nil {
		t.Fatalf("partial feed: %v", err)
	}
	entry, _ := store.distance(5)
	if entry.Distance != "12km" || entry.Time != "25min" {
		t.Fatalf("empty distance blanked stored value: %+v", entry)
	}
}

func TestDistanceFeedReportsPartialFailure(t *testing.T) {
	store := newFakeStore()
	pendingJob(store, 5)
	svc, _ := newTestService(store)
	store.failJobUpdate = true

	_, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{
		JobID:        5,
		Distance:     "12km",
		AdminComment: "note",
	})
	if !apperr.IsKind(err, apperr.KindStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	var e *apperr.Error
	if !errors.As(err, &e) || e.Message != "distance entry updated but job update failed" {
		t.Fatalf("error must say which part failed, got %v", err)
	}
	if entry, ok := store.distance(5); !ok || entry.Distance != "12km" {
		t.Fatalf("ledger write should have landed, got %+v", entry)
	}
}

func TestDistanceFeedRequiresJobID(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.DistanceFeed(context.Background(), DistanceFeedRequest{Distance: "12km"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
