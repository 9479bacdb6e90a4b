package models

import "time"

// JobStatus is the lifecycle state of a booking.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusAssigned  JobStatus = "assigned"
	StatusAccepted  JobStatus = "accepted"
	StatusStarted   JobStatus = "started"
	StatusEnded     JobStatus = "ended"
	StatusCancelled JobStatus = "cancelled"
	StatusReopened  JobStatus = "reopened"
)

// AcceptableFrom lists the states a translator may accept a job from.
var AcceptableFrom = []JobStatus{StatusPending, StatusAssigned, StatusReopened}

// EndableFrom lists the states a job may be ended from.
var EndableFrom = []JobStatus{StatusAccepted, StatusStarted}

// ReopenableFrom lists the states a job may be reopened from.
var ReopenableFrom = []JobStatus{StatusCancelled, StatusEnded}

func (s JobStatus) In(set []JobStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

type Job struct {
	ID                int64      `json:"id"`
	CustomerID        int64      `json:"customer_id"`
	TranslatorID      *int64     `json:"translator_id"`
	Status            JobStatus  `json:"status"`
	FromLanguage      string     `json:"from_language"`
	ToLanguage        string     `json:"to_language"`
	Duration          int        `json:"duration"`
	DueAt             time.Time  `json:"due_at"`
	AdminComments     string     `json:"admin_comments,omitempty"`
	Flagged           bool       `json:"flagged"`
	ManuallyHandled   bool       `json:"manually_handled"`
	ByAdmin           bool       `json:"by_admin"`
	SessionTime       string     `json:"session_time,omitempty"`
	CustomerNotCalled bool       `json:"customer_not_called"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// DistanceEntry is the per-job travel distance/time record. At most one per
// job, created on the first distance feed that carries a value.
type DistanceEntry struct {
	JobID     int64     `json:"job_id"`
	Distance  string    `json:"distance,omitempty"`
	Time      string    `json:"time,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobUpdate carries a partial job write. Nil fields are left untouched so
// concurrent edits to unrelated columns are never clobbered.
type JobUpdate struct {
	FromLanguage      *string
	ToLanguage        *string
	Duration          *int
	DueAt             *time.Time
	AdminComments     *string
	Flagged           *bool
	ManuallyHandled   *bool
	ByAdmin           *bool
	SessionTime       *string
	CustomerNotCalled *bool
}

// StatusChange describes the effect of a lifecycle transition.
type StatusChange struct {
	To              JobStatus
	SetTranslator   *int64
	ClearTranslator bool
	SetEndedAt      bool
}

type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	RoleID string `json:"role_id"`
	Phone  string `json:"phone,omitempty"`
}

// RecipientAll is the broadcast recipient selector: every translator
// currently eligible for the job.
const RecipientAll = "*"

type NotificationChannel string

const (
	ChannelPush NotificationChannel = "push"
	ChannelSMS  NotificationChannel = "sms"
)

// NotificationRequest is handed to the dispatcher after a state change is
// durable. It is never persisted.
type NotificationRequest struct {
	JobID     int64               `json:"job_id"`
	Channel   NotificationChannel `json:"channel"`
	Recipient string              `json:"recipient"`
	Payload   map[string]any      `json:"payload"`
}
