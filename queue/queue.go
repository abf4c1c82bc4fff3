package queue

import (
	"time"
)

// Job types
const (
	JobTypeVerificationEmail = "job_type_verification_email"
	JobTypeRecoveryEmail     = "job_type_recovery_email"
	JobTypeBackupLocal       = "job_type_backup_local"
)

// Job statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// PayloadVerificationEmail is the deduplicated payload of a verification code
// delivery job. The cooldown bucket makes repeated requests within the same
// window collide on the queue's unique (job_type, payload) index.
type PayloadVerificationEmail struct {
	Email string `json:"email"`
	// CooldownBucket is the time bucket number calculated from the current
	// time divided by the cooldown duration: floor(unix time / cooldown
	// seconds). All requests within the same window produce the same bucket,
	// so only the first insert succeeds and a user gets at most one email
	// per window.
	CooldownBucket int `json:"cooldown_bucket"`
}

// PayloadRecoveryEmail is the deduplicated payload of a password recovery
// code delivery job.
type PayloadRecoveryEmail struct {
	Email          string `json:"email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// PayloadExtraCode is the non-deduplicated part of a code delivery job.
// The code lives here rather than in Payload so a fresh code never breaks
// the cooldown dedup.
type PayloadExtraCode struct {
	Code string `json:"code"`
}

// CoolDownBucket returns the number of complete duration periods since the
// Unix epoch for t. All times within the same period map to the same bucket,
// which is what makes the queue's unique index act as a rate limit.
// Panics if duration is not positive.
func CoolDownBucket(duration time.Duration, t time.Time) int {
	if duration <= 0 {
		panic("duration must be positive")
	}

	return int(t.Unix() / int64(duration.Seconds()))
}
