package db

import (
	"encoding/json"
	"time"
)

// User represents a user record.
// Timestamps use RFC3339 format in UTC timezone, e.g. "2024-03-07T15:04:05Z".
type User struct {
	ID    string
	Name  string
	Email string
	// Password holds the bcrypt hash. The plaintext is never stored.
	Password string
	Role     string
	Verified bool
	// VerificationCode is the pending email verification code, empty when no
	// verification is in flight. Cleared when the code is consumed.
	VerificationCode string
	// RecoveryCode is the pending password recovery code. Independent channel
	// from VerificationCode: issuing one never touches the other.
	RecoveryCode string
	// ProfilePic references a File by id, empty when unset.
	ProfilePic string
	Created    time.Time
	Updated    time.Time
}

// DefaultRole is the role a user record carries when the client sends none.
// Role values are otherwise free-form.
const DefaultRole = "user"

// File is metadata for an uploaded file. The bytes themselves live in an
// external storage subsystem; records here exist so users and posts can
// reference uploads by id.
type File struct {
	ID         string
	Filename   string
	Mimetype   string
	Size       int64
	UploadedBy string
	Created    time.Time
}

// Category groups posts.
type Category struct {
	ID        string
	Title     string
	Desc      string
	UpdatedBy string
	Created   time.Time
	Updated   time.Time
}

// Post is a published entry referencing an optional File and a Category.
type Post struct {
	ID        string
	Title     string
	Desc      string
	File      string // File id, empty when the post has no attachment
	Category  string // Category id
	UpdatedBy string
	Created   time.Time
	Updated   time.Time
}

// Job represents a job in the processing queue.
type Job struct {
	ID           int64           `json:"id"`
	JobType      string          `json:"job_type"`
	Payload      json.RawMessage `json:"payload"`       // Unique payload part
	PayloadExtra json.RawMessage `json:"payload_extra"` // Non-unique payload part
	Status       string          `json:"status"`
	Attempts     int             `json:"attempts"`
	MaxAttempts  int             `json:"max_attempts"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	ScheduledFor time.Time       `json:"scheduled_for"`
	LockedAt     time.Time       `json:"locked_at,omitempty"`
	CompletedAt  time.Time       `json:"completed_at,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	Recurrent    bool            `json:"recurrent"`
	Interval     time.Duration   `json:"interval"`
}
