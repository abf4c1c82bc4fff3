package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const jobColumns = `id, job_type, payload, payload_extra, status, attempts, max_attempts,
	created_at, updated_at, scheduled_for, locked_at, completed_at, last_error, recurrent, interval`

// validateQueueJob checks for required fields in a job before insertion.
func validateQueueJob(job db.Job) error {
	var missingFields []string
	if job.JobType == "" {
		missingFields = append(missingFields, "JobType")
	}
	// Payload and PayloadExtra are optional

	if len(missingFields) > 0 {
		return fmt.Errorf("%w: %s", db.ErrMissingFields, strings.Join(missingFields, ", "))
	}
	return nil
}

// newJobFromStmt creates a Job struct from a SQLite statement row.
func newJobFromStmt(stmt *sqlite.Stmt) (*db.Job, error) {
	createdAt, err := db.TimeParse(stmt.GetText("created_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing created_at time: %w", err)
	}

	updatedAt, err := db.TimeParse(stmt.GetText("updated_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing updated_at time: %w", err)
	}

	scheduledFor, err := db.TimeParse(stmt.GetText("scheduled_for"))
	if err != nil {
		return nil, fmt.Errorf("error parsing scheduled_for time: %w", err)
	}

	lockedAt, err := db.TimeParse(stmt.GetText("locked_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing locked_at time: %w", err)
	}

	completedAt, err := db.TimeParse(stmt.GetText("completed_at"))
	if err != nil {
		return nil, fmt.Errorf("error parsing completed_at time: %w", err)
	}

	job := &db.Job{
		ID:           stmt.GetInt64("id"),
		JobType:      stmt.GetText("job_type"),
		Payload:      json.RawMessage(stmt.GetText("payload")),
		PayloadExtra: json.RawMessage(stmt.GetText("payload_extra")),
		Status:       stmt.GetText("status"),
		Attempts:     int(stmt.GetInt64("attempts")),
		MaxAttempts:  int(stmt.GetInt64("max_attempts")),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		ScheduledFor: scheduledFor,
		LockedAt:     lockedAt,
		CompletedAt:  completedAt,
		LastError:    stmt.GetText("last_error"),
		Recurrent:    stmt.GetInt64("recurrent") == 1,
		Interval:     time.Duration(stmt.GetInt64("interval")) * time.Second,
	}
	return job, nil
}

// insertJobConn inserts a job on an already-held connection. Used by InsertJob
// and by MarkRecurrentCompleted inside its savepoint.
func insertJobConn(conn *sqlite.Conn, job db.Job) error {
	scheduledFor := job.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = time.Now().UTC()
	}

	maxAttempts := job.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}

	recurrent := 0
	if job.Recurrent {
		recurrent = 1
	}

	return sqlitex.Execute(conn, `INSERT INTO job_queue
		(job_type, payload, payload_extra, max_attempts, scheduled_for, recurrent, interval)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []interface{}{
				job.JobType,
				string(job.Payload),
				string(job.PayloadExtra),
				maxAttempts,
				db.TimeFormat(scheduledFor),
				recurrent,
				int64(job.Interval / time.Second),
			},
		})
}

// InsertJob adds a new job to the queue.
func (d *Db) InsertJob(job db.Job) error {
	if err := validateQueueJob(job); err != nil {
		return err
	}

	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("queue insert failed to get connection: %w", err)
	}
	defer d.pool.Put(conn)

	if err := insertJobConn(conn, job); err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("queue insert failed: %w", err)
	}
	return nil
}

// Claim locks and returns up to limit due jobs for processing.
// The jobs are marked as 'processing'.
func (d *Db) Claim(limit int) ([]*db.Job, error) {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to get connection for claim: %w", err)
	}
	defer d.pool.Put(conn)

	var jobs []*db.Job
	err = sqlitex.Execute(conn,
		`UPDATE job_queue
		SET status = 'processing',
			locked_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			attempts = attempts + 1
		WHERE id IN (
			SELECT id
			FROM job_queue
			WHERE status IN ('pending', 'failed')
				AND attempts < max_attempts
				AND scheduled_for <= strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
			ORDER BY id ASC
			LIMIT ?
		)
		RETURNING `+jobColumns,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				job, err := newJobFromStmt(stmt)
				if err != nil {
					return err
				}
				jobs = append(jobs, job)
				return nil
			},
			Args: []interface{}{limit},
		})

	if err != nil {
		return nil, fmt.Errorf("failed to claim jobs: %w", err)
	}
	if jobs == nil {
		jobs = []*db.Job{}
	}
	return jobs, nil
}

// MarkCompleted marks a job as completed successfully.
func (d *Db) MarkCompleted(jobID int64) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get connection for mark completed: %w", err)
	}
	defer d.pool.Put(conn)

	return markCompletedConn(conn, jobID)
}

func markCompletedConn(conn *sqlite.Conn, jobID int64) error {
	err := sqlitex.Execute(conn,
		`UPDATE job_queue
		SET status = 'completed',
			completed_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			locked_at = '',
			last_error = ''
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{jobID},
		})

	if err != nil {
		return fmt.Errorf("failed to mark job as completed: %w", err)
	}
	return nil
}

// MarkFailed marks a job as failed. Failed jobs with remaining attempts are
// picked up again by Claim.
func (d *Db) MarkFailed(jobID int64, errMsg string) error {
	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get connection for mark failed: %w", err)
	}
	defer d.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE job_queue
		SET status = 'failed',
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now'),
			locked_at = '',
			last_error = ?
		WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []interface{}{errMsg, jobID},
		})

	if err != nil {
		return fmt.Errorf("failed to mark job as failed: %w", err)
	}
	return nil
}

// MarkRecurrentCompleted completes one run of a recurrent job and inserts its
// successor in the same transaction, so a crash between the two steps cannot
// drop the recurrence.
func (d *Db) MarkRecurrentCompleted(completedJobID int64, newJob db.Job) (err error) {
	if err := validateQueueJob(newJob); err != nil {
		return err
	}

	conn, err := d.pool.Take(context.TODO())
	if err != nil {
		return fmt.Errorf("failed to get connection for mark recurrent completed: %w", err)
	}
	defer d.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	if err = markCompletedConn(conn, completedJobID); err != nil {
		return err
	}

	if err = insertJobConn(conn, newJob); err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintUnique {
			return db.ErrConstraintUnique
		}
		return fmt.Errorf("failed to insert successor job: %w", err)
	}
	return nil
}
