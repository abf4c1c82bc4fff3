package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/zombiezen"
	"github.com/quillhq/quill/migrations"
	"github.com/quillhq/quill/queue"
	"github.com/quillhq/quill/queue/executor"
)

// FuncHandler is an adapter to allow the use of ordinary functions as JobHandlers.
type FuncHandler func(ctx context.Context, job db.Job) error

// Handle calls f(ctx, job).
func (f FuncHandler) Handle(ctx context.Context, job db.Job) error {
	return f(ctx, job)
}

// newTestQueueDB creates a new in-memory SQLite database for testing.
func newTestQueueDB(t *testing.T) *zombiezen.Db {
	t.Helper()

	pool, err := sqlitex.NewPool("file::memory:", sqlitex.PoolOptions{PoolSize: 1})
	if err != nil {
		t.Fatalf("failed to create db pool: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("failed to close db pool: %v", err)
		}
	})

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("failed to get db connection: %v", err)
	}
	defer pool.Put(conn)

	schemaFS := migrations.Schema()
	sqlBytes, err := fs.ReadFile(schemaFS, "app.sql")
	if err != nil {
		t.Fatalf("Failed to read app.sql: %v", err)
	}

	if err := sqlitex.ExecuteScript(conn, string(sqlBytes), nil); err != nil {
		t.Fatalf("Failed to execute app.sql: %v", err)
	}

	testDB, err := zombiezen.New(pool)
	if err != nil {
		t.Fatalf("failed to create db: %v", err)
	}
	return testDB
}

func newTestScheduler(t *testing.T, cfg config.Scheduler, exec executor.JobExecutor) (*Scheduler, *zombiezen.Db) {
	t.Helper()

	testDB := newTestQueueDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if exec == nil {
		exec = executor.NewExecutor(nil)
	}

	return NewScheduler(cfg, testDB, exec, logger, nil), testDB
}

// waitFor polls cond until it returns true or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestScheduler_Lifecycle(t *testing.T) {
	cfg := config.Scheduler{
		Interval:              config.Duration{Duration: 10 * time.Millisecond},
		MaxJobsPerTick:        10,
		ConcurrencyMultiplier: 2,
	}
	scheduler, _ := newTestScheduler(t, cfg, nil)

	scheduler.Start()
	time.Sleep(30 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := scheduler.Stop(ctx); err != nil {
		t.Fatalf("Scheduler.Stop() failed: %v", err)
	}
}

func TestScheduler_ProcessJobs(t *testing.T) {
	cfg := config.Scheduler{
		Interval:              config.Duration{Duration: 20 * time.Millisecond},
		MaxJobsPerTick:        10,
		ConcurrencyMultiplier: 2,
	}

	t.Run("success marks job completed", func(t *testing.T) {
		executed := make(chan string, 1)
		exec := executor.NewExecutor(map[string]executor.JobHandler{
			"test_job": FuncHandler(func(ctx context.Context, job db.Job) error {
				executed <- job.JobType
				return nil
			}),
		})
		scheduler, testDB := newTestScheduler(t, cfg, exec)

		if err := testDB.InsertJob(db.Job{JobType: "test_job", Payload: []byte(`{}`)}); err != nil {
			t.Fatalf("InsertJob failed: %v", err)
		}

		scheduler.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = scheduler.Stop(ctx)
		}()

		select {
		case jobType := <-executed:
			if jobType != "test_job" {
				t.Errorf("executed job type %q, want %q", jobType, "test_job")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("job was never executed")
		}

		// Completed jobs never come back from Claim.
		ok := waitFor(t, time.Second, func() bool {
			jobs, err := testDB.Claim(10)
			return err == nil && len(jobs) == 0
		})
		if !ok {
			t.Error("expected no claimable jobs after completion")
		}
	})

	t.Run("failure keeps job claimable until attempts exhausted", func(t *testing.T) {
		var attempts int
		done := make(chan struct{})
		exec := executor.NewExecutor(map[string]executor.JobHandler{
			"flaky_job": FuncHandler(func(ctx context.Context, job db.Job) error {
				attempts++
				if attempts >= 3 {
					select {
					case <-done:
					default:
						close(done)
					}
				}
				return errors.New("transient failure")
			}),
		})
		scheduler, testDB := newTestScheduler(t, cfg, exec)

		if err := testDB.InsertJob(db.Job{JobType: "flaky_job", Payload: []byte(`{}`), MaxAttempts: 3}); err != nil {
			t.Fatalf("InsertJob failed: %v", err)
		}

		scheduler.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = scheduler.Stop(ctx)
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("job retried %d times, want 3", attempts)
		}

		// All attempts consumed, the job must not be claimable again.
		ok := waitFor(t, time.Second, func() bool {
			jobs, err := testDB.Claim(10)
			return err == nil && len(jobs) == 0
		})
		if !ok {
			t.Error("exhausted job should not be claimable")
		}
	})

	t.Run("recurrent job schedules successor", func(t *testing.T) {
		executed := make(chan struct{}, 1)
		exec := executor.NewExecutor(map[string]executor.JobHandler{
			queue.JobTypeBackupLocal: FuncHandler(func(ctx context.Context, job db.Job) error {
				select {
				case executed <- struct{}{}:
				default:
				}
				return nil
			}),
		})
		scheduler, testDB := newTestScheduler(t, cfg, exec)

		job := db.Job{
			JobType:   queue.JobTypeBackupLocal,
			Payload:   []byte(`{}`),
			Recurrent: true,
			Interval:  time.Hour,
		}
		if err := testDB.InsertJob(job); err != nil {
			t.Fatalf("InsertJob failed: %v", err)
		}

		scheduler.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = scheduler.Stop(ctx)
		}()

		select {
		case <-executed:
		case <-time.After(2 * time.Second):
			t.Fatal("recurrent job was never executed")
		}
	})
}

func TestScheduler_JobPayloadRoundTrip(t *testing.T) {
	cfg := config.Scheduler{
		Interval:              config.Duration{Duration: 20 * time.Millisecond},
		MaxJobsPerTick:        10,
		ConcurrencyMultiplier: 2,
	}

	type received struct {
		payload queue.PayloadVerificationEmail
		extra   queue.PayloadExtraCode
	}
	got := make(chan received, 1)

	exec := executor.NewExecutor(map[string]executor.JobHandler{
		queue.JobTypeVerificationEmail: FuncHandler(func(ctx context.Context, job db.Job) error {
			var r received
			if err := json.Unmarshal(job.Payload, &r.payload); err != nil {
				return err
			}
			if err := json.Unmarshal(job.PayloadExtra, &r.extra); err != nil {
				return err
			}
			got <- r
			return nil
		}),
	})
	scheduler, testDB := newTestScheduler(t, cfg, exec)

	payload, _ := json.Marshal(queue.PayloadVerificationEmail{Email: "a@b.com", CooldownBucket: 12})
	extra, _ := json.Marshal(queue.PayloadExtraCode{Code: "482916"})
	if err := testDB.InsertJob(db.Job{JobType: queue.JobTypeVerificationEmail, Payload: payload, PayloadExtra: extra}); err != nil {
		t.Fatalf("InsertJob failed: %v", err)
	}

	scheduler.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = scheduler.Stop(ctx)
	}()

	select {
	case r := <-got:
		if r.payload.Email != "a@b.com" || r.payload.CooldownBucket != 12 {
			t.Errorf("payload = %+v, want email a@b.com bucket 12", r.payload)
		}
		if r.extra.Code != "482916" {
			t.Errorf("extra code = %q, want 482916", r.extra.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was never executed")
	}
}
