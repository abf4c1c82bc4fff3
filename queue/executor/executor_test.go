package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/quillhq/quill/db"
)

// mockJobHandler is a mock implementation of the JobHandler interface for
// testing. It allows controlling the outcome of Handle and tracking calls.
type mockJobHandler struct {
	handleFunc func(ctx context.Context, job db.Job) error
}

func (m *mockJobHandler) Handle(ctx context.Context, job db.Job) error {
	if m.handleFunc != nil {
		return m.handleFunc(ctx, job)
	}
	return nil
}

func TestNewExecutor(t *testing.T) {
	t.Run("with initial handlers", func(t *testing.T) {
		handlers := map[string]JobHandler{
			"test_job": &mockJobHandler{},
		}
		executor := NewExecutor(handlers)
		if executor == nil {
			t.Fatal("NewExecutor returned nil")
		}
		if len(executor.registry) != 1 {
			t.Errorf("expected 1 handler to be registered, got %d", len(executor.registry))
		}
	})

	t.Run("with nil handlers", func(t *testing.T) {
		executor := NewExecutor(nil)
		if executor == nil {
			t.Fatal("NewExecutor returned nil")
		}
		if len(executor.registry) != 0 {
			t.Errorf("expected 0 handlers for nil input, got %d", len(executor.registry))
		}
	})
}

func TestDefaultExecutor_Register(t *testing.T) {
	executor := NewExecutor(nil)
	handler1 := &mockJobHandler{}
	handler2 := &mockJobHandler{}

	executor.Register("job1", handler1)
	if executor.registry["job1"] != handler1 {
		t.Error("handler1 was not registered correctly")
	}

	// Replacing an existing registration
	executor.Register("job1", handler2)
	if executor.registry["job1"] != handler2 {
		t.Error("handler2 should have replaced handler1")
	}
}

func TestDefaultExecutor_Execute(t *testing.T) {
	t.Run("dispatches to registered handler", func(t *testing.T) {
		var handledJobID int64
		executor := NewExecutor(map[string]JobHandler{
			"known": &mockJobHandler{
				handleFunc: func(ctx context.Context, job db.Job) error {
					handledJobID = job.ID
					return nil
				},
			},
		})

		err := executor.Execute(context.Background(), db.Job{ID: 99, JobType: "known"})
		if err != nil {
			t.Fatalf("Execute() error = %v, want nil", err)
		}
		if handledJobID != 99 {
			t.Errorf("handler saw job %d, want 99", handledJobID)
		}
	})

	t.Run("unknown job type", func(t *testing.T) {
		executor := NewExecutor(nil)
		err := executor.Execute(context.Background(), db.Job{JobType: "mystery"})
		if err == nil {
			t.Fatal("Execute() should fail for an unregistered job type")
		}
	})

	t.Run("handler error propagates", func(t *testing.T) {
		wantErr := errors.New("boom")
		executor := NewExecutor(map[string]JobHandler{
			"failing": &mockJobHandler{
				handleFunc: func(ctx context.Context, job db.Job) error {
					return wantErr
				},
			},
		})

		err := executor.Execute(context.Background(), db.Job{JobType: "failing"})
		if !errors.Is(err, wantErr) {
			t.Errorf("Execute() error = %v, want %v", err, wantErr)
		}
	})
}
