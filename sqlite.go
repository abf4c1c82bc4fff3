package quill

import (
	"fmt"
	"runtime"
	"time"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/quillhq/quill/core"
	"github.com/quillhq/quill/db/zombiezen"
)

// WithZombiezenPool configures the App to use the zombiezen SQLite
// implementation with an existing pool. The caller owns the pool's lifecycle;
// sharing one pool between the application and any direct database access
// avoids SQLITE_BUSY errors.
func WithZombiezenPool(pool *sqlitex.Pool) core.Option {
	dbInstance, err := zombiezen.New(pool)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize zombiezen db with existing pool: %v", err))
	}
	return core.WithDbApp(dbInstance)
}

// NewZombiezenPool creates a zombiezen SQLite connection pool with the
// driver's defaults (WAL mode, read-write, create).
func NewZombiezenPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zombiezen pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

var explicitBusyTimeout = 5 * time.Second

// NewZombiezenPerformancePool creates a zombiezen SQLite connection pool with
// explicit performance PRAGMAs in the DSN. busy_timeout is in milliseconds.
func NewZombiezenPerformancePool(dbPath string) (*sqlitex.Pool, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d&_foreign_keys=on",
		dbPath,
		explicitBusyTimeout.Milliseconds(),
	)

	pool, err := sqlitex.NewPool(dsn, sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create performance zombiezen pool at %s: %w", dbPath, err)
	}
	return pool, nil
}
