package zombiezen

import (
	"fmt"

	"github.com/quillhq/quill/db"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type Db struct {
	pool *sqlitex.Pool
}

// Verify interface implementations
var _ db.DbAuth = (*Db)(nil)
var _ db.DbContent = (*Db)(nil)
var _ db.DbFile = (*Db)(nil)
var _ db.DbQueue = (*Db)(nil)
var _ db.DbApp = (*Db)(nil)

// New creates a new Db instance using an existing pool provided by the user.
// The lifecycle of the pool is managed externally; this type never closes it.
func New(pool *sqlitex.Pool) (*Db, error) {
	if pool == nil {
		return nil, fmt.Errorf("provided pool cannot be nil")
	}
	return &Db{pool: pool}, nil
}

// NewConn opens a single connection outside any pool. Jobs that need
// exclusive statements, like VACUUM INTO for backups, use this instead of
// borrowing from the shared pool.
func NewConn(dbPath string) (*sqlite.Conn, error) {
	conn, err := sqlite.OpenConn(dbPath, sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenWAL|sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to %s: %w", dbPath, err)
	}
	return conn, nil
}
