package handlers

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/zombiezen"
	"github.com/quillhq/quill/migrations"
)

// setupBackupTest creates a temporary source database with the full schema
// and one user row, plus a config provider pointing at the temporary paths.
func setupBackupTest(t *testing.T) (*config.Config, string) {
	t.Helper()

	tempDir := t.TempDir()
	sourceDbPath := filepath.Join(tempDir, "source.db")
	backupDir := filepath.Join(tempDir, "backups")

	conn, err := zombiezen.NewConn(sourceDbPath)
	if err != nil {
		t.Fatalf("Failed to open source db connection: %v", err)
	}
	defer conn.Close()

	schemaFS := migrations.Schema()
	err = fs.WalkDir(schemaFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		sqlBytes, err := fs.ReadFile(schemaFS, path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", path, err)
		}
		if err := sqlitex.ExecuteScript(conn, string(sqlBytes), nil); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO users (name, email, password) VALUES ('test-user', 'test@example.com', 'hash');", nil)
	if err != nil {
		t.Fatalf("Failed to insert test data: %v", err)
	}

	cfg := config.NewDefaultConfig()
	cfg.DBFile = sourceDbPath
	cfg.BackupLocal.BackupDir = backupDir

	return cfg, backupDir
}

// verifyBackup decompresses a gzipped backup and checks it is a valid
// database containing the seeded user.
func verifyBackup(t *testing.T, backupPath string) {
	t.Helper()

	gzFile, err := os.Open(backupPath)
	if err != nil {
		t.Fatalf("Failed to open gzipped backup file: %v", err)
	}
	defer gzFile.Close()

	gzReader, err := gzip.NewReader(gzFile)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer gzReader.Close()

	decompressedPath := backupPath + ".db"
	destFile, err := os.Create(decompressedPath)
	if err != nil {
		t.Fatalf("Failed to create decompressed destination file: %v", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, gzReader); err != nil {
		t.Fatalf("Failed to decompress file: %v", err)
	}

	conn, err := zombiezen.NewConn(decompressedPath)
	if err != nil {
		t.Fatalf("Failed to open decompressed database: %v", err)
	}
	defer conn.Close()

	var count int
	err = sqlitex.Execute(conn, "SELECT count(*) FROM users", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Failed to query decompressed database: %v", err)
	}

	if count == 0 {
		t.Error("Expected data in backup, but users table is empty")
	}
}

func TestBackupLocalHandler_Handle(t *testing.T) {
	cfg, backupDir := setupBackupTest(t)
	provider := config.NewProvider(cfg)
	handler := NewBackupLocalHandler(provider, discardLogger())

	if err := handler.Handle(context.Background(), db.Job{}); err != nil {
		t.Fatalf("Handle() error = %v, want nil", err)
	}

	matches, err := filepath.Glob(filepath.Join(backupDir, "source-*.bck.gz"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one backup file, found %d", len(matches))
	}

	verifyBackup(t, matches[0])
}

func TestBackupLocalHandler_MissingSource(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.DBFile = filepath.Join(t.TempDir(), "nope", "missing.db")
	cfg.BackupLocal.BackupDir = t.TempDir()

	handler := NewBackupLocalHandler(config.NewProvider(cfg), discardLogger())
	if err := handler.Handle(context.Background(), db.Job{}); err == nil {
		t.Fatal("Handle() expected an error for a missing source database")
	}
}
