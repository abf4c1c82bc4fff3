package handlers

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/db/zombiezen"
)

// BackupLocalHandler handles database backup jobs. It writes a vacuumed copy
// of the live database next to the configured backup directory, gzipped.
type BackupLocalHandler struct {
	configProvider *config.Provider
	logger         *slog.Logger
}

// NewBackupLocalHandler creates a new BackupLocalHandler.
func NewBackupLocalHandler(provider *config.Provider, logger *slog.Logger) *BackupLocalHandler {
	if provider == nil || logger == nil {
		panic("NewBackupLocalHandler: received nil provider or logger")
	}
	return &BackupLocalHandler{
		configProvider: provider,
		logger:         logger.With("job_handler", "sqlite_backup"),
	}
}

// Handle implements the executor.JobHandler interface for database backups.
func (h *BackupLocalHandler) Handle(ctx context.Context, job db.Job) error {
	cfg := h.configProvider.Get()
	sourceDbPath := cfg.DBFile
	backupDir := cfg.BackupLocal.BackupDir

	tempBackupPath := filepath.Join(os.TempDir(), fmt.Sprintf("backup-%d.db", time.Now().UnixNano()))

	baseName := filepath.Base(sourceDbPath)
	fileNameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	finalBackupPath := filepath.Join(backupDir, fmt.Sprintf("%s-%s.bck.gz", fileNameOnly, timestamp))

	h.logger.Info("starting database backup", "source", sourceDbPath, "destination", finalBackupPath)

	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if err := h.vacuumInto(sourceDbPath, tempBackupPath); err != nil {
		return fmt.Errorf("backup creation failed: %w", err)
	}
	defer func() {
		if err := os.Remove(tempBackupPath); err != nil {
			h.logger.Error("error removing temporary backup file", "error", err)
		}
	}()

	if err := h.compressFile(tempBackupPath, finalBackupPath); err != nil {
		return fmt.Errorf("failed to gzip backup file: %w", err)
	}

	h.logger.Info("database backup completed", "path", finalBackupPath)
	return nil
}

// vacuumInto creates a clean, defragmented copy of the database.
func (h *BackupLocalHandler) vacuumInto(sourcePath, destPath string) error {
	sourceConn, err := zombiezen.NewConn(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source db for vacuum: %w", err)
	}
	defer func() {
		if err := sourceConn.Close(); err != nil {
			h.logger.Error("error closing source database connection", "error", err)
		}
	}()

	stmt, err := sourceConn.Prepare(fmt.Sprintf("VACUUM INTO '%s';", destPath))
	if err != nil {
		return fmt.Errorf("failed to prepare vacuum statement: %w", err)
	}
	defer stmt.Finalize()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute vacuum statement: %w", err)
	}
	return nil
}

func (h *BackupLocalHandler) compressFile(sourcePath, destPath string) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open file for compression: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create compressed file: %w", err)
	}
	defer dest.Close()

	gz := gzip.NewWriter(dest)
	if _, err := io.Copy(gz, source); err != nil {
		gz.Close()
		return fmt.Errorf("failed to compress data: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize compressed data: %w", err)
	}
	return nil
}
