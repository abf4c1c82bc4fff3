package core

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
)

// fileCacheKey namespaces file ids in the shared cache.
const fileCachePrefix = "file:"

// File metadata is immutable once stored, so entries only need to cycle out
// to bound staleness after an out-of-band delete.
const fileCacheTTL = time.Hour

// fileById resolves a file record through the cache, falling back to the
// store on miss. Returns nil both for absent records and store errors; the
// callers render a missing attachment, they never fail the request over it.
func (a *App) fileById(id string) *db.File {
	if a.fileCache != nil {
		if file, ok := a.fileCache.Get(fileCachePrefix + id); ok {
			return file
		}
	}

	file, err := a.DbFile().GetFileById(id)
	if err != nil || file == nil {
		return nil
	}

	if a.fileCache != nil {
		a.fileCache.SetWithTTL(fileCachePrefix+id, file, 1, fileCacheTTL)
	}
	return file
}

// UploadFileHandler stores an uploaded file and registers its metadata.
// Endpoint: POST /api/v1/files
// Authenticated: Yes
// Allowed Mimetype: multipart/form-data, field name "file"
func (a *App) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	cfg := a.Config()
	r.Body = http.MaxBytesReader(w, r.Body, cfg.Uploads.MaxSizeBytes)

	src, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJsonError(w, errorFileTooLarge)
			return
		}
		writeJsonError(w, errorInvalidRequest)
		return
	}
	defer src.Close()

	// Sniff the type from content, the client-declared header is advisory.
	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		writeJsonError(w, errorInvalidRequest)
		return
	}
	mimetype := http.DetectContentType(head[:n])
	if !slices.Contains(cfg.Uploads.AllowedTypes, mimetype) {
		writeJsonError(w, errorInvalidContentType)
		return
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		writeJsonError(w, errorInternal)
		return
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		a.Logger().Error("failed to create uploads dir", "dir", cfg.Uploads.Dir, "error", err)
		writeJsonError(w, errorInternal)
		return
	}

	// Stored under a random name; the original filename survives only as
	// metadata.
	storedName := crypto.RandomString(20, crypto.AlphanumericAlphabet)
	dstPath := filepath.Join(cfg.Uploads.Dir, storedName)
	dst, err := os.Create(dstPath)
	if err != nil {
		a.Logger().Error("failed to create upload file", "path", dstPath, "error", err)
		writeJsonError(w, errorInternal)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dstPath)
		writeJsonError(w, errorInternal)
		return
	}

	file, err := a.DbFile().CreateFile(db.File{
		Filename:   filepath.Base(header.Filename),
		Mimetype:   mimetype,
		Size:       size,
		UploadedBy: user.ID,
	})
	if err != nil {
		os.Remove(dstPath)
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusCreated,
			Status:  true,
			Message: "File uploaded",
		},
		Data: map[string]any{"file": newFileRecord(file)},
	})
}

// GetFileHandler returns the metadata of an uploaded file.
// Endpoint: GET /api/v1/files/:id
// Authenticated: No
func (a *App) GetFileHandler(w http.ResponseWriter, r *http.Request) {
	file := a.fileById(r.PathValue("id"))
	if file == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "OK",
		},
		Data: map[string]any{"file": newFileRecord(file)},
	})
}

// DeleteFileHandler removes a file record and evicts it from the cache.
// Endpoint: DELETE /api/v1/files/:id
// Authenticated: Yes
func (a *App) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	id := r.PathValue("id")
	file, err := a.DbFile().GetFileById(id)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if file == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	if err := a.DbFile().DeleteFile(id); err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	if a.fileCache != nil {
		a.fileCache.Delete(fileCachePrefix + id)
	}

	writeJsonOk(w, okDeleted)
}
