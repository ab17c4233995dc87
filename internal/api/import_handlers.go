package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bookdueapp/bookdue-server/internal/http/response"
	"github.com/bookdueapp/bookdue-server/internal/importer"
)

// maxImportSize caps uploaded backup files at 64 MiB. Device backups are a
// ZIP around a small SQLite database; anything bigger is not one.
const maxImportSize = 64 << 20

// handleImport accepts a device backup upload (multipart field "backup")
// and imports its deadlines and progress history for the caller.
//
// Query parameters:
//
//	skip_invalid=false    - fail the whole import on any bad row
//	skip_duplicates=false - import rows that match an existing title+due date
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		response.BadRequest(w, "Invalid multipart upload", s.logger)
		return
	}

	file, header, err := r.FormFile("backup")
	if err != nil {
		response.BadRequest(w, "Missing 'backup' file field", s.logger)
		return
	}
	defer file.Close()

	// The ZIP reader needs a seekable file on disk.
	tmpDir, err := os.MkdirTemp("", "bookdue-import-*")
	if err != nil {
		s.logger.Error("Failed to create temp dir for import", "error", err)
		response.InternalError(w, "Failed to process upload", s.logger)
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(header.Filename))
	tmpFile, err := os.Create(tmpPath) //#nosec G304 -- path is under our own temp dir
	if err != nil {
		s.logger.Error("Failed to create temp file for import", "error", err)
		response.InternalError(w, "Failed to process upload", s.logger)
		return
	}
	if _, err := io.Copy(tmpFile, file); err != nil {
		_ = tmpFile.Close()
		s.logger.Error("Failed to write uploaded backup", "error", err)
		response.InternalError(w, "Failed to process upload", s.logger)
		return
	}
	if err := tmpFile.Close(); err != nil {
		s.logger.Error("Failed to close uploaded backup", "error", err)
		response.InternalError(w, "Failed to process upload", s.logger)
		return
	}

	backup, err := importer.Parse(tmpPath)
	if err != nil {
		if errors.Is(err, importer.ErrNotBackup) || errors.Is(err, importer.ErrMissingTable) {
			response.BadRequest(w, "Not a valid BookDue backup file", s.logger)
			return
		}
		s.logger.Error("Failed to parse backup", "error", err)
		response.BadRequest(w, "Could not read backup file", s.logger)
		return
	}

	opts := importer.DefaultImportOptions()
	if r.URL.Query().Get("skip_invalid") == "false" {
		opts.SkipInvalid = false
	}
	if r.URL.Query().Get("skip_duplicates") == "false" {
		opts.SkipDuplicates = false
	}

	result, err := s.importer.Import(r.Context(), backup, getUserID(r.Context()), opts)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidContent) {
			response.BadRequest(w, err.Error(), s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
