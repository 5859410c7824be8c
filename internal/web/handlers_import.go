package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/logging"
)

// multipartOverhead is the room left for form boundaries and headers on
// top of the file size limit.
const multipartOverhead = 1 << 20

type importResponse struct {
	Message string `json:"message"`
	*core.ImportSummary
}

// readUpload reads the CSV sent in the multipart "file" field. On failure
// it writes the response and returns ok == false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (text, filename string, ok bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, core.ErrFileTooLarge)
			return "", "", false
		}
		respondMessage(w, http.StatusBadRequest, "No file provided")
		return "", "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "No file provided")
		return "", "", false
	}
	defer file.Close()

	if !core.IsCSVFilename(header.Filename) {
		respondMessage(w, http.StatusBadRequest, "File must be a CSV")
		return "", "", false
	}

	text, err = core.ReadUpload(file, maxSize)
	if err != nil {
		s.respondError(w, r, err)
		return "", "", false
	}
	return text, header.Filename, true
}

// handleImport accepts a multipart upload in the "file" field and imports
// every valid row.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	text, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx, cancel := core.ImportContext(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	log := logging.WithFields(ctx, "filename", filename)
	log.Info("csv import started", "bytes", len(text))

	summary, err := s.leads.ImportCSV(ctx, identity(r), text)
	if err != nil {
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", strconv.Itoa(int(s.cfg.Import.MaxWaitTime.Seconds())))
		}
		s.respondError(w, r, err)
		return
	}
	log.Info("csv import completed", "imported", summary.Imported, "failed", summary.Failed)

	writeJSON(w, http.StatusOK, importResponse{
		Message:       fmt.Sprintf("Successfully imported %d leads", summary.Imported),
		ImportSummary: summary,
	})
}

// handleImportPreview reports what importing the upload would do without
// storing anything.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	text, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := s.leads.PreviewImport(r.Context(), identity(r), text)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// handleExport streams every lead matching the list filters as CSV or
// XLSX, selected by ?format=.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	file, err := s.leads.Export(r.Context(), identity(r), listFiltersFromQuery(r), format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logging.FromContext(r.Context()).Error("write export", "error", err)
	}
}

// handleImportStatus reports import slot usage.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.leads.ImportLimiter().Status())
}
