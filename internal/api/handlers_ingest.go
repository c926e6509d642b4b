package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightpath-labs/textbookd/internal/importer"
	"github.com/brightpath-labs/textbookd/internal/ocr"
	"github.com/brightpath-labs/textbookd/internal/pipeline"
)

// ingestRequest is the JSON body for POST /api/ingest: the scan
// records for one textbook.
type ingestRequest struct {
	TextbookID string       `json:"textbook_id"`
	Title      string       `json:"title,omitempty"`
	Records    []ocr.Result `json:"records"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.TextbookID == "" {
		jsonError(w, "textbook_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Records) == 0 {
		jsonError(w, "at least one record is required", http.StatusBadRequest)
		return
	}

	job := newJob(req.TextbookID, "", req.Title)
	job.SetRecords(req.Records)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeAccepted(w, job)
}

// handleImport accepts a document file upload and runs it through the
// same ingestion pipeline as scan records.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	textbookID := r.FormValue("textbook_id")
	if textbookID == "" {
		jsonError(w, "textbook_id is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := newJob(textbookID, filename, r.FormValue("title"))
	job.SetFileData(data)

	coverPage, _ := strconv.Atoi(r.FormValue("cover_page"))
	tocPages, err := parsePageList(r.FormValue("toc_pages"))
	if err != nil {
		jsonError(w, "invalid toc_pages: "+err.Error(), http.StatusBadRequest)
		return
	}
	job.SetPageOverrides(coverPage, tocPages)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeAccepted(w, job)
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":      snap.ID,
		"textbook_id": snap.TextbookID,
		"status":      snap.Status,
		"phase":       snap.Phase,
		"progress":    snap.Progress,
	})
}

func (s *Server) handleDeleteTextbook(w http.ResponseWriter, r *http.Request) {
	textbookID := chi.URLParam(r, "textbookID")
	if err := s.orchestrator.StoreClient().DeleteTextbook(r.Context(), textbookID); err != nil {
		jsonError(w, "delete failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"textbook_id": textbookID,
		"deleted":     true,
	})
}

func newJob(textbookID, filename, title string) *pipeline.Job {
	now := time.Now()
	return &pipeline.Job{
		ID:         uuid.NewString(),
		TextbookID: textbookID,
		Status:     pipeline.StatusQueued,
		Phase:      "queued",
		Filename:   filename,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func writeAccepted(w http.ResponseWriter, job *pipeline.Job) {
	// The job is already queued, so a worker may be mutating it; read
	// through the snapshot instead of touching fields directly.
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":      snap.ID,
		"textbook_id": snap.TextbookID,
		"status":      snap.Status,
		"poll_url":    fmt.Sprintf("/api/ingest/%s/status", snap.ID),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// parsePageList parses "2-4" or "2,3,4" (or a mix) into page numbers.
func parsePageList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("bad range start %q", lo)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("bad range end %q", hi)
			}
			if end < start {
				return nil, fmt.Errorf("range %q is reversed", part)
			}
			for p := start; p <= end; p++ {
				pages = append(pages, p)
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad page number %q", part)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
