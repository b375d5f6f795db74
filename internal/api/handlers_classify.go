package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docsort/internal/parser"
	"github.com/dgallion1/docsort/internal/pipeline"
)

// maxBatchFiles bounds the number of uploads accepted in one batch request.
const maxBatchFiles = 100

// handleClassify classifies one uploaded document synchronously.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, data, code, err := s.readUpload(header.Filename, file)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	res := s.orchestrator.Classifier().Classify(filename, bytes.NewReader(data))
	code = http.StatusOK
	if res.Status == pipeline.StatusFailed {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, res)
}

type classifyTextRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// handleClassifyText matches already extracted text.
func (s *Server) handleClassifyText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req classifyTextRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "text"
	}

	writeJSON(w, http.StatusOK, s.orchestrator.Classifier().ClassifyText(req.Source, req.Text))
}

// handleBatchClassify queues every uploaded file as its own job.
func (s *Server) handleBatchClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(w, fmt.Sprintf("too many files (max %d)", maxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.openUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.JobQueued,
			"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) openUpload(fh *multipart.FileHeader) (string, []byte, error) {
	f, err := fh.Open()
	if err != nil {
		return sanitizeFilename(fh.Filename), nil, errors.New("failed to open file")
	}
	defer f.Close()
	filename, data, _, err := s.readUpload(fh.Filename, f)
	return filename, data, err
}

// readUpload validates the upload name and reads at most MaxUploadBytes. The
// returned status code applies when err is non-nil.
func (s *Server) readUpload(name string, r io.Reader) (string, []byte, int, error) {
	filename := sanitizeFilename(name)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, errors.New("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return filename, data, 0, nil
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
