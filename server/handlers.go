package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mhpenta/profileinator"
)

// Client-facing messages. The 500 body is deliberately generic so internal
// failure detail never leaks to the caller.
const (
	detailNotAnImage    = "File must be an image"
	detailMissingFile   = "An image file is required"
	detailBadCount      = "num_variants must be between 1 and 10"
	detailInternalError = "Failed to generate profiles. Please try again."
)

// generateResponse is the success body for POST /generate/.
type generateResponse struct {
	Images           []string `json:"images"`
	OriginalFilename *string  `json:"original_filename"`
}

// errorResponse is the body for every non-200 outcome.
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: detailInternalError})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGenerate accepts a multipart image upload plus an optional
// num_variants field and returns the encoded variants.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailMissingFile})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailMissingFile})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailNotAnImage})
		return
	}

	count, ok := parseVariantCount(r.FormValue("num_variants"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailBadCount})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailMissingFile})
		return
	}

	image := profileinator.InputImage{
		Data:     data,
		MIMEType: contentType,
		Filename: header.Filename,
	}

	variants, err := s.svc.GenerateVariants(r.Context(), image, count)
	if err != nil {
		// Validation errors surface as client errors; anything else stays
		// behind the generic 500.
		switch {
		case errors.Is(err, profileinator.ErrInvalidVariantCount):
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailBadCount})
		case errors.Is(err, profileinator.ErrInvalidMIMEType):
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detailNotAnImage})
		case errors.Is(err, profileinator.ErrEmptyImageData),
			errors.Is(err, profileinator.ErrImageTooLarge):
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
		default:
			s.logger.Error("variant generation failed",
				"error", err.Error(),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: detailInternalError})
		}
		return
	}

	s.metrics.ObserveGeneration(variants, time.Since(start))

	var filename *string
	if header.Filename != "" {
		filename = &header.Filename
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Images:           profileinator.EncodeVariants(variants),
		OriginalFilename: filename,
	})
}

// parseVariantCount parses the num_variants form value. An absent value
// selects the default; anything unparseable or out of range is rejected.
func parseVariantCount(raw string) (int, bool) {
	if raw == "" {
		return profileinator.DefaultVariants, true
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if err := profileinator.ValidateVariantCount(count); err != nil {
		return 0, false
	}
	return count, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
