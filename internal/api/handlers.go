package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// User-facing messages. Raw error text never reaches the client.
const (
	msgInvalidRequest = "Geçersiz istek"
	msgURLRequired    = "URL gerekli"
	msgNoSportsNews   = "Spor haberi bulunamadı"
	msgFetchFailed    = "Haberler çekilirken bir hata oluştu"

	msgURLParamRequired = "URL parametresi gerekli"
	msgInvalidURLFormat = "Geçersiz URL formatı"
	msgNoSportsOnSource = "Bu kaynakta spor haberi bulunamadı"

	detailTimeout     = "istek zaman aşımına uğradı"
	detailUnreachable = "kaynak sayfaya erişilemedi"
	detailUnexpected  = "beklenmeyen hata"
)

type newsRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// decodeRequest reads the JSON body. ok is false when the body is not a
// JSON object.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (newsRequest, bool) {
	var req newsRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.logger.Debug("undecodable request body", "path", r.URL.Path, "error", err)
		return req, false
	}
	req.URL = strings.TrimSpace(req.URL)
	return req, true
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: msgInvalidRequest})
		return
	}
	if req.URL == "" {
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: msgURLRequired})
		return
	}

	items, err := s.service.Import(r.Context(), req.URL)
	switch {
	case err == nil:
		s.jsonResponse(w, http.StatusOK, items)
	case errors.Is(err, types.ErrInvalidURL):
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: msgInvalidRequest})
	case errors.Is(err, types.ErrNoSportsNews):
		s.jsonResponse(w, http.StatusNotFound, errorResponse{Error: msgNoSportsNews})
	default:
		s.logger.Error("import failed", "url", req.URL, "error", err)
		s.jsonResponse(w, http.StatusInternalServerError, errorResponse{Error: msgFetchFailed})
	}
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok || req.URL == "" {
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: msgURLParamRequired})
		return
	}
	if err := config.ValidateURL(req.URL); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: msgInvalidURLFormat})
		return
	}

	articles, err := s.service.Scrape(r.Context(), req.URL)
	switch {
	case err == nil:
		s.jsonResponse(w, http.StatusOK, articles)
	case errors.Is(err, types.ErrInvalidURL):
		s.jsonResponse(w, http.StatusBadRequest, errorResponse{Error: msgInvalidURLFormat})
	case errors.Is(err, types.ErrNoSportsNews):
		s.jsonResponse(w, http.StatusNotFound, errorResponse{Error: msgNoSportsOnSource})
	default:
		s.logger.Error("scrape failed", "url", req.URL, "error", err)
		s.jsonResponse(w, http.StatusInternalServerError, errorResponse{
			Error:   msgFetchFailed,
			Details: failureDetail(err),
		})
	}
}

// failureDetail maps an error to a short localized failure class.
func failureDetail(err error) string {
	var fe *types.FetchError
	switch {
	case errors.Is(err, types.ErrTimeout):
		return detailTimeout
	case errors.As(err, &fe), errors.Is(err, types.ErrBrowserUnavailable):
		return detailUnreachable
	default:
		return detailUnexpected
	}
}
