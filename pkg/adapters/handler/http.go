package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wadjakorntonsri/shippedtoday/pkg/core/domain"
	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	service      ports.LaunchService
	log          *logger.Logger
	trustProxy   bool
	rateLimitMax int
	rateWindow   time.Duration
}

// Options carries the request-handling settings from config.
type Options struct {
	TrustProxy      bool
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func NewHTTPHandler(service ports.LaunchService, opts Options, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		service:      service,
		log:          log.With("component", "HTTPHandler"),
		trustProxy:   opts.TrustProxy,
		rateLimitMax: opts.RateLimitMax,
		rateWindow:   opts.RateLimitWindow,
	}
}

type listResponse struct {
	Launches []domain.Launch `json:"launches"`
	Total    int64           `json:"total"`
}

// List launches, newest first
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	launches, total, err := h.service.List(r.Context(), domain.ListQuery{
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.log.Error("failed to read launches", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch launches")
		return
	}
	if launches == nil {
		launches = []domain.Launch{}
	}

	writeJSON(w, http.StatusOK, listResponse{Launches: launches, Total: total})
}

// Create submits a new launch
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusBadRequest, "Invalid content type")
		return
	}

	var sub domain.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	clientID := h.clientIP(r)
	launch, err := h.service.Submit(r.Context(), clientID, sub)
	if err != nil {
		status, body, ok := h.submitError(err)
		if !ok {
			h.log.Error("failed to submit launch", "client", clientID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to submit launch")
			return
		}
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusCreated, launch)
}

// Get a single launch by id
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	launch, err := h.service.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Launch not found")
		return
	}
	if err != nil {
		h.log.Error("failed to read launch", "id", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch launch")
		return
	}
	writeJSON(w, http.StatusOK, launch)
}

// Export dumps every launch (admin only)
func (h *HTTPHandler) Export(w http.ResponseWriter, r *http.Request) {
	launches, err := h.service.Export(r.Context())
	if err != nil {
		h.log.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export launches")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="launches.json"`)
	writeJSON(w, http.StatusOK, launches)
}

// clientIP identifies the submitter for rate limiting. Forwarded headers are
// only honoured behind a trusted proxy.
func (h *HTTPHandler) clientIP(r *http.Request) string {
	if h.trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if ip := strings.TrimSpace(strings.Split(fwd, ",")[0]); ip != "" {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
