package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/adifpush/adifpush/internal/storage/sqlite"
	"github.com/adifpush/adifpush/internal/uploader"
	"github.com/adifpush/adifpush/pkg/logger"
)

// defaultUploadsLimit bounds /uploads when no limit is given;
// maxUploadsLimit bounds it regardless, so one request cannot drag the
// whole history table into memory.
const (
	defaultUploadsLimit = 50
	maxUploadsLimit     = 1000
)

// Handler handles API requests
type Handler struct {
	uploader     *uploader.Uploader
	history      *sqlite.UploadStorage
	listenerAddr string
	started      time.Time
	logger       *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(up *uploader.Uploader, history *sqlite.UploadStorage, listenerAddr string, logger *logger.Logger) *Handler {
	return &Handler{
		uploader:     up,
		history:      history,
		listenerAddr: listenerAddr,
		started:      time.Now().UTC(),
		logger:       logger.Named("api-handler"),
	}
}

// GetHealth reports liveness.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the /status payload.
type statusResponse struct {
	Listener string           `json:"listener"`
	Started  time.Time        `json:"started"`
	Counters uploader.Summary `json:"counters"`
}

// GetStatus returns the live run counters and listener info.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, statusResponse{
		Listener: h.listenerAddr,
		Started:  h.started,
		Counters: h.uploader.Counters(),
	})
}

// GetRecentUploads returns recent delivery attempts from the history.
func (h *Handler) GetRecentUploads(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusNotFound, "upload history is disabled")
		return
	}

	limit := defaultUploadsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxUploadsLimit {
		limit = maxUploadsLimit
	}

	records, err := h.history.GetRecentUploads(limit)
	if err != nil {
		h.logger.Error("Failed to query upload history", logger.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to query upload history")
		return
	}
	if records == nil {
		records = []*sqlite.UploadRecord{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", logger.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
