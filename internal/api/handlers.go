package api

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/search"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type Handler struct {
	search *search.Service
	logger *zap.Logger
}

func NewHandler(svc *search.Service, logger *zap.Logger) *Handler {
	return &Handler{
		search: svc,
		logger: logger,
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)

	var req models.SearchRequest
	limited := io.LimitReader(r.Body, maxRequestBodySize)
	if err := json.NewDecoder(limited).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.RequestID = requestID

	resp, err := h.search.Search(ctx, &req)
	if err != nil {
		h.logger.Error("search failed",
			zap.String("request_id", requestID),
			zap.String("locale", req.Locale),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("writing json response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
