package buyers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/propstack/buyer-leads/internal/identity"
	"github.com/propstack/buyer-leads/internal/observability/metrics"
	"github.com/propstack/buyer-leads/pkg/logging"
)

// maxImportBody caps the multipart upload size (200 rows fit well
// within this).
const maxImportBody = 2 << 20

// Handler exposes the buyer CRUD, bulk, and history endpoints.
type Handler struct {
	svc     *Service
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
}

// NewHandler creates a new buyers handler.
func NewHandler(svc *Service, logger *logging.Logger, m *metrics.LeadMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger, metrics: m}
}

type listResponse struct {
	Data     []*Buyer `json:"data"`
	Total    int      `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
}

// List handles GET /buyers requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ListFilter{
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
		Page:         1,
		PageSize:     10,
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(q.Get("pageSize")); err == nil && size > 0 && size <= 100 {
		filter.PageSize = size
	}

	records, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list buyers", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if records == nil {
		records = []*Buyer{}
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data:     records,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

type mutateRequest struct {
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Create handles POST /buyers requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Data == nil {
		writeError(w, http.StatusBadRequest, "Missing data")
		return
	}

	buyer, err := h.svc.Create(r.Context(), req.Data, actorID)
	if err != nil {
		h.metrics.ObserveMutation("create", "error")
		h.writeDomainError(w, err)
		return
	}

	h.metrics.ObserveMutation("create", "ok")
	writeJSON(w, http.StatusCreated, buyer)
}

// Get handles GET /buyers/{id} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	buyer, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": buyer})
}

// Update handles PUT /buyers/{id} requests. The request carries the
// updatedAt value the caller read before editing; a mismatch with the
// stored token is rejected as a conflict.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req mutateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Data == nil {
		writeError(w, http.StatusBadRequest, "Missing data")
		return
	}
	if req.UpdatedAt.IsZero() {
		writeError(w, http.StatusBadRequest, "Missing updatedAt")
		return
	}

	buyer, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.Data, req.UpdatedAt, actorID)
	if err != nil {
		h.metrics.ObserveMutation("update", "error")
		if errors.Is(err, ErrConflict) {
			h.metrics.ObserveConflict()
		}
		h.writeDomainError(w, err)
		return
	}

	h.metrics.ObserveMutation("update", "ok")
	writeJSON(w, http.StatusOK, map[string]any{"buyer": buyer})
}

// Delete handles DELETE /buyers/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), actorID); err != nil {
		h.metrics.ObserveMutation("delete", "error")
		h.writeDomainError(w, err)
		return
	}

	h.metrics.ObserveMutation("delete", "ok")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Buyer deleted"})
}

// History handles GET /buyers/{id}/history requests.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	entries, err := h.svc.History(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.logger.Error("failed to read history", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if entries == nil {
		entries = []*HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// Import handles POST /buyers/import requests with a multipart "file"
// field holding the CSV payload.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	actorID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxImportBody); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid upload")
		return
	}

	inserted, err := h.svc.ImportCSV(r.Context(), payload, actorID)
	if err != nil {
		var importErr *ImportError
		var parseErr *ParseError
		switch {
		case errors.As(err, &importErr):
			h.metrics.ObserveImport("rejected", len(importErr.Rows))
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": importErr.Rows})
		case errors.As(err, &parseErr):
			h.metrics.ObserveImport("malformed", 0)
			writeError(w, http.StatusBadRequest, parseErr.Error())
		case errors.Is(err, ErrTooManyRows):
			h.metrics.ObserveImport("too_many_rows", 0)
			writeError(w, http.StatusBadRequest, "Max 200 rows allowed")
		default:
			h.logger.Error("import failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	h.metrics.ObserveImport("inserted", inserted)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "inserted": inserted})
}

type exportRequest struct {
	Filters struct {
		City         string `json:"city"`
		PropertyType string `json:"propertyType"`
		Status       string `json:"status"`
		Timeline     string `json:"timeline"`
		Search       string `json:"search"`
	} `json:"filters"`
	Sort string `json:"sort"`
}

// Export handles POST /buyers/export requests and streams the filtered
// record set as a CSV attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	csvBytes, err := h.svc.ExportCSV(r.Context(), ListFilter{
		City:         req.Filters.City,
		PropertyType: req.Filters.PropertyType,
		Status:       req.Filters.Status,
		Timeline:     req.Filters.Timeline,
		Search:       req.Filters.Search,
		Sort:         req.Sort,
	})
	if err != nil {
		h.logger.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="buyers.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(csvBytes)
}

// writeDomainError maps service errors onto stable status codes. Store
// failures surface as a generic message; the detail stays server-side.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.First())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Buyer not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "Record changed, please refresh")
	default:
		h.logger.Error("store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
