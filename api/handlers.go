/*
handlers.go - HTTP API handlers for the compensation engine

PURPOSE:
  Exposes the compensation ledger and request workflow via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Intervals:
    GET    /api/users/{id}/intervals   List work intervals (optional range)
    POST   /api/users/{id}/intervals   Record a work interval

  Balance:
    GET    /api/users/{id}/balance     Compensation balance with breakdown

  Requests:
    POST   /api/users/{id}/requests    Submit a usage request
    GET    /api/users/{id}/requests    List a user's requests
    GET    /api/requests/pending       List requests awaiting review
    POST   /api/requests/{id}/approve  Approve a pending request
    POST   /api/requests/{id}/reject   Reject a pending request
    POST   /api/requests/{id}/cancel   Withdraw a pending request
    PUT    /api/requests/{id}          Change date/hours of a pending request

REQUEST FLOW:
  1. Decode and validate the body (go-playground/validator tags)
  2. Call domain logic (RequestService / Ledger)
  3. Serialize response
  4. Map domain errors to HTTP statuses

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input, validation-tag failures
  - 404: Request or interval not found
  - 409: Acting on a non-pending request, duplicate usage day
  - 422: Usage request rejected by the ledger rules (body carries the
         structured rejection with its reason code)
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware. Identity and access control live in the
  surrounding deployment.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - comp/service.go: The lifecycle logic these handlers front
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffhub/comp-engine/comp"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc      *comp.RequestService
	store    comp.Store
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler around the request service and store.
func NewHandler(svc *comp.RequestService, store comp.Store, logger *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}
}

// =============================================================================
// INTERVAL HANDLERS
// =============================================================================

// ListIntervals returns a user's work intervals, optionally limited to a
// from/to range (YYYY-MM-DD query params).
func (h *Handler) ListIntervals(w http.ResponseWriter, r *http.Request) {
	userID := comp.UserID(chi.URLParam(r, "id"))

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	var intervals []comp.WorkInterval
	if period.IsZero() {
		intervals, err = h.store.IntervalsByUser(r.Context(), userID)
	} else {
		intervals, err = h.store.IntervalsInRange(r.Context(), userID, period)
	}
	if err != nil {
		h.logger.Error("list intervals failed", zap.String("user_id", string(userID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list intervals", err)
		return
	}

	writeJSON(w, http.StatusOK, toIntervalDTOs(intervals))
}

// CreateInterval records a clocked work period for a user.
func (h *Handler) CreateInterval(w http.ResponseWriter, r *http.Request) {
	userID := comp.UserID(chi.URLParam(r, "id"))

	var req CreateIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start time (use RFC3339)", err)
		return
	}

	var end *time.Time
	if req.End != nil {
		t, err := time.Parse(time.RFC3339, *req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end time (use RFC3339)", err)
			return
		}
		end = &t
	}

	now := time.Now()
	interval := comp.WorkInterval{
		ID:           comp.NewIntervalID(now),
		UserID:       userID,
		Start:        start,
		End:          end,
		BreakMinutes: req.BreakMinutes,
		Type:         comp.WorkRegular,
		Approved:     true,
		Note:         req.Note,
		CreatedAt:    now,
	}

	if err := h.store.SaveInterval(r.Context(), interval); err != nil {
		h.logger.Error("save interval failed", zap.String("user_id", string(userID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save interval", err)
		return
	}

	writeJSON(w, http.StatusCreated, toIntervalDTO(interval))
}

// =============================================================================
// BALANCE HANDLER
// =============================================================================

// GetBalance recomputes a user's balance from interval history, optionally
// limited to a from/to range.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := comp.UserID(chi.URLParam(r, "id"))

	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	balance, err := h.svc.BalanceFor(r.Context(), userID, period)
	if err != nil {
		h.logger.Error("balance computation failed", zap.String("user_id", string(userID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}

	writeJSON(w, http.StatusOK, toBalanceDTO(balance, time.Now()))
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// CreateRequest submits a usage request for a user.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID := comp.UserID(chi.URLParam(r, "id"))

	var req CreateUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.svc.CreateRequest(r.Context(), comp.CreateUsage{
		UserID: userID,
		Date:   date,
		Hours:  comp.Hours(req.Hours),
		Reason: req.Reason,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create request", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

// ListRequests returns a user's requests, newest first.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := comp.UserID(chi.URLParam(r, "id"))

	reqs, err := h.store.RequestsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list requests failed", zap.String("user_id", string(userID)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ListPendingRequests returns all requests awaiting review, oldest first.
func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.store.PendingRequests(r.Context())
	if err != nil {
		h.logger.Error("list pending requests failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

// ApproveRequest approves a pending request.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := comp.RequestID(chi.URLParam(r, "id"))

	var review ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(review); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	req, err := h.svc.Approve(r.Context(), comp.ApproveAction{
		RequestID:  id,
		ReviewerID: review.ReviewerID,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to approve request", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// RejectRequest rejects a pending request.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id := comp.RequestID(chi.URLParam(r, "id"))

	var review ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(review); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	req, err := h.svc.Reject(r.Context(), comp.RejectAction{
		RequestID:  id,
		ReviewerID: review.ReviewerID,
		Note:       review.Note,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to reject request", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// CancelRequest withdraws a pending request.
func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id := comp.RequestID(chi.URLParam(r, "id"))

	req, err := h.svc.Cancel(r.Context(), comp.CancelAction{RequestID: id})
	if err != nil {
		h.writeServiceError(w, "Failed to cancel request", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// UpdateRequest changes the date and/or hours of a pending request.
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id := comp.RequestID(chi.URLParam(r, "id"))

	var body UpdateUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	action := comp.UpdateAction{RequestID: id}
	if body.Date != nil {
		date, err := time.Parse("2006-01-02", *body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		action.NewDate = &date
	}
	if body.Hours != nil {
		hours := comp.Hours(*body.Hours)
		action.NewHours = &hours
	}

	req, err := h.svc.Update(r.Context(), action)
	if err != nil {
		h.writeServiceError(w, "Failed to update request", err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeServiceError maps domain errors to HTTP statuses. Ledger rejections
// come back as 422 with the structured reason so clients can show it.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	var rejected *comp.RequestRejectedError
	if errors.As(err, &rejected) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   rejected.Decision.Message,
			Code:    string(rejected.Decision.Code),
			Details: toRejectionDTO(rejected.Decision),
		})
		return
	}

	switch {
	case comp.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case comp.IsClientError(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// parsePeriod reads optional from/to query params (YYYY-MM-DD).
// Both absent means full history; a bare "from" runs to the end of time
// being queried, so "to" defaults to far future and "from" to the epoch.
func parsePeriod(r *http.Request) (comp.Period, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		return comp.Period{}, nil
	}

	var p comp.Period
	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, time.UTC)
		if err != nil {
			return comp.Period{}, err
		}
		p.Start = t
	}
	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, time.UTC)
		if err != nil {
			return comp.Period{}, err
		}
		// Inclusive day: extend to the end of the "to" date.
		p.End = t.Add(24*time.Hour - time.Nanosecond)
	} else {
		p.End = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return p, nil
}
