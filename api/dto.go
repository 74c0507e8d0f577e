/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Intervals:
    IntervalDTO, CreateIntervalRequest

  Balance:
    BalanceDTO, BreakdownDTO, CategoryDTO, WarningDTO

  Requests:
    RequestDTO, CreateUsageRequest, ReviewRequest, UpdateUsageRequest,
    RejectionDTO

VALIDATION:
  Request bodies carry go-playground/validator struct tags; handlers run
  them through Handler.validate before touching the domain.

SEE ALSO:
  - handlers.go: Uses these types
  - comp/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/staffhub/comp-engine/comp"
)

// =============================================================================
// INTERVAL TYPES
// =============================================================================

// IntervalDTO represents a work interval in API responses.
type IntervalDTO struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Start        string  `json:"start"`
	End          *string `json:"end,omitempty"`
	BreakMinutes int     `json:"break_minutes"`
	Type         string  `json:"type"`
	Approved     bool    `json:"approved"`
	Note         string  `json:"note,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

// CreateIntervalRequest is the request to record a work interval.
type CreateIntervalRequest struct {
	Start        string  `json:"start" validate:"required"`
	End          *string `json:"end,omitempty"`
	BreakMinutes int     `json:"break_minutes" validate:"gte=0"`
	Note         string  `json:"note,omitempty"`
}

// =============================================================================
// BALANCE TYPES
// =============================================================================

// BalanceDTO represents a user's compensation balance.
type BalanceDTO struct {
	UserID    string       `json:"user_id"`
	Accrued   float64      `json:"accrued"`
	Used      float64      `json:"used"`
	Pending   float64      `json:"pending"`
	Current   float64      `json:"current"`
	Breakdown BreakdownDTO `json:"breakdown"`
	Warnings  []WarningDTO `json:"warnings,omitempty"`
	AsOf      string       `json:"as_of"`
}

// BreakdownDTO shows per-category premium contributions.
type BreakdownDTO struct {
	Weekend      CategoryDTO `json:"weekend"`
	Evening      CategoryDTO `json:"evening"`
	Night        CategoryDTO `json:"night"`
	Overtime     CategoryDTO `json:"overtime"`
	TotalPremium float64     `json:"total_premium"`
}

// CategoryDTO is one premium category's qualifying hours and earned premium.
type CategoryDTO struct {
	Hours   float64 `json:"hours"`
	Premium float64 `json:"premium"`
}

// WarningDTO surfaces a data-quality issue found in the interval log.
type WarningDTO struct {
	IntervalID string `json:"interval_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// =============================================================================
// REQUEST WORKFLOW TYPES
// =============================================================================

// RequestDTO represents a compensation request in API responses.
type RequestDTO struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
	ReviewedBy *string `json:"reviewed_by,omitempty"`
	ReviewedAt *string `json:"reviewed_at,omitempty"`
	ReviewNote *string `json:"review_note,omitempty"`
	IntervalID string  `json:"interval_id"`
	CreatedAt  string  `json:"created_at,omitempty"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// CreateUsageRequest asks to spend compensation hours on a day.
type CreateUsageRequest struct {
	Date   string  `json:"date" validate:"required"`
	Hours  float64 `json:"hours" validate:"required,gt=0"`
	Reason string  `json:"reason,omitempty" validate:"max=500"`
}

// ReviewRequest approves or rejects a pending request.
type ReviewRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
	Note       string `json:"note,omitempty" validate:"max=500"`
}

// UpdateUsageRequest changes a pending request. Omitted fields keep the
// current value.
type UpdateUsageRequest struct {
	Date  *string  `json:"date,omitempty"`
	Hours *float64 `json:"hours,omitempty" validate:"omitempty,gt=0"`
}

// RejectionDTO carries the structured outcome of a failed validation.
type RejectionDTO struct {
	Code             string  `json:"code"`
	Message          string  `json:"message"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toIntervalDTO(iv comp.WorkInterval) IntervalDTO {
	dto := IntervalDTO{
		ID:           string(iv.ID),
		UserID:       string(iv.UserID),
		Start:        iv.Start.UTC().Format(time.RFC3339),
		BreakMinutes: iv.BreakMinutes,
		Type:         string(iv.Type),
		Approved:     iv.Approved,
		Note:         iv.Note,
	}
	if iv.End != nil {
		end := iv.End.UTC().Format(time.RFC3339)
		dto.End = &end
	}
	if !iv.CreatedAt.IsZero() {
		dto.CreatedAt = iv.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toIntervalDTOs(ivs []comp.WorkInterval) []IntervalDTO {
	dtos := make([]IntervalDTO, len(ivs))
	for i, iv := range ivs {
		dtos[i] = toIntervalDTO(iv)
	}
	return dtos
}

func toBalanceDTO(b comp.Balance, asOf time.Time) BalanceDTO {
	dto := BalanceDTO{
		UserID:  string(b.UserID),
		Accrued: b.TotalAccrued.Float64(),
		Used:    b.TotalUsed.Float64(),
		Pending: b.Pending.Float64(),
		Current: b.Current().Float64(),
		Breakdown: BreakdownDTO{
			Weekend:      toCategoryDTO(b.Breakdown.Weekend),
			Evening:      toCategoryDTO(b.Breakdown.Evening),
			Night:        toCategoryDTO(b.Breakdown.Night),
			Overtime:     toCategoryDTO(b.Breakdown.Overtime),
			TotalPremium: b.Breakdown.TotalPremium().Float64(),
		},
		AsOf: asOf.UTC().Format(time.RFC3339),
	}
	for _, issue := range b.Issues {
		dto.Warnings = append(dto.Warnings, WarningDTO{
			IntervalID: string(issue.IntervalID),
			Code:       string(issue.Code),
			Message:    issue.Message,
		})
	}
	return dto
}

func toCategoryDTO(c comp.CategoryTotal) CategoryDTO {
	return CategoryDTO{Hours: c.Hours.Float64(), Premium: c.Premium.Float64()}
}

func toRequestDTO(req comp.CompRequest) RequestDTO {
	dto := RequestDTO{
		ID:         string(req.ID),
		UserID:     string(req.UserID),
		Date:       req.Date.UTC().Format("2006-01-02"),
		Hours:      req.Hours.Float64(),
		Status:     string(req.Status),
		Reason:     req.Reason,
		ReviewedBy: req.ReviewedBy,
		ReviewNote: req.ReviewNote,
		IntervalID: string(req.IntervalID),
	}
	if req.ReviewedAt != nil {
		at := req.ReviewedAt.UTC().Format(time.RFC3339)
		dto.ReviewedAt = &at
	}
	if !req.CreatedAt.IsZero() {
		dto.CreatedAt = req.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !req.UpdatedAt.IsZero() {
		dto.UpdatedAt = req.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toRequestDTOs(reqs []comp.CompRequest) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toRequestDTO(req)
	}
	return dtos
}

func toRejectionDTO(d comp.Decision) RejectionDTO {
	return RejectionDTO{
		Code:             string(d.Code),
		Message:          d.Message,
		RemainingBalance: d.RemainingBalance.Float64(),
	}
}
