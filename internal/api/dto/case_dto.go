package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/cityaid-service/internal/domain"
)

// CreateCaseRequest payload. Team carries the 2-letter owning-team code.
type CreateCaseRequest struct {
	City        string           `json:"city"`
	Team        string           `json:"team"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	WorkNotes   string           `json:"work_notes"`
}

// UpdateCaseRequest payload. Replacement semantics: omitted fields clear the
// stored value (except title, where blank keeps the current one).
type UpdateCaseRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	WorkNotes   string           `json:"work_notes"`
}

// RejectCaseRequest payload.
type RejectCaseRequest struct {
	Reason string `json:"reason"`
}

// CaseResponse represents a case on the wire.
type CaseResponse struct {
	ID          string                    `json:"id"`
	City        string                    `json:"city"`
	Team        string                    `json:"team"`
	State       domain.CaseState          `json:"state"`
	Title       string                    `json:"title"`
	Description string                    `json:"description,omitempty"`
	Budget      *decimal.Decimal          `json:"budget,omitempty"`
	StartDate   *time.Time                `json:"start_date,omitempty"`
	EndDate     *time.Time                `json:"end_date,omitempty"`
	WorkNotes   string                    `json:"work_notes,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
	CreatedBy   string                    `json:"created_by"`
	UpdatedBy   string                    `json:"updated_by"`
	History     []ApprovalHistoryResponse `json:"history,omitempty"`
	Files       []FileResponse            `json:"files,omitempty"`
}

// ApprovalHistoryResponse is one ledger row on the wire.
type ApprovalHistoryResponse struct {
	ID        string           `json:"id"`
	FromState domain.CaseState `json:"from_state"`
	ToState   domain.CaseState `json:"to_state"`
	Actor     string           `json:"actor"`
	Comment   string           `json:"comment,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// PagedCasesResponse wraps a filtered listing.
type PagedCasesResponse struct {
	Items    []CaseResponse `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
