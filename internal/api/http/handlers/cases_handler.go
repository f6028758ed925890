package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cityaid-service/internal/api/dto"
	"github.com/spec-kit/cityaid-service/internal/auth"
	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/service"
	apperrors "github.com/spec-kit/cityaid-service/pkg/util"
)

// CasesHandler manages case endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs the handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.service.CreateCase(c.Context(), caller, service.CaseCreateInput{
		City:        req.City,
		Team:        req.Team,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		WorkNotes:   req.WorkNotes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": caseResponse(created, true)})
}

// ListCases GET /cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	filter := service.CaseListFilter{
		City:     c.Query("city"),
		Team:     c.Query("team"),
		State:    c.Query("state"),
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 50),
	}

	page, err := h.service.ListCases(c.Context(), caller, filter)
	if err != nil {
		return err
	}
	items := make([]dto.CaseResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, caseResponse(&page.Items[i], false))
	}
	return c.JSON(fiber.Map{"data": dto.PagedCasesResponse{
		Items:    items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}})
}

// GetCase GET /cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	id, err := domain.ParseCaseID(c.Params("id"))
	if err != nil {
		return err
	}
	loaded, err := h.service.GetCase(c.Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(loaded, true)})
}

// UpdateCase PATCH /cases/:id.
func (h *CasesHandler) UpdateCase(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	id, err := domain.ParseCaseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.UpdateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.service.UpdateCase(c.Context(), caller, id, service.CaseUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		WorkNotes:   req.WorkNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(updated, true)})
}

// SubmitCase POST /cases/:id/submit.
func (h *CasesHandler) SubmitCase(c *fiber.Ctx) error {
	return h.transition(c, func(caller service.Caller, id domain.CaseID) (*domain.Case, error) {
		return h.service.SubmitCase(c.Context(), caller, id)
	})
}

// ApproveCase POST /cases/:id/approve.
func (h *CasesHandler) ApproveCase(c *fiber.Ctx) error {
	return h.transition(c, func(caller service.Caller, id domain.CaseID) (*domain.Case, error) {
		return h.service.ApproveCase(c.Context(), caller, id)
	})
}

// RejectCase POST /cases/:id/reject.
func (h *CasesHandler) RejectCase(c *fiber.Ctx) error {
	var req dto.RejectCaseRequest
	// Body is optional for rejections.
	_ = c.BodyParser(&req)
	return h.transition(c, func(caller service.Caller, id domain.CaseID) (*domain.Case, error) {
		return h.service.RejectCase(c.Context(), caller, id, req.Reason)
	})
}

// RetriggerCase POST /cases/:id/retrigger.
func (h *CasesHandler) RetriggerCase(c *fiber.Ctx) error {
	return h.transition(c, func(caller service.Caller, id domain.CaseID) (*domain.Case, error) {
		return h.service.RetriggerCase(c.Context(), caller, id)
	})
}

func (h *CasesHandler) transition(c *fiber.Ctx, op func(service.Caller, domain.CaseID) (*domain.Case, error)) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	id, err := domain.ParseCaseID(c.Params("id"))
	if err != nil {
		return err
	}
	updated, err := op(caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseResponse(updated, true)})
}

func callerFromContext(c *fiber.Ctx) (service.Caller, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Caller{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Caller{
		UserID: principal.UserID,
		City:   principal.City,
		Team:   principal.Team,
	}, nil
}

func caseResponse(c *domain.Case, detailed bool) dto.CaseResponse {
	resp := dto.CaseResponse{
		ID:          c.ID.String(),
		City:        string(c.City),
		Team:        c.OwningTeam.Code(),
		State:       c.State,
		Title:       c.Title,
		Description: c.Description,
		Budget:      c.Budget,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		WorkNotes:   c.WorkNotes,
		CreatedAt:   c.Audit.CreatedAt,
		UpdatedAt:   c.Audit.UpdatedAt,
		CreatedBy:   c.Audit.CreatedBy,
		UpdatedBy:   c.Audit.UpdatedBy,
	}
	if !detailed {
		return resp
	}
	for _, entry := range c.History {
		resp.History = append(resp.History, dto.ApprovalHistoryResponse{
			ID:        entry.ID,
			FromState: entry.FromState,
			ToState:   entry.ToState,
			Actor:     entry.Actor,
			Comment:   entry.Comment,
			CreatedAt: entry.CreatedAt,
		})
	}
	for _, f := range c.Files {
		resp.Files = append(resp.Files, fileResponse(f))
	}
	return resp
}

func parseInt(val string, fallback int) int {
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
