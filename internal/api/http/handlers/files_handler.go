package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cityaid-service/internal/api/dto"
	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/service"
	apperrors "github.com/spec-kit/cityaid-service/pkg/util"
)

// FilesHandler manages attached-file endpoints.
type FilesHandler struct {
	service *service.FileService
}

// NewFilesHandler constructs the handler.
func NewFilesHandler(fileService *service.FileService) *FilesHandler {
	return &FilesHandler{service: fileService}
}

// AttachFile POST /cases/:id/files.
func (h *FilesHandler) AttachFile(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	id, err := domain.ParseCaseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.AttachFileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	file, err := h.service.AttachFile(c.Context(), caller, id, service.FileAttachInput{
		Name:        req.Name,
		ExternalURL: req.ExternalURL,
		Sensitivity: req.Sensitivity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fileResponse(file)})
}

// ListFiles GET /cases/:id/files.
func (h *FilesHandler) ListFiles(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	id, err := domain.ParseCaseID(c.Params("id"))
	if err != nil {
		return err
	}
	files, err := h.service.ListFiles(c.Context(), caller, id)
	if err != nil {
		return err
	}
	items := make([]dto.FileResponse, 0, len(files))
	for i := range files {
		items = append(items, fileResponse(&files[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateFile PATCH /files/:fileID.
func (h *FilesHandler) UpdateFile(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateFileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	file, err := h.service.UpdateFileMetadata(c.Context(), caller, c.Params("fileID"), req.Name, req.Sensitivity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fileResponse(file)})
}

func fileResponse(f *domain.File) dto.FileResponse {
	return dto.FileResponse{
		ID:          f.ID,
		CaseID:      f.CaseID.String(),
		Name:        f.Name,
		ExternalURL: f.ExternalURL,
		City:        string(f.City),
		Team:        f.OwningTeam.Code(),
		Sensitivity: string(f.Sensitivity),
		CreatedAt:   f.Audit.CreatedAt,
		CreatedBy:   f.Audit.CreatedBy,
	}
}
