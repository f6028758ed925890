package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/events"
	"github.com/spec-kit/cityaid-service/internal/repository"
)

// FileAttachInput describes attached-file metadata from the wire.
type FileAttachInput struct {
	Name        string
	ExternalURL string
	Sensitivity string
}

// FileService manages attached-file metadata. Files inherit the owning
// case's city and team so access checks never load the parent case.
type FileService struct {
	cases      repository.CaseRepository
	files      repository.FileRepository
	dispatcher events.Dispatcher
}

// NewFileService constructs the service.
func NewFileService(cases repository.CaseRepository, files repository.FileRepository, dispatcher events.Dispatcher) *FileService {
	return &FileService{cases: cases, files: files, dispatcher: dispatcher}
}

// AttachFile records file metadata on a case. Attachment requires modify
// rights on the case and does not change the case state.
func (s *FileService) AttachFile(ctx context.Context, caller Caller, caseID domain.CaseID, input FileAttachInput) (*domain.File, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.CanBeModifiedBy(caller.City, caller.Team) {
		return nil, domain.ErrPermissionDenied
	}
	sensitivity, err := domain.ParseSensitivity(input.Sensitivity)
	if err != nil {
		return nil, err
	}

	file, err := domain.NewFile(c.ID, input.Name, input.ExternalURL, c.City, c.OwningTeam, sensitivity, caller.UserID)
	if err != nil {
		return nil, err
	}
	if err := c.AttachFile(file, caller.UserID); err != nil {
		return nil, err
	}

	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}
	if err := s.cases.UpdateMetadata(ctx, c); err != nil {
		return nil, err
	}

	s.publishAttached(ctx, caller, file)
	return file, nil
}

// ListFiles returns the files attached to a case visible to the caller.
func (s *FileService) ListFiles(ctx context.Context, caller Caller, caseID domain.CaseID) ([]domain.File, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.CanBeViewedBy(caller.City, caller.Team) {
		return nil, domain.ErrPermissionDenied
	}
	files, err := s.files.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	visible := make([]domain.File, 0, len(files))
	for _, f := range files {
		if f.CanBeAccessedBy(caller.City, caller.Team) {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

// UpdateFileMetadata renames a file and/or changes its sensitivity level.
func (s *FileService) UpdateFileMetadata(ctx context.Context, caller Caller, fileID, name, sensitivity string) (*domain.File, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !domain.CanModify(file.City, file.OwningTeam, caller.City, caller.Team) {
		return nil, domain.ErrPermissionDenied
	}

	var level *domain.SensitivityLevel
	if sensitivity != "" {
		parsed, err := domain.ParseSensitivity(sensitivity)
		if err != nil {
			return nil, err
		}
		level = &parsed
	}

	file.UpdateMetadata(name, level, caller.UserID)
	if err := s.files.UpdateMetadata(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *FileService) publishAttached(ctx context.Context, caller Caller, file *domain.File) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventFileAttached,
		CaseID:    file.CaseID.String(),
		Actor:     callerActor(caller),
		Timestamp: time.Now().UTC(),
		Payload: events.FileAttachedPayload{
			FileID:      file.ID,
			Name:        file.Name,
			Sensitivity: file.Sensitivity,
		},
	})
}
