package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/events"
	"github.com/spec-kit/cityaid-service/internal/repository"
)

type fileServiceFixture struct {
	caseService *CaseService
	service     *FileService
	recorder    *eventRecorder
}

func newFileServiceFixture() *fileServiceFixture {
	cases := repository.NewMemoryCaseRepository()
	files := repository.NewMemoryFileRepository()
	sequences := repository.NewMemorySequenceRepository()
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	dispatcher.Subscribe(events.EventFileAttached, recorder.record)
	return &fileServiceFixture{
		caseService: NewCaseService(CaseDependencies{
			CaseRepo:   cases,
			Allocator:  NewAllocator(sequences),
			Dispatcher: dispatcher,
		}),
		service:  NewFileService(cases, files, dispatcher),
		recorder: recorder,
	}
}

func (f *fileServiceFixture) createCase(t *testing.T) *domain.Case {
	t.Helper()
	c, err := f.caseService.CreateCase(context.Background(), alphaPune, CaseCreateInput{
		City: "PUN", Team: "AL", Title: "Roof repair",
	})
	require.NoError(t, err)
	return c
}

func TestAttachFile(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches metadata inheriting the case scope", func(t *testing.T) {
		f := newFileServiceFixture()
		c := f.createCase(t)

		file, err := f.service.AttachFile(ctx, alphaPune, c.ID, FileAttachInput{
			Name:        "estimate.pdf",
			ExternalURL: "https://files.example/estimate.pdf",
			Sensitivity: "internal",
		})
		require.NoError(t, err)
		require.Equal(t, c.ID, file.CaseID)
		require.Equal(t, c.City, file.City)
		require.Equal(t, c.OwningTeam, file.OwningTeam)
		require.Equal(t, domain.SensitivityInternal, file.Sensitivity)

		attached := f.recorder.byType(events.EventFileAttached)
		require.Len(t, attached, 1)
		require.Equal(t, c.ID.String(), attached[0].CaseID)
	})

	t.Run("requires modify rights on the case", func(t *testing.T) {
		f := newFileServiceFixture()
		c := f.createCase(t)

		for _, caller := range []Caller{financePune, betaPune} {
			_, err := f.service.AttachFile(ctx, caller, c.ID, FileAttachInput{
				Name:        "estimate.pdf",
				ExternalURL: "https://files.example/estimate.pdf",
				Sensitivity: "public",
			})
			require.ErrorIs(t, err, domain.ErrPermissionDenied, "caller %s", caller.Team)
		}
	})

	t.Run("rejects unknown sensitivity and blank fields", func(t *testing.T) {
		f := newFileServiceFixture()
		c := f.createCase(t)

		var validationErr *domain.ValidationError
		_, err := f.service.AttachFile(ctx, alphaPune, c.ID, FileAttachInput{
			Name: "estimate.pdf", ExternalURL: "https://files.example/x", Sensitivity: "classified",
		})
		require.ErrorAs(t, err, &validationErr)

		_, err = f.service.AttachFile(ctx, alphaPune, c.ID, FileAttachInput{
			Name: "", ExternalURL: "https://files.example/x", Sensitivity: "public",
		})
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestListFiles(t *testing.T) {
	ctx := context.Background()
	f := newFileServiceFixture()
	c := f.createCase(t)

	for _, name := range []string{"estimate.pdf", "photo.jpg"} {
		_, err := f.service.AttachFile(ctx, alphaPune, c.ID, FileAttachInput{
			Name: name, ExternalURL: "https://files.example/" + name, Sensitivity: "public",
		})
		require.NoError(t, err)
	}

	files, err := f.service.ListFiles(ctx, financePune, c.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)

	_, err = f.service.ListFiles(ctx, financeDel, c.ID)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestUpdateFileMetadata(t *testing.T) {
	ctx := context.Background()
	f := newFileServiceFixture()
	c := f.createCase(t)

	file, err := f.service.AttachFile(ctx, alphaPune, c.ID, FileAttachInput{
		Name: "estimate.pdf", ExternalURL: "https://files.example/estimate.pdf", Sensitivity: "internal",
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateFileMetadata(ctx, alphaPune, file.ID, "estimate-final.pdf", "secret")
	require.NoError(t, err)
	require.Equal(t, "estimate-final.pdf", updated.Name)
	require.Equal(t, domain.SensitivitySecret, updated.Sensitivity)

	// Blank arguments keep the stored values.
	updated, err = f.service.UpdateFileMetadata(ctx, alphaPune, file.ID, "", "")
	require.NoError(t, err)
	require.Equal(t, "estimate-final.pdf", updated.Name)
	require.Equal(t, domain.SensitivitySecret, updated.Sensitivity)

	// Finance holds view rights only.
	_, err = f.service.UpdateFileMetadata(ctx, financePune, file.ID, "hijack.pdf", "")
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = f.service.UpdateFileMetadata(ctx, alphaPune, "missing", "", "")
	require.ErrorIs(t, err, domain.ErrFileNotFound)
}
