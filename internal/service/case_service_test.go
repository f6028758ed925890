package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/events"
	"github.com/spec-kit/cityaid-service/internal/repository"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) byType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []events.Event
	for _, e := range r.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type caseServiceFixture struct {
	service   *CaseService
	cases     *repository.MemoryCaseRepository
	sequences *repository.MemorySequenceRepository
	recorder  *eventRecorder
}

func newCaseServiceFixture() *caseServiceFixture {
	cases := repository.NewMemoryCaseRepository()
	sequences := repository.NewMemorySequenceRepository()
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, eventType := range []events.EventType{events.EventCaseCreated, events.EventCaseStateChanged, events.EventFileAttached} {
		dispatcher.Subscribe(eventType, recorder.record)
	}
	return &caseServiceFixture{
		service: NewCaseService(CaseDependencies{
			CaseRepo:   cases,
			Allocator:  NewAllocator(sequences),
			Dispatcher: dispatcher,
		}),
		cases:     cases,
		sequences: sequences,
		recorder:  recorder,
	}
}

var (
	alphaPune   = Caller{UserID: "alice", City: domain.CityPune, Team: domain.TeamAlpha}
	betaPune    = Caller{UserID: "ben", City: domain.CityPune, Team: domain.TeamBeta}
	financePune = Caller{UserID: "fiona", City: domain.CityPune, Team: domain.TeamFinance}
	financeDel  = Caller{UserID: "farid", City: domain.CityDelhi, Team: domain.TeamFinance}
	pmo         = Caller{UserID: "paul", City: domain.CityMumbai, Team: domain.TeamPMO}
)

func createRoofRepair(t *testing.T, f *caseServiceFixture) *domain.Case {
	t.Helper()
	c, err := f.service.CreateCase(context.Background(), alphaPune, CaseCreateInput{
		City:        "PUN",
		Team:        "AL",
		Title:       "Roof repair",
		Description: "Leaking community hall roof",
	})
	require.NoError(t, err)
	return c
}

func TestCreateCase(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates sequential identifiers per partition", func(t *testing.T) {
		f := newCaseServiceFixture()
		year := time.Now().UTC().Year()

		first := createRoofRepair(t, f)
		require.Equal(t, fmt.Sprintf("CS-%d-PUN-AL-001", year), first.ID.String())
		require.Equal(t, domain.StateInitiated, first.State)
		require.Len(t, first.History, 1)

		second := createRoofRepair(t, f)
		require.Equal(t, fmt.Sprintf("CS-%d-PUN-AL-002", year), second.ID.String())

		beta, err := f.service.CreateCase(ctx, betaPune, CaseCreateInput{
			City: "PUN", Team: "BE", Title: "Street lights",
		})
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("CS-%d-PUN-BE-001", year), beta.ID.String())

		created := f.recorder.byType(events.EventCaseCreated)
		require.Len(t, created, 3)
		require.Equal(t, first.ID.String(), created[0].CaseID)
		require.Equal(t, "alice", created[0].Actor.UserID)
	})

	t.Run("non-owning teams cannot create", func(t *testing.T) {
		f := newCaseServiceFixture()
		for _, caller := range []Caller{financePune, pmo} {
			_, err := f.service.CreateCase(ctx, caller, CaseCreateInput{
				City: string(caller.City), Team: "AL", Title: "Roof repair",
			})
			require.ErrorIs(t, err, domain.ErrPermissionDenied, "caller %s", caller.Team)
		}
	})

	t.Run("creation is limited to the caller's own city and team", func(t *testing.T) {
		f := newCaseServiceFixture()
		_, err := f.service.CreateCase(ctx, alphaPune, CaseCreateInput{
			City: "DEL", Team: "AL", Title: "Roof repair",
		})
		require.ErrorIs(t, err, domain.ErrPermissionDenied)

		_, err = f.service.CreateCase(ctx, alphaPune, CaseCreateInput{
			City: "PUN", Team: "BE", Title: "Roof repair",
		})
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("validates metadata bounds", func(t *testing.T) {
		f := newCaseServiceFixture()

		_, err := f.service.CreateCase(ctx, alphaPune, CaseCreateInput{
			City: "PUN", Team: "AL", Title: "  ",
		})
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)

		negative := decimal.NewFromInt(-5)
		_, err = f.service.CreateCase(ctx, alphaPune, CaseCreateInput{
			City: "PUN", Team: "AL", Title: "Roof repair", Budget: &negative,
		})
		require.ErrorAs(t, err, &validationErr)

		start := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, -1, 0)
		_, err = f.service.CreateCase(ctx, alphaPune, CaseCreateInput{
			City: "PUN", Team: "AL", Title: "Roof repair", StartDate: &start, EndDate: &end,
		})
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("partition exhaustion surfaces as allocation exhausted", func(t *testing.T) {
		f := newCaseServiceFixture()
		f.sequences.Seed(time.Now().UTC().Year(), domain.CityPune, domain.TeamAlpha, domain.MaxCaseSequence)

		_, err := f.service.CreateCase(ctx, alphaPune, CaseCreateInput{
			City: "PUN", Team: "AL", Title: "Roof repair",
		})
		require.ErrorIs(t, err, domain.ErrAllocationExhausted)

		// The Beta partition is unaffected.
		_, err = f.service.CreateCase(ctx, betaPune, CaseCreateInput{
			City: "PUN", Team: "BE", Title: "Street lights",
		})
		require.NoError(t, err)
	})
}

func TestCasePipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("full approval pipeline", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)

		c, err := f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatePendingAnalysis, c.State)

		c, err = f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatePendingFinance, c.State)

		c, err = f.service.ApproveCase(ctx, financePune, c.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatePendingPMO, c.State)

		c, err = f.service.ApproveCase(ctx, pmo, c.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StateApproved, c.State)

		stored, err := f.service.GetCase(ctx, pmo, c.ID)
		require.NoError(t, err)
		require.Len(t, stored.History, 5)

		changes := f.recorder.byType(events.EventCaseStateChanged)
		require.Len(t, changes, 4)
	})

	t.Run("reject and retrigger", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)

		_, err := f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)
		_, err = f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)

		rejected, err := f.service.RejectCase(ctx, financePune, c.ID, "Budget missing")
		require.NoError(t, err)
		require.Equal(t, domain.StateRejected, rejected.State)
		require.Equal(t, "Budget missing", rejected.LatestHistory().Comment)

		// Only PMO escapes the terminal state.
		_, err = f.service.RetriggerCase(ctx, financePune, c.ID)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)

		retriggered, err := f.service.RetriggerCase(ctx, pmo, c.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatePendingFinance, retriggered.State)
	})

	t.Run("finance approves only in its own city", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)
		_, err := f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)
		_, err = f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)

		_, err = f.service.ApproveCase(ctx, financeDel, c.ID)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)

		_, err = f.service.ApproveCase(ctx, financePune, c.ID)
		require.NoError(t, err)
	})

	t.Run("owning teams cannot approve", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)
		_, err := f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)
		_, err = f.service.SubmitCase(ctx, alphaPune, c.ID)
		require.NoError(t, err)

		_, err = f.service.ApproveCase(ctx, alphaPune, c.ID)
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("illegal transitions are refused", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)

		// Approving an Initiated case is out of order for either approver.
		_, err := f.service.ApproveCase(ctx, financePune, c.ID)
		var illegal *domain.IllegalTransitionError
		require.ErrorAs(t, err, &illegal)

		_, err = f.service.RetriggerCase(ctx, pmo, c.ID)
		require.ErrorAs(t, err, &illegal)
	})

	t.Run("unknown case id", func(t *testing.T) {
		f := newCaseServiceFixture()
		id, err := domain.NewCaseID(2026, domain.CityPune, domain.TeamAlpha, 777)
		require.NoError(t, err)
		_, err = f.service.SubmitCase(ctx, alphaPune, id)
		require.ErrorIs(t, err, domain.ErrCaseNotFound)
	})
}

func TestGetCaseVisibility(t *testing.T) {
	ctx := context.Background()
	f := newCaseServiceFixture()
	c := createRoofRepair(t, f)

	for _, caller := range []Caller{alphaPune, financePune, pmo} {
		_, err := f.service.GetCase(ctx, caller, c.ID)
		require.NoError(t, err, "caller %s", caller.Team)
	}
	for _, caller := range []Caller{betaPune, financeDel} {
		_, err := f.service.GetCase(ctx, caller, c.ID)
		require.ErrorIs(t, err, domain.ErrPermissionDenied, "caller %s", caller.Team)
	}
}

func TestListCasesScoping(t *testing.T) {
	ctx := context.Background()
	f := newCaseServiceFixture()

	createRoofRepair(t, f)
	createRoofRepair(t, f)
	_, err := f.service.CreateCase(ctx, betaPune, CaseCreateInput{
		City: "PUN", Team: "BE", Title: "Street lights",
	})
	require.NoError(t, err)
	alphaDel := Caller{UserID: "dev", City: domain.CityDelhi, Team: domain.TeamAlpha}
	_, err = f.service.CreateCase(ctx, alphaDel, CaseCreateInput{
		City: "DEL", Team: "AL", Title: "Drain cleanup",
	})
	require.NoError(t, err)

	t.Run("PMO sees everything", func(t *testing.T) {
		page, err := f.service.ListCases(ctx, pmo, CaseListFilter{})
		require.NoError(t, err)
		require.Equal(t, 4, page.Total)
	})

	t.Run("Finance is clamped to its own city across teams", func(t *testing.T) {
		page, err := f.service.ListCases(ctx, financePune, CaseListFilter{})
		require.NoError(t, err)
		require.Equal(t, 3, page.Total)
	})

	t.Run("owning team is clamped to its own city and team", func(t *testing.T) {
		page, err := f.service.ListCases(ctx, alphaPune, CaseListFilter{City: "DEL"})
		require.NoError(t, err)
		require.Equal(t, 2, page.Total)
		for _, c := range page.Items {
			require.Equal(t, domain.CityPune, c.City)
			require.Equal(t, domain.TeamAlpha, c.OwningTeam)
		}
	})

	t.Run("state filter and paging", func(t *testing.T) {
		page, err := f.service.ListCases(ctx, pmo, CaseListFilter{State: "initiated", PageSize: 2})
		require.NoError(t, err)
		require.Equal(t, 4, page.Total)
		require.Len(t, page.Items, 2)
		require.Equal(t, 1, page.Page)

		page, err = f.service.ListCases(ctx, pmo, CaseListFilter{State: "initiated", Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)

		_, err = f.service.ListCases(ctx, pmo, CaseListFilter{State: "bogus"})
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestUpdateCase(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces metadata wholesale", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)

		budget := decimal.NewFromInt(125000)
		updated, err := f.service.UpdateCase(ctx, alphaPune, c.ID, CaseUpdateInput{
			Title:       "Roof repair phase 2",
			Description: "Full replacement",
			Budget:      &budget,
			WorkNotes:   "contractor booked",
		})
		require.NoError(t, err)
		require.True(t, updated.Budget.Equal(budget))

		// Omitting fields on the next update clears them.
		updated, err = f.service.UpdateCase(ctx, alphaPune, c.ID, CaseUpdateInput{})
		require.NoError(t, err)
		require.Equal(t, "Roof repair phase 2", updated.Title)
		require.Nil(t, updated.Budget)
		require.Empty(t, updated.WorkNotes)
	})

	t.Run("finance cannot modify despite viewing rights", func(t *testing.T) {
		f := newCaseServiceFixture()
		c := createRoofRepair(t, f)

		_, err := f.service.GetCase(ctx, financePune, c.ID)
		require.NoError(t, err)

		_, err = f.service.UpdateCase(ctx, financePune, c.ID, CaseUpdateInput{Title: "hijack"})
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}
