package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/cityaid-service/internal/domain"
	"github.com/spec-kit/cityaid-service/internal/events"
	"github.com/spec-kit/cityaid-service/internal/repository"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000

	// Bound on identifier-allocation retries when a concurrent creator wins
	// the same sequence number.
	maxAllocationAttempts = 3
)

// Caller identifies the authenticated principal invoking an operation.
type Caller struct {
	UserID string
	City   domain.CityCode
	Team   domain.TeamType
}

// CaseCreateInput describes case creation parameters. Team carries the
// 2-letter owning-team code from the wire.
type CaseCreateInput struct {
	City        string
	Team        string
	Title       string
	Description string
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	WorkNotes   string
}

// CaseUpdateInput carries the full replacement metadata for a case. Every
// field except a blank title overwrites the stored value.
type CaseUpdateInput struct {
	Title       string
	Description string
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	WorkNotes   string
}

// CaseListFilter narrows case listings. Filters tighter than the caller's
// visibility scope apply; looser ones are clamped.
type CaseListFilter struct {
	City     string
	Team     string
	State    string
	Page     int
	PageSize int
}

// CasePage is one page of a filtered listing.
type CasePage struct {
	Items    []domain.Case
	Total    int
	Page     int
	PageSize int
}

// CaseService coordinates the case lifecycle: creation with collision-safe
// identifier allocation, guarded transitions, and scoped reads.
type CaseService struct {
	cases      repository.CaseRepository
	allocator  *Allocator
	dispatcher events.Dispatcher
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	CaseRepo   repository.CaseRepository
	Allocator  *Allocator
	Dispatcher events.Dispatcher
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	return &CaseService{
		cases:      deps.CaseRepo,
		allocator:  deps.Allocator,
		dispatcher: deps.Dispatcher,
	}
}

// CreateCase allocates an identifier and persists a new Initiated case.
// Only Alpha/Beta callers may create, and only for their own city and team.
func (s *CaseService) CreateCase(ctx context.Context, caller Caller, input CaseCreateInput) (*domain.Case, error) {
	if !domain.CanCreate(caller.Team) {
		return nil, fmt.Errorf("%w: only Alpha and Beta teams can create cases", domain.ErrPermissionDenied)
	}
	city, err := domain.NewCityCode(input.City)
	if err != nil {
		return nil, err
	}
	team, ok := domain.TeamFromCode(input.Team)
	if !ok || !team.IsOwning() {
		return nil, &domain.ValidationError{Field: "team", Reason: "team must be either 'AL' or 'BE'"}
	}
	if caller.City != city || caller.Team != team {
		return nil, fmt.Errorf("%w: cases can only be created for the caller's own city and team", domain.ErrPermissionDenied)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "title is required"}
	}
	if err := validateMetadata(input.Title, input.Description, input.Budget, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	year := time.Now().UTC().Year()
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		seq, err := s.allocator.NextSequence(ctx, year, city, team)
		if err != nil {
			return nil, err
		}
		id, err := domain.NewCaseID(year, city, team, seq)
		if err != nil {
			return nil, err
		}
		c, err := domain.NewCase(id, city, team, input.Title, input.Description, caller.UserID)
		if err != nil {
			return nil, err
		}
		if input.Budget != nil || input.StartDate != nil || input.EndDate != nil || input.WorkNotes != "" {
			c.UpdateMetadata("", input.Description, input.Budget, input.StartDate, input.EndDate, input.WorkNotes, caller.UserID)
		}

		err = s.cases.Create(ctx, c)
		if errors.Is(err, repository.ErrDuplicateCaseID) {
			// Another creator committed this identifier first; allocate again.
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, events.Event{
			Type:   events.EventCaseCreated,
			CaseID: c.ID.String(),
			Actor:  callerActor(caller),
			Payload: events.CaseCreatedPayload{
				City:  c.City,
				Team:  c.OwningTeam,
				Title: c.Title,
			},
		})
		return c, nil
	}
	return nil, fmt.Errorf("%w: case identifier allocation retries exhausted", domain.ErrConcurrentModification)
}

// GetCase loads a case visible to the caller.
func (s *CaseService) GetCase(ctx context.Context, caller Caller, id domain.CaseID) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanBeViewedBy(caller.City, caller.Team) {
		return nil, domain.ErrPermissionDenied
	}
	return c, nil
}

// ListCases returns a page of cases scoped to the caller's visibility:
// PMO lists everything, Finance its own city, Alpha/Beta their own cases.
func (s *CaseService) ListCases(ctx context.Context, caller Caller, filter CaseListFilter) (*CasePage, error) {
	repoFilter := repository.CaseFilter{}

	if filter.City != "" {
		city, err := domain.NewCityCode(filter.City)
		if err != nil {
			return nil, err
		}
		repoFilter.City = &city
	}
	if filter.Team != "" {
		team, ok := domain.TeamFromCode(filter.Team)
		if !ok || !team.IsOwning() {
			return nil, &domain.ValidationError{Field: "team", Reason: "team filter must be 'AL' or 'BE'"}
		}
		repoFilter.Team = &team
	}
	if filter.State != "" {
		state := domain.CaseState(strings.ToUpper(filter.State))
		if !state.Valid() {
			return nil, &domain.ValidationError{Field: "state", Reason: "unknown case state"}
		}
		repoFilter.State = &state
	}

	if caller.Team != domain.TeamPMO {
		city := caller.City
		repoFilter.City = &city
		if caller.Team.IsOwning() {
			team := caller.Team
			repoFilter.Team = &team
		}
		// Finance keeps no team filter: it sees both owning teams in its city.
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	repoFilter.Limit = pageSize
	repoFilter.Offset = (page - 1) * pageSize

	cases, total, err := s.cases.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Case, 0, len(cases))
	for _, c := range cases {
		if c.CanBeViewedBy(caller.City, caller.Team) {
			visible = append(visible, c)
		}
	}
	return &CasePage{Items: visible, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateCase replaces the case metadata wholesale. Permitted in any state.
func (s *CaseService) UpdateCase(ctx context.Context, caller Caller, id domain.CaseID, input CaseUpdateInput) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanBeModifiedBy(caller.City, caller.Team) {
		return nil, domain.ErrPermissionDenied
	}
	if err := validateMetadata(input.Title, input.Description, input.Budget, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	c.UpdateMetadata(input.Title, input.Description, input.Budget, input.StartDate, input.EndDate, input.WorkNotes, caller.UserID)
	if err := s.cases.UpdateMetadata(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SubmitCase advances a case along the submission half of the pipeline:
// Initiated cases move to Pending_Analysis, Pending_Analysis cases to
// Pending_Finance. Only the owning team or PMO may submit.
func (s *CaseService) SubmitCase(ctx context.Context, caller Caller, id domain.CaseID) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.CanBeModifiedBy(caller.City, caller.Team) {
		return nil, domain.ErrPermissionDenied
	}

	var change domain.StateChange
	if c.State == domain.StateInitiated {
		change, err = c.SubmitForAnalysis(caller.UserID)
	} else {
		change, err = c.SubmitToFinance(caller.UserID)
	}
	if err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, caller, c, change)
}

// ApproveCase approves for the caller's role: Finance moves Pending_Finance
// to Pending_PMO (own city only), PMO moves Pending_PMO to Approved.
func (s *CaseService) ApproveCase(ctx context.Context, caller Caller, id domain.CaseID) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var change domain.StateChange
	switch caller.Team {
	case domain.TeamFinance:
		if c.City != caller.City {
			return nil, fmt.Errorf("%w: finance approves only cases in its own city", domain.ErrPermissionDenied)
		}
		change, err = c.ApproveByFinance(caller.UserID)
	case domain.TeamPMO:
		change, err = c.ApproveByPMO(caller.UserID)
	default:
		return nil, fmt.Errorf("%w: only Finance and PMO can approve cases", domain.ErrPermissionDenied)
	}
	if err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, caller, c, change)
}

// RejectCase rejects for the caller's role, with an optional reason recorded
// in the ledger.
func (s *CaseService) RejectCase(ctx context.Context, caller Caller, id domain.CaseID, reason string) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var change domain.StateChange
	switch caller.Team {
	case domain.TeamFinance:
		change, err = c.RejectByFinance(caller.UserID, reason)
	case domain.TeamPMO:
		change, err = c.RejectByPMO(caller.UserID, reason)
	default:
		return nil, fmt.Errorf("%w: only Finance and PMO can reject cases", domain.ErrPermissionDenied)
	}
	if err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, caller, c, change)
}

// RetriggerCase revives a Rejected case back into Pending_Finance. PMO only.
func (s *CaseService) RetriggerCase(ctx context.Context, caller Caller, id domain.CaseID) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller.Team != domain.TeamPMO {
		return nil, fmt.Errorf("%w: only PMO can retrigger rejected cases", domain.ErrPermissionDenied)
	}

	change, err := c.RetriggerByPMO(caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.commitTransition(ctx, caller, c, change)
}

func (s *CaseService) commitTransition(ctx context.Context, caller Caller, c *domain.Case, change domain.StateChange) (*domain.Case, error) {
	if err := s.cases.ApplyTransition(ctx, c, change); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type:   events.EventCaseStateChanged,
		CaseID: c.ID.String(),
		Actor:  callerActor(caller),
		Payload: events.CaseStateChangedPayload{
			OldState: change.From,
			NewState: change.To,
			Reason:   change.Reason,
		},
	})
	return c, nil
}

func (s *CaseService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func callerActor(caller Caller) events.Actor {
	return events.Actor{
		UserID: caller.UserID,
		City:   caller.City,
		Team:   caller.Team,
	}
}

func validateMetadata(title, description string, budget *decimal.Decimal, startDate, endDate *time.Time) error {
	if len(title) > maxTitleLength {
		return &domain.ValidationError{Field: "title", Reason: "title cannot exceed 200 characters"}
	}
	if len(description) > maxDescriptionLength {
		return &domain.ValidationError{Field: "description", Reason: "description cannot exceed 2000 characters"}
	}
	if budget != nil && !budget.IsPositive() {
		return &domain.ValidationError{Field: "budget", Reason: "budget must be greater than 0"}
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return &domain.ValidationError{Field: "start_date", Reason: "start date must be before or equal to end date"}
	}
	return nil
}
