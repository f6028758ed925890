package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StateChange describes one committed transition. Lifecycle methods return it
// explicitly so the application layer can persist the new state and publish
// the matching event in the same transaction; the aggregate keeps no hidden
// event buffer.
type StateChange struct {
	CaseID CaseID
	From   CaseState
	To     CaseState
	Actor  string
	Reason string
	At     time.Time
}

// Case is the aggregate root for a municipal aid request. State is mutated
// only through the transition methods; each appends one ApprovalHistory row.
type Case struct {
	ID          CaseID
	City        CityCode
	OwningTeam  TeamType
	State       CaseState
	Title       string
	Description string
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	WorkNotes   string
	Audit       AuditInfo
	History     []ApprovalHistory
	Files       []*File
}

// NewCase creates a case in state Initiated with the synthetic
// Initiated->Initiated audit row. Only Alpha and Beta teams may own cases.
func NewCase(id CaseID, city CityCode, owningTeam TeamType, title, description, createdBy string) (*Case, error) {
	if !owningTeam.IsOwning() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "title is required"}
	}
	c := &Case{
		ID:          id,
		City:        city,
		OwningTeam:  owningTeam,
		State:       StateInitiated,
		Title:       title,
		Description: description,
		Audit:       NewAuditInfo(createdBy),
	}
	c.History = append(c.History, newApprovalHistory(id, StateInitiated, StateInitiated, createdBy, "Case created"))
	return c, nil
}

// UpdateMetadata replaces the case metadata wholesale. A blank title keeps
// the current one; every other field is overwritten with whatever is
// supplied, including nils and empty strings. Callers must resend unchanged
// fields to preserve them.
func (c *Case) UpdateMetadata(title, description string, budget *decimal.Decimal, startDate, endDate *time.Time, workNotes, actor string) {
	if strings.TrimSpace(title) != "" {
		c.Title = title
	}
	c.Description = description
	c.Budget = budget
	c.StartDate = startDate
	c.EndDate = endDate
	c.WorkNotes = workNotes
	c.Audit.Touch(actor)
}

// SubmitForAnalysis moves Initiated -> Pending_Analysis.
func (c *Case) SubmitForAnalysis(actor string) (StateChange, error) {
	return c.transition(TransitionSubmitForAnalysis, StateInitiated, StatePendingAnalysis, actor, "Submitted for analysis")
}

// SubmitToFinance moves Pending_Analysis -> Pending_Finance.
func (c *Case) SubmitToFinance(actor string) (StateChange, error) {
	return c.transition(TransitionSubmitToFinance, StatePendingAnalysis, StatePendingFinance, actor, "Submitted to finance for approval")
}

// ApproveByFinance moves Pending_Finance -> Pending_PMO.
func (c *Case) ApproveByFinance(actor string) (StateChange, error) {
	return c.transition(TransitionApproveByFinance, StatePendingFinance, StatePendingPMO, actor, "Approved by finance")
}

// RejectByFinance moves Pending_Finance -> Rejected.
func (c *Case) RejectByFinance(actor, reason string) (StateChange, error) {
	if reason == "" {
		reason = "Rejected by finance"
	}
	return c.transition(TransitionRejectByFinance, StatePendingFinance, StateRejected, actor, reason)
}

// ApproveByPMO moves Pending_PMO -> Approved.
func (c *Case) ApproveByPMO(actor string) (StateChange, error) {
	return c.transition(TransitionApproveByPMO, StatePendingPMO, StateApproved, actor, "Final approval by PMO")
}

// RejectByPMO moves Pending_PMO -> Rejected.
func (c *Case) RejectByPMO(actor, reason string) (StateChange, error) {
	if reason == "" {
		reason = "Rejected by PMO"
	}
	return c.transition(TransitionRejectByPMO, StatePendingPMO, StateRejected, actor, reason)
}

// RetriggerByPMO moves Rejected -> Pending_Finance, the only way out of the
// terminal Rejected state.
func (c *Case) RetriggerByPMO(actor string) (StateChange, error) {
	return c.transition(TransitionRetriggerByPMO, StateRejected, StatePendingFinance, actor, "Retriggered by PMO")
}

// AttachFile records file metadata on the case. It is a side operation, not
// a state transition.
func (c *Case) AttachFile(file *File, actor string) error {
	if file.CaseID != c.ID {
		return ErrFileCaseMismatch
	}
	c.Files = append(c.Files, file)
	c.Audit.Touch(actor)
	return nil
}

func (c *Case) transition(t Transition, from, to CaseState, actor, reason string) (StateChange, error) {
	if c.State != from {
		return StateChange{}, &IllegalTransitionError{From: c.State, Attempted: t}
	}
	c.State = to
	c.Audit.Touch(actor)
	c.History = append(c.History, newApprovalHistory(c.ID, from, to, actor, reason))
	return StateChange{
		CaseID: c.ID,
		From:   from,
		To:     to,
		Actor:  actor,
		Reason: reason,
		At:     c.Audit.UpdatedAt,
	}, nil
}

// LatestHistory returns the most recently appended ledger row.
func (c *Case) LatestHistory() ApprovalHistory {
	return c.History[len(c.History)-1]
}

// CanBeViewedBy applies the visibility rules to this case.
func (c *Case) CanBeViewedBy(callerCity CityCode, callerTeam TeamType) bool {
	return CanView(c.City, c.OwningTeam, callerCity, callerTeam)
}

// CanBeModifiedBy applies the modification rules to this case.
func (c *Case) CanBeModifiedBy(callerCity CityCode, callerTeam TeamType) bool {
	return CanModify(c.City, c.OwningTeam, callerCity, callerTeam)
}
