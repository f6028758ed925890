package domain

// CaseState enumerates lifecycle states for cases. The pipeline is linear:
// Initiated -> Pending_Analysis -> Pending_Finance -> Pending_PMO -> Approved,
// with Rejected reachable from both approval stages. Rejected is terminal
// except for the PMO retrigger back into Pending_Finance.
type CaseState string

const (
	StateInitiated       CaseState = "INITIATED"
	StatePendingAnalysis CaseState = "PENDING_ANALYSIS"
	StatePendingFinance  CaseState = "PENDING_FINANCE"
	StatePendingPMO      CaseState = "PENDING_PMO"
	StateApproved        CaseState = "APPROVED"
	StateRejected        CaseState = "REJECTED"
)

var caseStates = map[CaseState]struct{}{
	StateInitiated:       {},
	StatePendingAnalysis: {},
	StatePendingFinance:  {},
	StatePendingPMO:      {},
	StateApproved:        {},
	StateRejected:        {},
}

// Valid reports whether s is a known state.
func (s CaseState) Valid() bool {
	_, ok := caseStates[s]
	return ok
}

// Transition names one edge of the lifecycle state machine.
type Transition string

const (
	TransitionSubmitForAnalysis Transition = "SUBMIT_FOR_ANALYSIS"
	TransitionSubmitToFinance   Transition = "SUBMIT_TO_FINANCE"
	TransitionApproveByFinance  Transition = "APPROVE_BY_FINANCE"
	TransitionRejectByFinance   Transition = "REJECT_BY_FINANCE"
	TransitionApproveByPMO      Transition = "APPROVE_BY_PMO"
	TransitionRejectByPMO       Transition = "REJECT_BY_PMO"
	TransitionRetriggerByPMO    Transition = "RETRIGGER_BY_PMO"
)
