package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalHistory is one immutable row of the case audit ledger. A row is
// appended for every state transition, plus a synthetic Initiated->Initiated
// row when the case is created.
type ApprovalHistory struct {
	ID        string
	CaseID    CaseID
	FromState CaseState
	ToState   CaseState
	Actor     string
	Comment   string
	CreatedAt time.Time
}

func newApprovalHistory(caseID CaseID, from, to CaseState, actor, comment string) ApprovalHistory {
	return ApprovalHistory{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		FromState: from,
		ToState:   to,
		Actor:     actor,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
}
