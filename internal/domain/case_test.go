package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCase(t *testing.T) *Case {
	t.Helper()
	id, err := NewCaseID(2026, CityPune, TeamAlpha, 1)
	require.NoError(t, err)
	c, err := NewCase(id, CityPune, TeamAlpha, "Roof repair", "Leaking community hall roof", "alice")
	require.NoError(t, err)
	return c
}

func TestNewCase(t *testing.T) {
	t.Run("starts Initiated with a synthetic ledger row", func(t *testing.T) {
		c := newTestCase(t)
		require.Equal(t, StateInitiated, c.State)
		require.Len(t, c.History, 1)

		row := c.History[0]
		require.Equal(t, StateInitiated, row.FromState)
		require.Equal(t, StateInitiated, row.ToState)
		require.Equal(t, "alice", row.Actor)
		require.Equal(t, "Case created", row.Comment)
		require.Equal(t, "alice", c.Audit.CreatedBy)
	})

	t.Run("rejects non-owning teams", func(t *testing.T) {
		id, err := NewCaseID(2026, CityPune, TeamAlpha, 1)
		require.NoError(t, err)
		_, err = NewCase(id, CityPune, TeamFinance, "Roof repair", "", "fiona")
		require.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("rejects a blank title", func(t *testing.T) {
		id, err := NewCaseID(2026, CityPune, TeamAlpha, 1)
		require.NoError(t, err)
		_, err = NewCase(id, CityPune, TeamAlpha, "   ", "", "alice")
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "title", validationErr.Field)
	})
}

func TestCaseTransitions(t *testing.T) {
	t.Run("happy path appends one ledger row per step", func(t *testing.T) {
		c := newTestCase(t)

		change, err := c.SubmitForAnalysis("alice")
		require.NoError(t, err)
		require.Equal(t, StateInitiated, change.From)
		require.Equal(t, StatePendingAnalysis, change.To)

		_, err = c.SubmitToFinance("alice")
		require.NoError(t, err)
		require.Equal(t, StatePendingFinance, c.State)

		_, err = c.ApproveByFinance("fiona")
		require.NoError(t, err)
		require.Equal(t, StatePendingPMO, c.State)

		change, err = c.ApproveByPMO("paul")
		require.NoError(t, err)
		require.Equal(t, StateApproved, c.State)
		require.Equal(t, "paul", change.Actor)

		// Creation row plus four transitions.
		require.Len(t, c.History, 5)
		require.Equal(t, StateApproved, c.LatestHistory().ToState)
		require.Equal(t, "paul", c.Audit.UpdatedBy)
	})

	t.Run("rejection and retrigger cycle", func(t *testing.T) {
		c := newTestCase(t)
		_, err := c.SubmitForAnalysis("alice")
		require.NoError(t, err)
		_, err = c.SubmitToFinance("alice")
		require.NoError(t, err)

		change, err := c.RejectByFinance("fiona", "Budget missing")
		require.NoError(t, err)
		require.Equal(t, StateRejected, c.State)
		require.Equal(t, "Budget missing", change.Reason)

		change, err = c.RetriggerByPMO("paul")
		require.NoError(t, err)
		require.Equal(t, StatePendingFinance, c.State)
		require.Equal(t, StateRejected, change.From)

		_, err = c.ApproveByFinance("fiona")
		require.NoError(t, err)
		_, err = c.RejectByPMO("paul", "")
		require.NoError(t, err)
		require.Equal(t, StateRejected, c.State)
		require.Equal(t, "Rejected by PMO", c.LatestHistory().Comment)

		// Creation, two submits, reject, retrigger, approve, reject.
		require.Len(t, c.History, 7)
	})

	t.Run("every transition fails from every wrong state", func(t *testing.T) {
		transitions := map[Transition]struct {
			from CaseState
			run  func(c *Case) error
		}{
			TransitionSubmitForAnalysis: {StateInitiated, func(c *Case) error { _, err := c.SubmitForAnalysis("u"); return err }},
			TransitionSubmitToFinance:   {StatePendingAnalysis, func(c *Case) error { _, err := c.SubmitToFinance("u"); return err }},
			TransitionApproveByFinance:  {StatePendingFinance, func(c *Case) error { _, err := c.ApproveByFinance("u"); return err }},
			TransitionRejectByFinance:   {StatePendingFinance, func(c *Case) error { _, err := c.RejectByFinance("u", "r"); return err }},
			TransitionApproveByPMO:      {StatePendingPMO, func(c *Case) error { _, err := c.ApproveByPMO("u"); return err }},
			TransitionRejectByPMO:       {StatePendingPMO, func(c *Case) error { _, err := c.RejectByPMO("u", "r"); return err }},
			TransitionRetriggerByPMO:    {StateRejected, func(c *Case) error { _, err := c.RetriggerByPMO("u"); return err }},
		}
		states := []CaseState{
			StateInitiated, StatePendingAnalysis, StatePendingFinance,
			StatePendingPMO, StateApproved, StateRejected,
		}

		for name, tc := range transitions {
			for _, state := range states {
				c := newTestCase(t)
				c.State = state
				err := tc.run(c)
				if state == tc.from {
					require.NoError(t, err, "%s from %s", name, state)
					continue
				}
				var illegal *IllegalTransitionError
				require.ErrorAs(t, err, &illegal, "%s from %s", name, state)
				require.Equal(t, state, illegal.From)
				require.Equal(t, name, illegal.Attempted)
				require.Equal(t, state, c.State, "state must not change on a refused transition")
				require.Len(t, c.History, 1, "no ledger row on a refused transition")
			}
		}
	})
}

func TestCaseUpdateMetadata(t *testing.T) {
	c := newTestCase(t)
	budget := decimal.NewFromInt(125000)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	c.UpdateMetadata("Roof repair phase 2", "Full replacement", &budget, &start, &end, "contractor booked", "alice")
	require.Equal(t, "Roof repair phase 2", c.Title)
	require.True(t, c.Budget.Equal(budget))
	require.Equal(t, &start, c.StartDate)

	// Replacement semantics: fields not resent are cleared, blank title kept.
	c.UpdateMetadata("", "Full replacement", nil, nil, nil, "", "bob")
	require.Equal(t, "Roof repair phase 2", c.Title)
	require.Nil(t, c.Budget)
	require.Nil(t, c.StartDate)
	require.Nil(t, c.EndDate)
	require.Empty(t, c.WorkNotes)
	require.Equal(t, "bob", c.Audit.UpdatedBy)
	require.Equal(t, "alice", c.Audit.CreatedBy)
}

func TestCaseAttachFile(t *testing.T) {
	c := newTestCase(t)

	file, err := NewFile(c.ID, "estimate.pdf", "https://files.example/estimate.pdf", c.City, c.OwningTeam, SensitivityInternal, "alice")
	require.NoError(t, err)
	require.NoError(t, c.AttachFile(file, "alice"))
	require.Len(t, c.Files, 1)

	otherID, err := NewCaseID(2026, CityDelhi, TeamBeta, 9)
	require.NoError(t, err)
	stray, err := NewFile(otherID, "photo.jpg", "https://files.example/photo.jpg", CityDelhi, TeamBeta, SensitivityPublic, "bob")
	require.NoError(t, err)
	require.ErrorIs(t, c.AttachFile(stray, "alice"), ErrFileCaseMismatch)
	require.Len(t, c.Files, 1)
}

func TestFileCanBeAccessedBy(t *testing.T) {
	c := newTestCase(t)
	file, err := NewFile(c.ID, "estimate.pdf", "https://files.example/estimate.pdf", c.City, c.OwningTeam, SensitivitySecret, "alice")
	require.NoError(t, err)

	// Access follows the denormalized case scope: owning team and Finance in
	// the owning city, PMO everywhere.
	require.True(t, file.CanBeAccessedBy(CityPune, TeamAlpha))
	require.True(t, file.CanBeAccessedBy(CityPune, TeamFinance))
	require.True(t, file.CanBeAccessedBy(CityDelhi, TeamPMO))
	require.False(t, file.CanBeAccessedBy(CityPune, TeamBeta))
	require.False(t, file.CanBeAccessedBy(CityDelhi, TeamFinance))
	require.False(t, file.CanBeAccessedBy(CityDelhi, TeamAlpha))
}

func TestFileUpdateMetadata(t *testing.T) {
	c := newTestCase(t)
	file, err := NewFile(c.ID, "estimate.pdf", "https://files.example/estimate.pdf", c.City, c.OwningTeam, SensitivityInternal, "alice")
	require.NoError(t, err)

	secret := SensitivitySecret
	file.UpdateMetadata("estimate-final.pdf", &secret, "bob")
	require.Equal(t, "estimate-final.pdf", file.Name)
	require.Equal(t, SensitivitySecret, file.Sensitivity)
	require.Equal(t, "bob", file.Audit.UpdatedBy)

	// Blank name and nil sensitivity keep current values.
	file.UpdateMetadata("", nil, "carol")
	require.Equal(t, "estimate-final.pdf", file.Name)
	require.Equal(t, SensitivitySecret, file.Sensitivity)
}

func TestParseSensitivity(t *testing.T) {
	level, err := ParseSensitivity(" public ")
	require.NoError(t, err)
	require.Equal(t, SensitivityPublic, level)

	_, err = ParseSensitivity("classified")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}
