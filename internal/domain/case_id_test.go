package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCaseID(t *testing.T) {
	t.Run("builds identifiers for owning teams", func(t *testing.T) {
		id, err := NewCaseID(2026, CityPune, TeamAlpha, 1)
		require.NoError(t, err)
		require.Equal(t, "CS-2026-PUN-AL-001", id.String())

		id, err = NewCaseID(2026, CityDelhi, TeamBeta, 42)
		require.NoError(t, err)
		require.Equal(t, "CS-2026-DEL-BE-042", id.String())
	})

	t.Run("rejects non-owning teams", func(t *testing.T) {
		for _, team := range []TeamType{TeamFinance, TeamPMO, TeamAnalysis} {
			_, err := NewCaseID(2026, CityPune, team, 1)
			require.ErrorIs(t, err, ErrInvalidTeamForIdentifier, "team %s", team)
		}
	})

	t.Run("rejects out-of-range sequences", func(t *testing.T) {
		_, err := NewCaseID(2026, CityPune, TeamAlpha, 0)
		require.ErrorIs(t, err, ErrSequenceOverflow)

		_, err = NewCaseID(2026, CityPune, TeamAlpha, 1000)
		require.ErrorIs(t, err, ErrSequenceOverflow)

		_, err = NewCaseID(2026, CityPune, TeamAlpha, MaxCaseSequence)
		require.NoError(t, err)
	})
}

func TestParseCaseID(t *testing.T) {
	t.Run("round-trips rendered identifiers", func(t *testing.T) {
		for _, seq := range []int{1, 99, 100, MaxCaseSequence} {
			id, err := NewCaseID(2026, CityMumbai, TeamBeta, seq)
			require.NoError(t, err)

			parsed, err := ParseCaseID(id.String())
			require.NoError(t, err)
			require.Equal(t, id, parsed)
		}
	})

	t.Run("rejects malformed identifiers", func(t *testing.T) {
		malformed := []string{
			"",
			"CS-2026-PUN-AL",       // missing sequence
			"CS-2026-PUN-AL-001-9", // extra segment
			"XX-2026-PUN-AL-001",   // wrong prefix
			"CS-26-PUN-AL-001",     // 2-digit year
			"CS-2026-PUNE-AL-001",  // 4-letter city
			"CS-2026-PU-AL-001",    // 2-letter city
			"CS-2026-PUN-FIN-001",  // non-owning team code
			"CS-2026-PUN-PMO-001",  // non-owning team code
			"CS-2026-PUN-XX-001",   // unknown team code
			"CS-2026-PUN-AL-1",     // unpadded sequence
			"CS-2026-PUN-AL-0001",  // 4-digit sequence
			"CS-2026-PUN-AL-abc",   // non-numeric sequence
			"CS-2026-PUN-AL-000",   // sequence below range
			"CS-abcd-PUN-AL-001",   // non-numeric year
			"cs-2026-PUN-AL-001",   // lowercase prefix
		}
		for _, raw := range malformed {
			_, err := ParseCaseID(raw)
			var malformedErr *MalformedIdentifierError
			require.ErrorAs(t, err, &malformedErr, "input %q", raw)
			require.Equal(t, raw, malformedErr.Value)
		}
	})

	t.Run("team segment reflects the owning team only", func(t *testing.T) {
		parsed, err := ParseCaseID("CS-2026-ALL-BE-007")
		require.NoError(t, err)
		require.Equal(t, TeamBeta, parsed.OwningTeam)
		require.Equal(t, CityAllahabad, parsed.City)
		require.Equal(t, 7, parsed.Sequence)
	})
}

func TestCaseIDIsZero(t *testing.T) {
	require.True(t, CaseID{}.IsZero())

	id, err := NewCaseID(2026, CityPune, TeamAlpha, 1)
	require.NoError(t, err)
	require.False(t, id.IsZero())
}

func TestNewCityCode(t *testing.T) {
	city, err := NewCityCode(" pun ")
	require.NoError(t, err)
	require.Equal(t, CityPune, city)

	for _, raw := range []string{"", "PU", "PUNE"} {
		_, err := NewCityCode(raw)
		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), "input %q", raw)
	}
}

func TestTeamCodes(t *testing.T) {
	expected := map[TeamType]string{
		TeamAlpha:    "AL",
		TeamBeta:     "BE",
		TeamFinance:  "FIN",
		TeamPMO:      "PMO",
		TeamAnalysis: "AN",
	}
	for team, code := range expected {
		require.Equal(t, code, team.Code())
		resolved, ok := TeamFromCode(code)
		require.True(t, ok)
		require.Equal(t, team, resolved)
	}

	_, ok := TeamFromCode("XX")
	require.False(t, ok)
}
