package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCaseSequence is the hard ceiling of the 3-digit sequence field. A
// partition that reached it can allocate no further identifiers.
const MaxCaseSequence = 999

// CaseID identifies a case, rendered as CS-<year>-<city>-<AL|BE>-<seq>.
// The team segment always encodes the owning team fixed at creation, never
// the team currently handling the case.
type CaseID struct {
	Year       int
	City       CityCode
	OwningTeam TeamType
	Sequence   int
}

// NewCaseID builds an identifier from its parts.
func NewCaseID(year int, city CityCode, owningTeam TeamType, seq int) (CaseID, error) {
	if !owningTeam.IsOwning() {
		return CaseID{}, ErrInvalidTeamForIdentifier
	}
	if seq < 1 || seq > MaxCaseSequence {
		return CaseID{}, ErrSequenceOverflow
	}
	return CaseID{Year: year, City: city, OwningTeam: owningTeam, Sequence: seq}, nil
}

// ParseCaseID parses the rendered form. Any deviation from the exact
// 5-segment shape fails with MalformedIdentifierError; there is no partial
// recovery.
func ParseCaseID(raw string) (CaseID, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 5 || parts[0] != "CS" {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	if len(parts[1]) != 4 {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	if len(parts[2]) != 3 {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	team, ok := TeamFromCode(parts[3])
	if !ok || !team.IsOwning() {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	if len(parts[4]) != 3 {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	seq, err := strconv.Atoi(parts[4])
	if err != nil || seq < 1 || seq > MaxCaseSequence {
		return CaseID{}, &MalformedIdentifierError{Value: raw}
	}
	return CaseID{
		Year:       year,
		City:       CityCode(parts[2]),
		OwningTeam: team,
		Sequence:   seq,
	}, nil
}

func (id CaseID) String() string {
	return fmt.Sprintf("CS-%04d-%s-%s-%03d", id.Year, id.City, id.OwningTeam.Code(), id.Sequence)
}

// IsZero reports whether id is the zero value.
func (id CaseID) IsZero() bool {
	return id == CaseID{}
}
