package domain

// TeamType enumerates the teams participating in the approval pipeline.
// Alpha and Beta are city-level owning teams; Finance and PMO approve;
// Analysis reviews in between.
type TeamType string

const (
	TeamAlpha    TeamType = "ALPHA"
	TeamBeta     TeamType = "BETA"
	TeamFinance  TeamType = "FINANCE"
	TeamPMO      TeamType = "PMO"
	TeamAnalysis TeamType = "ANALYSIS"
)

// teamCodes is the single canonical TeamType <-> short-code mapping.
// Every component resolves codes through it; nothing re-implements the switch.
var teamCodes = map[TeamType]string{
	TeamAlpha:    "AL",
	TeamBeta:     "BE",
	TeamFinance:  "FIN",
	TeamPMO:      "PMO",
	TeamAnalysis: "AN",
}

var teamsByCode = func() map[string]TeamType {
	m := make(map[string]TeamType, len(teamCodes))
	for team, code := range teamCodes {
		m[code] = team
	}
	return m
}()

// Code returns the short wire code for the team ("AL", "BE", "FIN", ...).
func (t TeamType) Code() string {
	return teamCodes[t]
}

// TeamFromCode resolves a short code back to its TeamType.
func TeamFromCode(code string) (TeamType, bool) {
	team, ok := teamsByCode[code]
	return team, ok
}

// Valid reports whether t is a known team.
func (t TeamType) Valid() bool {
	_, ok := teamCodes[t]
	return ok
}

// IsOwning reports whether t may own cases. Only Alpha and Beta create cases
// and appear in case identifiers.
func (t TeamType) IsOwning() bool {
	return t == TeamAlpha || t == TeamBeta
}
