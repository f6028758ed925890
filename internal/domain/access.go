package domain

// Authorization predicates over (caller city, caller team, case city, case
// owning team). All are total and side-effect free.

// CanView reports whether a caller may read a case owned by (caseCity,
// caseTeam). PMO sees everything; Finance sees every case in its own city
// regardless of owning team; Alpha and Beta see only cases matching both
// their city and their team.
func CanView(caseCity CityCode, caseTeam TeamType, callerCity CityCode, callerTeam TeamType) bool {
	switch callerTeam {
	case TeamPMO:
		return true
	case TeamFinance:
		return caseCity == callerCity
	default:
		return caseCity == callerCity && caseTeam == callerTeam
	}
}

// CanModify reports whether a caller may mutate a case. True iff the caller
// is the owning team in the owning city, or PMO. Finance is deliberately not
// granted modify rights despite its broader view rights.
func CanModify(caseCity CityCode, caseTeam TeamType, callerCity CityCode, callerTeam TeamType) bool {
	if callerTeam == TeamPMO {
		return true
	}
	return caseCity == callerCity && caseTeam == callerTeam
}

// CanCreate reports whether a team may open new cases.
func CanCreate(callerTeam TeamType) bool {
	return callerTeam.IsOwning()
}
