package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SensitivityLevel classifies attached files.
type SensitivityLevel string

const (
	SensitivityPublic   SensitivityLevel = "PUBLIC"
	SensitivityInternal SensitivityLevel = "INTERNAL"
	SensitivitySecret   SensitivityLevel = "SECRET"
)

// ParseSensitivity resolves a raw value, case-insensitively.
func ParseSensitivity(raw string) (SensitivityLevel, error) {
	switch SensitivityLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case SensitivityPublic:
		return SensitivityPublic, nil
	case SensitivityInternal:
		return SensitivityInternal, nil
	case SensitivitySecret:
		return SensitivitySecret, nil
	default:
		return "", &ValidationError{Field: "sensitivity", Reason: "must be one of PUBLIC, INTERNAL, SECRET"}
	}
}

// File is attached-file metadata owned by exactly one case. City and owning
// team are denormalized from the case at attach time so access checks never
// need to load the parent.
type File struct {
	ID          string
	CaseID      CaseID
	Name        string
	ExternalURL string
	City        CityCode
	OwningTeam  TeamType
	Sensitivity SensitivityLevel
	Audit       AuditInfo
}

// NewFile builds file metadata for attachment to the given case.
func NewFile(caseID CaseID, name, externalURL string, city CityCode, owningTeam TeamType, sensitivity SensitivityLevel, createdBy string) (*File, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "file name is required"}
	}
	if strings.TrimSpace(externalURL) == "" {
		return nil, &ValidationError{Field: "external_url", Reason: "external storage URL is required"}
	}
	return &File{
		ID:          uuid.NewString(),
		CaseID:      caseID,
		Name:        name,
		ExternalURL: externalURL,
		City:        city,
		OwningTeam:  owningTeam,
		Sensitivity: sensitivity,
		Audit:       NewAuditInfo(createdBy),
	}, nil
}

// UpdateMetadata renames the file and/or changes its sensitivity. A blank
// name keeps the current one; a nil sensitivity keeps the current level.
func (f *File) UpdateMetadata(name string, sensitivity *SensitivityLevel, actor string) {
	if strings.TrimSpace(name) != "" {
		f.Name = name
	}
	if sensitivity != nil {
		f.Sensitivity = *sensitivity
	}
	f.Audit.Touch(actor)
}

// CanBeAccessedBy applies the case visibility rules to the file's
// denormalized city and owning team.
func (f *File) CanBeAccessedBy(callerCity CityCode, callerTeam TeamType) bool {
	return CanView(f.City, f.OwningTeam, callerCity, callerTeam)
}
