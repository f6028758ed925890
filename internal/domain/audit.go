package domain

import "time"

// AuditInfo records creation and modification provenance. It is embedded in
// each entity and mutated only through Touch.
type AuditInfo struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewAuditInfo stamps a freshly created entity.
func NewAuditInfo(actor string) AuditInfo {
	now := time.Now().UTC()
	return AuditInfo{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
}

// Touch records a modification by actor.
func (a *AuditInfo) Touch(actor string) {
	a.UpdatedAt = time.Now().UTC()
	a.UpdatedBy = actor
}
