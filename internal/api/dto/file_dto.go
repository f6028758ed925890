package dto

import "time"

// AttachFileRequest payload.
type AttachFileRequest struct {
	Name        string `json:"name"`
	ExternalURL string `json:"external_url"`
	Sensitivity string `json:"sensitivity"`
}

// UpdateFileRequest payload; blank fields keep the current values.
type UpdateFileRequest struct {
	Name        string `json:"name"`
	Sensitivity string `json:"sensitivity"`
}

// FileResponse represents attached-file metadata on the wire.
type FileResponse struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Name        string    `json:"name"`
	ExternalURL string    `json:"external_url"`
	City        string    `json:"city"`
	Team        string    `json:"team"`
	Sensitivity string    `json:"sensitivity"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}
