package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ExportRequest enqueues a document render for the given session.
type ExportRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Format    string `json:"format"     validate:"required,oneof=pdf xlsx"`
	// EmailTo: optional — when present, the email worker mails the document.
	EmailTo *string `json:"email_to"   validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ExportResponse struct {
	ID          string  `json:"id"`
	Format      string  `json:"format"`
	Status      string  `json:"status"`
	FilePath    string  `json:"file_path,omitempty"`
	RetryCount  int     `json:"retry_count"`
	LastError   *string `json:"last_error,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

type ExportListResponse struct {
	Data  []ExportResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type ExportFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}
