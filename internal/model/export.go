package model

import (
	"time"

	"github.com/google/uuid"
)

// Export status lifecycle.
const (
	ExportPending   = "pending"
	ExportRunning   = "running"
	ExportCompleted = "completed"
	ExportFailed    = "failed"
)

// MaxExportRetries is the ceiling before the retry cron abandons an export.
// A record whose retry count passes it drops out of the stale-pending query.
const MaxExportRetries = 5

// ExportRecord tracks one asynchronous document render. The worker claims it
// through the queue; RetryCount and LastError support the retry cron.
type ExportRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuoteID    *uuid.UUID `gorm:"type:uuid;index"`
	Format     string     `gorm:"type:varchar(10);not null"` // "pdf" | "xlsx"
	Letterhead string     `gorm:"type:varchar(20);not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`

	// RenderData is the frozen JSON payload the renderer consumes. Kept on
	// the record so a retry never depends on a live session.
	RenderData []byte `gorm:"type:jsonb;not null"`

	FilePath   string
	EmailTo    *string
	RetryCount int `gorm:"not null;default:0"`
	LastError  *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
