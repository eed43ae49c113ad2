package model

import (
	"time"

	"github.com/google/uuid"
)

// QuoteRecord is a saved snapshot of a quoting session. Totals are frozen at
// save time so a rate or catalog change later never rewrites an issued quote.
type QuoteRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number     string    `gorm:"uniqueIndex;not null"`
	OperatorID uuid.UUID `gorm:"type:uuid;index;not null"`
	Customer   string
	Letterhead string `gorm:"type:varchar(20);not null;default:'primary'"`

	VATIncluded  bool   `gorm:"not null;default:true"`
	DiscountRate int    `gorm:"not null;default:0"`
	Truncation   string `gorm:"type:varchar(10);not null;default:'none'"`

	Subtotal         int64 `gorm:"not null"`
	DiscountAmount   int64 `gorm:"not null"`
	TruncationAmount int64 `gorm:"not null"`
	SupplyAmount     int64 `gorm:"not null"`
	VAT              int64 `gorm:"not null"`
	GrandTotal       int64 `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Operator *Operator         `gorm:"foreignKey:OperatorID"`
	Lines    []QuoteLineRecord `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// QuoteLineRecord is one committed line. Options is the resolved selection
// rendered as "Name: Value" pairs joined with " / ", matching the on-quote
// presentation, so a saved quote reads back without the catalog.
type QuoteLineRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuoteID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Position  int       `gorm:"not null"`
	Name      string    `gorm:"not null"`
	Options   string
	UnitPrice int64 `gorm:"not null"`
	Quantity  int   `gorm:"not null"`
	LineTotal int64 `gorm:"not null"`

	Addons []QuoteLineAddonRecord `gorm:"foreignKey:LineID;constraint:OnDelete:CASCADE"`
}

// QuoteLineAddonRecord is an add-on sub-row attached to a line.
type QuoteLineAddonRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LineID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string    `gorm:"not null"`
	UnitPrice int64     `gorm:"not null"`
	Quantity  int       `gorm:"not null"`
}
