package model

import "time"

// Letterhead holds the issuer identity printed at the top of exported
// documents. Key: "primary" | "secondary".
type Letterhead struct {
	Key            string `gorm:"type:varchar(20);primaryKey"`
	CompanyName    string `gorm:"not null"`
	Registration   string
	Representative string
	Address        string
	Phone          string
	Email          string
	BankAccount    string
	SealImagePath  string
	UpdatedAt      time.Time
}

// Setting is a single persisted key/value preference. Defaults applied at
// read time live in the settings service, not here.
type Setting struct {
	Key       string `gorm:"type:varchar(64);primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}
