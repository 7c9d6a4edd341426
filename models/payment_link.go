package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentLink is one-to-one with an invoice. The unique index makes concurrent
// issuance converge on a single row.
type PaymentLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	URL            string `gorm:"not null"`
	ProviderLinkID string `gorm:"index"`

	gorm.Model
}

func (p *PaymentLink) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
