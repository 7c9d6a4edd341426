package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved,
		QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

type Quote struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status      QuoteStatus `gorm:"type:varchar(20);default:'draft';not null"`
	TotalAmount float64     `gorm:"type:decimal(10,2);not null"`
	ValidUntil  *time.Time
	Notes       string

	Items []QuoteItem `gorm:"foreignKey:QuoteID"`

	gorm.Model
}

func (q *Quote) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return
}

// Total re-derives the amount from line items. Stored TotalAmount is always
// written from this, never taken from the client.
func (q *Quote) Total() float64 {
	var sum float64
	for _, item := range q.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return sum
}

type QuoteItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	QuoteID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	ServiceID *uuid.UUID `gorm:"type:uuid;index"`

	Description string  `gorm:"not null"`
	Quantity    int     `gorm:"default:1;not null"`
	Price       float64 `gorm:"type:decimal(10,2);not null"`

	gorm.Model
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
