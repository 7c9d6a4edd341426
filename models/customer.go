package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name             string `gorm:"not null"`
	Email            string
	Phone            string
	Address          string
	Notes            string
	PreferredContact string `gorm:"type:varchar(10)"` // email or phone
	IsActive         bool   `gorm:"default:true"`

	Quotes   []Quote   `gorm:"foreignKey:CustomerID"`
	Jobs     []Job     `gorm:"foreignKey:CustomerID"`
	Invoices []Invoice `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
