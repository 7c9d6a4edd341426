package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobStatus string

// invoiced is part of the canonical enum, not a stray value written past it.
const (
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusInvoiced   JobStatus = "invoiced"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusScheduled, JobStatusInProgress, JobStatusCompleted,
		JobStatusCancelled, JobStatusInvoiced:
		return true
	}
	return false
}

type Job struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuoteID    *uuid.UUID `gorm:"type:uuid;index"`

	ServiceName string    `gorm:"not null"` // copied from the quote, not referenced
	Status      JobStatus `gorm:"type:varchar(20);default:'scheduled';not null"`

	ScheduledStart time.Time `gorm:"not null"`
	ScheduledEnd   time.Time `gorm:"not null"`
	ActualStart    *time.Time
	ActualEnd      *time.Time
	Notes          string

	gorm.Model
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}
