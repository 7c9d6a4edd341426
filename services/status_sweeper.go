// services/status_sweeper.go
package services

import (
	"log"
	"time"

	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StatusSweeper moves pending invoices past their due date to overdue and
// unanswered quotes past their valid-until date to expired.
type StatusSweeper struct {
	db *gorm.DB
}

func NewStatusSweeper(db *gorm.DB) *StatusSweeper {
	return &StatusSweeper{db: db}
}

func (s *StatusSweeper) StartScheduler() {
	c := cron.New()

	// Run every day at 6 AM
	c.AddFunc("0 6 * * *", func() {
		s.SweepOnce(time.Now())
	})

	c.Start()
	log.Println("Status sweeper started")
}

// SweepOnce runs one pass and reports how many rows moved. An invoice due
// today is not overdue yet; the cutoff is the beginning of the current day.
func (s *StatusSweeper) SweepOnce(now time.Time) (overdueInvoices, expiredQuotes int64) {
	cutoff := utils.BeginningOfDay(now)

	res := s.db.Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", models.InvoiceStatusPending, cutoff).
		Update("status", models.InvoiceStatusOverdue)
	if res.Error != nil {
		log.Printf("Failed to sweep overdue invoices: %v", res.Error)
	}
	overdueInvoices = res.RowsAffected

	res = s.db.Model(&models.Quote{}).
		Where("status IN ? AND valid_until IS NOT NULL AND valid_until < ?",
			[]models.QuoteStatus{models.QuoteStatusDraft, models.QuoteStatusSent}, cutoff).
		Update("status", models.QuoteStatusExpired)
	if res.Error != nil {
		log.Printf("Failed to sweep expired quotes: %v", res.Error)
	}
	expiredQuotes = res.RowsAffected

	if overdueInvoices > 0 || expiredQuotes > 0 {
		log.Printf("Status sweep: %d invoices overdue, %d quotes expired", overdueInvoices, expiredQuotes)
	}
	return
}
