package controllers

import (
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpcomingJob struct {
	ID          string    `json:"id"`
	ServiceName string    `json:"serviceName"`
	Customer    string    `json:"customer"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type OutstandingInvoice struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Customer      string  `json:"customer"`
	Amount        float64 `json:"amount"`
	DaysOverdue   int     `json:"daysOverdue"`
}

// GetDashboardOverview summarizes the pipeline: open quotes, upcoming jobs,
// what's owed and what came in this month.
func GetDashboardOverview(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("user_id = ?", userUUID).Count(&totalCustomers)

	var openQuotes int64
	config.DB.Model(&models.Quote{}).
		Where("user_id = ? AND status IN ?", userUUID,
			[]models.QuoteStatus{models.QuoteStatusDraft, models.QuoteStatusSent}).
		Count(&openQuotes)

	// This month's collected revenue
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue float64
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status = ? AND paid_date >= ?", userUUID, models.InvoiceStatusPaid, firstOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthlyRevenue)

	var outstandingAmount float64
	config.DB.Model(&models.Invoice{}).
		Where("user_id = ? AND status IN ?", userUUID,
			[]models.InvoiceStatus{models.InvoiceStatusPending, models.InvoiceStatusOverdue}).
		Select("COALESCE(SUM(amount), 0)").Scan(&outstandingAmount)

	// Next 7 days of scheduled work
	var jobs []models.Job
	config.DB.Where("user_id = ? AND status = ? AND scheduled_start BETWEEN ? AND ?",
		userUUID, models.JobStatusScheduled, now, now.AddDate(0, 0, 7)).
		Order("scheduled_start ASC").
		Limit(7).
		Find(&jobs)

	upcomingJobs := make([]UpcomingJob, 0, len(jobs))
	for _, job := range jobs {
		var customer models.Customer
		config.DB.Select("name").First(&customer, "id = ?", job.CustomerID)
		upcomingJobs = append(upcomingJobs, UpcomingJob{
			ID:          job.ID.String(),
			ServiceName: job.ServiceName,
			Customer:    customer.Name,
			Start:       job.ScheduledStart,
			End:         job.ScheduledEnd,
		})
	}

	var overdueInvoices []models.Invoice
	config.DB.Where("user_id = ? AND status = ?", userUUID, models.InvoiceStatusOverdue).
		Order("due_date ASC").
		Limit(7).
		Find(&overdueInvoices)

	outstanding := make([]OutstandingInvoice, 0, len(overdueInvoices))
	for _, inv := range overdueInvoices {
		var customer models.Customer
		config.DB.Select("name").First(&customer, "id = ?", inv.CustomerID)
		outstanding = append(outstanding, OutstandingInvoice{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			Customer:      customer.Name,
			Amount:        inv.Amount,
			DaysOverdue:   utils.DaysBetween(inv.DueDate, now),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCustomers":    totalCustomers,
		"openQuotes":        openQuotes,
		"monthlyRevenue":    monthlyRevenue,
		"outstandingAmount": outstandingAmount,
		"upcomingJobs":      upcomingJobs,
		"overdueInvoices":   outstanding,
	})
}
