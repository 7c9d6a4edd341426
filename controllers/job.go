// controllers/job.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleJobInput defines the scheduling form: a calendar date, a start time
// and a duration in hours.
type ScheduleJobInput struct {
	Date     string  `json:"date" binding:"required"` // 2006-01-02
	Time     string  `json:"time" binding:"required"` // 15:04
	Duration float64 `json:"duration" binding:"required,gt=0"`
}

// UpdateJobInput defines the expected JSON structure for updating a job
type UpdateJobInput struct {
	ServiceName *string `json:"serviceName"`
	Notes       *string `json:"notes"`
}

func loadJob(c *gin.Context, userUUID uuid.UUID) (*models.Job, bool) {
	jobUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return nil, false
	}

	var job models.Job
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, jobUUID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &job, true
}

// GetJobs retrieves all jobs for the authenticated user
func GetJobs(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var jobs []models.Job
	if err := config.DB.Where("user_id = ?", userUUID).
		Order("scheduled_start ASC").
		Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJob retrieves a specific job by ID
func GetJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJob updates a job's name or notes
func UpdateJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	var input UpdateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.ServiceName != nil {
		job.ServiceName = *input.ServiceName
	}
	if input.Notes != nil {
		job.Notes = *input.Notes
	}

	if err := config.DB.Save(job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob deletes a job
func DeleteJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	jobUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	result := config.DB.Where("user_id = ? AND id = ?", userUUID, jobUUID).
		Delete(&models.Job{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete job")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// ScheduleJob assigns a time slot: start = date+time, end = start + duration.
// Overlapping slots for the same user are accepted; nothing checks for
// double-booking.
func ScheduleJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	var input ScheduleJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", input.Date+" "+input.Time, time.UTC)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid date or time format")
		return
	}
	end := start.Add(time.Duration(input.Duration * float64(time.Hour)))

	if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusInvoiced ||
		job.Status == models.JobStatusCancelled {
		utils.RespondWithError(c, http.StatusConflict, "Job can no longer be scheduled")
		return
	}

	job.ScheduledStart = start
	job.ScheduledEnd = end
	job.Status = models.JobStatusScheduled

	if err := config.DB.Save(job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to schedule job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// StartJob marks a scheduled job as in progress
func StartJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	if job.Status != models.JobStatusScheduled {
		utils.RespondWithError(c, http.StatusConflict, "Only scheduled jobs can be started")
		return
	}

	now := time.Now()
	job.Status = models.JobStatusInProgress
	job.ActualStart = &now

	if err := config.DB.Save(job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to start job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// CompleteJob marks a job as completed
func CompleteJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	if job.Status != models.JobStatusScheduled && job.Status != models.JobStatusInProgress {
		utils.RespondWithError(c, http.StatusConflict, "Only scheduled or in-progress jobs can be completed")
		return
	}

	now := time.Now()
	job.Status = models.JobStatusCompleted
	job.ActualEnd = &now
	if job.ActualStart == nil {
		job.ActualStart = &job.ScheduledStart
	}

	if err := config.DB.Save(job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// CancelJob cancels a job that hasn't been completed
func CancelJob(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusInvoiced {
		utils.RespondWithError(c, http.StatusConflict, "Completed jobs cannot be cancelled")
		return
	}

	job.Status = models.JobStatusCancelled

	if err := config.DB.Save(job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// GenerateInvoice bills a completed job. The invoice row, its copied line
// items and the job status update are one transaction: either the invoice
// exists with all its items, or nothing was written.
func GenerateInvoice(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	job, ok := loadJob(c, userUUID)
	if !ok {
		return
	}

	if job.Status != models.JobStatusCompleted {
		utils.RespondWithError(c, http.StatusConflict, "Only completed jobs can be invoiced")
		return
	}
	if job.QuoteID == nil {
		utils.RespondWithError(c, http.StatusConflict, "Job has no originating quote to invoice from")
		return
	}

	var quote models.Quote
	if err := config.DB.Preload("Items").
		Where("user_id = ? AND id = ?", userUUID, *job.QuoteID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusConflict, "Originating quote no longer exists")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	invoice := models.Invoice{
		ID:            uuid.New(),
		UserID:        userUUID,
		CustomerID:    job.CustomerID,
		JobID:         &job.ID,
		QuoteID:       job.QuoteID,
		InvoiceNumber: "INV-" + time.Now().Format("20060102") + "-" + utils.GenerateRandomString(6),
		Status:        models.InvoiceStatusPending,
		Amount:        quote.TotalAmount,
		DueDate:       time.Now().AddDate(0, 0, 14),
	}

	var items []models.InvoiceItem
	for _, qi := range quote.Items {
		items = append(items, models.InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			Description: qi.Description,
			Quantity:    qi.Quantity,
			Price:       qi.Price,
		})
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Omit("Items").Create(&invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice items")
			return
		}
	}
	if err := tx.Model(job).Update("status", models.JobStatusInvoiced).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job status")
		return
	}

	tx.Commit()

	invoice.Items = items
	c.JSON(http.StatusCreated, invoice)
}
