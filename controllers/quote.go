// controllers/quote.go
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

// QuoteItemInput defines the structure for a quote line item. When a service
// is referenced, description and price default from the catalog entry.
type QuoteItemInput struct {
	ServiceID   *uuid.UUID `json:"serviceId"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity" binding:"omitempty,min=1"`
	Price       *float64   `json:"price" binding:"omitempty,min=0"`
}

// CreateQuoteInput defines the expected JSON structure for creating a quote
type CreateQuoteInput struct {
	CustomerID uuid.UUID        `json:"customerId" binding:"required"`
	Items      []QuoteItemInput `json:"items" binding:"required,min=1"`
	ValidUntil *time.Time       `json:"validUntil"`
	Notes      string           `json:"notes"`
}

// UpdateQuoteInput defines the expected JSON structure for updating a quote
type UpdateQuoteInput struct {
	Items      *[]QuoteItemInput `json:"items"`
	ValidUntil *time.Time        `json:"validUntil"`
	Notes      *string           `json:"notes"`
}

// buildQuoteItems resolves inputs against the service catalog. The caller's
// total is never trusted; the stored amount is the sum computed here.
func buildQuoteItems(userUUID uuid.UUID, inputs []QuoteItemInput) ([]models.QuoteItem, error) {
	var items []models.QuoteItem

	for _, in := range inputs {
		item := models.QuoteItem{
			ID:          uuid.New(),
			ServiceID:   in.ServiceID,
			Description: in.Description,
			Quantity:    in.Quantity,
		}
		if in.Quantity == 0 {
			item.Quantity = 1
		}

		if in.ServiceID != nil {
			var service models.Service
			if err := config.DB.Where("user_id = ? AND id = ?", userUUID, *in.ServiceID).
				First(&service).Error; err != nil {
				return nil, err
			}
			if item.Description == "" {
				item.Description = service.Name
			}
			if in.Price != nil {
				item.Price = *in.Price
			} else {
				item.Price = service.Price
			}
		} else {
			if item.Description == "" {
				return nil, errors.New("item description is required")
			}
			if in.Price == nil {
				return nil, errors.New("item price is required")
			}
			item.Price = *in.Price
		}

		items = append(items, item)
	}

	return items, nil
}

// CreateQuote creates a new quote with its line items
func CreateQuote(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var input CreateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate customer exists for this user
	var customer models.Customer
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	items, err := buildQuoteItems(userUUID, input.Items)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	quote := models.Quote{
		ID:         uuid.New(),
		UserID:     userUUID,
		CustomerID: input.CustomerID,
		Status:     models.QuoteStatusDraft,
		ValidUntil: input.ValidUntil,
		Notes:      input.Notes,
		Items:      items,
	}
	quote.TotalAmount = quote.Total()

	if err := config.DB.Create(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create quote")
		return
	}

	c.JSON(http.StatusCreated, quote)
}

// GetQuotes retrieves all quotes for the authenticated user
func GetQuotes(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var quotes []models.Quote
	if err := config.DB.Preload("Items").
		Where("user_id = ?", userUUID).
		Find(&quotes).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve quotes")
		return
	}

	c.JSON(http.StatusOK, quotes)
}

// GetQuote retrieves a specific quote with its items
func GetQuote(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var quote models.Quote
	if err := config.DB.Preload("Items").
		Where("user_id = ? AND id = ?", userUUID, quoteUUID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, quote)
}

// UpdateQuote updates a quote. Replacing the items recomputes the total in the
// same transaction, so the stored amount can never diverge from the lines.
func UpdateQuote(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var input UpdateQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var quote models.Quote
	if err := config.DB.Preload("Items").
		Where("user_id = ? AND id = ?", userUUID, quoteUUID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if quote.Status != models.QuoteStatusDraft && quote.Status != models.QuoteStatusSent {
		utils.RespondWithError(c, http.StatusConflict, "Only draft or sent quotes can be edited")
		return
	}

	if input.ValidUntil != nil {
		quote.ValidUntil = input.ValidUntil
	}
	if input.Notes != nil {
		quote.Notes = *input.Notes
	}

	var newItems []models.QuoteItem
	if input.Items != nil {
		if len(*input.Items) == 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "A quote needs at least one item")
			return
		}
		newItems, err = buildQuoteItems(userUUID, *input.Items)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusBadRequest, "Service not found")
			} else {
				utils.RespondWithError(c, http.StatusBadRequest, err.Error())
			}
			return
		}
		for i := range newItems {
			newItems[i].QuoteID = quote.ID
		}
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if newItems != nil {
		if err := tx.Unscoped().Where("quote_id = ?", quote.ID).
			Delete(&models.QuoteItem{}).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote items")
			return
		}
		if err := tx.Create(&newItems).Error; err != nil {
			tx.Rollback()
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote items")
			return
		}
		quote.Items = newItems
	}

	quote.TotalAmount = quote.Total()

	if err := tx.Omit("Items").Save(&quote).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, quote)
}

// DeleteQuote deletes a quote and its items
func DeleteQuote(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Where("user_id = ? AND id = ?", userUUID, quoteUUID).
		Delete(&models.Quote{})
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		return
	}
	if err := tx.Where("quote_id = ?", quoteUUID).Delete(&models.QuoteItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete quote items")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Quote deleted successfully"})
}

// SendQuote marks a draft quote as sent. No email goes out; "sending" is a
// status flip plus an optional SMS nudge.
func SendQuote(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var quote models.Quote
	if err := config.DB.Where("user_id = ? AND id = ?", userUUID, quoteUUID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if quote.Status != models.QuoteStatusDraft {
		utils.RespondWithError(c, http.StatusConflict, "Only draft quotes can be sent")
		return
	}

	quote.Status = models.QuoteStatusSent
	if err := config.DB.Save(&quote).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send quote")
		return
	}

	if Notifier != nil {
		var customer models.Customer
		if err := config.DB.First(&customer, "id = ?", quote.CustomerID).Error; err == nil {
			Notifier.QuoteSent(userUUID, &customer, &quote)
		}
	}

	c.JSON(http.StatusOK, quote)
}

// ConvertQuote turns a sent quote into a scheduled job. The job insert and the
// quote status update happen in one transaction, so a failure leaves neither.
func ConvertQuote(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	quoteUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var quote models.Quote
	if err := config.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("quote_items.created_at ASC")
	}).Where("user_id = ? AND id = ?", userUUID, quoteUUID).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Quote not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if quote.Status != models.QuoteStatusSent {
		utils.RespondWithError(c, http.StatusConflict, "Only sent quotes can be converted to a job")
		return
	}
	if len(quote.Items) == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Quote has no items to convert")
		return
	}

	now := time.Now()
	job := models.Job{
		ID:          uuid.New(),
		UserID:      userUUID,
		CustomerID:  quote.CustomerID,
		QuoteID:     &quote.ID,
		ServiceName: quote.Items[0].Description, // first line names the job
		Status:      models.JobStatusScheduled,
		// Placeholders until the job is scheduled for real
		ScheduledStart: now,
		ScheduledEnd:   now,
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&job).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create job")
		return
	}
	if err := tx.Model(&quote).Update("status", models.QuoteStatusApproved).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update quote status")
		return
	}

	tx.Commit()

	c.JSON(http.StatusCreated, job)
}
