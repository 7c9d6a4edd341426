// controllers/invoice.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateInvoiceInput defines the expected JSON structure for updating an invoice
type UpdateInvoiceInput struct {
	DueDate *time.Time `json:"dueDate"`
	Notes   *string    `json:"notes"`
}

// MarkPaidInput records how the money actually arrived
type MarkPaidInput struct {
	PaymentMethod string `json:"paymentMethod"`
}

// PaymentLinkInput mirrors the checkout collaborator's request shape. The
// email is accepted for parity with the collaborator API but the provider
// call doesn't need it.
type PaymentLinkInput struct {
	CustomerEmail string `json:"customerEmail"`
	Description   string `json:"description"`
}

func loadInvoice(c *gin.Context, userUUID uuid.UUID, preloadItems bool) (*models.Invoice, bool) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return nil, false
	}

	query := config.DB.Where("user_id = ? AND id = ?", userUUID, invoiceUUID)
	if preloadItems {
		query = query.Preload("Items")
	}

	var invoice models.Invoice
	if err := query.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &invoice, true
}

// GetInvoices retrieves all invoices for the authenticated user
func GetInvoices(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	var invoices []models.Invoice
	if err := config.DB.Preload("Items").
		Where("user_id = ?", userUUID).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice with its items
func GetInvoice(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	invoice, ok := loadInvoice(c, userUUID, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice updates an invoice's due date or notes
func UpdateInvoice(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	invoice, ok := loadInvoice(c, userUUID, false)
	if !ok {
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.DueDate != nil {
		invoice.DueDate = *input.DueDate
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}

	if err := config.DB.Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice deletes an invoice and its items
func DeleteInvoice(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	result := tx.Where("user_id = ? AND id = ?", userUUID, invoiceUUID).
		Delete(&models.Invoice{})
	if result.Error != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		return
	}
	if err := tx.Where("invoice_id = ?", invoiceUUID).Delete(&models.InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice items")
		return
	}

	tx.Commit()

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// SendInvoice marks a draft invoice as pending. As with quotes, no email goes
// out; the flip just makes the invoice collectable.
func SendInvoice(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	invoice, ok := loadInvoice(c, userUUID, false)
	if !ok {
		return
	}

	if invoice.Status != models.InvoiceStatusDraft {
		utils.RespondWithError(c, http.StatusConflict, "Only draft invoices can be sent")
		return
	}

	invoice.Status = models.InvoiceStatusPending
	if err := config.DB.Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send invoice")
		return
	}

	if Notifier != nil {
		var customer models.Customer
		if err := config.DB.First(&customer, "id = ?", invoice.CustomerID).Error; err == nil {
			Notifier.InvoiceSent(userUUID, &customer, invoice)
		}
	}

	c.JSON(http.StatusOK, invoice)
}

// MarkInvoicePaid settles an invoice administratively, e.g. for cash or bank
// transfers confirmed outside the checkout provider.
func MarkInvoicePaid(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	invoice, ok := loadInvoice(c, userUUID, false)
	if !ok {
		return
	}

	var input MarkPaidInput
	_ = c.ShouldBindJSON(&input) // body optional

	if invoice.Status == models.InvoiceStatusPaid {
		c.JSON(http.StatusOK, invoice)
		return
	}
	if invoice.Status != models.InvoiceStatusPending && invoice.Status != models.InvoiceStatusOverdue {
		utils.RespondWithError(c, http.StatusConflict, "Only pending or overdue invoices can be marked paid")
		return
	}

	now := time.Now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidDate = &now
	invoice.PaymentMethod = input.PaymentMethod
	if invoice.PaymentMethod == "" {
		invoice.PaymentMethod = "manual"
	}

	if err := config.DB.Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to mark invoice paid")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// CreatePaymentLink returns the hosted checkout URL for an invoice, creating
// it on first call and reusing the stored link afterwards.
func CreatePaymentLink(c *gin.Context) {
	userUUID, ok := tenantID(c)
	if !ok {
		return
	}

	invoice, ok := loadInvoice(c, userUUID, false)
	if !ok {
		return
	}

	if invoice.Status == models.InvoiceStatusPaid || invoice.Status == models.InvoiceStatusCancelled {
		utils.RespondWithError(c, http.StatusConflict, "Invoice is not collectable")
		return
	}

	var input PaymentLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		input = PaymentLinkInput{}
	}

	description := input.Description
	if description == "" {
		description = "Invoice " + invoice.InvoiceNumber
	}

	if Payments == nil {
		Payments = services.NewPaymentService(config.DB)
	}

	link, err := Payments.Issue(invoice, description)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotConfigured) {
			utils.RespondWithError(c, http.StatusServiceUnavailable, "Online payments are not configured")
		} else {
			utils.RespondWithError(c, http.StatusBadGateway, "Failed to create payment link")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": link.URL})
}
