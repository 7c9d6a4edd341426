// controllers/webhook.go
package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// PaymentWebhook is the payment-confirmation path: the checkout provider
// calls it after a customer pays through a hosted link, and the matching
// invoice moves to paid. The signature is verified when a webhook secret is
// configured and skipped when it is not.
func PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var event stripe.Event
	if secret := os.Getenv("STRIPE_WEBHOOK_SECRET"); secret != "" {
		event, err = webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid webhook signature")
			return
		}
	} else if err := json.Unmarshal(body, &event); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if event.Type != "checkout.session.completed" || event.Data == nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid checkout session payload")
		return
	}

	invoiceID, ok := resolveInvoiceID(&session)
	if !ok {
		log.Printf("Webhook: no invoice for checkout session %s", session.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var invoice models.Invoice
	if err := config.DB.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		log.Printf("Webhook: invoice %s not found", invoiceID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	// Replayed events are acknowledged without a second write
	if invoice.Status == models.InvoiceStatusPaid {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	now := time.Now()
	invoice.Status = models.InvoiceStatusPaid
	invoice.PaidDate = &now
	invoice.PaymentMethod = "card"

	if err := config.DB.Save(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// resolveInvoiceID maps a checkout session back to an invoice, first via the
// stored provider link id, then via session metadata.
func resolveInvoiceID(session *stripe.CheckoutSession) (uuid.UUID, bool) {
	if session.PaymentLink != nil && session.PaymentLink.ID != "" {
		var link models.PaymentLink
		if err := config.DB.Where("provider_link_id = ?", session.PaymentLink.ID).
			First(&link).Error; err == nil {
			return link.InvoiceID, true
		}
	}

	if raw, ok := session.Metadata["invoice_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
	}

	return uuid.Nil, false
}
