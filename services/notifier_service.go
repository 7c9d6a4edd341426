// services/notifier_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// NotifierService sends best-effort SMS when a quote or invoice is sent.
// Delivery never fails the calling request; every attempt is logged.
type NotifierService struct {
	db     *gorm.DB
	client *twilio.RestClient // nil when Twilio is not configured
	from   string
}

func NewNotifierService(db *gorm.DB) *NotifierService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	var client *twilio.RestClient
	if accountSid != "" && authToken != "" {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}

	return &NotifierService{
		db:     db,
		client: client,
		from:   os.Getenv("TWILIO_PHONE_NUMBER"),
	}
}

func (s *NotifierService) QuoteSent(userID uuid.UUID, customer *models.Customer, quote *models.Quote) {
	message := fmt.Sprintf("Hi %s, your quote for $%.2f is ready. Reply or call us to approve it.",
		customer.Name, quote.TotalAmount)
	s.notify(userID, customer, "quote_sent", message)
}

func (s *NotifierService) InvoiceSent(userID uuid.UUID, customer *models.Customer, invoice *models.Invoice) {
	message := fmt.Sprintf("Hi %s, invoice %s for $%.2f is due on %s.",
		customer.Name, invoice.InvoiceNumber, invoice.Amount, invoice.DueDate.Format("Jan 2, 2006"))
	s.notify(userID, customer, "invoice_sent", message)
}

func (s *NotifierService) notify(userID uuid.UUID, customer *models.Customer, kind, message string) {
	entry := models.NotificationLog{
		UserID:     userID,
		CustomerID: customer.ID,
		Kind:       kind,
		Channel:    "sms",
		Message:    message,
		SentAt:     time.Now(),
	}

	switch {
	case s.client == nil || s.from == "":
		entry.Status = "skipped"
		entry.ErrorMessage = "twilio not configured"
	case customer.Phone == "":
		entry.Status = "skipped"
		entry.ErrorMessage = "customer has no phone number"
	default:
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(customer.Phone)
		params.SetFrom(s.from)
		params.SetBody(message)

		if _, err := s.client.Api.CreateMessage(params); err != nil {
			log.Printf("Failed to send %s message to %s: %v", kind, customer.Phone, err)
			entry.Status = "failed"
			entry.ErrorMessage = err.Error()
		} else {
			entry.Status = "sent"
		}
	}

	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to log notification for customer %s: %v", customer.ID, err)
	}
}
