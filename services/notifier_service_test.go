package services_test

import (
	"testing"
	"time"

	"fieldpro-backend/models"
	"fieldpro-backend/services"

	"github.com/google/uuid"
)

func TestNotifierSkipsWhenUnconfigured(t *testing.T) {
	db := openTestDB(t)
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_PHONE_NUMBER", "")

	userID := uuid.New()
	customer := models.Customer{
		UserID: userID, Name: "Jane Doe", Phone: "+15550001111",
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	quote := models.Quote{
		UserID: userID, CustomerID: customer.ID,
		Status: models.QuoteStatusSent, TotalAmount: 75.50,
	}
	if err := db.Create(&quote).Error; err != nil {
		t.Fatalf("seed quote: %v", err)
	}

	services.NewNotifierService(db).QuoteSent(userID, &customer, &quote)

	var entry models.NotificationLog
	if err := db.Where("user_id = ?", userID).First(&entry).Error; err != nil {
		t.Fatalf("load log entry: %v", err)
	}
	if entry.Status != "skipped" {
		t.Errorf("expected skipped, got %s", entry.Status)
	}
	if entry.ErrorMessage != "twilio not configured" {
		t.Errorf("unexpected error message %q", entry.ErrorMessage)
	}
	if entry.Kind != "quote_sent" || entry.Channel != "sms" {
		t.Errorf("unexpected kind/channel %s/%s", entry.Kind, entry.Channel)
	}
}

func TestNotifierSkipsCustomerWithoutPhone(t *testing.T) {
	db := openTestDB(t)
	t.Setenv("TWILIO_ACCOUNT_SID", "AC_test")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15550009999")

	userID := uuid.New()
	customer := models.Customer{UserID: userID, Name: "No Phone"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	invoice := models.Invoice{
		UserID: userID, CustomerID: customer.ID,
		InvoiceNumber: "INV-20240601-DDDDDD",
		Amount:        200, Status: models.InvoiceStatusPending,
		DueDate: time.Now().Add(14 * 24 * time.Hour),
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	services.NewNotifierService(db).InvoiceSent(userID, &customer, &invoice)

	var entry models.NotificationLog
	if err := db.Where("user_id = ?", userID).First(&entry).Error; err != nil {
		t.Fatalf("load log entry: %v", err)
	}
	if entry.Status != "skipped" {
		t.Errorf("expected skipped, got %s", entry.Status)
	}
	if entry.ErrorMessage != "customer has no phone number" {
		t.Errorf("unexpected error message %q", entry.ErrorMessage)
	}
}
