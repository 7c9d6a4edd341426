package services_test

import (
	"testing"
	"time"

	"fieldpro-backend/models"
	"fieldpro-backend/services"

	"github.com/google/uuid"
)

func TestSweepOnceMarksOverdueInvoices(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	userID := uuid.New()
	customerID := uuid.New()

	pastDue := models.Invoice{
		UserID: userID, CustomerID: customerID,
		InvoiceNumber: "INV-20240530-AAAAAA",
		Amount:        100, Status: models.InvoiceStatusPending,
		DueDate: time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
	}
	dueToday := models.Invoice{
		UserID: userID, CustomerID: customerID,
		InvoiceNumber: "INV-20240601-BBBBBB",
		Amount:        100, Status: models.InvoiceStatusPending,
		DueDate: time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
	}
	alreadyPaid := models.Invoice{
		UserID: userID, CustomerID: customerID,
		InvoiceNumber: "INV-20240520-CCCCCC",
		Amount:        100, Status: models.InvoiceStatusPaid,
		DueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, inv := range []*models.Invoice{&pastDue, &dueToday, &alreadyPaid} {
		if err := db.Create(inv).Error; err != nil {
			t.Fatalf("seed invoice: %v", err)
		}
	}

	overdue, _ := services.NewStatusSweeper(db).SweepOnce(now)
	if overdue != 1 {
		t.Errorf("expected 1 overdue invoice, got %d", overdue)
	}

	var reloaded models.Invoice
	db.First(&reloaded, "id = ?", pastDue.ID)
	if reloaded.Status != models.InvoiceStatusOverdue {
		t.Errorf("past-due invoice: expected overdue, got %s", reloaded.Status)
	}
	reloaded = models.Invoice{}
	db.First(&reloaded, "id = ?", dueToday.ID)
	if reloaded.Status != models.InvoiceStatusPending {
		t.Errorf("invoice due today should stay pending, got %s", reloaded.Status)
	}
	reloaded = models.Invoice{}
	db.First(&reloaded, "id = ?", alreadyPaid.ID)
	if reloaded.Status != models.InvoiceStatusPaid {
		t.Errorf("paid invoice should not change, got %s", reloaded.Status)
	}
}

func TestSweepOnceExpiresQuotes(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	userID := uuid.New()
	customerID := uuid.New()
	stale := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	staleDraft := models.Quote{
		UserID: userID, CustomerID: customerID,
		Status: models.QuoteStatusDraft, TotalAmount: 50, ValidUntil: &stale,
	}
	staleSent := models.Quote{
		UserID: userID, CustomerID: customerID,
		Status: models.QuoteStatusSent, TotalAmount: 50, ValidUntil: &stale,
	}
	staleApproved := models.Quote{
		UserID: userID, CustomerID: customerID,
		Status: models.QuoteStatusApproved, TotalAmount: 50, ValidUntil: &stale,
	}
	freshSent := models.Quote{
		UserID: userID, CustomerID: customerID,
		Status: models.QuoteStatusSent, TotalAmount: 50, ValidUntil: &fresh,
	}
	openEnded := models.Quote{
		UserID: userID, CustomerID: customerID,
		Status: models.QuoteStatusSent, TotalAmount: 50,
	}
	for _, q := range []*models.Quote{&staleDraft, &staleSent, &staleApproved, &freshSent, &openEnded} {
		if err := db.Create(q).Error; err != nil {
			t.Fatalf("seed quote: %v", err)
		}
	}

	_, expired := services.NewStatusSweeper(db).SweepOnce(now)
	if expired != 2 {
		t.Errorf("expected 2 expired quotes, got %d", expired)
	}

	want := map[uuid.UUID]models.QuoteStatus{
		staleDraft.ID:    models.QuoteStatusExpired,
		staleSent.ID:     models.QuoteStatusExpired,
		staleApproved.ID: models.QuoteStatusApproved,
		freshSent.ID:     models.QuoteStatusSent,
		openEnded.ID:     models.QuoteStatusSent,
	}
	for id, status := range want {
		var q models.Quote
		db.First(&q, "id = ?", id)
		if q.Status != status {
			t.Errorf("quote %s: expected %s, got %s", id, status, q.Status)
		}
	}
}
