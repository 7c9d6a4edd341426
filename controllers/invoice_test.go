package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/routes"
	"fieldpro-backend/services"
)

func TestSendInvoiceFlipsDraftToPending(t *testing.T) {
	db := setupTestDB(t)
	user, token := seedUser(t, db)
	customer := seedCustomer(t, db, user.ID)
	invoice := seedInvoice(t, db, user.ID, customer.ID, models.InvoiceStatusDraft)
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/send", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var sent models.Invoice
	decodeBody(t, w, &sent)
	if sent.Status != models.InvoiceStatusPending {
		t.Errorf("expected pending, got %s", sent.Status)
	}

	// Sending is a status flip only; the skip is still recorded
	var logCount int64
	db.Model(&models.NotificationLog{}).
		Where("customer_id = ? AND kind = ?", customer.ID, "invoice_sent").
		Count(&logCount)
	if logCount != 1 {
		t.Errorf("expected one notification log entry, got %d", logCount)
	}

	w = doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/send", token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 re-sending a pending invoice, got %d", w.Code)
	}
}

func TestMarkInvoicePaid(t *testing.T) {
	db := setupTestDB(t)
	user, token := seedUser(t, db)
	customer := seedCustomer(t, db, user.ID)
	r := routes.SetupRouter()

	pending := seedInvoice(t, db, user.ID, customer.ID, models.InvoiceStatusPending)
	w := doRequest(t, r, http.MethodPost, "/api/invoices/"+pending.ID.String()+"/mark-paid", token,
		map[string]string{"paymentMethod": "bank transfer"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var paid models.Invoice
	decodeBody(t, w, &paid)
	if paid.Status != models.InvoiceStatusPaid {
		t.Errorf("expected paid, got %s", paid.Status)
	}
	if paid.PaidDate == nil {
		t.Errorf("expected paid date to be set")
	}
	if paid.PaymentMethod != "bank transfer" {
		t.Errorf("expected payment method recorded, got %q", paid.PaymentMethod)
	}

	// Draft invoices must be sent before they can be settled
	draft := seedInvoice(t, db, user.ID, customer.ID, models.InvoiceStatusDraft)
	w = doRequest(t, r, http.MethodPost, "/api/invoices/"+draft.ID.String()+"/mark-paid", token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 marking a draft paid, got %d", w.Code)
	}
}

func TestCreatePaymentLinkDevFallback(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("PAYMENT_DEV_FALLBACK", "true")
	user, token := seedUser(t, db)
	customer := seedCustomer(t, db, user.ID)
	invoice := seedInvoice(t, db, user.ID, customer.ID, models.InvoiceStatusPending)
	controllers.Payments = services.NewPaymentService(db)
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payment-link", token,
		map[string]string{"customerEmail": "jane@x.com", "description": "Lawn Mow"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var first struct {
		URL string `json:"url"`
	}
	decodeBody(t, w, &first)
	if !strings.Contains(first.URL, invoice.ID.String()) {
		t.Errorf("expected placeholder link keyed by invoice id, got %q", first.URL)
	}

	// Second call reuses the stored link
	w = doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payment-link", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on reuse, got %d: %s", w.Code, w.Body.String())
	}
	var second struct {
		URL string `json:"url"`
	}
	decodeBody(t, w, &second)
	if second.URL != first.URL {
		t.Errorf("expected the same link on reissue, got %q then %q", first.URL, second.URL)
	}

	var linkCount int64
	db.Model(&models.PaymentLink{}).Where("invoice_id = ?", invoice.ID).Count(&linkCount)
	if linkCount != 1 {
		t.Errorf("expected one persisted link, got %d", linkCount)
	}
}

func TestCreatePaymentLinkNotConfigured(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("PAYMENT_DEV_FALLBACK", "")
	user, token := seedUser(t, db)
	customer := seedCustomer(t, db, user.ID)
	invoice := seedInvoice(t, db, user.ID, customer.ID, models.InvoiceStatusPending)
	controllers.Payments = services.NewPaymentService(db) // no key, no fallback
	r := routes.SetupRouter()

	w := doRequest(t, r, http.MethodPost, "/api/invoices/"+invoice.ID.String()+"/payment-link", token, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without provider credentials, got %d", w.Code)
	}
}
