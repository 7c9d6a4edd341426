package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/controllers"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.PasswordReset{}, &models.Customer{}, &models.Service{},
		&models.Quote{}, &models.QuoteItem{}, &models.Job{},
		&models.Invoice{}, &models.InvoiceItem{}, &models.PaymentLink{}, &models.NotificationLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	config.DB = db
	controllers.Notifier = services.NewNotifierService(db) // unconfigured, logs skips
	controllers.Payments = services.NewPaymentService(db)
	return db
}

func seedUser(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()
	user := models.User{
		Email:        fmt.Sprintf("owner-%s@test.local", uuid.NewString()[:8]),
		Password:     "Password1",
		Name:         "Owner",
		BusinessName: "Greenline Services",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := utils.GenerateToken(user.ID.String())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return user, token
}

func seedCustomer(t *testing.T, db *gorm.DB, userID uuid.UUID) models.Customer {
	t.Helper()
	customer := models.Customer{
		UserID:   userID,
		Name:     "Jane Doe",
		Email:    "jane@x.com",
		IsActive: true,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func seedService(t *testing.T, db *gorm.DB, userID uuid.UUID) models.Service {
	t.Helper()
	service := models.Service{
		UserID:   userID,
		Name:     "Lawn Mow",
		Price:    50.00,
		Duration: 60,
		IsActive: true,
	}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return service
}

func seedQuote(t *testing.T, db *gorm.DB, userID, customerID uuid.UUID, status models.QuoteStatus) models.Quote {
	t.Helper()
	quote := models.Quote{
		UserID:     userID,
		CustomerID: customerID,
		Status:     status,
		Items: []models.QuoteItem{
			{Description: "Lawn Mow", Quantity: 1, Price: 50.00},
		},
	}
	quote.TotalAmount = quote.Total()
	if err := db.Create(&quote).Error; err != nil {
		t.Fatalf("seed quote: %v", err)
	}
	return quote
}

func seedJob(t *testing.T, db *gorm.DB, userID, customerID uuid.UUID, quoteID *uuid.UUID, status models.JobStatus) models.Job {
	t.Helper()
	now := time.Now()
	job := models.Job{
		UserID:         userID,
		CustomerID:     customerID,
		QuoteID:        quoteID,
		ServiceName:    "Lawn Mow",
		Status:         status,
		ScheduledStart: now,
		ScheduledEnd:   now,
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func seedInvoice(t *testing.T, db *gorm.DB, userID, customerID uuid.UUID, status models.InvoiceStatus) models.Invoice {
	t.Helper()
	invoice := models.Invoice{
		UserID:        userID,
		CustomerID:    customerID,
		InvoiceNumber: "INV-TEST-" + utils.GenerateRandomString(6),
		Status:        status,
		Amount:        50.00,
		DueDate:       time.Now().AddDate(0, 0, 14),
		Items: []models.InvoiceItem{
			{Description: "Lawn Mow", Quantity: 1, Price: 50.00},
		},
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return invoice
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}
