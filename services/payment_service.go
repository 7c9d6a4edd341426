// services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"fieldpro-backend/models"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"gorm.io/gorm"
)

// ErrPaymentNotConfigured means no provider credential is set. Distinct from a
// provider API failure, which surfaces as the provider's own error.
var ErrPaymentNotConfigured = errors.New("payment provider not configured")

type PaymentService struct {
	db          *gorm.DB
	api         *client.API // nil when STRIPE_SECRET_KEY is absent
	appURL      string
	devFallback bool

	mu sync.Mutex // serializes issuance; the unique index covers other processes
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	var api *client.API
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		api = &client.API{}
		api.Init(key, nil)
	}

	return &PaymentService{
		db:          db,
		api:         api,
		appURL:      os.Getenv("APP_URL"),
		devFallback: os.Getenv("PAYMENT_DEV_FALLBACK") == "true",
	}
}

// Issue returns the checkout link for an invoice, creating it on first use.
// Issuing twice for the same invoice always yields the same persisted row.
func (s *PaymentService) Issue(invoice *models.Invoice, description string) (*models.PaymentLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing models.PaymentLink
	err := s.db.Where("invoice_id = ?", invoice.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if s.api == nil {
		if !s.devFallback {
			return nil, ErrPaymentNotConfigured
		}
		// Development path: fabricate a placeholder checkout URL
		return s.persist(&models.PaymentLink{
			InvoiceID: invoice.ID,
			URL:       fmt.Sprintf("https://checkout.stripe.com/test/pay/%s", invoice.ID),
		})
	}

	// Hosted product -> price -> payment link triplet
	product, err := s.api.Products.New(&stripe.ProductParams{
		Name: stripe.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	amountMinor := int64(math.Round(invoice.Amount * 100))
	price, err := s.api.Prices.New(&stripe.PriceParams{
		Product:    stripe.String(product.ID),
		UnitAmount: stripe.Int64(amountMinor),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create price: %w", err)
	}

	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(price.ID), Quantity: stripe.Int64(1)},
		},
	}
	if s.appURL != "" {
		params.AfterCompletion = &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String("redirect"),
			Redirect: &stripe.PaymentLinkAfterCompletionRedirectParams{
				URL: stripe.String(fmt.Sprintf("%s/invoices/%s?status=paid", s.appURL, invoice.ID)),
			},
		}
	}

	link, err := s.api.PaymentLinks.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	return s.persist(&models.PaymentLink{
		InvoiceID:      invoice.ID,
		URL:            link.URL,
		ProviderLinkID: link.ID,
	})
}

func (s *PaymentService) persist(link *models.PaymentLink) (*models.PaymentLink, error) {
	if err := s.db.Create(link).Error; err != nil {
		// Unique index on invoice_id: another writer won, reuse its row
		var existing models.PaymentLink
		if ferr := s.db.Where("invoice_id = ?", link.InvoiceID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return link, nil
}
