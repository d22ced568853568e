package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/smartassist/smartassist-api/config"
	"github.com/smartassist/smartassist-api/metrics"
	"github.com/smartassist/smartassist-api/models"
	"github.com/smartassist/smartassist-api/utils"
)

var (
	// ErrInvalidAmount is returned for amounts below one minor unit before any processor call
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrPaymentNotConfigured is returned when the selected processor has no credentials
	ErrPaymentNotConfigured = errors.New("payment processor is not configured")
)

// PaymentIntentRequest asks the processor to prepare a charge
type PaymentIntentRequest struct {
	Amount    float64
	BookingID string
}

// PaymentIntent is the processor's handle for a pending charge
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentService creates charges and reads back their state
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	PaymentStatus(ctx context.Context, reference string) (string, error)
}

// paymentProvider is one concrete processor
type paymentProvider interface {
	name() string
	createIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	status(ctx context.Context, reference string) (string, error)
}

// LazyPaymentService builds its processor client on first use
type LazyPaymentService struct {
	providerName string
	factory      func() (paymentProvider, error)

	once     sync.Once
	provider paymentProvider
	initErr  error
}

// NewPaymentService selects Stripe or Midtrans from configuration. No client is
// created until the first call.
func NewPaymentService(cfg *config.Config) *LazyPaymentService {
	provider := cfg.PaymentProvider
	currency := cfg.PaymentCurrency
	stripeKey := cfg.StripeSecretKey
	midtransKey := cfg.MidtransServerKey
	midtransEnv := cfg.MidtransEnv

	return newLazyPaymentService(provider, func() (paymentProvider, error) {
		switch provider {
		case "midtrans":
			if midtransKey == "" {
				return nil, ErrPaymentNotConfigured
			}
			return newMidtransProvider(midtransKey, midtransEnv), nil
		default:
			if stripeKey == "" {
				return nil, ErrPaymentNotConfigured
			}
			return newStripeProvider(stripeKey, currency, ""), nil
		}
	})
}

func newLazyPaymentService(name string, factory func() (paymentProvider, error)) *LazyPaymentService {
	return &LazyPaymentService{providerName: name, factory: factory}
}

func (s *LazyPaymentService) get() (paymentProvider, error) {
	s.once.Do(func() {
		s.provider, s.initErr = s.factory()
	})
	return s.provider, s.initErr
}

// CreatePaymentIntent validates the amount, then asks the processor for an intent
func (s *LazyPaymentService) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	if utils.ToMinorUnits(req.Amount) < 1 {
		return nil, ErrInvalidAmount
	}

	provider, err := s.get()
	if err != nil {
		return nil, err
	}

	intent, err := provider.createIntent(ctx, req)
	metrics.RecordPaymentCall(provider.name(), "create_intent", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intent, nil
}

// PaymentStatus maps the processor's state for reference to unpaid, paid or refunded
func (s *LazyPaymentService) PaymentStatus(ctx context.Context, reference string) (string, error) {
	provider, err := s.get()
	if err != nil {
		return "", err
	}

	status, err := provider.status(ctx, reference)
	metrics.RecordPaymentCall(provider.name(), "status", err)
	if err != nil {
		return "", fmt.Errorf("failed to fetch payment status: %w", err)
	}
	return status, nil
}

// stripeProvider charges through Stripe PaymentIntents
type stripeProvider struct {
	api      *client.API
	currency string
}

// newStripeProvider builds a Stripe client with network retries disabled. baseURL
// overrides the API endpoint when non-empty.
func newStripeProvider(key, currency, baseURL string) *stripeProvider {
	backendConfig := &stripe.BackendConfig{
		LeveledLogger:     logrus.StandardLogger(),
		MaxNetworkRetries: stripe.Int64(0),
	}
	if baseURL != "" {
		backendConfig.URL = stripe.String(baseURL)
	}

	sc := &client.API{}
	sc.Init(key, stripe.NewBackendsWithConfig(backendConfig))
	return &stripeProvider{api: sc, currency: currency}
}

func (p *stripeProvider) name() string { return "stripe" }

func (p *stripeProvider) createIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(utils.ToMinorUnits(req.Amount)),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.BookingID != "" {
		params.AddMetadata("booking_id", req.BookingID)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (p *stripeProvider) status(ctx context.Context, reference string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := p.api.PaymentIntents.Get(reference, params)
	if err != nil {
		return "", err
	}
	return stripeStatus(pi), nil
}

func stripeStatus(pi *stripe.PaymentIntent) string {
	if pi.LatestCharge != nil && pi.LatestCharge.Refunded {
		return models.PaymentStatusRefunded
	}
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusUnpaid
}

// midtransProvider charges through Midtrans Snap and reads status from Core API
type midtransProvider struct {
	snap *snap.Client
	core *coreapi.Client
	now  func() time.Time
}

func newMidtransProvider(serverKey, env string) *midtransProvider {
	environment := midtrans.Sandbox
	if strings.EqualFold(env, "production") {
		environment = midtrans.Production
	}

	var s snap.Client
	s.New(serverKey, environment)

	var c coreapi.Client
	c.New(serverKey, environment)

	return &midtransProvider{snap: &s, core: &c, now: time.Now}
}

func (p *midtransProvider) name() string { return "midtrans" }

func (p *midtransProvider) createIntent(_ context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	gross := utils.ToWholeUnits(req.Amount)
	if gross < 1 {
		return nil, ErrInvalidAmount
	}

	orderID := midtransOrderID(req.BookingID, p.now())
	resp, merr := p.snap.CreateTransaction(&snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
	})
	if merr != nil {
		return nil, errors.New(merr.Error())
	}
	return &PaymentIntent{ID: orderID, ClientSecret: resp.Token}, nil
}

func (p *midtransProvider) status(_ context.Context, reference string) (string, error) {
	resp, merr := p.core.CheckTransaction(reference)
	if merr != nil {
		return "", errors.New(merr.Error())
	}
	return midtransStatus(resp.TransactionStatus), nil
}

// midtransOrderID derives a unique order id; Midtrans rejects reused ids
func midtransOrderID(bookingID string, now time.Time) string {
	if bookingID == "" {
		bookingID = "ORDER"
	}
	return fmt.Sprintf("%s-%d", bookingID, now.Unix())
}

func midtransStatus(transactionStatus string) string {
	switch transactionStatus {
	case "capture", "settlement":
		return models.PaymentStatusPaid
	case "refund", "partial_refund":
		return models.PaymentStatusRefunded
	default:
		return models.PaymentStatusUnpaid
	}
}
