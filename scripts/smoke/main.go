// Package main runs smoke tests of the booking and payment flow against a
// live API server, driving the same controllers the pages use.
//
// Scenarios:
//   - list: the appointment list loads and renders cards
//   - book: department/doctor selection, submission, handoff record
//   - cancel: booked appointments can be cancelled, terminal ones cannot
//   - payment-guard: the payment page redirects without a pending booking
//   - payment: the full three-step handshake (needs STRIPE_SECRET_KEY in
//     test mode)
//
// Usage:
//
//	API_BASE_URL=http://localhost:8080 go run scripts/smoke/main.go [scenario]
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/medicore/booking-platform/internal/config"
	"github.com/medicore/booking-platform/internal/directory"
	"github.com/medicore/booking-platform/internal/flow"
	"github.com/medicore/booking-platform/internal/payments"
	"github.com/medicore/booking-platform/pkg/logging"
)

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight check context for a single scenario.
type T struct {
	name   string
	passed int
	failed int
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...any) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

var (
	cfg    *appconfig.Config
	client *flow.APIClient
	logger *logging.Logger
)

func main() {
	_ = godotenv.Load()
	cfg = appconfig.Load()

	apiBase := os.Getenv("API_BASE_URL")
	if apiBase == "" {
		apiBase = cfg.PublicBaseURL
	}
	logger = logging.New("error")
	client = flow.NewAPIClient(apiBase, logger)

	scenarios := []scenario{
		{"list", runList},
		{"book", runBook},
		{"cancel", runCancel},
		{"payment-guard", runPaymentGuard},
		{"payment", runPayment},
	}

	only := ""
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	var passed, failed int
	for _, sc := range scenarios {
		if only != "" && sc.Name != only {
			continue
		}
		fmt.Printf("==> %s\n", sc.Name)
		t := &T{name: sc.Name}
		sc.Fn(t)
		passed += t.passed
		failed += t.failed
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// newHandoffStore uses Redis when REDIS_ADDR is set, exercising the same
// store the deployed frontend hosts share; otherwise it falls back to an
// in-process store.
func newHandoffStore() flow.HandoffStore {
	if cfg.RedisAddr == "" {
		return flow.NewMemoryHandoffStore()
	}
	opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return flow.NewRedisHandoffStore(redis.NewClient(opts), cfg.HandoffTTL)
}

func runList(t *T) {
	c := flow.NewListingController(client, logger)
	err := c.Load(context.Background())
	t.check("list loads", err == nil)
	t.check("list is not in the failed state", c.State() != flow.ListingFailed)
}

func bookOne(t *T, session string) (string, flow.HandoffStore, *flow.BookingController) {
	store := newHandoffStore()
	c := flow.NewBookingController(directory.Default(), client, store, session, logger)

	if _, err := c.SelectDepartment("Cardiology"); err != nil {
		t.fatalf("select department: %v", err)
		return "", nil, nil
	}
	if _, err := c.SelectDoctor("Dr. Sarah Johnson"); err != nil {
		t.fatalf("select doctor: %v", err)
		return "", nil, nil
	}

	date := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	next, err := c.Submit(context.Background(), flow.BookingForm{
		PatientName: "Smoke Test",
		Email:       fmt.Sprintf("smoke+%d@example.com", time.Now().UnixNano()),
		Phone:       "555-0199",
		Date:        date,
		Time:        "14:30",
		Symptoms:    "smoke test booking",
	})
	if err != nil {
		t.fatalf("submit: %v", err)
		return "", nil, nil
	}
	t.check("submit navigates to payment page", next == flow.PaymentPagePath)

	h, err := store.Get(context.Background(), session)
	if err != nil {
		t.fatalf("handoff: %v", err)
		return "", nil, nil
	}
	t.check("handoff carries an appointment id", h.AppointmentID != "")
	t.check("handoff binds the selected doctor's fee", h.Draft.ConsultationFee == 150)
	return h.AppointmentID, store, c
}

func runBook(t *T) {
	bookOne(t, "smoke-book")
}

func runCancel(t *T) {
	id, _, _ := bookOne(t, "smoke-cancel")
	if id == "" {
		return
	}

	c := flow.NewListingController(client, logger)
	if err := c.Load(context.Background()); err != nil {
		t.fatalf("load list: %v", err)
		return
	}

	err := c.Cancel(context.Background(), id, true)
	t.check("cancel succeeds for a pending appointment", err == nil)

	err = c.Cancel(context.Background(), id, true)
	t.check("second cancel is rejected", err != nil)
}

func runPaymentGuard(t *T) {
	store := newHandoffStore()
	c := flow.NewPaymentController(client, nil, store, "smoke-guard", logger)

	redirect, err := c.Start(context.Background())
	t.check("missing handoff is reported", err != nil)
	t.check("redirect targets the booking page",
		redirect != nil && redirect.Path == flow.BookingPagePath)
	t.check("redirect is delayed", redirect != nil && redirect.After == flow.MissingHandoffRedirectDelay)
	t.check("no summary is rendered", c.Summary() == nil)
}

// testCardProvider confirms intents directly against Stripe's test mode,
// standing in for the hosted card widget.
type testCardProvider struct {
	stripe *payments.StripeClient
}

func (p *testCardProvider) ConfirmCardPayment(ctx context.Context, clientSecret string, _ flow.BillingDetails) (*flow.ProviderIntent, error) {
	intentID, _, found := strings.Cut(clientSecret, "_secret_")
	if !found {
		return nil, fmt.Errorf("malformed client secret")
	}
	intent, err := p.stripe.ConfirmIntent(ctx, intentID, "pm_card_visa")
	if err != nil {
		return nil, err
	}
	return &flow.ProviderIntent{ID: intent.ID, Status: intent.Status}, nil
}

func runPayment(t *T) {
	secretKey := cfg.StripeSecretKey
	if secretKey == "" {
		fmt.Println("    SKIP: STRIPE_SECRET_KEY not set")
		return
	}

	session := "smoke-payment"
	id, store, _ := bookOne(t, session)
	if id == "" {
		return
	}

	provider := &testCardProvider{stripe: payments.NewStripeClient(secretKey, logger)}
	c := flow.NewPaymentController(client, provider, store, session, logger)
	if _, err := c.Start(context.Background()); err != nil {
		t.fatalf("start payment page: %v", err)
		return
	}
	t.check("summary is rendered", c.Summary() != nil)

	redirect, err := c.Pay(context.Background())
	if err != nil {
		t.fatalf("pay: %v", err)
		return
	}
	t.check("redirect targets the success page",
		redirect != nil && strings.HasPrefix(redirect.Path, "/success?"))
	t.check("redirect carries the appointment id", strings.Contains(redirect.Path, "id="+id))

	_, err = store.Get(context.Background(), session)
	t.check("handoff is cleared after payment", err != nil)
}
