// Package flow implements the patient-facing booking and payment flow as
// three page-scoped controllers: the appointment list, the booking form,
// and the payment page. Each controller is an explicit state object built
// at page initialization; render methods are pure views over that state.
// Controllers talk to the booking API through the Backend interface and to
// the hosted card widget through the CardProvider interface.
package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medicore/booking-platform/pkg/logging"
)

// Backend is the booking API as the pages consume it. Business failures
// (success:false responses) surface as errors carrying the backend message.
type Backend interface {
	ListAppointments(ctx context.Context) ([]Appointment, error)
	BookAppointment(ctx context.Context, draft Draft) (appointmentID string, err error)
	CancelAppointment(ctx context.Context, id string) error
	StripeKey(ctx context.Context) (string, error)
	CreateIntent(ctx context.Context, appointmentID, paymentMethod string) (clientSecret string, err error)
	ConfirmPayment(ctx context.Context, paymentIntentID string) error
}

// Appointment is the client-side view of a booked appointment.
type Appointment struct {
	ID         string
	Status     string
	Patient    string
	DoctorName string
	Department string
	DateTime   time.Time
	Fee        int64
	Symptoms   string
	Notes      string
}

// Draft is an appointment submission assembled by the booking form.
// Date and time travel as separate fields; the backend combines them.
type Draft struct {
	PatientName     string `json:"patientName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address,omitempty"`
	MedicalHistory  string `json:"medicalHistory,omitempty"`
	DoctorName      string `json:"doctorName"`
	Department      string `json:"department"`
	AppointmentDate string `json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string `json:"appointmentTime"` // HH:MM
	ConsultationFee int64  `json:"consultationFee"`
	Symptoms        string `json:"symptoms,omitempty"`
}

// APIClient is the HTTP implementation of Backend.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewAPIClient creates a backend client for the given base URL.
func NewAPIClient(baseURL string, logger *logging.Logger) *APIClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithHTTPClient overrides the underlying HTTP client (for tests).
func (c *APIClient) WithHTTPClient(hc *http.Client) *APIClient {
	c.httpClient = hc
	return c
}

type appointmentPayload struct {
	ID      string `json:"id"`
	Patient struct {
		Name string `json:"name"`
	} `json:"patient"`
	DoctorName          string    `json:"doctorName"`
	Department          string    `json:"department"`
	AppointmentDateTime time.Time `json:"appointmentDateTime"`
	Status              string    `json:"status"`
	ConsultationFee     int64     `json:"consultationFee"`
	Symptoms            string    `json:"symptoms"`
	Notes               string    `json:"notes"`
}

// ListAppointments fetches the patient's appointments in backend order.
func (c *APIClient) ListAppointments(ctx context.Context) ([]Appointment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/appointments", nil)
	if err != nil {
		return nil, fmt.Errorf("flow: build list request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flow: list appointments: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flow: list appointments: status %d", resp.StatusCode)
	}

	var payload []appointmentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("flow: decode appointments: %w", err)
	}
	appts := make([]Appointment, 0, len(payload))
	for _, p := range payload {
		appts = append(appts, Appointment{
			ID:         p.ID,
			Status:     p.Status,
			Patient:    p.Patient.Name,
			DoctorName: p.DoctorName,
			Department: p.Department,
			DateTime:   p.AppointmentDateTime,
			Fee:        p.ConsultationFee,
			Symptoms:   p.Symptoms,
			Notes:      p.Notes,
		})
	}
	return appts, nil
}

type apiResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Error         string `json:"error"`
	AppointmentID string `json:"appointmentId"`
	ClientSecret  string `json:"clientSecret"`
}

func (r *apiResult) failureMessage() string {
	if r.Error != "" {
		return r.Error
	}
	if r.Message != "" {
		return r.Message
	}
	return "request failed"
}

// BookAppointment submits a draft and returns the assigned appointment id.
func (c *APIClient) BookAppointment(ctx context.Context, draft Draft) (string, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("flow: encode draft: %w", err)
	}
	result, err := c.postJSON(ctx, "/api/appointments/book", body)
	if err != nil {
		return "", err
	}
	if result.AppointmentID == "" {
		return "", fmt.Errorf("flow: book response missing appointment id")
	}
	return result.AppointmentID, nil
}

// CancelAppointment requests cancellation of the given appointment.
func (c *APIClient) CancelAppointment(ctx context.Context, id string) error {
	_, err := c.postJSON(ctx, "/api/appointments/"+url.PathEscape(id)+"/cancel", nil)
	return err
}

// StripeKey fetches the provider's publishable key.
func (c *APIClient) StripeKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config/stripe-key", nil)
	if err != nil {
		return "", fmt.Errorf("flow: build stripe-key request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("flow: fetch stripe key: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("flow: fetch stripe key: status %d", resp.StatusCode)
	}

	var payload struct {
		PublishableKey string `json:"publishableKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("flow: decode stripe key: %w", err)
	}
	if payload.PublishableKey == "" {
		return "", fmt.Errorf("flow: stripe key response empty")
	}
	return payload.PublishableKey, nil
}

// CreateIntent requests a payment intent for the appointment.
func (c *APIClient) CreateIntent(ctx context.Context, appointmentID, paymentMethod string) (string, error) {
	form := url.Values{
		"appointmentId": {appointmentID},
		"paymentMethod": {paymentMethod},
	}
	result, err := c.postForm(ctx, "/api/payments/create-intent", form)
	if err != nil {
		return "", err
	}
	if result.ClientSecret == "" {
		return "", fmt.Errorf("flow: intent response missing client secret")
	}
	return result.ClientSecret, nil
}

// ConfirmPayment finalizes the booking after provider-side confirmation.
func (c *APIClient) ConfirmPayment(ctx context.Context, paymentIntentID string) error {
	form := url.Values{"paymentIntentId": {paymentIntentID}}
	_, err := c.postForm(ctx, "/api/payments/confirm", form)
	return err
}

func (c *APIClient) postJSON(ctx context.Context, path string, body []byte) (*apiResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("flow: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doResult(req)
}

func (c *APIClient) postForm(ctx context.Context, path string, form url.Values) (*apiResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("flow: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.doResult(req)
}

func (c *APIClient) doResult(req *http.Request) (*apiResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flow: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("flow: read response: %w", err)
	}
	var result apiResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("flow: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("flow: %s", result.failureMessage())
	}
	return &result, nil
}
