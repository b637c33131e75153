package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medicore/booking-platform/internal/appointments"
	"github.com/medicore/booking-platform/pkg/logging"
)

// Handler exposes the payment HTTP API. The create-intent and confirm
// endpoints take form-encoded bodies, matching the payment page's contract.
type Handler struct {
	service        *Service
	publishableKey string
	logger         *logging.Logger
}

// NewHandler creates a payments handler.
func NewHandler(service *Service, publishableKey string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, publishableKey: publishableKey, logger: logger}
}

// StripeKey handles GET /api/config/stripe-key.
func (h *Handler) StripeKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publishableKey": h.publishableKey})
}

type intentResponse struct {
	Success      bool   `json:"success"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CreateIntent handles POST /api/payments/create-intent.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid form body")
		return
	}
	appointmentID, err := uuid.Parse(r.PostFormValue("appointmentId"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid appointmentId")
		return
	}
	method := Method(r.PostFormValue("paymentMethod"))
	if !method.Card() {
		writeFailure(w, http.StatusBadRequest, "only card payments are supported")
		return
	}

	clientSecret, err := h.service.CreateIntent(r.Context(), appointmentID, method)
	if err != nil {
		h.logger.Error("intent creation failed", "error", err, "appointment_id", appointmentID)
		if errors.Is(err, appointments.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "appointment not found")
			return
		}
		writeFailure(w, http.StatusBadGateway, "failed to create payment intent")
		return
	}

	writeJSON(w, http.StatusOK, intentResponse{Success: true, ClientSecret: clientSecret})
}

// Confirm handles POST /api/payments/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid form body")
		return
	}
	intentID := r.PostFormValue("paymentIntentId")
	if intentID == "" {
		writeFailure(w, http.StatusBadRequest, "paymentIntentId is required")
		return
	}

	if err := h.service.Confirm(r.Context(), intentID); err != nil {
		h.logger.Error("payment confirmation failed", "error", err, "intent_id", intentID)
		switch {
		case errors.Is(err, ErrIntentNotSucceeded):
			writeFailure(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrPaymentNotFound):
			writeFailure(w, http.StatusNotFound, "payment not found")
		default:
			writeFailure(w, http.StatusBadGateway, "failed to confirm payment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Refund handles POST /admin/payments/{appointmentId}/refund.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := uuid.Parse(chi.URLParam(r, "appointmentId"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if err := h.service.Refund(r.Context(), appointmentID); err != nil {
		h.logger.Error("refund failed", "error", err, "appointment_id", appointmentID)
		switch {
		case errors.Is(err, ErrPaymentNotFound):
			writeFailure(w, http.StatusNotFound, "payment not found")
		case errors.Is(err, ErrNotRefundable):
			writeFailure(w, http.StatusConflict, err.Error())
		default:
			writeFailure(w, http.StatusBadGateway, "failed to refund payment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, failureResponse{Success: false, Error: msg})
}
