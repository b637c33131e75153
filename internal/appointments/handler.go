package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medicore/booking-platform/pkg/logging"
)

// Handler exposes the appointment HTTP API.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/appointments.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeFailure(w, http.StatusInternalServerError, "failed to load appointments")
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// Get handles GET /api/appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "appointment not found")
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "appointment_id", id)
		writeFailure(w, http.StatusInternalServerError, "failed to load appointment")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

type bookResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message,omitempty"`
	AppointmentID uuid.UUID `json:"appointmentId,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
}

// Book handles POST /api/appointments/book.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.logger.Error("booking failed", "error", err, "doctor", req.DoctorName)
		switch {
		case errors.Is(err, ErrUnknownDoctor), errors.Is(err, ErrPastDateTime):
			writeFailure(w, http.StatusBadRequest, err.Error())
		default:
			writeFailure(w, http.StatusInternalServerError, "failed to book appointment")
		}
		return
	}

	writeJSON(w, http.StatusOK, bookResponse{
		Success:       true,
		Message:       "Appointment booked successfully",
		AppointmentID: appt.ID,
		Amount:        appt.ConsultationFee,
	})
}

type cancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Status  Status `json:"status,omitempty"`
}

// Cancel handles POST /api/appointments/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	appt, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeFailure(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrNotCancellable):
			writeFailure(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("cancellation failed", "error", err, "appointment_id", id)
			writeFailure(w, http.StatusInternalServerError, "failed to cancel appointment")
		}
		return
	}

	writeJSON(w, http.StatusOK, cancelResponse{
		Success: true,
		Message: "Appointment cancelled successfully",
		Status:  appt.Status,
	})
}

type completeRequest struct {
	Notes string `json:"notes"`
}

// Complete handles POST /admin/appointments/{id}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Complete(r.Context(), id, req.Notes); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "appointment not found")
			return
		}
		h.logger.Error("completion failed", "error", err, "appointment_id", id)
		writeFailure(w, http.StatusInternalServerError, "failed to complete appointment")
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
