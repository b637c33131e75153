package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medicore/booking-platform/internal/appointments"
	"github.com/medicore/booking-platform/internal/directory"
	httpmiddleware "github.com/medicore/booking-platform/internal/http/middleware"
	"github.com/medicore/booking-platform/internal/payments"
	"github.com/medicore/booking-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	DirectoryHandler    *directory.Handler
	PaymentsHandler     *payments.Handler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Per-IP limit on the payment endpoints. Zero disables limiting.
	PaymentRatePerSec float64
	PaymentBurst      int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.DirectoryHandler != nil {
			api.Get("/directory", cfg.DirectoryHandler.GetCatalog)
		}
		if cfg.AppointmentsHandler != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Get("/", cfg.AppointmentsHandler.List)
				r.Post("/book", cfg.AppointmentsHandler.Book)
				r.Get("/{id}", cfg.AppointmentsHandler.Get)
				r.Post("/{id}/cancel", cfg.AppointmentsHandler.Cancel)
			})
		}
		if cfg.PaymentsHandler != nil {
			api.Get("/config/stripe-key", cfg.PaymentsHandler.StripeKey)
			api.Route("/payments", func(r chi.Router) {
				if cfg.PaymentRatePerSec > 0 {
					r.Use(httpmiddleware.RateLimit(cfg.PaymentRatePerSec, cfg.PaymentBurst))
				}
				r.Post("/create-intent", cfg.PaymentsHandler.CreateIntent)
				r.Post("/confirm", cfg.PaymentsHandler.Confirm)
			})
		}
	})

	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AppointmentsHandler != nil {
				admin.Post("/appointments/{id}/complete", cfg.AppointmentsHandler.Complete)
			}
			if cfg.PaymentsHandler != nil {
				admin.Post("/payments/{appointmentId}/refund", cfg.PaymentsHandler.Refund)
			}
		})
	}

	return r
}
