package directory

import (
	"encoding/json"
	"net/http"

	"github.com/medicore/booking-platform/pkg/logging"
)

// Handler serves the doctor directory to booking clients.
type Handler struct {
	directory *Directory
	logger    *logging.Logger
}

// NewHandler creates a directory handler.
func NewHandler(directory *Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{directory: directory, logger: logger}
}

// GetCatalog handles GET /api/directory.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.directory.Catalog()); err != nil {
		h.logger.Error("failed to encode directory", "error", err)
	}
}
