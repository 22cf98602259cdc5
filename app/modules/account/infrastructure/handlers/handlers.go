package accounthandlers

import (
	"log/slog"
	"net/http"

	accountservice "github.com/Black-And-White-Club/antrian/app/modules/account/application"
	accountdomain "github.com/Black-And-White-Club/antrian/app/modules/account/domain"
	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
	"github.com/Black-And-White-Club/antrian/pkg/httpapi"
	"github.com/go-chi/chi/v5"
)

// Handlers serves the account HTTP endpoints.
type Handlers interface {
	HandleGetSettings(w http.ResponseWriter, r *http.Request)
	HandleUpdateSettings(w http.ResponseWriter, r *http.Request)
}

// AccountHandlers implements Handlers.
type AccountHandlers struct {
	service accountservice.Service
	logger  *slog.Logger
}

// NewAccountHandlers creates a new AccountHandlers instance.
func NewAccountHandlers(service accountservice.Service, logger *slog.Logger) Handlers {
	return &AccountHandlers{service: service, logger: logger}
}

// Routes registers the settings endpoints on r.
func Routes(r chi.Router, h Handlers) {
	r.Get("/settings", h.HandleGetSettings)
	r.Patch("/settings", h.HandleUpdateSettings)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := authdomain.UserIDFromContext(r.Context())
	if !ok {
		httpapi.WriteJSON(w, http.StatusUnauthorized, httpapi.ErrorBody{Code: "unauthorized", Message: "missing authentication"})
	}
	return id, ok
}

func (h *AccountHandlers) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	settings, err := h.service.GetSettings(r.Context(), id)
	if err != nil {
		httpapi.WriteError(r.Context(), w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, settings)
}

func (h *AccountHandlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var update accountdomain.Update
	if err := httpapi.DecodeJSON(w, r, &update); err != nil {
		httpapi.WriteError(r.Context(), w, h.logger, err)
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), id, update)
	if err != nil {
		httpapi.WriteError(r.Context(), w, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, settings)
}
