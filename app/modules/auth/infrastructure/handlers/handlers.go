package authhandlers

import (
	"log/slog"
	"net/http"
	"time"

	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
	"github.com/Black-And-White-Club/antrian/pkg/httpapi"
	"go.opentelemetry.io/otel/trace"
)

// Handlers serves the auth HTTP endpoints.
type Handlers interface {
	HandleWhoAmI(w http.ResponseWriter, r *http.Request)
}

// AuthHandlers implements Handlers.
type AuthHandlers struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &AuthHandlers{logger: logger, tracer: tracer}
}

type whoAmIResponse struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleWhoAmI echoes the identity behind the bearer token.
func (h *AuthHandlers) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	claims, ok := authdomain.ClaimsFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing authentication")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, whoAmIResponse{
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt,
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="antrian"`)
	httpapi.WriteJSON(w, http.StatusUnauthorized, httpapi.ErrorBody{Code: "unauthorized", Message: msg})
}
