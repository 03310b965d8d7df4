package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mateovidal/spinmart-backend/pkg/auth"
	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/mateovidal/spinmart-backend/pkg/logger"
)

const sessionCookieName = "sm_session"

// Session identifies every visitor. Guests get a durable cookie holding a
// random id; a valid bearer token upgrades the request with the buyer's
// claims. An invalid or expired token degrades to a guest session rather
// than failing the request, since the whole storefront works anonymously.
func Session(cfg *config.Config, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := sessionIDFromCookie(r)
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   cfg.App.IsProd(),
				})
			}
			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			if token := bearerToken(r); token != "" {
				claims, err := auth.ParseSessionToken(cfg.JWT, token)
				if err != nil {
					if logg != nil {
						warnCtx := logg.WithField(ctx, "reason", err.Error())
						logg.Warn(warnCtx, "session.token_rejected")
					}
				} else {
					ctx = WithClaims(ctx, claims)
					if logg != nil {
						ctx = logg.WithUserID(ctx, claims.UserID.String())
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
