package auth

import (
	"log/slog"
	"net/http"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/transport"
)

// Middleware creates HTTP middleware from an AuthChain. It checks the
// bypass list, runs authentication, and injects the identity into the
// request context.
func Middleware(chain *AuthChain, bypassEndpoints []string) transport.Middleware {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check bypass list.
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision == No {
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				transport.WriteErrorResponse(w,
					api.NewInvalidRequestError("", "authentication required"),
					http.StatusUnauthorized)
				return
			}

			if result.Decision != Yes || result.Identity == nil {
				transport.WriteErrorResponse(w,
					api.NewInvalidRequestError("", "authentication required"),
					http.StatusUnauthorized)
				return
			}

			if result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
				return
			}

			slog.Debug("authentication succeeded",
				"subject", result.Identity.Subject,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), result.Identity)))
		})
	}
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/metrics"}
