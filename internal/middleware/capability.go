package middleware

import (
	"net/http"
	"strings"

	"manage-breast-screening/internal/ports/capabilities"
)

// RequireCapability answers 401 without claims and 403 when the resolver
// denies the capability or fails.
func RequireCapability(resolver capabilities.CapabilitiesResolver, c capabilities.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok || strings.TrimSpace(claims.UserID) == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if resolver == nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			allowed, err := resolver.HasFeature(r.Context(), capabilities.CapabilityCheck{
				UserID:     claims.UserID,
				Roles:      claims.Roles,
				Capability: c,
			})
			if err != nil || !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser answers 401 when no caller is attached to the request.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
