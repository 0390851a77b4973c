package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/roamstack/attractions-api/rest/contextutils"
)

// RequireAuth gates a handler behind bearer-token auth. When roles are
// given, the caller's role must be one of them.
func (a *Authenticator) RequireAuth(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondStatus(w, http.StatusUnauthorized, "not authorized to access this route")
			return
		}

		claims, err := a.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondStatus(w, http.StatusUnauthorized, "not authorized to access this route")
			return
		}

		if len(roles) > 0 && !containsRole(roles, claims.Role) {
			respondStatus(w, http.StatusForbidden,
				"role '"+claims.Role+"' is not authorized to access this route")
			return
		}

		ctx := contextutils.WithContextUser(r.Context(), claims.UserID, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func containsRole(roles []string, role string) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func respondStatus(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}
