// internal/adapters/in/http/middleware/staff_auth.go
package middleware

import (
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient is an alias so callers don't import firebase directly.
type FirebaseAuthClient = fbauth.Client

// StaffAuth protects the /ops/* routes.
//
// It verifies
//
//   - Authorization: Bearer <ID_TOKEN>
//
// against Firebase Auth and requires the custom claim staff=true on the
// token. Buyer-facing routes are not wrapped with this.
type StaffAuth struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *StaffAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.FirebaseAuth == nil {
			http.Error(w, "staff auth not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if staff, _ := token.Claims["staff"].(bool); !staff {
			log.Printf("[staff_auth] WARN: non-staff token uid=%s path=%s", token.UID, r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
