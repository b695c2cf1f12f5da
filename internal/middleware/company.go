package middleware

import "net/http"

// RequireCompany rejects sessions that do not belong to a business account.
// It must run after Auth.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !session.IsCompany {
			http.Error(w, "business account required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
