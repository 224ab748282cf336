// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import "net/http"

// WithAPIKey enforces the static ApiKey header the directory API uses for
// authentication. Requests without the expected key are rejected with 401.
func WithAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get("ApiKey") != key {
				http.Error(w, "invalid or missing api key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
