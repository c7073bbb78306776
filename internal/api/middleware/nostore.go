package middleware

import "net/http"

// NoStore marks every response for the given paths uncacheable, including
// those produced by later middleware such as the rate limiter.
func NoStore(paths ...string) func(http.Handler) http.Handler {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if set[r.URL.Path] {
				w.Header().Set("Cache-Control", "no-store, max-age=0")
			}
			next.ServeHTTP(w, r)
		})
	}
}
