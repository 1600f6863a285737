package middleware

import (
	"net/http"
	"strings"
)

var staticAssetExtensions = []string{".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".ico"}

// CacheControl sets response caching policy by path: API responses are
// publicly cacheable for a short time, static assets for a day, and
// everything else not at all.
func CacheControl() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			switch {
			case strings.HasPrefix(r.URL.Path, "/api/"):
				h.Set("Cache-Control", "public, max-age=300")
				h.Set("Vary", "Accept-Encoding")
			case isStaticAsset(r.URL.Path):
				h.Set("Cache-Control", "public, max-age=86400")
				h.Set("Vary", "Accept-Encoding")
			default:
				h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
				h.Set("Pragma", "no-cache")
				h.Set("Expires", "0")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isStaticAsset(path string) bool {
	for _, ext := range staticAssetExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
