package server

import (
	"net/http"
	"strings"
)

const httpsRequired = "Please use HTTPS when submitting data to this server."

// isSecure reports whether the request arrived over TLS, directly or via a
// trusted proxy header.
func isSecure(r *http.Request, trustProto bool) bool {
	if r.TLS != nil {
		return true
	}
	if !trustProto {
		return false
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(proto, ','); i >= 0 {
		proto = proto[:i]
	}
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

// EnforceHTTPS redirects GET and HEAD over plain HTTP to the HTTPS URL with a
// 301 and rejects every other plain-HTTP method with 403.
func EnforceHTTPS(next http.Handler, trustProto bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSecure(r, trustProto) {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, httpsRequired, http.StatusForbidden)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}
