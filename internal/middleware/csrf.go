package middleware

import (
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck-go/internal/crypto"
)

// CSRFConfig wires the double-submit guard to its settings.
type CSRFConfig struct {
	Signer     *crypto.CSRFSigner
	CookieName string
	HeaderName string
	FormField  string
	TokenTTL   time.Duration
	Enforce    bool
}

// CSRF returns middleware enforcing the double-submit pattern on
// state-mutating form requests: the cookie token and the submitted
// token (header preferred, form field otherwise) must both be valid
// signed tokens and equal to each other. Every failure mode gets the
// same 403 so a forger learns nothing about which check tripped.
// Disabled entirely when Enforce is false.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enforce || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				forbidCSRF(w)
				return
			}

			submitted := r.Header.Get(cfg.HeaderName)
			if submitted == "" {
				submitted = r.PostFormValue(cfg.FormField)
			}
			if submitted == "" {
				forbidCSRF(w)
				return
			}

			if !cfg.Signer.Validate(cookie.Value, cfg.TokenTTL) || !cfg.Signer.Validate(submitted, cfg.TokenTTL) {
				forbidCSRF(w)
				return
			}

			if cookie.Value != submitted {
				forbidCSRF(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func forbidCSRF(w http.ResponseWriter) {
	http.Error(w, "CSRF validation failed", http.StatusForbidden)
}
