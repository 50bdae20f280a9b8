package request

import (
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"creditboard/pkg/platform/httputil"
)

var timeoutBody = func() string {
	b, _ := json.Marshal(httputil.ErrorResponse{Error: "timeout", Description: "request timed out"})
	return string(b)
}()

// Timeout bounds handler execution; slow handlers get a 503 JSON body.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}

// BodyLimit caps request bodies at maxBytes.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON rejects intent bodies declared as anything but JSON. A
// missing Content-Type is allowed so bodiless POSTs keep working.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if ct := r.Header.Get("Content-Type"); ct != "" {
				if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
					httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorResponse{
						Error:       "invalid_content_type",
						Description: "Content-Type must be application/json",
					})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
