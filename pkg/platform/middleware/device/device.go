// Package device labels the operator's client for session listings and logs.
package device

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"creditboard/pkg/requestcontext"
)

// UnknownDevice labels requests without a User-Agent.
const UnknownDevice = "Unknown Device"

// Label turns a User-Agent into a display label such as "Chrome on macOS"
// or "Safari on iPhone".
func Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return UnknownDevice
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	os := ua.OSInfo().Name
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// Middleware stores the client address, raw User-Agent and device label in
// the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), remoteHost(r.RemoteAddr), userAgent)
		ctx = requestcontext.WithDeviceLabel(ctx, Label(userAgent))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
