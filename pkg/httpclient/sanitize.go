package httpclient

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// sensitiveParams are query parameter name fragments redacted from logs.
// Matching is case-insensitive.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
}

const redacted = "[REDACTED]"

// sanitizeURL strips credentials from u before it is logged: userinfo is
// dropped and sensitive query values are replaced.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	safe := *u
	if safe.User != nil {
		safe.User = url.User(redacted)
	}

	if safe.RawQuery != "" {
		q := safe.Query()
		for param := range q {
			if isSensitiveParam(param) {
				q.Set(param, redacted)
			}
		}
		safe.RawQuery = q.Encode()
	}

	return safe.String()
}

// sensitiveHeaders are always redacted from logged headers.
var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// sanitizeHeaders flattens h for logging. Credentials are replaced, and
// a bearer token keeps only its scheme.
func sanitizeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		canonical := http.CanonicalHeaderKey(name)
		switch {
		case canonical == "Authorization" && len(values) > 0 && strings.HasPrefix(values[0], "Bearer "):
			out[canonical] = "Bearer " + redacted
		case sensitiveHeaders[canonical] || isSensitiveParam(canonical):
			out[canonical] = redacted
		default:
			sorted := append([]string(nil), values...)
			sort.Strings(sorted)
			out[canonical] = strings.Join(sorted, ", ")
		}
	}
	return out
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}
