package origin

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Null is the origin browsers report for sandboxed, file:// and installed
// contexts where no real origin is observable.
const Null = "null"

var ErrOriginRejected = errors.New("origin not allowed")

// Allowlist is the ordered set of origins permitted to talk to the widget.
// Order is kept so outbound dispatch is deterministic.
type Allowlist []string

// ParseAllowlist splits a comma-separated config value, trimming blanks.
func ParseAllowlist(csv string) Allowlist {
	parts := strings.Split(csv, ",")
	out := make(Allowlist, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (a Allowlist) Contains(origin string) bool {
	for _, o := range a {
		if o == origin {
			return true
		}
	}
	return false
}

func (a Allowlist) String() string { return strings.Join(a, ",") }

// IsAllowed is the inbound gate: the null sentinel or an allow-listed origin.
func IsAllowed(messageOrigin string, allow Allowlist) bool {
	return messageOrigin == Null || allow.Contains(messageOrigin)
}

// Check returns ErrOriginRejected for origins IsAllowed refuses.
func Check(messageOrigin string, allow Allowlist) error {
	if IsAllowed(messageOrigin, allow) {
		return nil
	}
	return ErrOriginRejected
}

// CheckRequest guards the channel upgrade. Requests without an Origin header
// come from non-browser clients; browsers must either be same-host (the
// widget's own iframe page) or allow-listed.
func CheckRequest(r *http.Request, allow Allowlist) bool {
	o := r.Header.Get("Origin")
	if o == "" {
		return true
	}
	if IsAllowed(o, allow) {
		return true
	}
	u, err := url.Parse(o)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
