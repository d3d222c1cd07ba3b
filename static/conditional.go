package static

import (
	"strings"
	"time"

	"github.com/sjanel/aeronet-go/httpdate"
)

// conditionalKind discriminates the short-circuit outcome of evaluating
// the conditional-request headers in RFC 7232 order.
type conditionalKind uint8

const (
	conditionalNone conditionalKind = iota
	conditionalNotModified
	conditionalPreconditionFailed
)

type conditionalOutcome struct {
	kind         conditionalKind
	rangeAllowed bool
}

// headerGetter is the subset of message.HeaderView evaluateConditionals
// needs; accepting it directly avoids importing message into a file that
// otherwise has no other reason to.
type headerGetter interface {
	Get(name string) (string, bool)
}

// evaluateConditionals applies If-Match, If-Unmodified-Since,
// If-None-Match and If-Modified-Since in the order RFC 7232 requires,
// short-circuiting at the first header that decides the outcome.
func evaluateConditionals(h headerGetter, isGetOrHead bool, etag string, lastModified time.Time, haveLastModified bool) conditionalOutcome {
	outcome := conditionalOutcome{rangeAllowed: true}

	if etag == "" && !haveLastModified {
		return outcome
	}

	if v, ok := h.Get("If-Match"); ok {
		if etag == "" || !etagListMatches(v, etag) {
			outcome.kind = conditionalPreconditionFailed
			outcome.rangeAllowed = false
			return outcome
		}
	}

	if v, ok := h.Get("If-Unmodified-Since"); ok {
		if !haveLastModified {
			return outcome
		}
		parsed, ok := httpdate.Parse(v)
		if !ok {
			return outcome
		}
		if lastModified.After(parsed) {
			outcome.kind = conditionalPreconditionFailed
			outcome.rangeAllowed = false
			return outcome
		}
	}

	if v, ok := h.Get("If-None-Match"); ok {
		if etagListMatches(v, etag) {
			outcome.rangeAllowed = false
			if isGetOrHead {
				outcome.kind = conditionalNotModified
			} else {
				outcome.kind = conditionalPreconditionFailed
			}
		}
		return outcome
	}

	if v, ok := h.Get("If-Modified-Since"); ok && isGetOrHead {
		if !haveLastModified {
			return outcome
		}
		parsed, ok := httpdate.Parse(v)
		if !ok {
			return outcome
		}
		if !lastModified.After(parsed) {
			outcome.kind = conditionalNotModified
			outcome.rangeAllowed = false
			return outcome
		}
	}

	return outcome
}

// ifRangeAllowsPartial reports whether an If-Range token permits a
// partial (206) response: a quoted token must match the strong ETag
// exactly, a weak validator ("W/...") never matches, and an HTTP-date
// must be at or after the file's last-modified time.
func ifRangeAllowsPartial(value, etag string, lastModified time.Time, haveLastModified bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if strings.HasPrefix(value, "\"") {
		return value == etag
	}
	if strings.HasPrefix(value, "W/") {
		return false
	}
	parsed, ok := httpdate.Parse(value)
	if !ok || !haveLastModified {
		return false
	}
	return !lastModified.After(parsed)
}

func etagTokenMatches(token, etag string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if token == "*" {
		return true
	}
	if strings.HasPrefix(token, "W/") {
		return false
	}
	return token == etag
}

func etagListMatches(headerValue, etag string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "*" {
		return true
	}
	for _, tok := range strings.Split(headerValue, ",") {
		if etagTokenMatches(tok, etag) {
			return true
		}
	}
	return false
}
