package headers

import "strings"

// Sentinel is the merge policy associated with a known header name.
type Sentinel byte

const (
	// SentinelList merges duplicate occurrences with a ',' separator.
	SentinelList Sentinel = ','
	// SentinelCookie merges duplicate occurrences with a ';' separator,
	// per RFC 6265 §5.4 cookie-header concatenation.
	SentinelCookie Sentinel = ';'
	// SentinelSpace merges duplicate occurrences with a ' ' separator.
	SentinelSpace Sentinel = ' '
	// SentinelOverride keeps only the most recently seen value.
	SentinelOverride Sentinel = 'O'
	// SentinelReject rejects any duplicate occurrence outright (400).
	SentinelReject Sentinel = 0
)

// policyTable is the per-header-name merge policy. Lookups lowercase the
// name first; the table itself is small enough that this beats building
// and maintaining a pre-folded key set.
var policyTable = map[string]Sentinel{
	"accept":           SentinelList,
	"accept-encoding":  SentinelList,
	"accept-language":  SentinelList,
	"cache-control":    SentinelList,
	"connection":       SentinelList,
	"transfer-encoding": SentinelList,
	"if-match":         SentinelList,
	"if-none-match":    SentinelList,
	"via":              SentinelList,
	"warning":          SentinelList,

	"cookie": SentinelCookie,

	"user-agent": SentinelSpace,

	"authorization":          SentinelOverride,
	"from":                   SentinelOverride,
	"if-modified-since":      SentinelOverride,
	"if-range":               SentinelOverride,
	"if-unmodified-since":    SentinelOverride,
	"max-forwards":           SentinelOverride,
	"proxy-authorization":    SentinelOverride,
	"referer":                SentinelOverride,

	"content-length": SentinelReject,
	"host":           SentinelReject,
}

// UnknownMergeAllowed controls the fallback sentinel for a header name
// absent from policyTable: ',' if true (list-merge unknown headers), '\0'
// (reject duplicates) if false. The default mirrors the C++ origin's
// permissive posture for extension headers.
var UnknownMergeAllowed = true

// Policy returns the merge sentinel for header name (case-insensitive).
func Policy(name string) Sentinel {
	if s, ok := policyTable[strings.ToLower(name)]; ok {
		return s
	}
	if UnknownMergeAllowed {
		return SentinelList
	}
	return SentinelReject
}

// Reserved is the set of response headers owned by the framework; a
// handler that attempts to set one of these must be rejected.
var Reserved = map[string]struct{}{
	"connection":        {},
	"content-length":    {},
	"date":              {},
	"te":                {},
	"trailer":           {},
	"transfer-encoding": {},
	"upgrade":           {},
}

// IsReserved reports whether name (case-insensitive) is a reserved
// response header.
func IsReserved(name string) bool {
	_, ok := Reserved[strings.ToLower(name)]
	return ok
}

// ForbiddenTrailer is the set of header names that must never appear as a
// chunked-encoding trailer.
var ForbiddenTrailer = map[string]struct{}{
	"authorization":       {},
	"cache-control":       {},
	"content-encoding":    {},
	"content-length":      {},
	"content-range":       {},
	"content-type":        {},
	"cookie":              {},
	"expect":              {},
	"expires":             {},
	"host":                {},
	"if-match":            {},
	"if-modified-since":   {},
	"if-none-match":       {},
	"if-unmodified-since": {},
	"pragma":              {},
	"range":               {},
	"set-cookie":          {},
	"te":                  {},
	"trailer":             {},
	"transfer-encoding":   {},
	"vary":                {},
}

// IsForbiddenTrailer reports whether name (case-insensitive) may not be
// used as a chunked trailer header.
func IsForbiddenTrailer(name string) bool {
	_, ok := ForbiddenTrailer[strings.ToLower(name)]
	return ok
}
