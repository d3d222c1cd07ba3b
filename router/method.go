package router

import "strings"

// Method is one of the nine methods the core recognizes; bit position i
// of a Mask is 1<<i for the i-th Method below.
type Method uint8

const (
	MethodGET Method = iota
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
	MethodPATCH
	methodCount
)

var methodNames = [...]string{
	MethodGET:     "GET",
	MethodHEAD:    "HEAD",
	MethodPOST:    "POST",
	MethodPUT:     "PUT",
	MethodDELETE:  "DELETE",
	MethodCONNECT: "CONNECT",
	MethodOPTIONS: "OPTIONS",
	MethodTRACE:   "TRACE",
	MethodPATCH:   "PATCH",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return ""
}

// ParseMethod maps a request-line method token to its Method ordinal. ok is
// false for any token outside the nine methods the core recognizes.
func ParseMethod(tok string) (m Method, ok bool) {
	for i, n := range methodNames {
		if n == tok {
			return Method(i), true
		}
	}
	return 0, false
}

// Mask is a bitmask over Method ordinals, one bit per method.
type Mask uint16

// Bit returns the single-method mask for m.
func (m Method) Bit() Mask { return Mask(1) << uint(m) }

// Has reports whether the mask includes m.
func (mk Mask) Has(m Method) bool { return mk&m.Bit() != 0 }

// With returns mk with m added.
func (mk Mask) With(m Method) Mask { return mk | m.Bit() }

// Methods returns the sorted (by ordinal) list of methods set in mk.
func (mk Mask) Methods() []Method {
	out := make([]Method, 0, methodCount)
	for i := Method(0); i < methodCount; i++ {
		if mk.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// AllowHeader renders mk as a comma-joined Allow header value, e.g.
// "GET, HEAD, POST".
func (mk Mask) AllowHeader() string {
	ms := mk.Methods()
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

// MaskOf builds a Mask from a variadic list of methods.
func MaskOf(ms ...Method) Mask {
	var mk Mask
	for _, m := range ms {
		mk = mk.With(m)
	}
	return mk
}
