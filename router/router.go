package router

import (
	"fmt"
	"strings"

	"github.com/sjanel/aeronet-go/message"
)

// SlashPolicy controls how a path's trailing slash is reconciled between
// registration and request time.
type SlashPolicy uint8

const (
	// SlashStrict requires an exact match; no normalization performed.
	SlashStrict SlashPolicy = iota
	// SlashNormalize strips a trailing "/" from both registrations and
	// requests before indexing, so "/a" and "/a/" share one PathEntry.
	SlashNormalize
	// SlashRedirect keeps registrations and requests distinct but emits a
	// 301 to the registered form when only the slashed/unslashed
	// counterpart matches.
	SlashRedirect
)

// segment is one parsed path component: either a literal or a `{name}`
// capture.
type segment struct {
	literal string
	isParam bool
	param   string
}

func parseSegments(path string) []segment {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	segs := make([]segment, len(parts))
	for i, p := range parts {
		if len(p) >= 2 && p[0] == '{' && p[len(p)-1] == '}' {
			segs[i] = segment{isParam: true, param: p[1 : len(p)-1]}
		} else {
			segs[i] = segment{literal: p}
		}
	}
	return segs
}

// node is one trie level of the registered-path tree: literal children
// take precedence over the (at most one per level, first-registered-wins)
// pattern child.
type node struct {
	literalChildren map[string]*node
	paramChild      *node
	paramName       string

	entry *PathEntry // non-nil if a path terminates exactly at this node
}

func newNode() *node {
	return &node{literalChildren: make(map[string]*node)}
}

// PathEntry is the registration record for one canonical path.
type PathEntry struct {
	Path        string
	Methods     Mask
	Handlers    [methodCount]message.Handler
	Normalized  bool // true if this path was registered/reached via slash normalization
}

// Router maps (method, path) to a Handler with pattern-parameter capture,
// a method bitmask per path, and a trailing-slash policy.
type Router struct {
	root    *node
	policy  SlashPolicy
	fallback message.Handler
	hasFallback bool
}

// New returns an empty Router using the given trailing-slash policy.
func New(policy SlashPolicy) *Router {
	return &Router{root: newNode(), policy: policy}
}

// SetDefault registers the global fallback handler consulted when no path
// matches.
func (r *Router) SetDefault(h message.Handler) {
	r.fallback = h
	r.hasFallback = true
}

func (r *Router) canonicalize(path string) (string, bool) {
	normalized := false
	if r.policy == SlashNormalize && len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
		normalized = true
	}
	return path, normalized
}

// ErrHandlerKindConflict is returned by SetPath when a (path, method) pair
// already has a handler registered of a different kind (sync vs
// streaming vs async).
type ErrHandlerKindConflict struct {
	Path   string
	Method Method
}

func (e *ErrHandlerKindConflict) Error() string {
	return fmt.Sprintf("router: %s %s already has a handler of a different kind", e.Method, e.Path)
}

// SetPath registers h for every method set in mask at path. Registering a
// second handler of a different kind for the same (path, method) is an
// error; registering the same kind again overwrites.
func (r *Router) SetPath(path string, mask Mask, h message.Handler) error {
	canon, normalized := r.canonicalize(path)
	segs := parseSegments(canon)

	n := r.root
	for _, s := range segs {
		if s.isParam {
			if n.paramChild == nil {
				n.paramChild = newNode()
				n.paramName = s.param
			}
			n = n.paramChild
		} else {
			child, ok := n.literalChildren[s.literal]
			if !ok {
				child = newNode()
				n.literalChildren[s.literal] = child
			}
			n = child
		}
	}

	if n.entry == nil {
		n.entry = &PathEntry{Path: canon, Normalized: normalized}
	}

	for _, m := range mask.Methods() {
		existing := n.entry.Handlers[m]
		if !existing.IsZero() && kindOf(existing) != kindOf(h) {
			return &ErrHandlerKindConflict{Path: canon, Method: m}
		}
		n.entry.Handlers[m] = h
		n.entry.Methods = n.entry.Methods.With(m)
	}

	return nil
}

func kindOf(h message.Handler) int {
	switch {
	case h.Sync != nil:
		return 1
	case h.Stream != nil:
		return 2
	case h.Async != nil:
		return 3
	default:
		return 0
	}
}

// Result is the outcome of Match; which fields are meaningful depends on
// Kind.
type Result struct {
	Kind RoutingKind

	Handler    message.Handler
	PathParams map[string]string

	AllowedMask Mask // MethodNotAllowed

	RedirectTo string // RedirectAddSlash / RedirectRemoveSlash

	DefaultHandler message.Handler
	HasDefault     bool
}

// RoutingKind discriminates Result.
type RoutingKind uint8

const (
	KindHandler RoutingKind = iota
	KindMethodNotAllowed
	KindRedirectAddSlash
	KindRedirectRemoveSlash
	KindNotFound
)

// Match resolves (method, path), including the HEAD-falls-back-to-GET
// rule (the framework is responsible for suppressing the body, not this
// package).
func (r *Router) Match(method Method, path string) Result {
	if r.policy == SlashRedirect {
		if res, ok := r.matchRedirect(method, path); ok {
			return res
		}
	}

	canon, _ := r.canonicalize(path)
	entry, params, ok := r.lookup(canon)
	if !ok {
		return r.notFound()
	}

	return r.resolveEntry(method, entry, params)
}

func (r *Router) resolveEntry(method Method, entry *PathEntry, params map[string]string) Result {
	h := entry.Handlers[method]
	if h.IsZero() && method == MethodHEAD {
		if get := entry.Handlers[MethodGET]; !get.IsZero() {
			return Result{Kind: KindHandler, Handler: get, PathParams: params}
		}
	}
	if h.IsZero() {
		if entry.Methods == 0 {
			return r.notFound()
		}
		return Result{Kind: KindMethodNotAllowed, AllowedMask: entry.Methods}
	}
	return Result{Kind: KindHandler, Handler: h, PathParams: params}
}

func (r *Router) notFound() Result {
	return Result{Kind: KindNotFound, DefaultHandler: r.fallback, HasDefault: r.hasFallback}
}

// matchRedirect implements SlashRedirect: if the exact path is absent but
// the other slash form is registered, emit a redirect instead of 404.
func (r *Router) matchRedirect(method Method, path string) (Result, bool) {
	if _, _, ok := r.lookup(path); ok {
		return Result{}, false
	}

	var alt string
	var kind RoutingKind
	if strings.HasSuffix(path, "/") && len(path) > 1 {
		alt = strings.TrimRight(path, "/")
		kind = KindRedirectRemoveSlash
	} else {
		alt = path + "/"
		kind = KindRedirectAddSlash
	}

	if _, _, ok := r.lookup(alt); ok {
		return Result{Kind: kind, RedirectTo: alt}, true
	}

	return Result{}, false
}

func (r *Router) lookup(path string) (*PathEntry, map[string]string, bool) {
	segs := parseSegments(path)
	n := r.root
	var params map[string]string

	for _, s := range segs {
		if child, ok := n.literalChildren[s.literal]; ok {
			n = child
			continue
		}
		if n.paramChild != nil {
			if params == nil {
				params = make(map[string]string)
			}
			params[n.paramName] = s.literal
			n = n.paramChild
			continue
		}
		return nil, nil, false
	}

	if n.entry == nil {
		return nil, nil, false
	}
	return n.entry, params, true
}
