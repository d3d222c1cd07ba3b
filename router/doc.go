// Package router implements (method, path) to handler resolution: a
// method bitmask plus handler array per registered path, a configurable
// trailing-slash policy, HEAD-falls-back-to-GET, and `{name}` pattern
// segments with literal-over-pattern, first-registered-pattern-wins
// tie-breaking. Dispatch targets are message.Handler, matching the
// sibling HTTP/1.1 and HTTP/2 packages it is invoked from.
package router
