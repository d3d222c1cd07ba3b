// Package buffer provides the growable byte buffer used by the reactor and
// the HTTP/1.1 head parser: cheap front-erase, capacity-doubling growth, and
// an in-place splice primitive used by the header-merge algorithm.
package buffer
