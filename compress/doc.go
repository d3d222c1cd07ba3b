// Package compress provides the compression codec collaborator named for
// handler response bodies: gzip and zstd via klauspost/compress, brotli via
// andybalholm/brotli, and xz via ulikunitz/xz, each exposed through the same
// encoding.Coder surface the rest of this module's codecs already implement.
package compress
