package static

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ContentTypeResolver maps a resolved file path to a Content-Type value;
// an empty return falls back to the extension-based guess and then to
// DefaultContentType.
type ContentTypeResolver func(path string) string

// DirectoryEntry is one row handed to a custom DirectoryIndexRenderer.
type DirectoryEntry struct {
	Name         string
	IsDir        bool
	SizeKnown    bool
	Size         int64
	LastModified time.Time
}

// DirectoryIndexRenderer builds a custom directory listing body and its
// Content-Type. When nil, Handler renders a default HTML table.
type DirectoryIndexRenderer func(requestPath string, entries []DirectoryEntry) (body []byte, contentType string)

// Config tunes one Handler's behavior.
type Config struct {
	// DefaultIndex is served in place of a bare directory request when it
	// resolves to a regular file under that directory.
	DefaultIndex string `validate:"omitempty"`

	// EnableDirectoryIndex allows rendering a listing for a directory
	// request that has no usable DefaultIndex; when false such a request
	// is a 404.
	EnableDirectoryIndex bool

	ShowHiddenFiles bool

	// MaxEntriesToList caps a rendered directory listing; 0 means
	// unbounded.
	MaxEntriesToList int `validate:"omitempty,min=1"`

	// DirectoryListingCSS overrides the default listing's inline
	// stylesheet body; empty uses the built-in one.
	DirectoryListingCSS   string
	DirectoryIndexRenderer DirectoryIndexRenderer

	EnableRange       bool
	EnableConditional bool
	AddLastModified   bool
	AddETag           bool

	DefaultContentType  string
	ContentTypeResolver ContentTypeResolver
}

// DefaultConfig mirrors the defaults of the algorithm this package ports.
func DefaultConfig() Config {
	return Config{
		DefaultIndex:       "index.html",
		EnableRange:        true,
		EnableConditional:  true,
		AddLastModified:    true,
		AddETag:            true,
		DefaultContentType: "application/octet-stream",
	}
}

func (c Config) validate() error {
	return validator.New().Struct(c)
}
