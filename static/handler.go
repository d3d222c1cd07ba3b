package static

import (
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sjanel/aeronet-go/httpdate"
	"github.com/sjanel/aeronet-go/message"
)

// ErrNotADirectory is returned by New when root exists but is not a
// directory.
var ErrNotADirectory = errors.New("static: root must be a directory")

// Handler serves files rooted at a sandboxed directory per Config.
type Handler struct {
	root string
	cfg  Config
}

// New canonicalizes root and validates cfg, failing if root is not an
// existing, readable directory.
func New(root string, cfg Config) (*Handler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		resolved = abs
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrNotADirectory
	}

	return &Handler{root: resolved, cfg: cfg}, nil
}

// AsHandler wraps h for direct registration with router.Router.SetPath.
func (h *Handler) AsHandler() message.Handler {
	return message.Handler{Sync: h.Serve}
}

// Serve runs the full request algorithm: method gating, sandboxed path
// resolution, directory/index handling, conditional evaluation, range
// parsing, and final response emission.
func (h *Handler) Serve(req *message.Request) *message.Response {
	if req.Method != "GET" && req.Method != "HEAD" {
		resp := message.NewResponse(405, []byte("Method Not Allowed\n"))
		resp.SetHeader("Allow", "GET, HEAD")
		return resp
	}

	requestPath := req.Path
	if requestPath == "" {
		requestPath = "/"
	}
	trailingSlash := strings.HasSuffix(requestPath, "/")

	target, ok := h.resolveTarget(requestPath)
	if !ok {
		return notFoundResponse()
	}

	info, err := os.Lstat(target)
	if err != nil {
		return notFoundResponse()
	}

	if info.IsDir() {
		return h.serveDirectory(requestPath, target, trailingSlash)
	}

	if !info.Mode().IsRegular() {
		return notFoundResponse()
	}

	return h.serveFile(req, target, info)
}

// resolveTarget sandboxes requestPath under h.root: any ".." segment is
// rejected outright, "." segments and empty segments (repeated slashes)
// are dropped, and a directory target resolves to its default index file
// when one exists as a regular file. A directory request with no usable
// index is only "found" when directory indexing is enabled (the caller
// re-derives that from a directory stat, this return value just encodes
// whether resolution itself succeeded).
func (h *Handler) resolveTarget(requestPath string) (string, bool) {
	rawPath := strings.TrimPrefix(requestPath, "/")
	requestedTrailingSlash := strings.HasSuffix(requestPath, "/")

	var relParts []string
	for _, seg := range strings.Split(rawPath, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", false
		default:
			relParts = append(relParts, seg)
		}
	}

	target := filepath.Join(append([]string{h.root}, relParts...)...)

	info, err := os.Lstat(target)
	if err != nil {
		return "", false
	}

	if info.IsDir() {
		if h.cfg.DefaultIndex != "" {
			indexPath := filepath.Join(target, h.cfg.DefaultIndex)
			if idxInfo, err := os.Lstat(indexPath); err == nil && idxInfo.Mode().IsRegular() {
				return indexPath, true
			}
		}
		return target, h.cfg.EnableDirectoryIndex
	}

	if requestedTrailingSlash {
		return "", false
	}
	return target, true
}

func (h *Handler) serveDirectory(requestPath, target string, trailingSlash bool) *message.Response {
	if !h.cfg.EnableDirectoryIndex {
		return notFoundResponse()
	}

	if !trailingSlash {
		location := requestPath
		if !strings.HasSuffix(location, "/") {
			location += "/"
		}
		resp := message.NewResponse(301, []byte("Moved Permanently\n"))
		resp.SetHeader("Location", location)
		resp.SetHeader("Cache-Control", "no-cache")
		return resp
	}

	entries, truncated, err := listDirectory(target, h.cfg)
	if err != nil {
		return message.NewResponse(500, []byte("Internal Server Error\n"))
	}

	var body []byte
	contentType := "text/html; charset=utf-8"
	if h.cfg.DirectoryIndexRenderer != nil {
		body, contentType = h.cfg.DirectoryIndexRenderer(requestPath, entries)
	} else {
		body = renderDefaultListing(requestPath, entries, truncated, h.cfg.DirectoryListingCSS)
	}

	resp := message.NewResponse(200, body)
	resp.SetHeader("Cache-Control", "no-cache")
	if truncated {
		resp.SetHeader("X-Directory-Listing-Truncated", "1")
	} else {
		resp.SetHeader("X-Directory-Listing-Truncated", "0")
	}
	resp.SetHeader("Content-Type", contentType)
	return resp
}

func (h *Handler) serveFile(req *message.Request, target string, info os.FileInfo) *message.Response {
	fileSize := uint64(info.Size())

	var lastModified time.Time
	haveLastModified := false
	if h.cfg.AddLastModified || h.cfg.EnableConditional {
		lastModified = info.ModTime()
		haveLastModified = true
	}

	var etag string
	if (h.cfg.AddETag || h.cfg.EnableConditional) && haveLastModified {
		etag = httpdate.ETag(info.Size(), lastModified.UnixNano())
	}

	isGetOrHead := req.Method == "GET" || req.Method == "HEAD"

	rangeAllowed := true
	if h.cfg.EnableConditional {
		outcome := evaluateConditionals(req.Headers, isGetOrHead, etag, lastModified, haveLastModified)
		rangeAllowed = outcome.rangeAllowed
		switch outcome.kind {
		case conditionalPreconditionFailed:
			resp := message.NewResponse(412, []byte("Precondition Failed\n"))
			h.addValidators(resp, etag, lastModified, haveLastModified)
			resp.SetHeader("Accept-Ranges", "bytes")
			return resp
		case conditionalNotModified:
			resp := message.NewResponse(304, nil)
			h.addValidators(resp, etag, lastModified, haveLastModified)
			resp.SetHeader("Accept-Ranges", "bytes")
			return resp
		}
	}

	var sel rangeSelection
	if h.cfg.EnableRange && rangeAllowed {
		if rangeHeader, ok := req.Headers.Get("Range"); ok {
			allowed := true
			if ifRange, ok := req.Headers.Get("If-Range"); ok {
				allowed = ifRangeAllowsPartial(ifRange, etag, lastModified, haveLastModified)
			}
			if allowed {
				sel = parseRange(rangeHeader, fileSize)
			}
		}
	}

	if sel.state == rangeInvalid || sel.state == rangeUnsatisfiable {
		resp := message.NewResponse(416, []byte("Range Not Satisfiable\n"))
		resp.SetHeader("Content-Range", buildUnsatisfiedRangeHeader(fileSize))
		resp.SetHeader("Accept-Ranges", "bytes")
		return resp
	}

	f, err := os.Open(target)
	if err != nil {
		return notFoundResponse()
	}

	resp := message.NewResponse(200, nil)
	resp.SetHeader("Accept-Ranges", "bytes")
	h.addValidators(resp, etag, lastModified, haveLastModified)
	resp.SetHeader("Content-Type", h.contentTypeFor(target))

	offset, length := int64(0), info.Size()
	if sel.state == rangeValid {
		resp.Status = 206
		resp.Reason = "Partial Content"
		resp.SetHeader("Content-Range", buildRangeHeader(sel.offset, sel.length, fileSize))
		offset, length = int64(sel.offset), int64(sel.length)
	}

	resp.Kind = message.BodyFile
	resp.File = message.FileBody{File: f, Offset: offset, Length: length}
	return resp
}

func (h *Handler) addValidators(resp *message.Response, etag string, lastModified time.Time, haveLastModified bool) {
	if etag != "" {
		resp.SetHeader("ETag", etag)
	}
	if h.cfg.AddLastModified && haveLastModified {
		resp.SetHeader("Last-Modified", httpdate.Format(lastModified))
	}
}

func (h *Handler) contentTypeFor(target string) string {
	if h.cfg.ContentTypeResolver != nil {
		if ct := h.cfg.ContentTypeResolver(target); ct != "" {
			return ct
		}
	}
	if ct := mime.TypeByExtension(filepath.Ext(target)); ct != "" {
		return ct
	}
	if h.cfg.DefaultContentType != "" {
		return h.cfg.DefaultContentType
	}
	return "application/octet-stream"
}

func notFoundResponse() *message.Response {
	return message.NewResponse(404, []byte("Not Found\n"))
}
