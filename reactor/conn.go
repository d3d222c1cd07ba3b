//go:build linux

package reactor

import (
	"io"
	"net"
	"time"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/buffer"
	"github.com/sjanel/aeronet-go/config"
	"github.com/sjanel/aeronet-go/headers"
	"github.com/sjanel/aeronet-go/http1"
	"github.com/sjanel/aeronet-go/http2"
	"github.com/sjanel/aeronet-go/httpdate"
	"github.com/sjanel/aeronet-go/message"
	"github.com/sjanel/aeronet-go/router"
)

type protoKind uint8

const (
	protoUnset protoKind = iota
	protoHTTP1
	protoHTTP2
)

// Conn is the per-connection state a Reactor (cleartext, epoll-driven) or
// a TLS handling goroutine feeds bytes into. All protocol logic lives
// here so the two I/O strategies share one implementation.
type Conn struct {
	fd         int // epoll-path only; 0 for TLS connections
	remoteAddr string
	isTLS      bool

	readBuf *buffer.Bytes
	out     []byte // pending bytes to write
	outSent int

	proto protoKind
	h2    *http2.Connection

	cfg    config.ListenerConfig
	router *router.Router
	dates  *httpdate.Cache
	log    LogFunc

	requestsServed int
	lastActivity   time.Time
	closing        bool
}

func newConn(remoteAddr string, cfg config.ListenerConfig, rt *router.Router, dates *httpdate.Cache, log LogFunc) *Conn {
	return &Conn{
		remoteAddr:   remoteAddr,
		readBuf:      buffer.New(4096),
		cfg:          cfg,
		router:       rt,
		dates:        dates,
		log:          log,
		lastActivity: time.Now(),
	}
}

func (c *Conn) logf(level, format string, args ...any) {
	c.log.logf(level, format, args...)
}

func (c *Conn) allowsCleartextHTTP2() bool {
	return c.cfg.Http2.Enabled && (c.isTLS || c.cfg.Http2.AllowCleartext)
}

// Feed appends newly read bytes and drives as much request processing as
// the buffered data allows, returning bytes ready to write and whether
// the connection should be closed once they are flushed.
func (c *Conn) Feed(p []byte) (out []byte, closeAfter bool, err error) {
	c.lastActivity = time.Now()
	c.readBuf.Append(p)

	if c.proto == protoUnset {
		if !c.allowsCleartextHTTP2() {
			c.proto = protoHTTP1
		} else {
			settingsOut, consumed, perr := c.http2Conn().ConsumePreface(c.readBuf.Bytes())
			switch {
			case perr == nil && consumed > 0:
				c.proto = protoHTTP2
				c.readBuf.EraseFront(consumed)
				out = append(out, settingsOut...)
			case perr == nil && consumed == 0:
				return out, false, nil
			default:
				c.proto = protoHTTP1
			}
		}
	}

	var o []byte
	var ca bool
	switch c.proto {
	case protoHTTP1:
		o, ca, err = c.feedHTTP1()
	case protoHTTP2:
		o, ca, err = c.feedHTTP2()
	}
	out = append(out, o...)
	return out, ca, err
}

func (c *Conn) http2Conn() *http2.Connection {
	if c.h2 == nil {
		c.h2 = http2.New(http2.Config{
			Local: http2.Settings{
				HeaderTableSize:   c.cfg.Http2.HeaderTableSize,
				InitialWindowSize: c.cfg.Http2.InitialWindowSize,
				MaxFrameSize:      c.cfg.Http2.MaxFrameSize,
				MaxHeaderListSize: c.cfg.Http2.MaxHeaderListSize,
			},
			MaxHeaderListBytes: int(c.cfg.Http2.MaxHeaderListSize),
			ConnectAllowlist:   c.cfg.Http2.ConnectAllowlist,
		})
	}
	return c.h2
}

// feedHTTP1 parses and dispatches as many complete, pipelined requests as
// the buffer currently holds, stopping (without error) at the first
// incomplete one.
func (c *Conn) feedHTTP1() (out []byte, closeAfter bool, err error) {
	for {
		if c.requestsServed >= c.cfg.MaxRequestsPerConnection && c.cfg.MaxRequestsPerConnection > 0 {
			return out, true, nil
		}

		head, perr := http1.ParseHead(c.readBuf, c.cfg.MaxHeaderBytes)
		if perr == http1.ErrIncomplete {
			return out, false, nil
		}
		if perr != nil {
			out = append(out, c.errorResponse(classifyStatus(perr))...)
			return out, true, nil
		}

		framing, ferr := http1.DetermineFraming(head.Headers)
		if ferr != nil {
			out = append(out, c.errorResponse(400)...)
			return out, true, nil
		}

		var body []byte
		bodyEnd := head.HeadLen

		switch framing.Kind {
		case http1.FramingContentLength:
			if framing.ContentLength > c.cfg.MaxBodyBytes {
				out = append(out, c.errorResponse(413)...)
				return out, true, nil
			}
			need := head.HeadLen + int(framing.ContentLength)
			if c.readBuf.Len() < need {
				return out, false, nil
			}
			body = append([]byte(nil), c.readBuf.Slice(head.HeadLen, need)...)
			bodyEnd = need
		case http1.FramingChunked:
			decoded, _, consumed, derr := http1.DecodeChunkedBody(c.readBuf.Slice(head.HeadLen, c.readBuf.Len()), c.cfg.MaxBodyBytes)
			if derr == http1.ErrIncomplete {
				return out, false, nil
			}
			if derr != nil {
				out = append(out, c.errorResponse(classifyStatus(derr))...)
				return out, true, nil
			}
			body = decoded
			bodyEnd = head.HeadLen + consumed
		}

		req := &message.Request{
			Proto:      protoVersion(head.Version),
			Method:     head.RawMethod,
			Target:     head.Target,
			Path:       head.Path,
			Query:      head.Query,
			Scheme:     schemeFor(c.isTLS),
			Headers:    copyHeaders(head.Headers),
			Body:       body,
			RemoteAddr: c.remoteAddr,
		}
		if auth, ok := head.Headers.Get("host"); ok {
			req.Authority = auth
		}

		resp := c.dispatch(req, head.Method)
		persist := http1.Persist(http1.KeepAliveDecision{
			RequestVersion:   head.Version,
			ConnectionValue:  connectionHeaderValue(head.Headers),
			HasConnection:    hasConnectionHeader(head.Headers),
			RequestsServed:   c.requestsServed + 1,
			MaxRequests:      c.cfg.MaxRequestsPerConnection,
		})

		out = c.appendResponse(out, resp, persist, head.Method == router.MethodHEAD)
		c.readBuf.EraseFront(bodyEnd)
		c.requestsServed++

		if !persist {
			return out, true, nil
		}
	}
}

// appendResponse serializes resp's head and, unless suppressBody (the HEAD
// fallback dispatches the matching GET handler and relies on the
// connection layer to drop the body), its body.
func (c *Conn) appendResponse(out []byte, resp *message.Response, persist bool, suppressBody bool) []byte {
	chunked := resp.Kind != message.BodyNone && len(resp.Trailers) > 0
	var contentLength int64
	if resp.Kind == message.BodyBytes {
		contentLength = int64(len(resp.Bytes))
	} else if resp.Kind == message.BodyFile {
		contentLength = resp.File.Length
	}
	out = http1.AppendResponseHead(out, resp, contentLength, chunked, http1.WriteOptions{KeepAlive: persist, Dates: c.dates})
	if suppressBody {
		if resp.Kind == message.BodyFile && resp.File.File != nil {
			resp.File.File.Close()
		}
		return out
	}
	switch resp.Kind {
	case message.BodyBytes:
		out = append(out, resp.Bytes...)
	case message.BodyFile:
		out = append(out, readFileBody(resp.File)...)
	}
	return out
}

// readFileBody reads the file range described by fb into memory and
// closes the file. The reactor's single-pass, fully-buffered response
// model has no path to hand a raw fd to the kernel (sendfile/splice)
// without tracking a pending transfer across epoll ticks, so FileBody
// responses are materialized here rather than sent zero-copy.
func readFileBody(fb message.FileBody) []byte {
	if fb.File == nil {
		return nil
	}
	defer fb.File.Close()
	if fb.Length <= 0 {
		return nil
	}
	buf := make([]byte, fb.Length)
	n, err := fb.File.ReadAt(buf, fb.Offset)
	if err != nil && err != io.EOF {
		return nil
	}
	return buf[:n]
}

func (c *Conn) errorResponse(status int) []byte {
	resp := message.NewResponse(status, nil)
	return c.appendResponse(nil, resp, false, false)
}

func (c *Conn) dispatch(req *message.Request, method router.Method) *message.Response {
	result := c.router.Match(method, req.Path)
	switch result.Kind {
	case router.KindHandler:
		req.PathParams = result.PathParams
		return runSyncOrDrain(result.Handler, req)
	case router.KindMethodNotAllowed:
		return message.NewResponse(405, nil)
	case router.KindRedirectAddSlash, router.KindRedirectRemoveSlash:
		resp := message.NewResponse(301, nil)
		resp.SetHeader("Location", result.RedirectTo)
		return resp
	default:
		if result.HasDefault {
			return runSyncOrDrain(result.DefaultHandler, req)
		}
		return message.NewResponse(404, nil)
	}
}

// runSyncOrDrain executes a Sync handler directly, or polls an Async
// handler's Task to completion inline. Streaming handlers are not
// supported over the fully-buffered request path; SetPath enforces
// handler-kind consistency per path but not per connection, so a
// misconfigured streaming handler reached here degrades to 501 rather
// than silently dropping the response.
func runSyncOrDrain(h message.Handler, req *message.Request) *message.Response {
	switch {
	case h.Sync != nil:
		return h.Sync(req)
	case h.Async != nil:
		task := h.Async(req)
		for {
			done, resp, err := task.Poll()
			if err != nil {
				return message.NewResponse(500, nil)
			}
			if done {
				return resp
			}
		}
	default:
		return message.NewResponse(501, nil)
	}
}

func classifyStatus(err error) int {
	if aeroerr.CodeOf(err) == aeroerr.RequestHeadTooLarge || aeroerr.CodeOf(err) == aeroerr.RequestBodyTooLarge {
		return 431
	}
	return 400
}

func protoVersion(v http1.Version) message.Protocol {
	if v == http1.Version10 {
		return message.ProtoHTTP10
	}
	return message.ProtoHTTP11
}

func schemeFor(isTLS bool) string {
	if isTLS {
		return "https"
	}
	return "http"
}

func connectionHeaderValue(h interface{ Get(string) (string, bool) }) string {
	v, _ := h.Get("connection")
	return v
}

func hasConnectionHeader(h interface{ Get(string) (string, bool) }) bool {
	_, ok := h.Get("connection")
	return ok
}

func copyHeaders(h *headers.List) message.HeaderView {
	mh := message.NewMapHeaders()
	for i := 0; i < h.Len(); i++ {
		mh.Add(h.Name(i), h.Value(i))
	}
	return mh
}

// remoteAddrFromNet formats a net.Addr the same way peerAddr formats a
// raw epoll-path sockaddr, so Request.RemoteAddr has one shape regardless
// of which I/O path accepted the connection.
func remoteAddrFromNet(a net.Addr) string {
	return a.String()
}
