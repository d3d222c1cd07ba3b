package message

// StreamWriter is the incremental-output surface a streaming handler is
// given: set the status once, add headers before the first Write, then
// Write body chunks subject to the connection's outbound cap, then End.
type StreamWriter interface {
	Status(code int)
	AddHeader(name, value string)
	Write(p []byte) (int, error)
	End() error
}

// SyncHandler takes a Request view and returns a Response synchronously;
// it must not block on I/O.
type SyncHandler func(req *Request) *Response

// StreamHandler takes a Request and a writer; output is emitted
// incrementally rather than built into one Response.
type StreamHandler func(req *Request, w StreamWriter)

// Task is a single-threaded resumable computation an async handler
// returns; the reactor polls it to completion without ever running it on
// a second goroutine.
type Task interface {
	// Poll advances the task. done is true once Resp/Err are final.
	Poll() (done bool, resp *Response, err error)
}

// AsyncHandler returns a Task the reactor resumes between epoll batches.
type AsyncHandler func(req *Request) Task

// Handler is the sum type router.PathEntry stores per (path, method): at
// most one of the three fields is non-nil.
type Handler struct {
	Sync   SyncHandler
	Stream StreamHandler
	Async  AsyncHandler
}

// IsZero reports whether no handler variant is set.
func (h Handler) IsZero() bool {
	return h.Sync == nil && h.Stream == nil && h.Async == nil
}
