package http2

// flowWindow tracks one side (send or receive) of one flow-control level
// (connection or stream). RFC 9113 §6.9 permits the send window to go
// negative after a peer shrinks INITIAL_WINDOW_SIZE; it is represented as
// a signed value for exactly that reason.
type flowWindow struct {
	size int64
}

func newFlowWindow(initial uint32) flowWindow {
	return flowWindow{size: int64(initial)}
}

// add applies delta (positive for WINDOW_UPDATE / grant, negative for a
// settings-driven shrink) and reports whether the result overflows
// 2^31-1, which is a flow-control error.
func (w *flowWindow) add(delta int64) bool {
	w.size += delta
	return w.size > maxWindowSize
}

// consume subtracts n (a DATA payload length) and reports whether the
// window went negative, which is a flow-control error.
func (w *flowWindow) consume(n int64) bool {
	w.size -= n
	return w.size < 0
}

func (w flowWindow) available() int64 {
	if w.size < 0 {
		return 0
	}
	return w.size
}

// windowUpdateThreshold returns the receive-window level below which the
// server should emit a WINDOW_UPDATE to restore the window back to
// initial: half of the configured initial window, per the spec's
// "restores on falling below a threshold" policy.
func windowUpdateThreshold(initial uint32) int64 {
	return int64(initial) / 2
}
