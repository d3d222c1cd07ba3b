package metrics

import "time"

// Sink is the narrow metrics-collaborator surface the reactor, router and
// handlers report through: counter add, gauge set, histogram observe, and a
// timing helper built on histogram observe. Every method takes an even
// number of label key/value strings, mirroring the name/value pair style
// struct-tag-driven configuration already uses elsewhere in this module.
type Sink interface {
	CounterAdd(name string, delta float64, labels ...string)
	GaugeSet(name string, value float64, labels ...string)
	HistogramObserve(name string, value float64, labels ...string)
	Timing(name string, d time.Duration, labels ...string)
}

type noopSink struct{}

func (noopSink) CounterAdd(string, float64, ...string)          {}
func (noopSink) GaugeSet(string, float64, ...string)            {}
func (noopSink) HistogramObserve(string, float64, ...string)    {}
func (noopSink) Timing(string, time.Duration, ...string)        {}

// Noop returns a Sink whose every method is a zero-cost no-op.
func Noop() Sink {
	return noopSink{}
}
