package pipeline

import (
	"sync"
	"time"

	"github.com/fwojciec/apigraph"
)

// ProgressFunc is a callback for scan progress events. Consumers may
// subscribe or ignore; delivery is best-effort.
type ProgressFunc func(event apigraph.ProgressEvent)

// emitterBuffer bounds the progress event channel. Events beyond the
// buffer are dropped rather than blocking the pipeline.
const emitterBuffer = 64

// emitter decouples progress delivery from the pipeline. Publishing
// never blocks and never fails the publisher; subscriber panics are
// swallowed and slow subscribers only ever cost dropped events.
type emitter struct {
	ch      chan apigraph.ProgressEvent
	done    chan struct{}
	mu      sync.Mutex
	percent float64
}

// newEmitter starts an emitter draining into fn. A nil fn yields an
// emitter that drops everything.
func newEmitter(fn ProgressFunc) *emitter {
	e := &emitter{
		ch:   make(chan apigraph.ProgressEvent, emitterBuffer),
		done: make(chan struct{}),
	}
	go func() {
		defer close(e.done)
		for event := range e.ch {
			if fn == nil {
				continue
			}
			deliver(fn, event)
		}
	}()
	return e
}

// deliver invokes the subscriber, isolating panics.
func deliver(fn ProgressFunc, event apigraph.ProgressEvent) {
	defer func() {
		_ = recover()
	}()
	fn(event)
}

// emit publishes an event without blocking. Percent is clamped to be
// monotonically non-decreasing within the emitter's lifetime.
func (e *emitter) emit(event apigraph.ProgressEvent) {
	e.mu.Lock()
	if event.Percent < e.percent {
		event.Percent = e.percent
	} else {
		e.percent = event.Percent
	}
	e.mu.Unlock()

	event.At = time.Now()
	select {
	case e.ch <- event:
	default: // subscriber too slow, drop
	}
}

// close stops the emitter and waits for buffered events to drain.
func (e *emitter) close() {
	close(e.ch)
	<-e.done
}
