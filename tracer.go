package vitalz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// ErrWorkerPoolEnabled is returned when EnableWorkerPool is called twice.
var ErrWorkerPoolEnabled = errors.New("worker pool already enabled")

// SpanHandler is called when a span completes.
type SpanHandler func(span RecordedSpan)

type handlerEntry struct {
	handler SpanHandler
	id      uint64
	async   bool
}

// Tracer is an in-process TracingBackend. It records finished spans and
// hands them to registered handlers and collectors.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field order optimized for functionality over memory
type Tracer struct {
	handlers     []handlerEntry
	panicHook    func(handlerID uint64, r interface{})
	workers      *workerPool
	traceIDPool  *IDPool
	spanIDPool   *IDPool
	clock        clockz.Clock
	active       atomic.Pointer[ActiveSpan]
	handlersLock sync.RWMutex
	idPoolOnce   sync.Once
	nextID       atomic.Uint64
	droppedSpans atomic.Uint64
	closed       atomic.Bool
}

// NewTracer creates a new tracer.
// Uses the real clock for production behavior.
func NewTracer() *Tracer {
	return &Tracer{
		handlers: make([]handlerEntry, 0),
		clock:    clockz.RealClock,
	}
}

// WithClock returns a new tracer with the specified clock.
// Enables clock injection for deterministic testing.
func (*Tracer) WithClock(clock clockz.Clock) *Tracer {
	return &Tracer{
		handlers: make([]handlerEntry, 0),
		clock:    clock,
	}
}

// ensureIDPools initializes ID pools if not already created.
func (t *Tracer) ensureIDPools() {
	t.idPoolOnce.Do(func() {
		// Pool size based on number of CPUs for optimal contention balance.
		poolSize := runtime.NumCPU() * 100
		t.traceIDPool = NewIDPool(poolSize, t.hexID(16, time.RFC3339Nano))
		t.spanIDPool = NewIDPool(poolSize, t.hexID(8, "15:04:05.000000"))
	})
}

// hexID returns a factory producing random hex IDs of n bytes.
func (t *Tracer) hexID(n int, fallbackLayout string) func() string {
	return func() string {
		bytes := make([]byte, n)
		if _, err := rand.Read(bytes); err != nil {
			// Fallback to time-based ID if crypto/rand fails.
			return hex.EncodeToString([]byte(t.clock.Now().Format(fallbackLayout)))
		}
		return hex.EncodeToString(bytes)
	}
}

// OnSpanComplete registers a synchronous handler called when spans complete.
func (t *Tracer) OnSpanComplete(handler SpanHandler) uint64 {
	return t.registerHandler(handler, false)
}

// OnSpanCompleteAsync registers an asynchronous handler called when spans complete.
func (t *Tracer) OnSpanCompleteAsync(handler SpanHandler) uint64 {
	return t.registerHandler(handler, true)
}

// AddCollector buffers every completed span into c.
func (t *Tracer) AddCollector(c *Collector) uint64 {
	return t.OnSpanComplete(func(span RecordedSpan) {
		c.Collect(&span)
	})
}

func (t *Tracer) registerHandler(handler SpanHandler, async bool) uint64 {
	if handler == nil {
		return 0
	}

	id := t.nextID.Add(1)

	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	t.handlers = append(t.handlers, handlerEntry{
		id:      id,
		handler: handler,
		async:   async,
	})

	return id
}

// RemoveHandler removes a handler by ID.
func (t *Tracer) RemoveHandler(id uint64) {
	t.handlersLock.Lock()
	defer t.handlersLock.Unlock()

	// Preserve order
	for i, h := range t.handlers {
		if h.id == id {
			copy(t.handlers[i:], t.handlers[i+1:])
			t.handlers = t.handlers[:len(t.handlers)-1]
			return
		}
	}
}

// HasHandlers reports whether any handler is registered.
func (t *Tracer) HasHandlers() bool {
	t.handlersLock.RLock()
	defer t.handlersLock.RUnlock()
	return len(t.handlers) > 0
}

// SetPanicHook sets a function to be called when a handler panics.
func (t *Tracer) SetPanicHook(hook func(handlerID uint64, r interface{})) {
	t.panicHook = hook
}

// StartSpan creates a new span and returns it wrapped in an ActiveSpan.
// If the context contains an existing span, the new span will be its child.
// A span without a parent becomes the tracer's active root until it finishes.
func (t *Tracer) StartSpan(ctx context.Context, name Key, op string) (context.Context, *ActiveSpan) {
	return t.StartSpanAt(ctx, name, op, t.clock.Now())
}

// StartSpanAt is StartSpan with an explicit start time.
func (t *Tracer) StartSpanAt(ctx context.Context, name Key, op string, start time.Time) (context.Context, *ActiveSpan) {
	// Handle nil context by creating a new one.
	if ctx == nil {
		ctx = context.Background()
	}

	parent := SpanFromContext(ctx)
	active := t.newSpan(parent, name, op, start, nil)
	if parent == nil {
		t.active.Store(active)
	}

	return active.Context(ctx), active
}

// StartRoot implements RootStarter.
func (t *Tracer) StartRoot(name, op string, startTimestamp float64) Span {
	_, span := t.StartSpanAt(context.Background(), name, op, SecondsToTime(startTimestamp))
	return span
}

// ActiveSpan returns the current root span, or nil.
func (t *Tracer) ActiveSpan() Span {
	if a := t.active.Load(); a != nil {
		return a
	}
	return nil
}

// StartInactiveSpan starts a span without making it active. The parent is
// opts.Parent when it belongs to this tracer, otherwise the active root.
// Returns nil once the tracer is closed.
func (t *Tracer) StartInactiveSpan(opts SpanOptions) Span {
	if t.closed.Load() {
		return nil
	}

	parent, _ := opts.Parent.(*ActiveSpan)
	if parent == nil || parent.tracer != t {
		parent = t.active.Load()
	}

	start := t.clock.Now()
	if opts.StartTimestamp != 0 {
		start = SecondsToTime(opts.StartTimestamp)
	}

	return t.newSpan(parent, opts.Name, opts.Op, start, opts.Attributes)
}

func (t *Tracer) newSpan(parent *ActiveSpan, name, op string, start time.Time, attrs map[string]any) *ActiveSpan {
	span := &RecordedSpan{
		SpanID:    t.generateSpanID(),
		Name:      name,
		Op:        op,
		StartTime: start,
	}
	if len(attrs) > 0 {
		span.Attributes = make(map[Tag]any, len(attrs))
		for k, v := range attrs {
			span.Attributes[k] = v
		}
	}

	// Link to parent span if present.
	if parent != nil {
		span.TraceID = parent.TraceID()
		span.ParentID = parent.SpanID()
	} else {
		span.TraceID = t.generateTraceID()
	}

	return &ActiveSpan{span: span, tracer: t}
}

// collectSpan releases the active root and dispatches the finished span.
func (t *Tracer) collectSpan(a *ActiveSpan, span RecordedSpan) {
	t.active.CompareAndSwap(a, nil)
	t.executeHandlers(span)
}

// executeHandlers calls all registered handlers with the completed span.
func (t *Tracer) executeHandlers(span RecordedSpan) {
	t.handlersLock.RLock()
	if len(t.handlers) == 0 {
		t.handlersLock.RUnlock()
		return
	}

	handlers := make([]handlerEntry, len(t.handlers))
	copy(handlers, t.handlers)
	t.handlersLock.RUnlock()

	for _, h := range handlers {
		if h.async {
			// Make a copy of h for closure
			entry := h
			if t.workers != nil {
				t.workers.submit(func() {
					t.safeCall(entry, span)
				})
			} else {
				go t.safeCall(entry, span)
			}
		} else {
			t.safeCall(h, span)
		}
	}
}

func (t *Tracer) safeCall(entry handlerEntry, span RecordedSpan) {
	defer func() {
		if r := recover(); r != nil {
			if t.panicHook != nil {
				t.panicHook(entry.id, r)
			}
		}
	}()
	entry.handler(span)
}

// EnableWorkerPool creates a bounded worker pool for async handlers.
func (t *Tracer) EnableWorkerPool(workers, queueSize int) error {
	if t.workers != nil {
		return ErrWorkerPoolEnabled
	}
	if workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if queueSize <= 0 {
		return errors.New("queueSize must be > 0")
	}

	t.workers = &workerPool{
		tasks:   make(chan func(), queueSize),
		stop:    make(chan struct{}),
		dropped: &t.droppedSpans,
	}

	t.workers.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go t.workers.run()
	}

	return nil
}

// DroppedSpans returns the number of spans dropped due to full worker queue.
func (t *Tracer) DroppedSpans() uint64 {
	return t.droppedSpans.Load()
}

// Close shuts down the tracer gracefully and cleans up resources.
func (t *Tracer) Close() {
	t.closed.Store(true)

	// Stop new handler executions
	t.handlersLock.Lock()
	t.handlers = nil
	t.handlersLock.Unlock()

	// Wait for in-flight async tasks
	if t.workers != nil {
		t.workers.shutdown()
		t.workers = nil
	}

	if t.traceIDPool != nil {
		t.traceIDPool.Close()
	}
	if t.spanIDPool != nil {
		t.spanIDPool.Close()
	}
}

// generateTraceID creates a new trace ID using the ID pool.
func (t *Tracer) generateTraceID() string {
	t.ensureIDPools()
	return t.traceIDPool.Get()
}

// generateSpanID creates a new span ID using the ID pool.
func (t *Tracer) generateSpanID() string {
	t.ensureIDPools()
	return t.spanIDPool.Get()
}

// workerPool manages a fixed number of workers for processing async handlers.
//
//nolint:govet // Field order optimized for functionality over memory
type workerPool struct {
	tasks   chan func()
	stop    chan struct{}
	dropped *atomic.Uint64
	wg      sync.WaitGroup
}

func (w *workerPool) run() {
	defer w.wg.Done()
	for {
		select {
		case task := <-w.tasks:
			task()
		case <-w.stop:
			return
		}
	}
}

func (w *workerPool) submit(task func()) {
	select {
	case w.tasks <- task:
	default:
		w.dropped.Add(1)
	}
}

func (w *workerPool) shutdown() {
	close(w.stop)
	w.wg.Wait()
}
