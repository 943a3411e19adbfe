package integration

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/vitalz"
)

// pageTimeOrigin is the time origin of every simulated page (epoch seconds).
const pageTimeOrigin = 1700000000.0

// MockCollector wraps a real collector with test utilities.
// Provides synchronous collection and verification helpers.
//
//nolint:govet // Field alignment optimized for test helper readability
type MockCollector struct {
	exported []vitalz.RecordedSpan
	*vitalz.Collector
	t  *testing.T
	mu sync.Mutex
}

// NewMockCollector creates a synchronous collector for testing.
func NewMockCollector(t *testing.T, name string, bufferSize int) *MockCollector {
	collector := vitalz.NewCollector(name, bufferSize)
	collector.SetSyncMode(true)
	t.Cleanup(collector.Close)
	return &MockCollector{
		Collector: collector,
		t:         t,
	}
}

// Export returns collected spans and clears the buffer.
func (m *MockCollector) Export() []vitalz.RecordedSpan {
	m.mu.Lock()
	defer m.mu.Unlock()

	spans := m.Collector.Export()
	m.exported = append(m.exported, spans...)
	return spans
}

// GetAll returns every span exported so far, including buffered ones.
func (m *MockCollector) GetAll() []vitalz.RecordedSpan {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current := m.Collector.Export(); len(current) > 0 {
		m.exported = append(m.exported, current...)
	}
	all := make([]vitalz.RecordedSpan, len(m.exported))
	copy(all, m.exported)
	return all
}

// WaitForSpans waits until at least expected spans were exported.
func (m *MockCollector) WaitForSpans(expected int, timeout time.Duration) []vitalz.RecordedSpan {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if all := m.GetAll(); len(all) >= expected {
			return all
		}
		<-ticker.C
	}

	all := m.GetAll()
	m.t.Errorf("Timeout waiting for spans: expected %d, got %d", expected, len(all))
	return all
}

// AssertOpCount verifies how many exported spans carry op.
func (m *MockCollector) AssertOpCount(op string, expected int) {
	n := 0
	for _, s := range m.GetAll() {
		if s.Op == op {
			n++
		}
	}
	if n != expected {
		m.t.Errorf("Expected %d %s spans, got %d", expected, op, n)
	}
}

// SpanTree represents a hierarchical view of spans.
type SpanTree struct {
	Span     vitalz.RecordedSpan
	Children []*SpanTree
}

// BuildSpanTree constructs a tree from a flat span list.
func BuildSpanTree(spans []vitalz.RecordedSpan) []*SpanTree {
	nodes := make(map[string]*SpanTree, len(spans))
	for i := range spans {
		nodes[spans[i].SpanID] = &SpanTree{Span: spans[i]}
	}

	var roots []*SpanTree
	for i := range spans {
		node := nodes[spans[i].SpanID]
		if parent, ok := nodes[spans[i].ParentID]; ok && spans[i].ParentID != "" {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// PrintSpanTree formats a span tree for debugging.
func PrintSpanTree(trees []*SpanTree) string {
	var sb strings.Builder
	for _, tree := range trees {
		printTreeNode(&sb, tree, 0)
	}
	return sb.String()
}

func printTreeNode(sb *strings.Builder, node *SpanTree, depth int) {
	fmt.Fprintf(sb, "%s[%s] %s (%.2fms)\n",
		strings.Repeat("  ", depth), node.Span.Op, node.Span.Name, node.Span.Duration.Seconds()*1000)
	for _, child := range node.Children {
		printTreeNode(sb, child, depth+1)
	}
}

// TraceAnalyzer provides trace-level assertions.
type TraceAnalyzer struct {
	spans []vitalz.RecordedSpan
	byOp  map[string][]vitalz.RecordedSpan
	trees []*SpanTree
}

// NewTraceAnalyzer creates an analyzer for a set of spans.
func NewTraceAnalyzer(spans []vitalz.RecordedSpan) *TraceAnalyzer {
	a := &TraceAnalyzer{
		spans: spans,
		byOp:  make(map[string][]vitalz.RecordedSpan),
		trees: BuildSpanTree(spans),
	}
	for _, s := range spans {
		a.byOp[s.Op] = append(a.byOp[s.Op], s)
	}
	return a
}

// SpansByOp returns every span with op.
func (a *TraceAnalyzer) SpansByOp(op string) []vitalz.RecordedSpan {
	return a.byOp[op]
}

// Root returns the single span with op, failing the test otherwise.
func (a *TraceAnalyzer) Root(t *testing.T, op string) vitalz.RecordedSpan {
	t.Helper()
	roots := a.byOp[op]
	if len(roots) != 1 {
		t.Fatalf("Expected one %s span, got %d\n%s", op, len(roots), PrintSpanTree(a.trees))
	}
	return roots[0]
}

// CountTrees returns the number of top-level spans.
func (a *TraceAnalyzer) CountTrees() int {
	return len(a.trees)
}

// VerifyContained checks that every child of root lies inside root's time
// range and shares its trace.
func (a *TraceAnalyzer) VerifyContained(root vitalz.RecordedSpan) error {
	for _, s := range a.spans {
		if s.ParentID != root.SpanID {
			continue
		}
		if s.TraceID != root.TraceID {
			return fmt.Errorf("%s %q: trace %s, root trace %s", s.Op, s.Name, s.TraceID, root.TraceID)
		}
		if s.StartTime.Before(root.StartTime) {
			return fmt.Errorf("%s %q starts at %v before root %v", s.Op, s.Name, s.StartTime, root.StartTime)
		}
		if s.EndTime.Before(s.StartTime) {
			return fmt.Errorf("%s %q ends before it starts", s.Op, s.Name)
		}
	}
	return nil
}

// Page simulates one browser page: a host, the in-process tracer and the
// tracker wired together.
type Page struct {
	Host      *vitalz.StaticHost
	Tracer    *vitalz.Tracer
	Collector *MockCollector
	Tracker   *vitalz.Tracker
}

// NewPage creates a started page. Cleanup stops tracking and closes the tracer.
func NewPage(t *testing.T, opts ...vitalz.Option) *Page {
	t.Helper()
	p := &Page{
		Host:      vitalz.NewStaticHost(pageTimeOrigin),
		Tracer:    vitalz.NewTracer(),
		Collector: NewMockCollector(t, "page", 1000),
	}
	p.Host.SetOrigin("https://shop.example")
	p.Tracer.AddCollector(p.Collector.Collector)
	p.Tracker = vitalz.NewTracker(p.Host, p.Tracer, opts...)
	if err := p.Tracker.Start(); err != nil {
		t.Fatalf("Failed to start tracker: %v", err)
	}
	t.Cleanup(func() {
		p.Tracker.Stop()
		p.Tracer.Close()
	})
	return p
}

// At converts page milliseconds to epoch seconds.
func At(ms float64) float64 {
	return pageTimeOrigin + ms/1000
}

// Navigation returns a complete navigation timing entry for url.
func Navigation(url string) *vitalz.NavigationEntry {
	return &vitalz.NavigationEntry{
		EntryBase:                  vitalz.EntryBase{Name: url, Duration: 1200},
		FetchStart:                 2,
		DomainLookupStart:          4,
		DomainLookupEnd:            18,
		ConnectStart:               18,
		SecureConnectionStart:      30,
		ConnectEnd:                 55,
		RequestStart:               60,
		ResponseStart:              140,
		ResponseEnd:                190,
		DomContentLoadedEventStart: 620,
		DomContentLoadedEventEnd:   640,
		LoadEventStart:             1150,
		LoadEventEnd:               1200,
	}
}

// Resources returns n script resources served from origin, 10ms apart.
func Resources(origin string, n int) []vitalz.Entry {
	entries := make([]vitalz.Entry, 0, n)
	for i := 0; i < n; i++ {
		size := float64(1024 * (i + 1))
		entries = append(entries, &vitalz.ResourceEntry{
			EntryBase:     vitalz.EntryBase{Name: fmt.Sprintf("%s/static/chunk-%d.js", origin, i), StartTime: float64(200 + 10*i), Duration: 35},
			InitiatorType: "script",
			TransferSize:  &size,
		})
	}
	return entries
}

// Paints returns first-paint and first-contentful-paint entries.
func Paints(fp, fcp float64) []vitalz.Entry {
	return []vitalz.Entry{
		&vitalz.PaintEntry{EntryBase: vitalz.EntryBase{Name: "first-paint", StartTime: fp}},
		&vitalz.PaintEntry{EntryBase: vitalz.EntryBase{Name: "first-contentful-paint", StartTime: fcp}},
	}
}
