package integration

import (
	"testing"

	"github.com/zoobzio/vitalz"
)

// TestSinglePageNavigations follows one page through its pageload and two
// client side navigations.
func TestSinglePageNavigations(t *testing.T) {
	page := NewPage(t)

	pageload := page.Tracer.StartRoot("/", vitalz.OpPageload, pageTimeOrigin)
	page.Host.Append(Navigation("https://shop.example/"))
	page.Host.Append(Paints(80, 120)...)
	page.Tracker.Finalize(pageload)
	pageload.End(At(1500))

	first := page.Collector.Export()
	firstLen := len(first)
	if firstLen == 0 {
		t.Fatal("Expected pageload spans")
	}

	// Entries recorded before the navigation started are clock skew.
	nav := page.Tracer.StartRoot("/products", vitalz.OpNavigation, At(5000))
	page.Host.Append(
		&vitalz.MarkEntry{EntryBase: vitalz.EntryBase{Name: "late-hydration", StartTime: 4200}},
		&vitalz.MarkEntry{EntryBase: vitalz.EntryBase{Name: "products-rendered", StartTime: 5400}},
		&vitalz.ResourceEntry{
			EntryBase:     vitalz.EntryBase{Name: "https://shop.example/api/products", StartTime: 5050, Duration: 80},
			InitiatorType: "xmlhttprequest",
		},
		&vitalz.ResourceEntry{
			EntryBase:     vitalz.EntryBase{Name: "https://cdn.example/products.css", StartTime: 5100, Duration: 40},
			InitiatorType: "link",
		},
	)
	page.Host.Append(&vitalz.LargestContentfulPaintEntry{EntryBase: vitalz.EntryBase{StartTime: 5500}})
	page.Tracker.Finalize(nav)
	nav.End(At(6000))

	analyzer := NewTraceAnalyzer(page.Collector.Export())
	navigation := analyzer.Root(t, vitalz.OpNavigation)
	if err := analyzer.VerifyContained(navigation); err != nil {
		t.Error(err)
	}

	marks := analyzer.SpansByOp("mark")
	if len(marks) != 1 || marks[0].Name != "products-rendered" {
		t.Errorf("Expected only products-rendered mark, got %+v", marks)
	}
	if n := len(analyzer.SpansByOp("resource.xmlhttprequest")); n != 0 {
		t.Errorf("Expected xhr resources suppressed, got %d", n)
	}
	css := analyzer.SpansByOp("resource.link")
	if len(css) != 1 {
		t.Fatalf("Expected one stylesheet span, got %d", len(css))
	}
	if css[0].Attributes[vitalz.AttrSameOrigin] != false {
		t.Error("Expected cross origin stylesheet")
	}
	if css[0].Name != "https://cdn.example/products.css" {
		t.Errorf("Expected cross origin name kept, got %s", css[0].Name)
	}
	if len(navigation.Measurements) != 0 {
		t.Errorf("Expected no measurements on navigation span, got %v", navigation.Measurements)
	}

	// A navigation with no new entries produces nothing but its own span.
	again := page.Tracer.StartRoot("/cart", vitalz.OpNavigation, At(7000))
	page.Tracker.Finalize(again)
	again.End(At(7100))
	if spans := page.Collector.Export(); len(spans) != 1 {
		t.Errorf("Expected only the navigation span, got %d", len(spans))
	}

	if pos := page.Tracker.Session().CursorPosition(); pos != len(page.Host.Entries()) {
		t.Errorf("Expected cursor at %d, got %d", len(page.Host.Entries()), pos)
	}
}

// TestRestartBetweenPages checks that a restarted tracker begins a new
// session that drains the log from its start exactly once.
func TestRestartBetweenPages(t *testing.T) {
	page := NewPage(t)
	page.Host.Append(&vitalz.MarkEntry{EntryBase: vitalz.EntryBase{Name: "boot", StartTime: 5}})

	before := page.Tracker.Session()
	if err := page.Tracker.Start(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	after := page.Tracker.Session()
	if before.ID() == after.ID() {
		t.Error("Expected a new session after restart")
	}
	if len(page.Tracker.Subscriptions()) == 0 {
		t.Error("Expected subscriptions to be reinstalled")
	}

	root := page.Tracer.StartRoot("/", vitalz.OpPageload, pageTimeOrigin)
	page.Tracker.Finalize(root)
	root.End(At(100))

	page.Collector.AssertOpCount("mark", 1)
}
