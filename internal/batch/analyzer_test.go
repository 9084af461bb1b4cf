package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// stubClient counts invocations and fails the first N of them.
type stubClient struct {
	calls    int
	failures int
	response string
}

func (s *stubClient) Analyze(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.calls <= s.failures {
		return "", errors.New("backend unavailable")
	}
	return s.response, nil
}

func memItem(name, content string) Item {
	return Item{
		Path:        name,
		DisplayName: name,
		Load:        func() ([]byte, error) { return []byte(content), nil },
	}
}

func testPrompt(code string, categories []string) string {
	return fmt.Sprintf("review [%s]: %s", strings.Join(categories, ","), code)
}

func testReport(original, improved string, categories []string) string {
	return fmt.Sprintf("report: %d -> %d", len(original), len(improved))
}

func newTestAnalyzer(client Client, opts Options) *Analyzer {
	if opts.Categories == nil {
		opts.Categories = []string{"null_reference", "security"}
	}
	a := New(client, testPrompt, testReport, opts)
	a.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return a
}

func TestRun_AllSucceed(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	items := []Item{memItem("a.cs", "class A {}"), memItem("b.cs", "class B {}")}

	s := a.Run(context.Background(), items, nil, nil)

	if s.TotalItems != 2 || s.SucceededCount != 2 || s.FailedCount != 0 || s.SkippedCount != 0 {
		t.Fatalf("counts = %d/%d/%d/%d", s.TotalItems, s.SucceededCount, s.FailedCount, s.SkippedCount)
	}
	if len(s.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(s.Results))
	}
	for i, r := range s.Results {
		if !r.Succeeded || r.ErrorMessage != "" || r.ImprovedText == "" || r.ReportText == "" {
			t.Errorf("Results[%d] = %+v, want clean success", i, r)
		}
		if r.RetryCount != 0 {
			t.Errorf("Results[%d].RetryCount = %d, want 0", i, r.RetryCount)
		}
	}
	// Input order is preserved.
	if s.Results[0].DisplayName != "a.cs" || s.Results[1].DisplayName != "b.cs" {
		t.Errorf("results out of order: %s, %s", s.Results[0].DisplayName, s.Results[1].DisplayName)
	}
	if s.FinishedAt.Before(s.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}
}

func TestRun_EmptyFileSkipsWithoutClientCall(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})

	s := a.Run(context.Background(), []Item{memItem("empty.cs", "   \n\t ")}, nil, nil)

	if s.SkippedCount != 1 || s.SucceededCount != 0 || s.FailedCount != 0 {
		t.Fatalf("counts = %d/%d/%d", s.SucceededCount, s.FailedCount, s.SkippedCount)
	}
	r := s.Results[0]
	if !r.Skipped() {
		t.Error("result not classified as skipped")
	}
	if r.Succeeded || r.ErrorMessage == "" {
		t.Errorf("result = %+v, want failed with message", r)
	}
	if r.RetryCount != 0 {
		t.Errorf("RetryCount = %d, want 0", r.RetryCount)
	}
	if client.calls != 0 {
		t.Errorf("client called %d times for empty file, want 0", client.calls)
	}
}

func TestRun_ReadErrorSkips(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	item := Item{
		Path: "gone.cs",
		Load: func() ([]byte, error) { return nil, errors.New("permission denied") },
	}

	s := a.Run(context.Background(), []Item{item}, nil, nil)

	if s.SkippedCount != 1 {
		t.Fatalf("SkippedCount = %d, want 1", s.SkippedCount)
	}
	if !strings.Contains(s.Results[0].ErrorMessage, "permission denied") {
		t.Errorf("ErrorMessage = %q, want underlying cause", s.Results[0].ErrorMessage)
	}
	if client.calls != 0 {
		t.Errorf("client called %d times, want 0", client.calls)
	}
}

func TestRun_InvalidUTF8Skips(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	item := Item{
		Path: "binary.cs",
		Load: func() ([]byte, error) { return []byte{0xff, 0xfe, 0x00, 0x80}, nil },
	}

	s := a.Run(context.Background(), []Item{item}, nil, nil)

	if s.SkippedCount != 1 {
		t.Fatalf("SkippedCount = %d, want 1", s.SkippedCount)
	}
	if client.calls != 0 {
		t.Errorf("client called %d times, want 0", client.calls)
	}
}

func TestRun_FailTwiceThenSucceed(t *testing.T) {
	client := &stubClient{failures: 2, response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})

	s := a.Run(context.Background(), []Item{memItem("a.cs", "class A {}")}, nil, nil)

	r := s.Results[0]
	if !r.Succeeded {
		t.Fatalf("result = %+v, want success", r)
	}
	if r.RetryCount != 2 {
		t.Errorf("RetryCount = %d, want 2", r.RetryCount)
	}
	if client.calls != 3 {
		t.Errorf("client calls = %d, want 3", client.calls)
	}
}

func TestRun_ExhaustedRetriesFails(t *testing.T) {
	client := &stubClient{failures: 100}
	a := newTestAnalyzer(client, Options{})

	s := a.Run(context.Background(), []Item{memItem("a.cs", "class A {}")}, nil, nil)

	if s.FailedCount != 1 || s.SkippedCount != 0 {
		t.Fatalf("counts = failed %d, skipped %d", s.FailedCount, s.SkippedCount)
	}
	r := s.Results[0]
	if r.Succeeded || r.Skipped() {
		t.Fatalf("result = %+v, want non-skipped failure", r)
	}
	if r.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", r.RetryCount)
	}
	if client.calls != 3 {
		t.Errorf("client calls = %d, want exactly 3", client.calls)
	}
	if !strings.Contains(r.ErrorMessage, "3 attempts") {
		t.Errorf("ErrorMessage = %q, want attempt count", r.ErrorMessage)
	}
	// The failed item still carries its original text.
	if r.OriginalText == "" {
		t.Error("OriginalText empty on analysis failure")
	}
	if r.ImprovedText != "" {
		t.Error("ImprovedText non-empty on failure")
	}
}

func TestRun_CollaboratorPanicIsContained(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := New(client, func(code string, categories []string) string {
		panic("template bug")
	}, testReport, Options{Categories: []string{"security"}})
	a.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	s := a.Run(context.Background(), []Item{memItem("a.cs", "class A {}"), memItem("b.cs", "class B {}")}, nil, nil)

	// Both items fail, but the run completes and reports both.
	if s.FailedCount != 2 || len(s.Results) != 2 {
		t.Fatalf("counts = %+v", s)
	}
	if !strings.Contains(s.Results[0].ErrorMessage, "unexpected error") {
		t.Errorf("ErrorMessage = %q, want unexpected-error prefix", s.Results[0].ErrorMessage)
	}
}

func TestRun_CancellationAtThirdCheck(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	items := make([]Item, 5)
	for i := range items {
		items[i] = memItem(fmt.Sprintf("f%d.cs", i), "class X {}")
	}

	checks := 0
	isCancelled := func() bool {
		checks++
		return checks >= 3
	}
	var progressed []string
	onProgress := func(cur, total int, name string) { progressed = append(progressed, name) }

	s := a.Run(context.Background(), items, onProgress, isCancelled)

	// The check fires before the progress callback, so the 3rd check
	// stops the run with exactly two results and two progress calls.
	if len(s.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(s.Results))
	}
	if len(progressed) != 2 {
		t.Fatalf("progress calls = %d, want 2", len(progressed))
	}
	if client.calls != 2 {
		t.Errorf("client calls = %d, want 2", client.calls)
	}
	if s.TotalItems != 5 {
		t.Errorf("TotalItems = %d, want 5", s.TotalItems)
	}
	if got := s.SucceededCount + s.FailedCount + s.SkippedCount; got != len(s.Results) {
		t.Errorf("count sum = %d, want %d", got, len(s.Results))
	}
}

func TestRun_ContextCancelStopsAtItemBoundary(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	count := 0
	onProgress := func(cur, total int, name string) {
		count++
		if count == 2 {
			cancel()
		}
	}
	items := []Item{memItem("a.cs", "x"), memItem("b.cs", "y"), memItem("c.cs", "z")}

	s := a.Run(ctx, items, onProgress, nil)

	if len(s.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(s.Results))
	}
}

func TestRun_ProgressOrder(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	items := []Item{memItem("a.cs", "x"), memItem("b.cs", "y"), memItem("c.cs", "z")}

	var indices []int
	var totals []int
	a.Run(context.Background(), items, func(cur, total int, name string) {
		indices = append(indices, cur)
		totals = append(totals, total)
	}, nil)

	if len(indices) != 3 {
		t.Fatalf("progress calls = %d, want 3", len(indices))
	}
	for i, idx := range indices {
		if idx != i {
			t.Errorf("indices[%d] = %d, want %d", i, idx, i)
		}
		if totals[i] != 3 {
			t.Errorf("totals[%d] = %d, want 3", i, totals[i])
		}
	}
}

func TestRun_NilCallbacksChangeNothing(t *testing.T) {
	items := []Item{memItem("a.cs", "class A {}"), memItem("b.cs", "")}

	withCallbacks := newTestAnalyzer(&stubClient{response: "IMPROVED"}, Options{})
	s1 := withCallbacks.Run(context.Background(), items,
		func(int, int, string) {}, func() bool { return false })

	without := newTestAnalyzer(&stubClient{response: "IMPROVED"}, Options{})
	s2 := without.Run(context.Background(), items, nil, nil)

	if s1.SucceededCount != s2.SucceededCount ||
		s1.SkippedCount != s2.SkippedCount ||
		s1.FailedCount != s2.FailedCount ||
		len(s1.Results) != len(s2.Results) {
		t.Errorf("outcomes differ: %+v vs %+v", s1, s2)
	}
}

func TestRun_EndToEndScenario(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	items := []Item{
		memItem("A", "public class A{}"),
		memItem("B", ""),
	}

	s := a.Run(context.Background(), items, nil, nil)

	if s.TotalItems != 2 || s.SucceededCount != 1 || s.SkippedCount != 1 || s.FailedCount != 0 {
		t.Fatalf("counts = %d/%d/%d/%d",
			s.TotalItems, s.SucceededCount, s.SkippedCount, s.FailedCount)
	}
	if s.Results[0].ImprovedText != "IMPROVED" {
		t.Errorf("Results[0].ImprovedText = %q", s.Results[0].ImprovedText)
	}
	if s.Results[1].Succeeded || s.Results[1].ErrorMessage == "" {
		t.Errorf("Results[1] = %+v, want skip with message", s.Results[1])
	}
}

func TestRun_RetrySleepIsFixedOneSecond(t *testing.T) {
	client := &stubClient{failures: 2, response: "IMPROVED"}
	a := newTestAnalyzer(client, Options{})
	var waits []time.Duration
	a.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	a.Run(context.Background(), []Item{memItem("a.cs", "class A {}")}, nil, nil)

	if len(waits) != 2 {
		t.Fatalf("waits = %v, want 2 entries", waits)
	}
	for i, d := range waits {
		if d != time.Second {
			t.Errorf("waits[%d] = %v, want 1s", i, d)
		}
	}
}

type mapCache struct {
	entries map[string]string
	gets    int
	puts    int
}

func (m *mapCache) key(categories []string, code string) string {
	return strings.Join(categories, ",") + "|" + code
}

func (m *mapCache) Get(categories []string, code string) (string, bool) {
	m.gets++
	v, ok := m.entries[m.key(categories, code)]
	return v, ok
}

func (m *mapCache) Put(categories []string, code, response string) {
	m.puts++
	m.entries[m.key(categories, code)] = response
}

func TestRun_CacheHitSkipsClientCall(t *testing.T) {
	client := &stubClient{response: "IMPROVED"}
	cache := &mapCache{entries: map[string]string{}}
	a := newTestAnalyzer(client, Options{Cache: cache})
	items := []Item{memItem("a.cs", "class A {}")}

	s1 := a.Run(context.Background(), items, nil, nil)
	if client.calls != 1 || cache.puts != 1 {
		t.Fatalf("after first run: calls = %d, puts = %d", client.calls, cache.puts)
	}

	s2 := a.Run(context.Background(), items, nil, nil)
	if client.calls != 1 {
		t.Errorf("client calls = %d after cache hit, want 1", client.calls)
	}
	if !s2.Results[0].Succeeded || s2.Results[0].ImprovedText != s1.Results[0].ImprovedText {
		t.Errorf("cached result differs: %+v", s2.Results[0])
	}
	if s2.Results[0].RetryCount != 0 {
		t.Errorf("RetryCount = %d on cache hit, want 0", s2.Results[0].RetryCount)
	}
}

func TestRun_NoItems(t *testing.T) {
	a := newTestAnalyzer(&stubClient{}, Options{})
	s := a.Run(context.Background(), nil, nil, nil)
	if s.TotalItems != 0 || len(s.Results) != 0 {
		t.Errorf("summary = %+v, want empty", s)
	}
}
