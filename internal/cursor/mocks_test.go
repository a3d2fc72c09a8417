// internal/cursor/mocks_test.go
package cursor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/trajectory"
)

// mockDriver implements Driver for tests. Every method records what it was
// asked to do. Setting a Mock* function replaces the default behavior; the
// override can call the matching Default* method to keep the recording.
//
// Overrides run while the cursor holds its action lock, so they must not
// call back into the Cursor. Talk to the test through atomics or channels.
type mockDriver struct {
	t  *testing.T
	mu sync.Mutex

	events   []schemas.MouseEventData
	sleeps   []time.Duration
	calls    []string
	boxes    map[string]geometry.BoundingBox
	metrics  geometry.Metrics
	resolved []string

	MockSleep                  func(ctx context.Context, d time.Duration) error
	MockDispatchMouseEvent     func(ctx context.Context, data schemas.MouseEventData) error
	MockResolveElement         func(ctx context.Context, selector string, timeout time.Duration) (schemas.ElementRef, error)
	MockElementBox             func(ctx context.Context, ref schemas.ElementRef) (geometry.BoundingBox, error)
	MockScrollIntoViewIfNeeded func(ctx context.Context, ref schemas.ElementRef) error
	MockScrollElementIntoView  func(ctx context.Context, ref schemas.ElementRef, smooth bool) error
	MockLayoutMetrics          func(ctx context.Context) (geometry.Metrics, error)
}

func newMockDriver(t *testing.T) *mockDriver {
	return &mockDriver{
		t:     t,
		boxes: make(map[string]geometry.BoundingBox),
		metrics: geometry.Metrics{
			ViewportWidth: 1920, ViewportHeight: 1080,
			DocumentWidth: 1920, DocumentHeight: 1080,
		},
	}
}

func (m *mockDriver) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *mockDriver) Sleep(ctx context.Context, d time.Duration) error {
	if m.MockSleep != nil {
		return m.MockSleep(ctx, d)
	}
	return m.DefaultSleep(ctx, d)
}

func (m *mockDriver) DefaultSleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, d)
	return nil
}

func (m *mockDriver) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if m.MockDispatchMouseEvent != nil {
		return m.MockDispatchMouseEvent(ctx, data)
	}
	return m.DefaultDispatchMouseEvent(ctx, data)
}

func (m *mockDriver) DefaultDispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	if data.Type == schemas.MouseWheel {
		m.calls = append(m.calls, "wheel")
	}
	return nil
}

func (m *mockDriver) ResolveElement(ctx context.Context, selector string, timeout time.Duration) (schemas.ElementRef, error) {
	m.mu.Lock()
	m.resolved = append(m.resolved, selector)
	m.mu.Unlock()
	if m.MockResolveElement != nil {
		return m.MockResolveElement(ctx, selector, timeout)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boxes[selector]; !ok {
		return nil, fmt.Errorf("no node matches %q", selector)
	}
	return selector, nil
}

func (m *mockDriver) ElementBox(ctx context.Context, ref schemas.ElementRef) (geometry.BoundingBox, error) {
	if m.MockElementBox != nil {
		return m.MockElementBox(ctx, ref)
	}
	return m.DefaultElementBox(ctx, ref)
}

func (m *mockDriver) DefaultElementBox(_ context.Context, ref schemas.ElementRef) (geometry.BoundingBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, _ := ref.(string)
	box, ok := m.boxes[key]
	if !ok {
		return geometry.BoundingBox{}, fmt.Errorf("no box for %v", ref)
	}
	return box, nil
}

func (m *mockDriver) ScrollIntoViewIfNeeded(ctx context.Context, ref schemas.ElementRef) error {
	m.record("scrollIntoViewIfNeeded")
	if m.MockScrollIntoViewIfNeeded != nil {
		return m.MockScrollIntoViewIfNeeded(ctx, ref)
	}
	return nil
}

func (m *mockDriver) ScrollElementIntoView(ctx context.Context, ref schemas.ElementRef, smooth bool) error {
	m.record(fmt.Sprintf("scrollElementIntoView(smooth=%t)", smooth))
	if m.MockScrollElementIntoView != nil {
		return m.MockScrollElementIntoView(ctx, ref, smooth)
	}
	return nil
}

func (m *mockDriver) LayoutMetrics(ctx context.Context) (geometry.Metrics, error) {
	if m.MockLayoutMetrics != nil {
		return m.MockLayoutMetrics(ctx)
	}
	return m.DefaultLayoutMetrics(ctx)
}

func (m *mockDriver) DefaultLayoutMetrics(_ context.Context) (geometry.Metrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics, nil
}

func (m *mockDriver) setBox(selector string, box geometry.BoundingBox) {
	m.mu.Lock()
	m.boxes[selector] = box
	m.mu.Unlock()
}

func (m *mockDriver) getEvents() []schemas.MouseEventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schemas.MouseEventData, len(m.events))
	copy(out, m.events)
	return out
}

func (m *mockDriver) eventsOfType(typ schemas.MouseEventType) []schemas.MouseEventData {
	var out []schemas.MouseEventData
	for _, ev := range m.getEvents() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (m *mockDriver) getSleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

func (m *mockDriver) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// spyPaths wraps a path generator and records every request.
type spyPaths struct {
	inner pathGenerator

	mu    sync.Mutex
	opts  []trajectory.Options
	ends  []geometry.Vector2D
	boxes []*geometry.BoundingBox
	sizes []int
}

func (s *spyPaths) Path(start, end geometry.Vector2D, opts trajectory.Options) []geometry.TimedPoint {
	points := s.inner.Path(start, end, opts)
	s.record(end, nil, opts, points)
	return points
}

func (s *spyPaths) PathToBox(start, end geometry.Vector2D, box geometry.BoundingBox, opts trajectory.Options) []geometry.TimedPoint {
	points := s.inner.PathToBox(start, end, box, opts)
	s.record(end, &box, opts, points)
	return points
}

func (s *spyPaths) record(end geometry.Vector2D, box *geometry.BoundingBox, opts trajectory.Options, points []geometry.TimedPoint) {
	s.mu.Lock()
	s.opts = append(s.opts, opts)
	s.ends = append(s.ends, end)
	s.boxes = append(s.boxes, box)
	s.sizes = append(s.sizes, len(points))
	s.mu.Unlock()
}

func spyOn(c *Cursor) *spyPaths {
	spy := &spyPaths{inner: c.paths}
	c.paths = spy
	return spy
}
