// internal/cursor/wander_test.go
package cursor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
)

// pacedSleep keeps the wanderer from spinning while still recording sleeps.
func pacedSleep(d *mockDriver) {
	d.MockSleep = func(ctx context.Context, dur time.Duration) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
			return d.DefaultSleep(ctx, dur)
		}
	}
}

func newWanderCursor(t *testing.T, d *mockDriver) *Cursor {
	t.Helper()
	// zaptest loggers fail the test when used after it ends, so the
	// background goroutine logs to a no-op logger.
	c, err := New(d, zap.NewNop(), WithSeed("wander-test"))
	require.NoError(t, err)
	return c
}

func TestWanderingStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newMockDriver(t)
	pacedSleep(d)
	c := newWanderCursor(t, d)

	c.StartWandering(context.Background(), &WanderOptions{MoveDelay: Ptr(time.Duration(0))})
	require.True(t, c.Wandering())

	c.mu.Lock()
	first := c.wander
	c.mu.Unlock()
	c.StartWandering(context.Background(), nil)
	c.mu.Lock()
	assert.Same(t, first, c.wander, "a second start is a no-op")
	c.mu.Unlock()

	require.Eventually(t, func() bool {
		return len(d.eventsOfType(schemas.MouseMove)) > 0 && len(d.getSleeps()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	c.StopWandering()
	assert.False(t, c.Wandering())

	for _, s := range d.getSleeps() {
		assert.GreaterOrEqual(t, s, minWanderInterval)
	}
	for _, ev := range d.eventsOfType(schemas.MouseMove) {
		assert.GreaterOrEqual(t, ev.X, 0.0)
		assert.LessOrEqual(t, ev.X, 1920.0)
		assert.GreaterOrEqual(t, ev.Y, 0.0)
		assert.LessOrEqual(t, ev.Y, 1080.0)
	}

	settled := len(d.getEvents())
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, d.getEvents(), settled, "no events after StopWandering returns")

	// Stopping twice is harmless.
	c.StopWandering()
}

func TestWanderingYieldsToDirectedActions(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newMockDriver(t)
	pacedSleep(d)
	c := newWanderCursor(t, d)

	c.beginAction()
	c.StartWandering(context.Background(), nil)
	require.Eventually(t, func() bool { return len(d.getSleeps()) >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, d.getEvents(), "the wanderer must not move while an action is running")

	c.endAction()
	require.Eventually(t, func() bool { return len(d.getEvents()) > 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.False(t, c.Wandering())
}

func TestTracePathAbortsWhenActionStarts(t *testing.T) {
	d := newMockDriver(t)
	c := newWanderCursor(t, d)
	points := []geometry.TimedPoint{
		{Vector2D: geometry.Vector2D{X: 1, Y: 1}},
		{Vector2D: geometry.Vector2D{X: 2, Y: 2}},
	}

	c.beginAction()
	require.NoError(t, c.tracePath(context.Background(), points, traceOptions{abortOnMove: true}))
	c.endAction()
	assert.Empty(t, d.getEvents())
	assert.Equal(t, geometry.Vector2D{}, c.Location())
}

func TestWanderingEndsOnError(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newMockDriver(t)
	pacedSleep(d)
	var crashed atomic.Bool
	crashed.Store(true)
	d.MockLayoutMetrics = func(ctx context.Context) (geometry.Metrics, error) {
		if crashed.Load() {
			return geometry.Metrics{}, errors.New("page crashed")
		}
		return d.DefaultLayoutMetrics(ctx)
	}
	c := newWanderCursor(t, d)

	c.StartWandering(context.Background(), nil)
	c.mu.Lock()
	task := c.wander
	c.mu.Unlock()
	require.NotNil(t, task)

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatal("wanderer kept running after an error")
	}
	assert.Empty(t, d.getEvents())
	assert.False(t, c.Wandering(), "a wanderer that ended on its own is not reported as running")

	crashed.Store(false)
	c.StartWandering(context.Background(), &WanderOptions{MoveDelay: Ptr(time.Duration(0))})
	require.True(t, c.Wandering())
	c.mu.Lock()
	restarted := c.wander
	c.mu.Unlock()
	assert.NotSame(t, task, restarted)

	require.Eventually(t, func() bool {
		return len(d.eventsOfType(schemas.MouseMove)) > 0
	}, 2*time.Second, 5*time.Millisecond)
	c.StopWandering()
	assert.False(t, c.Wandering())
}

func TestTracePathAbortsMidPath(t *testing.T) {
	d := newMockDriver(t)
	c := newWanderCursor(t, d)

	points := make([]geometry.TimedPoint, 6)
	for i := range points {
		points[i] = geometry.TimedPoint{Vector2D: geometry.Vector2D{X: float64(10 * (i + 1)), Y: float64(5 * (i + 1))}}
	}

	// A directed action starts while point k is being dispatched. No action
	// lock is held, so the hook may call into the cursor.
	const k = 2
	var dispatched int
	d.MockDispatchMouseEvent = func(ctx context.Context, data schemas.MouseEventData) error {
		err := d.DefaultDispatchMouseEvent(ctx, data)
		if dispatched == k {
			c.beginAction()
		}
		dispatched++
		return err
	}

	require.NoError(t, c.tracePath(context.Background(), points, traceOptions{abortOnMove: true}))
	c.endAction()

	assert.Len(t, d.getEvents(), k+1)
	assert.Equal(t, points[k].Vector2D, c.Location())
}

func TestWanderingStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := newMockDriver(t)
	pacedSleep(d)
	c := newWanderCursor(t, d)
	ctx, cancel := context.WithCancel(context.Background())

	c.StartWandering(ctx, nil)
	c.mu.Lock()
	task := c.wander
	c.mu.Unlock()
	cancel()

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatal("wanderer ignored cancellation")
	}
	c.StopWandering()
}
