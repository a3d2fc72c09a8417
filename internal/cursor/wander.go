// internal/cursor/wander.go
package cursor

import (
	"context"
	"time"

	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/trajectory"
	"go.uber.org/zap"
)

// minWanderInterval keeps a zero move delay from spinning the loop.
const minWanderInterval = 50 * time.Millisecond

type wanderTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartWandering starts moving the pointer to random viewport points in the
// background. The wanderer yields to directed actions, checking before every
// point it dispatches, and stops on the first error. Calling it while
// already wandering does nothing.
func (c *Cursor) StartWandering(ctx context.Context, opts *WanderOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wander != nil {
		return
	}

	wctx, cancel := context.WithCancel(ctx)
	task := &wanderTask{cancel: cancel, done: make(chan struct{})}
	c.wander = task

	s := resolveWander(c.defaults, opts)
	go c.wanderLoop(wctx, task, s)
	c.logger.Debug("Wandering started")
}

// StopWandering stops the wanderer and waits for it to exit.
func (c *Cursor) StopWandering() {
	c.mu.Lock()
	task := c.wander
	c.wander = nil
	c.mu.Unlock()
	if task == nil {
		return
	}
	task.cancel()
	<-task.done
	c.logger.Debug("Wandering stopped")
}

// Wandering reports whether the background wanderer is running.
func (c *Cursor) Wandering() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wander != nil
}

func (c *Cursor) wanderLoop(ctx context.Context, task *wanderTask, s WanderDefaults) {
	defer func() {
		c.mu.Lock()
		if c.wander == task {
			c.wander = nil
		}
		c.mu.Unlock()
		close(task.done)
	}()
	c.ensureStart(ctx)

	for {
		if ctx.Err() != nil {
			return
		}
		if c.moving.Load() == 0 {
			if err := c.wanderOnce(ctx, s); err != nil {
				if ctx.Err() == nil {
					c.logger.Debug("Wandering ended", zap.Error(err))
				}
				return
			}
		}

		d := s.MoveDelay
		if s.RandomizeMoveDelay {
			d = time.Duration(float64(d) * c.rng.Float64())
		}
		if d < minWanderInterval {
			d = minWanderInterval
		}
		if err := c.driver.Sleep(ctx, d); err != nil {
			return
		}
	}
}

func (c *Cursor) wanderOnce(ctx context.Context, s WanderDefaults) error {
	m, err := c.driver.LayoutMetrics(ctx)
	if err != nil {
		return err
	}
	dest := geometry.RandomPoint(c.rng, m.Viewport(), 0)
	path := c.paths.Path(c.Location(), dest, trajectory.Options{MoveSpeed: s.MoveSpeed})
	return c.tracePath(ctx, path, traceOptions{abortOnMove: true})
}
