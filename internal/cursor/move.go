// internal/cursor/move.go
package cursor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/persona"
	"github.com/xkilldash9x/ghostcursor/internal/trajectory"
	"go.uber.org/zap"
)

// target is either a selector to resolve or an already resolved element.
type target struct {
	selector string
	ref      schemas.ElementRef
}

func (t target) String() string {
	if t.selector != "" {
		return t.selector
	}
	return fmt.Sprintf("%v", t.ref)
}

// Move moves the pointer into the element matching selector.
func (c *Cursor) Move(ctx context.Context, selector string, opts *MoveOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	_, _, err := c.moveToElement(ctx, target{selector: selector}, opts, false)
	return err
}

// MoveToElement moves the pointer into an element the driver already resolved.
func (c *Cursor) MoveToElement(ctx context.Context, ref schemas.ElementRef, opts *MoveOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	_, _, err := c.moveToElement(ctx, target{ref: ref}, opts, false)
	return err
}

// MoveTo moves the pointer to a viewport coordinate.
func (c *Cursor) MoveTo(ctx context.Context, point geometry.Vector2D, opts *MoveToOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	start := c.Location()
	s := resolveMoveTo(c.defaults, c.compile(start.Dist(point), 0), opts)

	path := c.paths.Path(start, point.ClampPositive(), c.trajectoryOptions(s))
	if err := c.tracePath(ctx, path, traceOptions{pace: s.Pace}); err != nil {
		return err
	}
	return c.pause(ctx, s.MoveDelay, s.RandomizeMoveDelay)
}

// moveToElement runs the targeting loop and returns the element's box as
// last observed, along with the persona sample the action was resolved
// against. quiet skips the post-move delay, for callers that pause
// themselves.
func (c *Cursor) moveToElement(ctx context.Context, t target, call *MoveOptions, quiet bool) (geometry.BoundingBox, *persona.CompiledOptions, error) {
	var (
		s        moveSettings
		profile  *persona.CompiledOptions
		resolved bool
	)

	for attempt := 1; ; attempt++ {
		if resolved && attempt > s.MaxTries {
			c.transition(StateFailed, attempt-1)
			return geometry.BoundingBox{}, nil, newError(ErrCodeTargetUnreachable, "move",
				fmt.Errorf("could not land inside %s within %d tries", t, s.MaxTries))
		}
		c.transition(StateTargeting, attempt)

		timeout := c.defaults.Move.WaitForSelector
		if call != nil && call.WaitForSelector != nil {
			timeout = *call.WaitForSelector
		}
		ref, err := c.resolveTarget(ctx, t, timeout)
		if err != nil {
			c.transition(StateFailed, attempt)
			return geometry.BoundingBox{}, nil, err
		}
		box, err := c.elementBox(ctx, ref)
		if err != nil {
			c.transition(StateFailed, attempt)
			return geometry.BoundingBox{}, nil, err
		}

		if !resolved {
			profile = c.compile(c.Location().Dist(box.Center()), box.Width)
			s = resolveMove(c.defaults, profile, call)
			resolved = true
		}

		scrolled, err := c.bringIntoView(ctx, ref, box, s.scroll)
		if err != nil {
			c.transition(StateFailed, attempt)
			return geometry.BoundingBox{}, nil, err
		}
		if scrolled {
			if box, err = c.elementBox(ctx, ref); err != nil {
				c.transition(StateFailed, attempt)
				return geometry.BoundingBox{}, nil, err
			}
		}

		var dest geometry.Vector2D
		if s.destination != nil {
			dest = box.Origin().Add(*s.destination)
		} else {
			dest = geometry.RandomPoint(c.rng, box, s.PaddingPercentage)
		}
		dest = dest.ClampPositive()

		if err := c.approach(ctx, dest, box, s, attempt); err != nil {
			c.transition(StateFailed, attempt)
			return geometry.BoundingBox{}, nil, err
		}

		// The element may have moved while the pointer travelled.
		current, err := c.elementBox(ctx, ref)
		if err != nil {
			c.transition(StateFailed, attempt)
			return geometry.BoundingBox{}, nil, err
		}
		if current.ContainsHalfOpen(c.Location()) {
			c.transition(StateArrived, attempt)
			if !quiet {
				if err := c.pause(ctx, s.MoveDelay, s.RandomizeMoveDelay); err != nil {
					return current, profile, err
				}
			}
			return current, profile, nil
		}
		c.logger.Debug("Pointer missed the target, retrying",
			zap.Stringer("target", t),
			zap.Int("attempt", attempt),
			zap.Any("box", current))
	}
}

// approach travels to dest, overshooting first when it is far away.
func (c *Cursor) approach(ctx context.Context, dest geometry.Vector2D, box geometry.BoundingBox, s moveSettings, attempt int) error {
	start := c.Location()
	opts := c.trajectoryOptions(s)
	trace := traceOptions{pace: s.Pace}

	if start.Dist(dest) > s.OvershootThreshold {
		c.transition(StateOvershooting, attempt)
		over := overshootPoint(start, dest)
		if err := c.tracePath(ctx, c.paths.PathToBox(start, over, box, opts), trace); err != nil {
			return err
		}

		correction := opts
		correction.SpreadOverride = trajectory.Spread(overshootSpread)
		return c.tracePath(ctx, c.paths.PathToBox(c.Location(), dest, box, correction), trace)
	}
	return c.tracePath(ctx, c.paths.PathToBox(start, dest, box, opts), trace)
}

// overshootPoint lies overshootRadius past dest along the direction of travel.
func overshootPoint(from, dest geometry.Vector2D) geometry.Vector2D {
	return dest.Add(dest.Sub(from).WithMagnitude(overshootRadius)).ClampPositive()
}

func (c *Cursor) resolveTarget(ctx context.Context, t target, timeout time.Duration) (schemas.ElementRef, error) {
	if t.ref != nil {
		return t.ref, nil
	}
	ref, err := c.driver.ResolveElement(ctx, t.selector, timeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError(ErrCodeTargetNotFound, "resolve", fmt.Errorf("selector %q: %w", t.selector, err))
	}
	if ref == nil {
		return nil, newError(ErrCodeTargetNotFound, "resolve", fmt.Errorf("selector %q matched nothing", t.selector))
	}
	return ref, nil
}

func (c *Cursor) elementBox(ctx context.Context, ref schemas.ElementRef) (geometry.BoundingBox, error) {
	box, err := c.driver.ElementBox(ctx, ref)
	if err == nil {
		err = box.Validate()
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return geometry.BoundingBox{}, ctxErr
		}
		var ce *Error
		if errors.As(err, &ce) {
			return geometry.BoundingBox{}, err
		}
		return geometry.BoundingBox{}, newError(ErrCodeGeometryUnavailable, "geometry", err)
	}
	return box, nil
}
