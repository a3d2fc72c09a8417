// internal/cursor/scroll.go
package cursor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/scroll"
	"go.uber.org/zap"
)

// smoothScrollBelow is the speed under which the generic fallback animates.
const smoothScrollBelow = scroll.ScaleThreshold

// Edge names a side of the document for ScrollTo.
type Edge string

const (
	EdgeNone   Edge = ""
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// ScrollTarget is where ScrollTo goes: a document edge, or a document point
// to bring to the top-left corner of the viewport.
type ScrollTarget struct {
	Edge  Edge
	Point geometry.Vector2D
}

// ParseScrollTarget accepts "top", "bottom", "left", "right" or "x,y".
func ParseScrollTarget(s string) (ScrollTarget, error) {
	switch e := Edge(strings.ToLower(strings.TrimSpace(s))); e {
	case EdgeTop, EdgeBottom, EdgeLeft, EdgeRight:
		return ScrollTarget{Edge: e}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return ScrollTarget{}, newError(ErrCodeConfiguration, "scroll", fmt.Errorf("invalid scroll target %q", s))
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return ScrollTarget{}, newError(ErrCodeConfiguration, "scroll", fmt.Errorf("invalid scroll point %q", s))
	}
	return ScrollTarget{Point: geometry.Vector2D{X: x, Y: y}}, nil
}

// Scroll scrolls by delta with wheel events at the current location.
func (c *Cursor) Scroll(ctx context.Context, delta geometry.Vector2D, opts *ScrollOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	s := resolveScroll(c.defaults.Scroll, c.compile(delta.Mag(), 0), opts)
	return c.scrollBy(ctx, delta.X, delta.Y, s)
}

// ScrollTo scrolls to a document edge or point.
func (c *Cursor) ScrollTo(ctx context.Context, dest ScrollTarget, opts *ScrollOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	m, err := c.driver.LayoutMetrics(ctx)
	if err != nil {
		return newError(ErrCodeGeometryUnavailable, "scroll", fmt.Errorf("failed to read layout metrics: %w", err))
	}

	var dx, dy float64
	switch dest.Edge {
	case EdgeTop:
		dy = -m.ScrollY
	case EdgeBottom:
		dy = math.Max(0, m.DocumentHeight-m.ViewportHeight) - m.ScrollY
	case EdgeLeft:
		dx = -m.ScrollX
	case EdgeRight:
		dx = math.Max(0, m.DocumentWidth-m.ViewportWidth) - m.ScrollX
	case EdgeNone:
		dx = dest.Point.X - m.ScrollX
		dy = dest.Point.Y - m.ScrollY
	default:
		return newError(ErrCodeConfiguration, "scroll", fmt.Errorf("unknown edge %q", dest.Edge))
	}

	s := resolveScroll(c.defaults.Scroll, c.compile(math.Hypot(dx, dy), 0), opts)
	return c.scrollBy(ctx, dx, dy, s)
}

// ScrollIntoView brings the element matching selector into the viewport.
func (c *Cursor) ScrollIntoView(ctx context.Context, selector string, opts *ScrollOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	t := target{selector: selector}
	ref, err := c.resolveTarget(ctx, t, c.defaults.Move.WaitForSelector)
	if err != nil {
		return err
	}
	box, err := c.elementBox(ctx, ref)
	if err != nil {
		return err
	}
	s := resolveScroll(c.defaults.Scroll, c.compile(c.Location().Dist(box.Center()), box.Width), opts)
	_, err = c.bringIntoView(ctx, ref, box, s)
	return err
}

// bringIntoView makes sure box, padded by the margin, is inside the
// viewport. It tries the driver's direct primitive, then wheel scrolling by
// the exact delta, then the document's own scrollIntoView. It reports
// whether anything was scrolled.
func (c *Cursor) bringIntoView(ctx context.Context, ref schemas.ElementRef, box geometry.BoundingBox, s ScrollDefaults) (bool, error) {
	m, err := c.driver.LayoutMetrics(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, newError(ErrCodeGeometryUnavailable, "scroll", fmt.Errorf("failed to read layout metrics: %w", err))
	}

	region, visible := scroll.InView(box, m, s.InViewMargin)
	if visible {
		return false, nil
	}

	// The direct primitive jumps instantly and ignores margins.
	if s.ScrollSpeed >= scroll.MaxSpeed && s.InViewMargin <= 0 {
		err := c.driver.ScrollIntoViewIfNeeded(ctx, ref)
		if err == nil {
			return true, c.pause(ctx, s.ScrollDelay, false)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		c.logger.Debug("Direct scroll into view failed, falling back to wheel", zap.Error(err))
	}

	dx, dy := scroll.Delta(region, m)
	err = c.scrollBy(ctx, dx, dy, s)
	if err == nil {
		return true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	c.logger.Debug("Wheel scroll into view failed, falling back to document scroll", zap.Error(err))

	if err := c.driver.ScrollElementIntoView(ctx, ref, s.ScrollSpeed < smoothScrollBelow); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, newError(ErrCodeGeometryUnavailable, "scroll", fmt.Errorf("all scroll strategies failed: %w", err))
	}
	return true, c.pause(ctx, s.ScrollDelay, false)
}

// scrollBy emits the wheel steps for (dx, dy), optionally scrolling past the
// goal and back, then waits the settle delay once.
func (c *Cursor) scrollBy(ctx context.Context, dx, dy float64, s ScrollDefaults) error {
	if err := c.wheel(ctx, c.planScroll(dx, dy, s), s); err != nil {
		return err
	}

	if s.Overshoot > 0 && (dx != 0 || dy != 0) && c.rng.Float64() < s.OvershootProbability {
		over := geometry.Vector2D{X: dx, Y: dy}.WithMagnitude(s.Overshoot)
		if err := c.wheel(ctx, c.planScroll(over.X, over.Y, s), s); err != nil {
			return err
		}
		if err := c.wheel(ctx, c.planScroll(-over.X, -over.Y, s), s); err != nil {
			return err
		}
	}
	return c.pause(ctx, s.ScrollDelay, false)
}

func (c *Cursor) planScroll(dx, dy float64, s ScrollDefaults) []scroll.Step {
	if s.WheelStep > 0 {
		return scroll.PlanDetent(dx, dy, s.WheelStep)
	}
	return scroll.Plan(dx, dy, s.ScrollSpeed)
}

func (c *Cursor) wheel(ctx context.Context, steps []scroll.Step, s ScrollDefaults) error {
	for i, step := range steps {
		loc := c.Location()
		ev := schemas.MouseEventData{
			Type:    schemas.MouseWheel,
			X:       loc.X,
			Y:       loc.Y,
			Button:  schemas.ButtonNone,
			Buttons: c.buttons(),
			DeltaX:  step.DeltaX,
			DeltaY:  step.DeltaY,
		}
		if err := c.driver.DispatchMouseEvent(ctx, ev); err != nil {
			return fmt.Errorf("failed to dispatch wheel step %d of %d: %w", i+1, len(steps), err)
		}
		if i < len(steps)-1 {
			if err := c.pause(ctx, s.WheelTickDelay, false); err != nil {
				return err
			}
		}
	}
	return nil
}
