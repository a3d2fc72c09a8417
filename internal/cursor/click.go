// internal/cursor/click.go
package cursor

import (
	"context"
	"fmt"
	"math"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"go.uber.org/zap"
)

// Click moves into the element matching selector and clicks it. An empty
// selector clicks at the current location.
func (c *Cursor) Click(ctx context.Context, selector string, opts *ClickOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	s, err := c.approachClick(ctx, selector, opts)
	if err != nil {
		return err
	}
	if err := c.pause(ctx, s.Hesitate, false); err != nil {
		return err
	}
	if err := c.jitter(ctx, s.MicroJitter); err != nil {
		return err
	}
	if err := c.press(ctx, s, s.ClickCount); err != nil {
		return err
	}
	return c.pause(ctx, s.MoveDelay, s.RandomizeMoveDelay)
}

// DoubleClick clicks twice with a short, slightly drifting interval.
func (c *Cursor) DoubleClick(ctx context.Context, selector string, opts *ClickOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()
	c.ensureStart(ctx)

	s, err := c.approachClick(ctx, selector, opts)
	if err != nil {
		return err
	}
	if err := c.pause(ctx, s.Hesitate, false); err != nil {
		return err
	}
	if err := c.jitter(ctx, s.MicroJitter); err != nil {
		return err
	}
	if err := c.press(ctx, s, 1); err != nil {
		return err
	}
	if err := c.pause(ctx, s.DoubleClickInterval, false); err != nil {
		return err
	}
	if err := c.jitter(ctx, s.DoubleClickDrift); err != nil {
		return err
	}
	if err := c.press(ctx, s, 2); err != nil {
		return err
	}
	return c.pause(ctx, s.MoveDelay, s.RandomizeMoveDelay)
}

// MouseDown presses the button at the current location.
func (c *Cursor) MouseDown(ctx context.Context, opts *ClickOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()

	s := resolveClick(c.defaults, c.compile(0, 0), opts)
	return c.mouseDown(ctx, s.Button, s.ClickCount)
}

// MouseUp releases the button at the current location.
func (c *Cursor) MouseUp(ctx context.Context, opts *ClickOptions) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.beginAction()
	defer c.endAction()

	s := resolveClick(c.defaults, c.compile(0, 0), opts)
	return c.mouseUp(ctx, s.Button, s.ClickCount)
}

// approachClick moves to the click target, if any, and resolves the click
// parameters against the persona sample the move used.
func (c *Cursor) approachClick(ctx context.Context, selector string, opts *ClickOptions) (ClickDefaults, error) {
	if selector == "" {
		return resolveClick(c.defaults, c.compile(0, 0), opts), nil
	}

	var move *MoveOptions
	if opts != nil {
		move = opts.Move
	}
	_, profile, err := c.moveToElement(ctx, target{selector: selector}, move, true)
	if err != nil {
		return ClickDefaults{}, err
	}
	return resolveClick(c.defaults, profile, opts), nil
}

// press performs one down, hold, up cycle.
func (c *Cursor) press(ctx context.Context, s ClickDefaults, count int) error {
	if err := c.mouseDown(ctx, s.Button, count); err != nil {
		return err
	}
	if err := c.pause(ctx, s.WaitForClick, false); err != nil {
		return err
	}
	return c.mouseUp(ctx, s.Button, count)
}

// jitter nudges the pointer by at most radius pixels, as a hand settling
// on a target does.
func (c *Cursor) jitter(ctx context.Context, radius float64) error {
	if radius <= 0 {
		return nil
	}
	angle := c.rng.Float64() * 2 * math.Pi
	r := c.rng.Float64() * radius
	p := c.Location().Add(geometry.Vector2D{X: r * math.Cos(angle), Y: r * math.Sin(angle)}).ClampPositive()

	ev := schemas.MouseEventData{
		Type:    schemas.MouseMove,
		X:       p.X,
		Y:       p.Y,
		Button:  schemas.ButtonNone,
		Buttons: c.buttons(),
	}
	if err := c.driver.DispatchMouseEvent(ctx, ev); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("Micro movement dispatch failed", zap.Error(err))
		return nil
	}
	c.setLocation(p)
	return nil
}

func (c *Cursor) mouseDown(ctx context.Context, button schemas.MouseButton, count int) error {
	loc := c.Location()
	ev := schemas.MouseEventData{
		Type:       schemas.MousePress,
		X:          loc.X,
		Y:          loc.Y,
		Button:     button,
		Buttons:    button.Bitfield(),
		ClickCount: count,
	}
	if err := c.driver.DispatchMouseEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to press %s button: %w", button, err)
	}
	c.mu.Lock()
	c.pressed = button
	c.mu.Unlock()
	return nil
}

func (c *Cursor) mouseUp(ctx context.Context, button schemas.MouseButton, count int) error {
	loc := c.Location()
	ev := schemas.MouseEventData{
		Type:       schemas.MouseRelease,
		X:          loc.X,
		Y:          loc.Y,
		Button:     button,
		ClickCount: count,
	}
	// A failed release still clears the pressed state.
	c.mu.Lock()
	c.pressed = schemas.ButtonNone
	c.mu.Unlock()
	if err := c.driver.DispatchMouseEvent(ctx, ev); err != nil {
		return fmt.Errorf("failed to release %s button: %w", button, err)
	}
	return nil
}
