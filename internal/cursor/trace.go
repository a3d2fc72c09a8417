// internal/cursor/trace.go
package cursor

import (
	"context"
	"time"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"go.uber.org/zap"
)

type traceOptions struct {
	// abortOnMove stops the replay as soon as a directed action starts and
	// makes dispatch failures fatal. Used by the wanderer.
	abortOnMove bool
	// pace spreads the replay over this duration.
	pace time.Duration
}

// tracePath dispatches the points in order, updating the location after
// every successful dispatch. For directed actions a failed dispatch ends the
// replay without an error, leaving the pointer at the last point the driver
// accepted; only a cancelled context is reported.
func (c *Cursor) tracePath(ctx context.Context, points []geometry.TimedPoint, opts traceOptions) error {
	var interval time.Duration
	if opts.pace > 0 && len(points) > 1 {
		interval = opts.pace / time.Duration(len(points)-1)
	}

	for i, p := range points {
		if opts.abortOnMove && c.moving.Load() > 0 {
			return nil
		}

		ev := schemas.MouseEventData{
			Type:    schemas.MouseMove,
			X:       p.X,
			Y:       p.Y,
			Button:  schemas.ButtonNone,
			Buttons: c.buttons(),
		}
		if p.Timestamp != 0 {
			ev.Timestamp = time.UnixMilli(p.Timestamp)
		}

		if err := c.driver.DispatchMouseEvent(ctx, ev); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if opts.abortOnMove {
				return err
			}
			c.logger.Warn("Mouse move dispatch failed, abandoning path",
				zap.Error(err),
				zap.Int("point", i),
				zap.Int("points", len(points)))
			return nil
		}
		c.setLocation(p.Vector2D)

		if interval > 0 && i < len(points)-1 {
			if err := c.driver.Sleep(ctx, interval); err != nil {
				return err
			}
		}
	}
	return nil
}
