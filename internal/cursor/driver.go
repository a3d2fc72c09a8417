// internal/cursor/driver.go
package cursor

import (
	"context"
	"time"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
)

// Driver is the browser automation backend a Cursor acts through.
type Driver interface {
	// Sleep pauses for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
	// DispatchMouseEvent delivers one pointer or wheel event.
	DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error
	// ResolveElement finds the element matching selector, waiting up to
	// timeout for it to appear. A zero timeout looks once.
	ResolveElement(ctx context.Context, selector string, timeout time.Duration) (schemas.ElementRef, error)
	// ElementBox returns the element's bounding box in viewport coordinates.
	ElementBox(ctx context.Context, ref schemas.ElementRef) (geometry.BoundingBox, error)
	// ScrollIntoViewIfNeeded scrolls the element fully into view at once.
	ScrollIntoViewIfNeeded(ctx context.Context, ref schemas.ElementRef) error
	// ScrollElementIntoView asks the document to center the element,
	// animating the scroll when smooth is set.
	ScrollElementIntoView(ctx context.Context, ref schemas.ElementRef, smooth bool) error
	// LayoutMetrics reports the viewport and document dimensions.
	LayoutMetrics(ctx context.Context) (geometry.Metrics, error)
}
