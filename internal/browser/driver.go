// internal/browser/driver.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/cursor"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
)

// eventTimeout bounds a single CDP round trip.
const eventTimeout = 10 * time.Second

// boundingRectJS returns the element's border box in top-level viewport
// coordinates, walking up through any same-origin frames.
const boundingRectJS = `function() {
	const r = this.getBoundingClientRect();
	let x = r.left, y = r.top;
	let w = this.ownerDocument.defaultView;
	while (w && w.frameElement) {
		const f = w.frameElement.getBoundingClientRect();
		x += f.left + w.frameElement.clientLeft;
		y += f.top + w.frameElement.clientTop;
		w = w.parent;
	}
	return {x: x, y: y, width: r.width, height: r.height};
}`

const scrollSmoothJS = `function() { this.scrollIntoView({behavior: 'smooth', block: 'center', inline: 'center'}); }`
const scrollInstantJS = `function() { this.scrollIntoView({behavior: 'auto', block: 'center', inline: 'center'}); }`

// ErrInvalidRef is returned when an element handle did not come from a CDPDriver.
var ErrInvalidRef = errors.New("element reference was not produced by this driver")

// CDPDriver implements cursor.Driver over a chromedp tab.
type CDPDriver struct {
	tabCtx context.Context
	logger *zap.Logger
}

var _ cursor.Driver = (*CDPDriver)(nil)

// NewCDPDriver binds a driver to tabCtx, a context created by chromedp.NewContext.
func NewCDPDriver(tabCtx context.Context, logger *zap.Logger) *CDPDriver {
	return &CDPDriver{tabCtx: tabCtx, logger: logger.Named("cdp")}
}

// run executes actions on the tab, canceled early if ctx is done.
func (d *CDPDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(d.tabCtx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Sleep pauses execution for the specified duration, respecting the context.
func (d *CDPDriver) Sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	return d.run(ctx, chromedp.Sleep(dur))
}

// DispatchMouseEvent dispatches a single mouse event via CDP.
func (d *CDPDriver) DispatchMouseEvent(ctx context.Context, data schemas.MouseEventData) error {
	p := input.DispatchMouseEvent(input.MouseType(data.Type), data.X, data.Y).
		WithButtons(data.Buttons).
		WithClickCount(int64(data.ClickCount))
	if data.Button != "" {
		p = p.WithButton(input.MouseButton(data.Button))
	}
	if data.Type == schemas.MouseWheel {
		p = p.WithDeltaX(data.DeltaX).WithDeltaY(data.DeltaY)
	}
	if !data.Timestamp.IsZero() {
		ts := input.TimeSinceEpoch(data.Timestamp)
		p = p.WithTimestamp(&ts)
	}

	opCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	err := d.run(opCtx, p)
	if err != nil && ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		d.logger.Debug("DispatchMouseEvent timed out.", zap.Duration("timeout", eventTimeout))
		return fmt.Errorf("dispatching %s timed out after %v: %w", data.Type, eventTimeout, opCtx.Err())
	}
	return err
}

// ResolveElement finds the first node matching selector. It returns a nil
// ref and no error when nothing matched within timeout.
func (d *CDPDriver) ResolveElement(ctx context.Context, selector string, timeout time.Duration) (schemas.ElementRef, error) {
	query, by := parseSelector(selector)
	opts := []chromedp.QueryOption{by}

	opCtx := ctx
	if timeout <= 0 {
		opts = append(opts, chromedp.AtLeast(0))
	} else {
		var cancel context.CancelFunc
		opCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var nodes []*cdp.Node
	err := d.run(opCtx, chromedp.Nodes(query, &nodes, opts...))
	if err != nil {
		if ctx.Err() == nil && errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			d.logger.Debug("Selector did not match before the timeout.",
				zap.String("selector", selector),
				zap.Bool("xpath", isXPath(selector)),
				zap.Duration("timeout", timeout))
			return nil, nil
		}
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

func asNode(ref schemas.ElementRef) (*cdp.Node, error) {
	n, ok := ref.(*cdp.Node)
	if !ok || n == nil {
		return nil, ErrInvalidRef
	}
	return n, nil
}

// ElementBox measures the element in viewport coordinates. Content quads
// are tried first, then the box model, then getBoundingClientRect.
func (d *CDPDriver) ElementBox(ctx context.Context, ref schemas.ElementRef) (geometry.BoundingBox, error) {
	n, err := asNode(ref)
	if err != nil {
		return geometry.BoundingBox{}, err
	}

	opCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	var box geometry.BoundingBox
	err = d.run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var errs []error
		for _, measure := range []func(context.Context, *cdp.Node) (geometry.BoundingBox, error){
			contentQuadsBox, boxModelBox, clientRectBox,
		} {
			b, err := measure(ctx, n)
			if err == nil {
				err = b.Validate()
			}
			if err == nil {
				box = b
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}))
	return box, err
}

func contentQuadsBox(ctx context.Context, n *cdp.Node) (geometry.BoundingBox, error) {
	quads, err := dom.GetContentQuads().WithBackendNodeID(n.BackendNodeID).Do(ctx)
	if err != nil {
		return geometry.BoundingBox{}, fmt.Errorf("content quads: %w", err)
	}
	// An inline element wrapped over several lines yields several quads; the
	// largest one is the most forgiving target.
	var best geometry.BoundingBox
	for _, q := range quads {
		b, err := geometry.QuadToBox(q)
		if err != nil {
			continue
		}
		if b.Width*b.Height > best.Width*best.Height {
			best = b
		}
	}
	if best.Width <= 0 || best.Height <= 0 {
		return geometry.BoundingBox{}, errors.New("content quads: element has no visible area")
	}
	return best, nil
}

func boxModelBox(ctx context.Context, n *cdp.Node) (geometry.BoundingBox, error) {
	model, err := dom.GetBoxModel().WithBackendNodeID(n.BackendNodeID).Do(ctx)
	if err != nil {
		return geometry.BoundingBox{}, fmt.Errorf("box model: %w", err)
	}
	if model == nil {
		return geometry.BoundingBox{}, errors.New("box model: empty response")
	}
	return geometry.QuadToBox(model.Border)
}

func clientRectBox(ctx context.Context, n *cdp.Node) (geometry.BoundingBox, error) {
	var box geometry.BoundingBox
	err := callOnNode(ctx, n, boundingRectJS, func(res *runtime.RemoteObject) error {
		if res == nil || len(res.Value) == 0 {
			return errors.New("no value returned")
		}
		return jsoniter.Unmarshal([]byte(res.Value), &box)
	})
	if err != nil {
		return geometry.BoundingBox{}, fmt.Errorf("bounding client rect: %w", err)
	}
	return box, nil
}

// callOnNode runs fn with the node bound to this, handing the by-value
// result to decode. The remote handle is always released.
func callOnNode(ctx context.Context, n *cdp.Node, fn string, decode func(*runtime.RemoteObject) error) error {
	obj, err := dom.ResolveNode().WithBackendNodeID(n.BackendNodeID).Do(ctx)
	if err != nil {
		return fmt.Errorf("resolving node: %w", err)
	}
	if obj == nil || obj.ObjectID == "" {
		return errors.New("resolving node: no remote object")
	}
	defer func() {
		_ = runtime.ReleaseObject(obj.ObjectID).Do(ctx)
	}()

	res, exc, err := runtime.CallFunctionOn(fn).
		WithObjectID(obj.ObjectID).
		WithReturnByValue(true).
		Do(ctx)
	if err != nil {
		return err
	}
	if exc != nil {
		return fmt.Errorf("script exception: %s", exc.Text)
	}
	if decode != nil {
		return decode(res)
	}
	return nil
}

// ScrollIntoViewIfNeeded asks the browser to bring the element into view in
// one jump.
func (d *CDPDriver) ScrollIntoViewIfNeeded(ctx context.Context, ref schemas.ElementRef) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	opCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	return d.run(opCtx, dom.ScrollIntoViewIfNeeded().WithBackendNodeID(n.BackendNodeID))
}

// ScrollElementIntoView centers the element with Element.scrollIntoView.
func (d *CDPDriver) ScrollElementIntoView(ctx context.Context, ref schemas.ElementRef, smooth bool) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	fn := scrollInstantJS
	if smooth {
		fn = scrollSmoothJS
	}
	opCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	return d.run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return callOnNode(ctx, n, fn, nil)
	}))
}

// LayoutMetrics reports the visual viewport and document size in CSS pixels.
func (d *CDPDriver) LayoutMetrics(ctx context.Context) (geometry.Metrics, error) {
	opCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	var m geometry.Metrics
	err := d.run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, _, _, cssVisualViewport, cssContentSize, err := page.GetLayoutMetrics().Do(ctx)
		if err != nil {
			return err
		}
		m = metricsFromCDP(cssVisualViewport, cssContentSize)
		return nil
	}))
	if err != nil {
		return geometry.Metrics{}, fmt.Errorf("layout metrics: %w", err)
	}
	return m, nil
}

func metricsFromCDP(vv *page.VisualViewport, content *dom.Rect) geometry.Metrics {
	var m geometry.Metrics
	if vv != nil {
		m.ViewportWidth = vv.ClientWidth
		m.ViewportHeight = vv.ClientHeight
		m.ScrollX = vv.PageX
		m.ScrollY = vv.PageY
	}
	if content != nil {
		m.DocumentWidth = content.Width
		m.DocumentHeight = content.Height
	}
	// Short documents still fill the viewport.
	m.DocumentWidth = max(m.DocumentWidth, m.ViewportWidth)
	m.DocumentHeight = max(m.DocumentHeight, m.ViewportHeight)
	return m
}
