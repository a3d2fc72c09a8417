// internal/scroll/view.go
package scroll

import (
	"math"

	"github.com/xkilldash9x/ghostcursor/internal/geometry"
)

// InView expands box by margin, clamps the result to the document and
// reports whether it then fits inside the viewport. The returned region is
// in viewport coordinates. Clamping lets an element hugging the edge of the
// document count as visible even though its margin can never be.
func InView(box geometry.BoundingBox, m geometry.Metrics, margin float64) (geometry.Edges, bool) {
	doc := box.Edges().Expand(margin).Translate(m.ScrollX, m.ScrollY)

	doc.Top = math.Max(doc.Top, 0)
	doc.Left = math.Max(doc.Left, 0)
	if m.DocumentHeight > 0 {
		doc.Bottom = math.Min(doc.Bottom, m.DocumentHeight)
	}
	if m.DocumentWidth > 0 {
		doc.Right = math.Min(doc.Right, m.DocumentWidth)
	}

	region := doc.Translate(-m.ScrollX, -m.ScrollY)
	visible := region.Top >= 0 && region.Left >= 0 &&
		region.Bottom <= m.ViewportHeight && region.Right <= m.ViewportWidth
	return region, visible
}

// Delta returns the scroll offset that brings region into the viewport.
// Negative values scroll up or left. Components are rounded away from zero
// so that the whole region ends up visible.
func Delta(region geometry.Edges, m geometry.Metrics) (dx, dy float64) {
	switch {
	case region.Top < 0:
		dy = region.Top
	case region.Bottom > m.ViewportHeight:
		dy = region.Bottom - m.ViewportHeight
	}
	switch {
	case region.Left < 0:
		dx = region.Left
	case region.Right > m.ViewportWidth:
		dx = region.Right - m.ViewportWidth
	}
	return awayFromZero(dx), awayFromZero(dy)
}

func awayFromZero(v float64) float64 {
	if v < 0 {
		return math.Floor(v)
	}
	return math.Ceil(v)
}
