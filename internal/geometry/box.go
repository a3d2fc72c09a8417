// internal/geometry/box.go
package geometry

import (
	"fmt"
	"math"

	"github.com/xkilldash9x/ghostcursor/internal/sampler"
)

// DefaultTargetWidth substitutes for the width of a point target so that
// Fitts's-law difficulty stays finite.
const DefaultTargetWidth = 100.0

// BoundingBox is an axis aligned rectangle in viewport coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the top-left corner of the box.
func (b BoundingBox) Origin() Vector2D {
	return Vector2D{X: b.X, Y: b.Y}
}

// Center returns the geometric center of the box.
func (b BoundingBox) Center() Vector2D {
	return Vector2D{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// ContainsHalfOpen reports whether p lies inside the box using the half-open
// bounds x in (X, X+Width] and y in (Y, Y+Height].
func (b BoundingBox) ContainsHalfOpen(p Vector2D) bool {
	return p.X > b.X && p.X <= b.X+b.Width &&
		p.Y > b.Y && p.Y <= b.Y+b.Height
}

// Edges converts the box to its four edge coordinates.
func (b BoundingBox) Edges() Edges {
	return Edges{Top: b.Y, Left: b.X, Bottom: b.Y + b.Height, Right: b.X + b.Width}
}

// Validate rejects boxes with negative or non-finite dimensions.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounding box has non-finite component: %+v", b)
		}
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("bounding box has negative size: %vx%v", b.Width, b.Height)
	}
	return nil
}

// RandomPoint picks a point inside the box. paddingPercentage in (0, 100]
// shrinks the eligible area symmetrically; 0 allows anywhere inside and 100
// always yields the center. Values outside that range are ignored.
func RandomPoint(rng sampler.Source, b BoundingBox, paddingPercentage float64) Vector2D {
	var padW, padH float64
	if paddingPercentage > 0 && paddingPercentage <= 100 {
		padW = b.Width * paddingPercentage / 100
		padH = b.Height * paddingPercentage / 100
	}
	return Vector2D{
		X: b.X + padW/2 + rng.Float64()*(b.Width-padW),
		Y: b.Y + padH/2 + rng.Float64()*(b.Height-padH),
	}
}

// QuadToBox converts a quad of 8 coordinates [x1,y1 .. x4,y4] into the
// smallest box that contains it.
func QuadToBox(quad []float64) (BoundingBox, error) {
	if len(quad) < 8 {
		return BoundingBox{}, fmt.Errorf("quad needs 8 coordinates, got %d", len(quad))
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < 8; i += 2 {
		minX = math.Min(minX, quad[i])
		maxX = math.Max(maxX, quad[i])
		minY = math.Min(minY, quad[i+1])
		maxY = math.Max(maxY, quad[i+1])
	}
	return BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}

// Edges describes a rectangle by its edge coordinates.
type Edges struct {
	Top, Left, Bottom, Right float64
}

// Expand grows the rectangle outward by margin on every side.
func (e Edges) Expand(margin float64) Edges {
	return Edges{Top: e.Top - margin, Left: e.Left - margin, Bottom: e.Bottom + margin, Right: e.Right + margin}
}

// Translate shifts the rectangle by (dx, dy).
func (e Edges) Translate(dx, dy float64) Edges {
	return Edges{Top: e.Top + dy, Left: e.Left + dx, Bottom: e.Bottom + dy, Right: e.Right + dx}
}

// Metrics describes the visible viewport and the full scrollable document.
type Metrics struct {
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
	DocumentWidth  float64 `json:"documentWidth"`
	DocumentHeight float64 `json:"documentHeight"`
	ScrollX        float64 `json:"scrollX"`
	ScrollY        float64 `json:"scrollY"`
}

// Viewport returns the visible area as a box anchored at the origin.
func (m Metrics) Viewport() BoundingBox {
	return BoundingBox{Width: m.ViewportWidth, Height: m.ViewportHeight}
}
