// internal/trajectory/bezier.go
package trajectory

import (
	"math"

	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
	"gonum.org/v1/gonum/integrate/quad"
)

// quadraturePoints is the Gauss-Legendre order used for arc length and
// segment timing. A cubic's speed is smooth enough that 16 nodes are exact
// to well below a pixel.
const quadraturePoints = 16

// Curve is a cubic Bézier curve from P0 to P3 with control points P1 and P2.
type Curve struct {
	P0, P1, P2, P3 geometry.Vector2D
}

// At evaluates the curve at parameter t in [0, 1].
func (c Curve) At(t float64) geometry.Vector2D {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return geometry.Vector2D{
		X: a*c.P0.X + b*c.P1.X + d*c.P2.X + e*c.P3.X,
		Y: a*c.P0.Y + b*c.P1.Y + d*c.P2.Y + e*c.P3.Y,
	}
}

// Derivative returns B'(t).
func (c Curve) Derivative(t float64) geometry.Vector2D {
	mt := 1 - t
	a := 3 * mt * mt
	b := 6 * mt * t
	d := 3 * t * t
	return geometry.Vector2D{
		X: a*(c.P1.X-c.P0.X) + b*(c.P2.X-c.P1.X) + d*(c.P3.X-c.P2.X),
		Y: a*(c.P1.Y-c.P0.Y) + b*(c.P2.Y-c.P1.Y) + d*(c.P3.Y-c.P2.Y),
	}
}

// Speed returns |B'(t)|.
func (c Curve) Speed(t float64) float64 {
	return c.Derivative(t).Mag()
}

// Length is the arc length of the curve, the integral of |B'(t)| over [0, 1].
func (c Curve) Length() float64 {
	return quad.Fixed(c.Speed, 0, 1, quadraturePoints, quad.Legendre{}, 0)
}

// LUT samples the curve at steps+1 evenly spaced parameter values, so the
// first entry is P0 and the last is P3.
func (c Curve) LUT(steps int) []geometry.Vector2D {
	if steps < 1 {
		steps = 1
	}
	out := make([]geometry.Vector2D, steps+1)
	for i := 0; i <= steps; i++ {
		out[i] = c.At(float64(i) / float64(steps))
	}
	out[0], out[steps] = c.P0, c.P3
	return out
}

// randomOnLine returns a uniformly random point on the segment a→b.
func randomOnLine(rng sampler.Source, a, b geometry.Vector2D) geometry.Vector2D {
	return a.Lerp(b, rng.Float64())
}

// anchors places two control points on one side of the line start→end. Each
// is a random point on the line pushed off it along the normal by a random
// fraction of spread. The pair is ordered by X so the curve does not loop.
func anchors(rng sampler.Source, start, end geometry.Vector2D, spread float64) (geometry.Vector2D, geometry.Vector2D) {
	side := 1.0
	if math.Round(rng.Float64()) != 1 {
		side = -1
	}
	normal := end.Sub(start).Perpendicular().WithMagnitude(spread).Mul(side)
	calc := func() geometry.Vector2D {
		mid := randomOnLine(rng, start, end)
		return randomOnLine(rng, mid, mid.Add(normal))
	}
	a, b := calc(), calc()
	if b.X < a.X {
		a, b = b, a
	}
	return a, b
}
