// internal/trajectory/generator.go
package trajectory

import (
	"math"
	"time"

	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// MinSteps is the base resolution of every trajectory.
	MinSteps = 25
	// DefaultTargetWidth is used when the target has no width.
	DefaultTargetWidth = geometry.DefaultTargetWidth

	minSpread = 2.0
	maxSpread = 200.0
	// lengthDamping keeps curvature from inflating the step count.
	lengthDamping = 0.8
)

// Options tune a single trajectory.
type Options struct {
	// SpreadOverride replaces the distance-derived spread when non-nil.
	SpreadOverride *float64
	// SpreadScale multiplies the distance-derived spread. Zero means 1.
	SpreadScale float64
	// MoveSpeed speeds the motion up. Zero picks a random speed.
	MoveSpeed float64
	// TargetWidth feeds the Fitts's-law step model. Zero means DefaultTargetWidth.
	TargetWidth float64
	// UseTimestamps attaches a timestamp to every point.
	UseTimestamps bool
}

// Spread returns a pointer to v, for Options.SpreadOverride.
func Spread(v float64) *float64 {
	return &v
}

// Generator builds humanlike pointer trajectories. All of its randomness
// comes from the injected source, so a seeded source makes paths
// reproducible. A Generator is not safe for concurrent use unless its source
// is.
type Generator struct {
	rng sampler.Source
	now func() time.Time
}

// New creates a Generator drawing from rng.
func New(rng sampler.Source) *Generator {
	return &Generator{rng: rng, now: time.Now}
}

// WithClock replaces the clock used for timestamps.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

// Fitts is the index of difficulty used by the step model, 2*log2(d/w + 1).
func Fitts(distance, width float64) float64 {
	return 2 * math.Log2(distance/width+1)
}

// Curve builds the Bézier curve a Path would follow from start to end.
func (g *Generator) Curve(start, end geometry.Vector2D, opts Options) Curve {
	spread := opts.spread(start, end)
	p1, p2 := anchors(g.rng, start, end, spread)
	return Curve{P0: start, P1: p1, P2: p2, P3: end}
}

func (o Options) spread(start, end geometry.Vector2D) float64 {
	if o.SpreadOverride != nil {
		return *o.SpreadOverride
	}
	scale := o.SpreadScale
	if scale <= 0 {
		scale = 1
	}
	return clamp(start.Dist(end), minSpread, maxSpread) * scale
}

// Path returns the points of a trajectory from start to end. The first point
// is start exactly and no coordinate is negative.
func (g *Generator) Path(start, end geometry.Vector2D, opts Options) []geometry.TimedPoint {
	width := opts.TargetWidth
	if width <= 0 {
		width = DefaultTargetWidth
	}

	curve := g.Curve(start, end, opts)
	length := curve.Length() * lengthDamping

	var speed float64
	if opts.MoveSpeed > 0 {
		speed = 25 / opts.MoveSpeed
	} else {
		speed = g.rng.Float64()
	}
	base := speed * MinSteps
	steps := int(math.Ceil((math.Log2(Fitts(length, width)+1) + base) * 3))
	if steps < MinSteps {
		steps = MinSteps
	}

	lut := curve.LUT(steps)
	points := make([]geometry.TimedPoint, len(lut))
	for i, v := range lut {
		points[i] = geometry.TimedPoint{Vector2D: v.ClampPositive()}
	}
	points[0].Vector2D = start.ClampPositive()

	if opts.UseTimestamps {
		g.stamp(points, opts.MoveSpeed)
	}
	return points
}

// PathToBox is Path toward a point aimed at box. The box's width, when it has
// one, replaces opts.TargetWidth in the step model.
func (g *Generator) PathToBox(start, end geometry.Vector2D, box geometry.BoundingBox, opts Options) []geometry.TimedPoint {
	if box.Width > 0 {
		opts.TargetWidth = box.Width
	}
	return g.Path(start, end, opts)
}

// stamp assigns timestamps. The first point gets the current time; each
// later one adds the time needed to traverse the segment curve formed by the
// neighbouring points, at least one millisecond.
func (g *Generator) stamp(points []geometry.TimedPoint, moveSpeed float64) {
	divisor := moveSpeed
	if divisor <= 0 {
		divisor = g.rng.Float64()*0.5 + 0.5
	}

	n := len(points)
	points[0].Timestamp = g.now().UnixMilli()
	for i := 1; i < n; i++ {
		p0 := points[i-1].Vector2D
		p1 := points[i].Vector2D
		var p2, p3 geometry.Vector2D
		if i+1 < n {
			p2 = points[i+1].Vector2D
		} else {
			p2 = geometry.Extrapolate(p0, p1)
		}
		if i+2 < n {
			p3 = points[i+2].Vector2D
		} else {
			p3 = geometry.Extrapolate(p1, p2)
		}

		seg := Curve{P0: p0, P1: p1, P2: p2, P3: p3}
		travel := quad.Fixed(seg.Speed, 0, 1, quadraturePoints, quad.Legendre{}, 0)
		dt := int64(math.Round(travel / divisor))
		if dt < 1 {
			dt = 1
		}
		points[i].Timestamp = points[i-1].Timestamp + dt
	}
}

// Length returns the polyline length of points.
func Length(points []geometry.TimedPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i-1].Dist(points[i].Vector2D)
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
