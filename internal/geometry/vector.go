// internal/geometry/vector.go
package geometry

import "math"

// Vector2D represents a point or vector in a 2D Cartesian coordinate system.
// Positions, directions and offsets on the page are all expressed with it.
type Vector2D struct {
	// X is the horizontal component of the vector.
	X float64 `json:"x"`
	// Y is the vertical component of the vector.
	Y float64 `json:"y"`
}

// TimedPoint is a position on a trajectory together with the moment the
// pointer should be there, in milliseconds since the Unix epoch.
// A zero Timestamp means no timing was requested.
type TimedPoint struct {
	Vector2D
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Add performs vector addition, returning a new Vector2D `v + other`.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub performs vector subtraction, returning a new Vector2D `v - other`.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul performs scalar multiplication, returning a new Vector2D `v * scalar`.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{X: v.X * scalar, Y: v.Y * scalar}
}

// Mag calculates the magnitude (Euclidean length) of the vector, `|v|`.
func (v Vector2D) Mag() float64 {
	// math.Hypot is stable for very large or small components.
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector with the same direction as `v`.
// The zero vector normalizes to itself.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Mag()
	if mag < 1e-9 {
		return Vector2D{}
	}
	return v.Mul(1.0 / mag)
}

// WithMagnitude returns `v` rescaled to length m.
func (v Vector2D) WithMagnitude(m float64) Vector2D {
	return v.Normalize().Mul(m)
}

// Perpendicular returns `v` rotated by 90 degrees counter-clockwise.
func (v Vector2D) Perpendicular() Vector2D {
	return Vector2D{X: v.Y, Y: -v.X}
}

// Dist calculates the Euclidean distance between the points `v` and `other`.
func (v Vector2D) Dist(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Lerp returns the point a fraction t of the way from `v` to `other`.
func (v Vector2D) Lerp(other Vector2D, t float64) Vector2D {
	return v.Add(other.Sub(v).Mul(t))
}

// ClampPositive returns `v` with negative components replaced by zero.
func (v Vector2D) ClampPositive() Vector2D {
	return Vector2D{X: math.Max(0, v.X), Y: math.Max(0, v.Y)}
}

// Extrapolate continues the line from a through b by the same step, `b + (b - a)`.
func Extrapolate(a, b Vector2D) Vector2D {
	return b.Add(b.Sub(a))
}
