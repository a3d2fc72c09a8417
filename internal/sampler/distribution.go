// internal/sampler/distribution.go
package sampler

import (
	"fmt"
	"math"
)

// Triangle describes a triangular distribution over [Min, Max] peaking at Mode.
type Triangle struct {
	Min, Mode, Max float64
}

// Uniform draws from [a, b). When b <= a it returns a.
func Uniform(rng Source, a, b float64) float64 {
	if b <= a {
		return a
	}
	return a + rng.Float64()*(b-a)
}

// Triangular draws from the triangular distribution using its inverse CDF.
// The result always lies within [t.Min, t.Max].
func Triangular(rng Source, t Triangle) float64 {
	span := t.Max - t.Min
	if span <= 0 {
		return t.Min
	}
	p := (t.Mode - t.Min) / span
	u := rng.Float64()

	var v float64
	if u < p {
		v = t.Min + math.Sqrt(u*span*(t.Mode-t.Min))
	} else {
		v = t.Max - math.Sqrt((1-u)*span*(t.Max-t.Mode))
	}
	return clamp(v, t.Min, t.Max)
}

// Randint returns an integer in [a, b], the floor of a uniform draw over [a, b+1).
func Randint(rng Source, a, b int) int {
	if b < a {
		return a
	}
	v := int(math.Floor(Uniform(rng, float64(a), float64(b)+1)))
	if v > b {
		v = b
	}
	return v
}

// Kind names the shape of a Distribution.
type Kind string

const (
	KindTriangular Kind = "triangular"
	KindUniform    Kind = "uniform"
	KindConstant   Kind = "constant"
)

// Distribution is a declarative, serializable description of a random variable.
// A zero Kind is treated as triangular.
type Distribution struct {
	Kind Kind    `yaml:"kind,omitempty" json:"kind,omitempty"`
	Min  float64 `yaml:"min" json:"min"`
	Mode float64 `yaml:"mode,omitempty" json:"mode,omitempty"`
	Max  float64 `yaml:"max" json:"max"`
}

// Tri is shorthand for a triangular Distribution.
func Tri(min, mode, max float64) Distribution {
	return Distribution{Kind: KindTriangular, Min: min, Mode: mode, Max: max}
}

// Uni is shorthand for a uniform Distribution over [min, max).
func Uni(min, max float64) Distribution {
	return Distribution{Kind: KindUniform, Min: min, Max: max}
}

// Const is shorthand for a Distribution that always yields v.
func Const(v float64) Distribution {
	return Distribution{Kind: KindConstant, Min: v, Mode: v, Max: v}
}

func (d Distribution) kind() Kind {
	if d.Kind == "" {
		return KindTriangular
	}
	return d.Kind
}

// Sample draws one value. The result is always inside Bounds().
func (d Distribution) Sample(rng Source) float64 {
	switch d.kind() {
	case KindConstant:
		return d.Min
	case KindUniform:
		return Uniform(rng, d.Min, d.Max)
	default:
		return Triangular(rng, Triangle{Min: d.Min, Mode: d.Mode, Max: d.Max})
	}
}

// SampleInt draws an integer. Uniform distributions use Randint over the
// integer part of the range; the others round a regular sample.
func (d Distribution) SampleInt(rng Source) int {
	lo, hi := d.Bounds()
	if d.kind() == KindUniform {
		return Randint(rng, int(math.Ceil(lo)), int(math.Floor(hi)))
	}
	v := math.Round(d.Sample(rng))
	return int(clamp(v, math.Ceil(lo), math.Floor(hi)))
}

// Bounds returns the closed range every sample falls within.
func (d Distribution) Bounds() (min, max float64) {
	if d.kind() == KindConstant {
		return d.Min, d.Min
	}
	return d.Min, d.Max
}

// Mean returns the expected value of the distribution.
func (d Distribution) Mean() float64 {
	switch d.kind() {
	case KindConstant:
		return d.Min
	case KindUniform:
		return (d.Min + d.Max) / 2
	default:
		return (d.Min + d.Mode + d.Max) / 3
	}
}

// IsZero reports whether the distribution collapses to exactly 0.
func (d Distribution) IsZero() bool {
	lo, hi := d.Bounds()
	if lo != 0 || hi != 0 {
		return false
	}
	return d.kind() != KindTriangular || d.Mode == 0
}

// Validate checks that the declared range is well formed.
func (d Distribution) Validate() error {
	switch d.kind() {
	case KindConstant:
		return nil
	case KindUniform:
		if d.Min > d.Max {
			return fmt.Errorf("uniform distribution has min %v greater than max %v", d.Min, d.Max)
		}
	case KindTriangular:
		if d.Min > d.Mode || d.Mode > d.Max {
			return fmt.Errorf("triangular distribution requires min <= mode <= max, got {%v, %v, %v}", d.Min, d.Mode, d.Max)
		}
	default:
		return fmt.Errorf("unknown distribution kind %q", d.Kind)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
