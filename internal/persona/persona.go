// internal/persona/persona.go
package persona

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
)

// FittsParams are the persona constants of the movement time model
// T = AMs + BMsPerBit * log2(D/W + 1).
type FittsParams struct {
	AMs       float64 `yaml:"a_ms" json:"a_ms"`
	BMsPerBit float64 `yaml:"b_ms_per_bit" json:"b_ms_per_bit"`
}

// PositionBias describes where a fresh cursor tends to appear, as fractions
// of the viewport width and height.
type PositionBias struct {
	X sampler.Distribution `yaml:"x" json:"x"`
	Y sampler.Distribution `yaml:"y" json:"y"`
}

// Persona is one behavioral character. Timings are in milliseconds and
// distances in CSS pixels. Values handed out by a Catalog are copies, so a
// caller can never alter the catalog through them.
type Persona struct {
	ID          string      `yaml:"id" json:"id"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Fitts       FittsParams `yaml:"fitts" json:"fitts"`

	ClickDwell          sampler.Distribution `yaml:"click_dwell" json:"click_dwell"`
	ClickHold           sampler.Distribution `yaml:"click_hold" json:"click_hold"`
	PostClickDelay      sampler.Distribution `yaml:"post_click_delay" json:"post_click_delay"`
	PaddingPercentage   sampler.Distribution `yaml:"padding_percentage" json:"padding_percentage"`
	OvershootThreshold  sampler.Distribution `yaml:"overshoot_threshold" json:"overshoot_threshold"`
	OvershootRate       sampler.Distribution `yaml:"overshoot_rate" json:"overshoot_rate"`
	MicroJitter         sampler.Distribution `yaml:"micro_jitter" json:"micro_jitter"`
	DoubleClickInterval sampler.Distribution `yaml:"double_click_interval" json:"double_click_interval"`
	DoubleClickDrift    sampler.Distribution `yaml:"double_click_drift" json:"double_click_drift"`
	ScrollSpeed         sampler.Distribution `yaml:"scroll_speed" json:"scroll_speed"`
	ScrollDelay         sampler.Distribution `yaml:"scroll_delay" json:"scroll_delay"`
	MaxTries            sampler.Distribution `yaml:"max_tries" json:"max_tries"`
	SpreadMultiplier    sampler.Distribution `yaml:"spread_multiplier" json:"spread_multiplier"`

	// Optional traits. A nil field means the behavior is absent.
	WheelStep                  *sampler.Distribution `yaml:"wheel_step,omitempty" json:"wheel_step,omitempty"`
	WheelTickDelay             *sampler.Distribution `yaml:"wheel_tick_delay,omitempty" json:"wheel_tick_delay,omitempty"`
	ScrollOvershoot            *sampler.Distribution `yaml:"scroll_overshoot,omitempty" json:"scroll_overshoot,omitempty"`
	ScrollOvershootProbability *sampler.Distribution `yaml:"scroll_overshoot_probability,omitempty" json:"scroll_overshoot_probability,omitempty"`
	InitialPositionBias        *PositionBias         `yaml:"initial_position_bias,omitempty" json:"initial_position_bias,omitempty"`
}

// Clone returns a deep copy of p.
func (p *Persona) Clone() *Persona {
	c := *p
	c.WheelStep = cloneDist(p.WheelStep)
	c.WheelTickDelay = cloneDist(p.WheelTickDelay)
	c.ScrollOvershoot = cloneDist(p.ScrollOvershoot)
	c.ScrollOvershootProbability = cloneDist(p.ScrollOvershootProbability)
	if p.InitialPositionBias != nil {
		b := *p.InitialPositionBias
		c.InitialPositionBias = &b
	}
	return &c
}

func cloneDist(d *sampler.Distribution) *sampler.Distribution {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// StartPoint samples an initial cursor location inside viewport according to
// the persona's position bias. ok is false when the persona declares none.
func (p *Persona) StartPoint(rng sampler.Source, viewport geometry.BoundingBox) (pt geometry.Vector2D, ok bool) {
	if p.InitialPositionBias == nil {
		return geometry.Vector2D{}, false
	}
	fx := p.InitialPositionBias.X.Sample(rng)
	fy := p.InitialPositionBias.Y.Sample(rng)
	return geometry.Vector2D{
		X: viewport.X + fx*viewport.Width,
		Y: viewport.Y + fy*viewport.Height,
	}.ClampPositive(), true
}

// Validate reports every malformed field of the persona.
func (p *Persona) Validate() error {
	if p.ID == "" {
		return errors.New("persona has an empty id")
	}

	var errs []error
	check := func(name string, d sampler.Distribution, nonNegative bool) {
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		if lo, _ := d.Bounds(); nonNegative && lo < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative, got min %v", name, lo))
		}
	}
	checkOpt := func(name string, d *sampler.Distribution) {
		if d != nil {
			check(name, *d, true)
		}
	}
	checkRate := func(name string, d sampler.Distribution) {
		if lo, hi := d.Bounds(); lo < 0 || hi > 1 {
			errs = append(errs, fmt.Errorf("%s: must lie within [0, 1], got [%v, %v]", name, lo, hi))
		}
	}

	if p.Fitts.AMs < 0 || p.Fitts.BMsPerBit < 0 {
		errs = append(errs, fmt.Errorf("fitts: constants must not be negative, got a=%v b=%v", p.Fitts.AMs, p.Fitts.BMsPerBit))
	}

	check("click_dwell", p.ClickDwell, true)
	check("click_hold", p.ClickHold, true)
	check("post_click_delay", p.PostClickDelay, true)
	check("padding_percentage", p.PaddingPercentage, true)
	if _, hi := p.PaddingPercentage.Bounds(); hi > 100 {
		errs = append(errs, fmt.Errorf("padding_percentage: must not exceed 100, got %v", hi))
	}
	check("overshoot_threshold", p.OvershootThreshold, true)
	check("overshoot_rate", p.OvershootRate, true)
	checkRate("overshoot_rate", p.OvershootRate)
	check("micro_jitter", p.MicroJitter, true)
	check("double_click_interval", p.DoubleClickInterval, true)
	check("double_click_drift", p.DoubleClickDrift, true)
	check("scroll_speed", p.ScrollSpeed, true)
	if lo, hi := p.ScrollSpeed.Bounds(); lo < 1 || hi > 100 {
		errs = append(errs, fmt.Errorf("scroll_speed: must lie within [1, 100], got [%v, %v]", lo, hi))
	}
	check("scroll_delay", p.ScrollDelay, true)
	check("max_tries", p.MaxTries, true)
	if lo, _ := p.MaxTries.Bounds(); lo < 1 {
		errs = append(errs, fmt.Errorf("max_tries: must allow at least one attempt, got min %v", lo))
	}
	check("spread_multiplier", p.SpreadMultiplier, true)

	checkOpt("wheel_step", p.WheelStep)
	checkOpt("wheel_tick_delay", p.WheelTickDelay)
	checkOpt("scroll_overshoot", p.ScrollOvershoot)
	checkOpt("scroll_overshoot_probability", p.ScrollOvershootProbability)
	if p.ScrollOvershootProbability != nil {
		checkRate("scroll_overshoot_probability", *p.ScrollOvershootProbability)
	}
	if b := p.InitialPositionBias; b != nil {
		check("initial_position_bias.x", b.X, true)
		check("initial_position_bias.y", b.Y, true)
		checkRate("initial_position_bias.x", b.X)
		checkRate("initial_position_bias.y", b.Y)
	}

	if len(errs) > 0 {
		return fmt.Errorf("persona %q is invalid: %w", p.ID, errors.Join(errs...))
	}
	return nil
}
