// internal/persona/compile.go
package persona

import (
	"math"
	"time"

	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
)

// MoveParams parameterize pointer movement toward a target.
type MoveParams struct {
	PaddingPercentage  float64
	OvershootThreshold float64
	MaxTries           int
	// MoveDelay is the pause after the action completes.
	MoveDelay          time.Duration
	RandomizeMoveDelay bool
	// Pace spreads trajectory replay over this duration. Zero replays as
	// fast as the driver accepts events.
	Pace time.Duration
}

// ClickParams parameterize a press and release.
type ClickParams struct {
	Hesitate            time.Duration
	WaitForClick        time.Duration
	MoveDelay           time.Duration
	RandomizeMoveDelay  bool
	DoubleClickInterval time.Duration
	DoubleClickDrift    float64
	MicroJitter         float64
}

// ScrollParams parameterize wheel scrolling. The pointer fields are nil
// when the persona does not declare the trait, leaving the cursor's own
// defaults in place.
type ScrollParams struct {
	ScrollSpeed          float64
	ScrollDelay          time.Duration
	WheelStep            *float64
	WheelTickDelay       *time.Duration
	Overshoot            *float64
	OvershootProbability *float64
}

// PathParams parameterize trajectory shape.
type PathParams struct {
	SpreadMultiplier float64
}

// Meta records the inputs the options were compiled for.
type Meta struct {
	PersonaID         string  `json:"persona_id"`
	Distance          float64 `json:"distance"`
	TargetWidth       float64 `json:"target_width"`
	IndexOfDifficulty float64 `json:"index_of_difficulty"`
	OvershootRate     float64 `json:"overshoot_rate"`
}

// CompiledOptions are concrete parameters for one upcoming action. They are
// produced fresh for every action and must not be reused.
type CompiledOptions struct {
	Move       MoveParams
	Click      ClickParams
	Scroll     ScrollParams
	Path       PathParams
	Meta       Meta
	TargetTime time.Duration
}

// IndexOfDifficulty returns log2(distance/width + 1). A non-positive width
// is replaced by geometry.DefaultTargetWidth.
func IndexOfDifficulty(distance, width float64) float64 {
	if width <= 0 {
		width = geometry.DefaultTargetWidth
	}
	if distance < 0 {
		distance = 0
	}
	return math.Log2(distance/width + 1)
}

// Compile samples every distribution of p exactly once, in declaration
// order, and derives the Fitts's-law target time for a movement of the given
// distance toward a target of the given width.
func Compile(p *Persona, rng sampler.Source, distance, width float64) CompiledOptions {
	if width <= 0 {
		width = geometry.DefaultTargetWidth
	}
	id := IndexOfDifficulty(distance, width)

	hesitate := p.ClickDwell.Sample(rng)
	hold := p.ClickHold.Sample(rng)
	postDelay := p.PostClickDelay.Sample(rng)
	padding := p.PaddingPercentage.Sample(rng)
	threshold := p.OvershootThreshold.Sample(rng)
	overshootRate := p.OvershootRate.Sample(rng)
	jitter := p.MicroJitter.Sample(rng)
	dcInterval := p.DoubleClickInterval.Sample(rng)
	dcDrift := p.DoubleClickDrift.Sample(rng)
	scrollSpeed := p.ScrollSpeed.Sample(rng)
	scrollDelay := p.ScrollDelay.Sample(rng)
	maxTries := p.MaxTries.SampleInt(rng)
	spread := p.SpreadMultiplier.Sample(rng)

	opts := CompiledOptions{
		Click: ClickParams{
			Hesitate:            ms(hesitate),
			WaitForClick:        ms(hold),
			DoubleClickInterval: ms(dcInterval),
			DoubleClickDrift:    dcDrift,
			MicroJitter:         jitter,
		},
		Scroll: ScrollParams{
			ScrollSpeed: scrollSpeed,
			ScrollDelay: ms(scrollDelay),
		},
		Path: PathParams{SpreadMultiplier: spread},
		Meta: Meta{
			PersonaID:         p.ID,
			Distance:          distance,
			TargetWidth:       width,
			IndexOfDifficulty: id,
			OvershootRate:     overshootRate,
		},
	}

	opts.Scroll.WheelStep = sampleOpt(p.WheelStep, rng)
	if v := sampleOpt(p.WheelTickDelay, rng); v != nil {
		d := ms(*v)
		opts.Scroll.WheelTickDelay = &d
	}
	opts.Scroll.Overshoot = sampleOpt(p.ScrollOvershoot, rng)
	opts.Scroll.OvershootProbability = sampleOpt(p.ScrollOvershootProbability, rng)

	// A post click delay pinned at zero turns off every injected pause after
	// the action, including the randomized move delay.
	moveDelay, randomize := ms(postDelay), true
	if p.PostClickDelay.IsZero() {
		moveDelay, randomize = 0, false
	}

	opts.TargetTime = ms(p.Fitts.AMs + p.Fitts.BMsPerBit*id)
	opts.Move = MoveParams{
		PaddingPercentage:  padding,
		OvershootThreshold: threshold,
		MaxTries:           maxTries,
		MoveDelay:          moveDelay,
		RandomizeMoveDelay: randomize,
		Pace:               opts.TargetTime,
	}
	opts.Click.MoveDelay = moveDelay
	opts.Click.RandomizeMoveDelay = randomize
	return opts
}

// Compile looks up id and compiles it. An unknown id fails before the
// source is touched.
func (c *Catalog) Compile(id string, rng sampler.Source, distance, width float64) (CompiledOptions, error) {
	p, err := c.Get(id)
	if err != nil {
		return CompiledOptions{}, err
	}
	return Compile(p, rng, distance, width), nil
}

// sampleOpt draws from an optional trait, or returns nil without touching
// the source when the trait is absent.
func sampleOpt(d *sampler.Distribution, rng sampler.Source) *float64 {
	if d == nil {
		return nil
	}
	v := d.Sample(rng)
	return &v
}

func ms(v float64) time.Duration {
	return time.Duration(v * float64(time.Millisecond))
}
