// internal/persona/persona_test.go
package persona

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
)

// countingSource records how many values were drawn.
type countingSource struct {
	src   sampler.Source
	draws int
}

func (c *countingSource) Float64() float64 {
	c.draws++
	return c.src.Float64()
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Same(t, c, Default(), "the built-in catalog is parsed once")
	assert.Equal(t, []string{"average", "distracted", "hurried", "instant", "precise"}, c.IDs())
	assert.Equal(t, 5, c.Len())

	for _, id := range c.IDs() {
		p, err := c.Get(id)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), "persona %s", id)
	}
}

func TestCatalog_GetReturnsCopy(t *testing.T) {
	c := Default()
	p, err := c.Get("distracted")
	require.NoError(t, err)

	p.ClickDwell = sampler.Const(12345)
	p.WheelStep.Min = -1
	p.InitialPositionBias.X = sampler.Const(0)

	again, err := c.Get("distracted")
	require.NoError(t, err)
	assert.NotEqual(t, 12345.0, again.ClickDwell.Min)
	assert.NotEqual(t, -1.0, again.WheelStep.Min)
	assert.NotEqual(t, sampler.Const(0), again.InitialPositionBias.X)

	ids := c.IDs()
	ids[0] = "mutated"
	assert.Equal(t, "average", c.IDs()[0])
}

func TestCatalog_UnknownPersona(t *testing.T) {
	_, err := Default().Get("nobody")
	assert.ErrorIs(t, err, ErrUnknownPersona)
}

func TestCatalog_CompileUnknownFailsBeforeSampling(t *testing.T) {
	src := &countingSource{src: sampler.NewSource(1)}
	_, err := Default().Compile("nobody", src, 500, 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPersona))
	assert.Zero(t, src.draws, "no randomness may be consumed for an unknown persona")
}

func TestCompile_ZeroPostClickDelay(t *testing.T) {
	opts, err := Default().Compile("instant", sampler.NewSource(7), 800, 40)
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), opts.Move.MoveDelay)
	assert.False(t, opts.Move.RandomizeMoveDelay)
	assert.Equal(t, time.Duration(0), opts.Click.MoveDelay)
	assert.False(t, opts.Click.RandomizeMoveDelay)
	assert.Equal(t, time.Duration(0), opts.Click.Hesitate)
	assert.Equal(t, time.Duration(0), opts.Click.WaitForClick)
	assert.Equal(t, time.Duration(0), opts.TargetTime)
	assert.Equal(t, 100.0, opts.Scroll.ScrollSpeed)
}

func TestCompile_NonZeroPostClickDelayRandomizes(t *testing.T) {
	opts, err := Default().Compile("average", sampler.NewSource(7), 800, 40)
	require.NoError(t, err)
	assert.True(t, opts.Move.RandomizeMoveDelay)
	assert.GreaterOrEqual(t, opts.Move.MoveDelay, 200*time.Millisecond)
	assert.LessOrEqual(t, opts.Move.MoveDelay, 1500*time.Millisecond)
}

func TestCompile_FittsTargetTime(t *testing.T) {
	p, err := Default().Get("average")
	require.NoError(t, err)

	cases := []struct {
		name            string
		distance, width float64
		wantID          float64
	}{
		{"near large target", 100, 100, 1},
		{"far small target", 700, 100, 3},
		{"point target uses default width", 300, 0, 2},
		{"zero distance", 0, 50, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := Compile(p, sampler.NewSource(3), tc.distance, tc.width)
			assert.InDelta(t, tc.wantID, opts.Meta.IndexOfDifficulty, 1e-9)
			want := p.Fitts.AMs + p.Fitts.BMsPerBit*tc.wantID
			assert.InDelta(t, want, float64(opts.TargetTime)/float64(time.Millisecond), 1e-6)
			assert.Equal(t, opts.TargetTime, opts.Move.Pace)
			assert.Equal(t, "average", opts.Meta.PersonaID)
		})
	}

	near := Compile(p, sampler.NewSource(3), 100, 100)
	far := Compile(p, sampler.NewSource(3), 1000, 10)
	assert.Greater(t, far.TargetTime, near.TargetTime, "harder tasks take longer")
	assert.Equal(t, geometry.DefaultTargetWidth, Compile(p, sampler.NewSource(3), 10, -5).Meta.TargetWidth)
}

func within(t *testing.T, name string, d sampler.Distribution, v float64) {
	t.Helper()
	lo, hi := d.Bounds()
	const eps = 1e-6
	assert.True(t, v >= lo-eps && v <= hi+eps, "%s = %v outside [%v, %v]", name, v, lo, hi)
}

func msOf(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func TestCompile_ValuesWithinBounds(t *testing.T) {
	c := Default()
	for _, id := range c.IDs() {
		p, err := c.Get(id)
		require.NoError(t, err)
		src := sampler.NewSource(sampler.HashSeed(id))

		for i := 0; i < 500; i++ {
			o := Compile(p, src, float64(i), 30)

			within(t, "click_dwell", p.ClickDwell, msOf(o.Click.Hesitate))
			within(t, "click_hold", p.ClickHold, msOf(o.Click.WaitForClick))
			within(t, "padding_percentage", p.PaddingPercentage, o.Move.PaddingPercentage)
			within(t, "overshoot_threshold", p.OvershootThreshold, o.Move.OvershootThreshold)
			within(t, "overshoot_rate", p.OvershootRate, o.Meta.OvershootRate)
			within(t, "micro_jitter", p.MicroJitter, o.Click.MicroJitter)
			within(t, "double_click_interval", p.DoubleClickInterval, msOf(o.Click.DoubleClickInterval))
			within(t, "double_click_drift", p.DoubleClickDrift, o.Click.DoubleClickDrift)
			within(t, "scroll_speed", p.ScrollSpeed, o.Scroll.ScrollSpeed)
			within(t, "scroll_delay", p.ScrollDelay, msOf(o.Scroll.ScrollDelay))
			within(t, "max_tries", p.MaxTries, float64(o.Move.MaxTries))
			within(t, "spread_multiplier", p.SpreadMultiplier, o.Path.SpreadMultiplier)
			if !p.PostClickDelay.IsZero() {
				within(t, "post_click_delay", p.PostClickDelay, msOf(o.Move.MoveDelay))
			}
			if p.WheelStep != nil {
				require.NotNil(t, o.Scroll.WheelStep)
				within(t, "wheel_step", *p.WheelStep, *o.Scroll.WheelStep)
			} else {
				assert.Nil(t, o.Scroll.WheelStep, "undeclared traits stay unset")
			}
			if p.WheelTickDelay == nil {
				assert.Nil(t, o.Scroll.WheelTickDelay)
			}
			if p.ScrollOvershoot == nil {
				assert.Nil(t, o.Scroll.Overshoot)
			}
			if p.ScrollOvershootProbability != nil {
				require.NotNil(t, o.Scroll.OvershootProbability)
				within(t, "scroll_overshoot_probability", *p.ScrollOvershootProbability, *o.Scroll.OvershootProbability)
			} else {
				assert.Nil(t, o.Scroll.OvershootProbability)
			}
		}
	}
}

func TestCompile_Deterministic(t *testing.T) {
	p, err := Default().Get("hurried")
	require.NoError(t, err)
	a := Compile(p, sampler.NewSource(99), 640, 32)
	b := Compile(p, sampler.NewSource(99), 640, 32)
	assert.Equal(t, a, b)
}

func TestPersona_Validate(t *testing.T) {
	base, err := Default().Get("average")
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(p *Persona)
	}{
		{"empty id", func(p *Persona) { p.ID = "" }},
		{"inverted range", func(p *Persona) { p.ClickDwell = sampler.Tri(50, 10, 100) }},
		{"negative timing", func(p *Persona) { p.ScrollDelay = sampler.Tri(-10, 0, 10) }},
		{"overshoot rate above one", func(p *Persona) { p.OvershootRate = sampler.Tri(0, 0.5, 1.5) }},
		{"scroll speed out of range", func(p *Persona) { p.ScrollSpeed = sampler.Uni(0, 150) }},
		{"padding above 100", func(p *Persona) { p.PaddingPercentage = sampler.Uni(0, 120) }},
		{"no attempts", func(p *Persona) { p.MaxTries = sampler.Const(0) }},
		{"negative fitts", func(p *Persona) { p.Fitts.AMs = -1 }},
		{"bad optional", func(p *Persona) { d := sampler.Uni(5, 1); p.WheelStep = &d }},
		{"probability above one", func(p *Persona) { d := sampler.Const(2); p.ScrollOvershootProbability = &d }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base.Clone()
			tc.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestPersona_StartPoint(t *testing.T) {
	viewport := geometry.BoundingBox{Width: 1280, Height: 720}

	avg, err := Default().Get("average")
	require.NoError(t, err)
	_, ok := avg.StartPoint(sampler.NewSource(1), viewport)
	assert.False(t, ok)

	d, err := Default().Get("distracted")
	require.NoError(t, err)
	src := sampler.NewSource(1)
	for i := 0; i < 200; i++ {
		pt, ok := d.StartPoint(src, viewport)
		require.True(t, ok)
		assert.True(t, pt.X >= 0.1*1280 && pt.X <= 0.9*1280, "x=%v", pt.X)
		assert.True(t, pt.Y >= 0.2*720 && pt.Y <= 0.9*720, "y=%v", pt.Y)
	}
}

const extraPersonas = `
personas:
  - id: robot
    fitts: { a_ms: 10, b_ms_per_bit: 10 }
    click_dwell: { kind: constant, min: 5, max: 5 }
    click_hold: { kind: constant, min: 5, max: 5 }
    post_click_delay: { kind: constant, min: 5, max: 5 }
    padding_percentage: { kind: constant, min: 100, max: 100 }
    overshoot_threshold: { kind: constant, min: 10000, max: 10000 }
    overshoot_rate: { kind: constant, min: 0, max: 0 }
    micro_jitter: { kind: constant, min: 0, max: 0 }
    double_click_interval: { kind: constant, min: 50, max: 50 }
    double_click_drift: { kind: constant, min: 0, max: 0 }
    scroll_speed: { kind: constant, min: 100, max: 100 }
    scroll_delay: { kind: constant, min: 0, max: 0 }
    max_tries: { kind: constant, min: 3, max: 3 }
    spread_multiplier: { kind: constant, min: 0.1, max: 0.1 }
  - id: average
    description: overridden
    fitts: { a_ms: 1, b_ms_per_bit: 1 }
    click_dwell: { min: 1, mode: 2, max: 3 }
    click_hold: { min: 1, mode: 2, max: 3 }
    post_click_delay: { min: 1, mode: 2, max: 3 }
    padding_percentage: { min: 1, mode: 2, max: 3 }
    overshoot_threshold: { min: 1, mode: 2, max: 3 }
    overshoot_rate: { min: 0, mode: 0, max: 0 }
    micro_jitter: { min: 1, mode: 2, max: 3 }
    double_click_interval: { min: 1, mode: 2, max: 3 }
    double_click_drift: { min: 1, mode: 2, max: 3 }
    scroll_speed: { min: 1, mode: 2, max: 3 }
    scroll_delay: { min: 1, mode: 2, max: 3 }
    max_tries: { min: 1, mode: 2, max: 3 }
    spread_multiplier: { min: 1, mode: 2, max: 3 }
`

func TestParse_LayersOverBuiltins(t *testing.T) {
	c, err := Parse([]byte(extraPersonas))
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())

	robot, err := c.Get("robot")
	require.NoError(t, err)
	assert.Equal(t, 3.0, robot.MaxTries.Min)

	avg, err := c.Get("average")
	require.NoError(t, err)
	assert.Equal(t, "overridden", avg.Description)

	builtin, err := Default().Get("average")
	require.NoError(t, err)
	assert.NotEqual(t, "overridden", builtin.Description, "layering must not touch the built-in catalog")
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "",
		"unknown field": "personas:\n  - id: x\n    favourite_color: blue\n",
		"invalid":       "personas:\n  - id: x\n    scroll_speed: { min: 0, mode: 0, max: 0 }\n",
		"duplicate": extraPersonas + `
  - id: robot
    fitts: { a_ms: 10, b_ms_per_bit: 10 }
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(extraPersonas), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, c.IDs(), "robot")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestIndexOfDifficulty(t *testing.T) {
	assert.Equal(t, 0.0, IndexOfDifficulty(-10, 10))
	assert.InDelta(t, math.Log2(2), IndexOfDifficulty(100, 0), 1e-12)
}
