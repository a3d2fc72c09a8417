// internal/cursor/options.go
package cursor

import (
	"errors"
	"fmt"
	"time"

	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
)

const (
	// overshootRadius is how far past the destination an overshoot lands.
	overshootRadius = 120.0
	// overshootSpread is the curve spread of the correction after an overshoot.
	overshootSpread = 10.0
)

// MoveDefaults are the concrete movement parameters of an action.
type MoveDefaults struct {
	// PaddingPercentage shrinks the area of the target a destination may be
	// picked from. 0 allows anywhere inside, 100 always picks the center.
	PaddingPercentage float64 `mapstructure:"padding_percentage" yaml:"padding_percentage"`
	// MoveDelay is the pause after the action completes.
	MoveDelay time.Duration `mapstructure:"move_delay" yaml:"move_delay"`
	// RandomizeMoveDelay scales MoveDelay by a uniform draw from [0, 1).
	RandomizeMoveDelay bool `mapstructure:"randomize_move_delay" yaml:"randomize_move_delay"`
	// MaxTries bounds the attempts to land inside a target.
	MaxTries int `mapstructure:"max_tries" yaml:"max_tries"`
	// OvershootThreshold is the distance above which a move overshoots.
	OvershootThreshold float64 `mapstructure:"overshoot_threshold" yaml:"overshoot_threshold"`
	// MoveSpeed speeds up trajectories. Zero picks a random speed per path.
	MoveSpeed float64 `mapstructure:"move_speed" yaml:"move_speed"`
	// SpreadScale multiplies the curve spread. Zero means 1.
	SpreadScale float64 `mapstructure:"spread_scale" yaml:"spread_scale"`
	// UseTimestamps forwards synthesized timestamps with every event.
	UseTimestamps bool `mapstructure:"use_timestamps" yaml:"use_timestamps"`
	// Pace spreads the replay of each trajectory over this duration.
	Pace time.Duration `mapstructure:"pace" yaml:"pace"`
	// WaitForSelector is how long to wait for a selector to match.
	WaitForSelector time.Duration `mapstructure:"wait_for_selector" yaml:"wait_for_selector"`
}

// ClickDefaults are the concrete parameters of a press and release.
type ClickDefaults struct {
	Hesitate            time.Duration       `mapstructure:"hesitate" yaml:"hesitate"`
	WaitForClick        time.Duration       `mapstructure:"wait_for_click" yaml:"wait_for_click"`
	MoveDelay           time.Duration       `mapstructure:"move_delay" yaml:"move_delay"`
	RandomizeMoveDelay  bool                `mapstructure:"randomize_move_delay" yaml:"randomize_move_delay"`
	ClickCount          int                 `mapstructure:"click_count" yaml:"click_count"`
	Button              schemas.MouseButton `mapstructure:"button" yaml:"button"`
	DoubleClickInterval time.Duration       `mapstructure:"double_click_interval" yaml:"double_click_interval"`
	DoubleClickDrift    float64             `mapstructure:"double_click_drift" yaml:"double_click_drift"`
	MicroJitter         float64             `mapstructure:"micro_jitter" yaml:"micro_jitter"`
}

// ScrollDefaults are the concrete parameters of scrolling.
type ScrollDefaults struct {
	// ScrollSpeed in [1, 100]; 100 scrolls in a single step.
	ScrollSpeed float64 `mapstructure:"scroll_speed" yaml:"scroll_speed"`
	// ScrollDelay is the settle pause after a scroll sequence.
	ScrollDelay time.Duration `mapstructure:"scroll_delay" yaml:"scroll_delay"`
	// InViewMargin is the space kept around an element brought into view.
	InViewMargin float64 `mapstructure:"in_view_margin" yaml:"in_view_margin"`
	// WheelStep, when positive, emulates a notched wheel of that size.
	WheelStep      float64       `mapstructure:"wheel_step" yaml:"wheel_step"`
	WheelTickDelay time.Duration `mapstructure:"wheel_tick_delay" yaml:"wheel_tick_delay"`
	// Overshoot scrolls past the goal by this many pixels and comes back,
	// with probability OvershootProbability.
	Overshoot            float64 `mapstructure:"overshoot" yaml:"overshoot"`
	OvershootProbability float64 `mapstructure:"overshoot_probability" yaml:"overshoot_probability"`
}

// WanderDefaults are the parameters of the background wandering task.
type WanderDefaults struct {
	MoveDelay          time.Duration `mapstructure:"move_delay" yaml:"move_delay"`
	RandomizeMoveDelay bool          `mapstructure:"randomize_move_delay" yaml:"randomize_move_delay"`
	MoveSpeed          float64       `mapstructure:"move_speed" yaml:"move_speed"`
}

// Defaults is the lowest layer of option resolution.
type Defaults struct {
	Move   MoveDefaults   `mapstructure:"move" yaml:"move"`
	Click  ClickDefaults  `mapstructure:"click" yaml:"click"`
	Scroll ScrollDefaults `mapstructure:"scroll" yaml:"scroll"`
	Wander WanderDefaults `mapstructure:"wander" yaml:"wander"`
}

// NewDefaults returns the stock parameters.
func NewDefaults() Defaults {
	return Defaults{
		Move: MoveDefaults{
			MoveDelay:          0,
			RandomizeMoveDelay: true,
			MaxTries:           10,
			OvershootThreshold: 500,
		},
		Click: ClickDefaults{
			MoveDelay:           2000 * time.Millisecond,
			RandomizeMoveDelay:  true,
			ClickCount:          1,
			Button:              schemas.ButtonLeft,
			DoubleClickInterval: 120 * time.Millisecond,
		},
		Scroll: ScrollDefaults{
			ScrollSpeed: 100,
			ScrollDelay: 200 * time.Millisecond,
		},
		Wander: WanderDefaults{
			MoveDelay:          2000 * time.Millisecond,
			RandomizeMoveDelay: true,
		},
	}
}

// Validate rejects parameter sets the engine cannot act on.
func (d Defaults) Validate() error {
	var errs []error
	if d.Move.MaxTries < 1 {
		errs = append(errs, fmt.Errorf("move.max_tries must be at least 1, got %d", d.Move.MaxTries))
	}
	if d.Move.PaddingPercentage < 0 || d.Move.PaddingPercentage > 100 {
		errs = append(errs, fmt.Errorf("move.padding_percentage must be within [0, 100], got %v", d.Move.PaddingPercentage))
	}
	if d.Move.OvershootThreshold < 0 {
		errs = append(errs, fmt.Errorf("move.overshoot_threshold must not be negative, got %v", d.Move.OvershootThreshold))
	}
	if d.Move.MoveSpeed < 0 || d.Wander.MoveSpeed < 0 {
		errs = append(errs, errors.New("move_speed must not be negative"))
	}
	if d.Click.ClickCount < 1 {
		errs = append(errs, fmt.Errorf("click.click_count must be at least 1, got %d", d.Click.ClickCount))
	}
	switch d.Click.Button {
	case schemas.ButtonLeft, schemas.ButtonRight, schemas.ButtonMiddle:
	default:
		errs = append(errs, fmt.Errorf("click.button %q is not a pressable button", d.Click.Button))
	}
	if d.Scroll.ScrollSpeed < 1 || d.Scroll.ScrollSpeed > 100 {
		errs = append(errs, fmt.Errorf("scroll.scroll_speed must be within [1, 100], got %v", d.Scroll.ScrollSpeed))
	}
	if d.Scroll.OvershootProbability < 0 || d.Scroll.OvershootProbability > 1 {
		errs = append(errs, fmt.Errorf("scroll.overshoot_probability must be within [0, 1], got %v", d.Scroll.OvershootProbability))
	}
	for name, v := range map[string]time.Duration{
		"move.move_delay":        d.Move.MoveDelay,
		"move.pace":              d.Move.Pace,
		"move.wait_for_selector": d.Move.WaitForSelector,
		"click.hesitate":         d.Click.Hesitate,
		"click.wait_for_click":   d.Click.WaitForClick,
		"click.move_delay":       d.Click.MoveDelay,
		"scroll.scroll_delay":    d.Scroll.ScrollDelay,
		"wander.move_delay":      d.Wander.MoveDelay,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}
	return errors.Join(errs...)
}

// MoveOptions override movement parameters for one call. Nil fields fall
// through to the persona and then to the cursor defaults.
type MoveOptions struct {
	PaddingPercentage *float64
	// Destination is an explicit offset from the target's top-left corner.
	// It replaces the random padded point.
	Destination        *geometry.Vector2D
	MoveDelay          *time.Duration
	RandomizeMoveDelay *bool
	MaxTries           *int
	OvershootThreshold *float64
	MoveSpeed          *float64
	SpreadOverride     *float64
	UseTimestamps      *bool
	WaitForSelector    *time.Duration
	// Scroll tunes how the target is brought into view.
	Scroll *ScrollOptions
}

// MoveToOptions override parameters of a move to a coordinate.
type MoveToOptions struct {
	MoveDelay          *time.Duration
	RandomizeMoveDelay *bool
	MoveSpeed          *float64
	SpreadOverride     *float64
	UseTimestamps      *bool
}

// ClickOptions override click parameters. Move tunes the approach to the
// target; MoveDelay here is the pause after the release.
type ClickOptions struct {
	Move                *MoveOptions
	Hesitate            *time.Duration
	WaitForClick        *time.Duration
	MoveDelay           *time.Duration
	RandomizeMoveDelay  *bool
	ClickCount          *int
	Button              *schemas.MouseButton
	DoubleClickInterval *time.Duration
	DoubleClickDrift    *float64
	MicroJitter         *float64
}

// ScrollOptions override scrolling parameters.
type ScrollOptions struct {
	ScrollSpeed  *float64
	ScrollDelay  *time.Duration
	InViewMargin *float64
}

// WanderOptions override the wandering parameters.
type WanderOptions struct {
	MoveDelay          *time.Duration
	RandomizeMoveDelay *bool
	MoveSpeed          *float64
}

// Ptr returns a pointer to v, for filling option structs.
func Ptr[T any](v T) *T {
	return &v
}
