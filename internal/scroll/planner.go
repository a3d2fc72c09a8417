// internal/scroll/planner.go
package scroll

import "math"

const (
	// MinSpeed and MaxSpeed bound the speed parameter of Plan.
	MinSpeed = 1.0
	MaxSpeed = 100.0
	// ScaleThreshold is the speed at which the step size stops tracking the
	// speed value and starts growing toward the whole distance.
	ScaleThreshold = 90.0
)

// Step is one wheel event worth of scrolling. Every step of a plan but the
// last moves a whole number of pixels; the last one carries any fraction.
type Step struct {
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
}

// Plan splits the delta (dx, dy) into wheel steps whose sum is exactly
// (dx, dy), fractions included.
//
// Below ScaleThreshold the dominant axis moves speed pixels per step. From
// the threshold up the step grows linearly so that speed 100 covers the
// whole distance in a single step. The minor axis is spread evenly over the
// same number of steps and the last step absorbs every remainder.
func Plan(dx, dy, speed float64) []Step {
	speed = math.Max(MinSpeed, math.Min(MaxSpeed, speed))
	if dx == 0 && dy == 0 {
		return nil
	}

	step := speed
	if speed >= ScaleThreshold {
		step = scale(speed, ScaleThreshold, MaxSpeed, ScaleThreshold, major(dx, dy))
	}
	return split(dx, dy, math.Max(1, math.Floor(step)))
}

// PlanDetent splits (dx, dy) into notches of a stepped wheel. Every step
// but the last moves exactly notch pixels on the dominant axis. A notch
// smaller than one pixel collapses the delta into a single step.
func PlanDetent(dx, dy, notch float64) []Step {
	if dx == 0 && dy == 0 {
		return nil
	}
	n := math.Floor(notch)
	if n < 1 {
		n = math.Inf(1)
	}
	return split(dx, dy, n)
}

func major(dx, dy float64) float64 {
	return math.Max(math.Abs(dx), math.Abs(dy))
}

// split cuts the dominant axis into whole steps of size step. The sum is
// exact because every step but the last is an integer and the last one is
// the true remainder of the requested distance.
func split(dx, dy, step float64) []Step {
	horizontal := math.Abs(dx) > math.Abs(dy)
	major, minor := math.Abs(dy), math.Abs(dx)
	if horizontal {
		major, minor = math.Abs(dx), math.Abs(dy)
	}

	n := math.Floor(major / step)
	if n < 1 {
		n = 1
	}
	minorStep := math.Floor(minor / n)

	count := int(n)
	steps := make([]Step, count)
	for i := 0; i < count; i++ {
		a, b := step, minorStep
		if i == count-1 {
			a, b = major, minor
			if i > 0 {
				a -= step * float64(i)
				b -= minorStep * float64(i)
			}
		}
		if horizontal {
			steps[i] = Step{DeltaX: math.Copysign(a, dx), DeltaY: math.Copysign(b, dy)}
		} else {
			steps[i] = Step{DeltaX: math.Copysign(b, dx), DeltaY: math.Copysign(a, dy)}
		}
	}
	return steps
}

// scale maps v from [inLo, inHi] onto [outLo, outHi].
func scale(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}
