// internal/cursor/resolve.go
package cursor

import (
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/persona"
	"go.uber.org/zap"
)

// Option resolution happens once per action, in three layers, lowest
// precedence first:
//
//  1. the Defaults the cursor was created with,
//  2. the cursor's persona, compiled fresh for this action,
//  3. every non-nil field of the options passed to the call.
//
// A higher layer replaces a value outright; nothing is merged numerically.

type moveSettings struct {
	MoveDefaults
	destination    *geometry.Vector2D
	spreadOverride *float64
	scroll         ScrollDefaults
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// compile samples the persona for one action, or returns nil without one.
func (c *Cursor) compile(distance, width float64) *persona.CompiledOptions {
	if c.persona == nil {
		return nil
	}
	opts := persona.Compile(c.persona, c.rng, distance, width)
	c.logger.Debug("Persona sampled for action",
		zap.Float64("distance", distance),
		zap.Float64("width", width),
		zap.Float64("index_of_difficulty", opts.Meta.IndexOfDifficulty))
	return &opts
}

func resolveScroll(base ScrollDefaults, profile *persona.CompiledOptions, call *ScrollOptions) ScrollDefaults {
	s := base
	if profile != nil {
		s.ScrollSpeed = profile.Scroll.ScrollSpeed
		s.ScrollDelay = profile.Scroll.ScrollDelay
		set(&s.WheelStep, profile.Scroll.WheelStep)
		set(&s.WheelTickDelay, profile.Scroll.WheelTickDelay)
		set(&s.Overshoot, profile.Scroll.Overshoot)
		set(&s.OvershootProbability, profile.Scroll.OvershootProbability)
	}
	if call != nil {
		set(&s.ScrollSpeed, call.ScrollSpeed)
		set(&s.ScrollDelay, call.ScrollDelay)
		set(&s.InViewMargin, call.InViewMargin)
	}
	return s
}

func resolveMove(base Defaults, profile *persona.CompiledOptions, call *MoveOptions) moveSettings {
	s := moveSettings{MoveDefaults: base.Move}
	if profile != nil {
		s.PaddingPercentage = profile.Move.PaddingPercentage
		s.OvershootThreshold = profile.Move.OvershootThreshold
		s.MaxTries = profile.Move.MaxTries
		s.MoveDelay = profile.Move.MoveDelay
		s.RandomizeMoveDelay = profile.Move.RandomizeMoveDelay
		s.Pace = profile.Move.Pace
		s.SpreadScale = profile.Path.SpreadMultiplier
	}

	var callScroll *ScrollOptions
	if call != nil {
		set(&s.PaddingPercentage, call.PaddingPercentage)
		set(&s.MoveDelay, call.MoveDelay)
		set(&s.RandomizeMoveDelay, call.RandomizeMoveDelay)
		set(&s.MaxTries, call.MaxTries)
		set(&s.OvershootThreshold, call.OvershootThreshold)
		set(&s.MoveSpeed, call.MoveSpeed)
		set(&s.UseTimestamps, call.UseTimestamps)
		set(&s.WaitForSelector, call.WaitForSelector)
		s.destination = call.Destination
		s.spreadOverride = call.SpreadOverride
		callScroll = call.Scroll
	}
	if s.MaxTries < 1 {
		s.MaxTries = 1
	}
	s.scroll = resolveScroll(base.Scroll, profile, callScroll)
	return s
}

func resolveMoveTo(base Defaults, profile *persona.CompiledOptions, call *MoveToOptions) moveSettings {
	s := resolveMove(base, profile, nil)
	if call != nil {
		set(&s.MoveDelay, call.MoveDelay)
		set(&s.RandomizeMoveDelay, call.RandomizeMoveDelay)
		set(&s.MoveSpeed, call.MoveSpeed)
		set(&s.UseTimestamps, call.UseTimestamps)
		s.spreadOverride = call.SpreadOverride
	}
	return s
}

func resolveClick(base Defaults, profile *persona.CompiledOptions, call *ClickOptions) ClickDefaults {
	s := base.Click
	if profile != nil {
		s.Hesitate = profile.Click.Hesitate
		s.WaitForClick = profile.Click.WaitForClick
		s.MoveDelay = profile.Click.MoveDelay
		s.RandomizeMoveDelay = profile.Click.RandomizeMoveDelay
		s.DoubleClickInterval = profile.Click.DoubleClickInterval
		s.DoubleClickDrift = profile.Click.DoubleClickDrift
		s.MicroJitter = profile.Click.MicroJitter
	}
	if call != nil {
		set(&s.Hesitate, call.Hesitate)
		set(&s.WaitForClick, call.WaitForClick)
		set(&s.MoveDelay, call.MoveDelay)
		set(&s.RandomizeMoveDelay, call.RandomizeMoveDelay)
		set(&s.ClickCount, call.ClickCount)
		set(&s.Button, call.Button)
		set(&s.DoubleClickInterval, call.DoubleClickInterval)
		set(&s.DoubleClickDrift, call.DoubleClickDrift)
		set(&s.MicroJitter, call.MicroJitter)
	}
	if s.ClickCount < 1 {
		s.ClickCount = 1
	}
	return s
}

func resolveWander(base Defaults, call *WanderOptions) WanderDefaults {
	s := base.Wander
	if call != nil {
		set(&s.MoveDelay, call.MoveDelay)
		set(&s.RandomizeMoveDelay, call.RandomizeMoveDelay)
		set(&s.MoveSpeed, call.MoveSpeed)
	}
	return s
}
