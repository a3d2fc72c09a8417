// internal/cursor/cursor.go
package cursor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/ghostcursor/api/schemas"
	"github.com/xkilldash9x/ghostcursor/internal/geometry"
	"github.com/xkilldash9x/ghostcursor/internal/persona"
	"github.com/xkilldash9x/ghostcursor/internal/sampler"
	"github.com/xkilldash9x/ghostcursor/internal/trajectory"
	"go.uber.org/zap"
)

// TargetState is a phase of the targeting state machine.
type TargetState int

const (
	StateIdle TargetState = iota
	StateTargeting
	StateOvershooting
	StateArrived
	StateFailed
)

func (s TargetState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTargeting:
		return "targeting"
	case StateOvershooting:
		return "overshooting"
	case StateArrived:
		return "arrived"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("TargetState(%d)", int(s))
}

// State is a snapshot of the cursor. Phase and Attempt describe the targeting
// run of the current or most recent action; an action that targets no element
// leaves them at StateIdle and zero.
type State struct {
	Location geometry.Vector2D `json:"location"`
	Moving   bool              `json:"moving"`
	Phase    TargetState       `json:"phase"`
	Attempt  int               `json:"attempt"`
}

// pathGenerator produces trajectories; *trajectory.Generator implements it.
type pathGenerator interface {
	Path(start, end geometry.Vector2D, opts trajectory.Options) []geometry.TimedPoint
	PathToBox(start, end geometry.Vector2D, box geometry.BoundingBox, opts trajectory.Options) []geometry.TimedPoint
}

// Cursor moves a single pointer through a Driver in a humanlike way.
//
// Directed actions (moves, clicks, scrolls) are serialized: public methods
// take actionMu, internal ones assume it is held. The background wanderer
// never takes actionMu; it yields whenever the moving counter is non-zero.
type Cursor struct {
	actionMu sync.Mutex

	// mu guards the fields below it.
	mu           sync.Mutex
	location     geometry.Vector2D
	pressed      schemas.MouseButton
	phase        TargetState
	attempt      int
	startPending bool
	wander       *wanderTask

	moving atomic.Int32

	driver    Driver
	logger    *zap.Logger
	rng       sampler.Source
	paths     pathGenerator
	persona   *persona.Persona
	defaults  Defaults
	sessionID string
	clock     func() time.Time
	startSet  bool
}

// Option configures a Cursor.
type Option func(*Cursor) error

// WithSource sets the randomness source for every sampled value.
func WithSource(src sampler.Source) Option {
	return func(c *Cursor) error {
		if src == nil {
			return newError(ErrCodeConfiguration, "new", fmt.Errorf("nil randomness source"))
		}
		c.rng = src
		return nil
	}
}

// WithSeed makes the cursor reproducible by seeding it from sessionID.
func WithSeed(sessionID string) Option {
	return func(c *Cursor) error {
		c.sessionID = sessionID
		c.rng = sampler.FromSession(sessionID)
		return nil
	}
}

// WithPersona parameterizes every action by p. The persona is copied.
func WithPersona(p *persona.Persona) Option {
	return func(c *Cursor) error {
		if p == nil {
			c.persona = nil
			return nil
		}
		if err := p.Validate(); err != nil {
			return newError(ErrCodeConfiguration, "new", err)
		}
		c.persona = p.Clone()
		return nil
	}
}

// WithPersonaID looks id up in catalog, or in the built-in catalog when
// catalog is nil.
func WithPersonaID(catalog *persona.Catalog, id string) Option {
	return func(c *Cursor) error {
		if catalog == nil {
			catalog = persona.Default()
		}
		p, err := catalog.Get(id)
		if err != nil {
			return newError(ErrCodeConfiguration, "new", err)
		}
		c.persona = p
		return nil
	}
}

// WithDefaults replaces the lowest layer of option resolution.
func WithDefaults(d Defaults) Option {
	return func(c *Cursor) error {
		if err := d.Validate(); err != nil {
			return newError(ErrCodeConfiguration, "new", err)
		}
		c.defaults = d
		return nil
	}
}

// WithStart places the cursor at p instead of the origin.
func WithStart(p geometry.Vector2D) Option {
	return func(c *Cursor) error {
		c.location = p.ClampPositive()
		c.startSet = true
		return nil
	}
}

// WithClock replaces the clock used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Cursor) error {
		if now != nil {
			c.clock = now
		}
		return nil
	}
}

// New creates a cursor acting through driver. Without WithSeed or WithSource
// the cursor draws from system entropy.
func New(driver Driver, logger *zap.Logger, opts ...Option) (*Cursor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cursor{
		driver:   driver,
		defaults: NewDefaults(),
		clock:    time.Now,
		phase:    StateIdle,
		pressed:  schemas.ButtonNone,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	if c.rng == nil {
		c.rng = sampler.NewEntropySource()
	}
	// The wanderer and directed actions share the source.
	c.rng = sampler.Locked(c.rng)
	c.paths = trajectory.New(c.rng).WithClock(c.clock)

	if c.persona != nil && c.persona.InitialPositionBias != nil && !c.startSet {
		c.startPending = true
	}

	fields := []zap.Field{zap.String("session_id", c.sessionID)}
	if c.persona != nil {
		fields = append(fields, zap.String("persona", c.persona.ID))
	}
	c.logger = logger.Named("cursor").With(fields...)
	return c, nil
}

// SessionID identifies the cursor in logs; with WithSeed it is the seed.
func (c *Cursor) SessionID() string {
	return c.sessionID
}

// Location returns the most recently dispatched pointer position.
func (c *Cursor) Location() geometry.Vector2D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// State returns a snapshot of the cursor.
func (c *Cursor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Location: c.location,
		Moving:   c.moving.Load() > 0,
		Phase:    c.phase,
		Attempt:  c.attempt,
	}
}

// Close stops background wandering.
func (c *Cursor) Close() error {
	c.StopWandering()
	return nil
}

func (c *Cursor) setLocation(p geometry.Vector2D) {
	c.mu.Lock()
	c.location = p
	c.mu.Unlock()
}

func (c *Cursor) buttons() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pressed.Bitfield()
}

// beginAction marks a directed action in progress so the wanderer yields.
// The counter nests, so a click wrapping a move stays marked until the
// outer action ends. The outermost begin resets the targeting phase.
func (c *Cursor) beginAction() {
	if c.moving.Add(1) == 1 {
		c.mu.Lock()
		c.phase = StateIdle
		c.attempt = 0
		c.mu.Unlock()
	}
}

func (c *Cursor) endAction() {
	c.moving.Add(-1)
}

func (c *Cursor) transition(to TargetState, attempt int) {
	c.mu.Lock()
	from := c.phase
	c.phase = to
	c.attempt = attempt
	c.mu.Unlock()
	c.logger.Debug("Targeting state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("attempt", attempt))
}

// ensureStart places a persona-biased cursor inside the viewport the first
// time it is used.
func (c *Cursor) ensureStart(ctx context.Context) {
	c.mu.Lock()
	pending := c.startPending
	c.startPending = false
	c.mu.Unlock()
	if !pending {
		return
	}

	m, err := c.driver.LayoutMetrics(ctx)
	if err != nil {
		c.logger.Debug("Could not read viewport for initial position", zap.Error(err))
		return
	}
	if p, ok := c.persona.StartPoint(c.rng, m.Viewport()); ok {
		c.setLocation(p)
		c.logger.Debug("Initial position sampled", zap.Float64("x", p.X), zap.Float64("y", p.Y))
	}
}

// pause sleeps for d, scaled by a uniform draw when randomize is set.
func (c *Cursor) pause(ctx context.Context, d time.Duration, randomize bool) error {
	if randomize {
		d = time.Duration(float64(d) * c.rng.Float64())
	}
	if d <= 0 {
		return nil
	}
	return c.driver.Sleep(ctx, d)
}

func (c *Cursor) trajectoryOptions(s moveSettings) trajectory.Options {
	return trajectory.Options{
		SpreadOverride: s.spreadOverride,
		SpreadScale:    s.SpreadScale,
		MoveSpeed:      s.MoveSpeed,
		UseTimestamps:  s.UseTimestamps,
	}
}
