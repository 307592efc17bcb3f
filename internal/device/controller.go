package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvcrn/ledspeed/internal/logger"
	"github.com/dvcrn/ledspeed/internal/speed"
	"github.com/rs/zerolog"
)

var ledNames = [3]struct{ name, color string }{
	{"led1", "green"},
	{"led2", "yellow"},
	{"led3", "red"},
}

// LEDState is a snapshot of one LED.
type LEDState struct {
	Name     string  `json:"name"`
	Color    string  `json:"color"`
	On       bool    `json:"on"`
	PeriodMS float64 `json:"period_ms"`
	Toggles  uint64  `json:"toggles"`
}

type led struct {
	on      bool
	toggles uint64
	due     time.Time
}

// Controller owns the board's speed settings and blinks the LEDs at them.
// Each channel is a half period in milliseconds; zero keeps the LED off.
type Controller struct {
	mu      sync.RWMutex
	current speed.Settings
	leds    [3]led

	limits Limits
	store  Store
	wake   chan struct{}
	log    *zerolog.Logger
}

// NewController loads the saved settings from store, falling back to
// DefaultSettings, and clamps them to limits.
func NewController(ctx context.Context, store Store, limits Limits) (*Controller, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	initial, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings from %s: %w", store.Name(), err)
	}
	if !ok {
		initial = DefaultSettings
	}

	c := &Controller{
		current: limits.Clamp(initial),
		limits:  limits,
		store:   store,
		wake:    make(chan struct{}, 1),
		log:     logger.Get(),
	}

	c.log.Info().
		Str("store", store.Name()).
		Bool("restored", ok).
		Interface("speeds", c.current).
		Msg("Loaded LED speeds")

	return c, nil
}

// SetLogger replaces the process logger.
func (c *Controller) SetLogger(l *zerolog.Logger) {
	c.log = l
}

// Limits returns the accepted range.
func (c *Controller) Limits() Limits {
	return c.limits
}

// Speeds returns the settings currently in effect.
func (c *Controller) Speeds() speed.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Current returns the settings in effect. When the store is shared, the
// saved settings are reloaded first so writes made elsewhere are seen.
func (c *Controller) Current(ctx context.Context) (speed.Settings, error) {
	if !isShared(c.store) {
		return c.Speeds(), nil
	}

	saved, ok, err := c.store.Load(ctx)
	if err != nil {
		return speed.Settings{}, fmt.Errorf("failed to load settings from %s: %w", c.store.Name(), err)
	}
	if !ok {
		return c.Speeds(), nil
	}
	saved = c.limits.Clamp(saved)

	c.mu.Lock()
	changed := saved != c.current
	if changed {
		c.current = saved
		for i := range c.leds {
			c.leds[i].due = time.Time{}
		}
	}
	c.mu.Unlock()

	if changed {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	return saved, nil
}

// Apply clamps s, saves it and makes it current. The returned settings are
// the values actually applied.
func (c *Controller) Apply(ctx context.Context, s speed.Settings) (speed.Settings, error) {
	applied := c.limits.Clamp(s)

	c.mu.Lock()
	if err := c.store.Save(ctx, applied); err != nil {
		c.mu.Unlock()
		return speed.Settings{}, fmt.Errorf("failed to save settings to %s: %w", c.store.Name(), err)
	}
	c.current = applied
	for i := range c.leds {
		c.leds[i].due = time.Time{}
	}
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}

	if applied != s {
		c.log.Info().Interface("requested", s).Interface("applied", applied).Msg("Clamped LED speeds")
	} else {
		c.log.Info().Interface("applied", applied).Msg("Applied LED speeds")
	}
	return applied, nil
}

// LEDs returns a snapshot of the three LEDs.
func (c *Controller) LEDs() []LEDState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	periods := c.current.Channels()
	states := make([]LEDState, len(c.leds))
	for i, l := range c.leds {
		states[i] = LEDState{
			Name:     ledNames[i].name,
			Color:    ledNames[i].color,
			On:       l.on,
			PeriodMS: periods[i],
			Toggles:  l.toggles,
		}
	}
	return states
}

// Run blinks the LEDs until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		wait, ok := c.tick(time.Now())

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if ok {
			timer.Reset(wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wake:
		case <-timer.C:
		}
	}
}

// tick toggles every LED whose half period has elapsed at now and returns
// how long until the next one is due. ok is false when every LED is held
// off.
func (c *Controller) tick(now time.Time) (wait time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next time.Time
	for i, period := range c.current.Channels() {
		l := &c.leds[i]
		if period <= 0 {
			l.on = false
			l.due = time.Time{}
			continue
		}

		half := time.Duration(period * float64(time.Millisecond))
		if half < time.Millisecond {
			half = time.Millisecond
		}
		switch {
		case l.due.IsZero():
			l.due = now.Add(half)
		case !now.Before(l.due):
			l.on = !l.on
			l.toggles++
			l.due = l.due.Add(half)
			if !l.due.After(now) {
				l.due = now.Add(half)
			}
		}

		if next.IsZero() || l.due.Before(next) {
			next = l.due
		}
	}

	if next.IsZero() {
		return 0, false
	}
	return next.Sub(now), true
}
