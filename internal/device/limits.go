package device

import (
	"fmt"
	"math"

	"github.com/dvcrn/ledspeed/internal/env"
	"github.com/dvcrn/ledspeed/internal/speed"
)

// Limits bounds every channel the board accepts.
type Limits struct {
	Min float64
	Max float64
}

// DefaultLimits matches the firmware: a half period of up to ten seconds.
var DefaultLimits = Limits{Min: 0, Max: 10000}

// MaxSpeedLimit is the largest Max a Limits may carry: one day, in
// milliseconds. Larger half periods would not fit a time.Duration.
const MaxSpeedLimit = 24 * 60 * 60 * 1000

// DefaultSettings is what a board without saved state starts with.
var DefaultSettings = speed.Settings{LED1: 500, LED2: 500, LED3: 500}

// LimitsFromEnv reads LEDSPEED_MIN_SPEED and LEDSPEED_MAX_SPEED.
func LimitsFromEnv() (Limits, error) {
	lo, err := env.GetFloat("LEDSPEED_MIN_SPEED", DefaultLimits.Min)
	if err != nil {
		return Limits{}, err
	}
	hi, err := env.GetFloat("LEDSPEED_MAX_SPEED", DefaultLimits.Max)
	if err != nil {
		return Limits{}, err
	}
	l := Limits{Min: lo, Max: hi}
	return l, l.Validate()
}

// Validate reports whether the range is usable.
func (l Limits) Validate() error {
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) {
		return fmt.Errorf("speed limits must be numbers")
	}
	if l.Min < 0 {
		return fmt.Errorf("minimum speed %v is negative", l.Min)
	}
	if l.Max > MaxSpeedLimit {
		return fmt.Errorf("maximum speed %v exceeds %v", l.Max, MaxSpeedLimit)
	}
	if l.Min > l.Max {
		return fmt.Errorf("minimum speed %v exceeds maximum %v", l.Min, l.Max)
	}
	return nil
}

// Clamp forces each channel of s into the range.
func (l Limits) Clamp(s speed.Settings) speed.Settings {
	c := s.Channels()
	for i, v := range c {
		switch {
		case v < l.Min:
			c[i] = l.Min
		case v > l.Max:
			c[i] = l.Max
		}
	}
	return speed.FromChannels(c)
}
