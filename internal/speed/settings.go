package speed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSettings is returned when a payload is not exactly the three
// numeric LED channels.
var ErrInvalidSettings = errors.New("invalid speed settings")

// Settings holds the speed of each of the board's three LEDs. The values
// carry no unit or range here; the board decides what it accepts.
type Settings struct {
	LED1 float64 `json:"led1"`
	LED2 float64 `json:"led2"`
	LED3 float64 `json:"led3"`
}

// UnmarshalJSON decodes a settings object, rejecting payloads that miss a
// channel, carry an unknown key or hold anything but numbers.
func (s *Settings) UnmarshalJSON(b []byte) error {
	var raw struct {
		LED1 *float64 `json:"led1"`
		LED2 *float64 `json:"led2"`
		LED3 *float64 `json:"led3"`
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	var missing []string
	if raw.LED1 == nil {
		missing = append(missing, "led1")
	}
	if raw.LED2 == nil {
		missing = append(missing, "led2")
	}
	if raw.LED3 == nil {
		missing = append(missing, "led3")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidSettings, strings.Join(missing, ", "))
	}

	*s = Settings{LED1: *raw.LED1, LED2: *raw.LED2, LED3: *raw.LED3}
	return nil
}

// Channels returns the values in LED order.
func (s Settings) Channels() [3]float64 {
	return [3]float64{s.LED1, s.LED2, s.LED3}
}

// FromChannels is the inverse of Channels.
func FromChannels(c [3]float64) Settings {
	return Settings{LED1: c[0], LED2: c[1], LED3: c[2]}
}
