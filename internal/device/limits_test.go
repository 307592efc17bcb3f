package device

import (
	"math"
	"testing"

	"github.com/dvcrn/ledspeed/internal/speed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	l := Limits{Min: 10, Max: 1000}

	testCases := []struct {
		name     string
		input    speed.Settings
		expected speed.Settings
	}{
		{
			name:     "in range",
			input:    speed.Settings{LED1: 10, LED2: 500, LED3: 1000},
			expected: speed.Settings{LED1: 10, LED2: 500, LED3: 1000},
		},
		{
			name:     "below and above",
			input:    speed.Settings{LED1: -5, LED2: 5, LED3: 5000},
			expected: speed.Settings{LED1: 10, LED2: 10, LED3: 1000},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, l.Clamp(tc.input))
		})
	}
}

func TestLimitsValidate(t *testing.T) {
	assert.NoError(t, DefaultLimits.Validate())
	assert.Error(t, Limits{Min: -1, Max: 10}.Validate())
	assert.Error(t, Limits{Min: 20, Max: 10}.Validate())
	assert.NoError(t, Limits{Min: 0, Max: MaxSpeedLimit}.Validate())
	assert.Error(t, Limits{Min: 0, Max: MaxSpeedLimit + 1}.Validate())
	assert.Error(t, Limits{Min: 0, Max: 1e13}.Validate())
	assert.Error(t, Limits{Min: 0, Max: math.NaN()}.Validate())
}

func TestLimitsFromEnv(t *testing.T) {
	t.Setenv("LEDSPEED_MIN_SPEED", "50")
	t.Setenv("LEDSPEED_MAX_SPEED", "2000")

	l, err := LimitsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Limits{Min: 50, Max: 2000}, l)

	t.Setenv("LEDSPEED_MAX_SPEED", "10")
	_, err = LimitsFromEnv()
	assert.Error(t, err)

	t.Setenv("LEDSPEED_MAX_SPEED", "1e13")
	_, err = LimitsFromEnv()
	assert.Error(t, err)
}
