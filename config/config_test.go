package config

import (
	"bytes"
	"github.com/jd3nn1s/rt433/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const fullConfig = `
log_level = "debug"
log_file = "/var/log/rt433.log"
state_file = "/var/lib/rt433/state.toml"

[serial]
port = "/dev/ttyUSB0"
baud = 19200
tick_interval = "100ms"
max_write_failures = 0
reconnect_delay = "5s"

[delivery]
retries = 3
lap_status_sweeps = 2

[profile]
bands = ["R", "R", "F"]
channels = [1, 8, 4]

[mirror]
server = "127.0.0.1"
port = 5433

[mqtt]
url = "mqtt://localhost:1883/rotorhazard"
client_id = "rt433"

[testmode]
laps = 3
interval = "500ms"
`

func TestLoadFromReader(t *testing.T) {
	c, err := LoadFromReader(bytes.NewBufferString(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "/var/log/rt433.log", c.LogFile)
	assert.Equal(t, "/var/lib/rt433/state.toml", c.StateFile)
	assert.Equal(t, "/dev/ttyUSB0", c.Serial.Port)
	assert.Equal(t, 19200, c.Serial.Baud)
	assert.Equal(t, 100*time.Millisecond, c.Serial.TickInterval.Duration)
	assert.Equal(t, 0, c.Serial.MaxWriteFailures, "explicit zero is kept")
	assert.Equal(t, 5*time.Second, c.Serial.ReconnectDelay.Duration)
	assert.Equal(t, 3, c.Delivery.Retries)
	assert.Equal(t, 2, c.Delivery.LapStatusSweeps)
	assert.Equal(t, "127.0.0.1", c.Mirror.Server)
	assert.Equal(t, 5433, c.Mirror.Port)
	assert.Equal(t, "mqtt://localhost:1883/rotorhazard", c.MQTT.URL)
	assert.Equal(t, "rt433", c.MQTT.ClientID)
	assert.Equal(t, 3, c.TestMode.Laps)
	assert.Equal(t, 500*time.Millisecond, c.TestMode.Interval.Duration)

	channels, err := c.Profile.Channels()
	assert.NoError(t, err)
	assert.Equal(t, []channel.Channel{channel.R1, channel.R8, channel.F4}, channels)

	tc := c.TransportConfig()
	assert.Equal(t, "/dev/ttyUSB0", tc.PortName)
	assert.Equal(t, 19200, tc.BaudRate)
	assert.Equal(t, 100*time.Millisecond, tc.TickInterval)

	opts := c.Options()
	assert.Equal(t, 3, opts.Retries)
	assert.Equal(t, 2, opts.LapStatusSweeps)
}

func TestLoadDefaults(t *testing.T) {
	c, err := LoadFromReader(bytes.NewBufferString(""))
	require.NoError(t, err)

	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "rt433.state.toml", c.StateFile)
	assert.Equal(t, "", c.Serial.Port)
	assert.Equal(t, 9600, c.Serial.Baud)
	assert.Equal(t, 50*time.Millisecond, c.Serial.TickInterval.Duration)
	assert.Equal(t, 5, c.Serial.MaxWriteFailures)
	assert.Equal(t, time.Second, c.Serial.ReconnectDelay.Duration)
	assert.Equal(t, 2, c.Delivery.Retries)
	assert.Equal(t, 1, c.Delivery.LapStatusSweeps)
	assert.False(t, c.Mirror.Enabled())
	assert.Equal(t, "", c.MQTT.URL)

	channels, err := c.Profile.Channels()
	assert.NoError(t, err)
	assert.Empty(t, channels)
}

func TestLoadErrors(t *testing.T) {
	for _, cfg := range []string{
		`log_level = `,
		`unknown_key = 1`,
		"[serial]\ntick_interval = \"fast\"",
		"[profile]\nbands = [\"R\"]\nchannels = [1, 2]",
		"[profile]\nbands = [\"X\"]\nchannels = [1]",
	} {
		_, err := LoadFromReader(bytes.NewBufferString(cfg))
		assert.Error(t, err, cfg)
	}
}

func TestLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "rt433")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "rt433.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte(fullConfig), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", c.Serial.Port)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	p, err := Resolve("/etc/rt433.toml")
	assert.NoError(t, err)
	assert.Equal(t, "/etc/rt433.toml", p)

	p, err = Resolve("rt433.toml")
	assert.NoError(t, err)
	assert.True(t, filepath.IsAbs(p))
	assert.Equal(t, "rt433.toml", filepath.Base(p))
}

func TestState(t *testing.T) {
	dir, err := ioutil.TempDir("", "rt433")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "state.toml")

	state, err := LoadState(path)
	assert.NoError(t, err)
	assert.Equal(t, State{}, state)

	assert.NoError(t, SaveState(path, State{Port: "/dev/ttyUSB1"}))
	state, err = LoadState(path)
	assert.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", state.Port)

	require.NoError(t, ioutil.WriteFile(path, []byte("port = "), 0644))
	_, err = LoadState(path)
	assert.Error(t, err)

	assert.Error(t, SaveState(filepath.Join(dir, "missing", "state.toml"), State{}))
}
