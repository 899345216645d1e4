package main

import (
	"github.com/jd3nn1s/rt433/config"
	"github.com/jd3nn1s/rt433/serialport"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func stubDiscover(name string, err error) func() {
	origDiscoverPort := discoverPort
	discoverPort = func() (string, error) {
		return name, err
	}
	return func() {
		discoverPort = origDiscoverPort
	}
}

func TestResolvePortConfigured(t *testing.T) {
	defer stubDiscover("", serialport.ErrNoPort)()
	cfg := &config.Config{}
	cfg.Serial.Port = "/dev/ttyAMA0"
	name, err := resolvePort(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", name)
}

func TestResolvePortDiscoverAndPersist(t *testing.T) {
	dir, err := ioutil.TempDir("", "rt433")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	cfg := &config.Config{StateFile: filepath.Join(dir, "state.toml")}

	restore := stubDiscover("/dev/ttyUSB3", nil)
	name, err := resolvePort(cfg)
	restore()
	assert.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", name)

	// the next run picks it up from the state file without discovering
	defer stubDiscover("", serialport.ErrNoPort)()
	name, err = resolvePort(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", name)
}

func TestResolvePortNone(t *testing.T) {
	dir, err := ioutil.TempDir("", "rt433")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	defer stubDiscover("", serialport.ErrNoPort)()
	_, err = resolvePort(&config.Config{StateFile: filepath.Join(dir, "state.toml")})
	assert.Equal(t, serialport.ErrNoPort, err)
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	assert.NoError(t, setupLogging("debug", ""))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Error(t, setupLogging("chatty", ""))
}
