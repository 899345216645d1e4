package main

import (
	"github.com/jd3nn1s/rt433/config"
	"github.com/jd3nn1s/rt433/serialport"
	log "github.com/sirupsen/logrus"
)

// to allow testing
var discoverPort = serialport.Discover

// resolvePort prefers the configured port, then the one persisted by an
// earlier run, then discovers one and persists it.
func resolvePort(cfg *config.Config) (string, error) {
	if cfg.Serial.Port != "" {
		log.WithField("port", cfg.Serial.Port).Info("using configured port")
		return cfg.Serial.Port, nil
	}

	statePath, err := config.Resolve(cfg.StateFile)
	if err != nil {
		return "", err
	}
	state, err := config.LoadState(statePath)
	if err != nil {
		log.WithField("err", err).Warn("ignoring unreadable state file")
	}
	if state.Port != "" {
		log.WithField("port", state.Port).Info("using port from state file")
		return state.Port, nil
	}

	log.Warn("no serial port configured, discovering...")
	name, err := discoverPort()
	if err != nil {
		return "", err
	}
	log.WithField("port", name).Warn("discovered serial port")
	state.Port = name
	if err := config.SaveState(statePath, state); err != nil {
		log.WithField("err", err).Warn("unable to persist discovered port")
	}
	return name, nil
}
