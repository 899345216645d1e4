package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"os"
)

// State holds what the daemon learns at runtime and keeps across restarts.
type State struct {
	Port string `toml:"port"`
}

// LoadState returns an empty state when the file does not exist yet.
func LoadState(path string) (State, error) {
	state := State{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return state, nil
	}
	if _, err := toml.DecodeFile(path, &state); err != nil {
		return State{}, errors.Wrapf(err, "unable to load state from %s", path)
	}
	return state, nil
}

func SaveState(path string, state State) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	if err := toml.NewEncoder(file).Encode(state); err != nil {
		file.Close()
		return errors.Wrapf(err, "unable to write state to %s", path)
	}
	return file.Close()
}
