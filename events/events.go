package events

import (
	"encoding/json"
	"github.com/jd3nn1s/rt433"
	"github.com/pkg/errors"
	"strings"
)

const (
	EventRaceStage   = "race_stage"
	EventRaceStart   = "race_start"
	EventRaceFinish  = "race_finish"
	EventRaceStop    = "race_stop"
	EventLapRecorded = "lap_recorded"
)

var ErrUnknownEvent = errors.New("unknown event")

// Handler is implemented by rt433.Transponder.
type Handler interface {
	OnRaceStage() error
	OnRaceStart()
	OnRaceFinish()
	OnRaceStop()
	OnRaceLapRecorded(ev rt433.LapEvent) error
}

// Envelope is one race event as published by the timing host.
type Envelope struct {
	Event string          `json:"event"`
	Lap   *rt433.LapEvent `json:"lap,omitempty"`
}

func Decode(data []byte) (Envelope, error) {
	env := Envelope{}
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, errors.Wrap(err, "unable to decode event")
	}
	env.Event = strings.ToLower(strings.TrimSpace(env.Event))
	return env, nil
}

func Dispatch(h Handler, env Envelope) error {
	switch env.Event {
	case EventRaceStage:
		return h.OnRaceStage()
	case EventRaceStart:
		h.OnRaceStart()
	case EventRaceFinish:
		h.OnRaceFinish()
	case EventRaceStop:
		h.OnRaceStop()
	case EventLapRecorded:
		ev := rt433.LapEvent{}
		if env.Lap != nil {
			ev = *env.Lap
		}
		return h.OnRaceLapRecorded(ev)
	default:
		return errors.Wrapf(ErrUnknownEvent, "%q", env.Event)
	}
	return nil
}

func HandlePayload(h Handler, data []byte) error {
	env, err := Decode(data)
	if err != nil {
		return err
	}
	return Dispatch(h, env)
}
