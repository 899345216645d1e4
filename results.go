package rt433

import (
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

type WinCondition int

const (
	WinNone WinCondition = iota
	WinMostLaps
	WinFirstToLapX
	WinFastestLap
	WinFastestConsecutive
)

var winConditionNames = map[WinCondition]string{
	WinNone:               "none",
	WinMostLaps:           "most_laps",
	WinFirstToLapX:        "first_to_lap_x",
	WinFastestLap:         "fastest_lap",
	WinFastestConsecutive: "fastest_3_consecutive",
}

func (wc WinCondition) String() string {
	if name, ok := winConditionNames[wc]; ok {
		return name
	}
	return fmt.Sprintf("WinCondition(%d)", int(wc))
}

func (wc *WinCondition) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if s == "" {
		*wc = WinNone
		return nil
	}
	for k, name := range winConditionNames {
		if name == s {
			*wc = k
			return nil
		}
	}
	return errors.Errorf("unknown win condition %q", s)
}

func (wc WinCondition) MarshalText() ([]byte, error) {
	return []byte(wc.String()), nil
}

// ResultRow is one pilot's line in a ranked result set.
type ResultRow struct {
	Node   int `json:"node"`
	Laps   int `json:"laps"`
	Starts int `json:"starts"`
	// LastLap is formatted "M:SS.mmm", or empty before the first lap.
	LastLap string `json:"last_lap"`
	// Position is the rank; zero means the row's place in its result set.
	Position int `json:"position,omitempty"`
}

type Results struct {
	ByRaceTime     []ResultRow `json:"by_race_time"`
	ByFastestLap   []ResultRow `json:"by_fastest_lap"`
	ByConsecutives []ResultRow `json:"by_consecutives"`
}

// Ranked returns the result set the win condition orders pilots by.
func (r Results) Ranked(wc WinCondition) []ResultRow {
	switch wc {
	case WinFastestConsecutive:
		return r.ByConsecutives
	case WinFastestLap:
		return r.ByFastestLap
	default:
		return r.ByRaceTime
	}
}

// GapInfo compares the event pilot with the pilot ranked just ahead.
type GapInfo struct {
	Position  int   `json:"position"`
	SplitTime int64 `json:"split_time_ms"`
}

type LapEvent struct {
	NodeIndex    *int         `json:"node_index"`
	WinCondition WinCondition `json:"win_condition"`
	Results      Results      `json:"results"`
	Gap          GapInfo      `json:"gap"`
}

// parseLapTime converts "M:SS.mmm" into whole seconds and hundredths.
func parseLapTime(s string) (seconds int, hundredths int, err error) {
	s = strings.TrimSpace(s)
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	for _, part := range strings.Split(whole, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, 0, errors.Errorf("invalid lap time %q", s)
		}
		seconds = seconds*60 + n
	}
	if frac != "" {
		// milliseconds, however many digits were given
		frac = (frac + "000")[:3]
		ms, err := strconv.Atoi(frac)
		if err != nil || ms < 0 {
			return 0, 0, errors.Errorf("invalid lap time %q", s)
		}
		hundredths = ms / 10
	}
	return seconds, hundredths, nil
}

// formatGap renders a split as " SS.HH".
func formatGap(splitMillis int64) string {
	if splitMillis < 0 {
		splitMillis = 0
	}
	return fmt.Sprintf(" %02d.%02d", splitMillis/1000, splitMillis/10%100)
}
