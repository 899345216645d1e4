package rt433

import (
	"context"
	"fmt"
	log "github.com/sirupsen/logrus"
	"math/rand"
	"sort"
	"time"
)

type simPilot struct {
	node  int
	laps  int
	total time.Duration
	last  time.Duration
}

// raceSim keeps the standings of a made up race.
type raceSim struct {
	pilots []*simPilot
}

func newRaceSim(pilots int) *raceSim {
	s := &raceSim{}
	for i := 0; i < pilots; i++ {
		s.pilots = append(s.pilots, &simPilot{node: i})
	}
	return s
}

func (s *raceSim) ranked() []*simPilot {
	ranked := make([]*simPilot, len(s.pilots))
	copy(ranked, s.pilots)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].laps != ranked[j].laps {
			return ranked[i].laps > ranked[j].laps
		}
		return ranked[i].total < ranked[j].total
	})
	return ranked
}

func (s *raceSim) leaderLaps() int {
	laps := 0
	for _, p := range s.pilots {
		if p.laps > laps {
			laps = p.laps
		}
	}
	return laps
}

// lap records a lap for node and returns the event the host would raise.
func (s *raceSim) lap(node int, lapTime time.Duration) LapEvent {
	p := s.pilots[node]
	p.laps++
	p.last = lapTime
	p.total += lapTime

	ev := LapEvent{
		NodeIndex:    &node,
		WinCondition: WinMostLaps,
	}
	ranked := s.ranked()
	for i, rp := range ranked {
		row := ResultRow{
			Node:   rp.node,
			Laps:   rp.laps,
			Starts: 1,
		}
		if rp.laps > 0 {
			row.LastLap = formatLapTime(rp.last)
		}
		ev.Results.ByRaceTime = append(ev.Results.ByRaceTime, row)
		if rp.node == node {
			ev.Gap.Position = i + 1
			if i > 0 {
				split := p.total - ranked[i-1].total
				if split < 0 {
					split = -split
				}
				ev.Gap.SplitTime = int64(split / time.Millisecond)
			}
		}
	}
	return ev
}

func formatLapTime(d time.Duration) string {
	ms := int64(d / time.Millisecond)
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}

func wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// RunTestMode races the profile's pilots against each other over and over
// until ctx is done, feeding the transponder the events a race would.
func RunTestMode(ctx context.Context, tp *Transponder, laps int, interval time.Duration) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		if err := tp.OnRaceStage(); err != nil {
			log.WithField("err", err).Error("test mode: unable to stage race")
			return
		}
		pilots := tp.Channels().Len()
		if pilots == 0 {
			log.Warn("test mode: profile has no pilots")
			return
		}
		if !wait(ctx, 3*interval) {
			return
		}
		tp.OnRaceStart()

		sim := newRaceSim(pilots)
		for sim.leaderLaps() < laps {
			if !wait(ctx, interval) {
				return
			}
			lapTime := 20*time.Second + time.Duration(rnd.Int63n(int64(15*time.Second)))
			if err := tp.OnRaceLapRecorded(sim.lap(rnd.Intn(pilots), lapTime)); err != nil {
				log.WithField("err", err).Warn("test mode: lap not sent")
			}
		}

		tp.OnRaceFinish()
		if !wait(ctx, 3*interval) {
			return
		}
		tp.OnRaceStop()
		if !wait(ctx, 3*interval) {
			return
		}
	}
}
