package rt433

import (
	"github.com/jd3nn1s/rt433/channel"
	"github.com/jd3nn1s/rt433/protocol"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"sync"
)

// Course-wide messages, centred in the six character display.
const (
	msgArm    = " ARM  "
	msgGo     = " GO!  "
	msgFinish = "FINISH"
	msgStop   = " STOP "
)

var ErrMissingNode = errors.New("lap event without node index")

type Options struct {
	// Retries is the number of copies queued per message and per
	// course-wide frame.
	Retries int
	// LapStatusSweeps is how many times the per-channel status frames are
	// queued after a lap. Each sweep queues one copy per channel.
	LapStatusSweeps int
}

// Transponder turns race events into frames on the delivery queues. It owns
// the channel map, one status record per node and the message sequencer.
type Transponder struct {
	queues  *Queues
	profile ProfileSource
	opts    Options

	seq   Sequencer
	msgMu sync.Mutex

	mu       sync.Mutex
	channels channel.Map
	records  []protocol.StatusRecord
}

func NewTransponder(queues *Queues, profile ProfileSource, opts Options) *Transponder {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.LapStatusSweeps <= 0 {
		opts.LapStatusSweeps = 1
	}
	return &Transponder{
		queues:  queues,
		profile: profile,
		opts:    opts,
	}
}

func (tp *Transponder) Queues() *Queues {
	return tp.queues
}

// Channels returns the channel map built at the last stage.
func (tp *Transponder) Channels() channel.Map {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.channels
}

// Records returns a copy of the status records, in node order.
func (tp *Transponder) Records() []protocol.StatusRecord {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	out := make([]protocol.StatusRecord, len(tp.records))
	copy(out, tp.records)
	return out
}

// OnRaceStage arms every receiver and rebuilds the channel map and the
// zeroed status records from the active profile.
func (tp *Transponder) OnRaceStage() error {
	log.Debug("race staged")
	tp.sendMessage(msgArm, channel.Broadcast)

	channels, err := tp.profile.Channels()
	if err != nil {
		log.WithField("err", err).Error("unable to load profile channels")
		channels = nil
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.channels = channel.NewMap(channels)
	tp.records = make([]protocol.StatusRecord, len(channels))
	for node, c := range channels {
		tp.records[node].Channel = c.Index()
		log.WithField("node", node).
			WithField("channel", c).
			Debug("profile channel")
	}
	return errors.Wrap(err, "unable to build channel map")
}

func (tp *Transponder) OnRaceStart() {
	log.Info("race started")
	tp.sendMessage(msgGo, channel.Broadcast)
}

func (tp *Transponder) OnRaceFinish() {
	log.Info("race finished")
	tp.sendMessage(msgFinish, channel.Broadcast)
}

func (tp *Transponder) OnRaceStop() {
	log.Info("race stopped")
	tp.sendMessage(msgStop, channel.Broadcast)
	reset := protocol.EncodeReset()
	log.WithField("frame", reset).Debug("enqueue reset")
	tp.queues.PushStatus(reset, 1)
}

// OnRaceLapRecorded refreshes every node's status from the ranked results
// and queues them, then sends the event pilot its gap to the pilot ahead
// unless they lead.
func (tp *Transponder) OnRaceLapRecorded(ev LapEvent) error {
	if ev.NodeIndex == nil {
		log.Error("unable to send results: lap event has no node index")
		return ErrMissingNode
	}
	node := *ev.NodeIndex
	rows := ev.Results.Ranked(ev.WinCondition)
	log.WithField("node", node).
		WithField("winCondition", ev.WinCondition).
		Debug("lap recorded")

	tp.mu.Lock()
	for i, row := range rows {
		if row.Node < 0 || row.Node >= len(tp.records) {
			log.WithField("node", row.Node).Warn("result for node outside the profile")
			continue
		}
		position := row.Position
		if position <= 0 {
			position = i + 1
		}
		r := &tp.records[row.Node]
		r.Position = clamp(position, protocol.MaxPosition)
		r.Lap = clamp(row.Laps+1, protocol.MaxLap)
		r.Started = row.Starts > 0
		if row.LastLap != "" {
			secs, hunds, err := parseLapTime(row.LastLap)
			if err != nil {
				log.WithField("err", err).WithField("node", row.Node).Warn("ignoring last lap")
			} else {
				r.Seconds = clamp(secs, protocol.MaxSeconds)
				r.Hundredths = clamp(hunds, protocol.MaxHundredths)
			}
		}
		log.WithField("node", row.Node).Debugf("status %v", *r)
	}
	frames := make([]protocol.Frame, len(tp.records))
	for i, r := range tp.records {
		frames[i] = protocol.EncodeStatus(r)
	}
	c, ok := tp.channels.Lookup(node)
	tp.mu.Unlock()

	for sweep := 0; sweep < tp.opts.LapStatusSweeps; sweep++ {
		for _, f := range frames {
			log.WithField("frame", f).Debug("enqueue status")
			tp.queues.PushStatus(f, 1)
		}
	}

	if ev.Gap.Position <= 1 {
		log.WithField("node", node).Debug("leading, no delta")
		return nil
	}
	if !ok {
		log.WithField("node", node).Warn("no channel for node, delta not sent")
		return nil
	}
	tp.sendMessage(formatGap(ev.Gap.SplitTime), c)
	return nil
}

// sendMessage renders text with the next sequence id and queues the
// configured number of copies. Queue order follows sequence order.
func (tp *Transponder) sendMessage(text string, c channel.Channel) {
	tp.msgMu.Lock()
	defer tp.msgMu.Unlock()
	m := protocol.TextMessage{
		Text:    text,
		Channel: c.Index(),
		Seq:     tp.seq.Next(),
	}
	f := protocol.EncodeMessage(m)
	log.WithField("channel", c).
		WithField("seq", m.Seq).
		WithField("frame", f).
		Debugf("enqueue message %q", text)
	tp.queues.PushMessage(f, tp.opts.Retries)
}

func clamp(v int, limit int) uint8 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return uint8(limit)
	}
	return uint8(v)
}
