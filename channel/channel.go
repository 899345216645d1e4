package channel

import (
	"fmt"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// Channel identifies a receiver address on the course. Only the values
// declared in this package exist: the ten pilot channels and Broadcast.
type Channel struct {
	idx uint8
}

var (
	R1 = Channel{0}
	R2 = Channel{1}
	R3 = Channel{2}
	R4 = Channel{3}
	R5 = Channel{4}
	R6 = Channel{5}
	R7 = Channel{6}
	R8 = Channel{7}
	F2 = Channel{8}
	F4 = Channel{9}

	// Broadcast addresses every receiver (ARM/GO/FINISH/STOP).
	Broadcast = Channel{0xF}
)

var ErrUnknownLabel = errors.New("unknown band/channel label")

var labels = map[string]Channel{
	"R1": R1,
	"R2": R2,
	"R3": R3,
	"R4": R4,
	"R5": R5,
	"R6": R6,
	"R7": R7,
	"R8": R8,
	"F2": F2,
	"F4": F4,
}

func Parse(label string) (Channel, error) {
	c, ok := labels[strings.ToUpper(strings.TrimSpace(label))]
	if !ok {
		return Channel{}, errors.Wrapf(ErrUnknownLabel, "%q", label)
	}
	return c, nil
}

// FromBandChannel maps the split band letter / channel number form used by
// frequency profiles.
func FromBandChannel(band string, ch int) (Channel, error) {
	return Parse(strings.TrimSpace(band) + strconv.Itoa(ch))
}

func (c Channel) Index() uint8 {
	return c.idx
}

func (c Channel) IsBroadcast() bool {
	return c == Broadcast
}

func (c Channel) String() string {
	if c.IsBroadcast() {
		return "BROADCAST"
	}
	for label, v := range labels {
		if v == c {
			return label
		}
	}
	return fmt.Sprintf("channel(%d)", c.idx)
}

// Map assigns a channel to every node (result row index) of the active
// profile. It is rebuilt whenever a race is staged.
type Map struct {
	channels []Channel
}

func NewMap(channels []Channel) Map {
	m := Map{channels: make([]Channel, len(channels))}
	copy(m.channels, channels)
	return m
}

func (m Map) Lookup(node int) (Channel, bool) {
	if node < 0 || node >= len(m.channels) {
		return Channel{}, false
	}
	return m.channels[node], true
}

func (m Map) Len() int {
	return len(m.channels)
}

func (m Map) Channels() []Channel {
	out := make([]Channel, len(m.channels))
	copy(out, m.channels)
	return out
}
