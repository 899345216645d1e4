package rt433

import (
	"github.com/jd3nn1s/rt433/channel"
	"github.com/jd3nn1s/rt433/protocol"
)

type SerialPort interface {
	Write(p []byte) (int, error)
	Close() error
}

// ProfileSource supplies the active frequency profile's channel for every
// node, in node order.
type ProfileSource interface {
	Channels() ([]channel.Channel, error)
}

// Forwarder receives a copy of every frame written to the serial link.
type Forwarder interface {
	Forward(frame protocol.Frame) error
}
