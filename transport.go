package rt433

import (
	"context"
	"github.com/jd3nn1s/rt433/protocol"
	"github.com/jd3nn1s/rt433/serialport"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

const (
	DefaultBaudRate     = 9600
	DefaultTickInterval = 50 * time.Millisecond
)

// to allow testing
var serialOpen = func(name string, baud int) (SerialPort, error) {
	return serialport.Open(name, baud)
}

type TransportConfig struct {
	PortName     string
	BaudRate     int
	TickInterval time.Duration

	// MaxWriteFailures consecutive failed writes end Start so the port is
	// reopened. Zero keeps writing forever.
	MaxWriteFailures int
}

// Transport is the only writer of the serial link. Every tick it writes at
// most one status frame and then at most one message frame.
type Transport struct {
	cfg        TransportConfig
	queues     *Queues
	port       SerialPort
	forwarders []Forwarder
	failures   int
}

func NewTransport(cfg TransportConfig, queues *Queues) *Transport {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Transport{
		cfg:    cfg,
		queues: queues,
	}
}

func (t *Transport) AddForwarder(fwd Forwarder) {
	t.forwarders = append(t.forwarders, fwd)
}

func (t *Transport) Name() string {
	return "transport"
}

func (t *Transport) Open() error {
	port, err := serialOpen(t.cfg.PortName, t.cfg.BaudRate)
	if err != nil {
		return errors.Wrapf(err, "unable to open serial port %s", t.cfg.PortName)
	}
	log.WithField("port", t.cfg.PortName).
		WithField("baud", t.cfg.BaudRate).
		Info("serial port opened")
	t.port = port
	t.failures = 0
	return nil
}

func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

func (t *Transport) Start(ctx context.Context) error {
	if t.port == nil {
		return errors.New("serial port is not open")
	}
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := t.tick(); err != nil {
			return err
		}
	}
}

func (t *Transport) tick() error {
	if f, ok := t.queues.PopStatus(); ok {
		t.write(f)
	}
	if f, ok := t.queues.PopMessage(); ok {
		t.write(f)
	}
	if t.cfg.MaxWriteFailures > 0 && t.failures >= t.cfg.MaxWriteFailures {
		return errors.Errorf("%d consecutive write failures", t.failures)
	}
	return nil
}

func (t *Transport) write(f protocol.Frame) {
	log.WithField("frame", f).Debug("writing frame")
	if _, err := t.port.Write(f); err != nil {
		t.failures++
		log.WithField("err", err).
			WithField("frame", f).
			Error("unable to write frame")
		return
	}
	t.failures = 0
	for _, fwd := range t.forwarders {
		if err := fwd.Forward(f); err != nil {
			log.WithField("err", err).Warn("unable to forward frame")
		}
	}
}
