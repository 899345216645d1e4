package serialport

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"strings"
)

var ErrNoPort = errors.New("no usable serial port found")

// to allow testing
var (
	openPort = func(name string, mode *serial.Mode) (serial.Port, error) {
		return serial.Open(name, mode)
	}
	getPortsList = serial.GetPortsList
)

// Port is an open 8N1 serial link with both buffers cleared at open.
type Port struct {
	name string
	port serial.Port
}

func Open(name string, baud int) (*Port, error) {
	p, err := openPort(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", name)
	}
	if err = p.ResetInputBuffer(); err == nil {
		err = p.ResetOutputBuffer()
	}
	if err != nil {
		_ = p.Close()
		return nil, errors.Wrapf(err, "unable to reset buffers of %s", name)
	}
	return &Port{
		name: name,
		port: p,
	}, nil
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *Port) Close() error {
	return p.port.Close()
}

// Discover picks the first port that looks like a USB serial adapter.
func Discover() (string, error) {
	ports, err := getPortsList()
	if err != nil {
		return "", errors.Wrap(err, "unable to list serial ports")
	}
	for _, name := range ports {
		log.WithField("port", name).Debug("found serial port")
		if strings.Contains(name, "USB") {
			return name, nil
		}
	}
	return "", ErrNoPort
}
