package forwarder

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"github.com/jd3nn1s/rt433/protocol"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"net"
	"unsafe"
)

type Header struct {
	Type uint8
}

var maxDatagramSize = int(unsafe.Sizeof(Header{})) + protocol.MessageFrameSize

const (
	TypeFrame = 3

	queueSize = 32
)

type UDPConfig struct {
	Server string `toml:"server"`
	Port   int    `toml:"port"`
}

func (c UDPConfig) Enabled() bool {
	return c.Port != 0
}

// UDPForwarder mirrors every frame written to the serial link to a UDP
// listener, e.g. a course monitor.
type UDPForwarder struct {
	Config *UDPConfig

	conn    net.Conn
	fwdChan chan protocol.Frame
}

func NewUDPForwarder(config UDPConfig) (*UDPForwarder, error) {
	udp := &UDPForwarder{
		Config:  &config,
		fwdChan: make(chan protocol.Frame, queueSize),
	}
	if err := udp.connect(); err != nil {
		return nil, err
	}
	return udp, nil
}

func (udp *UDPForwarder) Close() error {
	return udp.conn.Close()
}

func (udp *UDPForwarder) Forward(f protocol.Frame) error {
	select {
	case udp.fwdChan <- f:
	default:
		// if channel is full, skip
		log.WithField("frame", f).Debug("mirror queue full, frame dropped")
	}
	return nil
}

func (udp *UDPForwarder) Start(ctx context.Context) error {
	for {
		select {
		case f := <-udp.fwdChan:
			if err := udp.forward(f); err != nil {
				log.Error("unable to forward frame to mirror ", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (udp *UDPForwarder) forward(f protocol.Frame) error {
	buf := bytes.NewBuffer(make([]byte, 0, maxDatagramSize))
	hdr := Header{
		Type: TypeFrame,
	}
	if err := binary.Write(buf, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "unable to write udp packet header")
	}
	buf.Write(f)
	_, err := udp.conn.Write(buf.Bytes())
	return err
}

// ParseDatagram validates a mirrored datagram and decodes the frame in it.
func ParseDatagram(data []byte) (protocol.Frame, *protocol.Decoded, error) {
	rdr := bytes.NewReader(data)
	hdr := Header{}
	if err := binary.Read(rdr, binary.LittleEndian, &hdr); err != nil {
		return nil, nil, errors.Wrap(err, "unable to read udp packet header")
	}
	if hdr.Type != TypeFrame {
		return nil, nil, errors.Errorf("unexpected datagram type %d", hdr.Type)
	}
	f := protocol.Frame(data[len(data)-rdr.Len():])
	d, err := protocol.Decode(f)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid mirrored frame")
	}
	return f, d, nil
}

func (udp *UDPForwarder) connect() error {
	writeBufSize := maxDatagramSize * queueSize

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d",
		udp.Config.Server,
		udp.Config.Port))
	if err != nil {
		return err
	}
	udpConn := conn.(*net.UDPConn)
	if err = udpConn.SetWriteBuffer(writeBufSize); err != nil {
		return errors.Wrapf(err, "unable to set OS write buffer to %v", writeBufSize)
	}

	udp.conn = conn
	return nil
}
