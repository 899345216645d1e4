package rt433

import (
	"github.com/jd3nn1s/rt433/channel"
	"github.com/jd3nn1s/rt433/protocol"
	"sync"
)

type portStub struct {
	mu        sync.Mutex
	written   []protocol.Frame
	writeErr  error
	closed    bool
	writeChan chan protocol.Frame
}

func (p *portStub) Write(b []byte) (int, error) {
	p.mu.Lock()
	err := p.writeErr
	if err == nil {
		p.written = append(p.written, append(protocol.Frame{}, b...))
	}
	p.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if p.writeChan != nil {
		p.writeChan <- protocol.Frame(b)
	}
	return len(b), nil
}

func (p *portStub) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *portStub) setWriteErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

func (p *portStub) frames() []protocol.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]protocol.Frame{}, p.written...)
}

type profileStub struct {
	channels []channel.Channel
	err      error
}

func (p *profileStub) Channels() ([]channel.Channel, error) {
	return p.channels, p.err
}

type forwarderStub struct {
	frames []protocol.Frame
}

func (fwd *forwarderStub) Forward(f protocol.Frame) error {
	fwd.frames = append(fwd.frames, f)
	return nil
}

func drainStatus(q *Queues) []protocol.Frame {
	var out []protocol.Frame
	for {
		f, ok := q.PopStatus()
		if !ok {
			return out
		}
		out = append(out, f)
	}
}

func drainMessages(q *Queues) []protocol.Frame {
	var out []protocol.Frame
	for {
		f, ok := q.PopMessage()
		if !ok {
			return out
		}
		out = append(out, f)
	}
}
