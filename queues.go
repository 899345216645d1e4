package rt433

import (
	"github.com/jd3nn1s/rt433/protocol"
	"sync"
)

// DefaultRetries is how many back-to-back copies of a frame are queued to
// ride out packet loss on the receive side.
const DefaultRetries = 2

// Queues holds the pending status and message frames. Both are guarded by
// one lock; any number of producers may push while one consumer pops.
type Queues struct {
	mu      sync.Mutex
	status  []protocol.Frame
	message []protocol.Frame
}

func NewQueues() *Queues {
	return &Queues{}
}

// PushStatus appends copies consecutive copies of f. copies < 1 appends nothing.
func (q *Queues) PushStatus(f protocol.Frame, copies int) {
	q.push(&q.status, f, copies)
}

func (q *Queues) PushMessage(f protocol.Frame, copies int) {
	q.push(&q.message, f, copies)
}

// PopStatus removes and returns the oldest status frame, if any.
func (q *Queues) PopStatus() (protocol.Frame, bool) {
	return q.pop(&q.status)
}

func (q *Queues) PopMessage() (protocol.Frame, bool) {
	return q.pop(&q.message)
}

func (q *Queues) Len() (status int, message int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.status), len(q.message)
}

func (q *Queues) push(queue *[]protocol.Frame, f protocol.Frame, copies int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := 0; i < copies; i++ {
		*queue = append(*queue, f)
	}
}

func (q *Queues) pop(queue *[]protocol.Frame) (protocol.Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(*queue) == 0 {
		return nil, false
	}
	f := (*queue)[0]
	(*queue)[0] = nil
	*queue = (*queue)[1:]
	return f, true
}
