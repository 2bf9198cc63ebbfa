package engine

import "sync"

// FragmentKind discriminates TokenQueue elements.
type FragmentKind int

const (
	// FragmentText carries one unit of generated text.
	FragmentText FragmentKind = iota
	// FragmentEnd marks a normal end of stream.
	FragmentEnd
	// FragmentError marks an abnormal end of stream.
	FragmentError
)

// Terminal reasons recorded on end and error fragments.
const (
	ReasonStop       = "stop"
	ReasonLength     = "length"
	ReasonCanceled   = "canceled"
	ReasonError      = "error"
	ReasonSuperseded = "superseded"
)

// Fragment is one element handed from the producing worker to the
// delivery loop.
type Fragment struct {
	Kind FragmentKind
	// Text is the payload of a FragmentText.
	Text string
	// Err is the payload of a FragmentError.
	Err error
	// Reason classifies terminal fragments: stop, length, canceled, error.
	Reason string
}

func textFragment(s string) Fragment { return Fragment{Kind: FragmentText, Text: s} }

func endFragment(reason string) Fragment { return Fragment{Kind: FragmentEnd, Reason: reason} }

func errorFragment(err error, reason string) Fragment {
	return Fragment{Kind: FragmentError, Err: err, Reason: reason}
}

// TokenQueue is an ordered, unbounded hand-off queue between one producer
// and one consumer. Push never blocks; Pop blocks while the queue is open
// and empty. A consumer attaching after pushes still observes the full
// backlog in FIFO order.
type TokenQueue struct {
	writeNotify chan struct{}

	mu       sync.Mutex
	finished bool
	buf      []Fragment
}

// NewTokenQueue returns an empty, open queue.
func NewTokenQueue() *TokenQueue {
	return &TokenQueue{writeNotify: make(chan struct{}, 1)}
}

// Push appends f. Elements pushed after Finish are dropped.
func (q *TokenQueue) Push(f Fragment) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.finished {
		return
	}
	select {
	case q.writeNotify <- struct{}{}:
	default:
	}
	q.buf = append(q.buf, f)
}

// Pop removes and returns the oldest element, blocking while the queue is
// open and empty. The second return is false once Finish has been called
// and the backlog is drained.
func (q *TokenQueue) Pop() (Fragment, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.buf) == 0 {
		if q.finished {
			return Fragment{}, false
		}
		q.mu.Unlock()
		<-q.writeNotify
		q.mu.Lock()
	}
	f := q.buf[0]
	q.buf = q.buf[1:]
	return f, true
}

// Finish closes the write side and wakes every blocked Pop. Idempotent:
// only the first call has any effect.
func (q *TokenQueue) Finish() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.finished {
		return
	}
	q.finished = true
	close(q.writeNotify)
}

// Len returns the number of undelivered elements.
func (q *TokenQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
