package interview

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// TurnSink persists one finalized turn against a server-side interview record.
type TurnSink interface {
	AppendTurn(ctx context.Context, interviewID int64, t Turn) error
}

// Transcript owns the ordered turn log for one session. Turns are mirrored to
// the sink best-effort and in strict dialogue order; a failed mirror write
// never blocks the dialogue. Turns appended before the server-side interview
// ID is known are buffered and flushed, original sequence numbers preserved,
// once SetInterviewID is called.
type Transcript struct {
	sink TurnSink
	log  *logrus.Entry

	mu          sync.Mutex
	turns       []Turn
	nextSeq     int
	interviewID int64
	unlinked    []Turn

	queue chan queuedTurn
	done  chan struct{}
}

type queuedTurn struct {
	interviewID int64
	turn        Turn
}

func NewTranscript(sink TurnSink, log *logrus.Logger) *Transcript {
	t := &Transcript{
		sink:    sink,
		log:     log.WithField("component", "transcript"),
		nextSeq: 1,
		queue:   make(chan queuedTurn, 256),
		done:    make(chan struct{}),
	}
	go t.runMirror()
	return t
}

// Append records a turn, assigns the next sequence number, and schedules the
// mirror write. Returns the recorded turn.
func (t *Transcript) Append(role Role, text string) Turn {
	t.mu.Lock()
	turn := Turn{Role: role, Text: text, Seq: t.nextSeq}
	t.nextSeq++
	t.turns = append(t.turns, turn)

	if t.interviewID == 0 {
		// No durable home yet; hold until the first media association
		// yields the interview ID.
		t.unlinked = append(t.unlinked, turn)
		t.mu.Unlock()
		return turn
	}
	id := t.interviewID
	t.mu.Unlock()

	t.enqueue(id, turn)
	return turn
}

// Turns returns a copy of the full ordered history.
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// SetInterviewID links the transcript to its server-side record and flushes
// every buffered turn in original order.
func (t *Transcript) SetInterviewID(id int64) {
	t.mu.Lock()
	if t.interviewID != 0 || id == 0 {
		t.mu.Unlock()
		return
	}
	t.interviewID = id
	flush := t.unlinked
	t.unlinked = nil
	t.mu.Unlock()

	for _, turn := range flush {
		t.enqueue(id, turn)
	}
}

// Close stops the mirror worker. Queued writes already accepted are drained
// first.
func (t *Transcript) Close() {
	t.mu.Lock()
	select {
	case <-t.done:
		t.mu.Unlock()
		return
	default:
	}
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}

func (t *Transcript) enqueue(id int64, turn Turn) {
	defer func() {
		// Sending on the closed queue after teardown is a no-op.
		if recover() != nil {
			t.log.WithField("seq", turn.Seq).Warn("turn mirror skipped: transcript closed")
		}
	}()
	select {
	case t.queue <- queuedTurn{interviewID: id, turn: turn}:
	default:
		t.log.WithField("seq", turn.Seq).Warn("turn mirror skipped: queue full")
	}
}

// runMirror is the single writer, so mirrored turns keep dialogue order.
func (t *Transcript) runMirror() {
	defer close(t.done)
	for q := range t.queue {
		if err := t.sink.AppendTurn(context.Background(), q.interviewID, q.turn); err != nil {
			t.log.WithError(err).WithFields(logrus.Fields{
				"interview_id": q.interviewID,
				"seq":          q.turn.Seq,
			}).Warn("turn mirror failed")
		}
	}
}
