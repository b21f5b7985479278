package interview

import (
	"bytes"
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Capture acquires the combined camera+microphone stream, keeps it alive for
// the live preview, and drives two independent recorders against it: one over
// the full stream and one over an audio-only clone. Chunks accumulate in
// memory until StopAll concatenates them, exactly once, at finalization.
type Capture struct {
	port CapturePort
	log  *logrus.Entry

	mu          sync.Mutex
	stream      Stream
	audioStream Stream
	combinedRec Recorder
	audioRec    Recorder
	combined    chunkAccumulator
	audioOnly   chunkAccumulator
	recording   bool
	stopped     bool
}

func NewCapture(port CapturePort, log *logrus.Logger) *Capture {
	return &Capture{port: port, log: log.WithField("component", "capture")}
}

// Acquire requests one combined video+audio stream. The permission prompt (and
// its denial) happens here.
func (c *Capture) Acquire(ctx context.Context) error {
	s, err := c.port.OpenStream(ctx, true, true)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.stream = s
	c.mu.Unlock()
	return nil
}

// Stream exposes the live stream for the preview surface. Consumers must not
// stop or reconfigure its tracks.
func (c *Capture) Stream() Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// StartRecording starts both recorders. It is a single-start operation; a
// second call is a no-op. Failure to build the audio-only clone is non-fatal:
// the session proceeds with combined recording only.
func (c *Capture) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.recording || c.stream == nil {
		return nil
	}

	rec, err := c.stream.Record(c.combined.add)
	if err != nil {
		return err
	}
	c.combinedRec = rec
	c.recording = true

	audioStream, err := c.stream.AudioClone()
	if err != nil {
		c.log.WithError(err).Warn("audio-only clone unavailable, recording combined stream only")
		return nil
	}
	audioRec, err := audioStream.Record(c.audioOnly.add)
	if err != nil {
		c.log.WithError(err).Warn("audio-only recorder failed to start")
		_ = audioStream.Close()
		return nil
	}
	c.audioStream = audioStream
	c.audioRec = audioRec
	return nil
}

// StopAll stops both recorders, waits (bounded by ctx) for final chunk
// delivery, and returns the two concatenated blobs. Idempotent: later calls
// return the same blobs without touching the recorders again.
func (c *Capture) StopAll(ctx context.Context) (combined, audioOnly []byte) {
	c.mu.Lock()
	combinedRec, audioRec := c.combinedRec, c.audioRec
	alreadyStopped := c.stopped
	c.stopped = true
	c.mu.Unlock()

	if !alreadyStopped {
		if combinedRec != nil {
			if err := combinedRec.Stop(ctx); err != nil {
				c.log.WithError(err).Warn("combined recorder stop failed")
			}
		}
		if audioRec != nil {
			if err := audioRec.Stop(ctx); err != nil {
				c.log.WithError(err).Warn("audio recorder stop failed")
			}
		}
	}
	return c.combined.join(), c.audioOnly.join()
}

// Close tears down the streams. This is the only path allowed to stop the
// stream's tracks.
func (c *Capture) Close() {
	c.mu.Lock()
	stream, audioStream := c.stream, c.audioStream
	c.stream, c.audioStream = nil, nil
	c.mu.Unlock()

	if audioStream != nil {
		_ = audioStream.Close()
	}
	if stream != nil {
		_ = stream.Close()
	}
}

type chunkAccumulator struct {
	mu     sync.Mutex
	chunks [][]byte
}

func (a *chunkAccumulator) add(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	a.mu.Lock()
	a.chunks = append(a.chunks, cp)
	a.mu.Unlock()
}

func (a *chunkAccumulator) join() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.chunks) == 0 {
		return nil
	}
	return bytes.Join(a.chunks, nil)
}
