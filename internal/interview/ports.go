package interview

import (
	"context"
	"errors"
)

// ErrRecognitionUnsupported is returned by a Recognizer when the platform has
// no speech recognition capability at all. Callers must not enter a listening
// state that can never resolve.
var ErrRecognitionUnsupported = errors.New("speech recognition not supported")

// Synthesizer plays a question aloud. Speak cancels any in-flight utterance
// before starting the new one and invokes onDone exactly once when playback
// completes. Cancel discards the current utterance without calling onDone.
type Synthesizer interface {
	Speak(ctx context.Context, text string, onDone func()) error
	Cancel()
}

// ListenHandle controls one continuous recognition run. Stop is idempotent
// and safe to call after the run has already completed on its own.
type ListenHandle interface {
	Stop()
}

// Recognizer starts continuous (not single-shot) speech recognition.
// onResult fires for every recognized utterance fragment; onSpeechPause fires
// whenever recognized speech is followed by a gap.
type Recognizer interface {
	Listen(ctx context.Context, onResult func(text string), onSpeechPause func()) (ListenHandle, error)
}

// Recorder accumulates media chunks from a stream. Stop is idempotent; it
// waits for final chunk delivery, bounded by ctx.
type Recorder interface {
	Stop(ctx context.Context) error
}

// Stream is a live media stream shared by the preview surface and the
// recorders. Only the owning teardown path may close it.
type Stream interface {
	// AudioClone builds a standalone stream from the audio tracks only.
	AudioClone() (Stream, error)
	// Record starts a recorder that delivers chunks via onChunk. Chunk
	// granularity is recorder-internal.
	Record(onChunk func(chunk []byte)) (Recorder, error)
	Close() error
}

// CapturePort acquires device media. Opening a stream triggers the platform
// permission prompt; denial or device failure surfaces as an error.
type CapturePort interface {
	OpenStream(ctx context.Context, video, audio bool) (Stream, error)
}
