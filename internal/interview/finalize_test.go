package interview

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newFinalizerFixture(t *testing.T) (*Capture, *fakeCapturePort, *fakeSink, *Transcript) {
	t.Helper()
	port := &fakeCapturePort{}
	capture := NewCapture(port, testLogger())
	_ = capture.Acquire(context.Background())
	_ = capture.StartRecording(context.Background())
	sink := &fakeSink{}
	tr := NewTranscript(sink, testLogger())
	t.Cleanup(tr.Close)
	return capture, port, sink, tr
}

func TestFinalizeSkipsUploadWhenNothingRecorded(t *testing.T) {
	capture, _, _, tr := newFinalizerFixture(t)
	api := &fakeUploadAPI{}
	f := NewFinalizer(capture, api, tr, testLogger())

	f.Run(context.Background())

	if len(api.presigns) != 0 || len(api.transfers) != 0 || api.associates != 0 {
		t.Fatalf("no upload traffic expected: %+v", api)
	}
}

func TestFinalizeUploadsBothArtifactsAndFlushesTurns(t *testing.T) {
	capture, port, sink, tr := newFinalizerFixture(t)
	port.stream.recorders[0].push([]byte("video-bytes"))
	port.stream.audioClone.recorders[0].push([]byte("audio-bytes"))

	tr.Append(RoleAssistant, Greeting)
	tr.Append(RoleUser, "cevap")

	api := &fakeUploadAPI{}
	f := NewFinalizer(capture, api, tr, testLogger())
	f.Run(context.Background())

	if len(api.presigns) != 2 {
		t.Fatalf("expected 2 presign requests, got %d", len(api.presigns))
	}
	if len(api.transfers) != 2 {
		t.Fatalf("expected 2 blob transfers, got %d", len(api.transfers))
	}
	if api.associates != 1 {
		t.Fatalf("expected one associate call, got %d", api.associates)
	}
	if api.videoRef == "" || api.audioRef == "" {
		t.Fatalf("both references expected, got %q / %q", api.videoRef, api.audioRef)
	}

	waitFor(t, time.Second, func() bool { return sink.count() == 2 })
	for _, c := range sink.all() {
		if c.interviewID != 42 {
			t.Fatalf("buffered turns must flush with returned interview ID, got %d", c.interviewID)
		}
	}
}

func TestFinalizeReleasesCaptureStreams(t *testing.T) {
	capture, port, _, tr := newFinalizerFixture(t)
	port.stream.recorders[0].push([]byte("video-bytes"))

	f := NewFinalizer(capture, &fakeUploadAPI{}, tr, testLogger())
	f.Run(context.Background())

	if !port.stream.isClosed() {
		t.Fatal("combined stream must be released after finalization")
	}
	if clone := port.stream.audioClone; clone != nil && !clone.isClosed() {
		t.Fatal("audio clone must be released after finalization")
	}
}

func TestFinalizePartialFailureStillAssociates(t *testing.T) {
	capture, port, _, tr := newFinalizerFixture(t)
	port.stream.recorders[0].push([]byte("video-bytes"))
	port.stream.audioClone.recorders[0].push([]byte("audio-bytes"))

	// Fail the first (video) transfer only.
	first := true
	api := &fakeUploadAPI{
		transferErr: func(dest UploadDestination) error {
			if first {
				first = false
				return errors.New("video upload failed")
			}
			return nil
		},
	}

	f := NewFinalizer(capture, api, tr, testLogger())
	f.Run(context.Background())

	if api.associates != 1 {
		t.Fatal("association must run when at least one artifact succeeded")
	}
	if api.videoRef != "" {
		t.Fatalf("failed artifact must not be referenced, got %q", api.videoRef)
	}
	if api.audioRef == "" {
		t.Fatal("surviving artifact must be referenced")
	}
}

func TestFinalizeAllUploadsFailedSkipsAssociation(t *testing.T) {
	capture, port, _, tr := newFinalizerFixture(t)
	port.stream.recorders[0].push([]byte("video-bytes"))

	api := &fakeUploadAPI{presignErr: func(string) error { return errors.New("presign down") }}
	f := NewFinalizer(capture, api, tr, testLogger())
	f.Run(context.Background())

	if api.associates != 0 {
		t.Fatal("association must not run when every artifact failed")
	}
}
