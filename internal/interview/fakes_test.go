package interview

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", d)
}

type fakeSynth struct {
	mu      sync.Mutex
	spoken  []string
	pending func()
	auto    bool
	cancels int
}

func (f *fakeSynth) Speak(ctx context.Context, text string, onDone func()) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	auto := f.auto
	if !auto {
		f.pending = onDone
	}
	f.mu.Unlock()
	if auto {
		onDone()
	}
	return nil
}

func (f *fakeSynth) Cancel() {
	f.mu.Lock()
	f.cancels++
	f.pending = nil
	f.mu.Unlock()
}

func (f *fakeSynth) finishUtterance() {
	f.mu.Lock()
	done := f.pending
	f.pending = nil
	f.mu.Unlock()
	if done != nil {
		done()
	}
}

func (f *fakeSynth) spokenTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.spoken))
	copy(out, f.spoken)
	return out
}

type fakeHandle struct {
	mu    sync.Mutex
	stops int
}

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	h.stops++
	h.mu.Unlock()
}

type fakeRecog struct {
	mu       sync.Mutex
	err      error
	listens  int
	handle   *fakeHandle
	onResult func(string)
	onPause  func()
}

func (f *fakeRecog) Listen(ctx context.Context, onResult func(string), onSpeechPause func()) (ListenHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.listens++
	f.handle = &fakeHandle{}
	f.onResult = onResult
	f.onPause = onSpeechPause
	return f.handle, nil
}

func (f *fakeRecog) emit(text string) {
	f.mu.Lock()
	fn := f.onResult
	f.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

func (f *fakeRecog) pause() {
	f.mu.Lock()
	fn := f.onPause
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fakeRecorder struct {
	mu      sync.Mutex
	onChunk func([]byte)
	stops   int
}

func (r *fakeRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
	return nil
}

func (r *fakeRecorder) push(chunk []byte) { r.onChunk(chunk) }

type fakeStream struct {
	mu            sync.Mutex
	audioClone    *fakeStream
	audioCloneErr error
	recorders     []*fakeRecorder
	closed        bool
}

func (s *fakeStream) AudioClone() (Stream, error) {
	if s.audioCloneErr != nil {
		return nil, s.audioCloneErr
	}
	if s.audioClone == nil {
		s.audioClone = &fakeStream{}
	}
	return s.audioClone, nil
}

func (s *fakeStream) Record(onChunk func([]byte)) (Recorder, error) {
	rec := &fakeRecorder{onChunk: onChunk}
	s.mu.Lock()
	s.recorders = append(s.recorders, rec)
	s.mu.Unlock()
	return rec, nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeCapturePort struct {
	mu     sync.Mutex
	stream *fakeStream
	err    error
	opens  int
}

func (p *fakeCapturePort) OpenStream(ctx context.Context, video, audio bool) (Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opens++
	if p.err != nil {
		return nil, p.err
	}
	if p.stream == nil {
		p.stream = &fakeStream{}
	}
	return p.stream, nil
}

type fakeQuestions struct {
	mu      sync.Mutex
	next    func(history []Turn) (string, bool, error)
	calls   int
	lastLen int
}

func (f *fakeQuestions) NextQuestion(ctx context.Context, history []Turn) (string, bool, error) {
	f.mu.Lock()
	f.calls++
	f.lastLen = len(history)
	fn := f.next
	f.mu.Unlock()
	if fn == nil {
		return "", true, nil
	}
	return fn(history)
}

type sinkCall struct {
	interviewID int64
	turn        Turn
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
	err   error
}

func (f *fakeSink) AppendTurn(ctx context.Context, interviewID int64, t Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, sinkCall{interviewID: interviewID, turn: t})
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSink) all() []sinkCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sinkCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeTokenAPI struct {
	verifyErr error
	candErr   error
	cand      *Candidate
}

func (f *fakeTokenAPI) VerifyToken(ctx context.Context) error { return f.verifyErr }

func (f *fakeTokenAPI) CandidateByToken(ctx context.Context) (*Candidate, error) {
	if f.candErr != nil {
		return nil, f.candErr
	}
	return f.cand, nil
}

type uploadCall struct {
	fileName    string
	contentType string
	blobLen     int
}

type fakeUploadAPI struct {
	mu          sync.Mutex
	presigns    []uploadCall
	transfers   []uploadCall
	associates  int
	videoRef    string
	audioRef    string
	interviewID int64
	presignErr  func(fileName string) error
	transferErr func(dest UploadDestination) error
}

func (f *fakeUploadAPI) PresignUpload(ctx context.Context, fileName, contentType string) (UploadDestination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.presignErr != nil {
		if err := f.presignErr(fileName); err != nil {
			return UploadDestination{}, err
		}
	}
	f.presigns = append(f.presigns, uploadCall{fileName: fileName, contentType: contentType})
	return UploadDestination{URL: "https://storage.example/" + fileName, Key: "uploads/" + fileName}, nil
}

func (f *fakeUploadAPI) TransferBlob(ctx context.Context, dest UploadDestination, blob []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferErr != nil {
		if err := f.transferErr(dest); err != nil {
			return err
		}
	}
	f.transfers = append(f.transfers, uploadCall{fileName: dest.Key, contentType: contentType, blobLen: len(blob)})
	return nil
}

func (f *fakeUploadAPI) AssociateMedia(ctx context.Context, videoRef, audioRef string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.associates++
	f.videoRef = videoRef
	f.audioRef = audioRef
	if f.interviewID == 0 {
		f.interviewID = 42
	}
	return f.interviewID, nil
}
