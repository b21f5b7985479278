package interview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the outer session workflow state.
type State string

const (
	StateLoading           State = "loading"
	StateInvalid           State = "invalid"
	StateConsent           State = "consent"
	StatePermissions       State = "permissions"
	StatePermissionsDenied State = "permissionsDenied"
	StateTest              State = "test"
	StateIntro             State = "intro"
	StateInterview         State = "interview"
	StateFinished          State = "finished"
)

// transitions is the only legal edge set. permissionsDenied -> permissions is
// the single backward edge; no transition may be skipped.
var transitions = map[State][]State{
	StateLoading:           {StateConsent, StateInvalid},
	StateConsent:           {StatePermissions},
	StatePermissions:       {StateTest, StatePermissionsDenied},
	StatePermissionsDenied: {StatePermissions},
	StateTest:              {StateIntro},
	StateIntro:             {StateInterview},
	StateInterview:         {StateFinished},
}

// PermissionState is one device's permission outcome. The combined stream
// request resolves camera and microphone together, but the device test
// surface reports them per device, like the platform permission query does.
type PermissionState string

const (
	PermissionPrompt  PermissionState = "prompt"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// TokenAPI is the server surface the outer workflow consumes.
type TokenAPI interface {
	VerifyToken(ctx context.Context) error
	CandidateByToken(ctx context.Context) (*Candidate, error)
}

// Session drives the candidate-facing interview workflow from token
// verification through finalization. It composes the media capture manager,
// the dialogue loop, and the upload pipeline; all shared state is
// mutex-serialized because port callbacks arrive on foreign goroutines.
type Session struct {
	api     TokenAPI
	capture *Capture
	loop    *Loop
	final   *Finalizer
	log     *logrus.Entry

	mu               sync.Mutex
	state            State
	consentAccepted  bool
	devicesConfirmed bool
	introConfirmed   bool
	lastError        string
	candidate        *Candidate
	cameraPerm       PermissionState
	micPerm          PermissionState

	finalizeOnce sync.Once
	ctx          context.Context
	cancel       context.CancelFunc
}

func NewSession(api TokenAPI, capture *Capture, loop *Loop, final *Finalizer, log *logrus.Logger) *Session {
	s := &Session{
		api:        api,
		capture:    capture,
		loop:       loop,
		final:      final,
		log:        log.WithField("component", "session"),
		state:      StateLoading,
		cameraPerm: PermissionPrompt,
		micPerm:    PermissionPrompt,
	}
	loop.OnFinished(s.onInterviewDone)
	return s
}

// State reports the current workflow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError is the user-visible reason for invalid or permissionsDenied.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Candidate returns the session's candidate metadata when the opportunistic
// fetch succeeded, nil otherwise.
func (s *Session) Candidate() *Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidate
}

// Start verifies the token. Verification failure is fatal to the session:
// terminal invalid state, no retry path.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	ctx = s.ctx
	s.mu.Unlock()

	if err := s.api.VerifyToken(ctx); err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		_ = s.transition(StateInvalid)
		return
	}
	_ = s.transition(StateConsent)

	// Candidate metadata is nice-to-have only.
	if cand, err := s.api.CandidateByToken(ctx); err != nil {
		s.log.WithError(err).Debug("candidate fetch failed")
	} else {
		s.mu.Lock()
		s.candidate = cand
		s.mu.Unlock()
	}
}

// AcceptConsent records the consent checkbox.
func (s *Session) AcceptConsent(accepted bool) {
	s.mu.Lock()
	s.consentAccepted = accepted
	s.mu.Unlock()
}

// ContinueToPermissions leaves consent and requests device access. Grant moves
// to test; denial or device error moves to permissionsDenied, which offers
// RetryPermissions.
func (s *Session) ContinueToPermissions() error {
	s.mu.Lock()
	accepted := s.consentAccepted
	ctx := s.ctx
	s.mu.Unlock()
	if !accepted {
		return fmt.Errorf("consent not accepted")
	}
	if err := s.transition(StatePermissions); err != nil {
		return err
	}
	s.requestPermissions(ctx)
	return nil
}

// RetryPermissions is the single backward edge, out of permissionsDenied.
func (s *Session) RetryPermissions() error {
	if err := s.transition(StatePermissions); err != nil {
		return err
	}
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.requestPermissions(ctx)
	return nil
}

func (s *Session) requestPermissions(ctx context.Context) {
	if err := s.capture.Acquire(ctx); err != nil {
		s.log.WithError(err).Warn("media permission denied")
		s.mu.Lock()
		s.lastError = err.Error()
		s.cameraPerm, s.micPerm = PermissionDenied, PermissionDenied
		s.mu.Unlock()
		_ = s.transition(StatePermissionsDenied)
		return
	}
	s.mu.Lock()
	s.cameraPerm, s.micPerm = PermissionGranted, PermissionGranted
	s.mu.Unlock()
	_ = s.transition(StateTest)
}

// DevicePermissions reports the camera and microphone outcomes for the
// device test surface.
func (s *Session) DevicePermissions() (camera, microphone PermissionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraPerm, s.micPerm
}

// ConfirmDevices records the device self-test checkbox.
func (s *Session) ConfirmDevices(ok bool) {
	s.mu.Lock()
	s.devicesConfirmed = ok
	s.mu.Unlock()
}

// ContinueToIntro requires the explicit device confirmation.
func (s *Session) ContinueToIntro() error {
	s.mu.Lock()
	ok := s.devicesConfirmed
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("devices not confirmed")
	}
	return s.transition(StateIntro)
}

// ConfirmReady records the intro confirmation checkbox.
func (s *Session) ConfirmReady(ready bool) {
	s.mu.Lock()
	s.introConfirmed = ready
	s.mu.Unlock()
}

// BeginInterview starts the dialogue loop and both recorders.
func (s *Session) BeginInterview() error {
	s.mu.Lock()
	ready := s.introConfirmed
	ctx := s.ctx
	s.mu.Unlock()
	if !ready {
		return fmt.Errorf("intro not confirmed")
	}
	if err := s.transition(StateInterview); err != nil {
		return err
	}
	if err := s.capture.StartRecording(ctx); err != nil {
		// A dead recorder degrades the artifact, not the interview.
		s.log.WithError(err).Warn("recording failed to start")
	}
	s.loop.Start(ctx)
	return nil
}

// onInterviewDone moves to finished and triggers finalization exactly once.
// The candidate sees the completion message regardless of upload outcome.
func (s *Session) onInterviewDone() {
	if err := s.transition(StateFinished); err != nil {
		return
	}
	s.finalizeOnce.Do(func() {
		go func() {
			// Finalization survives session teardown; bound it on its own.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			s.final.Run(ctx)
		}()
	})
}

// Close is the unmount path: stops recognition and synthesis and releases the
// stream. Recorder stop belongs to the finalization pipeline, which must
// survive the interview -> finished transition.
func (s *Session) Close() {
	s.loop.Stop()
	s.mu.Lock()
	state := s.state
	cancel := s.cancel
	s.mu.Unlock()
	if state != StateInterview && state != StateFinished {
		s.capture.Close()
	}
	if cancel != nil {
		cancel()
	}
}

func (s *Session) transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, next := range transitions[s.state] {
		if next == to {
			s.log.WithFields(logrus.Fields{"from": s.state, "to": to}).Info("state change")
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", s.state, to)
}
