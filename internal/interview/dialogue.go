package interview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Phase is the dialogue loop state, inner to the session workflow.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSpeaking  Phase = "speaking"
	PhaseListening Phase = "listening"
	PhaseThinking  Phase = "thinking"
)

const (
	// Greeting is the fixed first question, scheduled shortly after the
	// interview view settles.
	Greeting = "Merhaba, kendinizi tanıtır mısınız?"

	// apologyText replaces a real question when the next-question service
	// fails; the dialogue continues instead of dying on one transient error.
	apologyText = "Maalesef bir hata oluştu. Lütfen daha sonra yeniden deneyin."

	defaultFirstQuestionDelay = 2 * time.Second
	defaultSilenceTimeout     = 5 * time.Second
)

// QuestionSource produces the next interviewer question from the full ordered
// turn history, or signals that the interview is complete.
type QuestionSource interface {
	NextQuestion(ctx context.Context, history []Turn) (question string, done bool, err error)
}

// Loop is the conversation controller: speak the current question, listen for
// the answer, detect end-of-utterance via a silence timeout, ask the question
// service for the next move.
type Loop struct {
	synth      Synthesizer
	recog      Recognizer
	questions  QuestionSource
	transcript *Transcript
	log        *logrus.Entry

	firstDelay time.Duration
	silence    time.Duration
	onFinished func()

	mu           sync.Mutex
	phase        Phase
	stopped      bool
	firstTimer   *time.Timer
	silenceTimer *time.Timer
	handle       ListenHandle
	fragments    []string
	ctx          context.Context
	cancel       context.CancelFunc
}

type LoopOption func(*Loop)

// WithFirstQuestionDelay overrides the pause before the greeting is asked.
func WithFirstQuestionDelay(d time.Duration) LoopOption {
	return func(l *Loop) { l.firstDelay = d }
}

// WithSilenceTimeout overrides the quiet period that finalizes an answer.
func WithSilenceTimeout(d time.Duration) LoopOption {
	return func(l *Loop) { l.silence = d }
}

func NewLoop(synth Synthesizer, recog Recognizer, questions QuestionSource, transcript *Transcript, log *logrus.Logger, opts ...LoopOption) *Loop {
	l := &Loop{
		synth:      synth,
		recog:      recog,
		questions:  questions,
		transcript: transcript,
		log:        log.WithField("component", "dialogue"),
		firstDelay: defaultFirstQuestionDelay,
		silence:    defaultSilenceTimeout,
		phase:      PhaseIdle,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OnFinished registers the callback fired once when the question service
// signals completion. Must be set before Start.
func (l *Loop) OnFinished(fn func()) { l.onFinished = fn }

// Phase reports the current dialogue phase.
func (l *Loop) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// Start schedules the greeting after the settle delay.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.stopped || l.ctx != nil {
		l.mu.Unlock()
		return
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	l.firstTimer = time.AfterFunc(l.firstDelay, func() {
		l.ask(Greeting)
	})
	l.mu.Unlock()
}

// Stop tears the loop down: pending timers are cancelled, in-flight
// recognition is stopped, in-flight synthesis is cancelled. No result or
// completion callback is acted on afterwards.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	if l.firstTimer != nil {
		l.firstTimer.Stop()
	}
	if l.silenceTimer != nil {
		l.silenceTimer.Stop()
	}
	handle := l.handle
	l.handle = nil
	cancel := l.cancel
	l.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	l.synth.Cancel()
	if cancel != nil {
		cancel()
	}
}

// ask appends the question as an assistant turn, mirrors it, and speaks it.
func (l *Loop) ask(question string) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.phase = PhaseSpeaking
	ctx := l.ctx
	l.mu.Unlock()

	turn := l.transcript.Append(RoleAssistant, question)
	l.log.WithField("seq", turn.Seq).Info("asking question")

	if err := l.synth.Speak(ctx, question, l.onSpoken); err != nil {
		// A dead synthesizer must not stall the dialogue; fall through to
		// listening as if playback had completed.
		l.log.WithError(err).Warn("speech synthesis failed")
		l.onSpoken()
	}
}

// onSpoken fires when question playback completes; start listening.
func (l *Loop) onSpoken() {
	l.mu.Lock()
	if l.stopped || l.phase != PhaseSpeaking {
		l.mu.Unlock()
		return
	}
	l.phase = PhaseListening
	l.fragments = nil
	ctx := l.ctx
	l.mu.Unlock()

	handle, err := l.recog.Listen(ctx, l.onFragment, l.onSpeechPause)
	if err != nil {
		// Without recognition the listen path can never resolve; end the
		// interview rather than wait forever.
		l.log.WithError(err).Error("speech recognition unavailable")
		l.finish()
		return
	}

	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		handle.Stop()
		return
	}
	l.handle = handle
	l.mu.Unlock()
}

func (l *Loop) onFragment(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || l.phase != PhaseListening {
		return
	}
	if s := strings.TrimSpace(text); s != "" {
		l.fragments = append(l.fragments, s)
	}
	l.armSilenceTimerLocked()
}

func (l *Loop) onSpeechPause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || l.phase != PhaseListening {
		return
	}
	l.armSilenceTimerLocked()
}

// armSilenceTimerLocked resets the single-shot silence timer. Reset, not
// stack: only the most recent pause can trigger finalization.
func (l *Loop) armSilenceTimerLocked() {
	if l.silenceTimer != nil {
		l.silenceTimer.Stop()
	}
	l.silenceTimer = time.AfterFunc(l.silence, l.finalizeAnswer)
}

// finalizeAnswer runs when the silence timer fires: join the buffered
// fragments into the candidate's answer and move to thinking. An empty buffer
// is a false trigger; the loop stays listening.
func (l *Loop) finalizeAnswer() {
	l.mu.Lock()
	if l.stopped || l.phase != PhaseListening {
		l.mu.Unlock()
		return
	}
	answer := strings.TrimSpace(strings.Join(l.fragments, " "))
	if answer == "" {
		l.mu.Unlock()
		return
	}
	l.phase = PhaseThinking
	l.fragments = nil
	handle := l.handle
	l.handle = nil
	ctx := l.ctx
	l.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}

	turn := l.transcript.Append(RoleUser, answer)
	l.log.WithField("seq", turn.Seq).Info("answer captured")

	go l.think(ctx)
}

// think submits the full history and routes on the outcome.
func (l *Loop) think(ctx context.Context) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	question, done, err := l.questions.NextQuestion(ctx, l.transcript.Turns())
	if err != nil {
		l.log.WithError(err).Warn("next-question service failed")
		l.ask(apologyText)
		return
	}
	if done || question == "" {
		l.finish()
		return
	}
	l.ask(question)
}

// finish ends the dialogue and notifies the session exactly once.
func (l *Loop) finish() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.phase = PhaseIdle
	if l.firstTimer != nil {
		l.firstTimer.Stop()
	}
	if l.silenceTimer != nil {
		l.silenceTimer.Stop()
	}
	handle := l.handle
	l.handle = nil
	onFinished := l.onFinished
	l.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	l.synth.Cancel()
	if onFinished != nil {
		onFinished()
	}
}
