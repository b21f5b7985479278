package speech

import (
	"context"
	"sync"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/sirupsen/logrus"
)

// Player turns synthesized audio into sound. It blocks until playback
// finishes or ctx is cancelled.
type Player func(ctx context.Context, audio []byte) error

// GoogleSynthesizer speaks interviewer lines through Cloud Text-to-Speech.
// At most one utterance is in flight; Speak preempts the previous one.
type GoogleSynthesizer struct {
	c    *texttospeech.Client
	play Player
	log  *logrus.Logger

	Language string
	Voice    string

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	cancel context.CancelFunc
}

func NewGoogleSynthesizer(ctx context.Context, play Player, log *logrus.Logger) (*GoogleSynthesizer, error) {
	c, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSynthesizer{
		c:        c,
		play:     play,
		log:      log,
		Language: "tr-TR",
		Voice:    "tr-TR-Wavenet-B",
	}, nil
}

func (g *GoogleSynthesizer) Close() error {
	g.Cancel()
	return g.c.Close()
}

func (g *GoogleSynthesizer) Speak(ctx context.Context, text string, onDone func()) error {
	resp, err := g.c.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.Language,
			Name:         g.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return err
	}

	g.mu.Lock()
	if g.current != nil {
		g.current.cancel()
	}
	playCtx, cancel := context.WithCancel(ctx)
	u := &utterance{cancel: cancel}
	g.current = u
	g.mu.Unlock()

	go func() {
		err := g.play(playCtx, resp.AudioContent)

		g.mu.Lock()
		if g.current == u {
			g.current = nil
		}
		g.mu.Unlock()

		if playCtx.Err() != nil {
			return // cancelled utterances do not report completion
		}
		if err != nil && g.log != nil {
			g.log.WithError(err).Warn("audio playback failed")
		}
		onDone()
	}()
	return nil
}

func (g *GoogleSynthesizer) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		g.current.cancel()
		g.current = nil
	}
}
