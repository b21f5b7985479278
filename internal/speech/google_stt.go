package speech

import (
	"context"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/sirupsen/logrus"

	"github.com/kadrohq/kadro/internal/interview"
)

// GoogleRecognizer runs continuous streaming recognition over the audio
// tracks of a capture stream. One Listen call owns one gRPC stream.
type GoogleRecognizer struct {
	c   *speech.Client
	src interview.Stream
	log *logrus.Logger

	Language     string
	SampleRateHz int32
}

func NewGoogleRecognizer(ctx context.Context, src interview.Stream, log *logrus.Logger) (*GoogleRecognizer, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleRecognizer{
		c:            c,
		src:          src,
		log:          log,
		Language:     "tr-TR",
		SampleRateHz: 48000,
	}, nil
}

func (g *GoogleRecognizer) Close() error { return g.c.Close() }

func (g *GoogleRecognizer) Listen(ctx context.Context, onResult func(text string), onSpeechPause func()) (interview.ListenHandle, error) {
	runCtx, cancel := context.WithCancel(ctx)

	stream, err := g.c.StreamingRecognize(runCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
					SampleRateHertz:            g.SampleRateHz,
					LanguageCode:               g.Language,
					EnableAutomaticPunctuation: true,
				},
				InterimResults:            false,
				EnableVoiceActivityEvents: true,
			},
		},
	})
	if err != nil {
		cancel()
		return nil, err
	}

	audio, err := g.src.AudioClone()
	if err != nil {
		cancel()
		return nil, err
	}

	var sendMu sync.Mutex
	closed := false
	recorder, err := audio.Record(func(chunk []byte) {
		sendMu.Lock()
		defer sendMu.Unlock()
		if closed {
			return
		}
		if err := stream.Send(&speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: chunk},
		}); err != nil {
			closed = true
		}
	})
	if err != nil {
		cancel()
		_ = audio.Close()
		return nil, err
	}

	h := &googleListenHandle{
		cancel:   cancel,
		recorder: recorder,
		audio:    audio,
		closeSend: func() {
			sendMu.Lock()
			defer sendMu.Unlock()
			if !closed {
				closed = true
				_ = stream.CloseSend()
			}
		},
	}

	go g.receive(runCtx, stream, onResult, onSpeechPause)
	return h, nil
}

func (g *GoogleRecognizer) receive(ctx context.Context, stream speechpb.Speech_StreamingRecognizeClient, onResult func(string), onSpeechPause func()) {
	for {
		resp, err := stream.Recv()
		if err == io.EOF || ctx.Err() != nil {
			return
		}
		if err != nil {
			if g.log != nil {
				g.log.WithError(err).Debug("recognition stream closed")
			}
			return
		}

		if resp.SpeechEventType == speechpb.StreamingRecognizeResponse_SPEECH_ACTIVITY_END {
			onSpeechPause()
			continue
		}
		for _, res := range resp.Results {
			if !res.IsFinal || len(res.Alternatives) == 0 {
				continue
			}
			if t := res.Alternatives[0].Transcript; t != "" {
				onResult(t)
			}
		}
	}
}

type googleListenHandle struct {
	once      sync.Once
	cancel    context.CancelFunc
	recorder  interview.Recorder
	audio     interview.Stream
	closeSend func()
}

func (h *googleListenHandle) Stop() {
	h.once.Do(func() {
		stopCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		_ = h.recorder.Stop(stopCtx)
		h.closeSend()
		h.cancel()
		_ = h.audio.Close()
	})
}
