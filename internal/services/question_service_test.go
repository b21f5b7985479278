package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kadrohq/kadro/internal/utils"
)

func TestNextQuestionAccumulatesChunks(t *testing.T) {
	svc := NewQuestionService(&fakeLLM{chunks: []string{"Takım çalışması ", "deneyiminizden bahseder misiniz?"}})

	q, done, err := svc.NextQuestion(context.Background(), []HistoryTurn{
		{Role: "assistant", Text: "Merhaba, kendinizi tanıtır mısınız?"},
		{Role: "user", Text: "Ben Ayşe, beş yıldır yazılım geliştiriyorum."},
	})
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if done {
		t.Fatal("unexpected done")
	}
	if q != "Takım çalışması deneyiminizden bahseder misiniz?" {
		t.Fatalf("wrong question: %q", q)
	}
}

func TestNextQuestionFinishedSentinel(t *testing.T) {
	for _, raw := range []string{"FINISHED", " finished \n"} {
		svc := NewQuestionService(&fakeLLM{chunks: []string{raw}})
		q, done, err := svc.NextQuestion(context.Background(), nil)
		if err != nil {
			t.Fatalf("NextQuestion(%q): %v", raw, err)
		}
		if !done || q != "" {
			t.Fatalf("NextQuestion(%q) = (%q, %v), want done with empty question", raw, q, done)
		}
	}
}

func TestNextQuestionProviderError(t *testing.T) {
	svc := NewQuestionService(&fakeLLM{err: errors.New("quota exceeded")})
	if _, _, err := svc.NextQuestion(context.Background(), nil); !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestInterviewerPromptLayout(t *testing.T) {
	p := buildInterviewerPrompt([]HistoryTurn{
		{Role: "assistant", Text: "Soru?"},
		{Role: "user", Text: "Cevap."},
	})
	if !strings.Contains(p, "Interviewer: Soru?\n") || !strings.Contains(p, "Candidate: Cevap.\n") {
		t.Fatalf("prompt missing turns:\n%s", p)
	}
	if !strings.HasSuffix(p, "Interviewer:") {
		t.Fatalf("prompt must end with the interviewer cue:\n%s", p)
	}
}
