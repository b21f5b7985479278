package services

import (
	"context"
	"strings"

	"github.com/kadrohq/kadro/internal/providers/llm"
	"github.com/kadrohq/kadro/internal/utils"
)

const interviewerPrompt = "You are an HR interviewer conducting a Turkish job interview. " +
	"Given the conversation so far, ask the next appropriate question. " +
	"If the candidate has answered sufficiently AND you have asked at least 5 questions, respond with the single word FINISHED. " +
	"Otherwise respond with only the next question sentence."

// HistoryTurn is one prior dialogue turn as the client reports it.
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type QuestionService interface {
	// NextQuestion produces the interviewer's next line, or done=true when
	// the model decides the interview is over.
	NextQuestion(ctx context.Context, history []HistoryTurn) (question string, done bool, err error)
}

type questionService struct {
	llm llm.Provider
}

func NewQuestionService(p llm.Provider) QuestionService {
	return &questionService{llm: p}
}

func (s *questionService) NextQuestion(ctx context.Context, history []HistoryTurn) (string, bool, error) {
	const op = "QuestionService.NextQuestion"

	prompt := buildInterviewerPrompt(history)

	chunks, errs := s.llm.StreamAnswer(ctx, prompt)

	var sb strings.Builder
	for chunk := range chunks {
		sb.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		return "", false, utils.E(utils.CodeUnavailable, op, "language model request failed", err)
	}

	text := strings.TrimSpace(sb.String())
	if strings.EqualFold(text, "FINISHED") {
		return "", true, nil
	}
	return text, false, nil
}

func buildInterviewerPrompt(history []HistoryTurn) string {
	var sb strings.Builder
	sb.WriteString(interviewerPrompt)
	sb.WriteString("\n\n")
	for _, turn := range history {
		if turn.Role == "user" {
			sb.WriteString("Candidate: ")
		} else {
			sb.WriteString("Interviewer: ")
		}
		sb.WriteString(turn.Text)
		sb.WriteByte('\n')
	}
	sb.WriteString("Interviewer:")
	return sb.String()
}
