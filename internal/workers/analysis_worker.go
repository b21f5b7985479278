package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/providers/llm"
	mongorepo "github.com/kadrohq/kadro/internal/repositories/mongo"
	"github.com/kadrohq/kadro/internal/services"
)

// AnalysisWorkerPool consumes completed interviews off the analysis stream
// and produces a narrative evaluation of the transcript.
type AnalysisWorkerPool struct {
	Redis         *redis.Client
	Conversations services.ConversationService
	Interviews    services.InterviewService
	Analyses      mongorepo.AnalysisRepository
	NumWorkers    int

	LLM       llm.Provider
	ModelName string

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *AnalysisWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Conversations == nil || p.Interviews == nil || p.Analyses == nil || p.LLM == nil {
		return errors.New("AnalysisWorkerPool missing dependency: Redis/Conversations/Interviews/Analyses/LLM must be set")
	}
	if p.Stream == "" {
		p.Stream = services.AnalysisStream
	}
	if p.Group == "" {
		p.Group = "analysis-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AnalysisWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    5,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnalysisWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	raw, _ := msg.Values["interview_id"].(string)
	interviewID, _ := strconv.ParseInt(raw, 10, 64)
	if interviewID == 0 {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":     msg.ID,
		"interview_id": interviewID,
	})

	start := time.Now()
	if err := p.Analyses.Upsert(ctx, &models.InterviewAnalysis{
		InterviewID: interviewID,
		Status:      services.AnalysisStatusProcessing,
	}); err != nil {
		log.WithError(err).Error("failed to mark analysis processing")
		return
	}

	result, err := p.analyze(ctx, interviewID)
	if err != nil {
		log.WithError(err).Error("analysis failed")
		_ = p.Analyses.SetStatus(ctx, interviewID, services.AnalysisStatusFailed)
		return
	}

	result.Status = services.AnalysisStatusDone
	result.ModelUsed = p.ModelName
	result.ProcessingTimeMS = time.Since(start).Milliseconds()

	if err := p.Analyses.SetResult(ctx, interviewID, result); err != nil {
		log.WithError(err).Error("failed to store analysis")
		return
	}
	if err := p.Interviews.SetStatus(ctx, interviewID, models.InterviewStatusAnalyzed); err != nil {
		log.WithError(err).Warn("failed to mark interview analyzed")
	}

	log.WithField("duration_ms", result.ProcessingTimeMS).Info("analysis complete")
}

const analysisPrompt = "You are an HR assistant. Below is the transcript of a Turkish job interview. " +
	"Respond with JSON only, in the shape " +
	`{"summary": string, "strengths": [string], "weaknesses": [string]}. ` +
	"Write the summary in Turkish, three to five sentences."

func (p *AnalysisWorkerPool) analyze(ctx context.Context, interviewID int64) (*models.InterviewAnalysis, error) {
	turns, err := p.Conversations.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, errors.New("empty transcript")
	}

	var sb strings.Builder
	sb.WriteString(analysisPrompt)
	sb.WriteString("\n\n")
	for _, t := range turns {
		if t.Role == models.MessageRoleUser {
			sb.WriteString("Candidate: ")
		} else {
			sb.WriteString("Interviewer: ")
		}
		sb.WriteString(t.Content)
		sb.WriteByte('\n')
	}

	chunks, errs := p.LLM.StreamAnswer(ctx, sb.String())
	var out strings.Builder
	for chunk := range chunks {
		out.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		return nil, err
	}

	return parseAnalysis(out.String(), interviewID), nil
}

// parseAnalysis tolerates models that wrap their JSON in code fences or
// prose. An unparseable response becomes a plain-text summary.
func parseAnalysis(text string, interviewID int64) *models.InterviewAnalysis {
	a := &models.InterviewAnalysis{InterviewID: interviewID}

	body := text
	if i := strings.Index(body, "{"); i >= 0 {
		if j := strings.LastIndex(body, "}"); j > i {
			body = body[i : j+1]
		}
	}

	var parsed struct {
		Summary    string   `json:"summary"`
		Strengths  []string `json:"strengths"`
		Weaknesses []string `json:"weaknesses"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err == nil && parsed.Summary != "" {
		a.Summary = parsed.Summary
		a.Strengths = parsed.Strengths
		a.Weaknesses = parsed.Weaknesses
		return a
	}

	a.Summary = strings.TrimSpace(text)
	return a
}
