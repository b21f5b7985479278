package services

import (
	"context"
	"sync"
	"time"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/utils"
)

type memCandidateRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Candidate
}

func newMemCandidateRepo() *memCandidateRepo {
	return &memCandidateRepo{rows: map[int64]*models.Candidate{}}
}

func (r *memCandidateRepo) Insert(_ context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCandidateRepo) GetByID(_ context.Context, id int64) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCandidateRepo) GetByToken(_ context.Context, token string) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Token == token {
			cp := *c
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *memCandidateRepo) List(_ context.Context, userID int64) ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for _, c := range r.rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) Update(_ context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return utils.ErrNotFound
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *memCandidateRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memCandidateRepo) SetToken(_ context.Context, id int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	c.Token = token
	c.ExpiresAt = expiresAt
	c.UsedAt = nil
	return nil
}

func (r *memCandidateRepo) MarkUsed(_ context.Context, id int64, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	c.UsedAt = &usedAt
	return nil
}

type memInterviewRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.Interview
}

func newMemInterviewRepo() *memInterviewRepo {
	return &memInterviewRepo{rows: map[int64]*models.Interview{}}
}

func (r *memInterviewRepo) Insert(_ context.Context, iv *models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	iv.ID = r.nextID
	cp := *iv
	r.rows[iv.ID] = &cp
	return nil
}

func (r *memInterviewRepo) GetByID(_ context.Context, id int64) (*models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *iv
	return &cp, nil
}

func (r *memInterviewRepo) GetByCandidate(_ context.Context, candidateID int64) (*models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, iv := range r.rows {
		if iv.CandidateID == candidateID {
			cp := *iv
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *memInterviewRepo) List(_ context.Context) ([]models.Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Interview
	for _, iv := range r.rows {
		out = append(out, *iv)
	}
	return out, nil
}

func (r *memInterviewRepo) Update(_ context.Context, iv *models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[iv.ID]; !ok {
		return utils.ErrNotFound
	}
	cp := *iv
	r.rows[iv.ID] = &cp
	return nil
}

func (r *memInterviewRepo) SetStatus(_ context.Context, id int64, status models.InterviewStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	iv.Status = status
	return nil
}

type memConversationRepo struct {
	mu   sync.Mutex
	rows []models.ConversationMessage
}

func (r *memConversationRepo) Insert(_ context.Context, msg *models.ConversationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, *msg)
	return nil
}

func (r *memConversationRepo) ListByInterview(_ context.Context, interviewID int64) ([]models.ConversationMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConversationMessage
	for _, m := range r.rows {
		if m.InterviewID == interviewID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeSigner returns a recognizable signed URL for any object key.
type fakeSigner struct {
	mu     sync.Mutex
	signed []string
	err    error
}

func (f *fakeSigner) SignedGetURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.signed = append(f.signed, objectName)
	return "https://signed.example/" + objectName, nil
}

// fakeLLM replays a scripted answer as a chunk stream.
type fakeLLM struct {
	chunks []string
	err    error
}

func (f *fakeLLM) StreamAnswer(_ context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, len(f.chunks))
	errs := make(chan error, 1)
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	if f.err != nil {
		errs <- f.err
	}
	close(errs)
	return out, errs
}

func (f *fakeLLM) Close() error { return nil }
