package services

import (
	"context"
	"errors"
	"time"

	"github.com/kadrohq/kadro/internal/cache"
	"github.com/kadrohq/kadro/internal/models"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/utils"
)

const candidateCacheTTL = 5 * time.Minute

// TokenService resolves single-use interview tokens to candidates.
type TokenService interface {
	Verify(ctx context.Context, token string) (*models.Candidate, error)
}

type tokenService struct {
	candidates pgrepo.CandidateRepository
	cache      cache.Cache
}

func NewTokenService(candidates pgrepo.CandidateRepository, c cache.Cache) TokenService {
	return &tokenService{candidates: candidates, cache: c}
}

func (s *tokenService) Verify(ctx context.Context, token string) (*models.Candidate, error) {
	const op = "TokenService.Verify"

	if token == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "token is required", nil)
	}

	cand, err := s.lookup(ctx, token)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid or expired token", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to verify token", err)
	}

	now := time.Now().UTC()
	if !cand.ExpiresAt.After(now) || cand.UsedAt != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Invalid or expired token", nil)
	}
	return cand, nil
}

func (s *tokenService) lookup(ctx context.Context, token string) (*models.Candidate, error) {
	key := "candidate:token:" + token

	if s.cache != nil {
		var cached models.Candidate
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	cand, err := s.candidates.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, cand, candidateCacheTTL)
	}
	return cand, nil
}
