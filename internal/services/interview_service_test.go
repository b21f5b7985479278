package services

import (
	"context"
	"testing"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/utils"
)

func newTestInterviewService(candidates *memCandidateRepo, interviews *memInterviewRepo) InterviewService {
	tokens := NewTokenService(candidates, nil)
	return NewInterviewService(interviews, candidates, tokens, nil, nil, nil, nil)
}

func TestAssociateMediaCreatesInterview(t *testing.T) {
	candidates := newMemCandidateRepo()
	interviews := newMemInterviewRepo()
	cand := seedCandidate(t, candidates, nil)

	svc := newTestInterviewService(candidates, interviews)
	iv, err := svc.AssociateMedia(context.Background(), "tok123", "uploads/20260829/v.webm", "uploads/20260829/a.webm")
	if err != nil {
		t.Fatalf("AssociateMedia: %v", err)
	}

	if iv.CandidateID != cand.ID || iv.JobID != cand.JobID {
		t.Fatalf("interview not linked to candidate: %+v", iv)
	}
	if iv.Status != models.InterviewStatusCompleted {
		t.Fatalf("status = %q, want completed", iv.Status)
	}
	if iv.VideoURL == "" || iv.AudioURL == "" {
		t.Fatalf("media refs missing: %+v", iv)
	}

	// the token is burned
	got, _ := candidates.GetByID(context.Background(), cand.ID)
	if got.UsedAt == nil {
		t.Fatal("token not marked used")
	}
	if _, err := svc.AssociateMedia(context.Background(), "tok123", "v2", "a2"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected burned token to be rejected, got %v", err)
	}
}

func TestAssociateMediaReusesExistingInterview(t *testing.T) {
	candidates := newMemCandidateRepo()
	interviews := newMemInterviewRepo()
	cand := seedCandidate(t, candidates, nil)

	existing := &models.Interview{JobID: cand.JobID, CandidateID: cand.ID, Status: models.InterviewStatusPending}
	if err := interviews.Insert(context.Background(), existing); err != nil {
		t.Fatalf("seed interview: %v", err)
	}

	svc := newTestInterviewService(candidates, interviews)
	iv, err := svc.AssociateMedia(context.Background(), "tok123", "", "uploads/20260829/a.webm")
	if err != nil {
		t.Fatalf("AssociateMedia: %v", err)
	}
	if iv.ID != existing.ID {
		t.Fatalf("created a second interview: got %d, want %d", iv.ID, existing.ID)
	}
	if iv.AudioURL == "" || iv.VideoURL != "" {
		t.Fatalf("partial media not preserved: %+v", iv)
	}
}

func TestGetAndListSignMediaURLs(t *testing.T) {
	candidates := newMemCandidateRepo()
	interviews := newMemInterviewRepo()
	signer := &fakeSigner{}
	svc := NewInterviewService(interviews, candidates, NewTokenService(candidates, nil), nil, nil, signer, nil)
	ctx := context.Background()

	stored := &models.Interview{
		CandidateID: 1,
		Status:      models.InterviewStatusCompleted,
		VideoURL:    "uploads/20260829/v.webm",
		AudioURL:    "uploads/20260829/a.webm",
	}
	if err := interviews.Insert(ctx, stored); err != nil {
		t.Fatalf("seed: %v", err)
	}

	iv, err := svc.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if iv.VideoURL != "https://signed.example/uploads/20260829/v.webm" {
		t.Fatalf("video url not signed: %q", iv.VideoURL)
	}
	if iv.AudioURL != "https://signed.example/uploads/20260829/a.webm" {
		t.Fatalf("audio url not signed: %q", iv.AudioURL)
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].VideoURL != "https://signed.example/uploads/20260829/v.webm" {
		t.Fatalf("list rows not signed: %+v", rows)
	}

	// persisted rows keep the bare keys
	raw, _ := interviews.GetByID(ctx, stored.ID)
	if raw.VideoURL != "uploads/20260829/v.webm" || raw.AudioURL != "uploads/20260829/a.webm" {
		t.Fatalf("stored refs mutated: %+v", raw)
	}
}

func TestGetSigningFailureKeepsRawReference(t *testing.T) {
	candidates := newMemCandidateRepo()
	interviews := newMemInterviewRepo()
	signer := &fakeSigner{err: context.DeadlineExceeded}
	svc := NewInterviewService(interviews, candidates, NewTokenService(candidates, nil), nil, nil, signer, nil)
	ctx := context.Background()

	stored := &models.Interview{CandidateID: 1, AudioURL: "uploads/20260829/a.webm"}
	if err := interviews.Insert(ctx, stored); err != nil {
		t.Fatalf("seed: %v", err)
	}

	iv, err := svc.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if iv.AudioURL != "uploads/20260829/a.webm" {
		t.Fatalf("reference dropped on signing failure: %q", iv.AudioURL)
	}
	if iv.VideoURL != "" {
		t.Fatalf("empty ref must stay empty: %q", iv.VideoURL)
	}
}

func TestAssociateMediaRequiresMedia(t *testing.T) {
	candidates := newMemCandidateRepo()
	seedCandidate(t, candidates, nil)

	svc := newTestInterviewService(candidates, newMemInterviewRepo())
	if _, err := svc.AssociateMedia(context.Background(), "tok123", "", ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}
