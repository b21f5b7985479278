package interview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kadrohq/kadro/internal/utils"
)

func TestClientVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tokens/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "tok-1" {
			t.Errorf("token not forwarded: %s", r.URL.RawQuery)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	if err := c.VerifyToken(context.Background()); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestClientVerifyTokenFailureCarriesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "INVALID_ARGUMENT",
			"message": "Invalid or expired token",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "expired")
	err := c.VerifyToken(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestClientNextQuestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			History []struct {
				Role string `json:"role"`
				Text string `json:"text"`
			} `json:"history"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.History) != 2 || req.History[1].Role != "user" {
			t.Errorf("history not forwarded: %+v", req.History)
		}
		json.NewEncoder(w).Encode(map[string]any{"question": "Sonraki soru?", "done": false})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	q, done, err := c.NextQuestion(context.Background(), []Turn{
		{Role: RoleAssistant, Text: Greeting, Seq: 1},
		{Role: RoleUser, Text: "cevap", Seq: 2},
	})
	if err != nil {
		t.Fatalf("next question: %v", err)
	}
	if done || q != "Sonraki soru?" {
		t.Fatalf("unexpected result %q done=%v", q, done)
	}
}

func TestClientAppendTurnPayload(t *testing.T) {
	var got appendTurnRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	err := c.AppendTurn(context.Background(), 9, Turn{Role: RoleUser, Text: "cevap", Seq: 4})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if got.InterviewID != 9 || got.SequenceNumber != 4 || got.Role != RoleUser || got.Content != "cevap" {
		t.Fatalf("bad payload %+v", got)
	}
}

func TestClientPresignAndTransfer(t *testing.T) {
	var uploaded []byte
	var uploadedType string
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		uploadedType = r.Header.Get("Content-Type")
		uploaded, _ = io.ReadAll(r.Body)
	}))
	defer storage.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req presignRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(UploadDestination{
			URL: storage.URL + "/put/" + req.FileName,
			Key: "uploads/" + req.FileName,
		})
	}))
	defer api.Close()

	c := NewClient(api.URL, "tok")
	dest, err := c.PresignUpload(context.Background(), "a.webm", "video/webm")
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if dest.Key != "uploads/a.webm" {
		t.Fatalf("bad key %q", dest.Key)
	}
	if err := c.TransferBlob(context.Background(), dest, []byte("blobdata"), "video/webm"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if string(uploaded) != "blobdata" || uploadedType != "video/webm" {
		t.Fatalf("blob not transferred verbatim: %q %q", uploaded, uploadedType)
	}
}

func TestClientAssociateMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req associateMediaRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.VideoURL != "v.webm" || req.AudioURL != "a.webm" {
			t.Errorf("bad refs %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]int64{"interview_id": 77})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	id, err := c.AssociateMedia(context.Background(), "v.webm", "a.webm")
	if err != nil {
		t.Fatalf("associate: %v", err)
	}
	if id != 77 {
		t.Fatalf("expected 77, got %d", id)
	}
}
