package interview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kadrohq/kadro/internal/utils"
)

// Client is the typed HTTP client for the candidate-facing API surface. It is
// scoped to one session token. It satisfies TokenAPI, QuestionSource, TurnSink
// and UploadAPI, so a Session can be wired entirely against one value.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) VerifyToken(ctx context.Context) error {
	const op = "Client.VerifyToken"
	return c.doJSON(ctx, op, http.MethodPost, c.tokenURL("/api/v1/tokens/verify"), nil, nil)
}

func (c *Client) CandidateByToken(ctx context.Context) (*Candidate, error) {
	const op = "Client.CandidateByToken"
	var cand Candidate
	if err := c.doJSON(ctx, op, http.MethodGet, c.tokenURL("/api/v1/candidates/by-token"), nil, &cand); err != nil {
		return nil, err
	}
	return &cand, nil
}

type nextQuestionRequest struct {
	History []turnPayload `json:"history"`
}

type turnPayload struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type nextQuestionResponse struct {
	Question string `json:"question"`
	Done     bool   `json:"done"`
}

func (c *Client) NextQuestion(ctx context.Context, history []Turn) (string, bool, error) {
	const op = "Client.NextQuestion"

	req := nextQuestionRequest{History: make([]turnPayload, 0, len(history))}
	for _, t := range history {
		req.History = append(req.History, turnPayload{Role: t.Role, Text: t.Text})
	}

	var resp nextQuestionResponse
	if err := c.doJSON(ctx, op, http.MethodPost, c.baseURL+"/api/v1/interview/next-question", req, &resp); err != nil {
		return "", false, err
	}
	return resp.Question, resp.Done, nil
}

type appendTurnRequest struct {
	InterviewID    int64  `json:"interview_id"`
	Role           Role   `json:"role"`
	Content        string `json:"content"`
	SequenceNumber int    `json:"sequence_number"`
}

func (c *Client) AppendTurn(ctx context.Context, interviewID int64, t Turn) error {
	const op = "Client.AppendTurn"
	req := appendTurnRequest{
		InterviewID:    interviewID,
		Role:           t.Role,
		Content:        t.Text,
		SequenceNumber: t.Seq,
	}
	return c.doJSON(ctx, op, http.MethodPost, c.baseURL+"/api/v1/conversations/messages", req, nil)
}

type presignRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

func (c *Client) PresignUpload(ctx context.Context, fileName, contentType string) (UploadDestination, error) {
	const op = "Client.PresignUpload"
	var dest UploadDestination
	req := presignRequest{FileName: fileName, ContentType: contentType}
	if err := c.doJSON(ctx, op, http.MethodPost, c.tokenURL("/api/v1/uploads/presign"), req, &dest); err != nil {
		return UploadDestination{}, err
	}
	return dest, nil
}

// TransferBlob sends the raw bytes straight to the presigned destination,
// bypassing the application server.
func (c *Client) TransferBlob(ctx context.Context, dest UploadDestination, blob []byte, contentType string) error {
	const op = "Client.TransferBlob"

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, dest.URL, bytes.NewReader(blob))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to build upload request", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "blob transfer failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return utils.E(utils.CodeUnavailable, op, fmt.Sprintf("storage responded %d", resp.StatusCode), nil)
	}
	return nil
}

type associateMediaRequest struct {
	VideoURL string `json:"video_url"`
	AudioURL string `json:"audio_url"`
}

type associateMediaResponse struct {
	InterviewID int64 `json:"interview_id"`
}

func (c *Client) AssociateMedia(ctx context.Context, videoRef, audioRef string) (int64, error) {
	const op = "Client.AssociateMedia"
	req := associateMediaRequest{VideoURL: videoRef, AudioURL: audioRef}
	var resp associateMediaResponse
	if err := c.doJSON(ctx, op, http.MethodPost, c.tokenURL("/api/v1/interviews/media"), req, &resp); err != nil {
		return 0, err
	}
	return resp.InterviewID, nil
}

func (c *Client) tokenURL(path string) string {
	return c.baseURL + path + "?token=" + url.QueryEscape(c.token)
}

func (c *Client) doJSON(ctx context.Context, op, method, rawurl string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return utils.E(utils.CodeInternal, op, "failed to encode request", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to build request", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(op, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to decode response", err)
	}
	return nil
}

func decodeAPIError(op string, resp *http.Response) error {
	var apiErr struct {
		Code    utils.Code `json:"code"`
		Message string     `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		code := apiErr.Code
		if code == "" {
			code = utils.CodeInternal
		}
		return utils.E(code, op, apiErr.Message, nil)
	}
	return utils.E(utils.CodeInternal, op, fmt.Sprintf("server responded %d", resp.StatusCode), nil)
}
