package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sketch-guess/internal/surface"
)

// HTTPBackend talks to a doodle classifier served over HTTP
// (GET /healthz, POST /classify).
type HTTPBackend struct {
	baseURL string
	topK    int
	client  *http.Client
}

type httpClassifyRequest struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Data   []float32 `json:"data"`
	TopK   int       `json:"top_k"`
}

type httpHealthResponse struct {
	Ready bool `json:"ready"`
}

var errModelLoading = errors.New("model is still loading")

func NewHTTPBackend(baseURL string, topK int, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		topK:    topK,
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBackend) Name() string { return "http" }

func (b *HTTPBackend) Load(ctx context.Context) error {
	if b.baseURL == "" {
		return errors.New("classifier URL is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to build classifier health request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach classifier: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read classifier health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier health check failed (%d)", resp.StatusCode)
	}
	var health httpHealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("failed to parse classifier health response: %w", err)
	}
	if !health.Ready {
		return errModelLoading
	}
	return nil
}

func (b *HTTPBackend) Classify(ctx context.Context, in Input) (Reply, error) {
	if in.Normalized == nil {
		return Reply{}, errors.New("classifier input is not normalized")
	}
	bounds := in.Normalized.Bounds()
	payload, err := json.Marshal(httpClassifyRequest{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Data:   surface.Tensor(in.Normalized),
		TopK:   b.topK,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build classify request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/classify", bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to reach classifier: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to read classify response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg := parseErrorMessage(body); msg != "" {
			return Reply{}, fmt.Errorf("classify request failed (%d): %s", resp.StatusCode, msg)
		}
		return Reply{}, fmt.Errorf("classify request failed (%d)", resp.StatusCode)
	}

	var reply Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return Reply{}, fmt.Errorf("failed to parse classify response: %w", err)
	}
	return reply, nil
}

func parseErrorMessage(body []byte) string {
	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Error) == 0 {
		return ""
	}
	return ErrorText(parsed.Error)
}

// ErrorText renders a raw error slot ("msg", {"message": "msg"} or anything
// else) as a single line.
func ErrorText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return strings.TrimSpace(obj.Message)
	}
	return strings.TrimSpace(string(raw))
}
