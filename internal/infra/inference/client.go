// Package inference talks to the model runtime that hosts summarization and
// text-to-text pipelines.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/textcraft/internal/domain/generation"
)

const errorBodyLimit = 4 << 10

// Client loads pipelines on a remote inference runtime.
type Client struct {
	apiKey     string
	baseURL    string
	cacheDir   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a runtime client. timeout bounds each HTTP call,
// including generation.
func NewClient(baseURL, apiKey, cacheDir string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("inference base url cannot be empty")
	}
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "inference.client"),
	}, nil
}

type loadRequest struct {
	Task      generation.Task `json:"task"`
	Model     string          `json:"model"`
	Tokenizer string          `json:"tokenizer,omitempty"`
	CacheDir  string          `json:"cache_dir,omitempty"`
}

type loadResponse struct {
	PipelineID string `json:"pipeline_id"`
}

type generateRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters generation.Parameters `json:"parameters"`
}

type generateOutput struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

// Load asks the runtime to materialize a pipeline for ref and returns a handle to it.
func (c *Client) Load(ctx context.Context, ref generation.ModelReference, task generation.Task) (generation.Generator, error) {
	var out loadResponse
	err := c.post(ctx, "/v1/pipelines", loadRequest{
		Task:      task,
		Model:     ref.Path,
		Tokenizer: ref.Tokenizer,
		CacheDir:  c.cacheDir,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("load pipeline: %w", err)
	}
	if out.PipelineID == "" {
		return nil, errors.New("load pipeline: runtime returned empty pipeline id")
	}
	c.logger.Info("pipeline ready", "pipeline_id", out.PipelineID, "task", task, "model", ref.Path)
	return &remotePipeline{client: c, id: out.PipelineID, task: task}, nil
}

type remotePipeline struct {
	client *Client
	id     string
	task   generation.Task
}

// Generate runs the pipeline once. Output text is returned as produced.
func (p *remotePipeline) Generate(ctx context.Context, input string, params generation.Parameters) (string, error) {
	var outputs []generateOutput
	path := "/v1/pipelines/" + url.PathEscape(p.id) + "/generate"
	if err := p.client.post(ctx, path, generateRequest{Inputs: input, Parameters: params}, &outputs); err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(outputs) == 0 {
		return "", errors.New("generate: runtime returned no outputs")
	}
	if p.task == generation.TaskSummarization {
		if outputs[0].SummaryText != "" {
			return outputs[0].SummaryText, nil
		}
	} else if outputs[0].GeneratedText != "" {
		return outputs[0].GeneratedText, nil
	}
	return "", fmt.Errorf("generate: output missing text for task %s", p.task)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("inference request failed: status=%d body=%s", resp.StatusCode, string(data))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ generation.Loader = (*Client)(nil)
