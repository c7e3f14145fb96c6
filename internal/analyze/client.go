// ABOUTME: HTTP client for the hosted speech analysis service
// ABOUTME: Upload, job polling, summary generation and sentiment extraction

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/voxnote/voxnote/internal/store"
)

// ErrAnalysis reports a job the analysis service rejected or failed.
var ErrAnalysis = errors.New("analysis failed")

const (
	defaultPollInterval = 3 * time.Second
	defaultPollTimeout  = 10 * time.Minute

	summaryPrompt = "Provide a concise summary of this transcript in 2-3 sentences."
	summaryModel  = "anthropic/claude-3-7-sonnet-20250219"
)

// Config holds the analysis service connection settings.
type Config struct {
	BaseURL string
	APIKey  string

	// HTTPClient is optional; http.DefaultClient is used when nil.
	HTTPClient *http.Client

	// PollInterval is the delay between job status checks (default 3s).
	PollInterval time.Duration

	// PollTimeout bounds the total time spent waiting for a job (default 10m).
	PollTimeout time.Duration
}

// Client talks to the analysis service.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger
}

// Result is the outcome of a completed analysis job.
type Result struct {
	Transcript string
	Summary    string
	Sentiment  store.Sentiment
}

// NewClient creates an analysis client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analysis base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("analysis API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		httpClient:   httpClient,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       slog.Default().With("component", "analyze"),
	}, nil
}

// Analyze normalizes blob to WAV, uploads it, runs a transcription job with
// summarization and sentiment analysis, and waits for the result. Sentiment
// defaults to neutral when the service returns none, and the summary falls
// back to the job-level summary when the dedicated summary call yields
// nothing.
func (c *Client) Analyze(ctx context.Context, blob []byte, mimeType string) (*Result, error) {
	wav, err := NormalizeWAV(blob, mimeType)
	if err != nil {
		return nil, err
	}

	audioURL, err := c.upload(ctx, wav)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("audio uploaded", "bytes", len(wav))

	jobID, err := c.createJob(ctx, audioURL)
	if err != nil {
		return nil, err
	}
	c.logger.Info("analysis job created", "job_id", jobID)

	job, err := c.pollJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	summary := c.generateSummary(ctx, jobID)
	if summary == "" {
		summary = job.Summary
	}

	sentiment := job.Sentiment
	if sentiment == nil || sentiment.IsZero() {
		neutral := store.NeutralSentiment()
		sentiment = &neutral
	}

	return &Result{
		Transcript: job.Text,
		Summary:    summary,
		Sentiment:  *sentiment,
	}, nil
}

// upload sends the WAV body and returns the service-side audio URL.
func (c *Client) upload(ctx context.Context, wav []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	var resp struct {
		UploadURL string `json:"upload_url"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("uploading audio: %w", err)
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("%w: upload returned no audio URL", ErrAnalysis)
	}
	return resp.UploadURL, nil
}

// createJob submits a transcription job for the uploaded audio.
func (c *Client) createJob(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"audio_url":          audioURL,
		"summarization":      true,
		"sentiment_analysis": true,
	})
	if err != nil {
		return "", fmt.Errorf("encoding job request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating job request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("creating analysis job: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: job creation returned no id", ErrAnalysis)
	}
	return resp.ID, nil
}

// jobStatus is the polled job state.
type jobStatus struct {
	Status    string           `json:"status"`
	Text      string           `json:"text"`
	Summary   string           `json:"summary"`
	Error     string           `json:"error"`
	Sentiment *store.Sentiment `json:"sentiment_analysis"`
}

// pollJob waits until the job completes or fails. The wait is bounded by
// both ctx and the configured poll timeout.
func (c *Client) pollJob(ctx context.Context, jobID string) (*jobStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pollTimeout)
	defer cancel()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+jobID, nil)
		if err != nil {
			return nil, fmt.Errorf("creating status request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)

		var job jobStatus
		if err := c.do(req, &job); err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: polling aborted: %v", ErrAnalysis, context.Cause(ctx))
			}
			return nil, fmt.Errorf("polling job %s: %w", jobID, err)
		}

		switch job.Status {
		case "completed":
			return &job, nil
		case "error":
			reason := job.Error
			if reason == "" {
				reason = "no reason given"
			}
			return nil, fmt.Errorf("%w: job %s: %s", ErrAnalysis, jobID, reason)
		}

		c.logger.Debug("job still running", "job_id", jobID, "status", job.Status)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: polling aborted: %v", ErrAnalysis, ctx.Err())
		case <-time.After(c.pollInterval):
		}
	}
}

// generateSummary asks the service for a dedicated summary of the job's
// transcript. Failures degrade to an empty summary so the caller can fall
// back to the job-level one.
func (c *Client) generateSummary(ctx context.Context, jobID string) string {
	body, err := json.Marshal(map[string]any{
		"prompt":         summaryPrompt,
		"transcript_ids": []string{jobID},
		"final_model":    summaryModel,
	})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/lemur/v3/generate/task", bytes.NewReader(body))
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Response string `json:"response"`
	}
	if err := c.do(req, &resp); err != nil {
		c.logger.Warn("summary generation failed, falling back to job summary", "job_id", jobID, "error", err)
		return ""
	}
	return resp.Response
}

// do executes req and decodes a JSON body into out. Non-2xx responses are
// mapped to ErrAnalysis with the server's message when one is present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%w: %s (HTTP %d)", ErrAnalysis, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%w: HTTP %d", ErrAnalysis, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
