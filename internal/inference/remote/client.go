// Parley - Conversational Recommender Serving and Turn Orchestration
// Copyright 2026 Parley Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/parleyhq/parley

package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/parleyhq/parley/internal/inference"
	"github.com/parleyhq/parley/internal/metrics"
)

// maxErrorBodySize limits the maximum amount of response body read for error
// reporting. This prevents unbounded memory allocation when reading large
// error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// ErrNoBaseURL is returned by New when the runtime base URL is empty.
var ErrNoBaseURL = errors.New("remote: runtime base url required")

// Config holds the connection settings for a model runtime sidecar.
type Config struct {
	// BaseURL is the sidecar root, e.g. "http://localhost:9000".
	BaseURL string

	// Timeout bounds each individual runtime call.
	Timeout time.Duration

	// RequestsPerSecond and Burst shape the client-side rate limiter.
	// RequestsPerSecond == 0 disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the connection settings used when the operator
// configures nothing beyond the base URL.
func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		RequestsPerSecond: 50,
		Burst:             100,
	}
}

// Client speaks the model runtime HTTP protocol. It implements
// inference.Runtime and is safe for concurrent use; each call creates its
// own HTTP request.
//
// The separator token and model name are fetched once from /v1/meta at
// construction, so SepToken and Name never touch the network afterwards.
type Client struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	sepToken string
	model    string
}

var _ inference.Runtime = (*Client)(nil)

type encodeRequest struct {
	Text             string `json:"text"`
	MaxLength        int    `json:"max_length,omitempty"`
	Truncation       string `json:"truncation"`
	AddSpecialTokens bool   `json:"add_special_tokens"`
}

type encodeResponse struct {
	IDs []int `json:"ids"`
}

type decodeRequest struct {
	IDs               []int `json:"ids"`
	SkipSpecialTokens bool  `json:"skip_special_tokens"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

type padRequest struct {
	Sequences  [][]int `json:"sequences"`
	MaxLength  int     `json:"max_length"`
	MultipleOf int     `json:"multiple_of,omitempty"`
}

type scoreResponse struct {
	Logits [][]float64 `json:"logits"`
}

type generateRequest struct {
	inference.Batch
	Params inference.GenerateParams `json:"params"`
}

type metaResponse struct {
	SepToken string `json:"sep_token"`
	Model    string `json:"model"`
}

// New creates a runtime client and fetches the tokenizer metadata from the
// sidecar. The context bounds only that initial metadata call.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
	}

	var meta metaResponse
	if err := c.get(ctx, "meta", "/v1/meta", &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch runtime metadata: %w", err)
	}
	c.sepToken = meta.SepToken
	c.model = meta.Model

	return c, nil
}

// Encode tokenizes a single text.
func (c *Client) Encode(ctx context.Context, text string, opts inference.EncodeOptions) ([]int, error) {
	req := encodeRequest{
		Text:             text,
		MaxLength:        opts.MaxLength,
		Truncation:       opts.Truncation.String(),
		AddSpecialTokens: opts.AddSpecialTokens,
	}
	var resp encodeResponse
	if err := c.post(ctx, "encode", "/v1/encode", req, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// Decode renders token ids back to text.
func (c *Client) Decode(ctx context.Context, ids []int, skipSpecialTokens bool) (string, error) {
	req := decodeRequest{
		IDs:               ids,
		SkipSpecialTokens: skipSpecialTokens,
	}
	var resp decodeResponse
	if err := c.post(ctx, "decode", "/v1/decode", req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Pad aligns raw sequences into a batch.
func (c *Client) Pad(ctx context.Context, sequences [][]int, opts inference.PadOptions) (inference.Batch, error) {
	req := padRequest{
		Sequences:  sequences,
		MaxLength:  opts.MaxLength,
		MultipleOf: opts.MultipleOf,
	}
	var batch inference.Batch
	if err := c.post(ctx, "pad", "/v1/pad", req, &batch); err != nil {
		return inference.Batch{}, err
	}
	return batch, nil
}

// Score runs the recommendation head over a batch.
func (c *Client) Score(ctx context.Context, batch inference.Batch) ([][]float64, error) {
	var resp scoreResponse
	if err := c.post(ctx, "score", "/v1/score", batch, &resp); err != nil {
		return nil, err
	}
	return resp.Logits, nil
}

// Generate runs constrained decoding over a batch.
func (c *Client) Generate(ctx context.Context, batch inference.Batch, params inference.GenerateParams) (inference.Generation, error) {
	req := generateRequest{
		Batch:  batch,
		Params: params,
	}
	var gen inference.Generation
	if err := c.post(ctx, "generate", "/v1/generate", req, &gen); err != nil {
		return inference.Generation{}, err
	}
	return gen, nil
}

// SepToken returns the separator token fetched at construction.
func (c *Client) SepToken() string {
	return c.sepToken
}

// Name returns the model name reported by the sidecar.
func (c *Client) Name() string {
	return c.model
}

// post sends a JSON body to the sidecar and decodes the JSON reply.
func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, http.MethodPost, path, in, out)
	metrics.RecordRuntimeCall(op, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("runtime %s call failed: %w", op, err)
	}
	return nil
}

// get fetches a JSON document from the sidecar.
func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, http.MethodGet, path, nil, out)
	metrics.RecordRuntimeCall(op, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("runtime %s call failed: %w", op, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody := readBodyForError(resp.Body)
		return fmt.Errorf("runtime returned status %d: %s", resp.StatusCode, string(errBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
