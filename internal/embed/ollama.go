package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Defaults match the reference model: a small sentence transformer with
// 384-dimensional output served by a local Ollama instance.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "all-minilm"
	DefaultDimensions = 384
)

// Ollama is a Provider backed by a local Ollama server.
//
// The model pipeline is constructed lazily: the first Embed call issues a
// warm-up inference that loads the model server-side. Concurrent callers
// arriving before the warm-up completes share the same in-flight
// initialization instead of starting it again.
type Ollama struct {
	baseURL string
	model   string
	dims    int
	httpc   *http.Client
	logger  *slog.Logger

	init  singleflight.Group
	ready atomic.Bool
}

// NewOllama creates a provider. Empty arguments fall back to defaults.
func NewOllama(baseURL, model string, dims int, timeout time.Duration, logger *slog.Logger) *Ollama {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if dims <= 0 {
		dims = DefaultDimensions
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		dims:    dims,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Dimensions returns the fixed vector length of the configured model.
func (o *Ollama) Dimensions() int {
	return o.dims
}

// Embed returns the L2-normalized vector for text, or nil when the input is
// blank or the model is unavailable. Blank input never touches the model.
func (o *Ollama) Embed(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := o.ensureReady(ctx); err != nil {
		o.logger.Warn("embedding model unavailable", slog.String("error", err.Error()))
		return nil
	}
	vec, err := o.infer(ctx, text)
	if err != nil {
		o.logger.Warn("embedding inference failed", slog.String("error", err.Error()))
		return nil
	}
	if len(vec) != o.dims {
		o.logger.Warn("embedding dimension mismatch",
			slog.Int("got", len(vec)), slog.Int("want", o.dims))
		return nil
	}
	return normalize(vec)
}

// ensureReady performs the one-time warm-up inference. A failed warm-up is
// retried on the next call; a successful one is never repeated.
func (o *Ollama) ensureReady(ctx context.Context) error {
	if o.ready.Load() {
		return nil
	}
	_, err, _ := o.init.Do("init", func() (any, error) {
		if o.ready.Load() {
			return nil, nil
		}
		if _, err := o.infer(ctx, "warmup"); err != nil {
			return nil, fmt.Errorf("embed: warm up model: %w", err)
		}
		o.ready.Store(true)
		o.logger.Info("embedding model ready",
			slog.String("model", o.model), slog.Int("dimensions", o.dims))
		return nil, nil
	})
	return err
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (o *Ollama) infer(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: server returned %d: %s", resp.StatusCode, raw)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}

	vec := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// normalize scales a vector to unit length. Zero vectors are returned
// unchanged.
func normalize(vec []float32) []float32 {
	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	mag = math.Sqrt(mag)
	if mag == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / mag)
	}
	return out
}
