// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/nrchnnas/recsys/internal/metrics"
)

// ErrEmptyResponse is returned when the API answers with fewer vectors than inputs.
var ErrEmptyResponse = errors.New("embedding response missing vectors")

// OpenAIConfig configures the remote provider.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimensions        int
	BatchSize         int
	RequestsPerSecond float64
	Burst             int
}

// OpenAIProvider calls an OpenAI-compatible embeddings endpoint. Calls are
// rate limited and pass through a circuit breaker that opens after five
// consecutive failures.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]Vector]
	logger     zerolog.Logger
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates the provider. An API key is required unless a
// custom BaseURL points at a server that does not need one.
func NewOpenAIProvider(cfg OpenAIConfig, logger zerolog.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, errors.New("openai provider requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	p := &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:     logger.With().Str("component", "embedding").Str("provider", "openai").Logger(),
	}

	cbName := "openai-embeddings"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	p.cb = gobreaker.NewCircuitBreaker[[]Vector](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return p, nil
}

// Name identifies the model and requested dimensions.
func (p *OpenAIProvider) Name() string {
	if p.dimensions > 0 {
		return fmt.Sprintf("openai-%s-%d", p.model, p.dimensions)
	}
	return "openai-" + p.model
}

// Embed vectorizes texts in batches. Blank texts are not sent.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))

	positions := make([]int, 0, len(texts))
	for i, t := range texts {
		if t != "" {
			positions = append(positions, i)
		}
	}

	for start := 0; start < len(positions); start += p.batchSize {
		end := start + p.batchSize
		if end > len(positions) {
			end = len(positions)
		}
		batch := positions[start:end]

		inputs := make([]string, len(batch))
		for i, pos := range batch {
			inputs[i] = texts[pos]
		}

		vectors, err := p.embedBatch(ctx, inputs)
		if err != nil {
			return nil, err
		}
		for i, pos := range batch {
			out[pos] = vectors[i]
		}
	}
	return out, nil
}

func (p *OpenAIProvider) embedBatch(ctx context.Context, inputs []string) ([]Vector, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding rate limiter: %w", err)
	}

	vectors, err := p.cb.Execute(func() ([]Vector, error) {
		req := openai.EmbeddingRequest{
			Input: inputs,
			Model: openai.EmbeddingModel(p.model),
		}
		if p.dimensions > 0 {
			req.Dimensions = p.dimensions
		}

		resp, err := p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("openai embeddings: %w", err)
		}
		if len(resp.Data) != len(inputs) {
			return nil, ErrEmptyResponse
		}

		vectors := make([]Vector, len(inputs))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(inputs) {
				return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
			}
			vectors[d.Index] = Vector(d.Embedding)
		}
		return vectors, nil
	})

	metrics.RecordEmbeddingRequest("openai", err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.cb.Name(), "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(p.cb.Name(), "failure").Inc()
		}
		p.logger.Warn().Err(err).Int("batch", len(inputs)).Msg("embedding batch failed")
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(p.cb.Name(), "success").Inc()
	return vectors, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
