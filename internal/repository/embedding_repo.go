package repository

import (
	"context"
	"fmt"
	"time"

	"signal-desk/config"
	"signal-desk/pkg/logger"
	"signal-desk/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// EmbeddingRepository turns text into a dense vector.
type EmbeddingRepository interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type geminiEmbeddingRepository struct {
	cfg            config.Ingest
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	tokenLimiter   *ratelimit.TokenLimiter
	genAiClient    *genai.Client
}

func NewGeminiEmbeddingRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (EmbeddingRepository, error) {
	perMinute := cfg.Ingest.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)

	genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiEmbeddingRepository{
		cfg:            cfg.Ingest,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Ingest.MaxTokenPerMinute),
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiEmbeddingRepository) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := ratelimit.EstimateTokens(text)
	if err := r.tokenLimiter.Wait(ctx, tokens); err != nil {
		return nil, fmt.Errorf("failed to wait for embedding token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for embedding request limit: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}
	resp, err := r.genAiClient.Models.EmbedContent(ctx, r.cfg.EmbeddingModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("invalid response from embedding model: no embedding found")
	}

	r.logger.DebugContext(ctx, "Embedded text",
		logger.IntField("estimated_tokens", tokens),
		logger.IntField("dimensions", len(resp.Embeddings[0].Values)),
		logger.IntField("tokens_left", r.tokenLimiter.GetRemaining()),
	)
	return resp.Embeddings[0].Values, nil
}
