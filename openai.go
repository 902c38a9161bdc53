package phylotree

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Embedding model used across the pipeline and reported by model-info
const (
	EmbeddingModelName  = "text-embedding-3-large"
	EmbeddingDimensions = 3072
)

// parseRetryAfter parses the Retry-After header value and returns duration
func parseRetryAfter(retryAfter string) time.Duration {
	if retryAfter == "" {
		return 0
	}

	// Try to parse as seconds (numeric value)
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try to parse as HTTP date format
	if retryTime, err := time.Parse(time.RFC1123, retryAfter); err == nil {
		return time.Until(retryTime)
	}

	return 0
}

// generateEmbedding calls OpenAI API to generate an embedding for text,
// retrying on rate limit errors
func generateEmbedding(text string) ([]float64, error) {
	apiKey := Config.OpenAIAPIKey

	// Create OpenAI client
	client := openai.NewClient(option.WithAPIKey(apiKey))

	// Retry configuration - increased for better resilience
	maxRetries := 5
	baseDelay := 5 * time.Second
	maxDelay := 120 * time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Generate embedding using text-embedding-3-large for superior semantic quality
		embedding, err := client.Embeddings.New(context.TODO(), openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
			Model:          openai.EmbeddingModelTextEmbedding3Large,
			EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
		})
		if err != nil {
			var apierr *openai.Error
			if errors.As(err, &apierr) && apierr.StatusCode == 429 {
				if attempt == maxRetries {
					return nil, fmt.Errorf("openAI rate limit exceeded after %d retries: %w", maxRetries, err)
				}

				// Check for Retry-After header
				retryDelay := parseRetryAfter(apierr.Response.Header.Get("Retry-After"))

				// If no Retry-After header or invalid, use exponential backoff
				if retryDelay <= 0 {
					retryDelay = baseDelay * time.Duration(1<<attempt) // 5s, 10s, 20s, 40s, 80s
				}

				// Cap the delay to prevent extremely long waits
				if retryDelay > maxDelay {
					retryDelay = maxDelay
				}

				log.Printf("Rate limit hit (attempt %d/%d), retrying in %v...", attempt+1, maxRetries+1, retryDelay)
				time.Sleep(retryDelay)
				continue
			}
			return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
		}

		if len(embedding.Data) == 0 {
			return nil, fmt.Errorf("no embedding data in response")
		}

		return embedding.Data[0].Embedding, nil
	}

	// This should never be reached due to the loop logic
	return nil, fmt.Errorf("unexpected error in retry loop")
}

// embedTexts generates embeddings for all texts concurrently, preserving input order
func embedTexts(texts []string) ([][]float64, error) {
	embeddings := make([][]float64, len(texts))
	errs := make([]error, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(idx int, t string) {
			defer wg.Done()
			embedding, err := generateEmbedding(t)
			if err != nil {
				errs[idx] = fmt.Errorf("failed to embed text %d: %w", idx, err)
				return
			}
			embeddings[idx] = embedding
		}(i, text)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return embeddings, nil
}
