// Package kimi streams chat completions from the Moonshot Kimi API.
package kimi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aiweb-chat/aiweb/models"
)

const (
	KimiBaseURL  = "https://api.moonshot.cn/v1"
	DefaultModel = "kimi-k2-0711-preview"
)

// Streams can be long, but not unbounded.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

// StreamProvider implements models.StreamProvider for Kimi.
type StreamProvider struct{}

// New creates a Kimi stream provider.
func New() *StreamProvider {
	return &StreamProvider{}
}

// GenerateStreamResponse opens one streaming chat completion call and emits a
// normalized chunk sequence.
func (p *StreamProvider) GenerateStreamResponse(ctx context.Context, request models.ChatRequest) (<-chan models.StreamChunk, <-chan error) {
	chunkChan := make(chan models.StreamChunk)
	errChan := make(chan error, 1)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		apiKey := os.Getenv("KIMI_API_KEY")
		if apiKey == "" {
			errChan <- &models.ConfigurationError{Variable: "KIMI_API_KEY"}
			return
		}
		endpointBase := os.Getenv("KIMI_API_ENDPOINT")
		if endpointBase == "" {
			endpointBase = KimiBaseURL
		}
		url := strings.TrimRight(endpointBase, "/") + "/chat/completions"

		model := os.Getenv("KIMI_MODEL_ID")
		if model == "" {
			model = request.Model
		}
		if model == "" {
			model = DefaultModel
		}

		payload := ChatCompletionRequest{
			Model:       model,
			Messages:    []Message{{Role: "user", Content: request.Message}},
			MaxTokens:   request.MaxTokens,
			Temperature: request.Temperature,
			Stream:      true,
		}
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			errChan <- fmt.Errorf("failed to marshal request body: %w", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBytes))
		if err != nil {
			errChan <- fmt.Errorf("failed to create HTTP request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := httpClient.Do(req)
		if err != nil {
			errChan <- fmt.Errorf("HTTP request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errChan <- &models.ProviderHTTPError{
				Provider:   "kimi",
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(body),
			}
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var full strings.Builder
		var usage *models.Usage

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")

			if data == "[DONE]" {
				if usage == nil {
					usage = &models.Usage{}
				}
				final := models.ChatResponse{
					Message:        full.String(),
					ConversationID: request.ConversationIDOrNew(),
					Model:          model,
					Provider:       request.ProviderOrDefault("kimi"),
					Usage:          usage,
				}
				select {
				case chunkChan <- models.StreamChunk{Done: true, Response: &final}:
				case <-ctx.Done():
				}
				return
			}

			var envelope StreamResponse
			if err := json.Unmarshal([]byte(data), &envelope); err != nil {
				// Some backends interleave keep-alive lines; skip them.
				log.Printf("Warning: failed to parse kimi stream chunk: %v", err)
				continue
			}
			if envelope.Usage != nil {
				usage = envelope.Usage
			}
			if len(envelope.Choices) > 0 {
				content := envelope.Choices[0].Delta.Content
				if content != "" {
					full.WriteString(content)
					select {
					case chunkChan <- models.StreamChunk{Chunk: content}:
					case <-ctx.Done():
						return
					}
				}
			}
		}

		if err := scanner.Err(); err != nil {
			errChan <- fmt.Errorf("error reading stream: %w", err)
		}
		// Stream ended without [DONE]: no final record is fabricated.
	}()

	return chunkChan, errChan
}
