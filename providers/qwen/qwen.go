// Package qwen streams chat completions from Qwen-hosting endpoints.
// The same logical model carries different IDs on DashScope, SiliconFlow and
// self-hosted gateways, so requested model names are normalized per endpoint.
package qwen

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
	QwenBaseURL  = "https://api.qwen.ai/v1"
	DefaultModel = "qwen-plus"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// StreamProvider implements models.StreamProvider for Qwen.
type StreamProvider struct{}

// New creates a Qwen stream provider.
func New() *StreamProvider {
	return &StreamProvider{}
}

// normalizeModelID maps generic Qwen model names onto the ID scheme of the
// endpoint host. Unrecognized names pass through unchanged.
func normalizeModelID(requested, endpointBase string) string {
	switch strings.ToLower(requested) {
	case "qwen2.5-72b", "qwen3-4b":
	default:
		return requested
	}
	host := strings.ToLower(endpointBase)
	if strings.Contains(host, "dashscope") {
		return "qwen-plus"
	}
	if strings.Contains(host, "siliconflow") {
		return "Qwen/Qwen2.5-72B-Instruct"
	}
	return "qwen2.5-72b-instruct"
}

// resolveModel picks the model ID: explicit env pin, then the normalized
// request model, then the deployment default, then the package default.
func resolveModel(request models.ChatRequest, endpointBase string) string {
	if pinned := os.Getenv("QWEN_MODEL_ID"); pinned != "" {
		return pinned
	}
	if request.Model != "" {
		return normalizeModelID(request.Model, endpointBase)
	}
	if def := os.Getenv("DEFAULT_MODEL"); def != "" {
		return def
	}
	return DefaultModel
}

// GenerateStreamResponse opens one streaming chat completion call and emits a
// normalized chunk sequence.
func (p *StreamProvider) GenerateStreamResponse(ctx context.Context, request models.ChatRequest) (<-chan models.StreamChunk, <-chan error) {
	chunkChan := make(chan models.StreamChunk)
	errChan := make(chan error, 1)

	go func() {
		defer close(chunkChan)
		defer close(errChan)

		apiKey := os.Getenv("QWEN_API_KEY")
		if apiKey == "" {
			errChan <- &models.ConfigurationError{Variable: "QWEN_API_KEY"}
			return
		}
		endpointBase := os.Getenv("QWEN_API_ENDPOINT")
		if endpointBase == "" {
			endpointBase = QwenBaseURL
		}
		url := strings.TrimRight(endpointBase, "/") + "/chat/completions"

		model := resolveModel(request, endpointBase)

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
				Provider:   "qwen",
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
					Provider:       request.ProviderOrDefault("qwen"),
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
				log.Printf("Warning: failed to parse qwen stream chunk: %v", err)
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
	}()

	return chunkChan, errChan
}
