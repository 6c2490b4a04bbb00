package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

// RestSuggestionClient consumes the reply-suggestion service as an opaque
// collaborator: recent thread context in, candidate reply strings out.
type RestSuggestionClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRestSuggestionClient(baseURL string, timeout time.Duration) *RestSuggestionClient {
	return &RestSuggestionClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type suggestionRequest struct {
	ConversationID string              `json:"conversationId"`
	Messages       []suggestionContext `json:"messages"`
}

type suggestionContext struct {
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

type suggestionEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Suggestions []string `json:"suggestions"`
	} `json:"data"`
}

func (sc *RestSuggestionClient) SuggestReplies(ctx context.Context, conversationID string, recentMessages []entity.Message) ([]string, error) {
	req := suggestionRequest{ConversationID: conversationID}
	for _, m := range recentMessages {
		req.Messages = append(req.Messages, suggestionContext{
			SenderID: m.SenderID,
			Content:  m.Content,
		})
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Internal("Failed to marshal suggestion request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", sc.baseURL+"/suggest-replies", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Internal("Failed to create suggestion request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := sc.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Internal("Suggestion service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Internal("Failed to read suggestion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Internal(fmt.Sprintf("Suggestion service returned status %d", resp.StatusCode), nil)
	}

	var envelope suggestionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Internal("Failed to parse suggestion response", err)
	}
	if !envelope.Success {
		return nil, errors.Internal("Suggestion service reported failure", nil)
	}

	return envelope.Data.Suggestions, nil
}
