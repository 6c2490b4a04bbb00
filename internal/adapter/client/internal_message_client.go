package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

// InternalMessageClient talks to the team message store. Its envelope differs
// from the partner store (no priority/category/tags, different field names),
// so normalization default-fills the gaps.
type InternalMessageClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInternalMessageClient(baseURL string, timeout time.Duration) *InternalMessageClient {
	return &InternalMessageClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type internalAttachmentPayload struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	Ref         string `json:"ref"`
}

type internalMessagePayload struct {
	ID          string                      `json:"id"`
	UserID      string                      `json:"userId"`
	From        string                      `json:"from"`
	Body        string                      `json:"body"`
	IsRead      bool                        `json:"isRead"`
	SentAt      time.Time                   `json:"sentAt"`
	Attachments []internalAttachmentPayload `json:"attachments"`
}

type internalMessagesEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Messages []internalMessagePayload `json:"messages"`
	} `json:"data"`
}

type internalSendRequest struct {
	RecipientID string                      `json:"recipientId"`
	From        string                      `json:"from"`
	Body        string                      `json:"body"`
	Attachments []internalAttachmentPayload `json:"attachments,omitempty"`
}

type internalSendEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Message internalMessagePayload `json:"message"`
	} `json:"data"`
}

func (ic *InternalMessageClient) FetchMessages(ctx context.Context, ownerID string, since *time.Time) ([]entity.Message, error) {
	query := url.Values{}
	query.Set("userId", ownerID)
	if since != nil {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", ic.baseURL+"/internal-messages?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.FetchNetwork("Failed to create internal store request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := ic.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.FetchNetwork("Internal message store unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.FetchNetwork("Failed to read internal store response", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("FetchMessages Error: internal store returned %d for user %s", resp.StatusCode, ownerID)
		return nil, errors.FetchNetwork(fmt.Sprintf("Internal message store returned status %d", resp.StatusCode), nil)
	}

	var envelope internalMessagesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.FetchDecode("Failed to parse internal store response", err)
	}
	if !envelope.Success {
		return nil, errors.FetchNetwork("Internal message store reported failure", nil)
	}

	messages := make([]entity.Message, 0, len(envelope.Data.Messages))
	for _, p := range envelope.Data.Messages {
		messages = append(messages, mapInternalMessage(p))
	}
	return messages, nil
}

func (ic *InternalMessageClient) SendMessage(ctx context.Context, recipientID, senderID, content string, attachments []entity.Attachment) (*entity.Message, error) {
	sendReq := internalSendRequest{
		RecipientID: recipientID,
		From:        senderID,
		Body:        content,
	}
	for _, a := range attachments {
		sendReq.Attachments = append(sendReq.Attachments, internalAttachmentPayload{
			Name:        a.Name,
			Size:        a.Size,
			ContentType: a.MimeType,
			Ref:         a.StorageRef,
		})
	}

	jsonData, err := json.Marshal(sendReq)
	if err != nil {
		return nil, errors.Send("Failed to marshal internal send request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", ic.baseURL+"/internal-messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Send("Failed to create internal send request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := ic.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Send("Internal message store unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Send("Failed to read internal send response", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("SendMessage Error: internal store returned %d: %s", resp.StatusCode, string(body))
		return nil, errors.Send(fmt.Sprintf("Internal message store returned status %d", resp.StatusCode), nil)
	}

	var envelope internalSendEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Send("Failed to parse internal send response", err)
	}
	if !envelope.Success {
		return nil, errors.Send("Internal message store rejected the message", nil)
	}

	message := mapInternalMessage(envelope.Data.Message)
	return &message, nil
}

func mapInternalMessage(p internalMessagePayload) entity.Message {
	var attachments []entity.Attachment
	for _, a := range p.Attachments {
		attachments = append(attachments, entity.Attachment{
			Name:       a.Name,
			Size:       a.Size,
			MimeType:   a.ContentType,
			StorageRef: a.Ref,
		})
	}

	return entity.Message{
		ID:                  p.ID,
		ConversationOwnerID: p.UserID,
		SenderID:            p.From,
		Content:             p.Body,
		Priority:            defaultPriority,
		Category:            defaultCategory,
		Tags:                []string{},
		Status:              entity.MessageStatusSent,
		Attachments:         attachments,
		IsRead:              p.IsRead,
		CreatedAt:           p.SentAt,
	}
}
