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

const (
	defaultPriority = "normal"
	defaultCategory = "general"
)

// ExternalMessageClient talks to the B2B partner message store and maps its
// envelope into the common Message shape.
type ExternalMessageClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewExternalMessageClient(baseURL string, timeout time.Duration) *ExternalMessageClient {
	return &ExternalMessageClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type externalAttachmentPayload struct {
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	MimeType   string `json:"mimeType"`
	StorageKey string `json:"storageKey"`
}

type externalMessagePayload struct {
	ID          string                      `json:"id"`
	PartnerID   string                      `json:"partnerId"`
	SenderID    string                      `json:"senderId"`
	Content     string                      `json:"content"`
	Priority    string                      `json:"priority"`
	Category    string                      `json:"category"`
	Tags        []string                    `json:"tags"`
	Read        bool                        `json:"read"`
	CreatedAt   time.Time                   `json:"createdAt"`
	Attachments []externalAttachmentPayload `json:"attachments"`
}

type externalMessagesEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Messages []externalMessagePayload `json:"messages"`
	} `json:"data"`
}

type externalSendRequest struct {
	RecipientID string                      `json:"recipientId"`
	SenderID    string                      `json:"senderId"`
	Content     string                      `json:"content"`
	Attachments []externalAttachmentPayload `json:"attachments,omitempty"`
}

type externalSendEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Message externalMessagePayload `json:"message"`
	} `json:"data"`
}

func (ec *ExternalMessageClient) FetchMessages(ctx context.Context, ownerID string, since *time.Time) ([]entity.Message, error) {
	query := url.Values{}
	query.Set("partnerId", ownerID)
	if since != nil {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", ec.baseURL+"/external-messages?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.FetchNetwork("Failed to create external store request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := ec.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.FetchNetwork("External message store unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.FetchNetwork("Failed to read external store response", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("FetchMessages Error: external store returned %d for partner %s", resp.StatusCode, ownerID)
		return nil, errors.FetchNetwork(fmt.Sprintf("External message store returned status %d", resp.StatusCode), nil)
	}

	var envelope externalMessagesEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.FetchDecode("Failed to parse external store response", err)
	}
	if !envelope.Success {
		return nil, errors.FetchNetwork("External message store reported failure", nil)
	}

	// Zero messages is a normal result, never an error.
	messages := make([]entity.Message, 0, len(envelope.Data.Messages))
	for _, p := range envelope.Data.Messages {
		messages = append(messages, mapExternalMessage(p))
	}
	return messages, nil
}

func (ec *ExternalMessageClient) SendMessage(ctx context.Context, recipientID, senderID, content string, attachments []entity.Attachment) (*entity.Message, error) {
	sendReq := externalSendRequest{
		RecipientID: recipientID,
		SenderID:    senderID,
		Content:     content,
	}
	for _, a := range attachments {
		sendReq.Attachments = append(sendReq.Attachments, externalAttachmentPayload{
			FileName:   a.Name,
			FileSize:   a.Size,
			MimeType:   a.MimeType,
			StorageKey: a.StorageRef,
		})
	}

	jsonData, err := json.Marshal(sendReq)
	if err != nil {
		return nil, errors.Send("Failed to marshal external send request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", ec.baseURL+"/external-messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Send("Failed to create external send request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := ec.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Send("External message store unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Send("Failed to read external send response", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("SendMessage Error: external store returned %d: %s", resp.StatusCode, string(body))
		return nil, errors.Send(fmt.Sprintf("External message store returned status %d", resp.StatusCode), nil)
	}

	var envelope externalSendEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Send("Failed to parse external send response", err)
	}
	if !envelope.Success {
		return nil, errors.Send("External message store rejected the message", nil)
	}

	message := mapExternalMessage(envelope.Data.Message)
	return &message, nil
}

func mapExternalMessage(p externalMessagePayload) entity.Message {
	priority := p.Priority
	if priority == "" {
		priority = defaultPriority
	}
	category := p.Category
	if category == "" {
		category = defaultCategory
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	var attachments []entity.Attachment
	for _, a := range p.Attachments {
		attachments = append(attachments, entity.Attachment{
			Name:       a.FileName,
			Size:       a.FileSize,
			MimeType:   a.MimeType,
			StorageRef: a.StorageKey,
		})
	}

	return entity.Message{
		ID:                  p.ID,
		ConversationOwnerID: p.PartnerID,
		SenderID:            p.SenderID,
		Content:             p.Content,
		Priority:            priority,
		Category:            category,
		Tags:                tags,
		Status:              entity.MessageStatusSent,
		Attachments:         attachments,
		IsRead:              p.Read,
		CreatedAt:           p.CreatedAt,
	}
}
