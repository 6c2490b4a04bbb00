package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

func TestExternalFetchMapsEnvelopeAndDefaults(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"partnerId": r.URL.Query().Get("partnerId"),
			"since":     r.URL.Query().Get("since"),
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"messages": []map[string]interface{}{
					{
						"id":        "m1",
						"partnerId": "P1",
						"senderId":  "P1",
						"content":   "New collection catalog attached",
						"priority":  "high",
						"category":  "catalog",
						"tags":      []string{"spring"},
						"read":      false,
						"createdAt": "2026-03-01T10:00:00Z",
						"attachments": []map[string]interface{}{
							{"fileName": "catalog.pdf", "fileSize": 2048, "mimeType": "application/pdf", "storageKey": "files/catalog.pdf"},
						},
					},
					{
						"id":        "m2",
						"partnerId": "P1",
						"senderId":  "P1",
						"content":   "no metadata on this one",
						"read":      true,
						"createdAt": "2026-03-01T10:05:00Z",
					},
				},
			},
		})
	}))
	defer server.Close()

	ec := NewExternalMessageClient(server.URL, time.Second)
	since := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	messages, err := ec.FetchMessages(context.Background(), "P1", &since)
	require.NoError(t, err)

	assert.Equal(t, "P1", gotQuery["partnerId"])
	assert.Equal(t, "2026-03-01T09:00:00Z", gotQuery["since"])

	require.Len(t, messages, 2)
	assert.Equal(t, "high", messages[0].Priority)
	assert.Equal(t, "catalog", messages[0].Category)
	require.Len(t, messages[0].Attachments, 1)
	assert.Equal(t, "catalog.pdf", messages[0].Attachments[0].Name)
	assert.Equal(t, "files/catalog.pdf", messages[0].Attachments[0].StorageRef)

	// Missing metadata is default-filled, never left empty.
	assert.Equal(t, "normal", messages[1].Priority)
	assert.Equal(t, "general", messages[1].Category)
	assert.NotNil(t, messages[1].Tags)
	assert.Equal(t, entity.MessageStatusSent, messages[1].Status)
}

func TestExternalFetchEmptyResultIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"messages": []interface{}{}},
		})
	}))
	defer server.Close()

	ec := NewExternalMessageClient(server.URL, time.Second)
	messages, err := ec.FetchMessages(context.Background(), "P1", nil)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestExternalFetchHTTPFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	ec := NewExternalMessageClient(server.URL, time.Second)
	_, err := ec.FetchMessages(context.Background(), "P1", nil)
	assert.True(t, errors.Is(err, "FETCH_NETWORK"))
}

func TestExternalFetchMalformedPayloadIsDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	ec := NewExternalMessageClient(server.URL, time.Second)
	_, err := ec.FetchMessages(context.Background(), "P1", nil)
	assert.True(t, errors.Is(err, "FETCH_DECODE"))
}

func TestExternalSendMapsConfirmedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "P1", req["recipientId"])
		assert.Equal(t, "dashboard", req["senderId"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"message": map[string]interface{}{
					"id":        "srv-1",
					"partnerId": "P1",
					"senderId":  "dashboard",
					"content":   req["content"],
					"createdAt": "2026-03-01T10:00:00Z",
				},
			},
		})
	}))
	defer server.Close()

	ec := NewExternalMessageClient(server.URL, time.Second)
	sent, err := ec.SendMessage(context.Background(), "P1", "dashboard", "On its way", nil)
	require.NoError(t, err)
	assert.Equal(t, "srv-1", sent.ID)
	assert.Equal(t, "On its way", sent.Content)
}

func TestExternalSendRejectionIsSendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ec := NewExternalMessageClient(server.URL, time.Second)
	_, err := ec.SendMessage(context.Background(), "P1", "dashboard", "lost", nil)
	assert.True(t, errors.Is(err, "SEND_ERROR"))
}
